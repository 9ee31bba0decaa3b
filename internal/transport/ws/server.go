package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"intheback.ai/internal/backpack/store"
	"intheback.ai/internal/host"
	"intheback.ai/internal/protocol"
)

type Config struct {
	Logger    *log.Logger
	Host      *host.Platform
	Store     *store.Store
	Validator *protocol.Validator
	// Params and RecipesDigest are echoed in every WELCOME.
	Params        protocol.ServerParams
	RecipesDigest string
	MaxPlayers    int
	NewID         func() string
}

type Server struct {
	cfg Config
	log *log.Logger

	upgrader websocket.Upgrader

	mu        sync.Mutex
	connected map[string]struct{}
}

func NewServer(cfg Config) *Server {
	s := &Server{
		cfg: cfg,
		log: cfg.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		connected: map[string]struct{}{},
	}
	if s.log == nil {
		s.log = log.New(io.Discard, "", 0)
	}
	if s.cfg.NewID == nil {
		s.cfg.NewID = uuid.NewString
	}
	return s
}

// Connected reports how many players currently hold a connection.
func (s *Server) Connected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.connected)
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		playerID := s.handshake(conn)
		if playerID == "" {
			return
		}
		defer s.release(playerID)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		out := make(chan any, 8)

		// Writer goroutine.
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case m := <-out:
					if err := writeJSON(conn, m); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		send := func(m any) bool {
			select {
			case out <- m:
				return true
			case <-ctx.Done():
				return false
			}
		}
		if st, err := s.cfg.Host.State(playerID); err == nil {
			send(stateMsg(s.cfg.Store, "", st))
		}

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if !send(s.handle(playerID, msg)) {
				break
			}
		}
		cancel()
		wg.Wait()

		// Cleanup.
		s.cfg.Host.Leave(playerID)
		s.log.Printf("ws: player %s disconnected", playerID)
	}
}

// handle applies one inbound message and returns the reply.
func (s *Server) handle(playerID string, msg []byte) any {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return protocol.NewError("", protocol.ErrProtoBadRequest, "bad json")
	}
	if base.Type != protocol.TypeAct {
		return protocol.NewError("", protocol.ErrProtoBadRequest, "expected ACT")
	}
	if base.ProtocolVersion != protocol.Version {
		return protocol.NewError("", protocol.ErrProtoBadRequest, "bad protocol_version")
	}
	if err := s.validate(base.Type, msg); err != nil {
		return protocol.NewError("", protocol.ErrProtoBadRequest, err.Error())
	}
	var act protocol.ActMsg
	if err := json.Unmarshal(msg, &act); err != nil {
		return protocol.NewError("", protocol.ErrProtoBadRequest, "bad ACT")
	}
	if err := s.apply(playerID, act); err != nil {
		return protocol.NewError(act.ID, codeFor(err), err.Error())
	}
	st, err := s.cfg.Host.State(playerID)
	if err != nil {
		return protocol.NewError(act.ID, codeFor(err), err.Error())
	}
	return stateMsg(s.cfg.Store, act.ID, st)
}

func (s *Server) apply(playerID string, act protocol.ActMsg) error {
	h := s.cfg.Host
	switch act.Kind {
	case protocol.ActSelect:
		if act.Slot == nil {
			return fmt.Errorf("%w: select needs slot", errBadRequest)
		}
		return h.Select(playerID, *act.Slot)
	case protocol.ActInteract:
		action := host.Action(act.Action)
		if action == "" {
			action = host.RightClickAir
		}
		return h.Interact(playerID, action)
	case protocol.ActMove:
		if act.From == nil || (!act.Shift && act.To == nil) {
			return fmt.Errorf("%w: move needs from and to", errBadRequest)
		}
		m := host.Move{From: host.Area(act.From.Area), FromSlot: act.From.Slot, Shift: act.Shift, Count: act.Count}
		if act.To != nil {
			m.To, m.ToSlot = host.Area(act.To.Area), act.To.Slot
		}
		return h.Move(playerID, m)
	case protocol.ActClose:
		return h.CloseView(playerID)
	case protocol.ActCraft:
		return h.Craft(playerID)
	}
	return fmt.Errorf("%w: unknown kind %q", errBadRequest, act.Kind)
}

var errBadRequest = errors.New("bad request")

func codeFor(err error) string {
	switch {
	case errors.Is(err, errBadRequest):
		return protocol.ErrBadRequest
	case errors.Is(err, host.ErrNoView):
		return protocol.ErrNoView
	case errors.Is(err, host.ErrBadSlot), errors.Is(err, host.ErrEmptySlot):
		return protocol.ErrInvalidTarget
	case errors.Is(err, host.ErrCancelled):
		return protocol.ErrBlocked
	case errors.Is(err, host.ErrNoResult), errors.Is(err, host.ErrInventoryFull):
		return protocol.ErrNoResource
	}
	return protocol.ErrInternal
}

func (s *Server) validate(typ string, msg []byte) error {
	if s.cfg.Validator == nil {
		return nil
	}
	return s.cfg.Validator.Validate(typ, msg)
}

func (s *Server) handshake(conn *websocket.Conn) (playerID string) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return ""
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closeWith(conn, "expected HELLO")
		return ""
	}
	if base.ProtocolVersion != protocol.Version {
		closeWith(conn, "bad protocol_version")
		return ""
	}
	if err := s.validate(base.Type, msg); err != nil {
		_ = writeJSON(conn, protocol.NewError("", protocol.ErrProtoBadRequest, err.Error()))
		closeWith(conn, "bad HELLO")
		return ""
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		closeWith(conn, "bad HELLO")
		return ""
	}

	// Resume only players the host already knows.
	playerID = hello.PlayerID
	if playerID == "" || s.cfg.Host.Player(playerID) == nil {
		playerID = s.cfg.NewID()
	}
	if code, reason := s.claim(playerID); code != "" {
		_ = writeJSON(conn, protocol.NewError("", code, reason))
		closeWith(conn, reason)
		return ""
	}
	_, created := s.cfg.Host.Join(playerID, hello.PlayerName)

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        playerID,
		Resumed:         !created,
		RecipesDigest:   s.cfg.RecipesDigest,
		Tuning:          s.cfg.Params,
	}
	if err := writeJSON(conn, welcome); err != nil {
		s.release(playerID)
		return ""
	}
	s.log.Printf("ws: %s joined as %s resumed=%v", hello.PlayerName, playerID, !created)
	return playerID
}

// claim reserves playerID for one connection.
func (s *Server) claim(playerID string) (code, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.connected[playerID]; dup {
		return protocol.ErrBadRequest, "player already connected"
	}
	if s.cfg.MaxPlayers > 0 && len(s.connected) >= s.cfg.MaxPlayers {
		return protocol.ErrServerFull, "server full"
	}
	s.connected[playerID] = struct{}{}
	return "", ""
}

func (s *Server) release(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.connected, playerID)
}

func closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
