package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gorilla/websocket"

	"intheback.ai/internal/protocol"
)

// ring lists the eight outer cells of the crafting grid.
var ring = []int{0, 1, 2, 3, 5, 6, 7, 8}

type client struct {
	conn  *websocket.Conn
	log   *log.Logger
	seq   int
	state *protocol.StateMsg
}

func main() {
	var (
		url  = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name = flag.String("name", "bot", "player name")
		id   = flag.String("id", "", "resume this player id")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	c := &client{conn: conn, log: logger}
	if err := c.hello(*name, *id); err != nil {
		logger.Fatalf("handshake: %v", err)
	}
	if err := c.script(); err != nil {
		logger.Fatalf("script: %v", err)
	}
	logger.Printf("done")
}

func (c *client) hello(name, id string) error {
	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      name,
		PlayerID:        id,
	}
	if err := c.conn.WriteJSON(hello); err != nil {
		return fmt.Errorf("send HELLO: %w", err)
	}
	for c.state == nil {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return err
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				return err
			}
			c.log.Printf("WELCOME player_id=%s resumed=%v recipes=%v capacities=%v", w.PlayerID, w.Resumed, w.Tuning.Recipes, w.Tuning.Capacities)
		case protocol.TypeState:
			var s protocol.StateMsg
			if err := json.Unmarshal(msg, &s); err != nil {
				return err
			}
			c.state = &s
		case protocol.TypeError:
			var e protocol.ErrorMsg
			_ = json.Unmarshal(msg, &e)
			return fmt.Errorf("%s: %s", e.Code, e.Message)
		}
	}
	return nil
}

// do sends one ACT and waits for the reply carrying its id.
func (c *client) do(act protocol.ActMsg) error {
	c.seq++
	act.Type = protocol.TypeAct
	act.ProtocolVersion = protocol.Version
	act.ID = fmt.Sprintf("A%d", c.seq)
	if err := c.conn.WriteJSON(act); err != nil {
		return err
	}
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return err
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeState:
			var s protocol.StateMsg
			if err := json.Unmarshal(msg, &s); err != nil {
				return err
			}
			c.state = &s
			if s.AckFor == act.ID {
				return nil
			}
		case protocol.TypeError:
			var e protocol.ErrorMsg
			if err := json.Unmarshal(msg, &e); err != nil {
				return err
			}
			if e.AckFor == act.ID {
				return fmt.Errorf("%s %s: %s: %s", act.ID, act.Kind, e.Code, e.Message)
			}
		}
	}
}

func (c *client) find(match func(*protocol.ItemView) bool) int {
	for i, it := range c.state.Inventory {
		if it != nil && match(it) {
			return i
		}
	}
	return -1
}

func material(m string) func(*protocol.ItemView) bool {
	return func(it *protocol.ItemView) bool { return it.Material == m && it.Backpack == nil && it.UpgradeLevel == 0 }
}

func isBackpack(it *protocol.ItemView) bool { return it.Backpack != nil }

func (c *client) move(from, to protocol.SlotRef, count int) error {
	return c.do(protocol.ActMsg{Kind: protocol.ActMove, From: &from, To: &to, Count: count})
}

func (c *client) place(match func(*protocol.ItemView) bool, what string, cells []int) error {
	for _, cell := range cells {
		src := c.find(match)
		if src < 0 {
			return fmt.Errorf("out of %s", what)
		}
		if err := c.move(protocol.SlotRef{Area: "inventory", Slot: src}, protocol.SlotRef{Area: "grid", Slot: cell}, 1); err != nil {
			return err
		}
	}
	return nil
}

func (c *client) craft(what string) error {
	if c.state.Result == nil {
		return fmt.Errorf("no result for %s", what)
	}
	if err := c.do(protocol.ActMsg{Kind: protocol.ActCraft}); err != nil {
		return err
	}
	c.log.Printf("crafted %s", what)
	return nil
}

func (c *client) script() error {
	// Chest from a ring of planks.
	if err := c.place(material("PLANKS"), "PLANKS", ring); err != nil {
		return err
	}
	if err := c.craft("chest"); err != nil {
		return err
	}

	// Backpack from a ring of leather around the chest.
	if err := c.place(material("LEATHER"), "LEATHER", ring); err != nil {
		return err
	}
	if err := c.place(material("CHEST"), "CHEST", []int{4}); err != nil {
		return err
	}
	if err := c.craft("backpack"); err != nil {
		return err
	}

	bp := c.find(isBackpack)
	if bp < 0 {
		return fmt.Errorf("backpack missing after craft")
	}
	if bp > 8 {
		if err := c.move(protocol.SlotRef{Area: "inventory", Slot: bp}, protocol.SlotRef{Area: "inventory", Slot: 8}, 0); err != nil {
			return err
		}
		bp = 8
	}
	if err := c.do(protocol.ActMsg{Kind: protocol.ActSelect, Slot: &bp}); err != nil {
		return err
	}
	if err := c.do(protocol.ActMsg{Kind: protocol.ActInteract}); err != nil {
		return err
	}
	if c.state.View == nil {
		return fmt.Errorf("backpack did not open")
	}
	c.log.Printf("opened %q with %d slots", c.state.View.Title, len(c.state.View.Slots))

	if stone := c.find(material("STONE")); stone >= 0 {
		if err := c.do(protocol.ActMsg{Kind: protocol.ActMove, From: &protocol.SlotRef{Area: "inventory", Slot: stone}, Shift: true}); err != nil {
			return err
		}
	}
	if err := c.do(protocol.ActMsg{Kind: protocol.ActClose}); err != nil {
		return err
	}
	if i := c.find(isBackpack); i >= 0 {
		b := c.state.Inventory[i].Backpack
		c.log.Printf("saved backpack %s level=%d used=%d/%d", b.ID, b.Level, b.Used, b.Slots)
	}

	// Medium upgrade token, then the upgrade itself.
	if err := c.place(material("IRON_INGOT"), "IRON_INGOT", ring); err != nil {
		return err
	}
	if err := c.place(material("LEATHER"), "LEATHER", []int{4}); err != nil {
		return err
	}
	if err := c.craft("medium upgrade"); err != nil {
		return err
	}
	if err := c.place(isBackpack, "backpack", []int{0}); err != nil {
		return err
	}
	if err := c.place(func(it *protocol.ItemView) bool { return it.UpgradeLevel == 1 }, "upgrade token", []int{8}); err != nil {
		return err
	}
	if err := c.craft("upgraded backpack"); err != nil {
		return err
	}
	if i := c.find(isBackpack); i >= 0 {
		b := c.state.Inventory[i].Backpack
		c.log.Printf("backpack %s is now level=%d used=%d/%d", b.ID, b.Level, b.Used, b.Slots)
	}
	return nil
}
