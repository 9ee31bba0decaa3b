// Package listener connects the backpack features to host notifications.
package listener

import (
	"io"
	"log"
	"time"

	"intheback.ai/internal/audit"
	"intheback.ai/internal/backpack/feature/craft"
	"intheback.ai/internal/backpack/feature/guard"
	"intheback.ai/internal/backpack/feature/session"
	"intheback.ai/internal/backpack/model"
	"intheback.ai/internal/backpack/store"
	"intheback.ai/internal/host"
	"intheback.ai/internal/item"
)

type Config struct {
	Logger    *log.Logger
	Store     *store.Store
	Sessions  *session.Tracker
	Validator *craft.Validator
	Audit     audit.Sink
	Now       func() time.Time
}

type Listener struct {
	log       *log.Logger
	store     *store.Store
	sessions  *session.Tracker
	validator *craft.Validator
	audit     audit.Sink
	now       func() time.Time
}

var _ host.Listener = (*Listener)(nil)

func New(cfg Config) *Listener {
	l := &Listener{
		log:       cfg.Logger,
		store:     cfg.Store,
		sessions:  cfg.Sessions,
		validator: cfg.Validator,
		audit:     cfg.Audit,
		now:       cfg.Now,
	}
	if l.log == nil {
		l.log = log.New(io.Discard, "", 0)
	}
	if l.audit == nil {
		l.audit = audit.Discard{}
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

func (l *Listener) OnInteract(ev *host.InteractEvent) {
	if ev.Action != host.RightClickAir && ev.Action != host.RightClickBlock {
		return
	}
	p := ev.Player
	held := p.Inventory().MainHand()
	c, ok := model.Classify(held).(model.Container)
	if !ok {
		return
	}
	ev.Cancelled = true

	// A view that is still open is settled first; its save may rewrite the
	// very item being opened.
	p.CloseView()
	p.OpenView(model.ViewTitle, l.store.Load(held))
	if l.sessions.Begin(p.ID(), held) {
		l.record(p, audit.ActionSessionReplaced, held, "")
	}
	l.log.Printf("%s opened their backpack! id=%s level=%d", p.Name(), c.ID, c.Level)
	l.record(p, audit.ActionOpen, held, "")
}

func (l *Listener) OnClose(ev *host.CloseEvent) {
	if ev.View == nil || ev.View.Title != model.ViewTitle {
		return
	}
	p := ev.Player
	snap, ok := l.sessions.End(p.ID())
	if !ok {
		return
	}
	target, _, found := session.Locate(p.Inventory(), snap)
	if !found {
		l.log.Printf("WARN %s closed backpack but couldn't find the item to save! id=%s", p.Name(), model.ID(snap))
		l.record(p, audit.ActionSaveDropped, snap, "no_match")
		return
	}
	if !l.store.Save(target, ev.View.Contents()) {
		l.record(p, audit.ActionSaveDropped, snap, "save_failed")
		return
	}
	l.log.Printf("%s closed their backpack - items saved! id=%s", p.Name(), model.ID(target))
	l.record(p, audit.ActionSave, target, "")
}

func (l *Listener) OnClick(ev *host.ClickEvent) {
	if ev.View == nil {
		return
	}
	allowed := guard.Allow(guard.Click{
		ViewTitle: ev.View.Title,
		Cursor:    ev.Cursor,
		Current:   ev.Current,
		InView:    ev.Clicked == host.AreaView,
		Shift:     ev.Shift,
	})
	if allowed {
		return
	}
	ev.Cancelled = true
	moved := ev.Cursor
	if moved == nil {
		moved = ev.Current
	}
	l.record(ev.Player, audit.ActionNestingBlocked, moved, "")
}

func (l *Listener) OnPrepareCraft(ev *host.PrepareCraftEvent) {
	d := l.validator.Prepare(ev.Matrix)
	if !d.Interfere {
		return
	}
	hostResult := ev.Result
	ev.Result = d.Result
	switch {
	case d.Result != nil:
		l.record(ev.Player, audit.ActionUpgradeOffered, d.Result, "")
	case hostResult != nil:
		l.log.Printf("%s: craft vetoed (%s), host offered %s", ev.Player.Name(), d.Reason, hostResult.Material)
		l.record(ev.Player, audit.ActionCraftVetoed, firstRecognized(ev.Matrix), d.Reason)
	}
}

func firstRecognized(matrix []*item.Stack) *item.Stack {
	for _, st := range matrix {
		if model.Recognized(st) {
			return st
		}
	}
	return nil
}

func (l *Listener) record(p *host.Player, action string, st *item.Stack, reason string) {
	e := audit.Entry{
		UnixMs:      l.now().UnixMilli(),
		Actor:       p.ID(),
		Action:      action,
		ContainerID: model.ID(st),
		Level:       model.LevelOf(st),
		Reason:      reason,
	}
	if model.IsContainer(st) {
		e.Slots = model.Capacity(st)
	} else if lv := model.TokenLevel(st); lv >= 0 {
		e.Level = lv
	}
	if err := l.audit.WriteAudit(e); err != nil {
		l.log.Printf("audit %s: %v", action, err)
	}
}
