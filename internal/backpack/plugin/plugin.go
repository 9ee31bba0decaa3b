// Package plugin assembles the backpack features and installs them on a host:
// the event listener plus the recipes that make backpacks and upgrade tokens.
package plugin

import (
	"fmt"
	"io"
	"log"

	"intheback.ai/internal/audit"
	"intheback.ai/internal/backpack/feature/craft"
	"intheback.ai/internal/backpack/feature/session"
	"intheback.ai/internal/backpack/feature/upgrade"
	"intheback.ai/internal/backpack/listener"
	"intheback.ai/internal/backpack/store"
	"intheback.ai/internal/catalogs"
	"intheback.ai/internal/host"
	"intheback.ai/internal/item"
)

type Config struct {
	Logger   *log.Logger
	Catalogs *catalogs.Catalogs
	Audit    audit.Sink
	// Sessions backs the open-backpack tracker. Defaults to an in-memory store.
	Sessions session.Store
	Store    store.Config
}

type Plugin struct {
	log      *log.Logger
	host     *host.Platform
	store    *store.Store
	sessions *session.Tracker
	listener *listener.Listener
	recipes  []string
}

// Enable wires everything together and registers it with h. On error nothing
// stays registered.
func Enable(h *host.Platform, cfg Config) (*Plugin, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if cfg.Store.Logger == nil {
		cfg.Store.Logger = logger
	}
	st := store.New(cfg.Store)
	tracker := session.NewTracker(cfg.Sessions, logger)
	p := &Plugin{
		log:      logger,
		host:     h,
		store:    st,
		sessions: tracker,
		listener: listener.New(listener.Config{
			Logger:    logger,
			Store:     st,
			Sessions:  tracker,
			Validator: craft.New(st, upgrade.New(st)),
			Audit:     cfg.Audit,
		}),
	}
	if cfg.Catalogs != nil {
		for _, def := range cfg.Catalogs.Recipes.InOrder() {
			result, err := p.resultFor(def.Result)
			if err != nil {
				p.removeRecipes()
				return nil, fmt.Errorf("recipe %s: %w", def.Key, err)
			}
			err = h.AddRecipe(host.Recipe{
				Key:         def.Key,
				Shape:       def.Shape,
				Ingredients: def.Runes(),
				Result:      result,
			})
			if err != nil {
				p.removeRecipes()
				return nil, err
			}
			p.recipes = append(p.recipes, def.Key)
		}
	}
	h.Register(p.listener)
	logger.Printf("Backpack and upgrade crafting recipes registered! recipes=%d", len(p.recipes))
	logger.Printf("In The Back has been enabled!")
	return p, nil
}

func (p *Plugin) resultFor(def catalogs.ResultDef) (func() *item.Stack, error) {
	switch def.Kind {
	case catalogs.ResultBackpack:
		return func() *item.Stack { return p.store.Create(def.Level) }, nil
	case catalogs.ResultUpgrade:
		if p.store.CreateToken(def.Level) == nil {
			return nil, fmt.Errorf("no upgrade token for level %d", def.Level)
		}
		return func() *item.Stack { return p.store.CreateToken(def.Level) }, nil
	case catalogs.ResultItem:
		return func() *item.Stack { return item.New(def.Material, def.Count) }, nil
	}
	return nil, fmt.Errorf("unknown result kind %q", def.Kind)
}

// Store exposes the item store, e.g. for admin commands minting backpacks.
func (p *Plugin) Store() *store.Store { return p.store }

func (p *Plugin) Sessions() *session.Tracker { return p.sessions }

// Disable unregisters the listener and recipes and drops open sessions.
func (p *Plugin) Disable() {
	p.host.Unregister(p.listener)
	p.removeRecipes()
	p.sessions.Close()
	p.log.Printf("In The Back has been disabled!")
}

func (p *Plugin) removeRecipes() {
	for _, k := range p.recipes {
		p.host.RemoveRecipe(k)
	}
	p.recipes = nil
}
