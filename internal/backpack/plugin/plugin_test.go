package plugin

import (
	"bytes"
	"log"
	"slices"
	"strings"
	"testing"

	"intheback.ai/internal/backpack/model"
	"intheback.ai/internal/catalogs"
	"intheback.ai/internal/host"
	"intheback.ai/internal/item"
)

func loadCatalogs(t *testing.T) *catalogs.Catalogs {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("catalogs.Load: %v", err)
	}
	return cats
}

func TestEnable_RegistersCatalogRecipes(t *testing.T) {
	var buf bytes.Buffer
	h := host.New(host.Config{})
	p, err := Enable(h, Config{Logger: log.New(&buf, "", 0), Catalogs: loadCatalogs(t)})
	if err != nil {
		t.Fatalf("Enable: %v", err)
	}
	want := []string{"backpack_recipe", "medium_upgrade", "large_upgrade", "huge_upgrade", "chest"}
	if got := h.RecipeKeys(); !slices.Equal(got, want) {
		t.Fatalf("recipes: got %v want %v", got, want)
	}
	if !strings.Contains(buf.String(), "In The Back has been enabled!") {
		t.Fatalf("missing enable log: %q", buf.String())
	}

	p.Disable()
	if got := h.RecipeKeys(); len(got) != 0 {
		t.Fatalf("recipes left after disable: %v", got)
	}
}

func TestEnable_CraftBackpackAndToken(t *testing.T) {
	h := host.New(host.Config{})
	if _, err := Enable(h, Config{Catalogs: loadCatalogs(t)}); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	h.Join("a", "Alex")
	if err := h.Do("a", func(pl *host.Player) {
		for i := 0; i < 8; i++ {
			pl.Inventory().SetMainSlot(i, item.New("LEATHER", 1))
		}
		pl.Inventory().SetMainSlot(8, item.New("CHEST", 1))
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	// Ring of leather around the chest.
	cells := []int{0, 1, 2, 3, 5, 6, 7, 8}
	for i, cell := range cells {
		if err := h.Move("a", host.Move{From: host.AreaInventory, FromSlot: i, To: host.AreaGrid, ToSlot: cell}); err != nil {
			t.Fatalf("Move: %v", err)
		}
	}
	if err := h.Move("a", host.Move{From: host.AreaInventory, FromSlot: 8, To: host.AreaGrid, ToSlot: 4}); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if err := h.Craft("a"); err != nil {
		t.Fatalf("Craft: %v", err)
	}
	s, _ := h.State("a")
	bp := s.Main[0]
	if !model.IsContainer(bp) || model.LevelOf(bp) != 0 || bp.Material != "CHEST" {
		t.Fatalf("crafted: %+v", bp)
	}
	if model.ID(bp) == "" {
		t.Fatalf("crafted backpack has no id")
	}
}

func TestDisable_StopsListening(t *testing.T) {
	h := host.New(host.Config{})
	p, err := Enable(h, Config{})
	if err != nil {
		t.Fatalf("Enable: %v", err)
	}
	h.Join("a", "Alex")
	if err := h.Do("a", func(pl *host.Player) {
		pl.Inventory().SetMainSlot(0, p.Store().Create(0))
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if err := h.Interact("a", host.RightClickAir); err != nil {
		t.Fatalf("Interact: %v", err)
	}
	if p.Sessions().Len() != 1 {
		t.Fatalf("expected one session")
	}
	p.Disable()
	if p.Sessions().Len() != 0 {
		t.Fatalf("disable should drop sessions")
	}
	if err := h.CloseView("a"); err != nil {
		t.Fatalf("CloseView: %v", err)
	}
	if err := h.Interact("a", host.RightClickAir); err != nil {
		t.Fatalf("Interact: %v", err)
	}
	if s, _ := h.State("a"); s.View != nil {
		t.Fatalf("disabled plugin opened a view")
	}
}

func TestEnable_RejectsBadResult(t *testing.T) {
	h := host.New(host.Config{})
	cats := &catalogs.Catalogs{}
	cats.Recipes.Order = []string{"ok", "bad"}
	cats.Recipes.ByKey = map[string]catalogs.RecipeDef{
		"ok": {Key: "ok", Shape: []string{"P"}, Ingredients: map[string]string{"P": "PLANKS"},
			Result: catalogs.ResultDef{Kind: catalogs.ResultItem, Material: "STICK", Count: 4}},
		"bad": {Key: "bad", Shape: []string{"D"}, Ingredients: map[string]string{"D": "DIAMOND"},
			Result: catalogs.ResultDef{Kind: catalogs.ResultUpgrade, Level: 0}},
	}
	if _, err := Enable(h, Config{Catalogs: cats}); err == nil {
		t.Fatalf("expected error for level-0 token")
	}
	if got := h.RecipeKeys(); len(got) != 0 {
		t.Fatalf("partial registration left behind: %v", got)
	}
}
