package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

const (
	ResultBackpack = "backpack"
	ResultUpgrade  = "upgrade"
	ResultItem     = "item"
)

type Catalogs struct {
	Recipes RecipeCatalog
}

type RecipeCatalog struct {
	// Order keeps file order; the host tries recipes in this order.
	Order  []string
	ByKey  map[string]RecipeDef
	Digest string
}

type RecipeDef struct {
	Key         string            `json:"key"`
	Shape       []string          `json:"shape"`
	Ingredients map[string]string `json:"ingredients"`
	Result      ResultDef         `json:"result"`
}

type ResultDef struct {
	Kind     string `json:"kind"` // "backpack","upgrade","item"
	Level    int    `json:"level,omitempty"`
	Material string `json:"material,omitempty"`
	Count    int    `json:"count,omitempty"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadRecipes(filepath.Join(configDir, "recipes.json"), &c.Recipes); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadRecipes(path string, out *RecipeCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []RecipeDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("recipes.json: %w", err)
	}
	out.ByKey = map[string]RecipeDef{}
	out.Order = out.Order[:0]
	for _, r := range defs {
		if r.Key == "" {
			return fmt.Errorf("recipes.json: empty key")
		}
		if _, dup := out.ByKey[r.Key]; dup {
			return fmt.Errorf("recipes.json: duplicate key %s", r.Key)
		}
		if err := r.validate(); err != nil {
			return fmt.Errorf("recipes.json: %s: %w", r.Key, err)
		}
		out.ByKey[r.Key] = r
		out.Order = append(out.Order, r.Key)
	}
	return nil
}

func (r RecipeDef) validate() error {
	if len(r.Shape) == 0 {
		return fmt.Errorf("empty shape")
	}
	for sym := range r.Ingredients {
		if utf8.RuneCountInString(sym) != 1 || sym == " " {
			return fmt.Errorf("ingredient symbol %q must be one non-space rune", sym)
		}
	}
	switch r.Result.Kind {
	case ResultBackpack:
		if r.Result.Level < 0 || r.Result.Level > 3 {
			return fmt.Errorf("backpack level %d out of range", r.Result.Level)
		}
	case ResultUpgrade:
		if r.Result.Level < 1 || r.Result.Level > 3 {
			return fmt.Errorf("upgrade level %d out of range", r.Result.Level)
		}
	case ResultItem:
		if r.Result.Material == "" {
			return fmt.Errorf("item result without material")
		}
	default:
		return fmt.Errorf("unknown result kind %q", r.Result.Kind)
	}
	return nil
}

// Runes converts the ingredient map to the rune-keyed form shapes use.
func (r RecipeDef) Runes() map[rune]string {
	out := make(map[rune]string, len(r.Ingredients))
	for sym, mat := range r.Ingredients {
		c, _ := utf8.DecodeRuneInString(sym)
		out[c] = mat
	}
	return out
}

// InOrder returns the recipes in file order.
func (c RecipeCatalog) InOrder() []RecipeDef {
	out := make([]RecipeDef, 0, len(c.Order))
	for _, k := range c.Order {
		out = append(out, c.ByKey[k])
	}
	return out
}
