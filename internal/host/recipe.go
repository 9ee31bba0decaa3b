package host

import (
	"fmt"
	"strings"

	"intheback.ai/internal/item"
)

const GridSize = 3

// Recipe is a shaped recipe. Shape rows use one rune per cell; a space is an
// empty cell. Ingredients match on material only.
type Recipe struct {
	Key         string
	Shape       []string
	Ingredients map[rune]string
	Result      func() *item.Stack
}

func (r Recipe) validate() error {
	if r.Key == "" {
		return fmt.Errorf("recipe: empty key")
	}
	if r.Result == nil {
		return fmt.Errorf("recipe %s: nil result", r.Key)
	}
	if len(r.Shape) == 0 || len(r.Shape) > GridSize {
		return fmt.Errorf("recipe %s: bad shape height %d", r.Key, len(r.Shape))
	}
	w := len([]rune(r.Shape[0]))
	for _, row := range r.Shape {
		if n := len([]rune(row)); n != w || n == 0 || n > GridSize {
			return fmt.Errorf("recipe %s: ragged or oversized shape %q", r.Key, r.Shape)
		}
		for _, c := range row {
			if c == ' ' {
				continue
			}
			if _, ok := r.Ingredients[c]; !ok {
				return fmt.Errorf("recipe %s: no ingredient for %q", r.Key, c)
			}
		}
	}
	return nil
}

// Matches reports whether matrix (row-major, GridSize*GridSize) fits the
// shape at any offset with every other cell empty.
func (r Recipe) Matches(matrix []*item.Stack) bool {
	h := len(r.Shape)
	w := len([]rune(r.Shape[0]))
	for dy := 0; dy+h <= GridSize; dy++ {
		for dx := 0; dx+w <= GridSize; dx++ {
			if r.matchesAt(matrix, dx, dy) {
				return true
			}
		}
	}
	return false
}

func (r Recipe) matchesAt(matrix []*item.Stack, dx, dy int) bool {
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			cell := matrix[y*GridSize+x]
			want := ' '
			if y >= dy && y < dy+len(r.Shape) {
				row := []rune(r.Shape[y-dy])
				if x >= dx && x < dx+len(row) {
					want = row[x-dx]
				}
			}
			if want == ' ' {
				if !cell.IsEmpty() {
					return false
				}
				continue
			}
			if cell.IsEmpty() || cell.Material != r.Ingredients[want] {
				return false
			}
		}
	}
	return true
}

func (r Recipe) String() string {
	return r.Key + "[" + strings.Join(r.Shape, "/") + "]"
}
