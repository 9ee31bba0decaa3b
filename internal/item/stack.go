// Package item is the host's item stack model: a material, an amount and
// optional display metadata with a typed tag container.
package item

import "slices"

// Air is the material of an empty slot.
const Air = "AIR"

type Stack struct {
	Material string `json:"material"`
	Amount   int    `json:"amount"`
	Meta     *Meta  `json:"meta,omitempty"`
}

type Meta struct {
	DisplayName string   `json:"display_name,omitempty"`
	Lore        []string `json:"lore,omitempty"`
	Tags        Tags     `json:"tags,omitempty"`
}

func New(material string, amount int) *Stack {
	if amount <= 0 {
		amount = 1
	}
	return &Stack{Material: material, Amount: amount}
}

// IsEmpty reports whether s occupies no slot (nil, air or zero amount).
func (s *Stack) IsEmpty() bool {
	return s == nil || s.Material == "" || s.Material == Air || s.Amount <= 0
}

func (s *Stack) HasMeta() bool { return s != nil && s.Meta != nil }

// EnsureMeta returns the stack's metadata, creating it on first use.
func (s *Stack) EnsureMeta() *Meta {
	if s.Meta == nil {
		s.Meta = &Meta{}
	}
	if s.Meta.Tags == nil {
		s.Meta.Tags = Tags{}
	}
	return s.Meta
}

// Clone returns a deep copy; nil stays nil.
func (s *Stack) Clone() *Stack {
	if s == nil {
		return nil
	}
	out := &Stack{Material: s.Material, Amount: s.Amount}
	if s.Meta != nil {
		out.Meta = s.Meta.Clone()
	}
	return out
}

func (m *Meta) Clone() *Meta {
	if m == nil {
		return nil
	}
	return &Meta{
		DisplayName: m.DisplayName,
		Lore:        slices.Clone(m.Lore),
		Tags:        m.Tags.Clone(),
	}
}

// Equal compares display name, lore and tags. A nil Meta equals an empty one.
func (m *Meta) Equal(o *Meta) bool {
	if m == nil {
		m = &Meta{}
	}
	if o == nil {
		o = &Meta{}
	}
	return m.DisplayName == o.DisplayName &&
		slices.Equal(m.Lore, o.Lore) &&
		m.Tags.Equal(o.Tags)
}

// Similar is the host's notion of "same kind of item": material and metadata
// match, amount is ignored.
func Similar(a, b *Stack) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Material == b.Material && a.Meta.Equal(b.Meta)
}

// CloneAll deep-copies a slot slice, keeping empty slots as nil.
func CloneAll(slots []*Stack) []*Stack {
	if slots == nil {
		return nil
	}
	out := make([]*Stack, len(slots))
	for i, s := range slots {
		if !s.IsEmpty() {
			out[i] = s.Clone()
		}
	}
	return out
}
