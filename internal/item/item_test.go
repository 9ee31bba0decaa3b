package item

import (
	"bytes"
	"testing"
)

func TestTags_TypedReads(t *testing.T) {
	tags := Tags{}
	tags.SetBool("ns:flag", true)
	tags.SetInt32("ns:level", 2)
	tags.SetBytes("ns:blob", []byte{1, 2, 3})

	if v, ok := tags.Bool("ns:flag"); !ok || !v {
		t.Fatalf("Bool: got %v %v", v, ok)
	}
	if _, ok := tags.Str("ns:flag"); ok {
		t.Fatalf("expected type mismatch to read as missing")
	}
	if v, ok := tags.Int32("ns:level"); !ok || v != 2 {
		t.Fatalf("Int32: got %v %v", v, ok)
	}
	if !tags.Has("ns:blob", TagBytes) || tags.Has("ns:blob", TagBool) {
		t.Fatalf("Has: wrong result for typed key")
	}
}

func TestTags_SetBytesCopies(t *testing.T) {
	src := []byte{9, 9}
	tags := Tags{}
	tags.SetBytes("k", src)
	src[0] = 0
	got, _ := tags.Bytes("k")
	if got[0] != 9 {
		t.Fatalf("SetBytes aliased caller slice: %v", got)
	}
}

func TestStack_CloneIsDeep(t *testing.T) {
	s := New("CHEST", 1)
	m := s.EnsureMeta()
	m.DisplayName = "box"
	m.Lore = []string{"a"}
	m.Tags.SetBytes("k", []byte{1})

	c := s.Clone()
	c.Meta.Lore[0] = "b"
	c.Meta.Tags.SetInt32("other", 1)
	b, _ := c.Meta.Tags.Bytes("k")
	b[0] = 7

	if s.Meta.Lore[0] != "a" || len(s.Meta.Tags) != 1 {
		t.Fatalf("clone shares metadata with original: %#v", s.Meta)
	}
	if got, _ := s.Meta.Tags.Bytes("k"); got[0] != 1 {
		t.Fatalf("clone shares tag bytes with original")
	}
}

func TestSimilar_IgnoresAmount(t *testing.T) {
	a := New("LEATHER", 3)
	b := New("LEATHER", 5)
	if !Similar(a, b) {
		t.Fatalf("expected similar stacks")
	}
	b.EnsureMeta().DisplayName = "x"
	if Similar(a, b) {
		t.Fatalf("expected display name to break similarity")
	}
}

func TestStack_IsEmpty(t *testing.T) {
	var nilStack *Stack
	cases := []*Stack{nilStack, {Material: Air, Amount: 1}, {Material: "STONE"}, {}}
	for i, s := range cases {
		if !s.IsEmpty() {
			t.Fatalf("case %d: expected empty", i)
		}
	}
	if New("STONE", 1).IsEmpty() {
		t.Fatalf("expected non-empty stone")
	}
}

func TestPayloadCodec_Deterministic(t *testing.T) {
	s := New("DIAMOND", 4)
	tags := s.EnsureMeta().Tags
	tags.SetString("z", "last")
	tags.SetString("a", "first")
	tags.SetInt32("m", 3)

	var c PayloadCodec
	b1, err := c.MarshalPayload(s)
	if err != nil {
		t.Fatalf("MarshalPayload: %v", err)
	}
	b2, _ := c.MarshalPayload(s.Clone())
	if !bytes.Equal(b1, b2) {
		t.Fatalf("payload not deterministic:\n%s\n%s", b1, b2)
	}
	back, err := c.UnmarshalPayload(b1)
	if err != nil {
		t.Fatalf("UnmarshalPayload: %v", err)
	}
	if !Similar(back, s) || back.Amount != 4 {
		t.Fatalf("round trip mismatch: %#v", back)
	}
	if _, err := c.UnmarshalPayload([]byte(`{"material":"AIR","amount":1}`)); err == nil {
		t.Fatalf("expected error for empty stack payload")
	}
}
