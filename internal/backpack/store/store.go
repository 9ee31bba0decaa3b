// Package store creates backpack items and is the only path that reads or
// writes a backpack's encoded contents.
package store

import (
	"errors"
	"io"
	"log"

	"github.com/google/uuid"

	"intheback.ai/internal/backpack/io/slotcodec"
	"intheback.ai/internal/backpack/model"
	"intheback.ai/internal/item"
)

type Config struct {
	Logger *log.Logger
	// Codec serializes occupied slots. Defaults to item.PayloadCodec.
	Codec slotcodec.PayloadCodec[item.Stack]
	// NewID generates container ids. Defaults to random UUIDs.
	NewID func() string
}

type Store struct {
	log   *log.Logger
	codec slotcodec.PayloadCodec[item.Stack]
	newID func() string
}

func New(cfg Config) *Store {
	s := &Store{log: cfg.Logger, codec: cfg.Codec, newID: cfg.NewID}
	if s.log == nil {
		s.log = log.New(io.Discard, "", 0)
	}
	if s.codec == nil {
		s.codec = item.PayloadCodec{}
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Create builds an empty backpack with a fresh id. level is clamped to [0,3].
func (s *Store) Create(level int) *item.Stack {
	lv := model.ClampLevel(level)
	st := item.New(model.MaterialForLevel(lv), 1)
	model.ApplyContainerDisplay(st, lv)
	tags := st.Meta.Tags
	tags.SetBool(model.KeyBackpack, true)
	tags.SetString(model.KeyBackpackID, s.newID())
	tags.SetInt32(model.KeyBackpackLevel, int32(lv))
	return st
}

// CreateToken builds an upgrade token targeting level (1..3), or nil.
func (s *Store) CreateToken(level int) *item.Stack {
	lv := model.Level(level)
	st := item.New(model.TokenMaterial(lv), 1)
	if !model.ApplyTokenDisplay(st, lv) {
		return nil
	}
	tags := st.Meta.Tags
	tags.SetBool(model.KeyUpgrade, true)
	tags.SetInt32(model.KeyUpgradeLevel, int32(lv))
	return st
}

// Save encodes slots at the container's capacity and stores the blob. It is a
// logged no-op for non-containers and nil slots; an encode failure keeps the
// previous blob.
func (s *Store) Save(st *item.Stack, slots []*item.Stack) bool {
	c, ok := model.Classify(st).(model.Container)
	if !ok {
		s.log.Printf("backpack save skipped: item is not a backpack")
		return false
	}
	if slots == nil {
		s.log.Printf("backpack save skipped: id=%s no contents given", c.ID)
		return false
	}
	blob, err := slotcodec.Encode(normalize(slots), c.Level.Capacity(), s.codec)
	if err != nil {
		s.log.Printf("backpack save failed: id=%s: %v", c.ID, err)
		return false
	}
	st.Meta.Tags.SetBytes(model.KeyInventory, blob)
	return true
}

// Load decodes the stored contents. Anything unreadable comes back as an
// all-empty slice sized to the container's capacity.
func (s *Store) Load(st *item.Stack) []*item.Stack {
	capacity := model.Capacity(st)
	c, ok := model.Classify(st).(model.Container)
	if !ok || !c.HasBlob || len(c.Blob) == 0 {
		return slotcodec.Empty[item.Stack](capacity)
	}
	slots, err := slotcodec.Decode(c.Blob, capacity, s.codec)
	if err != nil {
		var de *slotcodec.DecodeError
		if errors.As(err, &de) {
			s.log.Printf("backpack load failed: id=%s offset=%d: %v", c.ID, de.Offset, de.Err)
		} else {
			s.log.Printf("backpack load failed: id=%s: %v", c.ID, err)
		}
		return slotcodec.Empty[item.Stack](capacity)
	}
	return slots
}

// normalize drops air and zero-amount stacks so they encode as empty slots.
func normalize(slots []*item.Stack) []*item.Stack {
	out := make([]*item.Stack, len(slots))
	for i, st := range slots {
		if !st.IsEmpty() {
			out[i] = st
		}
	}
	return out
}
