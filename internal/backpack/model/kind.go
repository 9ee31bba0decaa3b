package model

import "intheback.ai/internal/item"

// Kind is what an item stack means to this plugin. Exactly one of
// Container, UpgradeToken or Other.
type Kind interface{ kind() }

type Container struct {
	ID      string
	Level   Level
	Blob    []byte
	HasBlob bool
}

type UpgradeToken struct {
	Level Level
}

type Other struct{}

func (Container) kind()    {}
func (UpgradeToken) kind() {}
func (Other) kind()        {}

// Classify reads the flat tag map once. A stack carrying both discriminants
// is treated as a container.
func Classify(s *item.Stack) Kind {
	if s.IsEmpty() || !s.HasMeta() {
		return Other{}
	}
	tags := s.Meta.Tags
	if v, ok := tags.Bool(KeyBackpack); ok && v {
		c := Container{Level: LevelSmall}
		c.ID, _ = tags.Str(KeyBackpackID)
		if lv, ok := tags.Int32(KeyBackpackLevel); ok {
			c.Level = ClampLevel(int(lv))
		}
		c.Blob, c.HasBlob = tags.Bytes(KeyInventory)
		return c
	}
	if v, ok := tags.Bool(KeyUpgrade); ok && v {
		// A token missing its level is still a token; no container accepts it.
		lv, ok := tags.Int32(KeyUpgradeLevel)
		if !ok {
			return UpgradeToken{Level: -1}
		}
		return UpgradeToken{Level: Level(lv)}
	}
	return Other{}
}

func IsContainer(s *item.Stack) bool {
	_, ok := Classify(s).(Container)
	return ok
}

// ID returns the container id, or "" for anything else.
func ID(s *item.Stack) string {
	if c, ok := Classify(s).(Container); ok {
		return c.ID
	}
	return ""
}

// LevelOf returns -1 for non-containers and 0 for containers that predate
// levels.
func LevelOf(s *item.Stack) int {
	if c, ok := Classify(s).(Container); ok {
		return int(c.Level)
	}
	return -1
}

// Capacity is the slot count for s; non-containers report the small size.
func Capacity(s *item.Stack) int {
	if c, ok := Classify(s).(Container); ok {
		return c.Level.Capacity()
	}
	return LevelSmall.Capacity()
}

func IsUpgradeToken(s *item.Stack) bool {
	_, ok := Classify(s).(UpgradeToken)
	return ok
}

// TokenLevel returns the level a token promotes to, or -1.
func TokenLevel(s *item.Stack) int {
	if t, ok := Classify(s).(UpgradeToken); ok {
		return int(t.Level)
	}
	return -1
}

// Recognized reports whether s is either a container or an upgrade token.
func Recognized(s *item.Stack) bool {
	_, other := Classify(s).(Other)
	return !other
}
