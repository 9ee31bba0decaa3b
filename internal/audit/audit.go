// Package audit describes the record written for every backpack event that
// changes or fails to change an item.
package audit

import "errors"

const (
	ActionOpen            = "OPEN"
	ActionSave            = "SAVE"
	ActionSaveDropped     = "SAVE_DROPPED"
	ActionSessionReplaced = "SESSION_REPLACED"
	ActionUpgradeOffered  = "UPGRADE_OFFERED"
	ActionCraftVetoed     = "CRAFT_VETOED"
	ActionNestingBlocked  = "NESTING_BLOCKED"
)

type Entry struct {
	UnixMs      int64  `json:"unix_ms"`
	Actor       string `json:"actor"`
	Action      string `json:"action"`
	ContainerID string `json:"container_id,omitempty"`
	Level       int    `json:"level"`
	Slots       int    `json:"slots,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

type Sink interface {
	WriteAudit(Entry) error
}

// Multi fans one entry out to several sinks. nil sinks are skipped.
type Multi []Sink

func (m Multi) WriteAudit(e Entry) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.WriteAudit(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every entry.
type Discard struct{}

func (Discard) WriteAudit(Entry) error { return nil }
