package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version" json:"protocol_version"`

	StarterItems map[string]int `yaml:"starter_items" json:"starter_items"`

	SnapshotEverySeconds int `yaml:"snapshot_every_seconds" json:"snapshot_every_seconds"`

	// SnapshotKeep is how many snapshots stay in the data dir; older ones are
	// archived. Zero keeps everything.
	SnapshotKeep int `yaml:"snapshot_keep" json:"snapshot_keep"`
	AuditQueue   int `yaml:"audit_queue" json:"audit_queue"`
	MaxPlayers   int `yaml:"max_players" json:"max_players"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:      "1.0",
		StarterItems:         map[string]int{},
		SnapshotEverySeconds: 60,
		SnapshotKeep:         48,
		AuditQueue:           4096,
		MaxPlayers:           64,
	}
}

// Load reads path over the defaults; keys missing from the file keep their
// default value.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) validate() error {
	if t.SnapshotEverySeconds < 0 {
		return fmt.Errorf("snapshot_every_seconds must be >= 0")
	}
	if t.SnapshotKeep < 0 {
		return fmt.Errorf("snapshot_keep must be >= 0")
	}
	if t.AuditQueue <= 0 {
		return fmt.Errorf("audit_queue must be > 0")
	}
	if t.MaxPlayers <= 0 {
		return fmt.Errorf("max_players must be > 0")
	}
	for mat, n := range t.StarterItems {
		if mat == "" || n <= 0 {
			return fmt.Errorf("starter item %q: bad count %d", mat, n)
		}
	}
	return nil
}
