package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"intheback.ai/internal/backpack/model"
	"intheback.ai/internal/backpack/store"
	"intheback.ai/internal/host"
	"intheback.ai/internal/item"
	"intheback.ai/internal/persistence/snapshot"
)

func snapshotDir(opts *rootOpts) string { return filepath.Join(opts.dataDir, "snapshots") }

func resolveSnapshot(opts *rootOpts, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path != "" {
		return path, nil
	}
	latest, err := snapshot.Latest(snapshotDir(opts))
	if err != nil {
		return "", err
	}
	if latest == "" {
		return "", fmt.Errorf("no snapshot found under %s", snapshotDir(opts))
	}
	return latest, nil
}

func newSnapshotsCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots",
		Short: "List snapshots, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := snapshot.List(snapshotDir(opts))
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}

type slotOut struct {
	Slot     int    `json:"slot"`
	Material string `json:"material"`
	Amount   int    `json:"amount"`
	Backpack bool   `json:"backpack,omitempty"`
}

type backpackOut struct {
	Owner    string    `json:"owner"`
	Where    string    `json:"where"`
	ID       string    `json:"id"`
	Level    int       `json:"level"`
	Size     string    `json:"size"`
	Slots    int       `json:"slots"`
	Contents []slotOut `json:"contents"`
}

func newBackpacksCmd(opts *rootOpts) *cobra.Command {
	var snapPath, player, id string
	cmd := &cobra.Command{
		Use:   "backpacks",
		Short: "Decode the backpacks carried in a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolveSnapshot(opts, snapPath)
			if err != nil {
				return err
			}
			snap, err := snapshot.ReadSnapshot(path)
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			st := store.New(store.Config{})
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, p := range snap.Players {
				if player != "" && p.ID != player {
					continue
				}
				for _, slot := range p.Main {
					s := slot.Stack
					if !model.IsContainer(&s) || (id != "" && model.ID(&s) != id) {
						continue
					}
					if err := enc.Encode(describe(st, p.ID, fmt.Sprintf("main:%d", slot.Index), &s)); err != nil {
						return err
					}
				}
				if model.IsContainer(p.OffHand) && (id == "" || model.ID(p.OffHand) == id) {
					if err := enc.Encode(describe(st, p.ID, "offhand", p.OffHand)); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&snapPath, "snapshot", "", "snapshot path (default: latest)")
	cmd.Flags().StringVar(&player, "player", "", "only this player id")
	cmd.Flags().StringVar(&id, "id", "", "only this backpack id")
	return cmd
}

func describe(st *store.Store, owner, where string, s *item.Stack) backpackOut {
	lv := model.Level(model.LevelOf(s))
	out := backpackOut{
		Owner: owner,
		Where: where,
		ID:    model.ID(s),
		Level: int(lv),
		Size:  lv.Name(),
		Slots: lv.Capacity(),
	}
	for i, in := range st.Load(s) {
		if in == nil {
			continue
		}
		out.Contents = append(out.Contents, slotOut{Slot: i, Material: in.Material, Amount: in.Amount, Backpack: model.IsContainer(in)})
	}
	return out
}

func newGiveCmd(opts *rootOpts) *cobra.Command {
	var snapPath, player string
	var level int
	cmd := &cobra.Command{
		Use:   "give",
		Short: "Write a new snapshot with an empty backpack added to a player",
		Long:  "give reads a snapshot, puts a new empty backpack of the given level into the player's first free slot and writes the result as the newest snapshot. Restart the server to load it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(player) == "" {
				return fmt.Errorf("missing --player")
			}
			if !model.Level(level).Valid() {
				return fmt.Errorf("level %d out of range 0-%d", level, model.MaxLevel)
			}
			path, err := resolveSnapshot(opts, snapPath)
			if err != nil {
				return err
			}
			snap, err := snapshot.ReadSnapshot(path)
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}

			h := host.New(host.Config{})
			h.Import(snap.ToHost())
			st := store.New(store.Config{})
			bp := st.Create(level)
			placed := -1
			if err := h.Do(player, func(p *host.Player) { placed = p.Inventory().Add(bp) }); err != nil {
				return err
			}
			if placed < 0 {
				return fmt.Errorf("player %s has no free slot", player)
			}

			ms := time.Now().UnixMilli()
			if ms <= snap.Header.UnixMs {
				ms = snap.Header.UnixMs + 1
			}
			out := snapshot.PathFor(snapshotDir(opts), ms)
			if err := snapshot.WriteSnapshot(out, snapshot.FromHost(ms, snap.RecipesDigest, h.Export())); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "gave %s backpack %s to %s (slot %d); wrote %s\n", model.LevelName(level), model.ID(bp), player, placed, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&snapPath, "snapshot", "", "snapshot path (default: latest)")
	cmd.Flags().StringVar(&player, "player", "", "player id")
	cmd.Flags().IntVar(&level, "level", 0, "backpack level (0-3)")
	return cmd
}
