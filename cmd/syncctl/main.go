// Package main provides syncctl, a developer CLI over the sync engine.
// It operates directly on the on-device store, the same way the desktop
// server does; do not run both against one data directory at once.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rentnest/rentnest/backend/internal/config"
	"github.com/rentnest/rentnest/backend/internal/db"
	"github.com/rentnest/rentnest/backend/internal/remote"
	"github.com/rentnest/rentnest/backend/internal/store"
	syncpkg "github.com/rentnest/rentnest/backend/internal/sync"
	"github.com/rentnest/rentnest/backend/internal/sync/conflict"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	ConfigPath string
}

// session bundles the wired-up engine with its owned database handle.
type session struct {
	cfg    *config.Config
	db     *db.DB
	engine *syncpkg.SyncEngine
	retry  *syncpkg.RetryController
}

func (o *rootOptions) open() (*session, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	database, err := db.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	engine := syncpkg.NewSyncEngine(store.New(database), remote.NewClient(cfg.RemoteBaseURL, cfg.APIToken))
	return &session{
		cfg:    cfg,
		db:     database,
		engine: engine,
		retry:  syncpkg.NewRetryController(engine),
	}, nil
}

func (s *session) close() {
	s.db.Close()
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "syncctl",
		Short:         "Rentnest offline sync control",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", os.Getenv("RENTNEST_CONFIG"), "path to YAML config file")

	cmd.AddCommand(newSyncCommand(opts))
	cmd.AddCommand(newConflictsCommand(opts))
	cmd.AddCommand(newResolveCommand(opts))
	cmd.AddCommand(newRejectCommand(opts))
	cmd.AddCommand(newClearCommand(opts))
	cmd.AddCommand(newLogsCommand(opts))
	cmd.AddCommand(newStatsCommand(opts))
	return cmd
}

func newSyncCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync [resource...]",
		Short: "Run a sync pass over the given resources (default: all)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.close()

			resources := args
			if len(resources) == 0 {
				resources = s.cfg.Resources
			}

			result, err := s.retry.Start(context.Background(), resources)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
}

func newConflictsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "List queued conflicts; the first entry is the current one",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.close()

			out := map[string]interface{}{
				"conflicts": s.engine.Conflicts(),
				"total":     s.engine.PendingConflicts(),
			}
			if current, ok := s.engine.CurrentConflict(); ok {
				out["suggestions"] = conflict.SuggestResolutions(current)
			}
			return printJSON(cmd, out)
		},
	}
}

func newResolveCommand(opts *rootOptions) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "resolve --set field=remote|local|merge ...",
		Short: "Resolve the current conflict field by field",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolutions := conflict.Resolutions{}
			for _, set := range sets {
				field, source, ok := strings.Cut(set, "=")
				if !ok {
					return fmt.Errorf("invalid --set %q: want field=source", set)
				}
				resolutions[field] = conflict.Source(source)
			}

			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.engine.ResolveConflict(context.Background(), resolutions); err != nil {
				return err
			}
			cmd.Printf("Resolved; %d conflict(s) remaining\n", s.engine.PendingConflicts())
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=source resolution, repeatable")
	_ = cmd.MarkFlagRequired("set")
	return cmd
}

func newRejectCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reject",
		Short: "Discard the current conflict's local copy",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.engine.RejectConflict(); err != nil {
				return err
			}
			cmd.Printf("Rejected; %d conflict(s) remaining\n", s.engine.PendingConflicts())
			return nil
		},
	}
}

func newClearCommand(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop every queued conflict (irreversible)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("clearing conflicts is irreversible; re-run with --yes")
			}

			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.close()

			cmd.Printf("Removed %d conflict(s)\n", s.engine.ClearConflicts())
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the irreversible clear")
	return cmd
}

func newLogsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "Print the sync log, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.close()

			entries, err := s.engine.Logs()
			if err != nil {
				return err
			}
			for _, e := range entries {
				cmd.Printf("%s %-16s %-9s %s\n",
					e.Timestamp.Format("2006-01-02T15:04:05"), e.Action, e.Status, e.Resource)
			}
			return nil
		},
	}
}

func newStatsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show engine status and last pass stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.close()

			out := map[string]interface{}{
				"status":            s.engine.Status(),
				"pending_conflicts": s.engine.PendingConflicts(),
			}
			if last := s.engine.LastSync(); last != nil {
				out["last_sync"] = last
			}
			if stats := s.engine.LastStats(); stats != nil {
				out["last_stats"] = stats
			}
			return printJSON(cmd, out)
		},
	}
}

func printJSON(cmd *cobra.Command, payload interface{}) error {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(raw))
	return nil
}
