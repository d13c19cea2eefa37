package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"plexmeta/internal/config"
	"plexmeta/internal/mapper"
	"plexmeta/internal/services"
	"plexmeta/internal/services/plex"
)

func newMapCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var workers int

	cmd := &cobra.Command{
		Use:   "map [library...]",
		Short: "Resolve every item of the configured (or named) libraries",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(true)
			if err != nil {
				return err
			}
			defer s.Close()

			cfg := s.cfg
			if err := cfg.ValidatePlex(); err != nil {
				return err
			}
			names := args
			if len(names) == 0 {
				names = cfg.Plex.Libraries
			}
			if len(names) == 0 {
				return errors.New("no libraries to map; pass library names or set plex.libraries")
			}
			if cmd.Flags().Changed("workers") {
				if workers < 1 {
					return errors.New("--workers must be at least 1")
				}
			} else {
				workers = cfg.Mapping.Workers
			}

			lock := flock.New(runLockPath(cfg))
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire mapping lock: %w", err)
			}
			if !ok {
				return errors.New("another plexmeta mapping run is in progress")
			}
			defer func() { _ = lock.Unlock() }()

			client, err := plex.New(cfg.Plex.URL, cfg.Plex.Token,
				time.Duration(cfg.Plex.TimeoutSeconds)*time.Second,
				plex.WithLogger(s.logger),
			)
			if err != nil {
				return err
			}

			mappings, runErr := mapLibraries(cmd.Context(), client, mapper.New(client, s.resolver(),
				mapper.WithWorkers(workers),
				mapper.WithLogger(s.logger),
			), names)

			if jsonOutput {
				if err := writeJSON(cmd, mappingViews(mappings)); err != nil {
					return err
				}
				return runErr
			}
			printMappings(cmd, mappings)
			return runErr
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the mappings as JSON")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Override mapping.workers for this run")
	return cmd
}

// libraryLookup finds a media server library by name.
type libraryLookup interface {
	Library(ctx context.Context, name string) (mapper.Library, error)
}

// mapLibraries maps each library in order and stops at the first library
// that cannot be enumerated. Mappings finished so far are always returned.
func mapLibraries(ctx context.Context, lookup libraryLookup, m *mapper.Mapper, names []string) ([]mapper.Mapping, error) {
	var mappings []mapper.Mapping
	for _, name := range names {
		library, err := lookup.Library(ctx, name)
		if err != nil {
			return mappings, err
		}
		mapping, err := m.Map(ctx, library)
		if mapping.Processed > 0 || err == nil {
			mappings = append(mappings, mapping)
		}
		if err != nil {
			return mappings, err
		}
	}
	return mappings, nil
}

func runLockPath(cfg *config.Config) string {
	if cfg.CacheEnabled() {
		return cfg.Cache.Path + ".lock"
	}
	return filepath.Join(cfg.Paths.DataDir, "plexmeta.lock")
}

func printMappings(cmd *cobra.Command, mappings []mapper.Mapping) {
	out := cmd.OutOrStdout()
	plain := !isTerminal(out)

	rows := make([][]string, 0, len(mappings))
	for _, m := range mappings {
		rows = append(rows, []string{
			m.Library.Name,
			string(m.Library.Kind),
			strconv.Itoa(m.Processed),
			strconv.Itoa(len(m.Movies)),
			strconv.Itoa(len(m.Shows)),
			strconv.Itoa(len(m.Failures)),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Library", "Kind", "Items", "Movies", "Shows", "Unmapped"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
		plain,
	))

	var failures [][]string
	for _, m := range mappings {
		for _, f := range m.Failures {
			failures = append(failures, []string{m.Library.Name, f.Title, f.GUID, services.Kind(f.Err), failureReason(f.Err)})
		}
	}
	if len(failures) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"Library", "Title", "GUID", "Kind", "Reason"},
		failures,
		nil,
		plain,
	))
}

// failureReason drops the marker prefix so the table shows the diagnostic.
func failureReason(err error) string {
	msg := err.Error()
	for _, marker := range []error{services.ErrInsufficientIdentity, services.ErrNoMatch, services.ErrUnsupportedAgent} {
		if errors.Is(err, marker) {
			return strings.TrimPrefix(msg, marker.Error()+": ")
		}
	}
	return msg
}

type failureView struct {
	Handle string `json:"handle"`
	Title  string `json:"title"`
	GUID   string `json:"guid"`
	Kind   string `json:"kind"`
	Error  string `json:"error"`
}

type mappingView struct {
	Library       string           `json:"library"`
	Kind          string           `json:"kind"`
	CorrelationID string           `json:"correlation_id"`
	Processed     int              `json:"processed"`
	Movies        map[int64]string `json:"movies"`
	Shows         map[int64]string `json:"shows"`
	Failures      []failureView    `json:"failures"`
}

func mappingViews(mappings []mapper.Mapping) []mappingView {
	views := make([]mappingView, 0, len(mappings))
	for _, m := range mappings {
		view := mappingView{
			Library:       m.Library.Name,
			Kind:          string(m.Library.Kind),
			CorrelationID: m.CorrelationID,
			Processed:     m.Processed,
			Movies:        m.Movies,
			Shows:         m.Shows,
			Failures:      make([]failureView, 0, len(m.Failures)),
		}
		for _, f := range m.Failures {
			view.Failures = append(view.Failures, failureView{
				Handle: f.Handle,
				Title:  f.Title,
				GUID:   f.GUID,
				Kind:   services.Kind(f.Err),
				Error:  f.Err.Error(),
			})
		}
		views = append(views, view)
	}
	return views
}
