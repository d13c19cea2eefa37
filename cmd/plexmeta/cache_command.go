package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"plexmeta/internal/idcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the identity cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show identity cache counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, warn, err := ctx.openCache()
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || cache == nil {
				return err
			}
			defer cache.Close()

			stats, err := cache.Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Path:    %s\n", cache.Path())
			fmt.Fprintf(out, "Entries: %d (%d movies, %d shows)\n", stats.Total, stats.Movies, stats.Shows)
			fmt.Fprintf(out, "Expired: %d\n", stats.Expired)
			return nil
		},
	}
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached id sets, most recently updated first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, warn, err := ctx.openCache()
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || cache == nil {
				return err
			}
			defer cache.Close()

			records, err := cache.List(cmd.Context())
			if err != nil {
				return err
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}
			if jsonOutput {
				views := make([]cacheRecordView, 0, len(records))
				for _, record := range records {
					views = append(views, newCacheRecordView(record))
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "Identity cache is empty")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, cacheRecordRow(record))
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Kind", "GUID", "TMDb", "IMDb", "TVDb", "AniDB", "MAL", "Updated", "Expired"},
				rows,
				nil,
				!isTerminal(out),
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most n records (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the records as JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached id set",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, warn, err := ctx.openCache()
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || cache == nil {
				return err
			}
			defer cache.Close()

			removed, err := cache.Clear(cmd.Context())
			if err != nil {
				return err
			}
			if removed == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Identity cache already empty")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached id sets\n", removed)
			return nil
		},
	}
}

const stampLayout = "2006-01-02 15:04"

func cacheRecordRow(record idcache.Record) []string {
	set := record.Set
	tvdb := ""
	if set.TVDB != 0 {
		tvdb = strconv.FormatInt(set.TVDB, 10)
	}
	return []string{
		string(record.Kind),
		record.GUID,
		idOrBlank(set.TMDB.Empty(), set.TMDB.String()),
		idOrBlank(set.IMDB.Empty(), set.IMDB.String()),
		tvdb,
		set.AniDB,
		set.MAL,
		record.UpdatedAt.Local().Format(stampLayout),
		yesNo(record.Expired),
	}
}

type cacheRecordView struct {
	Kind      string    `json:"kind"`
	GUID      string    `json:"guid"`
	TMDB      []int64   `json:"tmdb_id,omitempty"`
	IMDB      []string  `json:"imdb_id,omitempty"`
	TVDB      int64     `json:"tvdb_id,omitempty"`
	AniDB     string    `json:"anidb_id,omitempty"`
	MAL       string    `json:"mal_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
	Expired   bool      `json:"expired"`
}

func newCacheRecordView(record idcache.Record) cacheRecordView {
	return cacheRecordView{
		Kind:      string(record.Kind),
		GUID:      record.GUID,
		TMDB:      record.Set.TMDB.Values(),
		IMDB:      record.Set.IMDB.Values(),
		TVDB:      record.Set.TVDB,
		AniDB:     record.Set.AniDB,
		MAL:       record.Set.MAL,
		UpdatedAt: record.UpdatedAt,
		Expired:   record.Expired,
	}
}
