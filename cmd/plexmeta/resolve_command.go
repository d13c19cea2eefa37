package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"plexmeta/internal/ids"
	"plexmeta/internal/resolve"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var title string
	var alternates []string
	var jsonOutput bool
	var noCache bool

	cmd := &cobra.Command{
		Use:   "resolve <guid>",
		Short: "Resolve one native guid to canonical ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := ids.ParseKind(kindFlag)
			if err != nil {
				return err
			}
			s, err := ctx.openSession(!noCache)
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := s.resolver().Resolve(cmd.Context(), resolve.Item{
				Title:      title,
				GUID:       args[0],
				Alternates: alternates,
			}, kind)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, newResolveView(args[0], result))
			}
			printResolveResult(cmd, args[0], result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "movie", "Library kind: movie or show")
	cmd.Flags().StringVar(&title, "title", "", "Item title used in log lines")
	cmd.Flags().StringArrayVar(&alternates, "alt", nil, "Alternate provider id reported by the media server (repeatable, e.g. tmdb://603)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the identity cache for this lookup")
	return cmd
}

type resolveView struct {
	GUID      string   `json:"guid"`
	Kind      string   `json:"kind"`
	IDs       []int64  `json:"ids"`
	TMDB      []int64  `json:"tmdb_id,omitempty"`
	IMDB      []string `json:"imdb_id,omitempty"`
	TVDB      int64    `json:"tvdb_id,omitempty"`
	AniDB     string   `json:"anidb_id,omitempty"`
	MAL       string   `json:"mal_id,omitempty"`
	FromCache bool     `json:"from_cache"`
}

func newResolveView(guid string, result resolve.Result) resolveView {
	return resolveView{
		GUID:      guid,
		Kind:      string(result.Kind),
		IDs:       result.IDs,
		TMDB:      result.Set.TMDB.Values(),
		IMDB:      result.Set.IMDB.Values(),
		TVDB:      result.Set.TVDB,
		AniDB:     result.Set.AniDB,
		MAL:       result.Set.MAL,
		FromCache: result.FromCache,
	}
}

func printResolveResult(cmd *cobra.Command, guid string, result resolve.Result) {
	out := cmd.OutOrStdout()
	set := result.Set
	tvdb := ""
	if set.TVDB != 0 {
		tvdb = strconv.FormatInt(set.TVDB, 10)
	}
	rows := [][]string{
		{"GUID", guid},
		{"Kind", string(result.Kind)},
		{"TMDb", idOrBlank(set.TMDB.Empty(), set.TMDB.String())},
		{"IMDb", idOrBlank(set.IMDB.Empty(), set.IMDB.String())},
		{"TVDb", tvdb},
		{"AniDB", set.AniDB},
		{"MyAnimeList", set.MAL},
		{"From cache", yesNo(result.FromCache)},
	}
	fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil, !isTerminal(out)))
}

func idOrBlank(empty bool, value string) string {
	if empty {
		return ""
	}
	return value
}
