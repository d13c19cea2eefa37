package guid

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"plexmeta/internal/ids"
	"plexmeta/internal/services"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		in        string
		wantAgent string
		wantRaw   string
	}{
		{"com.plexapp.agents.imdb://tt0111161?lang=en", "imdb", "tt0111161"},
		{"com.plexapp.agents.hama://anidb-1234?lang=en", "hama", "anidb-1234"},
		{"plex://movie/5d776825880197001ec967c9", "plex", "movie"},
		{"themoviedb://603", "themoviedb", "603"},
	}
	for _, tc := range cases {
		agent, raw, err := Split(tc.in)
		if err != nil {
			t.Fatalf("Split(%q) error: %v", tc.in, err)
		}
		if agent != tc.wantAgent || raw != tc.wantRaw {
			t.Fatalf("Split(%q) = (%q, %q), want (%q, %q)", tc.in, agent, raw, tc.wantAgent, tc.wantRaw)
		}
	}
}

func TestParseAgents(t *testing.T) {
	cases := []struct {
		name string
		guid string
		want string
	}{
		{name: "imdb", guid: "com.plexapp.agents.imdb://tt0111161?lang=en", want: "imdb=tt0111161"},
		{name: "thetvdb", guid: "com.plexapp.agents.thetvdb://121361?lang=en", want: "tvdb=121361"},
		{name: "themoviedb", guid: "com.plexapp.agents.themoviedb://603?lang=en", want: "tmdb=603"},
		{name: "hama tvdb", guid: "com.plexapp.agents.hama://tvdb-81797?lang=en", want: "tvdb=81797"},
		{name: "hama anidb", guid: "com.plexapp.agents.hama://anidb-1234?lang=en", want: "anidb=1234"},
		{name: "hama anidb keeps rest after first dash", guid: "com.plexapp.agents.hama://anidb-12-34", want: "anidb=12-34"},
		{name: "myanimelist", guid: "net.fribbtastic.coding.plex.myanimelist://5114?lang=en", want: "mal=5114"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			set, err := Parse(tc.guid, nil)
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			var got string
			switch {
			case !set.IMDB.Empty():
				got = "imdb=" + set.IMDB.First()
			case set.TVDB != 0:
				got = "tvdb=" + strconv.FormatInt(set.TVDB, 10)
			case !set.TMDB.Empty():
				got = "tmdb=" + strconv.FormatInt(set.TMDB.First(), 10)
			case set.AniDB != "":
				got = "anidb=" + set.AniDB
			case set.MAL != "":
				got = "mal=" + set.MAL
			}
			if got != tc.want {
				t.Fatalf("Parse(%q) = %s, want %s", tc.guid, got, tc.want)
			}
		})
	}
}

func TestParsePlexAlternates(t *testing.T) {
	set, err := Parse("plex://movie/5d776825880197001ec967c9", []string{"imdb://tt0133093", "tmdb://603", "tvdb://169"})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if set.TMDB.IsList() || set.TMDB.First() != 603 {
		t.Fatalf("unexpected tmdb: %v", set.TMDB)
	}
	if set.IMDB.IsList() || set.IMDB.First() != "tt0133093" {
		t.Fatalf("unexpected imdb: %v", set.IMDB)
	}
	if set.TVDB != 0 {
		t.Fatalf("tvdb alternates must be ignored, got %d", set.TVDB)
	}
}

func TestParsePlexMultipleAlternatesBecomeLists(t *testing.T) {
	set, err := Parse("plex://movie/abc", []string{"imdb://tt1", "imdb://tt2", "tmdb://10", "tmdb://20"})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !set.IMDB.IsList() || set.IMDB.Len() != 2 {
		t.Fatalf("expected imdb list, got %v", set.IMDB)
	}
	if !set.TMDB.IsList() || set.TMDB.Values()[1] != 20 {
		t.Fatalf("expected tmdb list, got %v", set.TMDB)
	}
}

func TestParseFailures(t *testing.T) {
	cases := []struct {
		name     string
		guid     string
		marker   error
		fragment string
	}{
		{"local", "local://abc", services.ErrNoMatch, "no match in source library"},
		{"unknown agent", "com.plexapp.agents.none://1", services.ErrUnsupportedAgent, "agent none not supported"},
		{"hama other", "com.plexapp.agents.hama://mal-1", services.ErrUnsupportedAgent, "Hama Agent ID: mal-1 not supported"},
		{"tvdb not numeric", "com.plexapp.agents.thetvdb://abc", services.ErrUnsupportedAgent, "not numeric"},
		{"no scheme", "justtext", services.ErrUnsupportedAgent, "no scheme"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.guid, nil)
			if !errors.Is(err, tc.marker) {
				t.Fatalf("expected %v, got %v", tc.marker, err)
			}
			if !strings.Contains(err.Error(), tc.fragment) {
				t.Fatalf("expected %q in %q", tc.fragment, err.Error())
			}
		})
	}
}

func TestParseItemByLibraryKind(t *testing.T) {
	alternates := []string{"tmdb://603", "imdb://tt0133093"}

	set, err := ParseItem("plex://movie/5d776825880197001ec967c9", alternates, ids.KindMovie)
	if err != nil {
		t.Fatalf("movie ParseItem returned error: %v", err)
	}
	if set.TMDB.First() != 603 || set.IMDB.First() != "tt0133093" {
		t.Fatalf("unexpected movie set: %+v", set)
	}

	_, err = ParseItem("plex://show/5d9c086c46115600200aa2fe", alternates, ids.KindShow)
	if !errors.Is(err, services.ErrUnsupportedAgent) || !strings.Contains(err.Error(), "agent plex not supported") {
		t.Fatalf("expected plex agent to be unsupported in show libraries, got %v", err)
	}

	set, err = ParseItem("com.plexapp.agents.thetvdb://121361", alternates, ids.KindShow)
	if err != nil {
		t.Fatalf("show ParseItem returned error: %v", err)
	}
	if set.TVDB != 121361 || !set.TMDB.Empty() || !set.IMDB.Empty() {
		t.Fatalf("alternates must be ignored outside the plex agent: %+v", set)
	}
}
