package ids

import "testing"

func TestScalarZeroIsEmpty(t *testing.T) {
	if !Scalar[int64](0).Empty() {
		t.Fatal("expected zero scalar to be empty")
	}
	if !Scalar("").Empty() {
		t.Fatal("expected empty string scalar to be empty")
	}
	id := Scalar[int64](603)
	if id.Empty() || id.IsList() || id.First() != 603 {
		t.Fatalf("unexpected scalar: %#v", id)
	}
}

func TestListKeepsOrderAndCopies(t *testing.T) {
	src := []string{"tt1", "tt2"}
	id := List(src...)
	src[0] = "changed"
	if got := id.Values(); got[0] != "tt1" || got[1] != "tt2" {
		t.Fatalf("list not copied: %v", got)
	}
	if !id.IsList() || id.Len() != 2 {
		t.Fatalf("unexpected list: %#v", id)
	}
	if id.String() != "[tt1, tt2]" {
		t.Fatalf("unexpected string %q", id.String())
	}
	if !List[string]().Empty() {
		t.Fatal("expected empty list to be empty")
	}
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{"movie": KindMovie, "Movies": KindMovie, "show": KindShow, " TV ": KindShow}
	for in, want := range cases {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseKind("music"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestSetSufficient(t *testing.T) {
	cases := []struct {
		name     string
		set      Set
		kind     Kind
		wantKind Kind
		wantOK   bool
	}{
		{"movie with tmdb", Set{TMDB: Scalar[int64](603)}, KindMovie, KindMovie, true},
		{"movie without tmdb", Set{IMDB: Scalar("tt0133093")}, KindMovie, "", false},
		{"show with tvdb", Set{TVDB: 121361}, KindShow, KindShow, true},
		{"show with tmdb only", Set{TMDB: Scalar[int64](1399)}, KindShow, "", false},
		{"anime bridge anidb", Set{AniDB: "1234", TMDB: Scalar[int64](42)}, KindShow, KindMovie, true},
		{"anime bridge mal", Set{MAL: "5114", TMDB: Scalar[int64](42)}, KindShow, KindMovie, true},
		{"anime without tmdb", Set{AniDB: "1234"}, KindShow, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, ok := tc.set.Sufficient(tc.kind)
			if ok != tc.wantOK || kind != tc.wantKind {
				t.Fatalf("Sufficient = (%q, %v), want (%q, %v)", kind, ok, tc.wantKind, tc.wantOK)
			}
		})
	}
}

func TestSetMergeAndAligned(t *testing.T) {
	base := Set{TMDB: Scalar[int64](1), IMDB: Scalar("tt1"), TVDB: 5}
	merged := base.Merge(Set{IMDB: Scalar("tt2"), AniDB: "9"})
	if merged.TMDB.First() != 1 || merged.IMDB.First() != "tt2" || merged.TVDB != 5 || merged.AniDB != "9" {
		t.Fatalf("unexpected merge result: %+v", merged)
	}

	aligned := Set{TMDB: List[int64](1, 2), IMDB: List("tt1", "tt2")}
	if !aligned.Aligned() {
		t.Fatal("expected equal-length lists to be aligned")
	}
	misaligned := Set{TMDB: List[int64](1, 2), IMDB: Scalar("tt1")}
	if misaligned.Aligned() {
		t.Fatal("expected scalar imdb beside tmdb list to be misaligned")
	}
}
