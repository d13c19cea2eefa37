package testsupport

import (
	"context"
	"fmt"
	"sync"

	"plexmeta/internal/convert"
)

// CallLog records converter invocations as "provider:operation:input".
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *CallLog) record(provider, op string, input any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.calls = append(l.calls, fmt.Sprintf("%s:%s:%v", provider, op, input))
	l.mu.Unlock()
}

// Calls returns a copy of the recorded invocations in order.
func (l *CallLog) Calls() []string {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

// Len returns the number of recorded invocations.
func (l *CallLog) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

func lookup[K comparable, V any](log *CallLog, provider, op string, table map[K]V, key K) (V, error) {
	log.record(provider, op, key)
	if value, ok := table[key]; ok {
		return value, nil
	}
	var zero V
	return zero, convert.NotFound(provider, op, key)
}

// FakeProvider is a map-backed TMDb or Trakt converter. Missing keys fail
// with services.ErrConversionNotFound.
type FakeProvider struct {
	Name     string
	Log      *CallLog
	IMDBTMDB map[string]int64
	TVDBTMDB map[int64]int64
	TMDBIMDB map[int64]string
	TMDBTVDB map[int64]int64
	IMDBTVDB map[string]int64
}

var (
	_ convert.TMDBConverter  = (*FakeProvider)(nil)
	_ convert.TraktConverter = (*FakeProvider)(nil)
)

func (f *FakeProvider) IMDBToTMDB(_ context.Context, id string) (int64, error) {
	return lookup(f.Log, f.Name, "imdb_to_tmdb", f.IMDBTMDB, id)
}

func (f *FakeProvider) TVDBToTMDB(_ context.Context, id int64) (int64, error) {
	return lookup(f.Log, f.Name, "tvdb_to_tmdb", f.TVDBTMDB, id)
}

func (f *FakeProvider) TMDBToIMDB(_ context.Context, id int64) (string, error) {
	return lookup(f.Log, f.Name, "tmdb_to_imdb", f.TMDBIMDB, id)
}

func (f *FakeProvider) TMDBToTVDB(_ context.Context, id int64) (int64, error) {
	return lookup(f.Log, f.Name, "tmdb_to_tvdb", f.TMDBTVDB, id)
}

func (f *FakeProvider) IMDBToTVDB(_ context.Context, id string) (int64, error) {
	return lookup(f.Log, f.Name, "imdb_to_tvdb", f.IMDBTVDB, id)
}

// FakeAniDB is a map-backed AniDB converter.
type FakeAniDB struct {
	Log  *CallLog
	TVDB map[string]int64
	IMDB map[string]string
}

var _ convert.AniDBConverter = (*FakeAniDB)(nil)

func (f *FakeAniDB) AniDBToTVDB(_ context.Context, id string) (int64, error) {
	return lookup(f.Log, "anidb", "anidb_to_tvdb", f.TVDB, id)
}

func (f *FakeAniDB) AniDBToIMDB(_ context.Context, id string) (string, error) {
	return lookup(f.Log, "anidb", "anidb_to_imdb", f.IMDB, id)
}

// FakeMAL is a map-backed MyAnimeList converter.
type FakeMAL struct {
	Log *CallLog
	IDs map[string]convert.MALIDs
}

var _ convert.MALConverter = (*FakeMAL)(nil)

func (f *FakeMAL) Lookup(_ context.Context, id string) (convert.MALIDs, error) {
	return lookup(f.Log, "mal", "lookup", f.IDs, id)
}

func (f *FakeMAL) MALToTVDB(ctx context.Context, id string) (int64, error) {
	f.Log.record("mal", "mal_to_tvdb", id)
	if ids, ok := f.IDs[id]; ok && ids.TVDB > 0 {
		return ids.TVDB, nil
	}
	return 0, convert.NotFound("mal", "mal_to_tvdb", id)
}

func (f *FakeMAL) MALToTMDB(ctx context.Context, id string) (int64, error) {
	f.Log.record("mal", "mal_to_tmdb", id)
	if ids, ok := f.IDs[id]; ok && ids.TMDB > 0 {
		return ids.TMDB, nil
	}
	return 0, convert.NotFound("mal", "mal_to_tmdb", id)
}
