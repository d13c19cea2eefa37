package mapper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"plexmeta/internal/ids"
	"plexmeta/internal/logging"
	"plexmeta/internal/resolve"
	"plexmeta/internal/services"
)

// Resolver resolves one item. *resolve.Resolver satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, item resolve.Item, kind ids.Kind) (resolve.Result, error)
}

// Failure records an item that could not be resolved.
type Failure struct {
	Handle string
	Title  string
	GUID   string
	Err    error
}

// Mapping is the canonical-id index of one library, rebuilt on every run.
type Mapping struct {
	Library       Library
	CorrelationID string
	// Movies maps TMDb ids to item handles.
	Movies map[int64]string
	// Shows maps TVDb ids to item handles.
	Shows     map[int64]string
	Processed int
	Failures  []Failure
}

// Mapper builds Mappings by resolving every item of a library.
type Mapper struct {
	source   Source
	resolver Resolver
	workers  int
	logger   *slog.Logger
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithWorkers bounds the number of concurrent resolutions. Values below one
// mean sequential processing.
func WithWorkers(n int) Option {
	return func(m *Mapper) {
		if n < 1 {
			n = 1
		}
		m.workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mapper) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a Mapper.
func New(source Source, resolver Resolver, opts ...Option) *Mapper {
	m := &Mapper{
		source:   source,
		resolver: resolver,
		workers:  1,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "mapper")
	return m
}

// Map resolves every item of library exactly once. Item failures are
// collected in the result; only enumeration failures and cancellation are
// returned as errors. On cancellation no further items are scheduled and the
// partial mapping is returned with ctx.Err().
func (m *Mapper) Map(ctx context.Context, library Library) (Mapping, error) {
	correlationID := uuid.NewString()
	ctx = services.WithRequestID(ctx, correlationID)
	ctx = services.WithLibrary(ctx, library.Name)
	logger := logging.WithContext(ctx, m.logger)

	mapping := Mapping{
		Library:       library,
		CorrelationID: correlationID,
		Movies:        make(map[int64]string),
		Shows:         make(map[int64]string),
	}

	logger.Info(fmt.Sprintf("Mapping %s Library: %s", kindLabel(library.Kind, false), library.Name),
		logging.String(logging.FieldEventType, "mapping_started"),
		logging.String("kind", string(library.Kind)),
		logging.Int("workers", m.workers),
	)
	start := time.Now()

	items, err := m.source.Items(ctx, library)
	if err != nil {
		return mapping, fmt.Errorf("list items of %q: %w", library.Name, err)
	}

	run := &mappingRun{
		mapping:  &mapping,
		owners:   make(map[ownerKey]int),
		total:    len(items),
		sampler:  logging.NewProgressSampler(10),
		logger:   logger,
		resolver: m.resolver,
		kind:     library.Kind,
	}

	var group errgroup.Group
	group.SetLimit(m.workers)
	for i, item := range items {
		if ctx.Err() != nil {
			break
		}
		group.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			run.resolveItem(ctx, i, item)
			return nil
		})
	}
	_ = group.Wait()

	sort.Slice(run.failures, func(a, b int) bool { return run.failures[a].index < run.failures[b].index })
	for _, f := range run.failures {
		mapping.Failures = append(mapping.Failures, f.Failure)
	}

	if err := ctx.Err(); err != nil {
		logging.WarnWithContext(logger, "mapping interrupted", "mapping_interrupted",
			logging.Int("processed", mapping.Processed),
			logging.Int("total", len(items)),
			logging.String(logging.FieldImpact, "mapping is incomplete; cached ids are kept"),
		)
		return mapping, err
	}

	logger.Info(fmt.Sprintf("Processed %d %s", mapping.Processed, kindLabel(library.Kind, true)),
		logging.String(logging.FieldEventType, "mapping_completed"),
		logging.Int("movies", len(mapping.Movies)),
		logging.Int("shows", len(mapping.Shows)),
		logging.Int("failures", len(mapping.Failures)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return mapping, nil
}

type ownerKey struct {
	kind ids.Kind
	id   int64
}

type indexedFailure struct {
	Failure
	index int
}

// mappingRun holds the shared state of one Map call.
type mappingRun struct {
	mu       sync.Mutex
	mapping  *Mapping
	owners   map[ownerKey]int
	failures []indexedFailure
	done     int
	total    int

	sampler  *logging.ProgressSampler
	logger   *slog.Logger
	resolver Resolver
	kind     ids.Kind
}

func (r *mappingRun) resolveItem(ctx context.Context, index int, item Item) {
	itemCtx := services.WithItem(ctx, item.Handle)
	result, err := r.resolver.Resolve(itemCtx, resolve.Item{
		Title:      item.Title,
		GUID:       item.GUID,
		Alternates: item.Alternates,
	}, r.kind)
	if err != nil && ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.done++
	r.mapping.Processed++
	if err != nil {
		r.failures = append(r.failures, indexedFailure{
			Failure: Failure{Handle: item.Handle, Title: item.Title, GUID: item.GUID, Err: err},
			index:   index,
		})
		logging.WarnWithContext(r.logger, "item not mapped", "item_unmapped",
			logging.String(logging.FieldItem, item.Handle),
			logging.String(logging.FieldTitle, item.Title),
			logging.String(logging.FieldGUID, item.GUID),
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the item's match in the media server or configure more providers"),
			logging.String(logging.FieldImpact, "item is excluded from collections"),
		)
	} else {
		target := r.mapping.Shows
		if result.Kind == ids.KindMovie {
			target = r.mapping.Movies
		}
		// Later items win on duplicate ids, matching sequential order.
		for _, id := range result.IDs {
			key := ownerKey{kind: result.Kind, id: id}
			if owner, ok := r.owners[key]; ok && owner > index {
				continue
			}
			r.owners[key] = index
			target[id] = item.Handle
		}
	}

	if r.sampler.ShouldLog(r.done, r.total) {
		r.logger.Info(fmt.Sprintf("Processing: %d/%d %s", r.done, r.total, item.Title),
			logging.String(logging.FieldEventType, "mapping_progress"),
			logging.Int("processed", r.done),
			logging.Int("total", r.total),
		)
	}
}

// kindLabel renders a kind for log lines: "Movie", "Shows".
func kindLabel(kind ids.Kind, plural bool) string {
	label := cases.Title(language.English).String(string(kind))
	if plural {
		label += "s"
	}
	return label
}
