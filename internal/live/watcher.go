package live

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kndwin/evolu/internal/patch"
	"github.com/kndwin/evolu/internal/queryset"
	"github.com/kndwin/evolu/internal/store"
)

// Notification is delivered to subscribers when a refresh produced a
// non-empty patch sequence. Result is the held result after applying the
// patches; holders that keep their own copy can instead fold Patches over
// it with patch.Apply.
type Notification struct {
	Query   string
	Patches []patch.Patch
	Result  patch.HeldResult
}

// Listener receives notifications for one subscription.
// Called synchronously from the refresh path; keep it cheap.
type Listener func(Notification)

// DefaultInterval is the polling cadence for queries whose definition does
// not carry its own refresh_ms.
const DefaultInterval = time.Second

// Watcher keeps the results of a query set materialized and ships patches
// to subscribers. See the package doc for the threading model.
type Watcher struct {
	store  *store.Store
	defs   map[string]queryset.QueryDef
	order  []string // Definition order, for deterministic refresh sweeps
	queue  *dirtyQueue
	tokens TokenGenerator
	logger *slog.Logger

	interval time.Duration

	mu   sync.Mutex
	held map[string]patch.HeldResult
	subs map[string]map[string]Listener // query -> token -> listener
	byTk map[string]string              // token -> query
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// WithTokenGenerator overrides subscription token generation.
// Tests use a FixedGenerator for deterministic tokens.
func WithTokenGenerator(gen TokenGenerator) Option {
	return func(w *Watcher) { w.tokens = gen }
}

// WithInterval sets the default polling cadence for the Run loop.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) { w.interval = d }
}

// NewWatcher creates a watcher over the given store and query definitions.
// Every query starts Unknown: the first refresh always produces a full
// replacement.
func NewWatcher(s *store.Store, defs []queryset.QueryDef, opts ...Option) *Watcher {
	w := &Watcher{
		store:    s,
		defs:     make(map[string]queryset.QueryDef, len(defs)),
		queue:    newDirtyQueue(),
		tokens:   UUIDv7Generator{},
		logger:   slog.Default(),
		interval: DefaultInterval,
		held:     make(map[string]patch.HeldResult, len(defs)),
		subs:     make(map[string]map[string]Listener),
		byTk:     make(map[string]string),
	}
	for _, def := range defs {
		w.defs[def.Name] = def
		w.order = append(w.order, def.Name)
		w.held[def.Name] = patch.Unknown()
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Subscribe registers a listener for a query and returns the subscription
// token plus the currently held result (Unknown until the first refresh).
func (w *Watcher) Subscribe(query string, fn Listener) (string, patch.HeldResult, error) {
	if _, ok := w.defs[query]; !ok {
		return "", patch.Unknown(), newUnknownQueryError(query)
	}

	token := w.tokens.Generate()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.subs[query] == nil {
		w.subs[query] = make(map[string]Listener)
	}
	w.subs[query][token] = fn
	w.byTk[token] = query

	w.logger.Debug("subscribed", "query", query, "token", token)
	return token, w.held[query], nil
}

// Unsubscribe removes a subscription. When the last subscriber of a query
// goes away the held result is purged: folding [Purge] over it leaves the
// query Unknown, so a later re-subscribe starts from a full replacement
// rather than a stale snapshot.
func (w *Watcher) Unsubscribe(token string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	query, ok := w.byTk[token]
	if !ok {
		return
	}
	delete(w.byTk, token)
	delete(w.subs[query], token)

	if len(w.subs[query]) == 0 {
		delete(w.subs, query)
		purged, err := patch.Apply([]patch.Patch{patch.Purge{}}, w.held[query])
		if err == nil {
			w.held[query] = purged
		}
		w.logger.Debug("purged", "query", query)
	}
}

// Held returns the currently held result for a query.
func (w *Watcher) Held(query string) (patch.HeldResult, error) {
	if _, ok := w.defs[query]; !ok {
		return patch.Unknown(), newUnknownQueryError(query)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.held[query], nil
}

// MarkDirty flags a query for refresh on the Run loop.
// Thread-safe: may be called from any goroutine (e.g., after a write).
func (w *Watcher) MarkDirty(query string) error {
	if _, ok := w.defs[query]; !ok {
		return newUnknownQueryError(query)
	}
	w.queue.Mark(query)
	return nil
}

// Refresh re-executes one query, diffs against the held result, advances
// it, and notifies subscribers when anything changed. Returns the patch
// sequence (empty means no change, and no notification was sent).
func (w *Watcher) Refresh(ctx context.Context, query string) ([]patch.Patch, error) {
	def, ok := w.defs[query]
	if !ok {
		return nil, newUnknownQueryError(query)
	}

	next, err := w.store.Select(ctx, def.SQL, def.Params...)
	if err != nil {
		w.logger.Warn("refresh failed", "query", query, "error", err)
		return nil, newQueryFailedError(query, err)
	}

	w.mu.Lock()
	previous := w.held[query]
	patches := patch.Diff(previous, next)
	if len(patches) == 0 {
		w.mu.Unlock()
		w.logger.Debug("refresh clean", "query", query, "rows", len(next))
		return nil, nil
	}

	updated, err := patch.Apply(patches, previous)
	if err != nil {
		w.mu.Unlock()
		return nil, newPatchRejectedError(query, err)
	}
	w.held[query] = updated

	listeners := make([]Listener, 0, len(w.subs[query]))
	for _, fn := range w.subs[query] {
		listeners = append(listeners, fn)
	}
	w.mu.Unlock()

	w.logger.Debug("refresh changed", "query", query, "patches", len(patches), "rows", len(next))

	n := Notification{Query: query, Patches: patches, Result: updated}
	for _, fn := range listeners {
		fn(n)
	}
	return patches, nil
}

// RefreshAll refreshes every query in definition order.
// The first error stops the sweep.
func (w *Watcher) RefreshAll(ctx context.Context) error {
	for _, name := range w.order {
		if _, err := w.Refresh(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// Run polls until the context is cancelled: dirty-marked queries refresh as
// soon as the loop sees them, and the whole set refreshes on the loop
// cadence (the smallest refresh_ms in the set, bounded by the watcher
// interval).
//
// Must be called from exactly one goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.tick())
	defer ticker.Stop()
	defer w.queue.Close()

	for {
		// Drain explicit refresh requests first
		for {
			name, ok := w.queue.TryNext()
			if !ok {
				break
			}
			if _, err := w.Refresh(ctx, name); err != nil {
				w.logger.Warn("dirty refresh failed", "query", name, "error", err)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.queue.Wait():
			// Loop back and drain
		case <-ticker.C:
			if err := w.refreshDue(ctx); err != nil {
				w.logger.Warn("sweep failed", "error", err)
			}
		}
	}
}

// tick picks the loop granularity: the smallest per-query cadence, bounded
// by the watcher interval.
func (w *Watcher) tick() time.Duration {
	tick := w.interval
	for _, def := range w.defs {
		if def.RefreshMillis > 0 {
			d := time.Duration(def.RefreshMillis) * time.Millisecond
			if d < tick {
				tick = d
			}
		}
	}
	return tick
}

func (w *Watcher) refreshDue(ctx context.Context) error {
	for _, name := range w.order {
		if _, err := w.Refresh(ctx, name); err != nil {
			return err
		}
	}
	return nil
}
