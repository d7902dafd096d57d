package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tourbook/service-earnings/internal/common/auth"
	"github.com/tourbook/service-earnings/internal/domain/booking"
	"github.com/tourbook/service-earnings/internal/domain/earnings"
	"github.com/tourbook/service-earnings/internal/domain/identity"
)

const fallbackErrorMessage = "failed to load payment statistics"

// Snapshot is the read-only view handed to presentation code. RefreshedAt is
// when Stats were last replaced by a successful fetch; zero for the initial value.
type Snapshot struct {
	Stats       earnings.PaymentStats
	RefreshedAt time.Time
	IsLoading   bool
	Error       string
}

// ChangeKind says why a listener is being notified.
type ChangeKind int

const (
	FetchStarted ChangeKind = iota
	FetchSucceeded
	FetchFailed
	// FetchDiscarded is a fetch that settled after the viewer stopped being
	// that guide; its result is dropped.
	FetchDiscarded
)

// Change is delivered to listeners after every state transition.
type Change struct {
	Kind     ChangeKind
	GuideID  string
	Snapshot Snapshot
}

// Listener receives changes synchronously on the goroutine that caused them.
type Listener func(ctx context.Context, change Change)

// Aggregator owns one viewer's PaymentStats. Overlapping fetches are not
// serialized: whichever settles last is the one observed.
type Aggregator struct {
	source  booking.Source
	metrics *Metrics
	logger  *zap.Logger
	now     func() time.Time

	mu        sync.RWMutex
	observed  bool
	identity  identity.Identity
	stats     earnings.PaymentStats
	refreshed time.Time
	inFlight  int
	errMsg    string
	listeners map[int]Listener
	nextID    int
}

// NewAggregator creates an aggregator holding the zero snapshot.
func NewAggregator(source booking.Source, metrics *Metrics, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		source:    source,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		stats:     earnings.Zero(),
		listeners: make(map[int]Listener),
	}
}

// Snapshot returns the current stats with loading and error status.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshotLocked()
}

func (a *Aggregator) snapshotLocked() Snapshot {
	return Snapshot{Stats: a.stats, RefreshedAt: a.refreshed, IsLoading: a.inFlight > 0, Error: a.errMsg}
}

// Identity returns the identity the aggregator last observed.
func (a *Aggregator) Identity() identity.Identity {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.identity
}

// Subscribe registers l and returns a function that unregisters it.
func (a *Aggregator) Subscribe(l Listener) (cancel func()) {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = l
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

// Observe registers the aggregator on s so identity changes drive fetches.
func (a *Aggregator) Observe(s *Session) (cancel func()) {
	return s.Watch(a.identityChanged)
}

func (a *Aggregator) identityChanged(ctx context.Context, prev, next identity.Identity) {
	a.mu.Lock()
	a.observed = true
	a.identity = next
	if !next.IsAuthorizedGuide() || prev.UserID != next.UserID {
		// A different or unauthorized viewer never sees the previous viewer's numbers.
		a.stats = earnings.Zero()
		a.refreshed = time.Time{}
		a.errMsg = ""
	}
	a.mu.Unlock()

	if next.IsAuthorizedGuide() {
		a.Fetch(ctx, next.UserID, next.Role)
	}
}

// Refresh re-runs Fetch with the identity currently observed.
func (a *Aggregator) Refresh(ctx context.Context) {
	id := a.Identity()
	a.Fetch(ctx, id.UserID, id.Role)
}

// Fetch recomputes the stats for guideID. Unless role is guide and guideID is
// set it does nothing. On success the stats are replaced and the error cleared;
// on failure the previous stats are kept and the error message is set.
func (a *Aggregator) Fetch(ctx context.Context, guideID string, role auth.Role) {
	started := time.Now()
	if role != auth.RoleGuide || guideID == "" {
		a.metrics.observeFetch(fetchResultSkipped, started)
		return
	}

	a.begin(ctx, guideID)

	var (
		stats earnings.PaymentStats
		err   error
	)
	defer func() {
		a.settle(ctx, guideID, stats, err, started)
	}()

	stats, err = a.load(ctx, guideID)
}

func (a *Aggregator) load(ctx context.Context, guideID string) (stats earnings.PaymentStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure computing payment statistics: %v", r)
		}
	}()

	rows, err := a.source.FindByGuide(ctx, guideID, booking.FinancialStatuses)
	if err != nil {
		return earnings.PaymentStats{}, err
	}
	return earnings.Compute(rows), nil
}

func (a *Aggregator) begin(ctx context.Context, guideID string) {
	a.mu.Lock()
	a.inFlight++
	snap := a.snapshotLocked()
	listeners := a.listenersLocked()
	a.mu.Unlock()

	notify(ctx, listeners, Change{Kind: FetchStarted, GuideID: guideID, Snapshot: snap})
}

func (a *Aggregator) settle(ctx context.Context, guideID string, stats earnings.PaymentStats, err error, started time.Time) {
	kind := FetchSucceeded
	result := fetchResultSuccess

	a.mu.Lock()
	a.inFlight--
	switch {
	case !a.acceptsLocked(guideID):
		kind = FetchDiscarded
		result = fetchResultDiscarded
	case err != nil:
		kind = FetchFailed
		result = fetchResultError
		a.errMsg = errorMessage(err)
	default:
		a.stats = stats
		a.refreshed = a.now()
		a.errMsg = ""
	}
	snap := a.snapshotLocked()
	listeners := a.listenersLocked()
	a.mu.Unlock()

	a.metrics.observeFetch(result, started)
	switch kind {
	case FetchDiscarded:
		a.logger.Debug("discarding payment statistics for a viewer that changed",
			zap.String("guide_id", guideID),
		)
	case FetchFailed:
		a.logger.Warn("payment statistics fetch failed",
			zap.String("guide_id", guideID),
			zap.Error(err),
		)
	default:
		a.logger.Debug("payment statistics refreshed",
			zap.String("guide_id", guideID),
			zap.Int64("pending_payments", stats.PendingPayments),
			zap.Int64("completed_payments", stats.CompletedPayments),
			zap.String("total_earnings", stats.TotalEarnings.String()),
		)
	}

	notify(ctx, listeners, Change{Kind: kind, GuideID: guideID, Snapshot: snap})
}

// acceptsLocked reports whether a fetch for guideID may still update the
// state. Once a session is observed, only the current authorized guide may.
func (a *Aggregator) acceptsLocked(guideID string) bool {
	if !a.observed {
		return true
	}
	return a.identity.IsAuthorizedGuide() && a.identity.UserID == guideID
}

func (a *Aggregator) listenersLocked() []Listener {
	out := make([]Listener, 0, len(a.listeners))
	for _, l := range a.listeners {
		out = append(out, l)
	}
	return out
}

func notify(ctx context.Context, listeners []Listener, change Change) {
	for _, l := range listeners {
		l(ctx, change)
	}
}

func errorMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallbackErrorMessage
}
