package application

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tourbook/service-earnings/internal/common/kafka"
	"github.com/tourbook/service-earnings/internal/domain/booking"
)

type sourceCall struct {
	guideID  string
	statuses []booking.Status
}

// fakeSource is an in-memory booking.Source. When block is set, FindByGuide
// signals started and then waits for block to be closed.
type fakeSource struct {
	mu      sync.Mutex
	rows    []booking.Booking
	err     error
	panicV  interface{}
	calls   []sourceCall
	started chan struct{}
	block   chan struct{}
}

func (f *fakeSource) FindByGuide(ctx context.Context, guideID string, statuses []booking.Status) ([]booking.Booking, error) {
	f.mu.Lock()
	f.calls = append(f.calls, sourceCall{guideID: guideID, statuses: statuses})
	rows, err, panicV := f.rows, f.err, f.panicV
	started, block := f.started, f.block
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if panicV != nil {
		panic(panicV)
	}
	if err != nil {
		return nil, err
	}
	out := make([]booking.Booking, len(rows))
	copy(out, rows)
	return out, nil
}

func (f *fakeSource) set(rows []booking.Booking, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = rows
	f.err = err
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSource) lastCall() sourceCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	topics []string
	events []kafka.CloudEvent
}

func (p *fakePublisher) PublishEvent(ctx context.Context, topic string, ce kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, ce)
	return p.err
}

func (p *fakePublisher) published() []kafka.CloudEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]kafka.CloudEvent, len(p.events))
	copy(out, p.events)
	return out
}

func testMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

func newTestAggregator(src booking.Source) *Aggregator {
	return NewAggregator(src, testMetrics(), zap.NewNop())
}

func row(t *testing.T, status booking.Status, price string) booking.Booking {
	t.Helper()
	d, err := decimal.NewFromString(price)
	if err != nil {
		t.Fatalf("bad price %q: %v", price, err)
	}
	return booking.Booking{Status: status, TotalPrice: d}
}

func scenarioRows(t *testing.T) []booking.Booking {
	return []booking.Booking{
		row(t, booking.StatusPaid, "100"),
		row(t, booking.StatusPaid, "50"),
		row(t, booking.StatusCompleted, "200"),
	}
}

// gatedSource answers each FindByGuide call with the next queued response,
// announcing the call index on started and holding it until its gate closes.
type gatedSource struct {
	mu        sync.Mutex
	responses [][]booking.Booking
	gates     []chan struct{}
	next      int
	started   chan int
}

func newGatedSource(responses ...[]booking.Booking) *gatedSource {
	gates := make([]chan struct{}, len(responses))
	for i := range gates {
		gates[i] = make(chan struct{})
	}
	return &gatedSource{
		responses: responses,
		gates:     gates,
		started:   make(chan int, len(responses)),
	}
}

func (g *gatedSource) FindByGuide(ctx context.Context, guideID string, statuses []booking.Status) ([]booking.Booking, error) {
	g.mu.Lock()
	i := g.next
	g.next++
	g.mu.Unlock()

	g.started <- i
	<-g.gates[i]
	return g.responses[i], nil
}

func (g *gatedSource) release(i int) {
	close(g.gates[i])
}
