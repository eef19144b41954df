package scheduler

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hamed0406/statusbot/internal/channel"
	"github.com/hamed0406/statusbot/internal/domain"
	"github.com/hamed0406/statusbot/internal/format"
	"github.com/hamed0406/statusbot/internal/probe"
)

// --- fakes ---

type fakePoller struct {
	mu       sync.Mutex
	starts   []time.Time
	inFlight atomic.Int32
	overlap  atomic.Bool
	outcome  domain.Outcome
	panicAt  int
}

func (f *fakePoller) Poll(ctx context.Context) domain.Outcome {
	if f.inFlight.Add(1) > 1 {
		f.overlap.Store(true)
	}
	defer f.inFlight.Add(-1)

	f.mu.Lock()
	f.starts = append(f.starts, time.Now())
	n := len(f.starts)
	f.mu.Unlock()

	if f.panicAt == n {
		panic("poller blew up")
	}
	return f.outcome
}

type update struct {
	name string
	at   time.Time
}

type fakeUpdater struct {
	err  error
	seen chan update
}

func newFakeUpdater(err error) *fakeUpdater {
	return &fakeUpdater{err: err, seen: make(chan update, 64)}
}

func (f *fakeUpdater) Update(ctx context.Context, name string) error {
	select {
	case f.seen <- update{name: name, at: time.Now()}:
	default:
	}
	return f.err
}

type fakeRenamer struct {
	err   error
	names chan string
}

func (f *fakeRenamer) Rename(ctx context.Context, channelID uint64, name string) error {
	select {
	case f.names <- name:
	default:
	}
	return f.err
}

var templates = format.Templates{Online: "$ONLINE/$MAX online", Offline: "Server offline"}

func startLoop(t *testing.T, l *Loop) (cancel func(), done <-chan struct{}) {
	t.Helper()
	ctx, c := context.WithCancel(context.Background())
	ch := make(chan struct{})
	go func() {
		defer close(ch)
		l.Run(ctx)
	}()
	return c, ch
}

func waitUpdates(t *testing.T, u *fakeUpdater, n int) []update {
	t.Helper()
	var out []update
	for len(out) < n {
		select {
		case up := <-u.seen:
			out = append(out, up)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d updates", len(out), n)
		}
	}
	return out
}

// --- tests ---

func TestLoop_ReachableUpdatesWithCounts(t *testing.T) {
	p := &fakePoller{outcome: domain.Reachable(domain.Players{Online: 5, Max: 10}, time.Millisecond)}
	u := newFakeUpdater(nil)
	l := NewLoop(zap.NewNop(), p, u, templates, 10*time.Millisecond)

	cancel, done := startLoop(t, l)
	ups := waitUpdates(t, u, 1)
	cancel()
	<-done

	if ups[0].name != "5/10 online" {
		t.Fatalf("want %q, got %q", "5/10 online", ups[0].name)
	}
}

func TestLoop_FailedUpdateDoesNotStopLoop(t *testing.T) {
	interval := 20 * time.Millisecond
	p := &fakePoller{outcome: domain.Unreachable(domain.KindRefused, errors.New("refused"))}
	u := newFakeUpdater(errors.New("api error"))
	l := NewLoop(zap.NewNop(), p, u, templates, interval)

	cancel, done := startLoop(t, l)
	ups := waitUpdates(t, u, 3)
	cancel()
	<-done

	for i, up := range ups {
		if up.name != "Server offline" {
			t.Fatalf("update %d: want offline literal, got %q", i, up.name)
		}
	}
	for i := 1; i < len(ups); i++ {
		if gap := ups[i].at.Sub(ups[i-1].at); gap < interval {
			t.Fatalf("cycles %d and %d only %s apart, want >= %s", i-1, i, gap, interval)
		}
	}
}

func TestLoop_CyclesAreSequentialAndSpaced(t *testing.T) {
	interval := 15 * time.Millisecond
	p := &fakePoller{outcome: domain.Reachable(domain.Players{Online: 1, Max: 2}, 0)}
	u := newFakeUpdater(nil)
	l := NewLoop(zap.NewNop(), p, u, templates, interval)

	cancel, done := startLoop(t, l)
	ups := waitUpdates(t, u, 5)
	cancel()
	<-done

	if p.overlap.Load() {
		t.Fatalf("cycles overlapped")
	}
	p.mu.Lock()
	starts := append([]time.Time(nil), p.starts...)
	p.mu.Unlock()

	for i := 1; i < len(starts) && i < len(ups); i++ {
		if !starts[i].After(starts[i-1]) {
			t.Fatalf("cycle starts not increasing at %d", i)
		}
		// next poll starts a full interval after the previous update resolved
		if gap := starts[i].Sub(ups[i-1].at); gap < interval {
			t.Fatalf("cycle %d started %s after previous update, want >= %s", i, gap, interval)
		}
	}
}

func TestLoop_PanicInCycleIsContained(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := &fakePoller{outcome: domain.Reachable(domain.Players{Online: 2, Max: 4}, 0), panicAt: 1}
	u := newFakeUpdater(nil)
	l := NewLoop(zap.New(core), p, u, templates, 10*time.Millisecond)

	cancel, done := startLoop(t, l)
	ups := waitUpdates(t, u, 1) // first cycle panicked, second one updates
	cancel()
	<-done

	if ups[0].name != "2/4 online" {
		t.Fatalf("unexpected name %q", ups[0].name)
	}
	if logs.FilterMessage("cycle_panic").Len() != 1 {
		t.Fatalf("want one cycle_panic log, got %v", logs.All())
	}
}

func TestLoop_StopsOnCancel(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := &fakePoller{outcome: domain.Reachable(domain.Players{}, 0)}
	u := newFakeUpdater(nil)
	l := NewLoop(zap.New(core), p, u, templates, time.Hour)

	cancel, done := startLoop(t, l)
	waitUpdates(t, u, 1)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("loop did not stop after cancel")
	}
	if logs.FilterMessage("loop_stopped").Len() != 1 {
		t.Fatalf("want loop_stopped log")
	}
}

func TestLoop_NonPositiveIntervalDisabled(t *testing.T) {
	p := &fakePoller{}
	u := newFakeUpdater(nil)
	NewLoop(zap.NewNop(), p, u, templates, 0).Run(context.Background())
	if len(p.starts) != 0 {
		t.Fatalf("disabled loop must not poll")
	}
}

// --- end-to-end with the real poller and updater ---

func TestEndToEnd_ReachableServer(t *testing.T) {
	q := probe.QuerierFunc(func(context.Context, string, uint16) (domain.Players, error) {
		return domain.Players{Online: 5, Max: 10}, nil
	})
	r := &fakeRenamer{names: make(chan string, 8)}
	l := NewLoop(zap.NewNop(),
		probe.NewPoller(zap.NewNop(), q, "mc.example.com", 25565),
		channel.NewUpdater(zap.NewNop(), r, 99),
		templates, time.Hour)

	cancel, done := startLoop(t, l)
	defer func() { cancel(); <-done }()

	select {
	case name := <-r.names:
		if name != "5/10 online" {
			t.Fatalf("want %q, got %q", "5/10 online", name)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no channel update")
	}
}

func TestEndToEnd_RefusedServerShowsOffline(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := uint16(ln.Addr().(*net.TCPAddr).Port)
	_ = ln.Close()

	r := &fakeRenamer{names: make(chan string, 8)}
	l := NewLoop(zap.NewNop(),
		probe.NewPoller(zap.NewNop(), probe.NewJava(), "127.0.0.1", port),
		channel.NewUpdater(zap.NewNop(), r, 99),
		templates, time.Hour)

	cancel, done := startLoop(t, l)
	defer func() { cancel(); <-done }()

	select {
	case name := <-r.names:
		if name != "Server offline" {
			t.Fatalf("want offline literal, got %q", name)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no channel update")
	}
}

func TestEndToEnd_UpdateErrorNextCycleRuns(t *testing.T) {
	q := probe.QuerierFunc(func(context.Context, string, uint16) (domain.Players, error) {
		return domain.Players{Online: 1, Max: 8}, nil
	})
	r := &fakeRenamer{err: errors.New("HTTP 500"), names: make(chan string, 8)}
	l := NewLoop(zap.NewNop(),
		probe.NewPoller(zap.NewNop(), q, "mc.example.com", 25565),
		channel.NewUpdater(zap.NewNop(), r, 99),
		templates, 10*time.Millisecond)

	cancel, done := startLoop(t, l)
	defer func() { cancel(); <-done }()

	for i := 0; i < 2; i++ {
		select {
		case <-r.names:
		case <-time.After(2 * time.Second):
			t.Fatalf("cycle %d never reached the channel", i)
		}
	}
}
