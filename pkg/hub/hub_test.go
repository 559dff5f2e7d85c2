package hub

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"railway/pkg/envelope"
	"railway/pkg/models"
)

type fakeConn struct {
	in     chan []byte
	mu     sync.Mutex
	out    [][]byte
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []byte, 4)}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	msg, ok := <-f.in
	if !ok {
		return 0, nil, errors.New("closed")
	}
	return textMessage, msg, nil
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out = append(f.out, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) sent() []envelope.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	envs := make([]envelope.Envelope, 0, len(f.out))
	for _, raw := range f.out {
		var e envelope.Envelope
		json.Unmarshal(raw, &e)
		envs = append(envs, e)
	}
	return envs
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

func TestDeliverReachesOnlyJourneyWatchers(t *testing.T) {
	h := New()
	a, b := newFakeConn(), newFakeConn()

	go h.HandleJourneyConn(a, 1, 10, models.AvailabilityUpdate{JourneyID: 1, TicketsAvailable: 5})
	go h.HandleJourneyConn(b, 2, 11, models.AvailabilityUpdate{JourneyID: 2, TicketsAvailable: 9})
	waitFor(t, func() bool { return len(a.sent()) == 1 && len(b.sent()) == 1 })

	env, err := envelope.NewEvent(ActionAvailability, "journeys", models.AvailabilityUpdate{JourneyID: 1, TicketsAvailable: 4})
	if err != nil {
		t.Fatal(err)
	}
	h.Deliver(env)

	waitFor(t, func() bool { return len(a.sent()) == 2 })
	last, err := envelope.ParseData[models.AvailabilityUpdate](a.sent()[1])
	if err != nil {
		t.Fatal(err)
	}
	if last.TicketsAvailable != 4 {
		t.Fatalf("got %+v", last)
	}
	if n := len(b.sent()); n != 1 {
		t.Fatalf("journey 2 watcher got %d messages, want only its snapshot", n)
	}

	close(a.in)
	close(b.in)
	waitFor(t, func() bool { return h.Watchers(1) == 0 && h.Watchers(2) == 0 })
}

func TestPingPong(t *testing.T) {
	h := New()
	c := newFakeConn()
	go h.HandleJourneyConn(c, 1, 0, models.AvailabilityUpdate{JourneyID: 1})

	ping, _ := envelope.New("ping", "client").Marshal()
	c.in <- ping
	c.in <- []byte("not json")

	waitFor(t, func() bool { return len(c.sent()) == 3 })
	got := c.sent()
	if got[1].Action != "pong" {
		t.Fatalf("got action %q, want pong", got[1].Action)
	}
	if got[2].Error == nil || got[2].Error.Code != 400 {
		t.Fatalf("expected 400 error envelope, got %+v", got[2])
	}
	close(c.in)
}
