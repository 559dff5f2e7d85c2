package hub

import (
	"log"
	"sync"

	"railway/pkg/envelope"
	"railway/pkg/models"
)

const (
	// Channel carries availability events between instances.
	Channel = "journeys:availability"
	// ActionAvailability is the envelope action pushed to subscribers.
	ActionAvailability = "availability"
)

// Conn is the part of a websocket connection the hub needs.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

const textMessage = 1

type clientConn struct {
	conn   Conn
	userID int
	mu     sync.Mutex
}

func (cc *clientConn) send(data []byte) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if err := cc.conn.WriteMessage(textMessage, data); err != nil {
		log.Printf("[HUB] send error user=%d: %v", cc.userID, err)
	}
}

// Subscriber is the broker surface the hub listens on.
type Subscriber interface {
	Subscribe(channels ...string)
	On(action string, fn func(envelope.Envelope))
}

// Hub groups websocket clients into one room per journey.
type Hub struct {
	mu    sync.RWMutex
	rooms map[int]map[*clientConn]struct{}
}

func New() *Hub {
	return &Hub{rooms: make(map[int]map[*clientConn]struct{})}
}

// Listen wires the hub to availability events from every instance.
func (h *Hub) Listen(s Subscriber) {
	s.On(ActionAvailability, h.Deliver)
	s.Subscribe(Channel)
}

// HandleJourneyConn registers c in the journey's room, pushes snapshot and
// blocks reading until the client goes away.
func (h *Hub) HandleJourneyConn(c Conn, journeyID, userID int, snapshot models.AvailabilityUpdate) {
	cc := &clientConn{conn: c, userID: userID}

	h.mu.Lock()
	room, ok := h.rooms[journeyID]
	if !ok {
		room = make(map[*clientConn]struct{})
		h.rooms[journeyID] = room
	}
	room[cc] = struct{}{}
	h.mu.Unlock()

	log.Printf("[HUB] Client joined journey=%d user_id=%d watchers=%d", journeyID, userID, h.Watchers(journeyID))

	defer func() {
		h.mu.Lock()
		delete(h.rooms[journeyID], cc)
		if len(h.rooms[journeyID]) == 0 {
			delete(h.rooms, journeyID)
		}
		h.mu.Unlock()
		c.Close()
		log.Printf("[HUB] Client left journey=%d user_id=%d", journeyID, userID)
	}()

	if env, err := envelope.NewEvent(ActionAvailability, "journeys", snapshot); err == nil {
		if raw, err := env.Marshal(); err == nil {
			cc.send(raw)
		}
	}

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			return
		}

		env, err := envelope.Unmarshal(raw)
		if err != nil {
			data, _ := envelope.NewError("message", 400, "invalid JSON").Marshal()
			cc.send(data)
			continue
		}

		switch env.Action {
		case "ping":
			data, _ := envelope.New("pong", "system").Marshal()
			cc.send(data)
		default:
			data, _ := envelope.NewError(env.Action, 404, "unknown action: "+env.Action).Marshal()
			cc.send(data)
		}
	}
}

// Deliver forwards an availability envelope to the watchers of its journey.
func (h *Hub) Deliver(env envelope.Envelope) {
	update, err := envelope.ParseData[models.AvailabilityUpdate](env)
	if err != nil {
		log.Printf("[HUB] bad availability payload: %v", err)
		return
	}
	raw, err := env.Marshal()
	if err != nil {
		return
	}

	h.mu.RLock()
	conns := make([]*clientConn, 0, len(h.rooms[update.JourneyID]))
	for cc := range h.rooms[update.JourneyID] {
		conns = append(conns, cc)
	}
	h.mu.RUnlock()

	for _, cc := range conns {
		cc.send(raw)
	}
}

// Broadcast delivers an event straight to this instance's watchers. It
// stands in for the broker when Redis is unavailable; channel is ignored.
func (h *Hub) Broadcast(channel, action, service string, data interface{}) error {
	env, err := envelope.NewEvent(action, service, data)
	if err != nil {
		return err
	}
	h.Deliver(env)
	return nil
}

func (h *Hub) Watchers(journeyID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[journeyID])
}
