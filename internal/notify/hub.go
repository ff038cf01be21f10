package notify

import (
	"log/slog"
	"sync"
)

const defaultChannelBuffer = 64

// Hub routes events to subscribers keyed by episode ID. Publishing never
// blocks: events to an episode with no subscriber are dropped, and a
// subscriber that falls behind loses the event rather than stalling the job.
type Hub struct {
	mu      sync.Mutex
	buffer  int
	streams map[string][]chan Event
	logger  *slog.Logger
}

// NewHub builds a hub whose subscriber channels buffer the given number of
// events. A non-positive buffer falls back to the default.
func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultChannelBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		buffer:  buffer,
		streams: make(map[string][]chan Event),
		logger:  logger.With("component", "notify"),
	}
}

// Subscribe registers a listener for one episode's events. The returned
// cancel function must be called when the listener is done; it closes the
// channel and removes the registration.
func (h *Hub) Subscribe(episodeID string) (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	h.streams[episodeID] = append(h.streams[episodeID], ch)
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			subs := h.streams[episodeID]
			for i, sub := range subs {
				if sub == ch {
					h.streams[episodeID] = append(subs[:i], subs[i+1:]...)
					break
				}
			}
			if len(h.streams[episodeID]) == 0 {
				delete(h.streams, episodeID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of the episode. Delivery is
// best effort; a full channel drops the event for that subscriber.
func (h *Hub) Publish(episodeID string, event Event) {
	// Sends stay under the lock so a concurrent cancel cannot close a
	// channel mid-delivery. Sends never block, so the hold is brief.
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.streams[episodeID] {
		select {
		case ch <- event:
		default:
			h.logger.Warn("dropping event for slow subscriber",
				"episode_id", episodeID, "event_type", event.Type)
		}
	}
}

// Subscribers reports how many listeners an episode currently has.
func (h *Hub) Subscribers(episodeID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.streams[episodeID])
}
