package telemetry

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/san-kum/dronesim/internal/metrics"
)

// sendBuffer is the number of frames queued per client before frames are
// dropped for that client.
const sendBuffer = 64

// Frame is the JSON message sent to stream clients for every tick.
type Frame struct {
	Type     string     `json:"type"`
	Drone    string     `json:"drone"`
	Step     int        `json:"step"`
	Time     float64    `json:"time"`
	State    []float64  `json:"state"`
	Depths   [3]float64 `json:"depths"`
	Grounded int        `json:"grounded"`
}

func NewFrame(droneID string, s metrics.Sample) Frame {
	return Frame{
		Type:     "sample",
		Drone:    droneID,
		Step:     s.Step,
		Time:     s.Time,
		State:    s.State.Vector(),
		Depths:   s.Depths,
		Grounded: s.Grounded,
	}
}

type watcher struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans the samples of one drone out to websocket watchers. Slow
// watchers lose frames rather than stall the driver.
type Hub struct {
	droneID  string
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	watchers map[*watcher]struct{}
	dropped  int
}

func NewHub(droneID string, log zerolog.Logger) *Hub {
	return &Hub{
		droneID: droneID,
		log:     log.With().Str("drone", droneID).Logger(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		watchers: make(map[*watcher]struct{}),
	}
}

func (h *Hub) DroneID() string { return h.droneID }

func (h *Hub) Watchers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers)
}

// Dropped is the number of frames not delivered to a full watcher.
func (h *Hub) Dropped() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

func (h *Hub) OnTick(s metrics.Sample) {
	msg, err := json.Marshal(NewFrame(h.droneID, s))
	if err != nil {
		h.log.Error().Err(err).Msg("encode frame")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.watchers {
		select {
		case w.send <- msg:
		default:
			h.dropped++
		}
	}
}

// ServeWS upgrades the request and streams frames until the client goes
// away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	wt := &watcher{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.watchers[wt] = struct{}{}
	h.mu.Unlock()
	h.log.Debug().Str("remote", r.RemoteAddr).Msg("watcher joined")

	// Reading is needed to notice the client closing the socket.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		h.remove(wt)
		conn.Close()
		h.log.Debug().Str("remote", r.RemoteAddr).Msg("watcher left")
	}()

	for {
		select {
		case <-closed:
			return
		case msg, ok := <-wt.send:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

func (h *Hub) remove(wt *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.watchers[wt]; ok {
		delete(h.watchers, wt)
		close(wt.send)
	}
}

// Close ends every watcher's stream.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.watchers {
		delete(h.watchers, w)
		close(w.send)
	}
}

// NewRouter serves GET /drones and GET /drones/{id}/ws for hubs.
func NewRouter(hubs ...*Hub) *mux.Router {
	byID := make(map[string]*Hub, len(hubs))
	ids := make([]string, 0, len(hubs))
	for _, h := range hubs {
		byID[h.droneID] = h
		ids = append(ids, h.droneID)
	}
	sort.Strings(ids)

	router := mux.NewRouter()
	router.HandleFunc("/drones", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ids)
	}).Methods(http.MethodGet)

	router.HandleFunc("/drones/{id}/ws", func(w http.ResponseWriter, r *http.Request) {
		h, ok := byID[mux.Vars(r)["id"]]
		if !ok {
			http.Error(w, "drone not found", http.StatusNotFound)
			return
		}
		h.ServeWS(w, r)
	}).Methods(http.MethodGet)

	return router
}
