package handler

import (
	"net/http"
	"time"

	"clinic-calendar/internal/service"
	"clinic-calendar/internal/usecase"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// renderMessage is pushed whenever the session's calendar changes.
type renderMessage struct {
	Type     string                   `json:"type"`
	Revision uint64                   `json:"revision"`
	State    service.CalendarSnapshot `json:"state"`
}

// CalendarSocketHandler streams render notifications for one session.
type CalendarSocketHandler struct {
	log             *logrus.Logger
	calendarUsecase usecase.CalendarUsecase
	upgrader        websocket.Upgrader
}

func NewCalendarSocketHandler(log *logrus.Logger, calendarUsecase usecase.CalendarUsecase, allowedOrigins []string) *CalendarSocketHandler {
	return &CalendarSocketHandler{
		log:             log,
		calendarUsecase: calendarUsecase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func (h *CalendarSocketHandler) Connect(w http.ResponseWriter, r *http.Request) {
	revisions, cancel, err := h.calendarUsecase.Subscribe(r.Context())
	if err != nil {
		writeAppointmentError(w, err, "Failed to subscribe to calendar")
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debugf("Websocket upgrade failed: %+v", err)
		return
	}
	defer conn.Close()

	done := make(chan struct{})
	go h.readPump(conn, done)

	// The request context carries the principal, so the write side stays on this goroutine.
	h.writePump(r, conn, revisions, done)
}

// readPump only drains control frames; the widget sends nothing on this socket.
func (h *CalendarSocketHandler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *CalendarSocketHandler) writePump(r *http.Request, conn *websocket.Conn, revisions <-chan uint64, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if !h.push(r, conn) {
		return
	}

	for {
		select {
		case _, ok := <-revisions:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				return
			}
			if !h.push(r, conn) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (h *CalendarSocketHandler) push(r *http.Request, conn *websocket.Conn) bool {
	snapshot, err := h.calendarUsecase.State(r.Context())
	if err != nil {
		h.log.Debugf("Calendar state unavailable for socket: %+v", err)
		return false
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(renderMessage{Type: "render", Revision: snapshot.Revision, State: snapshot}); err != nil {
		h.log.Debugf("Websocket write failed: %+v", err)
		return false
	}
	return true
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
