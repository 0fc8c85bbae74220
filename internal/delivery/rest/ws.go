// Path: internal/delivery/rest/ws.go
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pokedex/internal/domain"
	"pokedex/internal/events"
	"pokedex/internal/search"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message types exchanged over /ws.
const (
	msgQuery     = "query"
	msgPage      = "page"
	msgSelect    = "select"
	msgOpen      = "open"
	msgFavorite  = "favorite"
	msgResults   = "results"
	msgSelection = "selection"
	msgDetail    = "detail"
	msgFavorites = "favorites"
	msgError     = "error"
	msgHello     = "hello"
)

type incomingMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Page int    `json:"page"`
	ID   int    `json:"id"`
}

type outgoingMessage struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// SessionHandler serves websocket search sessions. Each connection owns a
// search view model and a detail session.
type SessionHandler struct {
	service dataService
	broker  *events.Broker
	opts    Options
	log     *zap.Logger
}

// NewSessionHandler creates the /ws handler.
func NewSessionHandler(s dataService, broker *events.Broker, opts Options, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{service: s, broker: broker, opts: opts, log: logger.Named("ws")}
}

// session is one connected client.
type session struct {
	id     string
	conn   *websocket.Conn
	writeM sync.Mutex
	log    *zap.Logger
}

func (s *session) send(msg outgoingMessage) {
	s.writeM.Lock()
	defer s.writeM.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(msg); err != nil {
		s.log.Debug("Write failed", zap.Error(err))
	}
}

func (s *session) sendError(err error) {
	status := statusFor(err)
	text := err.Error()
	if errors.Is(err, domain.ErrNotFound) {
		text = "not found"
	}
	s.send(outgoingMessage{Type: msgError, Error: text, Code: status})
}

// Serve upgrades the connection and runs the session until the client leaves.
func (h *SessionHandler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sess := &session{id: uuid.NewString(), conn: conn}
	sess.log = h.log.With(zap.String("session", sess.id))
	sess.log.Debug("Session opened")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	vm := search.NewViewModel(search.Options{PageSize: h.opts.PageSize, Debounce: h.opts.Debounce}, h.service.Lookup, sess.log)
	defer vm.Close()
	vm.SetCatalog(h.service.Catalog())
	vm.SetListener(func(p search.Page) {
		sess.send(outgoingMessage{Type: msgResults, Data: p})
	})

	detail := h.service.NewDetailSession()
	defer detail.Close()

	favCh, unsubFav := h.broker.Subscribe(events.TopicFavoritesChanged)
	catCh, unsubCat := h.broker.Subscribe(events.TopicCatalogRefreshed)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case _, ok := <-favCh:
				if !ok {
					return
				}
				sess.send(outgoingMessage{Type: msgFavorites, Data: h.service.Favorites()})
			case _, ok := <-catCh:
				if !ok {
					return
				}
				vm.SetCatalog(h.service.Catalog())
			case <-ctx.Done():
				return
			}
		}
	}()
	defer func() {
		cancel()
		unsubFav()
		unsubCat()
		wg.Wait()
	}()

	sess.send(outgoingMessage{Type: msgHello, Session: sess.id})
	sess.send(outgoingMessage{Type: msgResults, Data: vm.Results()})
	sess.send(outgoingMessage{Type: msgFavorites, Data: h.service.Favorites()})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var in incomingMessage
		if err := json.Unmarshal(payload, &in); err != nil {
			sess.send(outgoingMessage{Type: msgError, Error: "malformed message", Code: http.StatusBadRequest})
			continue
		}
		h.dispatch(ctx, sess, vm, detail, in)
	}
	sess.log.Debug("Session closed")
}

func (h *SessionHandler) dispatch(ctx context.Context, sess *session, vm *search.ViewModel, detail detailOpener, in incomingMessage) {
	switch in.Type {
	case msgQuery:
		vm.SetRawQuery(in.Text)

	case msgPage:
		// A moving page reaches the client through the listener; one
		// that stays put is answered here.
		before := vm.Results().Page
		if p := vm.SetPage(in.Page); p.Page == before {
			sess.send(outgoingMessage{Type: msgResults, Data: p})
		}

	case msgSelect:
		sel := vm.Select(ctx, in.Text)
		if sel.Err != nil && !sel.NotFound() {
			sess.sendError(sel.Err)
		}
		sess.send(outgoingMessage{Type: msgSelection, Data: sel})

	case msgOpen:
		detail.Open(ctx, in.ID, func(d domain.Detail, err error) {
			if err != nil {
				sess.sendError(err)
				return
			}
			sess.send(outgoingMessage{Type: msgDetail, Data: d})
		})

	case msgFavorite:
		if _, err := h.service.ToggleFavorite(ctx, in.ID); err != nil {
			sess.sendError(err)
		}

	default:
		sess.send(outgoingMessage{Type: msgError, Error: "unknown message type " + in.Type, Code: http.StatusBadRequest})
	}
}

// detailOpener is the part of service.DetailSession a session drives.
type detailOpener interface {
	Open(ctx context.Context, id int, commit func(domain.Detail, error))
}
