package handler

import (
	"encoding/json"
	"net/http"

	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/dlfarrant/budgetgrid/internal/domain"
	"github.com/dlfarrant/budgetgrid/internal/editor"
	"github.com/dlfarrant/budgetgrid/internal/websocket"
	"github.com/google/uuid"
)

// WebSocketHandler handles WebSocket connections. It is the presentation
// boundary for the editor: stringly-typed browser payloads are decoded
// into typed pipeline events here and nowhere else.
type WebSocketHandler struct {
	hub            *websocket.Hub
	pipeline       *editor.Pipeline
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, pipeline *editor.Pipeline, allowedOrigins []string) *WebSocketHandler {
	// Build origin lookup map
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		pipeline:       pipeline,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Allow requests with no Origin header (e.g., same-origin or non-browser clients)
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles WebSocket connection requests at GET /ws
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	// Upgrade HTTP connection to WebSocket
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	// Create client and register with hub
	client := websocket.NewClient(conn, h.hub, h)
	h.hub.Register(client)

	log.Info().
		Str("client_id", client.ID()).
		Msg("WebSocket client connected")

	// Start read/write pumps in goroutines
	go client.WritePump()
	go client.ReadPump()

	return nil
}

// inboundMessage is the wire shape of browser-originated editor events.
// Field names mirror the cell's dataset attributes.
type inboundMessage struct {
	Type    string `json:"type"`              // "edit" | "trigger"
	Trigger string `json:"trigger,omitempty"` // "enter" | "blur"
	ID      string `json:"id,omitempty"`      // entity id; empty on the placeholder blank row
	Kind    string `json:"kind,omitempty"`    // "income" | "expense"
	Subtype string `json:"subtype,omitempty"` // "transaction" for transaction-level fields
	Index   *int   `json:"index,omitempty"`   // month index, present only for value cells
	Text    string `json:"text,omitempty"`    // live cell content
}

// HandleMessage implements websocket.MessageSink
func (h *WebSocketHandler) HandleMessage(client websocket.ClientInterface, data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Warn().Err(err).Str("client_id", client.ID()).Msg("Dropping malformed WebSocket message")
		return
	}

	switch msg.Type {
	case "edit":
		edit, ok := h.decodeEdit(client, msg)
		if !ok {
			return
		}
		h.pipeline.OfferEdit(edit)

	case "trigger":
		switch editor.Trigger(msg.Trigger) {
		case editor.TriggerEnter, editor.TriggerBlur:
			h.pipeline.OfferTrigger(editor.Trigger(msg.Trigger))
		default:
			log.Warn().Str("trigger", msg.Trigger).Msg("Dropping unknown save trigger")
		}

	default:
		log.Warn().Str("type", msg.Type).Msg("Dropping unknown WebSocket message type")
	}
}

// decodeEdit converts a wire message into a typed cell edit
func (h *WebSocketHandler) decodeEdit(client websocket.ClientInterface, msg inboundMessage) (editor.CellEdit, bool) {
	kind, ok := parseKind(msg.Kind)
	if !ok {
		log.Warn().Str("kind", msg.Kind).Msg("Dropping edit with unknown category kind")
		return editor.CellEdit{}, false
	}

	edit := editor.CellEdit{
		Kind:    kind,
		Text:    msg.Text,
		Surface: &cellSurface{client: client},
	}

	if msg.ID != "" {
		id, err := uuid.Parse(msg.ID)
		if err != nil {
			log.Warn().Str("id", msg.ID).Msg("Dropping edit with malformed entity id")
			return editor.CellEdit{}, false
		}
		edit.EntityID = &id
	}

	switch {
	case msg.Index != nil:
		if *msg.Index < 0 || *msg.Index >= domain.MonthsPerYear {
			log.Warn().Int("index", *msg.Index).Msg("Dropping edit with month index out of range")
			return editor.CellEdit{}, false
		}
		edit.Field = editor.FieldMonthValue
		edit.MonthIndex = *msg.Index
	case msg.Subtype == "transaction":
		edit.Field = editor.FieldTransactionLabel
	default:
		edit.Field = editor.FieldCategoryLabel
	}

	return edit, true
}

// cellSurface relays surface commands back to the editing client
type cellSurface struct {
	client websocket.ClientInterface
}

func (s *cellSurface) SetText(text string) {
	s.sendEvent(websocket.SurfaceCorrect(text))
}

func (s *cellSurface) Blur() {
	s.sendEvent(websocket.SurfaceBlur())
}

func (s *cellSurface) sendEvent(event websocket.Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().Err(err).Str("event_type", event.Type).Msg("Failed to serialize surface event")
		return
	}
	if err := s.client.Send(data); err != nil {
		log.Debug().Err(err).Str("client_id", s.client.ID()).Msg("Surface command lost, client gone")
	}
}
