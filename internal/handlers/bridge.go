package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"wabridge/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// BridgeSession is the slice of the session core the Control API needs:
// snapshot reads, the incoming feed, and send.
type BridgeSession interface {
	Snapshot() domain.Snapshot
	Incoming(sinceUnix int64) []domain.IncomingMessage
	Send(ctx context.Context, recipient, text string) (string, error)
}

// SendMessageRequest is the POST /api/send payload
type SendMessageRequest struct {
	Recipient string `json:"recipient" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

// SendMessageResponse is the POST /api/send success payload. MessageID is
// null when the provider omitted an identifier, which is not an error.
type SendMessageResponse struct {
	Success   bool    `json:"success"`
	Recipient string  `json:"recipient"`
	MessageID *string `json:"message_id"`
}

// IncomingMessageDTO is the wire form of a buffered inbound message
type IncomingMessageDTO struct {
	ID        string `json:"id"`
	SenderJID string `json:"senderJid"`
	PushName  string `json:"pushName"`
	ChatJID   string `json:"chatJid"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// BridgeHandler handles HTTP requests against the single WhatsApp session
type BridgeHandler struct {
	session  BridgeSession
	validate *validator.Validate
}

// NewBridgeHandler creates a new bridge handler
func NewBridgeHandler(session BridgeSession) *BridgeHandler {
	return &BridgeHandler{
		session:  session,
		validate: validator.New(),
	}
}

// Status handles GET /api/status. It never fails; it reports whatever the
// session currently is.
func (h *BridgeHandler) Status(w http.ResponseWriter, r *http.Request) {
	snap := h.session.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": snap.Status,
	})
}

// QR handles GET /api/qr. It returns the current challenge while pairing
// is pending and degrades to an informative message otherwise; it never
// blocks waiting for a future challenge.
func (h *BridgeHandler) QR(w http.ResponseWriter, r *http.Request) {
	snap := h.session.Snapshot()

	switch {
	case snap.Status == domain.StatusConnected:
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "already connected",
			"status":  snap.Status,
		})

	case snap.Status == domain.StatusQRPending && snap.QR != nil:
		writeJSON(w, http.StatusOK, map[string]any{
			"qr":     snap.QR.Code,
			"image":  snap.QR.ImageDataURL,
			"status": snap.Status,
		})

	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "no QR available",
			"status":  snap.Status,
		})
	}
}

// Send handles POST /api/send
func (h *BridgeHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "recipient and message are required")
		return
	}

	recipient, err := domain.NormalizeRecipient(req.Recipient)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	messageID, err := h.session.Send(r.Context(), recipient, req.Message)
	if err != nil {
		var notConnected *domain.NotConnectedError
		if errors.As(err, &notConnected) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"error":  "session is not connected",
				"status": notConnected.Status,
			})
			return
		}

		var sendFailed *domain.SendFailedError
		if errors.As(err, &sendFailed) {
			writeError(w, http.StatusInternalServerError, sendFailed.Error())
			return
		}

		log.Error().Err(err).Msg("Unexpected send error")
		writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	resp := SendMessageResponse{
		Success:   true,
		Recipient: recipient,
	}
	if messageID != "" {
		resp.MessageID = &messageID
	}

	writeJSON(w, http.StatusOK, resp)
}

// Incoming handles GET /api/incoming?since=<unix_ts>. It never fails; an
// unparseable cursor falls back to the full retained window.
func (h *BridgeHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	var since int64
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Warn().Str("since", raw).Msg("Ignoring unparseable incoming cursor")
		} else {
			since = parsed
		}
	}

	messages := h.session.Incoming(since)
	dtos := make([]IncomingMessageDTO, 0, len(messages))
	for _, msg := range messages {
		dtos = append(dtos, IncomingMessageDTO{
			ID:        msg.ID,
			SenderJID: msg.SenderJID,
			PushName:  msg.PushName,
			ChatJID:   msg.ChatJID,
			Text:      msg.Text,
			Timestamp: msg.UnixTimestamp(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages": dtos,
		"count":    len(dtos),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
