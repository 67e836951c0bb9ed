package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wabridge/internal/domain"
)

type stubSession struct {
	snapshot domain.Snapshot
	incoming []domain.IncomingMessage

	sendID  string
	sendErr error

	sentRecipient string
	sentText      string
}

func (s *stubSession) Snapshot() domain.Snapshot {
	return s.snapshot
}

func (s *stubSession) Incoming(sinceUnix int64) []domain.IncomingMessage {
	out := make([]domain.IncomingMessage, 0)
	for _, msg := range s.incoming {
		if msg.UnixTimestamp() > sinceUnix {
			out = append(out, msg)
		}
	}
	return out
}

func (s *stubSession) Send(ctx context.Context, recipient, text string) (string, error) {
	s.sentRecipient = recipient
	s.sentText = text
	return s.sendID, s.sendErr
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestStatusReportsCurrentState(t *testing.T) {
	for _, status := range []domain.Status{
		domain.StatusDisconnected,
		domain.StatusQRPending,
		domain.StatusConnected,
	} {
		t.Run(string(status), func(t *testing.T) {
			h := NewBridgeHandler(&stubSession{snapshot: domain.Snapshot{Status: status}})

			rec := httptest.NewRecorder()
			h.Status(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, string(status), body["status"])
		})
	}
}

func TestQRWhilePairing(t *testing.T) {
	h := NewBridgeHandler(&stubSession{snapshot: domain.Snapshot{
		Status: domain.StatusQRPending,
		QR: &domain.RenderedQR{
			Code:         "2@abc,def,ghi",
			ImageDataURL: "data:image/png;base64,aGVsbG8=",
		},
	}})

	rec := httptest.NewRecorder()
	h.QR(rec, httptest.NewRequest(http.MethodGet, "/api/qr", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "2@abc,def,ghi", body["qr"])
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", body["image"])
	assert.Equal(t, "qr_pending", body["status"])
}

func TestQRWhenConnected(t *testing.T) {
	h := NewBridgeHandler(&stubSession{snapshot: domain.Snapshot{Status: domain.StatusConnected}})

	rec := httptest.NewRecorder()
	h.QR(rec, httptest.NewRequest(http.MethodGet, "/api/qr", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "already connected", body["message"])
	assert.NotContains(t, body, "qr")
}

func TestQRWhenDisconnected(t *testing.T) {
	h := NewBridgeHandler(&stubSession{snapshot: domain.Snapshot{Status: domain.StatusDisconnected}})

	rec := httptest.NewRecorder()
	h.QR(rec, httptest.NewRequest(http.MethodGet, "/api/qr", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "no QR available", body["message"])
	assert.Equal(t, "disconnected", body["status"])
}

func TestSendSuccess(t *testing.T) {
	stub := &stubSession{
		snapshot: domain.Snapshot{Status: domain.StatusConnected},
		sendID:   "ABC123",
	}
	h := NewBridgeHandler(stub)

	payload := `{"recipient": "+1 (555) 123-4567", "message": "hello"}`
	rec := httptest.NewRecorder()
	h.Send(rec, httptest.NewRequest(http.MethodPost, "/api/send", strings.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "15551234567@s.whatsapp.net", body["recipient"])
	assert.Equal(t, "ABC123", body["message_id"])

	assert.Equal(t, "15551234567@s.whatsapp.net", stub.sentRecipient)
	assert.Equal(t, "hello", stub.sentText)
}

func TestSendWithoutMessageID(t *testing.T) {
	h := NewBridgeHandler(&stubSession{
		snapshot: domain.Snapshot{Status: domain.StatusConnected},
	})

	payload := `{"recipient": "5551234567", "message": "hi"}`
	rec := httptest.NewRecorder()
	h.Send(rec, httptest.NewRequest(http.MethodPost, "/api/send", strings.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Nil(t, body["message_id"])
}

func TestSendInvalidJSON(t *testing.T) {
	h := NewBridgeHandler(&stubSession{})

	rec := httptest.NewRecorder()
	h.Send(rec, httptest.NewRequest(http.MethodPost, "/api/send", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "invalid JSON payload", body["error"])
}

func TestSendMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"missing message", `{"recipient": "5551234567"}`},
		{"missing recipient", `{"message": "hello"}`},
		{"empty body", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewBridgeHandler(&stubSession{})

			rec := httptest.NewRecorder()
			h.Send(rec, httptest.NewRequest(http.MethodPost, "/api/send", strings.NewReader(tt.payload)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSendUnroutableRecipient(t *testing.T) {
	stub := &stubSession{}
	h := NewBridgeHandler(stub)

	payload := `{"recipient": "---", "message": "hello"}`
	rec := httptest.NewRecorder()
	h.Send(rec, httptest.NewRequest(http.MethodPost, "/api/send", strings.NewReader(payload)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, stub.sentRecipient, "normalization failures must not reach the session")
}

func TestSendWhileNotConnected(t *testing.T) {
	h := NewBridgeHandler(&stubSession{
		snapshot: domain.Snapshot{Status: domain.StatusQRPending},
		sendErr:  domain.NewNotConnectedError(domain.StatusQRPending),
	})

	payload := `{"recipient": "5551234567", "message": "hello"}`
	rec := httptest.NewRecorder()
	h.Send(rec, httptest.NewRequest(http.MethodPost, "/api/send", strings.NewReader(payload)))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "session is not connected", body["error"])
	assert.Equal(t, "qr_pending", body["status"])
}

func TestSendTransportFailure(t *testing.T) {
	h := NewBridgeHandler(&stubSession{
		snapshot: domain.Snapshot{Status: domain.StatusConnected},
		sendErr:  domain.NewSendFailedError(assert.AnError),
	})

	payload := `{"recipient": "5551234567", "message": "hello"}`
	rec := httptest.NewRecorder()
	h.Send(rec, httptest.NewRequest(http.MethodPost, "/api/send", strings.NewReader(payload)))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "failed to send message")
}

func TestIncomingFiltersByCursor(t *testing.T) {
	base := time.Unix(1700000000, 0)
	h := NewBridgeHandler(&stubSession{
		incoming: []domain.IncomingMessage{
			{ID: "A", ChatJID: "111@s.whatsapp.net", Text: "old", Timestamp: base},
			{ID: "B", ChatJID: "222@s.whatsapp.net", Text: "new", Timestamp: base.Add(10 * time.Second)},
		},
	})

	rec := httptest.NewRecorder()
	h.Incoming(rec, httptest.NewRequest(http.MethodGet, "/api/incoming?since=1700000000", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["count"])

	messages := body["messages"].([]any)
	require.Len(t, messages, 1)
	first := messages[0].(map[string]any)
	assert.Equal(t, "B", first["id"])
	assert.Equal(t, "new", first["text"])
	assert.Equal(t, float64(1700000010), first["timestamp"])
}

func TestIncomingIgnoresBadCursor(t *testing.T) {
	h := NewBridgeHandler(&stubSession{
		incoming: []domain.IncomingMessage{
			{ID: "A", ChatJID: "111@s.whatsapp.net", Text: "hi", Timestamp: time.Unix(1700000000, 0)},
		},
	})

	rec := httptest.NewRecorder()
	h.Incoming(rec, httptest.NewRequest(http.MethodGet, "/api/incoming?since=yesterday", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["count"])
}

func TestIncomingEmptyWindow(t *testing.T) {
	h := NewBridgeHandler(&stubSession{})

	rec := httptest.NewRecorder()
	h.Incoming(rec, httptest.NewRequest(http.MethodGet, "/api/incoming", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(0), body["count"])

	messages, ok := body["messages"].([]any)
	require.True(t, ok, "messages must be an array, not null")
	assert.Empty(t, messages)
}
