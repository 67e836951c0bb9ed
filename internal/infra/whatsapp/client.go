package whatsapp

import (
	"context"
	"fmt"

	"wabridge/internal/domain"

	"github.com/rs/zerolog/log"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

// Client implements domain.Transport over a whatsmeow client. It owns
// nothing but translation: protocol events become domain events on the
// session's stream, and sends become protocol messages. Reconnection is
// the session's job, so whatsmeow's built-in auto-reconnect is disabled.
type Client struct {
	client  *whatsmeow.Client
	handler domain.EventHandler
}

// NewClient creates the transport around a stored device. OSName is shown
// in the WhatsApp linked-devices list.
func NewClient(device *store.Device, waLogger waLog.Logger, handler domain.EventHandler, osName string) *Client {
	if osName != "" {
		store.SetOSInfo(osName, [3]uint32{1, 0, 0})
	}

	client := whatsmeow.NewClient(device, waLogger)
	client.EnableAutoReconnect = false

	c := &Client{
		client:  client,
		handler: handler,
	}
	client.AddEventHandler(c.translateEvent)

	return c
}

// IsLoggedIn reports whether the device holds persisted credentials
func (c *Client) IsLoggedIn() bool {
	return c.client.Store.ID != nil
}

// Connect establishes the single outbound connection. For an unpaired
// device the QR channel is consumed in the background; challenges arrive
// on the event stream. The channel must be requested before Connect, per
// whatsmeow's contract.
func (c *Client) Connect(ctx context.Context) error {
	if c.client.Store.ID == nil {
		qrChan, err := c.client.GetQRChannel(ctx)
		if err != nil {
			if err != whatsmeow.ErrQRStoreContainsID {
				return fmt.Errorf("failed to get QR channel: %w", err)
			}
		} else {
			go c.forwardQREvents(qrChan)
		}
	}

	if err := c.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	return nil
}

// Disconnect tears down the connection without touching stored credentials
func (c *Client) Disconnect() {
	c.client.Disconnect()
}

// SendText delivers a plain text message to a normalized JID
func (c *Client) SendText(ctx context.Context, jid string, text string) (string, error) {
	recipient, err := types.ParseJID(jid)
	if err != nil {
		return "", fmt.Errorf("invalid recipient JID %q: %w", jid, err)
	}

	msg := &waE2E.Message{
		Conversation: proto.String(text),
	}

	resp, err := c.client.SendMessage(ctx, recipient, msg)
	if err != nil {
		return "", err
	}

	return resp.ID, nil
}

func (c *Client) forwardQREvents(qrChan <-chan whatsmeow.QRChannelItem) {
	for evt := range qrChan {
		switch evt.Event {
		case "code":
			c.handler(domain.QRCodeEvent{Code: evt.Code})
		case "success":
			// PairSuccess and Connected arrive on the main event handler.
		case "timeout":
			c.handler(domain.QRTimeoutEvent{})
		default:
			log.Warn().Str("event", evt.Event).Err(evt.Error).Msg("QR channel ended")
		}
	}
}

// translateEvent maps whatsmeow events onto the session's event stream.
// Only an explicit server logout is terminal; every other disconnect
// reason is left to the reconnection policy.
func (c *Client) translateEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Connected:
		jid := ""
		if c.client.Store.ID != nil {
			jid = c.client.Store.ID.String()
		}
		c.handler(domain.ConnectedEvent{JID: jid})

	case *events.PairSuccess:
		c.handler(domain.PairSuccessEvent{JID: v.ID.String()})

	case *events.LoggedOut:
		c.handler(domain.DisconnectedEvent{
			Reason:   fmt.Sprintf("logged out by server (%v)", v.Reason),
			Terminal: true,
		})

	case *events.StreamReplaced:
		c.handler(domain.DisconnectedEvent{Reason: "stream replaced by another client"})

	case *events.Disconnected:
		c.handler(domain.DisconnectedEvent{Reason: "connection closed"})

	case *events.ConnectFailure:
		c.handler(domain.DisconnectedEvent{
			Reason: fmt.Sprintf("connect failure: %v", v.Reason),
		})

	case *events.TemporaryBan:
		c.handler(domain.DisconnectedEvent{
			Reason: fmt.Sprintf("temporary ban (%v), expires in %v", v.Code, v.Expire),
		})

	case *events.Message:
		c.translateMessage(v)
	}
}

func (c *Client) translateMessage(evt *events.Message) {
	if evt.Info.IsFromMe {
		return
	}

	text := extractText(evt)
	if text == "" {
		return
	}

	c.handler(domain.MessageEvent{Message: domain.IncomingMessage{
		ID:        evt.Info.ID,
		ChatJID:   evt.Info.Chat.String(),
		SenderJID: evt.Info.Sender.String(),
		PushName:  evt.Info.PushName,
		Text:      text,
		Timestamp: evt.Info.Timestamp,
	}})
}

func extractText(evt *events.Message) string {
	msg := evt.Message
	if msg == nil {
		return ""
	}
	if text := msg.GetConversation(); text != "" {
		return text
	}
	if ext := msg.GetExtendedTextMessage(); ext != nil {
		return ext.GetText()
	}
	return ""
}
