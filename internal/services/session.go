// Package services holds the connection lifecycle core: the single-session
// state machine, its reconnection policy, and the pairing and incoming-feed
// surfaces built around it.
package services

import (
	"context"
	"sync/atomic"
	"time"

	"wabridge/internal/domain"

	"github.com/rs/zerolog/log"
)

// StateStore persists the durable trace of the session. Saves are issued
// asynchronously so storage latency never stalls event processing.
type StateStore interface {
	Save(ctx context.Context, state *domain.BridgeState) error
}

type sendResult struct {
	messageID string
	err       error
}

type sendRequest struct {
	recipient string
	text      string
	reply     chan sendResult
}

// Session owns the one WhatsApp connection of this process. All state
// transitions happen on a single event-processing goroutine: protocol
// events, reconnect timer fires, and API-triggered sends are serialized
// against each other, so no transition races with another. HTTP callers
// only read the published snapshot or enqueue a send.
type Session struct {
	transport domain.Transport
	policy    ReconnectPolicy
	clock     Clock
	qr        *QRRenderer
	buffer    *IncomingBuffer
	states    StateStore

	events chan domain.Event
	sends  chan sendRequest
	ticks  chan struct{}

	started  atomic.Bool
	snapshot atomic.Value

	// Loop-owned fields. Never touched outside run().
	status         domain.Status
	attempts       int
	currentQR      *domain.RenderedQR
	terminal       bool
	terminalReason string
	jid            string
	timer          Timer
	lastConnected  *time.Time
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithClock overrides the wall clock, used by tests to drive reconnect
// scheduling deterministically
func WithClock(clock Clock) SessionOption {
	return func(s *Session) { s.clock = clock }
}

// WithStateStore attaches durable state persistence
func WithStateStore(states StateStore) SessionOption {
	return func(s *Session) { s.states = states }
}

// WithReconnectPolicy overrides the default backoff schedule
func WithReconnectPolicy(policy ReconnectPolicy) SessionOption {
	return func(s *Session) { s.policy = policy }
}

// NewSession creates the session core around a transport
func NewSession(transport domain.Transport, qr *QRRenderer, buffer *IncomingBuffer, opts ...SessionOption) *Session {
	s := &Session{
		transport: transport,
		policy:    DefaultReconnectPolicy(),
		clock:     SystemClock,
		qr:        qr,
		buffer:    buffer,
		events:    make(chan domain.Event, 64),
		sends:     make(chan sendRequest),
		ticks:     make(chan struct{}, 1),
		status:    domain.StatusDisconnected,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.publish()
	return s
}

// HandleEvent enqueues a transport event onto the session's event stream.
// It is the domain.EventHandler wired into the transport.
func (s *Session) HandleEvent(evt domain.Event) {
	s.events <- evt
}

// Start launches the event loop and the initial connection attempt.
// It is idempotent; only the first call has effect.
func (s *Session) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		log.Warn().Msg("Session already started")
		return
	}
	go s.run(ctx)
}

// Snapshot returns the last published session state
func (s *Session) Snapshot() domain.Snapshot {
	return s.snapshot.Load().(domain.Snapshot)
}

// Incoming returns retained inbound messages newer than the given unix
// timestamp
func (s *Session) Incoming(sinceUnix int64) []domain.IncomingMessage {
	return s.buffer.Since(sinceUnix)
}

// Send delivers a text message through the session. The request is
// serialized onto the event loop; the result reflects exactly one delivery
// attempt. The session performs no automatic resend.
func (s *Session) Send(ctx context.Context, recipient, text string) (string, error) {
	req := sendRequest{
		recipient: recipient,
		text:      text,
		reply:     make(chan sendResult, 1),
	}

	select {
	case s.sends <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case res := <-req.reply:
		return res.messageID, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Session) run(ctx context.Context) {
	log.Info().Msg("Session event loop started")
	s.connect(ctx)

	for {
		select {
		case <-ctx.Done():
			s.stopTimer()
			s.transport.Disconnect()
			log.Info().Msg("Session event loop stopped")
			return

		case evt := <-s.events:
			s.handleEvent(ctx, evt)

		case <-s.ticks:
			s.handleReconnectTick(ctx)

		case req := <-s.sends:
			s.handleSend(ctx, req)
		}
	}
}

// connect issues one connection attempt. A synchronous failure is treated
// like any other retryable disconnect.
func (s *Session) connect(ctx context.Context) {
	if s.terminal {
		return
	}

	log.Info().Bool("logged_in", s.transport.IsLoggedIn()).Msg("Connecting to WhatsApp")

	if err := s.transport.Connect(ctx); err != nil {
		log.Error().Err(err).Msg("Connection attempt failed")
		connectionEventsTotal.WithLabelValues("connect_failed").Inc()
		s.scheduleReconnect(err.Error())
		s.publish()
		s.persistAsync()
	}
}

func (s *Session) handleEvent(ctx context.Context, evt domain.Event) {
	switch e := evt.(type) {
	case domain.QRCodeEvent:
		connectionEventsTotal.WithLabelValues("qr_code").Inc()
		rendered := s.qr.Render(e.Code)
		s.currentQR = &rendered
		s.status = domain.StatusQRPending
		log.Info().Msg("Pairing challenge received, waiting for scan")

	case domain.QRTimeoutEvent:
		connectionEventsTotal.WithLabelValues("qr_timeout").Inc()
		log.Warn().Msg("Pairing challenge expired unscanned")
		s.currentQR = nil
		s.status = domain.StatusDisconnected
		s.scheduleReconnect("qr timeout")

	case domain.PairSuccessEvent:
		connectionEventsTotal.WithLabelValues("pair_success").Inc()
		s.jid = e.JID
		log.Info().Str("jid", e.JID).Msg("Device paired, credentials persisted")

	case domain.ConnectedEvent:
		connectionEventsTotal.WithLabelValues("connected").Inc()
		connectedGauge.Set(1)
		s.stopTimer()
		s.status = domain.StatusConnected
		s.attempts = 0
		s.currentQR = nil
		if e.JID != "" {
			s.jid = e.JID
		}
		now := s.clock.Now()
		s.lastConnected = &now
		log.Info().Str("jid", s.jid).Msg("WhatsApp connected")

	case domain.DisconnectedEvent:
		connectionEventsTotal.WithLabelValues("disconnected").Inc()
		connectedGauge.Set(0)
		s.currentQR = nil
		s.status = domain.StatusDisconnected

		if e.Terminal {
			s.terminal = true
			s.terminalReason = e.Reason
			s.stopTimer()
			log.Error().
				Str("reason", e.Reason).
				Msg("Logged out by server, re-pairing required; restart the process to pair again")
		} else {
			log.Warn().Str("reason", e.Reason).Msg("Disconnected from WhatsApp")
			s.scheduleReconnect(e.Reason)
		}

	case domain.MessageEvent:
		s.buffer.Add(e.Message)
		return // No state transition, nothing to publish.

	default:
		log.Debug().Type("event", evt).Msg("Unhandled transport event")
		return
	}

	s.publish()
	s.persistAsync()
}

// scheduleReconnect arms the single reconnect timer. The attempt counter
// governs admission; a timer is never armed while one is pending, which
// the single event-processing goroutine guarantees by construction.
func (s *Session) scheduleReconnect(reason string) {
	if s.terminal || s.timer != nil {
		return
	}

	if !s.policy.ShouldRetry(s.attempts) {
		log.Error().
			Int("attempts", s.attempts).
			Str("reason", reason).
			Msg("Max reconnect attempts reached, giving up; restart the process to resume")
		return
	}

	delay := s.policy.Delay(s.attempts)
	s.attempts++
	reconnectAttemptsTotal.Inc()

	log.Info().
		Int("attempt", s.attempts).
		Dur("delay", delay).
		Str("reason", reason).
		Msg("Scheduling reconnect")

	s.timer = s.clock.AfterFunc(delay, func() {
		select {
		case s.ticks <- struct{}{}:
		default:
		}
	})
}

func (s *Session) handleReconnectTick(ctx context.Context) {
	s.timer = nil
	if s.terminal {
		return
	}
	s.connect(ctx)
}

func (s *Session) handleSend(ctx context.Context, req sendRequest) {
	if s.status != domain.StatusConnected {
		sendsTotal.WithLabelValues("rejected").Inc()
		req.reply <- sendResult{err: domain.NewNotConnectedError(s.status)}
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	messageID, err := s.transport.SendText(sendCtx, req.recipient, req.text)
	if err != nil {
		sendsTotal.WithLabelValues("failed").Inc()
		log.Error().Err(err).Str("recipient", req.recipient).Msg("Failed to send message")
		req.reply <- sendResult{err: domain.NewSendFailedError(err)}
		return
	}

	sendsTotal.WithLabelValues("sent").Inc()
	log.Info().
		Str("recipient", req.recipient).
		Str("message_id", messageID).
		Msg("Message sent")
	req.reply <- sendResult{messageID: messageID}
}

func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// publish refreshes the snapshot read by HTTP handlers. The pairing
// challenge is exposed only while qr_pending.
func (s *Session) publish() {
	snap := domain.Snapshot{
		Status:            s.status,
		ReconnectAttempts: s.attempts,
		Terminal:          s.terminal,
		TerminalReason:    s.terminalReason,
		JID:               s.jid,
	}
	if s.status == domain.StatusQRPending && s.currentQR != nil {
		qr := *s.currentQR
		snap.QR = &qr
	}
	s.snapshot.Store(snap)
}

func (s *Session) persistAsync() {
	if s.states == nil {
		return
	}

	state := &domain.BridgeState{
		ID:                domain.BridgeStateID,
		Status:            s.status,
		WAJID:             s.jid,
		ReconnectAttempts: s.attempts,
		LastConnectedAt:   s.lastConnected,
		UpdatedAt:         s.clock.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.states.Save(ctx, state); err != nil {
			log.Error().Err(err).Msg("Failed to persist session state")
		}
	}()
}
