package labmatch

import (
	"bytes"
	"context"
	"net/url"
	"sync"

	sse "github.com/r3labs/sse/v2"
	"gopkg.in/cenkalti/backoff.v1"
)

// EndReason says why a subscription stopped delivering events.
type EndReason int

const (
	// EndOpen means the subscription is still running.
	EndOpen EndReason = iota
	// EndTerminal means the backend signalled the end of the scan.
	EndTerminal
	// EndTransport means the connection failed or dropped without an end
	// signal. The crawl may well have finished anyway.
	EndTransport
	// EndClosed means the subscriber closed the subscription.
	EndClosed
)

func (r EndReason) String() string {
	switch r {
	case EndOpen:
		return "open"
	case EndTerminal:
		return "terminal"
	case EndTransport:
		return "transport"
	case EndClosed:
		return "closed"
	}
	return "unknown"
}

// Subscription is one open event stream for a session. Events are delivered
// in receipt order on Events; the channel is closed once the stream ends,
// after which Reason reports why.
type Subscription struct {
	sessionID string
	events    chan ScanEvent
	done      chan struct{}
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu     sync.Mutex
	reason EndReason
	err    error
}

// Subscribe opens the SSE stream of a session. The subscription never
// reconnects: a transport failure ends it with EndTransport.
func (c *Client) Subscribe(ctx context.Context, sessionID string) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		sessionID: sessionID,
		events:    make(chan ScanEvent, 16),
		done:      make(chan struct{}),
		cancel:    cancel,
	}
	client := sse.NewClient(c.baseURL + "/sessions/" + url.PathEscape(sessionID) + "/stream")
	client.Connection = c.streamClient
	client.ReconnectStrategy = &backoff.StopBackOff{}
	go s.run(ctx, client, c.logf)
	return s
}

// SessionID returns the session this subscription follows.
func (s *Subscription) SessionID() string { return s.sessionID }

// Events yields scan events in arrival order.
func (s *Subscription) Events() <-chan ScanEvent { return s.events }

// Done is closed when the subscription has fully stopped.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close stops the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
	})
}

// Reason reports why the stream ended, EndOpen while it is running.
func (s *Subscription) Reason() EndReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Err is the transport error for EndTransport, if any.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscription) finish(reason EndReason, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reason != EndOpen {
		return false
	}
	s.reason = reason
	s.err = err
	return true
}

func (s *Subscription) ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason != EndOpen
}

func (s *Subscription) run(ctx context.Context, client *sse.Client, logf func(string, ...any)) {
	defer close(s.done)
	defer close(s.events)

	err := client.SubscribeRawWithContext(ctx, func(msg *sse.Event) {
		if msg == nil || s.ended() {
			return
		}
		s.handle(ctx, msg.Data, logf)
	})
	switch {
	case s.ended():
	case ctx.Err() != nil:
		s.finish(EndClosed, nil)
	default:
		s.finish(EndTransport, err)
	}
	if err != nil && s.Reason() == EndTransport {
		logf("stream %s: %v", s.sessionID, err)
	}
}

func (s *Subscription) handle(ctx context.Context, data []byte, logf func(string, ...any)) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return
	}
	if isSentinel(data) {
		s.terminate()
		return
	}
	ev, err := DecodeEvent(data)
	if err != nil {
		logf("stream %s: skip malformed message: %v", s.sessionID, err)
		return
	}
	if IsTerminal(ev) {
		// complete is still delivered: the visualizer's "Scan Complete!"
		// status and feed row are derived from it. end never is.
		if _, ok := ev.(CompleteEvent); ok {
			s.deliver(ctx, ev)
		}
		s.terminate()
		return
	}
	s.deliver(ctx, ev)
}

func (s *Subscription) deliver(ctx context.Context, ev ScanEvent) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}

func (s *Subscription) terminate() {
	if s.finish(EndTerminal, nil) {
		s.cancel()
	}
}

// isSentinel accepts the done marker both bare and as a JSON string.
func isSentinel(data []byte) bool {
	if string(data) == StreamDoneSentinel {
		return true
	}
	return string(data) == `"`+StreamDoneSentinel+`"`
}
