package labmatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// ErrURLRequired is returned by Start when no department URL was entered.
var ErrURLRequired = errors.New("please enter a university URL to start scanning")

// Stage is which view the Discover screen shows.
type Stage int

const (
	// StageWelcome is the search form.
	StageWelcome Stage = iota
	// StageScanning shows the live scan visualizer.
	StageScanning
	// StageCards shows the card stack.
	StageCards
	// StageNoResults means the scan ended without any professor.
	StageNoResults
	// StageCaughtUp means every card has been swiped.
	StageCaughtUp
)

func (s Stage) String() string {
	switch s {
	case StageWelcome:
		return "welcome"
	case StageScanning:
		return "scanning"
	case StageCards:
		return "cards"
	case StageNoResults:
		return "no-results"
	case StageCaughtUp:
		return "caught-up"
	}
	return "unknown"
}

// DiscoverState is an immutable snapshot of one Discover screen. Slices are
// replaced, never edited in place, so snapshots stay valid after updates.
type DiscoverState struct {
	Stage     Stage
	SessionID string
	Session   Session
	Events    []ScanEvent
	Cards     []Professor
	Index     int
	// Notice explains an empty or blocked result.
	Notice string
}

// Current returns the front card.
func (s DiscoverState) Current() (Professor, bool) {
	if s.Index < 0 || s.Index >= len(s.Cards) {
		return Professor{}, false
	}
	return s.Cards[s.Index], true
}

// Next returns the card underneath the front card.
func (s DiscoverState) Next() (Professor, bool) {
	if s.Index+1 >= len(s.Cards) {
		return Professor{}, false
	}
	return s.Cards[s.Index+1], true
}

// Summary folds the event log for the visualizer.
func (s DiscoverState) Summary() ScanSummary {
	return Summarize(s.Events)
}

// Discovery runs one scan at a time: create a session, follow its event
// stream, fetch the results and step through the cards.
type Discovery struct {
	client *Client
	liked  *LikedStore
	cfg    Config
	logger *log.Logger

	mu         sync.Mutex
	notifyMu   sync.Mutex
	state      DiscoverState
	gen        int
	sub        *Subscription
	cancelScan context.CancelFunc
	listeners  map[int]func(DiscoverState)
	nextID     int
	errHandler func(error)
}

// NewDiscovery wires a controller to a backend client and a liked list.
func NewDiscovery(client *Client, liked *LikedStore, cfg Config, logger *log.Logger) *Discovery {
	cfg.ApplyDefaults()
	return &Discovery{
		client:    client,
		liked:     liked,
		cfg:       cfg,
		logger:    logger,
		listeners: make(map[int]func(DiscoverState)),
	}
}

// State returns the current snapshot.
func (d *Discovery) State() DiscoverState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// OnChange registers fn to receive every new snapshot and returns a function
// that removes it. Snapshots are delivered one at a time and in order; fn must
// not call back into the Discovery.
func (d *Discovery) OnChange(fn func(DiscoverState)) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		delete(d.listeners, id)
		d.mu.Unlock()
	}
}

// OnError sets the handler for failures that happen after Start returned,
// such as the result fetch.
func (d *Discovery) OnError(fn func(error)) {
	d.mu.Lock()
	d.errHandler = fn
	d.mu.Unlock()
}

// Start discards any previous scan and begins a new one. It returns once the
// session exists; progress arrives through OnChange.
func (d *Discovery) Start(ctx context.Context, rawURL, prompt string) error {
	rootURL := NormalizeURL(rawURL)
	if rootURL == "" {
		return ErrURLRequired
	}
	prompt = NormalizeText(prompt)
	objective := prompt
	if objective == "" {
		objective = d.cfg.ObjectiveFallback
	}

	scanCtx, cancel := context.WithCancel(context.Background())
	d.mu.Lock()
	d.stopLocked()
	d.gen++
	gen := d.gen
	d.cancelScan = cancel
	d.state = DiscoverState{Stage: StageScanning}
	d.mu.Unlock()
	d.notify()

	d.logf("creating session for %s", rootURL)
	resp, err := d.client.CreateSession(ctx, CreateSessionRequest{
		UserID:          d.cfg.UserID,
		RootURLs:        []string{rootURL},
		ObjectivePrompt: objective,
		CustomPrompt:    prompt,
	})
	if err != nil {
		cancel()
		if d.update(gen, func(s *DiscoverState) { *s = DiscoverState{Stage: StageWelcome} }) {
			d.logf("create session failed: %v", err)
		}
		return fmt.Errorf("start crawling session: %w", err)
	}

	sub := d.client.Subscribe(scanCtx, resp.Session.ID)
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		sub.Close()
		return nil
	}
	d.sub = sub
	next := d.state
	next.SessionID = resp.Session.ID
	next.Session = resp.Session
	d.state = next
	d.mu.Unlock()
	d.notify()
	d.logf("session %s created, streaming progress", resp.Session.ID)
	go d.follow(scanCtx, gen, sub)
	return nil
}

func (d *Discovery) follow(ctx context.Context, gen int, sub *Subscription) {
	for ev := range sub.Events() {
		d.update(gen, func(s *DiscoverState) {
			events := make([]ScanEvent, len(s.Events), len(s.Events)+1)
			copy(events, s.Events)
			s.Events = append(events, ev)
		})
	}
	switch sub.Reason() {
	case EndTerminal:
	case EndTransport:
		// the connection often drops right as the crawl finishes
		d.logf("stream %s dropped (%v), fetching results in %s", sub.SessionID(), sub.Err(), d.cfg.StreamGrace())
		select {
		case <-time.After(d.cfg.StreamGrace()):
		case <-ctx.Done():
			return
		}
	default:
		return
	}
	d.fetchResults(ctx, gen, sub.SessionID())
}

func (d *Discovery) fetchResults(ctx context.Context, gen int, sessionID string) {
	reqCtx, cancel := context.WithTimeout(ctx, d.cfg.RequestTimeout())
	defer cancel()
	resp, err := d.client.GetSession(reqCtx, sessionID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if d.update(gen, func(s *DiscoverState) { s.Stage = StageWelcome }) {
			d.logf("fetch results for %s: %v", sessionID, err)
			d.reportError(fmt.Errorf("fetch results: %w", err))
		}
		return
	}
	d.update(gen, func(s *DiscoverState) {
		s.Session = resp.Session
		s.Cards = resp.Cards
		s.Index = 0
		s.Notice = sessionNotice(resp.Session)
		if len(resp.Cards) == 0 {
			s.Stage = StageNoResults
		} else {
			s.Stage = StageCards
		}
	})
	if resp.Session.Finished() {
		d.logf("session %s: %d cards (%s)", sessionID, len(resp.Cards), resp.Session.Status)
	} else {
		d.logf("session %s is still %s, showing %d cards found so far", sessionID, resp.Session.Status, len(resp.Cards))
	}
}

func sessionNotice(s Session) string {
	switch s.Status {
	case StatusBlocked, StatusError:
		reason := strings.TrimSpace(s.BlockedReason)
		if reason == "" {
			reason = "The scan stopped early."
		}
		if s.BlockedURL != "" {
			reason += " (" + s.BlockedURL + ")"
		}
		return reason
	}
	return ""
}

// Decide records a decision for the front card and advances the stack.
// A like adds the card to the liked list.
func (d *Discovery) Decide(decision Decision) (Professor, bool) {
	d.mu.Lock()
	card, ok := d.state.Current()
	if !ok || d.state.Stage != StageCards {
		d.mu.Unlock()
		return Professor{}, false
	}
	next := d.state
	next.Index++
	if next.Index >= len(next.Cards) {
		next.Stage = StageCaughtUp
	}
	d.state = next
	d.mu.Unlock()

	if decision == DecisionLike {
		d.liked.Add(card)
	}
	d.logf("%s: %s", decision, card.DisplayName())
	d.notify()
	if d.cfg.RecordSwipes {
		go d.recordSwipe(card.ID, decision)
	}
	return card, true
}

func (d *Discovery) recordSwipe(cardID string, decision Decision) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.client.RecordSwipe(ctx, d.cfg.UserID, cardID, decision); err != nil {
		d.logf("record swipe (ignored): %v", err)
	}
}

// Reset abandons the current scan, clears the liked list and returns to the
// search form.
func (d *Discovery) Reset() {
	d.mu.Lock()
	d.stopLocked()
	d.gen++
	d.state = DiscoverState{Stage: StageWelcome}
	d.mu.Unlock()
	d.liked.Clear()
	d.notify()
}

// Close stops any running scan. It is safe to call more than once.
func (d *Discovery) Close() {
	d.mu.Lock()
	d.stopLocked()
	d.gen++
	d.mu.Unlock()
}

func (d *Discovery) stopLocked() {
	if d.sub != nil {
		d.sub.Close()
		d.sub = nil
	}
	if d.cancelScan != nil {
		d.cancelScan()
		d.cancelScan = nil
	}
}

// update applies fn to the state if gen is still the running scan, then
// notifies listeners.
func (d *Discovery) update(gen int, fn func(*DiscoverState)) bool {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return false
	}
	next := d.state
	fn(&next)
	d.state = next
	d.mu.Unlock()
	d.notify()
	return true
}

// notify delivers the latest snapshot. notifyMu is held across reading and
// delivering so a slow listener cannot receive an older snapshot after a
// newer one.
func (d *Discovery) notify() {
	d.notifyMu.Lock()
	defer d.notifyMu.Unlock()
	d.mu.Lock()
	state := d.state
	fns := make([]func(DiscoverState), 0, len(d.listeners))
	for _, fn := range d.listeners {
		fns = append(fns, fn)
	}
	d.mu.Unlock()
	for _, fn := range fns {
		fn(state)
	}
}

func (d *Discovery) reportError(err error) {
	d.mu.Lock()
	fn := d.errHandler
	d.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

func (d *Discovery) logf(format string, args ...any) {
	if d.logger != nil {
		d.logger.Printf(format, args...)
	}
}
