// Package apitest runs an in-process LabMatch backend for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"yashubustudio/labmatch/labmatch"
)

// SessionID is the id every created session gets.
const SessionID = "sess-1"

// Backend is a scriptable fake of the crawl API. Exported fields may be set
// before the first request; counters are read through methods.
type Backend struct {
	// HealthStatus is returned by GET /. Zero means 200.
	HealthStatus int
	// CreateStatus fails POST /sessions when non-zero.
	CreateStatus int
	// GetStatus fails GET /sessions/{id} when non-zero.
	GetStatus int
	// Stream is the list of raw data payloads sent on the event stream.
	Stream []string
	// StreamDelay is slept between payloads.
	StreamDelay time.Duration
	// HoldOpen keeps the stream open after the last payload until the client
	// disconnects.
	HoldOpen bool
	// Session and Cards are returned by GET /sessions/{id}.
	Session labmatch.Session
	Cards   []labmatch.Professor
	// Resume is returned by POST /parse-resume.
	Resume labmatch.ResumeSummary
	// SwipeStatus fails POST /swipes when non-zero, after SwipeDelay.
	SwipeStatus int
	SwipeDelay  time.Duration

	mu       sync.Mutex
	created  []labmatch.CreateSessionRequest
	swipes   []map[string]string
	gets     int
	streams  int
	uploads  []string
	closedCh chan struct{}
}

// New starts a server for b and closes it when the test ends.
func New(t testing.TB, b *Backend) *httptest.Server {
	t.Helper()
	b.closedCh = make(chan struct{}, 8)
	srv := httptest.NewServer(b.Router())
	t.Cleanup(srv.Close)
	return srv
}

// Router exposes the routes for use with httptest.NewRecorder.
func (b *Backend) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", b.handleHealth)
	r.Post("/sessions", b.handleCreate)
	r.Get("/sessions/{id}", b.handleGet)
	r.Get("/sessions/{id}/stream", b.handleStream)
	r.Post("/parse-resume", b.handleResume)
	r.Post("/swipes", b.handleSwipe)
	return r
}

// Created returns the session requests received so far.
func (b *Backend) Created() []labmatch.CreateSessionRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]labmatch.CreateSessionRequest(nil), b.created...)
}

// Gets is the number of GET /sessions/{id} calls.
func (b *Backend) Gets() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gets
}

// Streams is the number of stream connections.
func (b *Backend) Streams() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.streams
}

// Swipes returns the recorded swipe bodies.
func (b *Backend) Swipes() []map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]string(nil), b.swipes...)
}

// Uploads returns the filenames of uploaded resumes.
func (b *Backend) Uploads() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.uploads...)
}

// StreamClosed receives once per stream handler that saw its client go away.
func (b *Backend) StreamClosed() <-chan struct{} { return b.closedCh }

func (b *Backend) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := b.HealthStatus
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, `{"status":"ok"}`)
}

func (b *Backend) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req labmatch.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	b.created = append(b.created, req)
	b.mu.Unlock()
	if b.CreateStatus != 0 {
		http.Error(w, "create failed", b.CreateStatus)
		return
	}
	writeJSON(w, labmatch.SessionResponse{
		Session: labmatch.Session{
			ID:       SessionID,
			UserID:   req.UserID,
			RootURLs: req.RootURLs,
			Status:   labmatch.StatusQueued,
		},
		Cards: []labmatch.Professor{},
	})
}

func (b *Backend) handleGet(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.gets++
	b.mu.Unlock()
	if b.GetStatus != 0 {
		http.Error(w, "get failed", b.GetStatus)
		return
	}
	sess := b.Session
	sess.ID = chi.URLParam(r, "id")
	if sess.Status == "" {
		sess.Status = labmatch.StatusDone
	}
	cards := b.Cards
	if cards == nil {
		cards = []labmatch.Professor{}
	}
	writeJSON(w, labmatch.SessionResponse{Session: sess, Cards: cards})
}

func (b *Backend) handleStream(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.streams++
	b.mu.Unlock()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for _, payload := range b.Stream {
		if b.StreamDelay > 0 {
			select {
			case <-time.After(b.StreamDelay):
			case <-r.Context().Done():
				b.signalClosed()
				return
			}
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return
		}
		flusher.Flush()
	}
	if b.HoldOpen {
		<-r.Context().Done()
		b.signalClosed()
	}
}

func (b *Backend) signalClosed() {
	select {
	case b.closedCh <- struct{}{}:
	default:
	}
}

func (b *Backend) handleResume(w http.ResponseWriter, r *http.Request) {
	file, hdr, err := r.FormFile("file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()
	if ct := hdr.Header.Get("Content-Type"); ct != "application/pdf" {
		http.Error(w, "expected application/pdf, got "+ct, http.StatusUnsupportedMediaType)
		return
	}
	b.mu.Lock()
	b.uploads = append(b.uploads, hdr.Filename)
	b.mu.Unlock()
	writeJSON(w, b.Resume)
}

func (b *Backend) handleSwipe(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	b.swipes = append(b.swipes, body)
	b.mu.Unlock()
	if b.SwipeDelay > 0 {
		time.Sleep(b.SwipeDelay)
	}
	if b.SwipeStatus != 0 {
		http.Error(w, "swipe failed", b.SwipeStatus)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// Event encodes one stream payload.
func Event(fields map[string]any) string {
	data, err := json.Marshal(fields)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// Score returns a pointer for Professor.MatchScore literals.
func Score(v float64) *float64 { return &v }
