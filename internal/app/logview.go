package app

import (
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2/data/binding"
)

const (
	logDebounceInterval = 150 * time.Millisecond
	logLineLimit        = 300
)

// logCapture is an io.Writer for log.Logger that keeps the last lines for the
// log panel. Binding updates are debounced so a burst of stream events does
// not repaint the panel for every line.
type logCapture struct {
	mu       sync.Mutex
	lines    []string
	limit    int
	binding  binding.String
	updateCh chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
}

func newLogCapture(b binding.String, limit int) *logCapture {
	if limit <= 0 {
		limit = logLineLimit
	}
	return &logCapture{binding: b, limit: limit}
}

func (l *logCapture) Write(p []byte) (int, error) {
	text := strings.ReplaceAll(string(p), "\r\n", "\n")
	l.mu.Lock()
	for _, part := range strings.Split(text, "\n") {
		if part == "" {
			continue
		}
		l.lines = append(l.lines, part)
	}
	if len(l.lines) > l.limit {
		l.lines = l.lines[len(l.lines)-l.limit:]
	}
	ch := l.updateCh
	l.mu.Unlock()

	if ch == nil {
		l.flush()
		return len(p), nil
	}
	select {
	case ch <- struct{}{}:
	default:
	}
	return len(p), nil
}

// Lines returns a copy of the captured lines.
func (l *logCapture) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

func (l *logCapture) start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.updateCh != nil {
		return
	}
	l.updateCh = make(chan struct{}, 1)
	l.stopCh = make(chan struct{})
	go l.updateLoop(l.updateCh, l.stopCh)
}

func (l *logCapture) stop() {
	l.mu.Lock()
	stopCh := l.stopCh
	l.mu.Unlock()
	if stopCh == nil {
		return
	}
	l.stopOnce.Do(func() { close(stopCh) })
}

func (l *logCapture) updateLoop(updateCh, stopCh chan struct{}) {
	timer := time.NewTimer(logDebounceInterval)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-updateCh:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(logDebounceInterval)
		case <-timer.C:
			l.flush()
		case <-stopCh:
			timer.Stop()
			l.flush()
			return
		}
	}
}

func (l *logCapture) flush() {
	l.mu.Lock()
	text := strings.Join(l.lines, "\n")
	l.mu.Unlock()
	_ = l.binding.Set(text)
}
