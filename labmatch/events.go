package labmatch

import (
	"encoding/json"
	"strings"
)

// EventKind is the `type` tag of a stream message.
type EventKind string

const (
	KindStatus        EventKind = "status"
	KindScanning      EventKind = "scanning"
	KindFoundCard     EventKind = "found_card"
	KindInfo          EventKind = "info"
	KindError         EventKind = "error"
	KindComplete      EventKind = "complete"
	KindPhase         EventKind = "phase"
	KindDiscovery     EventKind = "discovery"
	KindInvestigating EventKind = "investigating"
	KindLog           EventKind = "log"
	KindSuggestion    EventKind = "suggestion"
	KindEnd           EventKind = "end"
)

// StreamDoneSentinel is the raw payload the backend may send instead of a
// JSON end event.
const StreamDoneSentinel = "STREAM_DONE"

// ScanEvent is one crawler progress message. The concrete types are
// StatusEvent, ScanningEvent, FoundCardEvent, InfoEvent, ErrorEvent,
// CompleteEvent, PhaseEvent, DiscoveryEvent, InvestigatingEvent, LogEvent,
// SuggestionEvent, EndEvent and UnknownEvent.
type ScanEvent interface {
	Kind() EventKind
	Text() string
	scanEvent()
}

type eventBase struct {
	Message string
}

func (e eventBase) Text() string { return e.Message }
func (eventBase) scanEvent()     {}

type StatusEvent struct{ eventBase }

type ScanningEvent struct {
	eventBase
	URL          string
	Depth        int
	PagesCrawled int
	Found        int
}

type FoundCardEvent struct {
	eventBase
	Name       string
	Department string
	Title      string
	Summary    string
	LinksCount int
}

type InfoEvent struct {
	eventBase
	Details string
}

type ErrorEvent struct{ eventBase }

type CompleteEvent struct {
	eventBase
	TotalCards   int
	PagesCrawled int
}

type PhaseEvent struct {
	eventBase
	Phase string
}

type DiscoveryEvent struct {
	eventBase
	Count int
}

type InvestigatingEvent struct {
	eventBase
	Name     string
	Step     string
	Progress string
}

type LogEvent struct{ eventBase }

type SuggestionEvent struct {
	eventBase
	Title string
}

type EndEvent struct{ eventBase }

// UnknownEvent keeps messages with a type this client does not render.
type UnknownEvent struct {
	eventBase
	Type string
}

func (StatusEvent) Kind() EventKind        { return KindStatus }
func (ScanningEvent) Kind() EventKind      { return KindScanning }
func (FoundCardEvent) Kind() EventKind     { return KindFoundCard }
func (InfoEvent) Kind() EventKind          { return KindInfo }
func (ErrorEvent) Kind() EventKind         { return KindError }
func (CompleteEvent) Kind() EventKind      { return KindComplete }
func (PhaseEvent) Kind() EventKind         { return KindPhase }
func (DiscoveryEvent) Kind() EventKind     { return KindDiscovery }
func (InvestigatingEvent) Kind() EventKind { return KindInvestigating }
func (LogEvent) Kind() EventKind           { return KindLog }
func (SuggestionEvent) Kind() EventKind    { return KindSuggestion }
func (EndEvent) Kind() EventKind           { return KindEnd }
func (e UnknownEvent) Kind() EventKind     { return EventKind(e.Type) }

// wireEvent is the union of every field the backend sends.
type wireEvent struct {
	Type         string `json:"type"`
	Message      string `json:"message"`
	URL          string `json:"url"`
	Name         string `json:"name"`
	Department   string `json:"department"`
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	Depth        int    `json:"depth"`
	PagesCrawled int    `json:"pages_crawled"`
	Found        int    `json:"found"`
	TotalCards   int    `json:"total_cards"`
	LinksCount   int    `json:"links_count"`
	Details      string `json:"details"`
	Phase        string `json:"phase"`
	Count        int    `json:"count"`
	Step         string `json:"step"`
	Progress     string `json:"progress"`
}

// DecodeEvent parses one stream payload.
func DecodeEvent(data []byte) (ScanEvent, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &ParseError{Op: "decode event", Err: err}
	}
	return w.event(), nil
}

func (w wireEvent) event() ScanEvent {
	base := eventBase{Message: w.Message}
	switch EventKind(strings.TrimSpace(w.Type)) {
	case KindStatus:
		return StatusEvent{base}
	case KindScanning:
		return ScanningEvent{eventBase: base, URL: w.URL, Depth: w.Depth, PagesCrawled: w.PagesCrawled, Found: w.Found}
	case KindFoundCard:
		return FoundCardEvent{eventBase: base, Name: w.Name, Department: w.Department, Title: w.Title, Summary: w.Summary, LinksCount: w.LinksCount}
	case KindInfo:
		return InfoEvent{eventBase: base, Details: w.Details}
	case KindError:
		return ErrorEvent{base}
	case KindComplete:
		return CompleteEvent{eventBase: base, TotalCards: w.TotalCards, PagesCrawled: w.PagesCrawled}
	case KindPhase:
		return PhaseEvent{eventBase: base, Phase: w.Phase}
	case KindDiscovery:
		return DiscoveryEvent{eventBase: base, Count: w.Count}
	case KindInvestigating:
		return InvestigatingEvent{eventBase: base, Name: w.Name, Step: w.Step, Progress: w.Progress}
	case KindLog:
		return LogEvent{base}
	case KindSuggestion:
		return SuggestionEvent{eventBase: base, Title: w.Title}
	case KindEnd:
		return EndEvent{base}
	default:
		return UnknownEvent{eventBase: base, Type: w.Type}
	}
}

// IsTerminal reports whether ev ends a scan.
func IsTerminal(ev ScanEvent) bool {
	switch ev.Kind() {
	case KindEnd, KindComplete:
		return true
	}
	return false
}
