package labmatch

import (
	"fmt"
	"strings"
)

const (
	statusInitializing = "Initializing AI Agent..."
	statusComplete     = "Scan Complete!"
	statusErrorDefault = "Error encountered"
	statusProcessing   = "Processing..."
	statusURLMax       = 30
)

// ScanSummary is everything the visualizer derives from an event log.
type ScanSummary struct {
	ProfessorsFound int
	PagesScanned    int
	// Current is the last event, or an initializing placeholder.
	Current ScanEvent
	Status  string
	// ScanningURL is set while the current event is a scan of a URL.
	ScanningURL string
}

// Summarize folds the ordered event log into counters and the status line.
func Summarize(events []ScanEvent) ScanSummary {
	var sum ScanSummary
	for _, ev := range events {
		switch ev.Kind() {
		case KindFoundCard:
			sum.ProfessorsFound++
		case KindScanning:
			sum.PagesScanned++
		}
	}
	if len(events) == 0 {
		sum.Current = StatusEvent{eventBase{Message: statusInitializing}}
	} else {
		sum.Current = events[len(events)-1]
	}
	sum.Status = StatusLine(sum.Current)
	if sc, ok := sum.Current.(ScanningEvent); ok && sc.URL != "" {
		sum.ScanningURL = stripScheme(sc.URL)
	}
	return sum
}

// StatusLine is the one-line description of the current action.
func StatusLine(ev ScanEvent) string {
	if ev == nil {
		return statusInitializing
	}
	switch e := ev.(type) {
	case ScanningEvent:
		clean := strings.Replace(stripScheme(e.URL), "www.", "", 1)
		return "Scanning: " + truncateRunes(clean, statusURLMax, "...")
	case CompleteEvent:
		return statusComplete
	case ErrorEvent:
		if e.Message != "" {
			return e.Message
		}
		return statusErrorDefault
	}
	if msg := ev.Text(); msg != "" {
		return msg
	}
	return statusProcessing
}

func stripScheme(u string) string {
	u = strings.Replace(u, "https://", "", 1)
	return strings.Replace(u, "http://", "", 1)
}

// RowStyle selects how a feed row is drawn.
type RowStyle int

const (
	RowFoundCard RowStyle = iota
	RowStatus
	RowBlocked
	RowError
	RowInfo
	RowPhase
	RowDiscovery
	RowInvestigating
	RowLog
	RowSuggestion
)

// FeedRow is one visible line of the scan feed.
type FeedRow struct {
	Style  RowStyle
	Title  string
	Detail string
	// Badge carries the investigation progress, e.g. "3/10".
	Badge string
}

// ClassifyRow maps an event to its feed row. Scanning events and types the
// client does not know are not shown.
func ClassifyRow(ev ScanEvent) (FeedRow, bool) {
	switch e := ev.(type) {
	case FoundCardEvent:
		detail := e.Department
		if e.Title != "" {
			detail = strings.TrimSpace(e.Title + " · " + e.Department)
		}
		return FeedRow{Style: RowFoundCard, Title: e.Name, Detail: detail}, true
	case ScanningEvent:
		return FeedRow{}, false
	case StatusEvent:
		return FeedRow{Style: RowStatus, Title: e.Message}, true
	case CompleteEvent:
		return FeedRow{Style: RowStatus, Title: e.Message}, true
	case ErrorEvent:
		if isBlockedMessage(e.Message) {
			return FeedRow{Style: RowBlocked, Title: "Access Restricted (Skipped)"}, true
		}
		return FeedRow{Style: RowError, Title: "Issue: " + e.Message}, true
	case InfoEvent:
		return FeedRow{Style: RowInfo, Title: e.Message, Detail: e.Details}, true
	case PhaseEvent:
		return FeedRow{Style: RowPhase, Title: e.Message}, true
	case DiscoveryEvent:
		title := e.Message
		if title == "" {
			title = fmt.Sprintf("Discovered %d candidates", e.Count)
		}
		return FeedRow{Style: RowDiscovery, Title: title}, true
	case InvestigatingEvent:
		return FeedRow{Style: RowInvestigating, Title: e.Name, Detail: e.Message, Badge: e.Progress}, true
	case LogEvent:
		return FeedRow{Style: RowLog, Title: e.Message}, true
	case SuggestionEvent:
		return FeedRow{Style: RowSuggestion, Title: e.Message, Detail: e.Title}, true
	case EndEvent, UnknownEvent:
		return FeedRow{}, false
	}
	return FeedRow{}, false
}

// Feed returns the visible rows for the log, in arrival order.
func Feed(events []ScanEvent) []FeedRow {
	rows := make([]FeedRow, 0, len(events))
	for _, ev := range events {
		if row, ok := ClassifyRow(ev); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

func isBlockedMessage(msg string) bool {
	return strings.Contains(msg, "404") || strings.Contains(msg, "403")
}
