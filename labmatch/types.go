package labmatch

// SessionStatus is the crawl state reported by the backend.
type SessionStatus string

const (
	StatusQueued  SessionStatus = "queued"
	StatusRunning SessionStatus = "running"
	StatusDone    SessionStatus = "done"
	StatusError   SessionStatus = "error"
	StatusBlocked SessionStatus = "blocked"
)

// Link is a labelled URL attached to a professor profile.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Professor is one discovered faculty profile. Cards are never modified
// after they are received; the client only reorders and filters them.
type Professor struct {
	ID             string   `json:"id"`
	Name           string   `json:"professor_name"`
	Title          string   `json:"title,omitempty"`
	Department     string   `json:"department,omitempty"`
	School         string   `json:"school,omitempty"`
	PrimaryURL     string   `json:"primary_url,omitempty"`
	Summary        string   `json:"summary,omitempty"`
	ResearchThemes []string `json:"research_themes,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	Links          []Link   `json:"links,omitempty"`
	MatchScore     *float64 `json:"match_score,omitempty"`
	MatchReasoning string   `json:"match_reasoning,omitempty"`
}

// Session is a crawl session owned by the backend.
type Session struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	RootURLs      []string      `json:"root_urls"`
	Status        SessionStatus `json:"status"`
	BlockedReason string        `json:"blocked_reason,omitempty"`
	BlockedURL    string        `json:"blocked_url,omitempty"`
	CreatedAt     string        `json:"created_at,omitempty"`
	FinishedAt    string        `json:"finished_at,omitempty"`
}

// Finished reports whether the backend will not change the session anymore.
func (s Session) Finished() bool {
	switch s.Status {
	case StatusDone, StatusError, StatusBlocked:
		return true
	}
	return false
}

// SessionResponse is returned by both session endpoints.
type SessionResponse struct {
	Session Session     `json:"session"`
	Cards   []Professor `json:"cards"`
}

// CreateSessionRequest is the body of POST /sessions.
type CreateSessionRequest struct {
	UserID          string   `json:"user_id"`
	RootURLs        []string `json:"root_urls"`
	ObjectivePrompt string   `json:"objective_prompt"`
	CustomPrompt    string   `json:"custom_prompt"`
}

// ResumeSummary is the response of POST /parse-resume.
type ResumeSummary struct {
	Summary  string   `json:"summary,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// Decision is the outcome of a swipe.
type Decision string

const (
	DecisionLike Decision = "like"
	DecisionPass Decision = "pass"
)

// Health is the tri-state result of the backend health check.
type Health string

const (
	HealthHealthy      Health = "healthy"
	HealthDown         Health = "down"
	HealthSupabaseDown Health = "supabase_down"
)
