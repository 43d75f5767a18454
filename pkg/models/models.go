package models

import "time"

// HighlightRequest is the body of POST /highlight-spam.
type HighlightRequest struct {
	Text   string `json:"text"`
	IsHTML bool   `json:"isHtml"`
}

// HighlightResponse carries both rewritten versions of the submitted text.
// HighlightedHTML is set for plain text requests; HighlightedPlain and
// ReplacedPlain are set for HTML requests.
type HighlightResponse struct {
	HighlightedText string   `json:"highlightedText"`
	ReplacedText    string   `json:"replacedText"`
	SpamWords       []string `json:"spamWords"`

	HighlightedHTML  string `json:"highlightedHtml,omitempty"`
	HighlightedPlain string `json:"highlightedPlain,omitempty"`
	ReplacedPlain    string `json:"replacedPlain,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// LogEntry is the per-request record the API ships to Kafka and the log
// keeper indexes.
type LogEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	IP         string    `json:"ip"`
	StatusCode int       `json:"status_code"`
	RequestID  string    `json:"request_id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Duration   float64   `json:"duration_sec"`
	Service    string    `json:"service"`
	BodyBytes  int       `json:"body_bytes"`
}
