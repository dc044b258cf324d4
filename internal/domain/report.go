package domain

import "time"

// ReportEntry records one failed item of a download run
type ReportEntry struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ErrorReport lists failures in processing order
type ErrorReport []ReportEntry

// Attempt is a single journaled download attempt
type Attempt struct {
	SessionID   string    `json:"session_id"`
	Filter      string    `json:"filter"`
	Ordinal     int       `json:"ordinal"`
	Name        string    `json:"name"`
	URL         string    `json:"url,omitempty"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	AttemptedAt time.Time `json:"attempted_at"`
}
