package logging

// LogEntry represents a structured log record with fields particularly
// relevant to evolutionary optimization runs.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Run-specific fields
	RunID      string // Identifier of the optimization run
	Generation int    // Generation counter at the time of logging, -1 if unset

	// General structured data
	Fields map[string]interface{}
}
