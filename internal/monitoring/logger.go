package monitoring

import (
	"log/slog"
	"os"
	"time"
)

// Logger provides structured logging with assessment-domain helpers
type Logger struct {
	*slog.Logger
}

// NewLogger creates a JSON logger writing to stdout
func NewLogger() *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})
	return &Logger{Logger: slog.New(handler)}
}

// RequestLogger logs HTTP request details
func (l *Logger) RequestLogger(method, path, ip string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// SessionLogger logs session lifecycle events
func (l *Logger) SessionLogger(event, sessionID, mode string, asked int) {
	l.Info("Session Event",
		"event", event,
		"session_id", sessionID,
		"mode", mode,
		"questions_asked", asked,
	)
}

// ClassificationLogger logs a finished classifier pass
func (l *Logger) ClassificationLogger(sessionID, stage, top string, probability float64, categories int) {
	l.Info("Classification Completed",
		"session_id", sessionID,
		"stage", stage,
		"top", top,
		"probability", probability,
		"categories", categories,
	)
}

// NarrativeLogger logs the outcome of a narrative generation attempt.
// Failures log at info level: the narrative step is optional and recovered
// locally, never an error of the session.
func (l *Logger) NarrativeLogger(success bool, source string, err error) {
	if success {
		l.Info("Narrative Generated", "source", source)
		return
	}
	if err != nil {
		l.Info("Narrative Fallback", "source", source, "cause", err.Error())
	} else {
		l.Info("Narrative Fallback", "source", source)
	}
}

// SystemLogger logs system-level events
func (l *Logger) SystemLogger(event, details string) {
	l.Info("System Event",
		"event", event,
		"details", details,
		"uptime", time.Since(startTime).String(),
	)
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level slog.Level) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	l.Logger = slog.New(handler)
}

var startTime = time.Now()
