// Package report assembles the final session output: meta, trait vector,
// classification(s), and optional narrative. Reports are the only artifact
// persisted; engine-internal state never leaks into them.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pathlight-labs/pathlight/internal/engine"
	apperrors "github.com/pathlight-labs/pathlight/internal/errors"
	"github.com/pathlight-labs/pathlight/internal/narrative"
	"github.com/pathlight-labs/pathlight/internal/types"
)

// Assessment modes recorded in report meta.
const (
	ModeAdaptive = "adaptive"
	ModeFull     = "full"
	ModeStaged   = "staged"
	ModeDemo     = "demo"
)

// Meta describes how the session was run.
type Meta struct {
	Timestamp      time.Time `json:"timestamp"`
	Mode           string    `json:"mode"`
	QuestionsAsked int       `json:"questions_asked"`
	BankSize       int       `json:"bank_size"`
}

// Report is one timestamped session record. Flat sessions fill
// Classification; staged sessions fill Stages. Narrative is optional and
// may carry the explicit fallback marker.
type Report struct {
	ID             string                      `json:"id"`
	Meta           Meta                        `json:"meta"`
	Traits         types.Vector                `json:"traits"`
	Classification *types.ClassificationResult `json:"classification,omitempty"`
	Stages         []engine.StageOutcome       `json:"stages,omitempty"`
	Narrative      *narrative.Insight          `json:"narrative,omitempty"`
}

// WriteFile persists the report as a pretty-printed JSON file in dir,
// one file per session, never overwriting an existing record.
func (r *Report) WriteFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.NewConfigError("failed to create report directory", err)
	}
	suffix := r.ID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	name := fmt.Sprintf("result_%s_%s.json", r.Meta.Timestamp.Format("20060102_150405"), suffix)
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", apperrors.NewInternalError("failed to create report file", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", apperrors.NewInternalError("failed to encode report", err)
	}
	return path, nil
}
