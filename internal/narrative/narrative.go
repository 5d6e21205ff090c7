// Package narrative turns a finished classification into counselor-style
// prose via an external inference service. The call is strictly optional
// and strictly after scoring: a failure here can never invalidate or roll
// back an already-computed result.
package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pathlight-labs/pathlight/internal/monitoring"
	"github.com/pathlight-labs/pathlight/internal/types"
)

// Source markers recorded on every Insight so consumers can tell generated
// narrative from the deterministic fallback.
const (
	SourceModel     = "inference"
	SourceExtracted = "inference (extracted)"
	SourceFallback  = "fallback (service unavailable)"
)

// RoadmapStep is one action item of the suggested career roadmap.
type RoadmapStep struct {
	Step     int    `json:"step"`
	Title    string `json:"title"`
	Detail   string `json:"detail"`
	Timeline string `json:"timeline,omitempty"`
}

// Insight is the structured narrative merged into the final report. All
// fields are opaque strings from the engine's point of view.
type Insight struct {
	Narrative        string        `json:"narrative"`
	Strengths        []string      `json:"strengths"`
	GrowthAreas      []string      `json:"growth_areas"`
	WhyTopCategory   string        `json:"why_top_category,omitempty"`
	Roadmap          []RoadmapStep `json:"roadmap"`
	AlternativePaths []string      `json:"alternative_paths,omitempty"`
	KeyInsight       string        `json:"key_insight,omitempty"`
	Source           string        `json:"source"`
}

// Generator produces insights with local failure recovery.
type Generator struct {
	provider Provider
	logger   *monitoring.Logger
}

// NewGenerator wires a provider. A nil provider always yields the fallback.
func NewGenerator(provider Provider, logger *monitoring.Logger) *Generator {
	return &Generator{provider: provider, logger: logger}
}

// Insight generates narrative for a finished assessment. It never returns
// an error: when the service is unavailable or returns unusable output, the
// deterministic fallback is used and marked as such.
func (g *Generator) Insight(ctx context.Context, vec types.Vector, result types.ClassificationResult) *Insight {
	if g.provider == nil {
		return Fallback()
	}

	prompt := BuildPrompt(vec, result)
	raw, err := g.provider.Generate(ctx, prompt)
	if err != nil {
		if g.logger != nil {
			g.logger.NarrativeLogger(false, SourceFallback, err)
		}
		return Fallback()
	}

	insight, source := parseInsight(raw)
	if insight == nil {
		if g.logger != nil {
			g.logger.NarrativeLogger(false, SourceFallback, fmt.Errorf("unparseable model output"))
		}
		fb := Fallback()
		return fb
	}
	insight.Source = source
	if g.logger != nil {
		g.logger.NarrativeLogger(true, source, nil)
	}
	return insight
}

// parseInsight tries strict JSON first, then balanced-object extraction
// from messy output.
func parseInsight(raw string) (*Insight, string) {
	var insight Insight
	if err := json.Unmarshal([]byte(raw), &insight); err == nil && insight.Narrative != "" {
		return &insight, SourceModel
	}
	extracted := extractFirstJSONObject(raw)
	if extracted == "" {
		return nil, ""
	}
	insight = Insight{}
	if err := json.Unmarshal([]byte(extracted), &insight); err != nil || insight.Narrative == "" {
		return nil, ""
	}
	return &insight, SourceExtracted
}

// BuildPrompt renders the trait vector and ranking into the counselor
// prompt. The model is asked for strict JSON matching Insight.
func BuildPrompt(vec types.Vector, result types.ClassificationResult) string {
	var b strings.Builder
	b.WriteString("You are an expert career counselor and psychometric analyst.\n\n")
	b.WriteString("A person has completed a career assessment (Aptitude + Big Five + RIASEC).\n")
	b.WriteString("Here are their normalized trait scores (0.0 = very low, 1.0 = very high):\n\n")
	for _, t := range types.Traits {
		fmt.Fprintf(&b, "%-22s %.3f\n", t+":", vec[t])
	}

	if len(result.Ranked) > 0 {
		top := result.Ranked[0]
		fmt.Fprintf(&b, "\nTop career match: %s (%.1f%%)\n", top.Name, top.Probability*100)
		if len(top.Roles) > 0 {
			fmt.Fprintf(&b, "Sample roles: %s\n", strings.Join(top.Roles, ", "))
		}
	}

	b.WriteString("\nTop 5 matches:\n")
	for i, rc := range result.Ranked {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "  - %s: %.1f%%\n", rc.Name, rc.Probability*100)
	}

	b.WriteString(`
Provide a detailed analysis in STRICT JSON with these keys:
{
  "narrative": "<2-3 paragraph personalised explanation of why this career fits>",
  "strengths": ["<strength 1>", "<strength 2>", "<strength 3>"],
  "growth_areas": ["<area 1>", "<area 2>", "<area 3>"],
  "why_top_category": "<1 paragraph specific reasoning>",
  "roadmap": [
    {"step": 1, "title": "<action title>", "detail": "<specific action>", "timeline": "<e.g. Week 1-2>"},
    {"step": 2, "title": "<action title>", "detail": "<specific action>", "timeline": "<e.g. Month 1>"},
    {"step": 3, "title": "<action title>", "detail": "<specific action>", "timeline": "<e.g. Month 2-3>"},
    {"step": 4, "title": "<action title>", "detail": "<specific action>", "timeline": "<e.g. Month 3-6>"},
    {"step": 5, "title": "<action title>", "detail": "<specific action>", "timeline": "<e.g. Month 6-12>"}
  ],
  "alternative_paths": ["<alt category 1>", "<alt category 2>"],
  "key_insight": "<one sentence summary>"
}

Return ONLY valid JSON. No markdown. No extra text.`)
	return b.String()
}

// Fallback returns the deterministic insight used when the inference
// service is unreachable. The explicit source marker stands in for the
// absent narrative rather than propagating the failure.
func Fallback() *Insight {
	return &Insight{
		Narrative: "Based on your assessment, your profile shows a distinctive blend of strengths. " +
			"Your aptitude scores reveal analytical capacity, while your personality dimensions " +
			"highlight how you naturally interact with work environments and people. " +
			"The RIASEC profile pinpoints the type of activities that energise you most.",
		Strengths:   []string{"Analytical thinking", "Curiosity", "Reliability"},
		GrowthAreas: []string{"Consider broadening interpersonal exposure", "Build on hands-on skills"},
		Roadmap: []RoadmapStep{
			{Step: 1, Title: "Self-exploration", Detail: "Research top roles in your career match via job boards and informational interviews."},
			{Step: 2, Title: "Skill gap analysis", Detail: "Identify 2-3 technical or soft-skill gaps compared to entry-level job descriptions."},
			{Step: 3, Title: "Targeted learning", Detail: "Enroll in a focused course to address your top gap."},
			{Step: 4, Title: "Portfolio and experience", Detail: "Build a project, internship, or volunteer record in your target area."},
			{Step: 5, Title: "Network and apply", Detail: "Connect with professionals in the field and apply to open positions."},
		},
		Source: SourceFallback,
	}
}
