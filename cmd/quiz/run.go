package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pathlight-labs/pathlight/internal/bank"
	"github.com/pathlight-labs/pathlight/internal/config"
	"github.com/pathlight-labs/pathlight/internal/engine"
	"github.com/pathlight-labs/pathlight/internal/monitoring"
	"github.com/pathlight-labs/pathlight/internal/narrative"
	"github.com/pathlight-labs/pathlight/internal/report"
	"github.com/pathlight-labs/pathlight/internal/store"
	"github.com/pathlight-labs/pathlight/internal/taxonomy"
	"github.com/pathlight-labs/pathlight/internal/types"
)

type runOptions struct {
	full    bool
	staged  bool
	demo    bool
	noAI    bool
	noSave  bool
	seed    int64
	budget  int
	dataDir string
	mode    string
}

// likertScale maps the 1..5 menu the user sees to signed scale values.
var likertScale = []struct {
	Label string
	Value int
}{
	{"Strongly agree", types.StronglyAgree},
	{"Agree", types.Agree},
	{"Neutral", types.Neutral},
	{"Disagree", types.Disagree},
	{"Strongly disagree", types.StronglyDisagree},
}

func run(cmd *cobra.Command, opts *runOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	if opts.budget > 0 {
		cfg.QuestionBudget = opts.budget
	}

	questions, err := bank.LoadFrom(cfg.DataDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())

	seed := opts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	rep := &report.Report{
		ID: uuid.New().String(),
		Meta: report.Meta{
			Timestamp: time.Now().UTC(),
			Mode:      opts.mode,
			BankSize:  len(questions),
		},
	}

	fmt.Fprintf(out, "Pathlight career assessment (%s mode, %d questions in bank)\n\n", opts.mode, len(questions))

	if opts.mode == report.ModeStaged {
		tree, err := taxonomy.LoadTreeFrom(cfg.DataDir)
		if err != nil {
			return err
		}
		session, err := engine.NewStagedSession(engine.NewAdaptivePolicy(questions), tree, cfg.StageBudgets)
		if err != nil {
			return err
		}
		if err := runStaged(out, in, rng, opts, session, tree); err != nil {
			return err
		}
		rep.Traits = session.Vector()
		rep.Stages = session.Outcomes()
		rep.Meta.QuestionsAsked = session.Asked()
	} else {
		clusters, err := taxonomy.LoadClustersFrom(cfg.DataDir)
		if err != nil {
			return err
		}
		session := newFlatSession(questions, cfg, opts, seed)
		if err := runFlat(out, in, rng, opts, session); err != nil {
			return err
		}
		res, err := session.Finalize(clusters)
		if err != nil {
			return err
		}
		rep.Traits = session.Vector()
		rep.Classification = &res
		rep.Meta.QuestionsAsked = session.Asked()
	}

	printProfile(out, rep)

	rep.Narrative = generateNarrative(cfg, opts, rep)
	printNarrative(out, rep.Narrative)

	if !opts.noSave {
		if err := persist(cfg, rep, out); err != nil {
			return err
		}
	}
	return nil
}

func newFlatSession(questions []types.QuestionSpec, cfg *config.Config, opts *runOptions, seed int64) *engine.Session {
	switch opts.mode {
	case report.ModeFull:
		return engine.NewSession(engine.NewSequentialPolicy(questions), 0)
	case report.ModeDemo:
		return engine.NewSession(engine.NewRandomPolicy(questions, seed), cfg.QuestionBudget)
	default:
		return engine.NewSession(engine.NewAdaptivePolicy(questions), cfg.QuestionBudget)
	}
}

func runFlat(out io.Writer, in *bufio.Scanner, rng *rand.Rand, opts *runOptions, session *engine.Session) error {
	n := 1
	for {
		q, ok, err := session.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		r, err := collectAnswer(out, in, rng, opts, q, n)
		if err != nil {
			return err
		}
		if err := session.Submit(r); err != nil {
			fmt.Fprintf(out, "  %v\n", err)
			continue
		}
		n++
	}
}

func runStaged(out io.Writer, in *bufio.Scanner, rng *rand.Rand, opts *runOptions, session *engine.StagedSession, tree *taxonomy.Tree) error {
	n := 1
	closed := 0
	for {
		q, ok, err := session.Next()
		if err != nil {
			return err
		}
		for _, o := range session.Outcomes()[closed:] {
			fmt.Fprintf(out, "\n>> %s: %s (%.1f%%)\n\n", o.Stage, o.Result.Top, o.Result.Probabilities[o.Result.Top]*100)
			closed++
		}
		if !ok {
			return nil
		}
		r, err := collectAnswer(out, in, rng, opts, q, n)
		if err != nil {
			return err
		}
		if err := session.Submit(r); err != nil {
			fmt.Fprintf(out, "  %v\n", err)
			continue
		}
		n++
	}
}

// collectAnswer renders one question and returns a raw response, either from
// the terminal or, in demo mode, from the seeded generator.
func collectAnswer(out io.Writer, in *bufio.Scanner, rng *rand.Rand, opts *runOptions, q types.QuestionSpec, n int) (types.RawResponse, error) {
	fmt.Fprintf(out, "Q%d. %s\n", n, q.Text)

	if q.Kind == types.KindAptitudeMCQ {
		for i, opt := range q.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
		}
		if opts.demo {
			v := rng.Intn(len(q.Options))
			fmt.Fprintf(out, "  [demo] %d\n", v+1)
			return types.RawResponse{QuestionID: q.ID, Value: v}, nil
		}
		idx, err := promptIndex(out, in, len(q.Options))
		if err != nil {
			return types.RawResponse{}, err
		}
		return types.RawResponse{QuestionID: q.ID, Value: idx}, nil
	}

	for i, s := range likertScale {
		fmt.Fprintf(out, "  %d) %s\n", i+1, s.Label)
	}
	if opts.demo {
		i := rng.Intn(len(likertScale))
		fmt.Fprintf(out, "  [demo] %d\n", i+1)
		return types.RawResponse{QuestionID: q.ID, Value: likertScale[i].Value}, nil
	}
	idx, err := promptIndex(out, in, len(likertScale))
	if err != nil {
		return types.RawResponse{}, err
	}
	return types.RawResponse{QuestionID: q.ID, Value: likertScale[idx].Value}, nil
}

// promptIndex reads a 1-based menu choice, reprompting until valid, and
// returns it 0-based.
func promptIndex(out io.Writer, in *bufio.Scanner, n int) (int, error) {
	for {
		fmt.Fprintf(out, "> ")
		if !in.Scan() {
			return 0, fmt.Errorf("input closed before the assessment finished")
		}
		choice, err := strconv.Atoi(strings.TrimSpace(in.Text()))
		if err != nil || choice < 1 || choice > n {
			fmt.Fprintf(out, "  enter a number between 1 and %d\n", n)
			continue
		}
		return choice - 1, nil
	}
}

func generateNarrative(cfg *config.Config, opts *runOptions, rep *report.Report) *narrative.Insight {
	var provider narrative.Provider
	if cfg.NarrativeEnabled && !opts.noAI {
		provider = narrative.NewOllamaClient(cfg.NarrativeURL, cfg.NarrativeModel, cfg.NarrativeTimeout)
	}
	gen := narrative.NewGenerator(provider, monitoring.NewLogger())

	var result types.ClassificationResult
	if rep.Classification != nil {
		result = *rep.Classification
	} else if n := len(rep.Stages); n > 0 {
		result = rep.Stages[n-1].Result
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.NarrativeTimeout)
	defer cancel()
	return gen.Insight(ctx, rep.Traits, result)
}

func persist(cfg *config.Config, rep *report.Report, out io.Writer) error {
	path, err := rep.WriteFile(cfg.DataDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nResult written to %s\n", path)

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.SaveReport(rep)
}

func printProfile(out io.Writer, rep *report.Report) {
	fmt.Fprintf(out, "\nTrait profile\n")
	for _, t := range types.Traits {
		fmt.Fprintf(out, "  %-22s %s %.3f\n", t, bar(rep.Traits[t]), rep.Traits[t])
	}

	if rep.Classification != nil {
		fmt.Fprintf(out, "\nTop career clusters\n")
		printRanking(out, rep.Classification.Ranked)
	}
	for _, o := range rep.Stages {
		fmt.Fprintf(out, "\nStage: %s\n", o.Stage)
		printRanking(out, o.Result.Ranked)
	}
}

func printRanking(out io.Writer, ranked []types.RankedCategory) {
	for i, rc := range ranked {
		if i >= 5 {
			break
		}
		fmt.Fprintf(out, "  %d. %-38s %5.1f%%\n", i+1, rc.Name, rc.Probability*100)
		if i == 0 && len(rc.Roles) > 0 {
			fmt.Fprintf(out, "     roles: %s\n", strings.Join(rc.Roles, ", "))
		}
	}
}

func printNarrative(out io.Writer, insight *narrative.Insight) {
	if insight == nil {
		return
	}
	fmt.Fprintf(out, "\nGuidance (%s)\n", insight.Source)
	fmt.Fprintf(out, "  %s\n", insight.Narrative)
	if len(insight.Strengths) > 0 {
		fmt.Fprintf(out, "\n  Strengths: %s\n", strings.Join(insight.Strengths, "; "))
	}
	if len(insight.GrowthAreas) > 0 {
		fmt.Fprintf(out, "  Growth areas: %s\n", strings.Join(insight.GrowthAreas, "; "))
	}
	for _, step := range insight.Roadmap {
		fmt.Fprintf(out, "  %d. %s - %s\n", step.Step, step.Title, step.Detail)
	}
	if insight.KeyInsight != "" {
		fmt.Fprintf(out, "\n  Key insight: %s\n", insight.KeyInsight)
	}
}

// bar renders a 30-cell gauge for a [0,1] value.
func bar(v float64) string {
	const width = 30
	filled := int(v*width + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
