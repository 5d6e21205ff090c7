package types

// Trait identifies one dimension of the 9-dimensional profile. Trait values
// are stable identifiers used as map keys throughout the engine and in all
// serialized output.
type Trait string

const (
	TraitAptitude           Trait = "aptitude"
	TraitOpenness           Trait = "openness"
	TraitConscientiousness  Trait = "conscientiousness"
	TraitExtraversion       Trait = "extraversion"
	TraitAgreeableness      Trait = "agreeableness"
	TraitEmotionalStability Trait = "emotional_stability"
	TraitRealistic          Trait = "realistic"
	TraitInvestigative      Trait = "investigative"
	TraitArtistic           Trait = "artistic"

	// TraitNeuroticism is the physical accumulator key behind
	// emotional_stability. Questions target neuroticism; the public vector
	// exposes the inverted value and never this key.
	TraitNeuroticism Trait = "neuroticism"
)

// Traits lists the public dimensions in declared order. This order is the
// canonical iteration order for vectors and reports.
var Traits = []Trait{
	TraitAptitude,
	TraitOpenness,
	TraitConscientiousness,
	TraitExtraversion,
	TraitAgreeableness,
	TraitEmotionalStability,
	TraitRealistic,
	TraitInvestigative,
	TraitArtistic,
}

// Vector is a normalized trait profile. Every public trait maps to a value
// in [0, 1]; 0.5 means undetermined.
type Vector map[Trait]float64

// AnswerKind distinguishes how a question's response is scored.
type AnswerKind string

const (
	KindAptitudeMCQ AnswerKind = "aptitude_mcq"
	KindLikert5     AnswerKind = "likert_5"
)

// Polarity controls Likert scoring direction. Negative-polarity items are
// reverse-scored.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

// Likert scale values. Responses to likert_5 questions must be one of these.
const (
	StronglyAgree    = 2
	Agree            = 1
	Neutral          = 0
	Disagree         = -1
	StronglyDisagree = -2
)

// QuestionSpec is one immutable entry of the question bank.
type QuestionSpec struct {
	ID       string     `json:"id"`
	Trait    Trait      `json:"trait"`
	Kind     AnswerKind `json:"kind"`
	Polarity Polarity   `json:"polarity,omitempty"`
	Text     string     `json:"text"`
	Options  []string   `json:"options,omitempty"`
	Correct  int        `json:"correct,omitempty"`
}

// RawResponse is a single answer to a selected question. For aptitude_mcq
// questions Value is the chosen option index; for likert_5 questions it is
// the signed scale value in [-2, 2].
type RawResponse struct {
	QuestionID string `json:"question_id"`
	Value      int    `json:"value"`
}

// Category is one immutable taxonomy entry with its hand-authored trait
// weight vector.
type Category struct {
	Name    string            `json:"name"`
	Weights map[Trait]float64 `json:"weights"`
	Roles   []string          `json:"roles,omitempty"`
}

// RankedCategory is one entry of a classification ranking.
type RankedCategory struct {
	Name        string   `json:"name"`
	Probability float64  `json:"probability"`
	Roles       []string `json:"roles,omitempty"`
}

// ClassificationResult is the output of one classifier pass: a probability
// distribution over the candidate categories, ranked descending. Immutable
// once produced.
type ClassificationResult struct {
	Probabilities map[string]float64 `json:"probabilities"`
	Ranked        []RankedCategory   `json:"ranked"`
	Top           string             `json:"top"`
}
