package domain

// DefaultMaxWeight is used when a question does not declare its ceiling.
const DefaultMaxWeight = 4

// Option represents a possible answer for a question.
type Option struct {
	ID     string `json:"id" yaml:"id"`
	Label  string `json:"label" yaml:"label"`
	Weight int    `json:"weight" yaml:"weight"`
}

// Question models a weighted multiple-choice readiness question.
type Question struct {
	ID        string   `json:"id" yaml:"id"`
	Prompt    string   `json:"prompt" yaml:"prompt"`
	Options   []Option `json:"options" yaml:"options"`
	MaxWeight int      `json:"maxWeight" yaml:"maxWeight"` // defaults to DefaultMaxWeight if zero
}

// Ceiling returns the highest weight an answer to q can contribute.
func (q Question) Ceiling() int {
	if q.MaxWeight > 0 {
		return q.MaxWeight
	}
	return DefaultMaxWeight
}

// Option looks up an option by ID.
func (q Question) Option(id string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// AnswerSet maps question IDs to the selected option ID.
type AnswerSet map[string]string

// Tier is a qualitative digital readiness label.
type Tier string

const (
	TierStarter     Tier = "Digital Starter"
	TierDeveloping  Tier = "Digital Developing"
	TierProgressive Tier = "Digital Progressive"
	TierLeader      Tier = "Digital Leader"
)

// Tiers lists every tier from lowest to highest.
var Tiers = []Tier{TierStarter, TierDeveloping, TierProgressive, TierLeader}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	for _, known := range Tiers {
		if t == known {
			return true
		}
	}
	return false
}

// AssessmentResult is the computed outcome of an answer set.
type AssessmentResult struct {
	Percentage      float64  `json:"percentage"`
	Score           int      `json:"score"`
	Level           Tier     `json:"level"`
	Recommendations []string `json:"recommendations"`
	NextSteps       []string `json:"nextSteps"`
}

// QuizProgress is the state of a linear quiz walk.
type QuizProgress struct {
	Index    int      `json:"index"`
	Total    int      `json:"total"`
	Question Question `json:"question"`
	Answered int      `json:"answered"`
}
