package app

import (
	"fmt"

	"leadgen-service/internal/domain"
)

// Tier thresholds, inclusive lower bounds.
const (
	leaderThreshold      = 80
	progressiveThreshold = 60
	developingThreshold  = 40
)

type tierContent struct {
	recommendations []string
	nextSteps       []string
}

var tierCopy = map[domain.Tier]tierContent{
	domain.TierLeader: {
		recommendations: []string{
			"Focus on advanced analytics and AI implementation",
			"Explore predictive modeling for competitive advantage",
			"Consider innovation partnerships and emerging technologies",
		},
		nextSteps: []string{
			"Advanced AI consultation",
			"Innovation strategy session",
			"Competitive analysis review",
		},
	},
	domain.TierProgressive: {
		recommendations: []string{
			"Optimize existing systems for better integration",
			"Implement advanced analytics and reporting",
			"Enhance team digital capabilities",
		},
		nextSteps: []string{
			"Digital optimization audit",
			"Analytics implementation plan",
			"Team training program",
		},
	},
	domain.TierDeveloping: {
		recommendations: []string{
			"Prioritize core system modernization",
			"Implement basic data analytics",
			"Begin digital process transformation",
		},
		nextSteps: []string{
			"Digital transformation roadmap",
			"System assessment and planning",
			"Quick wins identification",
		},
	},
	domain.TierStarter: {
		recommendations: []string{
			"Start with foundational digital infrastructure",
			"Implement basic data collection and reporting",
			"Focus on essential process digitization",
		},
		nextSteps: []string{
			"Digital foundation assessment",
			"Priority process identification",
			"Technology roadmap creation",
		},
	},
}

// TierFor maps a percentage onto its tier using half-open intervals.
func TierFor(percentage float64) domain.Tier {
	switch {
	case percentage >= leaderThreshold:
		return domain.TierLeader
	case percentage >= progressiveThreshold:
		return domain.TierProgressive
	case percentage >= developingThreshold:
		return domain.TierDeveloping
	default:
		return domain.TierStarter
	}
}

// ScoreAssessment sums the weights of the selected options and normalizes
// against the sum of question ceilings. Answers for unknown questions or
// options contribute nothing.
func ScoreAssessment(answers domain.AnswerSet, questions []domain.Question) domain.AssessmentResult {
	total, ceiling := 0, 0
	for _, q := range questions {
		ceiling += q.Ceiling()
		optionID, ok := answers[q.ID]
		if !ok {
			continue
		}
		if opt, ok := q.Option(optionID); ok {
			total += opt.Weight
		}
	}

	percentage := 0.0
	if ceiling > 0 {
		// multiply first so whole-number percentages stay exact
		percentage = float64(total*100) / float64(ceiling)
	}

	tier := TierFor(percentage)
	content := tierCopy[tier]
	return domain.AssessmentResult{
		Percentage:      percentage,
		Score:           int(percentage),
		Level:           tier,
		Recommendations: append([]string(nil), content.recommendations...),
		NextSteps:       append([]string(nil), content.nextSteps...),
	}
}

// ValidateQuestions checks that a question bank is internally consistent.
func ValidateQuestions(questions []domain.Question) error {
	seen := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		if q.ID == "" {
			return fmt.Errorf("question with prompt %q has no id", q.Prompt)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = struct{}{}
		if len(q.Options) == 0 {
			return fmt.Errorf("question %q has no options", q.ID)
		}
		for _, opt := range q.Options {
			if opt.Weight < 1 || opt.Weight > q.Ceiling() {
				return fmt.Errorf("question %q option %q weight %d outside 1..%d", q.ID, opt.ID, opt.Weight, q.Ceiling())
			}
		}
	}
	return nil
}

// Assessment question IDs, matching the stored answer fields.
const (
	QuestionDataUsage          = "data_usage"
	QuestionTechInfrastructure = "tech_infrastructure"
	QuestionDigitalProcesses   = "digital_processes"
	QuestionTeamSkills         = "team_skills"
	QuestionGrowthChallenges   = "growth_challenges"
)

// DefaultQuestions returns the readiness question bank.
func DefaultQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:     QuestionDataUsage,
			Prompt: "How does your business currently use data for decision-making?",
			Options: []domain.Option{
				{ID: "spreadsheets", Label: "Mainly spreadsheets and basic reports", Weight: 1},
				{ID: "some_analytics", Label: "Some analytics tools, but limited insights", Weight: 2},
				{ID: "regular_analysis", Label: "Regular data analysis with dedicated tools", Weight: 3},
				{ID: "advanced", Label: "Advanced analytics and predictive modeling", Weight: 4},
			},
			MaxWeight: 4,
		},
		{
			ID:     QuestionTechInfrastructure,
			Prompt: "How would you describe your current technology infrastructure?",
			Options: []domain.Option{
				{ID: "outdated", Label: "Mostly outdated systems, manual processes", Weight: 1},
				{ID: "mixed", Label: "Mix of old and new systems, some integration issues", Weight: 2},
				{ID: "modern", Label: "Modern systems with good integration", Weight: 3},
				{ID: "cutting_edge", Label: "Cutting-edge, fully integrated tech stack", Weight: 4},
			},
			MaxWeight: 4,
		},
		{
			ID:     QuestionDigitalProcesses,
			Prompt: "What percentage of your business processes are digitized?",
			Options: []domain.Option{
				{ID: "under_25", Label: "Less than 25%", Weight: 1},
				{ID: "25_50", Label: "25-50%", Weight: 2},
				{ID: "50_75", Label: "50-75%", Weight: 3},
				{ID: "over_75", Label: "More than 75%", Weight: 4},
			},
			MaxWeight: 4,
		},
		{
			ID:     QuestionTeamSkills,
			Prompt: "How would you rate your team's digital skills and adaptability?",
			Options: []domain.Option{
				{ID: "basic", Label: "Basic - need significant training", Weight: 1},
				{ID: "moderate", Label: "Moderate - some training needed", Weight: 2},
				{ID: "good", Label: "Good - minimal training needed", Weight: 3},
				{ID: "excellent", Label: "Excellent - highly adaptable", Weight: 4},
			},
			MaxWeight: 4,
		},
		{
			ID:     QuestionGrowthChallenges,
			Prompt: "What's your biggest challenge in scaling your business?",
			Options: []domain.Option{
				{ID: "manual_processes", Label: "Too many manual processes", Weight: 1},
				{ID: "system_integration", Label: "Poor system integration", Weight: 2},
				{ID: "data_insights", Label: "Lack of data-driven insights", Weight: 3},
				{ID: "competitive_edge", Label: "Need better competitive advantages", Weight: 4},
			},
			MaxWeight: 4,
		},
	}
}

// QuizWalk tracks a single respondent moving linearly through a question
// bank. It is owned by one connection and is not safe for concurrent use.
type QuizWalk struct {
	questions []domain.Question
	answers   domain.AnswerSet
	current   int
}

// NewQuizWalk starts a walk at the first question.
func NewQuizWalk(questions []domain.Question) *QuizWalk {
	return &QuizWalk{questions: questions, answers: make(domain.AnswerSet)}
}

// Progress describes the question currently presented.
func (w *QuizWalk) Progress() domain.QuizProgress {
	p := domain.QuizProgress{Index: w.current, Total: len(w.questions), Answered: len(w.answers)}
	if w.current < len(w.questions) {
		p.Question = w.questions[w.current]
	}
	return p
}

// Answer records an answer for the current question and advances. It
// returns true once every question has been answered.
func (w *QuizWalk) Answer(questionID, optionID string) (bool, error) {
	if w.Done() {
		return true, nil
	}
	q := w.questions[w.current]
	if q.ID != questionID {
		return false, domain.ErrQuestionNotFound
	}
	if _, ok := q.Option(optionID); !ok {
		return false, domain.ErrOptionNotFound
	}
	w.answers[questionID] = optionID
	w.current++
	return w.Done(), nil
}

// Back steps to the previous question, keeping its recorded answer.
func (w *QuizWalk) Back() {
	if w.current > 0 {
		w.current--
	}
}

// Restart clears all answers.
func (w *QuizWalk) Restart() {
	w.current = 0
	w.answers = make(domain.AnswerSet)
}

// Done reports whether the walk has passed the last question.
func (w *QuizWalk) Done() bool {
	return w.current >= len(w.questions)
}

// Answers returns a copy of the recorded answers.
func (w *QuizWalk) Answers() domain.AnswerSet {
	out := make(domain.AnswerSet, len(w.answers))
	for k, v := range w.answers {
		out[k] = v
	}
	return out
}

// Result scores the answers recorded so far.
func (w *QuizWalk) Result() domain.AssessmentResult {
	return ScoreAssessment(w.answers, w.questions)
}
