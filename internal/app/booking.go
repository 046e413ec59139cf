package app

import (
	"fmt"
	"strings"
	"time"

	"leadgen-service/internal/domain"
)

// Booking wizard vocabulary.
const (
	ChallengeData        = "data"
	ChallengeSystems     = "systems"
	ChallengeProcesses   = "processes"
	ChallengeGrowth      = "growth"
	ChallengeCompetitive = "competitive"

	BusinessTypeTechnology = "Technology & Software"
)

// BusinessTypes lists the industries offered in the wizard.
var BusinessTypes = []string{
	"Energy & Oil Gas",
	BusinessTypeTechnology,
	"Financial Services",
	"Healthcare",
	"Retail & E-commerce",
	"Manufacturing",
	"Professional Services",
	"Other",
}

// TimeSlots are the bookable start times on any weekday.
var TimeSlots = []string{
	"9:00 AM", "10:00 AM", "11:00 AM",
	"1:00 PM", "2:00 PM", "3:00 PM", "4:00 PM",
}

// IsTimeSlot reports whether slot is bookable.
func IsTimeSlot(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

type consultationRule struct {
	matches        func(domain.BookingSelection) bool
	recommendation domain.Recommendation
}

func anyChallenge(tags ...string) func(domain.BookingSelection) bool {
	return func(s domain.BookingSelection) bool {
		for _, tag := range tags {
			if s.HasChallenge(tag) {
				return true
			}
		}
		return false
	}
}

func minutes(n int) string { return fmt.Sprintf("%d minutes", n) }

// consultationRules is evaluated in order; the first match wins.
var consultationRules = []consultationRule{
	{
		matches: anyChallenge(ChallengeData, ChallengeSystems),
		recommendation: domain.Recommendation{
			Type:        "Technical Assessment",
			Minutes:     60,
			Duration:    minutes(60),
			Description: "Deep dive into your current systems and data infrastructure with technical recommendations.",
			Preparation: "Please prepare: Current system overview, data flow diagrams (if available), key pain points",
		},
	},
	{
		matches: anyChallenge(ChallengeProcesses, ChallengeGrowth),
		recommendation: domain.Recommendation{
			Type:        "Business Process Review",
			Minutes:     45,
			Duration:    minutes(45),
			Description: "Analyze your current processes and identify automation and optimization opportunities.",
			Preparation: "Please prepare: Process documentation, team structure, current workflow pain points",
		},
	},
	{
		matches: func(s domain.BookingSelection) bool {
			return s.HasChallenge(ChallengeCompetitive) || s.BusinessType == BusinessTypeTechnology
		},
		recommendation: domain.Recommendation{
			Type:        "Strategic Planning Session",
			Minutes:     75,
			Duration:    minutes(75),
			Description: "Strategic discussion on digital transformation roadmap and competitive positioning.",
			Preparation: "Please prepare: Business goals, competitive landscape info, growth targets",
		},
	},
}

var discoveryCall = domain.Recommendation{
	Type:        "General Discovery Call",
	Minutes:     30,
	Duration:    minutes(30),
	Description: "Initial discussion to understand your needs and determine the best path forward.",
	Preparation: "Please prepare: Brief overview of your business and main challenges",
}

// RecommendConsultation picks the consultation for a selection.
func RecommendConsultation(selection domain.BookingSelection) domain.Recommendation {
	for _, rule := range consultationRules {
		if rule.matches(selection) {
			return rule.recommendation
		}
	}
	return discoveryCall
}

// ValidateBookingDate rejects dates whose day has already started and
// weekend dates. The weekday is taken in the date's own location.
func ValidateBookingDate(date, now time.Time) error {
	if date.IsZero() {
		return domain.NewFieldError("selectedDate", "required", "is required")
	}
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return domain.NewFieldError("selectedDate", "weekday", "must fall on a weekday")
	}
	y, m, d := date.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	if dayStart.Before(now) {
		return domain.NewFieldError("selectedDate", "future", "must be in the future")
	}
	return nil
}

// ParseBookingDate accepts RFC 3339 timestamps or bare YYYY-MM-DD dates;
// bare dates are interpreted in loc.
func ParseBookingDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, loc)
	if err != nil {
		return time.Time{}, domain.NewFieldError("selectedDate", "date", "must be an ISO-8601 date")
	}
	return t, nil
}

// Wizard steps.
const (
	StepContact = iota + 1
	StepBusiness
	StepPriorities
	StepSchedule
	StepReview
)

// BookingWizard holds the wizard state for one client session. It is not
// safe for concurrent use.
type BookingWizard struct {
	step      int
	selection domain.BookingSelection
	now       func() time.Time
}

// NewBookingWizard starts a wizard at the contact step.
func NewBookingWizard(now func() time.Time) *BookingWizard {
	if now == nil {
		now = time.Now
	}
	return &BookingWizard{step: StepContact, now: now}
}

// Step returns the current step number.
func (w *BookingWizard) Step() int { return w.step }

// Selection returns a copy of the current selection.
func (w *BookingWizard) Selection() domain.BookingSelection {
	s := w.selection
	s.Challenges = append([]string(nil), w.selection.Challenges...)
	return s
}

// Recommendation is recomputed from the live selection on every call.
func (w *BookingWizard) Recommendation() domain.Recommendation {
	return RecommendConsultation(w.selection)
}

// WizardUpdate carries the fields a client edited; nil fields are untouched.
type WizardUpdate struct {
	Name         *string   `json:"name,omitempty"`
	Email        *string   `json:"email,omitempty"`
	Company      *string   `json:"company,omitempty"`
	Role         *string   `json:"role,omitempty"`
	BusinessType *string   `json:"businessType,omitempty"`
	Challenges   *[]string `json:"challenges,omitempty"`
	Priority     *string   `json:"priority,omitempty"`
	Timeline     *string   `json:"timeline,omitempty"`
}

// Update applies edited fields.
func (w *BookingWizard) Update(u WizardUpdate) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&w.selection.Name, u.Name)
	set(&w.selection.Email, u.Email)
	set(&w.selection.Company, u.Company)
	set(&w.selection.Role, u.Role)
	set(&w.selection.BusinessType, u.BusinessType)
	set(&w.selection.Priority, u.Priority)
	set(&w.selection.Timeline, u.Timeline)
	if u.Challenges != nil {
		w.selection.Challenges = dedupe(*u.Challenges)
	}
}

// ToggleChallenge checks or unchecks a single challenge tag.
func (w *BookingWizard) ToggleChallenge(tag string, checked bool) {
	kept := w.selection.Challenges[:0:0]
	for _, c := range w.selection.Challenges {
		if c != tag {
			kept = append(kept, c)
		}
	}
	if checked {
		kept = append(kept, tag)
	}
	w.selection.Challenges = kept
}

// Schedule sets the date and slot after validating them.
func (w *BookingWizard) Schedule(date time.Time, slot string) error {
	if err := ValidateBookingDate(date, w.now()); err != nil {
		return err
	}
	if !IsTimeSlot(slot) {
		return domain.NewFieldError("selectedTimeSlot", "timeslot", "is not an available time slot")
	}
	w.selection.SelectedDate = date
	w.selection.SelectedTimeSlot = slot
	return nil
}

// CanProceed reports whether the current step has everything it needs.
func (w *BookingWizard) CanProceed() bool {
	s := w.selection
	switch w.step {
	case StepContact:
		return s.Name != "" && s.Email != "" && s.Company != "" && s.Role != ""
	case StepBusiness:
		return s.BusinessType != "" && len(s.Challenges) > 0
	case StepPriorities:
		return s.Priority != "" && s.Timeline != ""
	case StepSchedule:
		return s.Scheduled()
	default:
		return true
	}
}

// Next advances one step when the current one is complete.
func (w *BookingWizard) Next() error {
	if !w.CanProceed() {
		return domain.ErrIncompleteStep
	}
	if w.step < StepReview {
		w.step++
	}
	return nil
}

// Back returns to the previous step.
func (w *BookingWizard) Back() {
	if w.step > StepContact {
		w.step--
	}
}

// Input turns the finished selection into a booking submission carrying the
// live recommendation.
func (w *BookingWizard) Input() BookingInput {
	rec := w.Recommendation()
	s := w.Selection()
	in := BookingInput{
		Name:             s.Name,
		Email:            s.Email,
		Company:          s.Company,
		Role:             s.Role,
		BusinessType:     s.BusinessType,
		Challenges:       s.Challenges,
		Priority:         s.Priority,
		Timeline:         s.Timeline,
		ConsultationType: rec.Type,
		Duration:         rec.Duration,
		SelectedTimeSlot: s.SelectedTimeSlot,
	}
	if !s.SelectedDate.IsZero() {
		in.SelectedDate = s.SelectedDate.Format(time.RFC3339)
	}
	return in
}

func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
