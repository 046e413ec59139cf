package app_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadgen-service/internal/app"
	"leadgen-service/internal/domain"
)

// Wednesday 9 January 2030, mid-morning.
var fixedNow = time.Date(2030, 1, 9, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func day(d int) time.Time { return time.Date(2030, 1, d, 0, 0, 0, 0, time.UTC) }

func fieldRule(t *testing.T, err error) string {
	t.Helper()
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	require.NotEmpty(t, verr.Fields)
	return verr.Fields[0].Rule
}

func TestRecommendConsultation(t *testing.T) {
	cases := []struct {
		name      string
		selection domain.BookingSelection
		want      string
		minutes   int
	}{
		{"data wins", domain.BookingSelection{Challenges: []string{"data"}}, "Technical Assessment", 60},
		{"data beats later rules", domain.BookingSelection{
			BusinessType: app.BusinessTypeTechnology,
			Challenges:   []string{"competitive", "growth", "data"},
		}, "Technical Assessment", 60},
		{"systems", domain.BookingSelection{Challenges: []string{"growth", "systems"}}, "Technical Assessment", 60},
		{"processes", domain.BookingSelection{Challenges: []string{"processes"}}, "Business Process Review", 45},
		{"growth", domain.BookingSelection{Challenges: []string{"growth"}}, "Business Process Review", 45},
		{"competitive", domain.BookingSelection{Challenges: []string{"competitive"}}, "Strategic Planning Session", 75},
		{"technology business", domain.BookingSelection{BusinessType: app.BusinessTypeTechnology}, "Strategic Planning Session", 75},
		{"fallback", domain.BookingSelection{BusinessType: "Healthcare"}, "General Discovery Call", 30},
		{"empty", domain.BookingSelection{}, "General Discovery Call", 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := app.RecommendConsultation(tc.selection)
			assert.Equal(t, tc.want, rec.Type)
			assert.Equal(t, tc.minutes, rec.Minutes)
			assert.NotEmpty(t, rec.Preparation)
		})
	}
}

func TestValidateBookingDate(t *testing.T) {
	require.NoError(t, app.ValidateBookingDate(day(10), fixedNow))
	require.NoError(t, app.ValidateBookingDate(day(14), fixedNow))

	assert.Equal(t, "future", fieldRule(t, app.ValidateBookingDate(day(8), fixedNow)))
	assert.Equal(t, "future", fieldRule(t, app.ValidateBookingDate(day(9), fixedNow)), "today has already started")
	assert.Equal(t, "weekday", fieldRule(t, app.ValidateBookingDate(day(12), fixedNow)))
	assert.Equal(t, "weekday", fieldRule(t, app.ValidateBookingDate(day(13), fixedNow)))
	assert.Equal(t, "required", fieldRule(t, app.ValidateBookingDate(time.Time{}, fixedNow)))
}

func TestParseBookingDate(t *testing.T) {
	edmonton := time.FixedZone("MST", -7*3600)

	got, err := app.ParseBookingDate("2030-01-10", edmonton)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 1, 10, 0, 0, 0, 0, edmonton), got)

	got, err = app.ParseBookingDate("2030-01-10T18:00:00Z", edmonton)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Day())
	assert.Equal(t, 11, got.Hour())

	_, err = app.ParseBookingDate("next tuesday", edmonton)
	assert.Equal(t, "date", fieldRule(t, err))
}

func TestBookingWizardGatesSteps(t *testing.T) {
	w := app.NewBookingWizard(clock)
	require.Equal(t, app.StepContact, w.Step())

	if err := w.Next(); !errors.Is(err, domain.ErrIncompleteStep) {
		t.Fatalf("expected ErrIncompleteStep, got %v", err)
	}

	name, email, company, role := "Ada", "ada@example.com", "Acme", "CTO"
	w.Update(app.WizardUpdate{Name: &name, Email: &email, Company: &company, Role: &role})
	require.NoError(t, w.Next())
	require.Equal(t, app.StepBusiness, w.Step())

	biz := "Healthcare"
	w.Update(app.WizardUpdate{BusinessType: &biz})
	assert.False(t, w.CanProceed(), "needs at least one challenge")
	assert.Equal(t, "General Discovery Call", w.Recommendation().Type)

	w.ToggleChallenge(app.ChallengeProcesses, true)
	assert.Equal(t, "Business Process Review", w.Recommendation().Type)
	w.ToggleChallenge(app.ChallengeData, true)
	w.ToggleChallenge(app.ChallengeData, true)
	assert.Equal(t, []string{"processes", "data"}, w.Selection().Challenges)
	assert.Equal(t, "Technical Assessment", w.Recommendation().Type)
	w.ToggleChallenge(app.ChallengeData, false)
	assert.Equal(t, "Business Process Review", w.Recommendation().Type)
	require.NoError(t, w.Next())

	priority, timeline := "high", "1-3 months"
	w.Update(app.WizardUpdate{Priority: &priority, Timeline: &timeline})
	require.NoError(t, w.Next())
	require.Equal(t, app.StepSchedule, w.Step())

	assert.Equal(t, "weekday", fieldRule(t, w.Schedule(day(12), "9:00 AM")))
	assert.Equal(t, "timeslot", fieldRule(t, w.Schedule(day(10), "7:00 PM")))
	assert.False(t, w.CanProceed())
	require.NoError(t, w.Schedule(day(10), "9:00 AM"))
	require.NoError(t, w.Next())
	require.Equal(t, app.StepReview, w.Step())

	in := w.Input()
	assert.Equal(t, "Business Process Review", in.ConsultationType)
	assert.Equal(t, "45 minutes", in.Duration)
	assert.Equal(t, "2030-01-10T00:00:00Z", in.SelectedDate)

	w.Back()
	assert.Equal(t, app.StepSchedule, w.Step())
}

func TestWizardSelectionIsACopy(t *testing.T) {
	w := app.NewBookingWizard(clock)
	w.ToggleChallenge("data", true)
	sel := w.Selection()
	sel.Challenges[0] = "mutated"
	assert.Equal(t, []string{"data"}, w.Selection().Challenges)
}
