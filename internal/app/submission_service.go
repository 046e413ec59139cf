package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"leadgen-service/internal/domain"
)

// SubmissionStore persists lead submissions.
type SubmissionStore interface {
	CreateContact(domain.Contact) domain.Contact
	Contact(id string) (domain.Contact, bool)
	Contacts() []domain.Contact

	CreateBooking(domain.Booking) domain.Booking
	Booking(id string) (domain.Booking, bool)
	Bookings() []domain.Booking

	CreateAssessment(domain.AssessmentRecord) domain.AssessmentRecord
	Assessment(id string) (domain.AssessmentRecord, bool)
	Assessments() []domain.AssessmentRecord
}

// enqueueTimeout bounds how long a submission waits on the queue backend.
const enqueueTimeout = 2 * time.Second

// SubmissionService contains the lead capture use cases.
type SubmissionService struct {
	store     SubmissionStore
	queue     NotificationQueue
	validator *Validator
	questions []domain.Question
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// SubmissionOption customizes a SubmissionService.
type SubmissionOption func(*SubmissionService)

// WithClock overrides the time source used for date validation.
func WithClock(now func() time.Time) SubmissionOption {
	return func(s *SubmissionService) { s.now = now }
}

// WithLocation sets the timezone bare booking dates are read in.
func WithLocation(loc *time.Location) SubmissionOption {
	return func(s *SubmissionService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithQuestions replaces the default question bank.
func WithQuestions(questions []domain.Question) SubmissionOption {
	return func(s *SubmissionService) { s.questions = questions }
}

func NewSubmissionService(store SubmissionStore, queue NotificationQueue, logger *zap.Logger, opts ...SubmissionOption) *SubmissionService {
	s := &SubmissionService{
		store:     store,
		queue:     queue,
		validator: NewValidator(),
		questions: DefaultQuestions(),
		location:  time.UTC,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Questions returns the assessment question bank.
func (s *SubmissionService) Questions() []domain.Question {
	return s.questions
}

// Score evaluates an answer set against the question bank.
func (s *SubmissionService) Score(answers domain.AnswerSet) domain.AssessmentResult {
	return ScoreAssessment(answers, s.questions)
}

// Recommend suggests a consultation for a partial wizard selection.
func (s *SubmissionService) Recommend(selection domain.BookingSelection) domain.Recommendation {
	return RecommendConsultation(selection)
}

// Wizard starts a booking wizard on the service clock.
func (s *SubmissionService) Wizard() *BookingWizard {
	return NewBookingWizard(s.now)
}

// ParseDate reads a booking date in the service's booking timezone.
func (s *SubmissionService) ParseDate(raw string) (time.Time, error) {
	return ParseBookingDate(raw, s.location)
}

// SubmitContact stores a contact request and queues a notification.
func (s *SubmissionService) SubmitContact(ctx context.Context, in ContactInput) (domain.Contact, error) {
	if err := s.validator.Validate(in); err != nil {
		return domain.Contact{}, err
	}
	contact := s.store.CreateContact(in.contact())
	s.logger.Info("contact stored", zap.String("id", contact.ID))
	s.notify(ctx, domain.Notification{Kind: domain.NotifyContact, Contact: &contact})
	return contact, nil
}

// SubmitBooking validates the wizard payload, including the weekday/future
// date rule, then stores and announces the booking.
func (s *SubmissionService) SubmitBooking(ctx context.Context, in BookingInput) (domain.Booking, error) {
	// Blank tags count as missing, so normalise before the required check.
	in.Challenges = dedupe(in.Challenges)
	if len(in.Challenges) == 0 {
		in.Challenges = nil
	}
	if err := s.validator.Validate(in); err != nil {
		return domain.Booking{}, err
	}
	date, err := ParseBookingDate(in.SelectedDate, s.location)
	if err != nil {
		return domain.Booking{}, err
	}
	if err := ValidateBookingDate(date, s.now()); err != nil {
		return domain.Booking{}, err
	}

	selection := in.selection(date)
	rec := RecommendConsultation(selection)
	consultation, duration := in.ConsultationType, in.Duration
	if consultation == "" {
		consultation = rec.Type
	}
	if duration == "" {
		duration = rec.Duration
	}

	booking := s.store.CreateBooking(domain.Booking{
		Name:             selection.Name,
		Email:            selection.Email,
		Company:          selection.Company,
		Role:             selection.Role,
		BusinessType:     selection.BusinessType,
		Challenges:       selection.Challenges,
		Priority:         selection.Priority,
		Timeline:         selection.Timeline,
		ConsultationType: consultation,
		Duration:         duration,
		SelectedDate:     selection.SelectedDate,
		SelectedTimeSlot: selection.SelectedTimeSlot,
		Status:           domain.BookingStatusConfirmed,
	})
	s.logger.Info("booking stored",
		zap.String("id", booking.ID),
		zap.String("consultation", booking.ConsultationType))
	s.notify(ctx, domain.Notification{Kind: domain.NotifyBooking, Booking: &booking})
	return booking, nil
}

// SubmitAssessment stores a scored assessment.
func (s *SubmissionService) SubmitAssessment(ctx context.Context, in AssessmentInput) (domain.AssessmentRecord, error) {
	if err := s.validator.Validate(in); err != nil {
		return domain.AssessmentRecord{}, err
	}
	record := s.store.CreateAssessment(in.record())
	s.logger.Info("assessment stored",
		zap.String("id", record.ID),
		zap.Int("score", record.Score),
		zap.String("level", record.Level))
	s.notify(ctx, domain.Notification{Kind: domain.NotifyAssessment, Assessment: &record})
	return record, nil
}

func (s *SubmissionService) Contacts() []domain.Contact { return s.store.Contacts() }

func (s *SubmissionService) Bookings() []domain.Booking { return s.store.Bookings() }

func (s *SubmissionService) Assessments() []domain.AssessmentRecord { return s.store.Assessments() }

func (s *SubmissionService) Contact(id string) (domain.Contact, error) {
	c, ok := s.store.Contact(id)
	if !ok {
		return domain.Contact{}, domain.ErrNotFound
	}
	return c, nil
}

func (s *SubmissionService) Booking(id string) (domain.Booking, error) {
	b, ok := s.store.Booking(id)
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

func (s *SubmissionService) Assessment(id string) (domain.AssessmentRecord, error) {
	a, ok := s.store.Assessment(id)
	if !ok {
		return domain.AssessmentRecord{}, domain.ErrNotFound
	}
	return a, nil
}

// notify runs after the write has succeeded; failures are logged only.
func (s *SubmissionService) notify(ctx context.Context, n domain.Notification) {
	if s.queue == nil {
		return
	}
	n.QueuedAt = s.now()
	qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueTimeout)
	defer cancel()
	if err := s.queue.Enqueue(qctx, n); err != nil {
		s.logger.Warn("notification not queued, submission kept",
			zap.String("kind", string(n.Kind)),
			zap.Error(err))
	}
}
