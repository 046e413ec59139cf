package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"leadgen-service/internal/domain"
)

// RecordStore is the in-memory implementation of app.SubmissionStore and
// app.ContentStore. Identifiers are never reused across kinds for the life
// of the store.
type RecordStore struct {
	mu     sync.RWMutex
	now    func() time.Time
	newID  func() string
	issued map[string]struct{}

	contacts     *table[domain.Contact, *domain.Contact]
	bookings     *table[domain.Booking, *domain.Booking]
	assessments  *table[domain.AssessmentRecord, *domain.AssessmentRecord]
	testimonials *table[domain.Testimonial, *domain.Testimonial]
	caseStudies  *table[domain.CaseStudy, *domain.CaseStudy]
	blogPosts    *table[domain.BlogPost, *domain.BlogPost]
}

// StoreOption customizes a RecordStore.
type StoreOption func(*RecordStore)

// WithStoreClock is used by tests for deterministic timestamps.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *RecordStore) { s.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(newID func() string) StoreOption {
	return func(s *RecordStore) { s.newID = newID }
}

func NewRecordStore(opts ...StoreOption) *RecordStore {
	s := &RecordStore{
		now:          time.Now,
		newID:        uuid.NewString,
		issued:       make(map[string]struct{}),
		contacts:     newTable[domain.Contact, *domain.Contact](nil),
		bookings:     newTable[domain.Booking, *domain.Booking](cloneBooking),
		assessments:  newTable[domain.AssessmentRecord, *domain.AssessmentRecord](nil),
		testimonials: newTable[domain.Testimonial, *domain.Testimonial](nil),
		caseStudies:  newTable[domain.CaseStudy, *domain.CaseStudy](nil),
		blogPosts:    newTable[domain.BlogPost, *domain.BlogPost](cloneBlogPost),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// nextIDLocked draws identifiers until one has never been issued.
func (s *RecordStore) nextIDLocked() string {
	for {
		id := s.newID()
		if id == "" {
			continue
		}
		if _, used := s.issued[id]; used {
			continue
		}
		s.issued[id] = struct{}{}
		return id
	}
}

func create[T any, P entity[T]](s *RecordStore, t *table[T, P], v T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.insert(v, s.nextIDLocked(), s.now())
}

// createUnless inserts v unless an existing row clashes with it. The check
// and the insert happen under one lock.
func createUnless[T any, P entity[T]](s *RecordStore, t *table[T, P], v T, clash func(T) bool) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.any(clash) {
		var zero T
		return zero, false
	}
	return t.insert(v, s.nextIDLocked(), s.now()), true
}

func get[T any, P entity[T]](s *RecordStore, t *table[T, P], id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return t.get(id)
}

func list[T any, P entity[T]](s *RecordStore, t *table[T, P], keep func(T) bool, orderBy func(T) time.Time) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return t.list(keep, orderBy)
}

func (s *RecordStore) CreateContact(c domain.Contact) domain.Contact {
	return create(s, s.contacts, c)
}

func (s *RecordStore) Contact(id string) (domain.Contact, bool) { return get(s, s.contacts, id) }

func (s *RecordStore) Contacts() []domain.Contact { return list(s, s.contacts, nil, nil) }

func (s *RecordStore) CreateBooking(b domain.Booking) domain.Booking {
	return create(s, s.bookings, b)
}

func (s *RecordStore) Booking(id string) (domain.Booking, bool) { return get(s, s.bookings, id) }

func (s *RecordStore) Bookings() []domain.Booking { return list(s, s.bookings, nil, nil) }

func (s *RecordStore) CreateAssessment(a domain.AssessmentRecord) domain.AssessmentRecord {
	return create(s, s.assessments, a)
}

func (s *RecordStore) Assessment(id string) (domain.AssessmentRecord, bool) {
	return get(s, s.assessments, id)
}

func (s *RecordStore) Assessments() []domain.AssessmentRecord {
	return list(s, s.assessments, nil, nil)
}

func (s *RecordStore) CreateTestimonial(t domain.Testimonial) domain.Testimonial {
	return create(s, s.testimonials, t)
}

// CreateTestimonialIfNew skips testimonials whose author and company are
// already present.
func (s *RecordStore) CreateTestimonialIfNew(t domain.Testimonial) (domain.Testimonial, bool) {
	return createUnless(s, s.testimonials, t, func(existing domain.Testimonial) bool {
		return existing.Name == t.Name && existing.Company == t.Company
	})
}

func (s *RecordStore) Testimonial(id string) (domain.Testimonial, bool) {
	return get(s, s.testimonials, id)
}

func (s *RecordStore) Testimonials() []domain.Testimonial {
	return list(s, s.testimonials, nil, nil)
}

func (s *RecordStore) FeaturedTestimonials() []domain.Testimonial {
	return list(s, s.testimonials, func(t domain.Testimonial) bool { return t.Featured }, nil)
}

func (s *RecordStore) CreateCaseStudy(cs domain.CaseStudy) domain.CaseStudy {
	return create(s, s.caseStudies, cs)
}

// CreateCaseStudyIfSlugFree inserts cs unless its slug is taken.
func (s *RecordStore) CreateCaseStudyIfSlugFree(cs domain.CaseStudy) (domain.CaseStudy, bool) {
	return createUnless(s, s.caseStudies, cs, func(existing domain.CaseStudy) bool {
		return existing.Slug == cs.Slug
	})
}

func (s *RecordStore) CaseStudy(id string) (domain.CaseStudy, bool) {
	return get(s, s.caseStudies, id)
}

func (s *RecordStore) CaseStudies() []domain.CaseStudy {
	return list(s, s.caseStudies, nil, nil)
}

func (s *RecordStore) FeaturedCaseStudies() []domain.CaseStudy {
	return list(s, s.caseStudies, func(cs domain.CaseStudy) bool { return cs.Featured }, nil)
}

// CreateBlogPost also sets UpdatedAt to the creation time.
func (s *RecordStore) CreateBlogPost(p domain.BlogPost) domain.BlogPost {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertBlogPostLocked(p)
}

// CreateBlogPostIfSlugFree inserts p unless its slug is taken.
func (s *RecordStore) CreateBlogPostIfSlugFree(p domain.BlogPost) (domain.BlogPost, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blogPosts.any(func(existing domain.BlogPost) bool { return existing.Slug == p.Slug }) {
		return domain.BlogPost{}, false
	}
	return s.insertBlogPostLocked(p), true
}

func (s *RecordStore) insertBlogPostLocked(p domain.BlogPost) domain.BlogPost {
	now := s.now()
	p.UpdatedAt = now
	return s.blogPosts.insert(p, s.nextIDLocked(), now)
}

func (s *RecordStore) BlogPost(id string) (domain.BlogPost, bool) {
	return get(s, s.blogPosts, id)
}

func (s *RecordStore) BlogPosts() []domain.BlogPost {
	return list(s, s.blogPosts, nil, nil)
}

// PublishedBlogPosts orders by publish time; posts without one sort last.
func (s *RecordStore) PublishedBlogPosts() []domain.BlogPost {
	return list(s, s.blogPosts,
		func(p domain.BlogPost) bool { return p.Published },
		func(p domain.BlogPost) time.Time {
			if p.PublishedAt == nil {
				return time.Time{}
			}
			return *p.PublishedAt
		})
}

// Len reports the total number of records across all kinds.
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contacts.count() + s.bookings.count() + s.assessments.count() +
		s.testimonials.count() + s.caseStudies.count() + s.blogPosts.count()
}

func cloneBooking(b domain.Booking) domain.Booking {
	b.Challenges = append([]string(nil), b.Challenges...)
	return b
}

func cloneBlogPost(p domain.BlogPost) domain.BlogPost {
	if p.PublishedAt != nil {
		at := *p.PublishedAt
		p.PublishedAt = &at
	}
	return p
}
