package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"leadgen-service/internal/app"
	"leadgen-service/internal/domain"
)

// APIHandler serves the REST surface of the site.
type APIHandler struct {
	submissions *app.SubmissionService
	content     *app.ContentService
	adminToken  string
	serviceName string
	now         func() time.Time
	logger      *zap.Logger
}

// APIOption customizes an APIHandler.
type APIOption func(*APIHandler)

// WithAdminToken enables the admin endpoints behind a bearer token. Without
// a token they answer 403.
func WithAdminToken(token string) APIOption {
	return func(h *APIHandler) { h.adminToken = token }
}

// WithServiceName sets the name reported by the health check.
func WithServiceName(name string) APIOption {
	return func(h *APIHandler) {
		if name != "" {
			h.serviceName = name
		}
	}
}

func NewAPIHandler(submissions *app.SubmissionService, content *app.ContentService, logger *zap.Logger, opts ...APIOption) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &APIHandler{
		submissions: submissions,
		content:     content,
		serviceName: "CAPLEO Sage Solutions",
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts every route on mux. Submission endpoints go through
// limit, which may be nil.
func (h *APIHandler) Register(mux *http.ServeMux, limit func(http.Handler) http.Handler) {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	submit := func(fn http.HandlerFunc) http.Handler { return limit(fn) }

	mux.HandleFunc("GET /api/health", h.health)

	mux.Handle("POST /api/contacts", submit(h.createContact))
	mux.Handle("GET /api/contacts", h.admin(h.listContacts))

	mux.Handle("POST /api/bookings", submit(h.createBooking))
	mux.Handle("GET /api/bookings", h.admin(h.listBookings))
	mux.HandleFunc("POST /api/bookings/recommendation", h.recommend)
	mux.HandleFunc("GET /api/bookings/slots", h.slots)

	mux.Handle("POST /api/assessments", submit(h.createAssessment))
	mux.Handle("GET /api/assessments", h.admin(h.listAssessments))
	mux.HandleFunc("GET /api/assessment/questions", h.questions)
	mux.HandleFunc("POST /api/assessment/score", h.score)

	mux.HandleFunc("GET /api/testimonials", h.listTestimonials(false))
	mux.HandleFunc("GET /api/testimonials/featured", h.listTestimonials(true))
	mux.HandleFunc("GET /api/testimonials/{id}", h.getTestimonial)
	mux.Handle("POST /api/testimonials", h.admin(h.createTestimonial))

	mux.HandleFunc("GET /api/case-studies", h.listCaseStudies(false))
	mux.HandleFunc("GET /api/case-studies/featured", h.listCaseStudies(true))
	mux.HandleFunc("GET /api/case-studies/{id}", h.getCaseStudy)
	mux.Handle("POST /api/case-studies", h.admin(h.createCaseStudy))

	mux.HandleFunc("GET /api/blog", h.listBlogPosts(false))
	mux.HandleFunc("GET /api/blog/published", h.listBlogPosts(true))
	mux.HandleFunc("GET /api/blog/{id}", h.getBlogPost)
	mux.Handle("POST /api/blog", h.admin(h.createBlogPost))

	mux.Handle("POST /api/content/reload", h.admin(h.reloadContent))
}

func (h *APIHandler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: h.serviceName + " API is running",
		Data:    map[string]string{"timestamp": h.now().UTC().Format(time.RFC3339)},
	})
}

// admin guards a handler with the configured bearer token.
func (h *APIHandler) admin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.adminToken == "" {
			writeMessage(w, http.StatusForbidden, "Admin access is disabled")
			return
		}
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	})
}

func (h *APIHandler) createContact(w http.ResponseWriter, r *http.Request) {
	var in app.ContactInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	contact, err := h.submissions.SubmitContact(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeCreated(w, "Thank you for your inquiry! We'll get back to you within 24 hours.", contact)
}

func (h *APIHandler) listContacts(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, h.submissions.Contacts())
}

func (h *APIHandler) createBooking(w http.ResponseWriter, r *http.Request) {
	var in app.BookingInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	booking, err := h.submissions.SubmitBooking(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeCreated(w, "Consultation booked successfully", booking)
}

func (h *APIHandler) listBookings(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, h.submissions.Bookings())
}

type recommendationRequest struct {
	BusinessType string   `json:"businessType"`
	Challenges   []string `json:"challenges"`
	Priority     string   `json:"priority"`
	Timeline     string   `json:"timeline"`
}

func (h *APIHandler) recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, h.submissions.Recommend(domain.BookingSelection{
		BusinessType: req.BusinessType,
		Challenges:   req.Challenges,
		Priority:     req.Priority,
		Timeline:     req.Timeline,
	}))
}

func (h *APIHandler) slots(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, app.TimeSlots)
}

func (h *APIHandler) createAssessment(w http.ResponseWriter, r *http.Request) {
	var in app.AssessmentInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	record, err := h.submissions.SubmitAssessment(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeCreated(w, "Assessment saved", record)
}

func (h *APIHandler) listAssessments(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, h.submissions.Assessments())
}

func (h *APIHandler) questions(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, h.submissions.Questions())
}

func (h *APIHandler) score(w http.ResponseWriter, r *http.Request) {
	var answers domain.AnswerSet
	if err := decodeJSON(w, r, &answers); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, h.submissions.Score(answers))
}

func (h *APIHandler) listTestimonials(featured bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, http.StatusOK, h.content.Testimonials(featured))
	}
}

func (h *APIHandler) getTestimonial(w http.ResponseWriter, r *http.Request) {
	lookup(w, h.logger, r.PathValue("id"), h.content.Testimonial)
}

func (h *APIHandler) createTestimonial(w http.ResponseWriter, r *http.Request) {
	create(w, r, h.logger, "Testimonial created", h.content.CreateTestimonial)
}

func (h *APIHandler) listCaseStudies(featured bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, http.StatusOK, h.content.CaseStudies(featured))
	}
}

func (h *APIHandler) getCaseStudy(w http.ResponseWriter, r *http.Request) {
	lookup(w, h.logger, r.PathValue("id"), h.content.CaseStudy)
}

func (h *APIHandler) createCaseStudy(w http.ResponseWriter, r *http.Request) {
	create(w, r, h.logger, "Case study created", h.content.CreateCaseStudy)
}

func (h *APIHandler) listBlogPosts(published bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, http.StatusOK, h.content.BlogPosts(published))
	}
}

func (h *APIHandler) getBlogPost(w http.ResponseWriter, r *http.Request) {
	lookup(w, h.logger, r.PathValue("id"), h.content.BlogPost)
}

func (h *APIHandler) createBlogPost(w http.ResponseWriter, r *http.Request) {
	create(w, r, h.logger, "Blog post created", h.content.CreateBlogPost)
}

func (h *APIHandler) reloadContent(w http.ResponseWriter, r *http.Request) {
	report, err := h.content.Reload(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, report)
}

func lookup[T any](w http.ResponseWriter, logger *zap.Logger, id string, get func(string) (T, error)) {
	v, err := get(id)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	writeData(w, http.StatusOK, v)
}

func create[In, Out any](w http.ResponseWriter, r *http.Request, logger *zap.Logger, message string, fn func(context.Context, In) (Out, error)) {
	var in In
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, logger, err)
		return
	}
	out, err := fn(r.Context(), in)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	writeCreated(w, message, out)
}
