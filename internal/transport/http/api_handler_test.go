package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadgen-service/internal/domain"
)

type apiResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  []domain.FieldError `json:"errors"`
}

func (e *testEnv) do(t *testing.T, method, path, body string, header map[string]string) (*http.Response, apiResponse) {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out apiResponse
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func admin() map[string]string {
	return map[string]string{"Authorization": "Bearer " + testAdminToken}
}

func TestContactSubmission(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, out := env.do(t, http.MethodPost, "/api/contacts", `{"name":"Ada","email":"ada@example.com","service":"Data Engineering","description":"Help"}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, out.Success)
	var contact domain.Contact
	require.NoError(t, json.Unmarshal(out.Data, &contact))
	assert.NotEmpty(t, contact.ID)
	assert.Equal(t, 1, env.queue.Len(), "notification queued after the write")
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	resp, out = env.do(t, http.MethodPost, "/api/contacts", `{"name":"","email":"nope"}`, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, out.Success)
	require.Len(t, out.Errors, 2)
	assert.Equal(t, "name", out.Errors[0].Field)

	resp, _ = env.do(t, http.MethodPost, "/api/contacts", `{"name":`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminListsRequireToken(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodPost, "/api/contacts", `{"name":"Ada","email":"ada@example.com"}`, nil)

	resp, _ := env.do(t, http.MethodGet, "/api/contacts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = env.do(t, http.MethodGet, "/api/contacts", "", map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, out := env.do(t, http.MethodGet, "/api/contacts", "", admin())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var contacts []domain.Contact
	require.NoError(t, json.Unmarshal(out.Data, &contacts))
	assert.Len(t, contacts, 1)
}

func TestBookingSubmission(t *testing.T) {
	env := newTestEnv(t, nil)
	body := `{"name":"Ada","email":"ada@example.com","company":"Acme","role":"CEO","businessType":"Healthcare",
		"challenges":["processes"],"priority":"high","timeline":"soon","selectedDate":"2030-01-10","selectedTimeSlot":"2:00 PM"}`

	resp, out := env.do(t, http.MethodPost, "/api/bookings", body, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, out.Message)
	var booking domain.Booking
	require.NoError(t, json.Unmarshal(out.Data, &booking))
	assert.Equal(t, "Business Process Review", booking.ConsultationType)
	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status)

	weekend := strings.Replace(body, "2030-01-10", "2030-01-12", 1)
	resp, out = env.do(t, http.MethodPost, "/api/bookings", weekend, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "weekday", out.Errors[0].Rule)

	resp, out = env.do(t, http.MethodGet, "/api/bookings", "", admin())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bookings []domain.Booking
	require.NoError(t, json.Unmarshal(out.Data, &bookings))
	assert.Len(t, bookings, 1)
}

func TestRecommendationAndSlots(t *testing.T) {
	env := newTestEnv(t, nil)

	_, out := env.do(t, http.MethodPost, "/api/bookings/recommendation", `{"businessType":"Technology & Software"}`, nil)
	var rec domain.Recommendation
	require.NoError(t, json.Unmarshal(out.Data, &rec))
	assert.Equal(t, "Strategic Planning Session", rec.Type)
	assert.Equal(t, 75, rec.Minutes)

	_, out = env.do(t, http.MethodGet, "/api/bookings/slots", "", nil)
	var slots []string
	require.NoError(t, json.Unmarshal(out.Data, &slots))
	assert.Contains(t, slots, "9:00 AM")
}

func TestAssessmentEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)

	_, out := env.do(t, http.MethodGet, "/api/assessment/questions", "", nil)
	var questions []domain.Question
	require.NoError(t, json.Unmarshal(out.Data, &questions))
	require.Len(t, questions, 5)

	_, out = env.do(t, http.MethodPost, "/api/assessment/score",
		`{"data_usage":"advanced","tech_infrastructure":"cutting_edge","digital_processes":"over_75","team_skills":"excellent","growth_challenges":"competitive_edge"}`, nil)
	var result domain.AssessmentResult
	require.NoError(t, json.Unmarshal(out.Data, &result))
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, domain.TierLeader, result.Level)

	resp, _ := env.do(t, http.MethodPost, "/api/assessments",
		`{"dataUsage":"advanced","techInfrastructure":"cutting_edge","digitalProcesses":"over_75","teamSkills":"excellent","growthChallenges":"competitive_edge","score":100,"level":"Digital Leader"}`, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, out = env.do(t, http.MethodPost, "/api/assessments",
		`{"dataUsage":"advanced","techInfrastructure":"cutting_edge","digitalProcesses":"over_75","teamSkills":"excellent","growthChallenges":"competitive_edge","score":100,"level":"Guru"}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "level", out.Errors[0].Field)
}

func TestContentEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.content.Reload(context.Background())
	require.NoError(t, err)

	_, out := env.do(t, http.MethodGet, "/api/testimonials/featured", "", nil)
	var featured []domain.Testimonial
	require.NoError(t, json.Unmarshal(out.Data, &featured))
	require.Len(t, featured, 3)

	resp, out := env.do(t, http.MethodGet, "/api/testimonials/"+featured[0].ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var one domain.Testimonial
	require.NoError(t, json.Unmarshal(out.Data, &one))
	assert.Equal(t, featured[0].Name, one.Name)

	resp, _ = env.do(t, http.MethodGet, "/api/testimonials/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = env.do(t, http.MethodGet, "/api/case-studies/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	post := `{"title":"Hello","slug":"hello","excerpt":"e","content":"c","category":"News","readTime":3,"published":true}`
	resp, _ = env.do(t, http.MethodPost, "/api/blog", post, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, out = env.do(t, http.MethodPost, "/api/blog", post, admin())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created domain.BlogPost
	require.NoError(t, json.Unmarshal(out.Data, &created))

	_, out = env.do(t, http.MethodGet, "/api/blog/published", "", nil)
	var published []domain.BlogPost
	require.NoError(t, json.Unmarshal(out.Data, &published))
	require.Len(t, published, 7)
	assert.Equal(t, created.ID, published[0].ID, "freshly stamped post is newest")

	_, out = env.do(t, http.MethodGet, "/api/case-studies/featured", "", nil)
	var studies []domain.CaseStudy
	require.NoError(t, json.Unmarshal(out.Data, &studies))
	assert.Len(t, studies, 3)

	resp, _ = env.do(t, http.MethodGet, "/api/blog/"+created.ID, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, out = env.do(t, http.MethodPost, "/api/content/reload", "", admin())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"testimonials":0,"caseStudies":0,"blogPosts":0}`, string(out.Data))
}

func TestHealthAndCORS(t *testing.T) {
	env := newTestEnv(t, nil)
	resp, out := env.do(t, http.MethodGet, "/api/health", "", map[string]string{"Origin": "https://site.example"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, out.Success)
	assert.Contains(t, out.Message, "API is running")
	assert.Equal(t, "https://site.example", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, _ = env.do(t, http.MethodOptions, "/api/contacts", "", map[string]string{
		"Origin":                        "https://site.example",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/health", "", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

type denyAfter struct{ left int }

func (d *denyAfter) Allow(context.Context, string) (bool, error) {
	d.left--
	return d.left >= 0, nil
}

func TestSubmissionsAreRateLimited(t *testing.T) {
	env := newTestEnv(t, &denyAfter{left: 1})
	body := `{"name":"Ada","email":"ada@example.com"}`

	resp, _ := env.do(t, http.MethodPost, "/api/contacts", body, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, out := env.do(t, http.MethodPost, "/api/contacts", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.False(t, out.Success)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))

	resp, _ = env.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "reads are not limited")
}
