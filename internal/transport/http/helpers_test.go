package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadgen-service/internal/app"
	"leadgen-service/internal/infra/memory"
)

// Wednesday; the next day is a bookable Thursday.
var testNow = time.Date(2030, 1, 9, 10, 0, 0, 0, time.UTC)

const testAdminToken = "let-me-in"

type testEnv struct {
	server  *httptest.Server
	store   *memory.RecordStore
	queue   *memory.NotificationQueue
	content *app.ContentService
}

func newTestEnv(t *testing.T, limiter Limiter) *testEnv {
	t.Helper()
	store := memory.NewRecordStore()
	queue := memory.NewNotificationQueue(32)
	submissions := app.NewSubmissionService(store, queue, nil,
		app.WithClock(func() time.Time { return testNow }),
		app.WithLocation(time.UTC))
	content := app.NewContentService(store, memory.NewStaticContentLoader(memory.SampleContent()), nil)

	mux := http.NewServeMux()
	var limit func(http.Handler) http.Handler
	if limiter != nil {
		limit = RateLimit(limiter, nil, nil)
	}
	NewAPIHandler(submissions, content, nil, WithAdminToken(testAdminToken)).Register(mux, limit)
	ws := NewWSHandler(submissions, nil)
	mux.HandleFunc("GET /ws/assessment", ws.ServeAssessment)
	mux.HandleFunc("GET /ws/booking", ws.ServeBooking)

	handler := Chain(mux, RequestID(), AccessLog(nil), SecureHeaders(), CORS([]string{"https://site.example"}))
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &testEnv{server: server, store: store, queue: queue, content: content}
}
