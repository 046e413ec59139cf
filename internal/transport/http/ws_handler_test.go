package http

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"leadgen-service/internal/app"
	"leadgen-service/internal/domain"
)

func (e *testEnv) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(e.server.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// readNext reads one message and decodes its payload into out when given.
func readNext(t *testing.T, conn *websocket.Conn, expect string, out any) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read (want %s): %v", expect, err)
	}
	if msg.Type != expect {
		t.Fatalf("expected %s, got %s: %s", expect, msg.Type, msg.Payload)
	}
	if out != nil {
		if err := json.Unmarshal(msg.Payload, out); err != nil {
			t.Fatalf("decode %s payload: %v", expect, err)
		}
	}
}

func TestWebSocketAssessmentFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	conn := env.dial(t, "/ws/assessment")

	var progress domain.QuizProgress
	readNext(t, conn, "question", &progress)
	if progress.Index != 0 || progress.Total != 5 {
		t.Fatalf("unexpected first question: %+v", progress)
	}

	// Unknown option is rejected without advancing.
	send(t, conn, "answer", map[string]string{"questionId": progress.Question.ID, "optionId": "nope"})
	readNext(t, conn, "error", nil)

	for i := 0; i < progress.Total; i++ {
		if i > 0 {
			readNext(t, conn, "question", &progress)
		}
		if progress.Index != i {
			t.Fatalf("expected question %d, got %d", i, progress.Index)
		}
		// The second option weighs 2 on every question: 10/20 is 50%.
		q := progress.Question
		send(t, conn, "answer", map[string]string{"questionId": q.ID, "optionId": q.Options[1].ID})
	}

	var result struct {
		Answers domain.AnswerSet        `json:"answers"`
		Result  domain.AssessmentResult `json:"result"`
	}
	readNext(t, conn, "result", &result)
	if len(result.Answers) != 5 {
		t.Fatalf("expected 5 answers, got %d", len(result.Answers))
	}
	if result.Result.Score != 50 || result.Result.Level != domain.TierDeveloping {
		t.Fatalf("unexpected result: %+v", result.Result)
	}

	send(t, conn, "save", map[string]string{"name": "Ada", "email": "ada@example.com"})
	var record domain.AssessmentRecord
	readNext(t, conn, "saved", &record)
	if record.ID == "" || record.Score != 50 || record.Level != string(domain.TierDeveloping) {
		t.Fatalf("unexpected record: %+v", record)
	}
	if got := len(env.store.Assessments()); got != 1 {
		t.Fatalf("expected one stored assessment, got %d", got)
	}
	if env.queue.Len() != 1 {
		t.Fatalf("expected one queued notification, got %d", env.queue.Len())
	}
}

func TestWebSocketAssessmentSaveBeforeDone(t *testing.T) {
	env := newTestEnv(t, nil)
	conn := env.dial(t, "/ws/assessment")
	readNext(t, conn, "question", nil)

	send(t, conn, "save", nil)
	var payload errorPayload
	readNext(t, conn, "error", &payload)
	if payload.Message != "assessment is not complete" {
		t.Fatalf("unexpected error: %q", payload.Message)
	}

	send(t, conn, "dance", nil)
	readNext(t, conn, "error", nil)
}

func TestWebSocketBookingFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	conn := env.dial(t, "/ws/booking")

	var state wizardState
	readNext(t, conn, "state", &state)
	if state.Step != app.StepContact || state.CanProceed {
		t.Fatalf("unexpected initial state: %+v", state)
	}

	send(t, conn, "next", nil)
	readNext(t, conn, "error", nil)

	send(t, conn, "update", map[string]string{
		"name": "Ada", "email": "ada@example.com", "company": "Acme", "role": "CTO",
	})
	readNext(t, conn, "state", &state)
	if !state.CanProceed {
		t.Fatalf("contact step should be complete: %+v", state.Selection)
	}
	send(t, conn, "next", nil)
	readNext(t, conn, "state", &state)

	send(t, conn, "update", map[string]string{"businessType": "Healthcare"})
	readNext(t, conn, "state", &state)
	send(t, conn, "toggle", map[string]any{"challenge": "data", "checked": true})
	readNext(t, conn, "state", &state)
	if state.Recommendation.Type != "Technical Assessment" {
		t.Fatalf("expected live technical recommendation, got %q", state.Recommendation.Type)
	}
	send(t, conn, "toggle", map[string]any{"challenge": "data", "checked": false})
	readNext(t, conn, "state", &state)
	if state.CanProceed || state.Recommendation.Type != "General Discovery Call" {
		t.Fatalf("unchecking the last challenge should block the step: %+v", state)
	}
	send(t, conn, "toggle", map[string]any{"challenge": "growth", "checked": true})
	readNext(t, conn, "state", &state)
	send(t, conn, "next", nil)
	readNext(t, conn, "state", &state)

	send(t, conn, "update", map[string]string{"priority": "high", "timeline": "this_quarter"})
	readNext(t, conn, "state", &state)
	send(t, conn, "next", nil)
	readNext(t, conn, "state", &state)
	if state.Step != app.StepSchedule {
		t.Fatalf("expected schedule step, got %d", state.Step)
	}

	// Saturday.
	send(t, conn, "schedule", map[string]string{"date": "2030-01-12", "timeSlot": "9:00 AM"})
	var failure errorPayload
	readNext(t, conn, "error", &failure)
	if len(failure.Errors) != 1 || failure.Errors[0].Rule != "weekday" {
		t.Fatalf("expected weekday rejection, got %+v", failure)
	}

	send(t, conn, "schedule", map[string]string{"date": "2030-01-10", "timeSlot": "2:00 PM"})
	readNext(t, conn, "state", &state)
	send(t, conn, "next", nil)
	readNext(t, conn, "state", &state)
	if state.Step != app.StepReview {
		t.Fatalf("expected review step, got %d", state.Step)
	}

	send(t, conn, "submit", nil)
	var booking domain.Booking
	readNext(t, conn, "booked", &booking)
	if booking.ConsultationType != "Business Process Review" || booking.Duration != "45 minutes" {
		t.Fatalf("unexpected consultation: %q %q", booking.ConsultationType, booking.Duration)
	}
	if booking.SelectedTimeSlot != "2:00 PM" || booking.Status != domain.BookingStatusConfirmed {
		t.Fatalf("unexpected booking: %+v", booking)
	}
	if got := len(env.store.Bookings()); got != 1 {
		t.Fatalf("expected one stored booking, got %d", got)
	}
}
