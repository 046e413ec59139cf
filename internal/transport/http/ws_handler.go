package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"leadgen-service/internal/app"
	"leadgen-service/internal/domain"
)

// WSHandler runs the interactive assessment and booking flows. Each
// connection owns its own QuizWalk or BookingWizard; nothing is shared
// between connections until the final submission hits the service.
type WSHandler struct {
	service  *app.SubmissionService
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewWSHandler(service *app.SubmissionService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId"`
}

type resultPayload struct {
	Answers domain.AnswerSet        `json:"answers"`
	Result  domain.AssessmentResult `json:"result"`
}

type contactPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
}

type togglePayload struct {
	Challenge string `json:"challenge"`
	Checked   bool   `json:"checked"`
}

type schedulePayload struct {
	Date     string `json:"date"`
	TimeSlot string `json:"timeSlot"`
}

type wizardState struct {
	Step           int                     `json:"step"`
	CanProceed     bool                    `json:"canProceed"`
	Selection      domain.BookingSelection `json:"selection"`
	Recommendation domain.Recommendation   `json:"recommendation"`
}

// session pairs a connection with its single writer goroutine so reads and
// writes never race on the socket.
type session struct {
	conn       *websocket.Conn
	send       chan outboundMessage[any]
	writerDone chan struct{}
}

func (h *WSHandler) open(w http.ResponseWriter, r *http.Request) (*session, bool) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return nil, false
	}
	conn.SetReadLimit(maxBodyBytes)
	s := &session{
		conn:       conn,
		send:       make(chan outboundMessage[any], 16),
		writerDone: make(chan struct{}),
	}
	go func() {
		defer close(s.writerDone)
		for msg := range s.send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()
	return s, true
}

func (s *session) emit(typ string, payload any) {
	select {
	case s.send <- outboundMessage[any]{Type: typ, Payload: payload}:
	case <-s.writerDone:
	}
}

func (s *session) fail(err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		s.emit("error", errorPayload{Message: "Invalid data", Errors: verr.Fields})
		return
	}
	s.emit("error", errorPayload{Message: err.Error()})
}

func (s *session) close() {
	close(s.send)
	<-s.writerDone
	s.conn.Close()
}

// ServeAssessment walks a client through the question bank one question at
// a time, then scores and optionally saves the result.
func (h *WSHandler) ServeAssessment(w http.ResponseWriter, r *http.Request) {
	s, ok := h.open(w, r)
	if !ok {
		return
	}
	defer s.close()

	walk := app.NewQuizWalk(h.service.Questions())
	s.emit("question", walk.Progress())

	for {
		var inbound inboundMessage
		if err := s.conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				s.emit("error", errorPayload{Message: "invalid answer payload"})
				continue
			}
			done, err := walk.Answer(payload.QuestionID, payload.OptionID)
			if err != nil {
				s.fail(err)
				continue
			}
			if done {
				s.emit("result", resultPayload{Answers: walk.Answers(), Result: walk.Result()})
				continue
			}
			s.emit("question", walk.Progress())
		case "back":
			walk.Back()
			s.emit("question", walk.Progress())
		case "restart":
			walk.Restart()
			s.emit("question", walk.Progress())
		case "save":
			if !walk.Done() {
				s.emit("error", errorPayload{Message: "assessment is not complete"})
				continue
			}
			var payload contactPayload
			if len(inbound.Payload) > 0 {
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					s.emit("error", errorPayload{Message: "invalid save payload"})
					continue
				}
			}
			in := app.AssessmentInputFrom(walk.Answers(), walk.Result())
			in.Name, in.Email, in.Company = payload.Name, payload.Email, payload.Company
			record, err := h.service.SubmitAssessment(r.Context(), in)
			if err != nil {
				s.fail(err)
				continue
			}
			s.emit("saved", record)
		default:
			s.emit("error", errorPayload{Message: "unsupported message type"})
		}
	}
}

// ServeBooking drives the booking wizard. Every edit is answered with the
// wizard state, including the live consultation recommendation.
func (h *WSHandler) ServeBooking(w http.ResponseWriter, r *http.Request) {
	s, ok := h.open(w, r)
	if !ok {
		return
	}
	defer s.close()

	wizard := h.service.Wizard()
	state := func() wizardState {
		return wizardState{
			Step:           wizard.Step(),
			CanProceed:     wizard.CanProceed(),
			Selection:      wizard.Selection(),
			Recommendation: wizard.Recommendation(),
		}
	}
	s.emit("state", state())

	for {
		var inbound inboundMessage
		if err := s.conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "update":
			var u app.WizardUpdate
			if err := json.Unmarshal(inbound.Payload, &u); err != nil {
				s.emit("error", errorPayload{Message: "invalid update payload"})
				continue
			}
			wizard.Update(u)
		case "toggle":
			var payload togglePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Challenge == "" {
				s.emit("error", errorPayload{Message: "invalid toggle payload"})
				continue
			}
			wizard.ToggleChallenge(payload.Challenge, payload.Checked)
		case "schedule":
			var payload schedulePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				s.emit("error", errorPayload{Message: "invalid schedule payload"})
				continue
			}
			date, err := h.service.ParseDate(payload.Date)
			if err == nil {
				err = wizard.Schedule(date, payload.TimeSlot)
			}
			if err != nil {
				s.fail(err)
				continue
			}
		case "next":
			if err := wizard.Next(); err != nil {
				s.fail(err)
				continue
			}
		case "back":
			wizard.Back()
		case "submit":
			if wizard.Step() != app.StepReview {
				s.fail(domain.ErrIncompleteStep)
				continue
			}
			booking, err := h.service.SubmitBooking(r.Context(), wizard.Input())
			if err != nil {
				s.fail(err)
				continue
			}
			s.emit("booked", booking)
			continue
		default:
			s.emit("error", errorPayload{Message: "unsupported message type"})
			continue
		}
		s.emit("state", state())
	}
}
