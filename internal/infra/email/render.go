package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"leadgen-service/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Message is a rendered email ready for a Sender.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Renderer turns notifications into email bodies. HTML bodies are escaped
// by html/template, so submitted text cannot inject markup.
type Renderer struct {
	site string
	text *texttemplate.Template
	html *htmltemplate.Template
}

type view struct {
	Site       string
	Contact    *domain.Contact
	Booking    *domain.Booking
	Assessment *domain.AssessmentRecord
}

func NewRenderer(site string) (*Renderer, error) {
	funcs := map[string]any{
		"join": strings.Join,
		"date": func(t time.Time) string { return t.Format("Monday, January 2, 2006") },
	}
	text, err := texttemplate.New("text").Funcs(funcs).ParseFS(templateFS, "templates/*.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}
	html, err := htmltemplate.New("html").Funcs(funcs).ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	return &Renderer{site: site, text: text, html: html}, nil
}

// Render fills Subject, Text, HTML and ReplyTo. From and To are left to the caller.
func (r *Renderer) Render(n domain.Notification) (Message, error) {
	v := view{Site: r.site, Contact: n.Contact, Booking: n.Booking, Assessment: n.Assessment}
	var msg Message
	switch n.Kind {
	case domain.NotifyContact:
		if n.Contact == nil {
			return Message{}, fmt.Errorf("contact notification without payload")
		}
		msg.Subject = fmt.Sprintf("New Contact: %s - %s", n.Contact.Name, or(n.Contact.Service, "General Inquiry"))
		msg.ReplyTo = n.Contact.Email
	case domain.NotifyBooking:
		if n.Booking == nil {
			return Message{}, fmt.Errorf("booking notification without payload")
		}
		msg.Subject = fmt.Sprintf("New Booking: %s with %s on %s at %s",
			n.Booking.ConsultationType, n.Booking.Company, n.Booking.SelectedDate.Format(time.DateOnly), n.Booking.SelectedTimeSlot)
		msg.ReplyTo = n.Booking.Email
	case domain.NotifyAssessment:
		if n.Assessment == nil {
			return Message{}, fmt.Errorf("assessment notification without payload")
		}
		msg.Subject = fmt.Sprintf("New Assessment: %s (%d%%)", n.Assessment.Level, n.Assessment.Score)
		msg.ReplyTo = n.Assessment.Email
	default:
		return Message{}, fmt.Errorf("unknown notification kind %q", n.Kind)
	}

	name := string(n.Kind)
	var buf bytes.Buffer
	if err := r.text.ExecuteTemplate(&buf, name+".txt.tmpl", v); err != nil {
		return Message{}, fmt.Errorf("render %s text: %w", name, err)
	}
	msg.Text = buf.String()
	buf.Reset()
	if err := r.html.ExecuteTemplate(&buf, name+".html.tmpl", v); err != nil {
		return Message{}, fmt.Errorf("render %s html: %w", name, err)
	}
	msg.HTML = buf.String()
	return msg, nil
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
