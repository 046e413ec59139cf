package domain

import "time"

// BookingSelection is the wizard state built up across steps.
type BookingSelection struct {
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Company          string    `json:"company"`
	Role             string    `json:"role"`
	BusinessType     string    `json:"businessType"`
	Challenges       []string  `json:"challenges"`
	Priority         string    `json:"priority"`
	Timeline         string    `json:"timeline"`
	SelectedDate     time.Time `json:"selectedDate"`
	SelectedTimeSlot string    `json:"selectedTimeSlot"`
}

// HasChallenge reports whether tag is among the selected challenges.
func (s BookingSelection) HasChallenge(tag string) bool {
	for _, c := range s.Challenges {
		if c == tag {
			return true
		}
	}
	return false
}

// Scheduled reports whether both a date and a time slot are chosen.
func (s BookingSelection) Scheduled() bool {
	return !s.SelectedDate.IsZero() && s.SelectedTimeSlot != ""
}

// Recommendation is the suggested consultation for a selection.
type Recommendation struct {
	Type        string `json:"type"`
	Minutes     int    `json:"minutes"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
	Preparation string `json:"preparation"`
}
