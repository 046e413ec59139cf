package domain

import "time"

// Meta is the store-assigned identity embedded in every persisted entity.
type Meta struct {
	ID        string    `json:"id" yaml:"-"`
	CreatedAt time.Time `json:"createdAt" yaml:"-"`
}

// Key returns the record identifier.
func (m Meta) Key() string { return m.ID }

// Created returns the insertion timestamp.
func (m Meta) Created() time.Time { return m.CreatedAt }

// Stamp assigns identity at insertion time.
func (m *Meta) Stamp(id string, at time.Time) {
	m.ID = id
	m.CreatedAt = at
}

// Contact is a contact form submission.
type Contact struct {
	Meta        `yaml:",inline"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Company     string `json:"company,omitempty"`
	Service     string `json:"service,omitempty"`
	Description string `json:"description,omitempty"`
}

// Booking is a finalized consultation booking from the wizard.
type Booking struct {
	Meta             `yaml:",inline"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Company          string    `json:"company"`
	Role             string    `json:"role"`
	BusinessType     string    `json:"businessType"`
	Challenges       []string  `json:"challenges"`
	Priority         string    `json:"priority"`
	Timeline         string    `json:"timeline"`
	ConsultationType string    `json:"consultationType"`
	Duration         string    `json:"duration"`
	SelectedDate     time.Time `json:"selectedDate"`
	SelectedTimeSlot string    `json:"selectedTimeSlot"`
	Status           string    `json:"status"`
}

// BookingStatusConfirmed is the status every new booking starts in.
const BookingStatusConfirmed = "confirmed"

// AssessmentRecord is a saved assessment outcome with its raw answers.
type AssessmentRecord struct {
	Meta               `yaml:",inline"`
	Name               string `json:"name,omitempty"`
	Email              string `json:"email,omitempty"`
	Company            string `json:"company,omitempty"`
	DataUsage          string `json:"dataUsage"`
	TechInfrastructure string `json:"techInfrastructure"`
	DigitalProcesses   string `json:"digitalProcesses"`
	TeamSkills         string `json:"teamSkills"`
	GrowthChallenges   string `json:"growthChallenges"`
	Score              int    `json:"score"`
	Level              string `json:"level"`
}

// Testimonial is a client quote shown on the site.
type Testimonial struct {
	Meta     `yaml:",inline"`
	Name     string `json:"name" yaml:"name"`
	Position string `json:"position" yaml:"position"`
	Company  string `json:"company" yaml:"company"`
	Content  string `json:"content" yaml:"content"`
	Rating   int    `json:"rating" yaml:"rating"`
	ImageURL string `json:"imageUrl,omitempty" yaml:"imageUrl"`
	Featured bool   `json:"featured" yaml:"featured"`
}

// CaseStudy describes a past engagement.
type CaseStudy struct {
	Meta      `yaml:",inline"`
	Title     string `json:"title" yaml:"title"`
	Slug      string `json:"slug" yaml:"slug"`
	Client    string `json:"client" yaml:"client"`
	Industry  string `json:"industry" yaml:"industry"`
	Service   string `json:"service" yaml:"service"`
	Challenge string `json:"challenge" yaml:"challenge"`
	Solution  string `json:"solution" yaml:"solution"`
	Results   string `json:"results" yaml:"results"`
	Timeline  string `json:"timeline" yaml:"timeline"`
	ROI       string `json:"roi,omitempty" yaml:"roi"`
	ImageURL  string `json:"imageUrl,omitempty" yaml:"imageUrl"`
	Featured  bool   `json:"featured" yaml:"featured"`
}

// BlogPost is an article; only published posts are public.
type BlogPost struct {
	Meta        `yaml:",inline"`
	Title       string     `json:"title" yaml:"title"`
	Slug        string     `json:"slug" yaml:"slug"`
	Excerpt     string     `json:"excerpt" yaml:"excerpt"`
	Content     string     `json:"content" yaml:"content"`
	Category    string     `json:"category" yaml:"category"`
	ReadTime    int        `json:"readTime" yaml:"readTime"`
	ImageURL    string     `json:"imageUrl,omitempty" yaml:"imageUrl"`
	Published   bool       `json:"published" yaml:"published"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" yaml:"publishedAt"`
	UpdatedAt   time.Time  `json:"updatedAt" yaml:"-"`
}

// ContentSeed is a batch of site content pulled from a content source.
type ContentSeed struct {
	Testimonials []Testimonial `json:"testimonials" yaml:"testimonials"`
	CaseStudies  []CaseStudy   `json:"caseStudies" yaml:"caseStudies"`
	BlogPosts    []BlogPost    `json:"blogPosts" yaml:"blogPosts"`
}

// NotificationKind names the submission that triggered a notification.
type NotificationKind string

const (
	NotifyContact    NotificationKind = "contact"
	NotifyBooking    NotificationKind = "booking"
	NotifyAssessment NotificationKind = "assessment"
)

// Notification is queued after a submission is stored. Exactly one of the
// payload pointers is set, matching Kind.
type Notification struct {
	Kind       NotificationKind  `json:"kind"`
	QueuedAt   time.Time         `json:"queuedAt"`
	Contact    *Contact          `json:"contact,omitempty"`
	Booking    *Booking          `json:"booking,omitempty"`
	Assessment *AssessmentRecord `json:"assessment,omitempty"`
}
