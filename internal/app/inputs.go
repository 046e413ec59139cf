package app

import (
	"time"

	"leadgen-service/internal/domain"
)

// ContactInput is the contact form payload.
type ContactInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Email       string `json:"email" validate:"required,email"`
	Company     string `json:"company" validate:"max=200"`
	Service     string `json:"service" validate:"max=100"`
	Description string `json:"description" validate:"max=5000"`
}

func (in ContactInput) contact() domain.Contact {
	return domain.Contact{
		Name:        in.Name,
		Email:       in.Email,
		Company:     in.Company,
		Service:     in.Service,
		Description: in.Description,
	}
}

// BookingInput is the booking wizard payload. ConsultationType and Duration
// are filled from the recommender when left empty.
type BookingInput struct {
	Name             string   `json:"name" validate:"required,max=200"`
	Email            string   `json:"email" validate:"required,email"`
	Company          string   `json:"company" validate:"required,max=200"`
	Role             string   `json:"role" validate:"required,max=200"`
	BusinessType     string   `json:"businessType" validate:"required"`
	Challenges       []string `json:"challenges" validate:"required,min=1,dive,required"`
	Priority         string   `json:"priority" validate:"required"`
	Timeline         string   `json:"timeline" validate:"required"`
	ConsultationType string   `json:"consultationType"`
	Duration         string   `json:"duration"`
	SelectedDate     string   `json:"selectedDate" validate:"required"`
	SelectedTimeSlot string   `json:"selectedTimeSlot" validate:"required,timeslot"`
}

func (in BookingInput) selection(date time.Time) domain.BookingSelection {
	return domain.BookingSelection{
		Name:             in.Name,
		Email:            in.Email,
		Company:          in.Company,
		Role:             in.Role,
		BusinessType:     in.BusinessType,
		Challenges:       dedupe(in.Challenges),
		Priority:         in.Priority,
		Timeline:         in.Timeline,
		SelectedDate:     date,
		SelectedTimeSlot: in.SelectedTimeSlot,
	}
}

// AssessmentInput is the saved assessment payload.
type AssessmentInput struct {
	Name               string `json:"name" validate:"max=200"`
	Email              string `json:"email" validate:"omitempty,email"`
	Company            string `json:"company" validate:"max=200"`
	DataUsage          string `json:"dataUsage" validate:"required"`
	TechInfrastructure string `json:"techInfrastructure" validate:"required"`
	DigitalProcesses   string `json:"digitalProcesses" validate:"required"`
	TeamSkills         string `json:"teamSkills" validate:"required"`
	GrowthChallenges   string `json:"growthChallenges" validate:"required"`
	Score              int    `json:"score" validate:"min=0,max=100"`
	Level              string `json:"level" validate:"required,tier"`
}

// Answers maps the stored answer fields back onto question IDs.
func (in AssessmentInput) Answers() domain.AnswerSet {
	return domain.AnswerSet{
		QuestionDataUsage:          in.DataUsage,
		QuestionTechInfrastructure: in.TechInfrastructure,
		QuestionDigitalProcesses:   in.DigitalProcesses,
		QuestionTeamSkills:         in.TeamSkills,
		QuestionGrowthChallenges:   in.GrowthChallenges,
	}
}

// AssessmentInputFrom builds a submission from a scored answer set.
func AssessmentInputFrom(answers domain.AnswerSet, result domain.AssessmentResult) AssessmentInput {
	return AssessmentInput{
		DataUsage:          answers[QuestionDataUsage],
		TechInfrastructure: answers[QuestionTechInfrastructure],
		DigitalProcesses:   answers[QuestionDigitalProcesses],
		TeamSkills:         answers[QuestionTeamSkills],
		GrowthChallenges:   answers[QuestionGrowthChallenges],
		Score:              result.Score,
		Level:              string(result.Level),
	}
}

func (in AssessmentInput) record() domain.AssessmentRecord {
	return domain.AssessmentRecord{
		Name:               in.Name,
		Email:              in.Email,
		Company:            in.Company,
		DataUsage:          in.DataUsage,
		TechInfrastructure: in.TechInfrastructure,
		DigitalProcesses:   in.DigitalProcesses,
		TeamSkills:         in.TeamSkills,
		GrowthChallenges:   in.GrowthChallenges,
		Score:              in.Score,
		Level:              in.Level,
	}
}

// TestimonialInput creates a testimonial.
type TestimonialInput struct {
	Name     string `json:"name" validate:"required"`
	Position string `json:"position" validate:"required"`
	Company  string `json:"company" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
	Featured bool   `json:"featured"`
}

func (in TestimonialInput) testimonial() domain.Testimonial {
	return domain.Testimonial{
		Name:     in.Name,
		Position: in.Position,
		Company:  in.Company,
		Content:  in.Content,
		Rating:   in.Rating,
		ImageURL: in.ImageURL,
		Featured: in.Featured,
	}
}

// CaseStudyInput creates a case study.
type CaseStudyInput struct {
	Title     string `json:"title" validate:"required"`
	Slug      string `json:"slug" validate:"required,slug"`
	Client    string `json:"client" validate:"required"`
	Industry  string `json:"industry" validate:"required"`
	Service   string `json:"service" validate:"required"`
	Challenge string `json:"challenge" validate:"required"`
	Solution  string `json:"solution" validate:"required"`
	Results   string `json:"results" validate:"required"`
	Timeline  string `json:"timeline" validate:"required"`
	ROI       string `json:"roi"`
	ImageURL  string `json:"imageUrl" validate:"omitempty,url"`
	Featured  bool   `json:"featured"`
}

func (in CaseStudyInput) caseStudy() domain.CaseStudy {
	return domain.CaseStudy{
		Title:     in.Title,
		Slug:      in.Slug,
		Client:    in.Client,
		Industry:  in.Industry,
		Service:   in.Service,
		Challenge: in.Challenge,
		Solution:  in.Solution,
		Results:   in.Results,
		Timeline:  in.Timeline,
		ROI:       in.ROI,
		ImageURL:  in.ImageURL,
		Featured:  in.Featured,
	}
}

// BlogPostInput creates a blog post.
type BlogPostInput struct {
	Title       string     `json:"title" validate:"required"`
	Slug        string     `json:"slug" validate:"required,slug"`
	Excerpt     string     `json:"excerpt" validate:"required"`
	Content     string     `json:"content" validate:"required"`
	Category    string     `json:"category" validate:"required"`
	ReadTime    int        `json:"readTime" validate:"min=1"`
	ImageURL    string     `json:"imageUrl" validate:"omitempty,url"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"publishedAt"`
}

func (in BlogPostInput) blogPost() domain.BlogPost {
	return domain.BlogPost{
		Title:       in.Title,
		Slug:        in.Slug,
		Excerpt:     in.Excerpt,
		Content:     in.Content,
		Category:    in.Category,
		ReadTime:    in.ReadTime,
		ImageURL:    in.ImageURL,
		Published:   in.Published,
		PublishedAt: in.PublishedAt,
	}
}
