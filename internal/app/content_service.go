package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"leadgen-service/internal/domain"
)

// ContentStore persists the site's marketing content.
type ContentStore interface {
	CreateTestimonial(domain.Testimonial) domain.Testimonial
	CreateTestimonialIfNew(domain.Testimonial) (domain.Testimonial, bool)
	Testimonial(id string) (domain.Testimonial, bool)
	Testimonials() []domain.Testimonial
	FeaturedTestimonials() []domain.Testimonial

	CreateCaseStudy(domain.CaseStudy) domain.CaseStudy
	CreateCaseStudyIfSlugFree(domain.CaseStudy) (domain.CaseStudy, bool)
	CaseStudy(id string) (domain.CaseStudy, bool)
	CaseStudies() []domain.CaseStudy
	FeaturedCaseStudies() []domain.CaseStudy

	CreateBlogPost(domain.BlogPost) domain.BlogPost
	CreateBlogPostIfSlugFree(domain.BlogPost) (domain.BlogPost, bool)
	BlogPost(id string) (domain.BlogPost, bool)
	BlogPosts() []domain.BlogPost
	PublishedBlogPosts() []domain.BlogPost
}

// ContentLoader fetches content from a backing source (YAML file, Postgres).
type ContentLoader interface {
	LoadContent(ctx context.Context) (domain.ContentSeed, error)
}

// ImportReport counts records added by a reload.
type ImportReport struct {
	Testimonials int `json:"testimonials"`
	CaseStudies  int `json:"caseStudies"`
	BlogPosts    int `json:"blogPosts"`
}

// ContentService serves listings and imports content from its loader.
type ContentService struct {
	store     ContentStore
	loader    ContentLoader
	validator *Validator
	now       func() time.Time
	sf        singleflight.Group
	logger    *zap.Logger
}

func NewContentService(store ContentStore, loader ContentLoader, logger *zap.Logger) *ContentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{
		store:     store,
		loader:    loader,
		validator: NewValidator(),
		now:       time.Now,
		logger:    logger,
	}
}

func (s *ContentService) Testimonials(featuredOnly bool) []domain.Testimonial {
	if featuredOnly {
		return s.store.FeaturedTestimonials()
	}
	return s.store.Testimonials()
}

func (s *ContentService) CaseStudies(featuredOnly bool) []domain.CaseStudy {
	if featuredOnly {
		return s.store.FeaturedCaseStudies()
	}
	return s.store.CaseStudies()
}

func (s *ContentService) BlogPosts(publishedOnly bool) []domain.BlogPost {
	if publishedOnly {
		return s.store.PublishedBlogPosts()
	}
	return s.store.BlogPosts()
}

func (s *ContentService) Testimonial(id string) (domain.Testimonial, error) {
	t, ok := s.store.Testimonial(id)
	if !ok {
		return domain.Testimonial{}, domain.ErrNotFound
	}
	return t, nil
}

func (s *ContentService) CaseStudy(id string) (domain.CaseStudy, error) {
	cs, ok := s.store.CaseStudy(id)
	if !ok {
		return domain.CaseStudy{}, domain.ErrNotFound
	}
	return cs, nil
}

func (s *ContentService) BlogPost(id string) (domain.BlogPost, error) {
	p, ok := s.store.BlogPost(id)
	if !ok {
		return domain.BlogPost{}, domain.ErrNotFound
	}
	return p, nil
}

func (s *ContentService) CreateTestimonial(_ context.Context, in TestimonialInput) (domain.Testimonial, error) {
	if err := s.validator.Validate(in); err != nil {
		return domain.Testimonial{}, err
	}
	return s.store.CreateTestimonial(in.testimonial()), nil
}

// CreateCaseStudy rejects slugs already in use.
func (s *ContentService) CreateCaseStudy(_ context.Context, in CaseStudyInput) (domain.CaseStudy, error) {
	if err := s.validator.Validate(in); err != nil {
		return domain.CaseStudy{}, err
	}
	cs, ok := s.store.CreateCaseStudyIfSlugFree(in.caseStudy())
	if !ok {
		return domain.CaseStudy{}, errSlugTaken()
	}
	return cs, nil
}

// CreateBlogPost rejects slugs already in use and stamps the publish time of
// published posts that arrive without one.
func (s *ContentService) CreateBlogPost(_ context.Context, in BlogPostInput) (domain.BlogPost, error) {
	if err := s.validator.Validate(in); err != nil {
		return domain.BlogPost{}, err
	}
	p, ok := s.store.CreateBlogPostIfSlugFree(s.stampPublished(in.blogPost()))
	if !ok {
		return domain.BlogPost{}, errSlugTaken()
	}
	return p, nil
}

// Reload pulls content from the loader and adds records not seen before.
// Concurrent reloads share a single load.
func (s *ContentService) Reload(ctx context.Context) (ImportReport, error) {
	if s.loader == nil {
		return ImportReport{}, nil
	}
	result, err, shared := s.sf.Do("reload", func() (interface{}, error) {
		seed, err := s.loader.LoadContent(ctx)
		if err != nil {
			return ImportReport{}, fmt.Errorf("load content: %w", err)
		}
		return s.Import(seed), nil
	})
	if err != nil {
		return ImportReport{}, err
	}
	report := result.(ImportReport)
	s.logger.Info("content reloaded",
		zap.Int("testimonials", report.Testimonials),
		zap.Int("caseStudies", report.CaseStudies),
		zap.Int("blogPosts", report.BlogPosts),
		zap.Bool("shared", shared))
	return report, nil
}

// Import adds seed content. Case studies and posts are matched by slug,
// testimonials by author and company, so repeated imports add nothing.
func (s *ContentService) Import(seed domain.ContentSeed) ImportReport {
	var report ImportReport
	for _, t := range seed.Testimonials {
		if _, ok := s.store.CreateTestimonialIfNew(t); ok {
			report.Testimonials++
		}
	}
	for _, cs := range seed.CaseStudies {
		if cs.Slug == "" {
			continue
		}
		if _, ok := s.store.CreateCaseStudyIfSlugFree(cs); ok {
			report.CaseStudies++
		}
	}
	for _, p := range seed.BlogPosts {
		if p.Slug == "" {
			continue
		}
		if _, ok := s.store.CreateBlogPostIfSlugFree(s.stampPublished(p)); ok {
			report.BlogPosts++
		}
	}
	return report
}

func errSlugTaken() error {
	return domain.NewFieldError("slug", "unique", "is already in use")
}

func (s *ContentService) stampPublished(p domain.BlogPost) domain.BlogPost {
	if p.Published && p.PublishedAt == nil {
		now := s.now()
		p.PublishedAt = &now
	}
	return p
}
