package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"leadgen-service/internal/domain"
)

// Content kinds stored in site_content.kind.
const (
	KindTestimonial = "testimonial"
	KindCaseStudy   = "case_study"
	KindBlogPost    = "blog_post"
)

// ContentLoader reads and writes site content kept as JSONB in Postgres.
type ContentLoader struct {
	pool *pgxpool.Pool
}

func NewContentLoader(pool *pgxpool.Pool) *ContentLoader {
	return &ContentLoader{pool: pool}
}

func (l *ContentLoader) LoadContent(ctx context.Context) (domain.ContentSeed, error) {
	rows, err := l.pool.Query(ctx, `SELECT kind, data FROM site_content ORDER BY created_at, id`)
	if err != nil {
		return domain.ContentSeed{}, fmt.Errorf("query content: %w", err)
	}
	defer rows.Close()

	var seed domain.ContentSeed
	for rows.Next() {
		var (
			kind string
			raw  []byte
		)
		if err := rows.Scan(&kind, &raw); err != nil {
			return domain.ContentSeed{}, fmt.Errorf("scan content: %w", err)
		}
		if err := appendContent(&seed, kind, raw); err != nil {
			return domain.ContentSeed{}, err
		}
	}
	if err := rows.Err(); err != nil {
		return domain.ContentSeed{}, fmt.Errorf("iterate content: %w", err)
	}
	return seed, nil
}

func appendContent(seed *domain.ContentSeed, kind string, raw []byte) error {
	switch kind {
	case KindTestimonial:
		var t domain.Testimonial
		if err := json.Unmarshal(raw, &t); err != nil {
			return fmt.Errorf("unmarshal testimonial: %w", err)
		}
		seed.Testimonials = append(seed.Testimonials, t)
	case KindCaseStudy:
		var cs domain.CaseStudy
		if err := json.Unmarshal(raw, &cs); err != nil {
			return fmt.Errorf("unmarshal case study: %w", err)
		}
		seed.CaseStudies = append(seed.CaseStudies, cs)
	case KindBlogPost:
		var p domain.BlogPost
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("unmarshal blog post: %w", err)
		}
		seed.BlogPosts = append(seed.BlogPosts, p)
	default:
		return fmt.Errorf("unknown content kind %q", kind)
	}
	return nil
}

// Publish upserts a seed. Rows are keyed by kind plus slug (or author and
// company for testimonials) so publishing the same file twice is a no-op.
func (l *ContentLoader) Publish(ctx context.Context, seed domain.ContentSeed) (int, error) {
	batch := &pgx.Batch{}
	queue := func(kind, key string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", kind, err)
		}
		batch.Queue(`INSERT INTO site_content (id, kind, data) VALUES ($1, $2, $3::jsonb)
ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`, kind+":"+key, kind, string(data))
		return nil
	}
	for _, t := range seed.Testimonials {
		if err := queue(KindTestimonial, strings.ToLower(t.Name+"|"+t.Company), t); err != nil {
			return 0, err
		}
	}
	for _, cs := range seed.CaseStudies {
		if err := queue(KindCaseStudy, cs.Slug, cs); err != nil {
			return 0, err
		}
	}
	for _, p := range seed.BlogPosts {
		if err := queue(KindBlogPost, p.Slug, p); err != nil {
			return 0, err
		}
	}
	if batch.Len() == 0 {
		return 0, nil
	}

	results := l.pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return i, fmt.Errorf("publish content row %d: %w", i, err)
		}
	}
	return batch.Len(), nil
}
