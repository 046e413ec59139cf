package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"leadgen-service/internal/domain"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestNotificationQueueRoundTrip(t *testing.T) {
	mr, client := newClient(t)
	q := NewNotificationQueue(client, "")
	ctx := context.Background()

	first := domain.Notification{Kind: domain.NotifyContact, Contact: &domain.Contact{Name: "Ada", Email: "ada@example.com"}}
	second := domain.Notification{Kind: domain.NotifyAssessment, Assessment: &domain.AssessmentRecord{Score: 80}}
	if err := q.Enqueue(ctx, first); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Enqueue(ctx, second); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if !mr.Exists("leadgen:notifications") {
		t.Fatalf("expected list key to exist")
	}
	if n, _ := q.Len(ctx); n != 2 {
		t.Fatalf("expected 2 queued, got %d", n)
	}

	got, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if got.Kind != domain.NotifyContact || got.Contact == nil || got.Contact.Name != "Ada" {
		t.Fatalf("expected FIFO order, got %+v", got)
	}
	got, err = q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if got.Assessment == nil || got.Assessment.Score != 80 {
		t.Fatalf("unexpected second notification %+v", got)
	}
}

func TestNotificationQueueDequeueHonorsCancel(t *testing.T) {
	_, client := newClient(t)
	q := NewNotificationQueue(client, "test:queue")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, err := q.Dequeue(ctx); err == nil {
		t.Fatalf("expected error on an empty queue after cancel")
	}
}

func TestRateLimiterFixedWindow(t *testing.T) {
	_, client := newClient(t)
	l := NewRateLimiter(client, 2)
	now := time.Date(2030, 1, 9, 10, 0, 5, 0, time.UTC)
	l.clock = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		if err != nil || !ok {
			t.Fatalf("request %d should pass: ok=%v err=%v", i, ok, err)
		}
	}
	if ok, _ := l.Allow(ctx, "1.2.3.4"); ok {
		t.Fatalf("third request in the window should be limited")
	}
	if ok, _ := l.Allow(ctx, "5.6.7.8"); !ok {
		t.Fatalf("other keys have their own budget")
	}

	now = now.Add(time.Minute)
	if ok, _ := l.Allow(ctx, "1.2.3.4"); !ok {
		t.Fatalf("next window should reset the budget")
	}
}

type countingLoader struct {
	seed  domain.ContentSeed
	calls int
}

func (l *countingLoader) LoadContent(context.Context) (domain.ContentSeed, error) {
	l.calls++
	return l.seed, nil
}

func TestContentCacheFillsAndServesFromRedis(t *testing.T) {
	mr, client := newClient(t)
	loader := &countingLoader{seed: domain.ContentSeed{
		CaseStudies: []domain.CaseStudy{{Title: "Energy", Slug: "energy", Featured: true}},
	}}
	cache := NewContentCache(client, loader, time.Minute)
	ctx := context.Background()

	seed, err := cache.LoadContent(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loader.calls != 1 || len(seed.CaseStudies) != 1 {
		t.Fatalf("expected one load, got calls=%d seed=%+v", loader.calls, seed)
	}
	if !mr.Exists(defaultContentKey) {
		t.Fatalf("expected cache key to be set")
	}
	if ttl := mr.TTL(defaultContentKey); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	// A second instance sharing the same Redis never touches the loader.
	other := NewContentCache(client, loader, time.Minute)
	seed, err = other.LoadContent(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loader.calls != 1 || seed.CaseStudies[0].Slug != "energy" {
		t.Fatalf("expected cache hit, calls=%d", loader.calls)
	}

	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = cache.LoadContent(ctx)
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, calls=%d", loader.calls)
	}
}
