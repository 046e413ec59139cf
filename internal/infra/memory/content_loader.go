package memory

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"leadgen-service/internal/domain"
)

// StaticContentLoader is a simple loader backed by an in-memory seed (useful for tests/demos).
type StaticContentLoader struct {
	seed domain.ContentSeed
}

func NewStaticContentLoader(seed domain.ContentSeed) *StaticContentLoader {
	return &StaticContentLoader{seed: seed}
}

func (l *StaticContentLoader) LoadContent(_ context.Context) (domain.ContentSeed, error) {
	return l.seed, nil
}

// FileContentLoader reads a YAML content file on every load so edits are
// picked up by a reload.
type FileContentLoader struct {
	path string
}

func NewFileContentLoader(path string) *FileContentLoader {
	return &FileContentLoader{path: path}
}

func (l *FileContentLoader) LoadContent(ctx context.Context) (domain.ContentSeed, error) {
	if err := ctx.Err(); err != nil {
		return domain.ContentSeed{}, err
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return domain.ContentSeed{}, fmt.Errorf("read content file: %w", err)
	}
	var seed domain.ContentSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return domain.ContentSeed{}, fmt.Errorf("parse content file %s: %w", l.path, err)
	}
	return seed, nil
}

//go:embed sample_content.yaml
var sampleContent []byte

// SampleContent is the built-in fallback when no content source is
// configured: featured testimonials, case studies and published posts. Each
// call returns a fresh copy.
func SampleContent() domain.ContentSeed {
	var seed domain.ContentSeed
	if err := yaml.Unmarshal(sampleContent, &seed); err != nil {
		panic(fmt.Sprintf("parse embedded sample content: %v", err))
	}
	return seed
}
