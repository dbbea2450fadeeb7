// Package catalog loads the starter lesson catalog from YAML.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	types "github.com/yungbote/tutor-backend/internal/domain"
)

//go:embed lessons.yaml
var defaultCatalog string

// namespace derives stable lesson ids from slugs.
var namespace = uuid.MustParse("4b1c3e8a-6f0d-5a3e-9c52-7d1f0a6e2b94")

type file struct {
	Lessons []entry `yaml:"lessons"`
}

type entry struct {
	Slug            string           `yaml:"slug"`
	Subject         string           `yaml:"subject"`
	Topic           string           `yaml:"topic"`
	Title           string           `yaml:"title"`
	Difficulty      string           `yaml:"difficulty"`
	DurationMinutes int              `yaml:"duration_minutes"`
	Summary         string           `yaml:"summary"`
	Tags            []string         `yaml:"tags"`
	Content         []section        `yaml:"content"`
	Exercises       []map[string]any `yaml:"exercises"`
	Resources       []map[string]any `yaml:"resources"`
}

type section struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
	Type    string `yaml:"type"`
}

// LessonID is the id a slug is stored under.
func LessonID(slug string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(strings.ToLower(strings.TrimSpace(slug))))
}

// Default returns the embedded starter catalog.
func Default() ([]*types.Lesson, error) {
	return Load(strings.NewReader(defaultCatalog))
}

// Load parses a catalog document. Entries without a slug or title, or with an
// unknown difficulty, fail the whole load.
func Load(r io.Reader) ([]*types.Lesson, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	out := make([]*types.Lesson, 0, len(f.Lessons))
	seen := map[string]bool{}
	for i, e := range f.Lessons {
		l, err := e.lesson()
		if err != nil {
			return nil, fmt.Errorf("lesson %d (%s): %w", i, e.Slug, err)
		}
		if seen[e.Slug] {
			return nil, fmt.Errorf("lesson %d: duplicate slug %q", i, e.Slug)
		}
		seen[e.Slug] = true
		out = append(out, l)
	}
	return out, nil
}

func (e entry) lesson() (*types.Lesson, error) {
	if strings.TrimSpace(e.Slug) == "" || strings.TrimSpace(e.Title) == "" {
		return nil, fmt.Errorf("slug and title are required")
	}
	difficulty, ok := types.NormalizeDifficulty(e.Difficulty)
	if !ok {
		return nil, fmt.Errorf("unknown difficulty %q", e.Difficulty)
	}
	sections := make([]types.LessonSection, 0, len(e.Content))
	for i, s := range e.Content {
		typ := s.Type
		if typ == "" {
			typ = "text"
		}
		sections = append(sections, types.LessonSection{Title: s.Title, Content: strings.TrimSpace(s.Content), Order: i + 1, Type: typ})
	}
	l := &types.Lesson{
		ID:              LessonID(e.Slug),
		Subject:         strings.TrimSpace(e.Subject),
		Topic:           strings.TrimSpace(e.Topic),
		Title:           strings.TrimSpace(e.Title),
		Difficulty:      difficulty,
		DurationMinutes: e.DurationMinutes,
		Summary:         strings.TrimSpace(e.Summary),
	}
	l.SetTags(e.Tags)
	var err error
	if l.Content, err = toJSON(sections); err != nil {
		return nil, err
	}
	if l.Exercises, err = toJSON(orEmpty(e.Exercises)); err != nil {
		return nil, err
	}
	if l.Resources, err = toJSON(orEmpty(e.Resources)); err != nil {
		return nil, err
	}
	return l, nil
}

func orEmpty(v []map[string]any) []map[string]any {
	if v == nil {
		return []map[string]any{}
	}
	return v
}

func toJSON(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
