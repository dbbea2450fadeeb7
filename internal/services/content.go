package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/learning/prompts"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
	"github.com/yungbote/tutor-backend/internal/platform/llm"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

const (
	MinLessonMinutes = 5
	MaxLessonMinutes = 120
	// maxExcerptSections bounds how much lesson content rides along with a question.
	maxExcerptSections = 12
)

type LessonRequest struct {
	Subject           string `json:"subject" binding:"required"`
	Topic             string `json:"topic" binding:"required"`
	Difficulty        string `json:"difficulty" binding:"required"`
	DurationMinutes   int    `json:"duration_minutes" binding:"required"`
	ExtraInstructions string `json:"additional_instructions,omitempty"`
}

// Normalize trims fields, lowercases difficulty and rejects out-of-range input.
func (r *LessonRequest) Normalize() error {
	r.Subject = strings.TrimSpace(r.Subject)
	r.Topic = strings.TrimSpace(r.Topic)
	r.ExtraInstructions = strings.TrimSpace(r.ExtraInstructions)
	if len(r.Subject) < 2 || len(r.Subject) > 50 {
		return apperr.Invalid("subject must be 2-50 characters")
	}
	if len(r.Topic) < 2 || len(r.Topic) > 100 {
		return apperr.Invalid("topic must be 2-100 characters")
	}
	d, ok := types.NormalizeDifficulty(r.Difficulty)
	if !ok {
		return apperr.Invalid("difficulty must be one of: beginner, intermediate, advanced")
	}
	r.Difficulty = d
	if r.DurationMinutes < MinLessonMinutes || r.DurationMinutes > MaxLessonMinutes {
		return apperr.Invalid("duration_minutes must be between %d and %d", MinLessonMinutes, MaxLessonMinutes)
	}
	return nil
}

type GeneratedLesson struct {
	Title     string                `json:"title"`
	Summary   string                `json:"summary"`
	Content   []types.LessonSection `json:"content"`
	Exercises json.RawMessage       `json:"exercises"`
	Resources json.RawMessage       `json:"resources"`
	Tags      []string              `json:"tags"`
}

type AnswerRequest struct {
	Question string
	Context  string
	Sections []types.LessonSection
}

type GeneratedAnswer struct {
	Answer     string            `json:"answer"`
	References []types.Reference `json:"references"`
}

// ContentService turns prompts into validated structured content. Every
// failure is a GenerationError; nothing is retried here.
type ContentService interface {
	GenerateLesson(ctx context.Context, req LessonRequest) (*GeneratedLesson, error)
	GenerateAnswer(ctx context.Context, req AnswerRequest) (*GeneratedAnswer, error)
}

type contentService struct {
	log      *logger.Logger
	provider llm.Provider
}

func NewContentService(log *logger.Logger, provider llm.Provider) ContentService {
	return &contentService{log: log.With("service", "ContentService"), provider: provider}
}

func (s *contentService) GenerateLesson(ctx context.Context, req LessonRequest) (*GeneratedLesson, error) {
	const op = "generate_lesson"
	p, err := prompts.Build(prompts.PromptLesson, prompts.Input{
		Subject:           req.Subject,
		Topic:             req.Topic,
		Difficulty:        req.Difficulty,
		DurationMinutes:   req.DurationMinutes,
		ExtraInstructions: req.ExtraInstructions,
	})
	if err != nil {
		return nil, apperr.Invalid("%v", err)
	}
	var out GeneratedLesson
	if err := s.generate(ctx, op, p, &out); err != nil {
		return nil, err
	}
	for i := range out.Content {
		if out.Content[i].Order == 0 {
			out.Content[i].Order = i + 1
		}
		if out.Content[i].Type == "" {
			out.Content[i].Type = "text"
		}
	}
	return &out, nil
}

func (s *contentService) GenerateAnswer(ctx context.Context, req AnswerRequest) (*GeneratedAnswer, error) {
	const op = "generate_answer"
	p, err := prompts.Build(prompts.PromptAnswer, prompts.Input{
		Question:      req.Question,
		Context:       req.Context,
		LessonExcerpt: LessonExcerpt(req.Sections),
	})
	if err != nil {
		return nil, apperr.Invalid("%v", err)
	}
	var out GeneratedAnswer
	if err := s.generate(ctx, op, p, &out); err != nil {
		return nil, err
	}
	if out.References == nil {
		out.References = []types.Reference{}
	}
	return &out, nil
}

func (s *contentService) generate(ctx context.Context, op string, p prompts.Prompt, dst any) error {
	if s.provider == nil {
		return apperr.Generation(op, fmt.Errorf("no llm provider configured"), false)
	}
	req := llm.UserPrompt(p.System, p.User)
	req.Schema = &llm.Schema{Name: p.SchemaName, Definition: p.Schema}

	resp, err := s.provider.Generate(llm.WithOperation(ctx, op), req)
	if err != nil {
		s.log.Warn("generation failed", "op", op, "prompt_version", p.Version, "error", err)
		return llm.AsGenerationError(op, err)
	}
	if err := json.Unmarshal(resp.Content, dst); err != nil {
		return llm.AsGenerationError(op, &llm.ErrInvalidResponse{Content: resp.Content, Err: err})
	}
	s.log.Debug("generation succeeded", "op", op, "model", resp.Model, "output_tokens", resp.Usage.OutputTokens)
	return nil
}

// LessonExcerpt renders sections as "--- title ---" blocks for the answer prompt.
func LessonExcerpt(sections []types.LessonSection) string {
	if len(sections) == 0 {
		return ""
	}
	if len(sections) > maxExcerptSections {
		sections = sections[:maxExcerptSections]
	}
	var b strings.Builder
	for _, sec := range sections {
		title := strings.TrimSpace(sec.Title)
		if title == "" {
			title = "Untitled Section"
		}
		fmt.Fprintf(&b, "--- %s ---\n%s\n\n", title, strings.TrimSpace(sec.Content))
	}
	return strings.TrimSpace(b.String())
}
