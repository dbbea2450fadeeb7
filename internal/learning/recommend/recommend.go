// Package recommend scores catalog lessons against a learner's stated
// preferences and the tags of lessons they already finished.
package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/tutor-backend/internal/domain"
)

const (
	DefaultLimit = 3
	MaxLimit     = 50

	WeightSubject      = 0.3
	WeightDifficulty   = 0.2
	WeightStepUp       = 0.1
	PenaltyTwoStepsUp  = -0.2
	WeightRecent       = 0.1
	WeightPerCommonTag = 0.1
	MaxCommonTags      = 3
	RecentWindow       = 30 * 24 * time.Hour
	DefaultReason      = "New content you might enjoy"
	reasonSeparator    = "; "
)

// Preferences are the learner's stated choices. An empty Difficulty means
// beginner.
type Preferences struct {
	Subjects   []string
	Difficulty string
}

// Input carries everything the scorer needs besides the candidates.
type Input struct {
	Preferences Preferences
	// Completed holds lesson ids that must never be recommended.
	Completed map[uuid.UUID]struct{}
	// StudiedTags is the union of tags of the completed lessons.
	StudiedTags map[string]struct{}
	Now         time.Time
}

type Result struct {
	LessonID        uuid.UUID `json:"lesson_id"`
	Title           string    `json:"title"`
	Subject         string    `json:"subject"`
	Topic           string    `json:"topic"`
	Difficulty      string    `json:"difficulty"`
	DurationMinutes int       `json:"duration_minutes"`
	Tags            []string  `json:"tags"`
	RelevanceScore  float64   `json:"relevance_score"`
	Reason          string    `json:"recommendation_reason"`
}

// ClampLimit applies the default and the upper bound.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Score returns the unrounded relevance of l and the reasons that fired, in
// rule order.
func Score(l *types.Lesson, in Input) (float64, []string) {
	if l == nil {
		return 0, nil
	}
	var (
		score   float64
		reasons []string
	)

	for _, s := range in.Preferences.Subjects {
		if s != "" && s == l.Subject {
			score += WeightSubject
			reasons = append(reasons, "Matches your preferred subject: "+l.Subject)
			break
		}
	}

	pref := preferredDifficulty(in.Preferences.Difficulty)
	lessonDiff := l.NormalizedDifficulty()
	switch {
	case lessonDiff == pref:
		score += WeightDifficulty
		reasons = append(reasons, "Matches your preferred difficulty level: "+pref)
	case oneStepUp(pref, lessonDiff):
		score += WeightStepUp
		reasons = append(reasons, "Slightly more advanced than your preference")
	case pref == types.DifficultyBeginner && lessonDiff == types.DifficultyAdvanced:
		score += PenaltyTwoStepsUp
	}

	if !l.CreatedAt.IsZero() && !in.Now.IsZero() && in.Now.Sub(l.CreatedAt) < RecentWindow {
		score += WeightRecent
		reasons = append(reasons, "Recently added content")
	}

	if common := CommonTags(l.TagList(), in.StudiedTags); len(common) > 0 {
		n := len(common)
		if n > MaxCommonTags {
			n = MaxCommonTags
		}
		score += WeightPerCommonTag * float64(n)
		reasons = append(reasons, fmt.Sprintf("Related to topics you've studied: %s", strings.Join(common[:n], ", ")))
	}

	return score, reasons
}

// Rank scores every uncompleted candidate and returns the best limit of them.
// Equal scores keep the candidates' input order.
func Rank(candidates []*types.Lesson, in Input, limit int) []Result {
	limit = ClampLimit(limit)
	out := make([]Result, 0, len(candidates))
	for _, l := range candidates {
		if l == nil {
			continue
		}
		if _, done := in.Completed[l.ID]; done {
			continue
		}
		score, reasons := Score(l, in)
		reason := DefaultReason
		if len(reasons) > 0 {
			reason = strings.Join(reasons, reasonSeparator)
		}
		tags := l.TagList()
		if tags == nil {
			tags = []string{}
		}
		out = append(out, Result{
			LessonID:        l.ID,
			Title:           l.Title,
			Subject:         l.Subject,
			Topic:           l.Topic,
			Difficulty:      l.NormalizedDifficulty(),
			DurationMinutes: l.DurationMinutes,
			Tags:            tags,
			RelevanceScore:  Round2(score),
			Reason:          reason,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CommonTags returns the sorted intersection of tags and studied.
func CommonTags(tags []string, studied map[string]struct{}) []string {
	if len(studied) == 0 || len(tags) == 0 {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, t := range tags {
		if _, ok := studied[t]; ok && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// TagUnion collects the tags of lessons into a set.
func TagUnion(lessons []*types.Lesson) map[string]struct{} {
	out := map[string]struct{}{}
	for _, l := range lessons {
		if l == nil {
			continue
		}
		for _, t := range l.TagList() {
			out[t] = struct{}{}
		}
	}
	return out
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func preferredDifficulty(d string) string {
	if norm, ok := types.NormalizeDifficulty(d); ok {
		return norm
	}
	return types.DifficultyBeginner
}

func oneStepUp(pref, lesson string) bool {
	return (pref == types.DifficultyBeginner && lesson == types.DifficultyIntermediate) ||
		(pref == types.DifficultyIntermediate && lesson == types.DifficultyAdvanced)
}
