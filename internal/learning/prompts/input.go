package prompts

// Input is the union of fields any prompt renders. Missing fields render
// empty (templates use missingkey=zero).
type Input struct {
	// Lesson generation
	Subject           string
	Topic             string
	Difficulty        string
	DurationMinutes   int
	ExtraInstructions string
	// Answering
	Question      string
	Context       string
	LessonExcerpt string
}
