package prompts

type PromptName string

const (
	PromptLesson PromptName = "lesson"
	PromptAnswer PromptName = "answer"
)
