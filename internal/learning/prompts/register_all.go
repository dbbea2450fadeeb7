package prompts

// RegisterAll registers every prompt. Build calls it once on first use.
func RegisterAll() {
	RegisterSpec(Spec{
		Name:       PromptLesson,
		Version:    1,
		SchemaName: "lesson",
		Schema:     LessonSchema,
		System: `
You are an expert educational content creator specialized in {{.Subject}}.
Create a comprehensive, engaging lesson on {{.Topic}} for {{.Difficulty}} level students that takes about {{.DurationMinutes}} minutes to complete.

Provide:
1. An engaging title
2. A brief overview/summary
3. 3-7 content sections, each with title, content, order (starting at 1) and type ("text")
4. 2-5 exercises or quiz questions with options, correct_answer, explanation and difficulty
5. Additional resources for further learning (title, url if any, type, description)
6. Relevant lowercase tags for categorization
{{if .ExtraInstructions}}
Additional instructions: {{.ExtraInstructions}}
{{end}}
Return JSON only.`,
		User: `
Create a {{.Difficulty}} level lesson on {{.Topic}} in {{.Subject}} that takes about {{.DurationMinutes}} minutes to complete.`,
		Validators: []Validator{
			RequireNonEmpty("Subject", func(in Input) string { return in.Subject }),
			RequireNonEmpty("Topic", func(in Input) string { return in.Topic }),
			RequireNonEmpty("Difficulty", func(in Input) string { return in.Difficulty }),
			RequirePositive("DurationMinutes", func(in Input) int { return in.DurationMinutes }),
		},
	})

	RegisterSpec(Spec{
		Name:       PromptAnswer,
		Version:    1,
		SchemaName: "answer",
		Schema:     AnswerSchema,
		System: `
You are an AI tutor assistant giving helpful, accurate and educational answers to student questions.
Answers must be clear and concise, factually accurate, and encourage further learning.
When you rely on specific sources or reference material, list them under references (title, source, url if any).
Return JSON only.`,
		User: `
User question: {{.Question}}
{{if .Context}}
Additional context: {{.Context}}
{{end}}{{if .LessonExcerpt}}
Relevant lesson content:
{{.LessonExcerpt}}
{{end}}`,
		Validators: []Validator{
			RequireNonEmpty("Question", func(in Input) string { return in.Question }),
		},
	})
}
