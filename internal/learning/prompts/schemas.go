package prompts

// LessonSchema is the shape of a generated lesson.
func LessonSchema() map[string]any {
	section := ObjectSchema(map[string]any{
		"title":   StringSchema(),
		"content": StringSchema(),
		"order":   IntSchema(),
		"type":    StringSchema(),
	}, "title", "content")
	exercise := ObjectSchema(map[string]any{
		"question":       StringSchema(),
		"options":        StringArraySchema(),
		"correct_answer": StringSchema(),
		"explanation":    StringSchema(),
		"difficulty":     StringSchema(),
	}, "question", "correct_answer")
	resource := ObjectSchema(map[string]any{
		"title":       StringSchema(),
		"url":         StringSchema(),
		"type":        StringSchema(),
		"description": StringSchema(),
	}, "title")

	content := ArrayOf(section)
	content["minItems"] = 1
	title := StringSchema()
	title["minLength"] = 1

	return ObjectSchema(map[string]any{
		"title":     title,
		"summary":   StringSchema(),
		"content":   content,
		"exercises": ArrayOf(exercise),
		"resources": ArrayOf(resource),
		"tags":      StringArraySchema(),
	}, "title", "summary", "content", "exercises", "resources", "tags")
}

// AnswerSchema is the shape of an answer to a learner's question.
func AnswerSchema() map[string]any {
	reference := ObjectSchema(map[string]any{
		"title":  StringSchema(),
		"source": StringSchema(),
		"url":    StringSchema(),
	}, "title")
	answer := StringSchema()
	answer["minLength"] = 1
	return ObjectSchema(map[string]any{
		"answer":     answer,
		"references": ArrayOf(reference),
	}, "answer", "references")
}
