package prompts

import (
	"strings"
	"testing"
)

func TestBuildLessonPrompt(t *testing.T) {
	p, err := Build(PromptLesson, Input{Subject: "Physics", Topic: "Optics", Difficulty: "beginner", DurationMinutes: 30})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(p.System, "specialized in Physics") || !strings.Contains(p.User, "beginner level lesson on Optics") {
		t.Fatalf("unexpected render:\n%s\n%s", p.System, p.User)
	}
	if strings.Contains(p.System, "Additional instructions") {
		t.Fatalf("empty instructions should not render")
	}
	if p.SchemaName != "lesson" || p.Schema["type"] != "object" {
		t.Fatalf("schema not attached: %v", p.Schema)
	}

	withExtra, err := Build(PromptLesson, Input{Subject: "Physics", Topic: "Optics", Difficulty: "beginner", DurationMinutes: 30, ExtraInstructions: "use lasers"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(withExtra.System, "Additional instructions: use lasers") {
		t.Fatalf("instructions missing: %s", withExtra.System)
	}
	if withExtra.Fingerprint() == p.Fingerprint() {
		t.Fatalf("fingerprint should follow the rendered text")
	}
}

func TestBuildValidatesInput(t *testing.T) {
	if _, err := Build(PromptLesson, Input{Subject: "Physics", Topic: "Optics", Difficulty: "beginner"}); err == nil {
		t.Fatalf("expected duration error")
	}
	if _, err := Build(PromptAnswer, Input{Question: "  "}); err == nil {
		t.Fatalf("expected question error")
	}
	if _, err := Build("nope", Input{}); err == nil {
		t.Fatalf("expected unknown prompt error")
	}
}

func TestBuildAnswerPromptSections(t *testing.T) {
	p, err := Build(PromptAnswer, Input{Question: "What is light?", LessonExcerpt: "--- Waves ---\nLight is a wave."})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.HasPrefix(p.User, "User question: What is light?") {
		t.Fatalf("user prompt: %q", p.User)
	}
	if strings.Contains(p.User, "Additional context") || !strings.Contains(p.User, "Relevant lesson content:\n--- Waves ---") {
		t.Fatalf("user prompt sections: %q", p.User)
	}
}

func TestMakeTemplateRejectsBadSpecs(t *testing.T) {
	for _, s := range []Spec{
		{Version: 1, SchemaName: "x", Schema: AnswerSchema},
		{Name: "x", SchemaName: "x", Schema: AnswerSchema},
		{Name: "x", Version: 1, Schema: AnswerSchema},
		{Name: "x", Version: 1, SchemaName: "x"},
		{Name: "x", Version: 1, SchemaName: "x", Schema: AnswerSchema, System: "{{.Nope"},
	} {
		if _, err := MakeTemplate(s); err == nil {
			t.Fatalf("expected error for %+v", s)
		}
	}
}
