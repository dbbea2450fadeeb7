package catalog

import (
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	lessons, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(lessons) != 3 {
		t.Fatalf("expected 3 lessons, got %d", len(lessons))
	}
	py := lessons[0]
	if py.ID != LessonID("python-fundamentals") || py.Difficulty != "beginner" {
		t.Fatalf("unexpected first lesson: %+v", py)
	}
	secs := py.Sections()
	if len(secs) != 4 || secs[0].Order != 1 || secs[3].Title != "Functions" || secs[0].Type != "text" {
		t.Fatalf("unexpected sections: %+v", secs)
	}
	if tags := py.TagList(); len(tags) != 4 || tags[0] != "python" {
		t.Fatalf("unexpected tags: %v", tags)
	}
}

func TestLessonIDIsStable(t *testing.T) {
	if LessonID("react-web-dev") != LessonID(" React-Web-Dev ") {
		t.Fatalf("slug ids should ignore case and surrounding space")
	}
}

func TestLoadRejectsBadEntries(t *testing.T) {
	cases := map[string]string{
		"unknown difficulty": "lessons:\n  - slug: a\n    title: A\n    difficulty: expert\n",
		"missing title":      "lessons:\n  - slug: a\n    difficulty: beginner\n",
		"duplicate slug":     "lessons:\n  - slug: a\n    title: A\n    difficulty: beginner\n  - slug: a\n    title: B\n    difficulty: beginner\n",
		"unknown field":      "lessons:\n  - slug: a\n    title: A\n    difficulty: beginner\n    level: 3\n",
	}
	for name, doc := range cases {
		if _, err := Load(strings.NewReader(doc)); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}
