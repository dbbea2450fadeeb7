package prompts

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// Spec declares a prompt. System and User are text/template sources rendered
// against Input; missing fields render as their zero value.
type Spec struct {
	Name       PromptName
	Version    int
	SchemaName string
	Schema     func() map[string]any
	System     string
	User       string
	Validators []Validator
}

func (s Spec) check() error {
	switch {
	case strings.TrimSpace(string(s.Name)) == "":
		return errors.New("missing prompt name")
	case s.Version <= 0:
		return fmt.Errorf("%s: version must be positive", s.Name)
	case strings.TrimSpace(s.SchemaName) == "" || s.Schema == nil:
		return fmt.Errorf("%s: schema name and schema are required", s.Name)
	}
	return nil
}

// MakeTemplate parses both templates of s and returns the compiled form.
func MakeTemplate(s Spec) (Template, error) {
	if err := s.check(); err != nil {
		return Template{}, err
	}
	system, err := compile(s.Name, "system", s.System)
	if err != nil {
		return Template{}, err
	}
	user, err := compile(s.Name, "user", s.User)
	if err != nil {
		return Template{}, err
	}
	return Template{
		Name:       s.Name,
		Version:    s.Version,
		SchemaName: s.SchemaName,
		Schema:     s.Schema,
		System:     system,
		User:       user,
		Validate:   allOf(s.Validators),
	}, nil
}

func compile(name PromptName, part, src string) (func(Input) string, error) {
	t, err := template.New(part).Option("missingkey=zero").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%s %s template: %w", name, part, err)
	}
	return func(in Input) string {
		var b strings.Builder
		if err := t.Execute(&b, in); err != nil {
			return ""
		}
		return strings.TrimSpace(b.String())
	}, nil
}

func allOf(vs []Validator) Validator {
	if len(vs) == 0 {
		return nil
	}
	return func(in Input) error {
		for _, v := range vs {
			if v == nil {
				continue
			}
			if err := v(in); err != nil {
				return err
			}
		}
		return nil
	}
}

// RegisterSpec compiles s and adds it to the registry. A malformed spec is a
// programming error and panics.
func RegisterSpec(s Spec) {
	t, err := MakeTemplate(s)
	if err != nil {
		panic(err)
	}
	Register(t)
}
