package placeholder

import (
	"strings"
	"testing"
)

func TestApplySkipsEmptyValues(t *testing.T) {
	t.Parallel()

	text := "Hello [Recipient], welcome to [Recipient's Company]."
	got := Apply(text, Pass{
		{Name: "Recipient", Value: ""},
		{Name: "Recipient's Company", Value: "Globex"},
	})

	want := "Hello [Recipient], welcome to Globex."
	if got != want {
		t.Fatalf("Apply() = %q, want %q", got, want)
	}
}

func TestApplyReplacesAllOccurrences(t *testing.T) {
	t.Parallel()

	text := "[X] and [X] and [X]"
	got := Apply(text, Pass{{Name: "X", Value: "y"}})
	if got != "y and y and y" {
		t.Fatalf("Apply() = %q", got)
	}
}

func TestApplyIsCaseSensitive(t *testing.T) {
	t.Parallel()

	text := "[industry] vs [Industry]"
	got := Apply(text, Pass{{Name: "industry", Value: "fintech"}})
	if got != "fintech vs [Industry]" {
		t.Fatalf("Apply() = %q", got)
	}
}

func TestResolveFirstWriterWins(t *testing.T) {
	t.Parallel()

	subject, _ := Resolve("[Name]", "", []Pass{
		{{Name: "Name", Value: "first"}},
		{{Name: "Name", Value: "second"}},
	}, nil)

	if subject != "first" {
		t.Fatalf("subject = %q, want %q", subject, "first")
	}
}

func TestResolveFallbacksFillLeftovers(t *testing.T) {
	t.Parallel()

	subject, body := Resolve(
		"Hi [Recipient]",
		"From [Your Name] at [Your Company]",
		[]Pass{{{Name: "Your Name", Value: "Ada"}}},
		Pass{
			{Name: "Recipient", Value: "there"},
			{Name: "Your Name", Value: "Me"},
			{Name: "Your Company", Value: "Our Company"},
		},
	)

	if subject != "Hi there" {
		t.Fatalf("subject = %q", subject)
	}
	// "Your Name" was already filled by the main pass; the fallback must
	// not overwrite it.
	if body != "From Ada at Our Company" {
		t.Fatalf("body = %q", body)
	}
}

func TestResolveStripsEverythingBracketed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		subject string
		body    string
	}{
		{name: "unknown placeholders", subject: "[Mystery] intro", body: "line [one] and [two, with punctuation!]"},
		{name: "empty value map", subject: "[A][B][C]", body: "[long placeholder name with spaces]"},
		{name: "no placeholders at all", subject: "plain", body: "text"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			subject, body := Resolve(tt.subject, tt.body, nil, nil)
			if strings.Contains(subject, "[") || strings.Contains(body, "[") {
				t.Fatalf("resolved output still contains brackets: subject=%q body=%q", subject, body)
			}
		})
	}
}

func TestResolveIdempotentOnCleanText(t *testing.T) {
	t.Parallel()

	passes := []Pass{{{Name: "Recipient", Value: "Jo"}}}
	fallbacks := Pass{{Name: "Your Name", Value: "Me"}}

	subject, body := Resolve("Hi [Recipient]", "Bye [Your Name] [gone]", passes, fallbacks)
	subject2, body2 := Resolve(subject, body, passes, fallbacks)

	if subject != subject2 || body != body2 {
		t.Fatalf("second resolution changed output: %q/%q -> %q/%q", subject, body, subject2, body2)
	}
}

func TestApplyFallbacksReplacesWithEmptyValue(t *testing.T) {
	t.Parallel()

	got := ApplyFallbacks("x[Name]y", Pass{{Name: "Name", Value: ""}})
	if got != "xy" {
		t.Fatalf("ApplyFallbacks() = %q, want %q", got, "xy")
	}
}
