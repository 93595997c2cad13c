// Package placeholder substitutes bracketed [Placeholder Name] tokens in
// template text. Substitution order is the contract: earlier passes win
// because a replaced bracket no longer exists for later passes to match.
package placeholder

import (
	"regexp"
	"strings"
)

var bracketPattern = regexp.MustCompile(`\[[^\]]+\]`)

// Rule binds one placeholder name to its replacement value. The name is
// matched literally and case-sensitively inside brackets.
type Rule struct {
	Name  string
	Value string
}

// Pass is an ordered group of rules applied together.
type Pass []Rule

// Apply replaces every occurrence of [rule.Name] in text, skipping rules
// with empty values so a later pass can still fill the placeholder.
func Apply(text string, rules Pass) string {
	for _, rule := range rules {
		if rule.Value == "" {
			continue
		}
		text = strings.ReplaceAll(text, token(rule.Name), rule.Value)
	}
	return text
}

// ApplyFallbacks replaces leftover placeholders unconditionally, including
// with empty values. It is the last substitution before stripping.
func ApplyFallbacks(text string, rules Pass) string {
	for _, rule := range rules {
		text = strings.ReplaceAll(text, token(rule.Name), rule.Value)
	}
	return text
}

// Strip deletes any remaining bracketed token so resolved content never
// carries a literal placeholder.
func Strip(text string) string {
	return bracketPattern.ReplaceAllString(text, "")
}

// Resolve runs the full pipeline over a subject/body pair: the ordered
// passes, then the fallback table, then the stripping pass.
func Resolve(subject, body string, passes []Pass, fallbacks Pass) (string, string) {
	for _, pass := range passes {
		subject = Apply(subject, pass)
		body = Apply(body, pass)
	}
	subject = ApplyFallbacks(subject, fallbacks)
	body = ApplyFallbacks(body, fallbacks)
	return Strip(subject), Strip(body)
}

func token(name string) string {
	return "[" + name + "]"
}
