// Package mailaddr derives display and company names from raw email
// addresses. All functions are best-effort text munging over arbitrary
// input; they never fail and degrade to the empty string.
package mailaddr

import (
	"regexp"
	"strings"
)

var legalSuffixPattern = regexp.MustCompile(`(?i)\b(Com|Net|Org|Inc|Ltd|Llc)\b`)

// Domain returns the part after the first @, or "" when the input has none.
func Domain(email string) string {
	_, domain, ok := strings.Cut(email, "@")
	if !ok {
		return ""
	}
	return domain
}

// DisplayName turns the local part into a readable name: dots and
// underscores become spaces and each word is capitalized.
// "john.doe@x.com" -> "John Doe".
func DisplayName(email string) string {
	local, _, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return ""
	}
	local = strings.NewReplacer(".", " ", "_", " ").Replace(local)
	words := strings.Split(local, " ")
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// CompanyName guesses a company name from the domain's first label:
// strips a leading www., turns hyphens and underscores into spaces,
// title-cases each word, and drops standalone legal-suffix tokens.
// "info@www.acme-corp.io" -> "Acme Corp". The suffix strip is knowingly
// aggressive and can eat a real word that matches a token.
func CompanyName(email string) string {
	domain := Domain(email)
	if domain == "" {
		return ""
	}
	domain = strings.TrimPrefix(domain, "www.")
	label, _, _ := strings.Cut(domain, ".")
	label = strings.NewReplacer("-", " ", "_", " ").Replace(label)

	words := strings.Split(label, " ")
	for i, w := range words {
		words[i] = titleCase(w)
	}
	name := strings.Join(words, " ")

	name = legalSuffixPattern.ReplaceAllString(name, "")
	return strings.TrimSpace(strings.Join(strings.Fields(name), " "))
}

// capitalize uppercases the first byte only, leaving the rest untouched.
func capitalize(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

// titleCase uppercases the first byte and lowercases the remainder.
func titleCase(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}
