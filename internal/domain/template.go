package domain

import "fmt"

// Template is an outreach email template. Subject and body may contain
// bracketed placeholders of the form [Placeholder Name].
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// builtinTemplates is the catalog shipped with the service.
var builtinTemplates = []Template{
	{
		ID:      "cold-email-1",
		Name:    "Cold Email",
		Subject: "AI-powered development partnership for [Recipient's Company]",
		Body: `Hi [Recipient],

AI is doing what used to take full dev teams. It's cutting build time and cost fast.

I saw your open roles and really liked what you're building at [Recipient's Company]. Your work in the [industry] space is particularly impressive. I work directly with product-led teams as a hands-on partner, and I've helped teams ship production-ready products 75% faster without adding headcount.

The way I work with my team is built for speed. We use AI across the stack to cut dev time, reduce cost, and ship clean, production-grade products fast.

Here's where I can plug into [Recipient's Company]:

    Design: [design_focus]

    Software Development: [dev_focus]

    AI Integration: [ai_focus]

I've attached a quick deck with examples. Let's connect if this sounds useful.

Best,
[Your Name]`,
	},
	{
		ID:      "intro-email-1",
		Name:    "Warm Introduction",
		Subject: "Quick idea for [Recipient's Company]",
		Body: `Hi [Recipient],

I came across [Recipient's Company] while researching teams doing standout work in [industry]. [Insert a line about their product, vision] - that caught my attention.

We partner with companies on [specific achievement or aspect of their business], and I think there's a concrete way we could help, particularly around:

    [design_focus]

    [dev_focus]

Would a short call next week make sense?

Best,
[Your Name]
[Your Company]`,
	},
}

// Templates returns a copy of the built-in template catalog.
func Templates() []Template {
	out := make([]Template, len(builtinTemplates))
	copy(out, builtinTemplates)
	return out
}

// TemplateByID resolves a catalog template.
func TemplateByID(id string) (*Template, error) {
	for i := range builtinTemplates {
		if builtinTemplates[i].ID == id {
			t := builtinTemplates[i]
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: template %q", ErrNotFound, id)
}
