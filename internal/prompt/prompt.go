// Package prompt renders relation prompt templates, optionally prefixed with
// in-context demonstrations.
package prompt

import (
	"strings"

	"github.com/danmackay/relation-probe/go-sweep/internal/dataset"
)

// Placeholder is the subject slot inside a prompt template.
const Placeholder = "{}"

// #region render

// Render fills the template's subject slot.
func Render(template, subject string) string {
	return strings.ReplaceAll(template, Placeholder, subject)
}

// RenderWithExamples builds the full prompt for one subject: one completed
// demonstration line per in-context example, then the query line with the
// bare subject. With no examples it is equivalent to Render.
func RenderWithExamples(template, subject string, examples []dataset.Sample) string {
	if len(examples) == 0 {
		return Render(template, subject)
	}

	var b strings.Builder
	for _, ex := range examples {
		b.WriteString(Render(template, ex.Subject))
		b.WriteString(" ")
		b.WriteString(ex.Object)
		b.WriteString("\n")
	}
	b.WriteString(Render(template, subject))
	return b.String()
}

// #endregion render
