package report

import (
	"fmt"
	"strings"

	"statement_analyzer/pkg/core/utils"
)

// SetNarrative attaches model-written commentary to the report after
// stripping code fences and checking it still parses as markdown.
// Broken narrative is dropped with a warning instead of reaching the
// typesetter.
func (r *Report) SetNarrative(raw string) {
	cleaned := utils.CleanMarkdown(raw)
	if cleaned == "" {
		return
	}
	if !utils.ValidateMarkdown(cleaned) {
		r.Warnings = append(r.Warnings, "narrative discarded: not valid markdown")
		return
	}
	r.Narrative = cleaned
}

// RenderLaTeX produces a complete LaTeX document for the report. Cell
// text is escaped at assembly time, so this only lays out structure.
func (r *Report) RenderLaTeX() string {
	var b strings.Builder

	b.WriteString("\\documentclass[11pt]{article}\n")
	b.WriteString("\\usepackage[margin=2.5cm]{geometry}\n")
	b.WriteString("\\usepackage{booktabs}\n")
	b.WriteString("\\usepackage{longtable}\n")
	b.WriteString("\\begin{document}\n\n")

	fmt.Fprintf(&b, "\\section*{%s}\n", r.Title)
	fmt.Fprintf(&b, "\\noindent Generated %s\n\n", r.GeneratedAt.Format("2 January 2006"))

	for _, t := range r.Statements {
		writeTable(&b, t)
	}
	for _, t := range r.RatioTables {
		writeTable(&b, t)
	}
	if r.Comparison != nil {
		writeTable(&b, *r.Comparison)
	}

	if r.Narrative != "" {
		b.WriteString("\\subsection*{Commentary}\n")
		// Narrative is markdown prose; escape it as plain text and
		// let paragraph breaks survive.
		for _, para := range strings.Split(r.Narrative, "\n\n") {
			b.WriteString(EscapeLaTeX(para))
			b.WriteString("\n\n")
		}
	}

	b.WriteString("\\end{document}\n")
	return b.String()
}

func writeTable(b *strings.Builder, t Table) {
	fmt.Fprintf(b, "\\subsection*{%s}\n", t.Title)
	cols := strings.Repeat("l", len(t.Header))
	fmt.Fprintf(b, "\\begin{longtable}{%s}\n\\toprule\n", cols)
	b.WriteString(strings.Join(t.Header, " & "))
	b.WriteString(" \\\\\n\\midrule\n")
	for _, row := range t.Rows {
		b.WriteString(strings.Join(row, " & "))
		b.WriteString(" \\\\\n")
	}
	b.WriteString("\\bottomrule\n\\end{longtable}\n\n")
}
