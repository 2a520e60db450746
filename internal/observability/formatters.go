package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jobcoach/jobcoach/internal/countdown"
	"github.com/jobcoach/jobcoach/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer renders adapter results and countdown state for the CLI.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content. Long lines are wrapped.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		for _, wrapped := range wrap(line, boxWidth-4) {
			fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, wrapped)
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// wrap splits line on word boundaries into chunks of at most width runes,
// keeping the line's leading indentation on continuation lines.
func wrap(line string, width int) []string {
	if len([]rune(line)) <= width {
		return []string{line}
	}
	indent := line[:len(line)-len(strings.TrimLeft(line, " "))]

	var out []string
	current := ""
	for _, word := range strings.Fields(line) {
		for len([]rune(word)) > width-len(indent) {
			if current != "" {
				out = append(out, current)
				current = ""
			}
			r := []rune(word)
			out = append(out, indent+string(r[:width-len(indent)]))
			word = string(r[width-len(indent):])
		}
		switch {
		case current == "":
			current = indent + word
		case len([]rune(current))+1+len([]rune(word)) <= width:
			current += " " + word
		default:
			out = append(out, current)
			current = indent + word
		}
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}

// writeList appends a titled bullet list, showing at most maxItemsToShow items.
func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(title + ":\n")
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
	sb.WriteString("\n")
}

// PrintResult dispatches on the parsed result type. Unknown values are ignored.
func (p *Printer) PrintResult(result any) {
	switch r := result.(type) {
	case *types.SkillGapAnalysis:
		p.PrintSkillGap(r)
	case *types.ResumeOptimization:
		p.PrintResumeOptimization(r)
	case *types.CoverLetter:
		p.PrintCoverLetter(r)
	case *types.InterviewQuestions:
		p.PrintInterviewQuestions(r)
	case *types.ApplicationInsight:
		p.PrintApplicationInsight(r)
	case *types.NetworkingTip:
		p.PrintNetworkingTip(r)
	}
}

// PrintSkillGap outputs the match score and the strengths, gaps and recommendations.
func (p *Printer) PrintSkillGap(a *types.SkillGapAnalysis) {
	if a == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Match score: %.0f/100\n\n", a.MatchScore))
	writeList(&sb, "Strengths", a.Strengths)
	writeList(&sb, "Gaps", a.Gaps)
	writeList(&sb, "Recommendations", a.Recommendations)

	p.printBox("SKILL GAP ANALYSIS", sb.String())
}

// PrintResumeOptimization outputs the ATS score, keyword insights and rewrites.
func (p *Printer) PrintResumeOptimization(o *types.ResumeOptimization) {
	if o == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ATS score: %.0f/100\n\n", o.ATSScore))
	writeList(&sb, "Keyword insights", o.KeywordInsights)

	if len(o.SuggestedRewrites) > 0 {
		sb.WriteString("Suggested rewrites:\n")
		count := min(len(o.SuggestedRewrites), maxItemsToShow)
		for i := 0; i < count; i++ {
			rw := o.SuggestedRewrites[i]
			sb.WriteString(fmt.Sprintf("  - %s\n", rw.Original))
			sb.WriteString(fmt.Sprintf("  + %s\n", rw.Improved))
			if rw.Reason != "" {
				sb.WriteString(fmt.Sprintf("    (%s)\n", rw.Reason))
			}
		}
		if len(o.SuggestedRewrites) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(o.SuggestedRewrites)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if o.OverallFeedback != "" {
		sb.WriteString(o.OverallFeedback + "\n")
	}

	p.printBox("RESUME OPTIMIZATION", sb.String())
}

// PrintCoverLetter outputs the full letter followed by its highlights.
func (p *Printer) PrintCoverLetter(c *types.CoverLetter) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(c.CoverLetter + "\n\n")
	writeList(&sb, "Highlights", c.Highlights)

	p.printBox("COVER LETTER", sb.String())
}

// PrintInterviewQuestions outputs every question grouped with its category and tip.
func (p *Printer) PrintInterviewQuestions(q *types.InterviewQuestions) {
	if q == nil {
		return
	}

	var sb strings.Builder
	for i, question := range q.Questions {
		sb.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, question.Category, question.Question))
		if question.Tip != "" {
			sb.WriteString(fmt.Sprintf("   Tip: %s\n", question.Tip))
		}
	}
	if len(q.Questions) == 0 {
		sb.WriteString("No questions generated\n")
	}

	p.printBox(fmt.Sprintf("INTERVIEW QUESTIONS (%d)", len(q.Questions)), sb.String())
}

// PrintApplicationInsight outputs the summary, next steps and follow-up timing.
func (p *Printer) PrintApplicationInsight(a *types.ApplicationInsight) {
	if a == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(a.Summary + "\n\n")
	writeList(&sb, "Next steps", a.NextSteps)
	if a.FollowUpDays > 0 {
		sb.WriteString(fmt.Sprintf("Follow up in %d day(s)\n", a.FollowUpDays))
	}

	p.printBox("APPLICATION INSIGHT", sb.String())
}

// PrintNetworkingTip outputs the tips and the suggested follow-up message.
func (p *Printer) PrintNetworkingTip(n *types.NetworkingTip) {
	if n == nil {
		return
	}

	var sb strings.Builder
	writeList(&sb, "Tips", n.Tips)
	if n.FollowUpMessage != "" {
		sb.WriteString("Suggested message:\n")
		sb.WriteString("  " + n.FollowUpMessage + "\n")
	}

	p.printBox("NETWORKING TIPS", sb.String())
}

// PrintCountdown outputs a one-line countdown status. Idle prints nothing.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintCountdown(s countdown.State) {
	if !s.Active {
		return
	}
	if s.Message != nil {
		fmt.Fprintf(p.out, "%s (%s remaining)\n", *s.Message, countdown.FormatDuration(s.RemainingSeconds))
		return
	}
	fmt.Fprintf(p.out, "Rate limited. Try again in %s\n", countdown.FormatDuration(s.RemainingSeconds))
}
