// Package view renders voting results for the terminal.
package view

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/okian/langvote/internal/client"
	"github.com/okian/langvote/internal/domain/model"
	"github.com/okian/langvote/internal/domain/results"
	"github.com/okian/langvote/internal/domain/types"
)

// Empty state texts.
const (
	NoVotes       = "No votes yet. Be the first to vote!"
	NoSubmissions = "No submissions yet."
)

const barWidth = 20

// Renderer formats results. The zero value is not usable; call New.
type Renderer struct {
	loc *time.Location
	now func() time.Time

	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLocation sets the zone submission times are shown in.
func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithNow sets the clock used for relative times.
func WithNow(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// New returns a renderer using the local zone and the wall clock.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		loc:     time.Local,
		now:     time.Now,
		title:   lipgloss.NewStyle().Bold(true).Underline(true),
		label:   lipgloss.NewStyle(),
		value:   lipgloss.NewStyle().Foreground(lipgloss.Color("#3498db")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#7f8c8d")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("#27ae60")),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c")),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Results renders the statistics followed by the grouped submissions. A
// foreground fetch error replaces both.
func (r *Renderer) Results(v client.ResultsView) string {
	if v.Error != "" {
		return r.Error(v.Error)
	}
	return r.Statistics(v.Snapshot) + "\n\n" + r.Submissions(v.GroupedSubmissions)
}

// Statistics renders the total and one bar per language, most votes first.
func (r *Renderer) Statistics(s results.Snapshot) string {
	var b strings.Builder
	b.WriteString(r.title.Render("Voting Statistics"))
	b.WriteString("\n")

	if s.TotalVotes == 0 {
		b.WriteString(r.muted.Render(NoVotes))
		return b.String()
	}

	fmt.Fprintf(&b, "%s %s\n", r.label.Render("Total votes:"), r.value.Render(humanize.Comma(int64(s.TotalVotes))))

	langs := results.Languages(s.LanguageCounts)
	width := 0
	for _, lang := range langs {
		width = max(width, len(results.Label(lang)))
	}
	for i, lang := range langs {
		pct := s.LanguagePercentages[lang]
		fmt.Fprintf(&b, "  %-*s %s %s %s",
			width, results.Label(lang),
			r.value.Render(bar(pct)),
			humanize.Comma(int64(s.LanguageCounts[lang])),
			r.muted.Render("("+results.FormatPercent(pct)+")"),
		)
		if i < len(langs)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Submissions renders each language group in key order, oldest first.
func (r *Renderer) Submissions(groups map[string][]model.Submission) string {
	var b strings.Builder
	b.WriteString(r.title.Render("All Submissions"))
	b.WriteString("\n")

	keys := results.GroupKeys(groups)
	if len(keys) == 0 {
		b.WriteString(r.muted.Render(NoSubmissions))
		return b.String()
	}

	for i, lang := range keys {
		subs := groups[lang]
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s\n", r.value.Render(results.Label(lang)), r.muted.Render(fmt.Sprintf("(%d)", len(subs))))
		for _, s := range subs {
			fmt.Fprintf(&b, "  %s %s %s\n", r.label.Render(s.Name), r.muted.Render("<"+s.Email+">"), r.muted.Render(r.when(s.TimeSubmitted)))
			fmt.Fprintf(&b, "    %q\n", s.Reason)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Confirmation renders a successful submit response.
func (r *Renderer) Confirmation(resp types.SubmitResponse) string {
	return r.success.Render(resp.Message)
}

// Error renders a message shown to the user.
func (r *Renderer) Error(msg string) string {
	return r.failure.Render("Error: " + msg)
}

// Languages renders the selectable language options.
func (r *Renderer) Languages() string {
	width := 0
	for _, opt := range model.Languages {
		width = max(width, len(opt.Value))
	}
	lines := make([]string, 0, len(model.Languages))
	for _, opt := range model.Languages {
		lines = append(lines, fmt.Sprintf("%-*s  %s", width, opt.Value, r.value.Render(opt.Label)))
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) when(ts string) string {
	abs := results.FormatSubmitted(ts, r.loc)
	t, ok := model.ParseTime(ts)
	if !ok {
		return abs
	}
	return fmt.Sprintf("%s, %s", abs, humanize.RelTime(t, r.now(), "ago", "from now"))
}

func bar(pct float64) string {
	n := int(math.Round(pct / 100 * barWidth))
	n = min(max(n, 0), barWidth)
	return strings.Repeat("█", n) + strings.Repeat("░", barWidth-n)
}
