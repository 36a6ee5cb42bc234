package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/solutionmap/pkg/hierarchy"
	"github.com/matzehuels/solutionmap/pkg/pipeline"
)

// stdout receives all human-facing command output. Tests swap it.
var stdout io.Writer = os.Stdout

// =============================================================================
// Palette & Styles
// =============================================================================

var (
	colorCyan   = lipgloss.Color("37")
	colorGreen  = lipgloss.Color("71")
	colorYellow = lipgloss.Color("214")
	colorRed    = lipgloss.Color("160")
	colorBlue   = lipgloss.Color("69")
	colorWhite  = lipgloss.Color("254")
	colorGray   = lipgloss.Color("246")
	colorDim    = lipgloss.Color("241")
)

var (
	// StyleTitle renders headings such as the browser title.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	// StyleHighlight renders node names and other emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	// StyleLink renders addresses.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	// StyleDim renders muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

// =============================================================================
// Status Lines
// =============================================================================

type statusKind int

const (
	statusSuccess statusKind = iota
	statusError
	statusWarning
	statusInfo
)

var statusIcons = map[statusKind]struct {
	icon  string
	style lipgloss.Style
}{
	statusSuccess: {"✓", lipgloss.NewStyle().Foreground(colorGreen)},
	statusError:   {"✗", lipgloss.NewStyle().Foreground(colorRed)},
	statusWarning: {"!", lipgloss.NewStyle().Foreground(colorYellow)},
	statusInfo:    {"›", lipgloss.NewStyle().Foreground(colorGray)},
}

func status(kind statusKind, format string, args ...any) {
	s := statusIcons[kind]
	msg := fmt.Sprintf(format, args...)
	if kind == statusWarning {
		msg = s.style.Render(msg)
	}
	fmt.Fprintln(stdout, s.style.Render(s.icon)+" "+msg)
}

func printSuccess(format string, args ...any) { status(statusSuccess, format, args...) }
func printError(format string, args ...any)   { status(statusError, format, args...) }
func printWarning(format string, args ...any) { status(statusWarning, format, args...) }
func printInfo(format string, args ...any)    { status(statusInfo, format, args...) }

// printDetail prints an indented muted line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile reports an artifact written to disk.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render("→")+" "+styleValue.Render(path))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Build Summaries
// =============================================================================

// printStatsLine prints the size of a built hierarchy and whether it came
// from the cache.
func printStatsLine(records int, b *pipeline.Built, cached bool) {
	fmt.Fprintln(stdout, statsLine(pipeline.Stats{
		Records:   records,
		Nodes:     hierarchy.Count(b.Tree),
		Solutions: pipeline.CountSolutions(b.Tree),
	}, cached))
}

func statsLine(s pipeline.Stats, cached bool) string {
	sep := StyleDim.Render(" · ")
	parts := []string{
		StyleDim.Render(strconv.Itoa(s.Records) + " records"),
		StyleDim.Render(strconv.Itoa(s.Nodes) + " nodes"),
		StyleDim.Render(strconv.Itoa(s.Solutions) + " solutions"),
	}
	origin := lipgloss.NewStyle().Foreground(colorGray).Render("fresh")
	if cached {
		origin = lipgloss.NewStyle().Foreground(colorGreen).Render("cached")
	}
	return "  " + strings.Join(append(parts, origin), sep)
}

// reportRows lists the non-zero counters of a construction report.
func reportRows(r hierarchy.Report) [][]string {
	counters := []struct {
		name string
		n    int
	}{
		{"skipped categories", r.SkippedCategories},
		{"skipped subcategories", r.SkippedSubcategories},
		{"skipped solutions", r.SkippedSolutions},
		{"malformed parents", r.MalformedParents},
		{"orphan subcategories", r.OrphanSubcategories},
		{"uncategorized", r.Uncategorized},
		{"pruned", r.Pruned},
		{"duplicate ids", r.DuplicateIDs},
		{"duplicate names", len(r.DuplicateNames)},
	}
	var rows [][]string
	for _, c := range counters {
		if c.n > 0 {
			rows = append(rows, []string{c.name, strconv.Itoa(c.n)})
		}
	}
	return rows
}

// printReport prints the records the builder skipped or repaired. A clean
// build prints nothing.
func printReport(r hierarchy.Report) {
	rows := reportRows(r)
	if len(rows) == 0 {
		return
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("Record issue", "Count").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 1:
				return styleNumber
			}
			return styleValue
		})
	fmt.Fprintln(stdout, t.Render())
	if len(r.DuplicateNames) > 0 {
		printDetail("Duplicate names resolve to their first occurrence: %s", strings.Join(r.DuplicateNames, ", "))
	}
}
