package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/joescharf/civic/internal/models"
	"github.com/joescharf/civic/internal/theme"
)

// UI writes prefixed, colored messages for the CLI.
type UI struct {
	Verbose bool
	DryRun  bool
	Out     io.Writer
	ErrOut  io.Writer
}

// New returns a UI on stdout and stderr.
func New() *UI {
	return &UI{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

var (
	infoPrefix    = color.New(color.FgHiBlue).Sprint("i")
	successPrefix = color.New(color.FgHiGreen).Sprint("\u2713")
	warningPrefix = color.New(color.FgHiYellow).Sprint("\u26a0")
	errorPrefix   = color.New(color.FgHiRed).Sprint("\u2717")
	verbosePrefix = color.New(color.FgHiBlue).Sprint("  \u2192")
	cyan          = color.New(color.FgHiCyan).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	red           = color.New(color.FgHiRed).SprintFunc()
)

// Cyan returns a cyan-colored string.
func Cyan(s string) string { return cyan(s) }

// Green returns a green-colored string.
func Green(s string) string { return green(s) }

// Yellow returns a yellow-colored string.
func Yellow(s string) string { return yellow(s) }

// Red returns a red-colored string.
func Red(s string) string { return red(s) }

var toneColors = map[theme.Tone]*color.Color{
	theme.ToneSuccess: color.New(color.FgHiGreen),
	theme.ToneWarning: color.New(color.FgHiYellow),
	theme.ToneDanger:  color.New(color.FgHiRed),
	theme.ToneInfo:    color.New(color.FgHiBlue),
	theme.ToneCaution: color.New(color.FgYellow),
	theme.ToneMuted:   color.New(color.FgHiBlack),
}

// ToneColor returns s colored by a semantic tone.
func ToneColor(tone theme.Tone, s string) string {
	if c, ok := toneColors[tone]; ok {
		return c.Sprint(s)
	}
	return s
}

// StatusColor returns the status label colored like its badge.
func StatusColor(status models.IssueStatus) string {
	return ToneColor(theme.StatusTone(status), status.Label())
}

// PriorityColor returns the priority colored like its label.
func PriorityColor(p models.Priority) string {
	return ToneColor(theme.PriorityTone(p), string(p))
}

// ProgressColor returns the percentage colored by how far along it is.
func ProgressColor(percent int) string {
	s := fmt.Sprintf("%d%%", percent)
	switch {
	case percent >= 100:
		return green(s)
	case percent >= 50:
		return yellow(s)
	default:
		return red(s)
	}
}

func (u *UI) emit(w io.Writer, prefix, format string, a []any) {
	fmt.Fprintf(w, "%s %s\n", prefix, fmt.Sprintf(format, a...))
}

// Info, Success and VerboseLog write to Out; Warning, Error and DryRunMsg
// write to ErrOut so piped table output stays clean.
func (u *UI) Info(format string, a ...any)    { u.emit(u.Out, infoPrefix, format, a) }
func (u *UI) Success(format string, a ...any) { u.emit(u.Out, successPrefix, format, a) }
func (u *UI) Warning(format string, a ...any) { u.emit(u.ErrOut, warningPrefix, format, a) }
func (u *UI) Error(format string, a ...any)   { u.emit(u.ErrOut, errorPrefix, format, a) }

func (u *UI) VerboseLog(format string, a ...any) {
	if u.Verbose {
		u.emit(u.Out, verbosePrefix, format, a)
	}
}

func (u *UI) DryRunMsg(format string, a ...any) {
	if u.DryRun {
		u.emit(u.ErrOut, warningPrefix, "[DRY-RUN] "+format, a)
	}
}

// Table returns a borderless, left-aligned table writing to Out.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}
