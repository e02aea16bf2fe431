// Package view renders API results as terminal text.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	green      = lipgloss.Color("#10b981")
	lightGreen = lipgloss.Color("#84cc16")
	orange     = lipgloss.Color("#f59e0b")
	redOrange  = lipgloss.Color("#f97316")
	red        = lipgloss.Color("#ef4444")

	mealGood = lipgloss.Color("#4caf50")
	mealFair = lipgloss.Color("#ff9800")
	mealPoor = lipgloss.Color("#f44336")

	barActive = lipgloss.Color("#4a90a4")
	barIdle   = lipgloss.Color("#dddddd")
	muted     = lipgloss.Color("#6b7280")
)

// ScoreColor is the band colour for a 0-100 healthiness score.
func ScoreColor(score float64) lipgloss.Color {
	switch {
	case score >= 80:
		return green
	case score >= 60:
		return lightGreen
	case score >= 40:
		return orange
	case score >= 20:
		return redOrange
	default:
		return red
	}
}

// MealColor uses the coarser bands of the meal history.
func MealColor(score float64) lipgloss.Color {
	switch {
	case score >= 70:
		return mealGood
	case score >= 50:
		return mealFair
	default:
		return mealPoor
	}
}

func AlternativesLabel(score float64) string {
	switch {
	case score < 40:
		return "Low"
	case score < 60:
		return "Below Average"
	default:
		return "Average"
	}
}

// Renderer writes sections to w. Colour is only emitted when w is a
// terminal that supports it.
type Renderer struct {
	w  io.Writer
	lg *lipgloss.Renderer

	heading lipgloss.Style
	label   lipgloss.Style
	dim     lipgloss.Style
	bold    lipgloss.Style
}

func New(w io.Writer) *Renderer {
	return NewStyled(w, lipgloss.NewRenderer(w))
}

// NewStyled renders to w with lg's colour profile, for buffers that end up
// on a terminal.
func NewStyled(w io.Writer, lg *lipgloss.Renderer) *Renderer {
	return &Renderer{
		w:       w,
		lg:      lg,
		heading: lg.NewStyle().Bold(true).Underline(true),
		label:   lg.NewStyle().Bold(true),
		dim:     lg.NewStyle().Foreground(muted),
		bold:    lg.NewStyle().Bold(true),
	}
}

func (r *Renderer) colored(c lipgloss.Color, s string) string {
	return r.lg.NewStyle().Foreground(c).Render(s)
}

func (r *Renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

func (r *Renderer) section(title string) {
	r.printf("\n%s\n", r.heading.Render(title))
}

func (r *Renderer) field(name, value string) {
	r.printf("%s %s\n", r.label.Render(name+":"), value)
}

// JSON writes v indented, the way --json output is printed everywhere.
func JSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// number prints whole values without decimals.
func number(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
