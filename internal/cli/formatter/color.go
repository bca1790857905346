package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/scheduler"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// RiskIndicator returns a colored load risk label such as "● CRITICAL".
func RiskIndicator(risk domain.RiskLevel) string {
	switch risk {
	case domain.RiskCritical:
		return StyleRed.Render("● CRITICAL")
	case domain.RiskAtRisk:
		return StyleYellow.Render("● AT RISK")
	case domain.RiskOnTrack:
		return StyleGreen.Render("● ON TRACK")
	default:
		return StyleDim.Render("● UNKNOWN")
	}
}

// BandIndicator colors a cognitive tax band; lower tax is greener.
func BandIndicator(band scheduler.TaxBand) string {
	switch band {
	case scheduler.BandExcellent:
		return StyleGreen.Render("● " + string(band))
	case scheduler.BandGood:
		return StyleBlue.Render("● " + string(band))
	case scheduler.BandFair:
		return StyleYellow.Render("● " + string(band))
	case scheduler.BandPoor:
		return StyleRed.Render("● " + string(band))
	default:
		return StyleDim.Render("● --")
	}
}

// CategoryBadge renders a task category in its own color.
func CategoryBadge(c domain.Category) string {
	if c == "" {
		return StyleDim.Render("--")
	}
	label := strings.ToUpper(string(c)[:1]) + string(c)[1:]
	switch c {
	case domain.CategoryResearch:
		return StylePurple.Render(label)
	case domain.CategoryCoding:
		return StyleBlue.Render(label)
	case domain.CategoryAdmin:
		return StyleYellow.Render(label)
	case domain.CategoryNetworking:
		return StyleGreen.Render(label)
	default:
		return StyleDim.Render(label)
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
