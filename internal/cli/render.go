package cli

import (
	"fmt"
	"strings"

	"github.com/anime-shed/palette-inspector/pkg/models"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A855F7"))

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EC4899")).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Width(12)

	textStyle = lipgloss.NewStyle().
			Width(60)

	avoidStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#C084FC")).
			Padding(1, 2)
)

// swatch renders a colored block followed by its hex code
func swatch(hex string) string {
	block := lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("    ")
	return block + " " + hex
}

func renderResult(r *models.AnalysisResult) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("You're a %s!", r.Season)))
	b.WriteString("\n")

	b.WriteString(headingStyle.Render("Your Natural Colors"))
	b.WriteString("\n")
	for _, row := range [][2]string{
		{"Skin Tone", r.SkinColor},
		{"Hair Color", r.HairColor},
		{"Eye Color", r.PupilColor},
	} {
		b.WriteString(labelStyle.Render(row[0]) + swatch(row[1]) + "\n")
	}

	b.WriteString(headingStyle.Render("About Your Season"))
	b.WriteString("\n")
	b.WriteString(textStyle.Render(r.ResultText))
	b.WriteString("\n")

	b.WriteString(headingStyle.Render("Perfect Colors for You"))
	b.WriteString("\n")
	for _, c := range r.RecommendedColors {
		b.WriteString(swatch(c) + "\n")
	}

	b.WriteString(headingStyle.Render("Colors to Avoid"))
	b.WriteString("\n")
	for _, c := range r.AvoidColors {
		b.WriteString(swatch(c) + " " + avoidStyle.Render("x") + "\n")
	}

	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}
