package render

import "github.com/charmbracelet/lipgloss"

// theme groups reusable styles for transcript regions.
type theme struct {
	userTitle   lipgloss.Style
	botBox      lipgloss.Style
	botTitle    lipgloss.Style
	card        lipgloss.Style
	cardTitle   lipgloss.Style
	cardSubtext lipgloss.Style
	button      lipgloss.Style
	media       lipgloss.Style
	nlp         lipgloss.Style
	nlpMiss     lipgloss.Style
	errorBox    lipgloss.Style
	errorTitle  lipgloss.Style
	hint        lipgloss.Style
}

// defaultTheme defines the retro terminal palette used by the CLI transcript.
func defaultTheme() theme {
	return theme{
		userTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("214")).
			Padding(0, 1),
		botBox: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("44")).
			Padding(0, 1),
		botTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("44")).
			Padding(0, 1),
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("109")).
			Padding(0, 1),
		cardTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")),
		cardSubtext: lipgloss.NewStyle().
			Foreground(lipgloss.Color("180")),
		button: lipgloss.NewStyle().
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("173")).
			Padding(0, 1),
		media: lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")).
			Underline(true),
		nlp: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),
		nlpMiss: lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")).
			Bold(true),
		errorBox: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("203")).
			Foreground(lipgloss.Color("203")).
			Padding(0, 1),
		errorTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("160")).
			Padding(0, 1),
		hint: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),
	}
}
