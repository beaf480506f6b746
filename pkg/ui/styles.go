package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	userLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	userTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	botLabelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	selectedGutter  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).SetString("▌")
	plainGutter     = lipgloss.NewStyle().SetString(" ")
	codeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("215")).Background(lipgloss.Color("236"))
	linkStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Underline(true)
	urlStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	chipStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("118")).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("28")).Padding(0, 1)
	chipKeyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	copiedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("118")).Italic(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	welcomeStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	toggleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("63")).Padding(0, 2)
	unavailableText = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)
