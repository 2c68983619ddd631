package ui

import "github.com/charmbracelet/lipgloss"

// 图标
const (
	HostIcon    = "👑"
	DrawerIcon  = "🖌"
	OfflineIcon = "💤"
)

var (
	docStyle     = lipgloss.NewStyle().Margin(1, 2)
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	promptStyle  = lipgloss.NewStyle().MarginTop(1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	systemStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	wordStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	nameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)
