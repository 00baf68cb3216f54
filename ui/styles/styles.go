package styles

import "github.com/charmbracelet/lipgloss"

func InputStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Width(max(width-4, 1))
}

func InputDisabledStyle(width int) lipgloss.Style {
	return InputStyle(width).
		BorderForeground(lipgloss.Color("240"))
}

func StatusStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Background(lipgloss.Color("235")).
		Padding(0, 1).
		Width(max(width, 1))
}

func AttachmentBadgeStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("235")).
		Background(lipgloss.Color("51")).
		Padding(0, 1)
}

func UserStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("39")).
		Padding(0, 1).
		MarginLeft(2).
		Width(messageWidth(width))
}

func BotStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("213")).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("213")).
		Padding(0, 1).
		MarginLeft(2).
		Width(messageWidth(width))
}

func ProgramStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("141")).
		Bold(true).
		Padding(0, 2)
}

func NoticeStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(lipgloss.Color("203")).
		Foreground(lipgloss.Color("230")).
		Padding(1, 3).
		Width(min(max(width-8, 20), 72)).
		Align(lipgloss.Center)
}

func SpinnerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
}

// messageWidth leaves room for margin, border and padding.
func messageWidth(width int) int {
	if width <= 0 {
		return 0
	}
	return max(width-6, 10)
}
