package utils

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// keywordPattern matches the section labels the backend uses in captions.
var keywordPattern = regexp.MustCompile(`\b(Caption|Hashtags|Song Suggestions|Mood):`)

func KeywordStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("51"))
}

// FormatMessage prepares stored message text for display with the default
// keyword style.
func FormatMessage(text string) string {
	return FormatMessageWith(text, KeywordStyle())
}

// FormatMessageWith normalises line breaks and emphasises keyword labels.
// Existing terminal styling is stripped first, so formatting output again
// yields the same string.
func FormatMessageWith(text string, emphasis lipgloss.Style) string {
	plain := ansi.Strip(text)
	plain = strings.ReplaceAll(plain, "\r\n", "\n")
	plain = strings.ReplaceAll(plain, "\r", "\n")

	return keywordPattern.ReplaceAllStringFunc(plain, func(label string) string {
		return emphasis.Render(label)
	})
}

// Keywords returns the emphasised labels found in text, in order.
func Keywords(text string) []string {
	return keywordPattern.FindAllString(ansi.Strip(text), -1)
}
