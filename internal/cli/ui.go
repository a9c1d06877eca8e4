package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Terminal palette, ANSI-256 codes so output degrades on basic terminals.
var (
	paletteAccent  = lipgloss.Color("36") // headings, main-layer marks
	paletteOK      = lipgloss.Color("35")
	paletteWarn    = lipgloss.Color("220")
	paletteFail    = lipgloss.Color("167")
	paletteCommand = lipgloss.Color("75")
	paletteValue   = lipgloss.Color("255")
	paletteLabel   = lipgloss.Color("245")
	paletteMuted   = lipgloss.Color("240")
)

// Styles shared with the inspect TUI.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(paletteAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(paletteAccent)
	StyleWarning   = lipgloss.NewStyle().Foreground(paletteWarn)
	StyleDim       = lipgloss.NewStyle().Foreground(paletteMuted)
)

var (
	styleOK      = lipgloss.NewStyle().Foreground(paletteOK)
	styleFail    = lipgloss.NewStyle().Foreground(paletteFail)
	styleLabel   = lipgloss.NewStyle().Foreground(paletteLabel).Width(12)
	styleValue   = lipgloss.NewStyle().Foreground(paletteValue)
	styleCommand = lipgloss.NewStyle().Foreground(paletteCommand)
	styleSpinner = lipgloss.NewStyle().Foreground(paletteAccent)
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleOK.Render("✓") + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleFail.Render("✗") + " " + fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Println(StyleDim.Render("›") + " " + fmt.Sprintf(format, args...))
}

// printDetail indents a secondary line under the previous message.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile points at a file the command produced.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleLabel.Render(key) + " " + styleValue.Render(value))
}

// printStats summarizes a rendered graph on one dim line.
func printStats(nodes, edges int, cached bool) {
	source := "fresh"
	if cached {
		source = "cached"
	}
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf("%d nodes · %d edges · %s", nodes, edges, source)))
}

// printNextStep suggests the follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() { fmt.Println() }
