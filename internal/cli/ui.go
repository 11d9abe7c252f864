package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette (ANSI 256).
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle for headings such as a dataset path.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
	// StyleNumber for counts.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)
	// StyleWarning for warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// icon is a coloured status marker.
type icon struct {
	glyph string
	style lipgloss.Style
}

var (
	iconSuccess = icon{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	iconError   = icon{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	iconWarning = icon{"!", lipgloss.NewStyle().Foreground(colorYellow)}
	iconInfo    = icon{"›", lipgloss.NewStyle().Foreground(colorGray)}
)

const iconArrow = "→"

// status writes one "<icon> message" line.
func status(w io.Writer, ic icon, msg string) {
	fmt.Fprintln(w, ic.style.Render(ic.glyph)+" "+msg)
}

func printSuccess(format string, args ...any) {
	status(os.Stdout, iconSuccess, fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	status(w, iconError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	status(os.Stdout, iconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	status(os.Stdout, iconInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints an output path under the preceding status line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value in a fixed-width key column.
func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints the image size and skipped geometry count on one line.
func printStats(width, height, skipped int) {
	parts := []string{StyleDim.Render(fmt.Sprintf("%d×%d px", width, height))}
	if skipped > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d multi-part skipped", skipped)))
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}
