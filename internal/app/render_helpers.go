package app

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/Gaurav-Gosain/dashpanel/internal/config"
)

var (
	baseBadgeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000"))
)

func getBorder() lipgloss.Border {
	return config.GetBorderForStyle()
}

func makeRounded(content string, color color.Color) string {
	render := lipgloss.NewStyle().Foreground(color).Render
	return render(config.GetPillLeft()) + content + render(config.GetPillRight())
}

// fitTitle truncates a badge label so it fits in maxWidth cells. It returns
// an empty string when not even a short label fits.
func fitTitle(title string, maxWidth int) string {
	if maxWidth <= 3 {
		return ""
	}
	if ansi.StringWidth(title) <= maxWidth {
		return title
	}
	return ansi.Truncate(title, maxWidth, "…")
}

// renderTopBorder renders the top border line of a panel: the title badge on
// the left and, during a gesture, a label on the right.
func renderTopBorder(title, label string, width int, color color.Color) string {
	border := getBorder()
	borderStyle := lipgloss.NewStyle().Foreground(color)
	nameStyle := baseBadgeStyle.Background(color)

	var right string
	if label != "" {
		right = makeRounded(nameStyle.Render(" "+label+" "), color)
	}
	rightWidth := lipgloss.Width(right)

	title = fitTitle(title, width-rightWidth-4)
	var badge string
	if title != "" {
		badge = makeRounded(nameStyle.Bold(true).Render(" "+title+" "), color)
	}
	padding := width - lipgloss.Width(badge) - rightWidth
	if padding < 0 {
		badge, right = "", ""
		padding = width
	}

	return borderStyle.Render(border.TopLeft) +
		badge +
		borderStyle.Render(strings.Repeat(border.Top, padding)) +
		right +
		borderStyle.Render(border.TopRight)
}

// renderBottomBorder renders the bottom border line with the resize handle
// in the right corner.
func renderBottomBorder(width int, color color.Color) string {
	border := getBorder()
	borderStyle := lipgloss.NewStyle().Foreground(color)
	return borderStyle.Render(border.BottomLeft+strings.Repeat(border.Bottom, width)) +
		borderStyle.Bold(true).Render(config.GetResizeHandle())
}

// addToBorder finishes a box rendered without a top border: it prepends the
// titled top line and swaps in a bottom line carrying the resize handle.
func addToBorder(content string, color color.Color, title, label string) string {
	width := max(lipgloss.Width(content)-2, 0)

	lines := strings.Split(content, "\n")
	if len(lines) > 0 {
		lines[len(lines)-1] = renderBottomBorder(width, color)
	}
	return renderTopBorder(title, label, width, color) + "\n" + strings.Join(lines, "\n")
}

// clipPanelContent trims a rendered panel to the viewport and returns the
// clipped content with its on-screen origin.
func clipPanelContent(content string, x, y, viewportWidth, viewportHeight int) (string, int, int) {
	lines := strings.Split(content, "\n")
	panelHeight := len(lines)

	panelWidth := 0
	if len(lines) > 0 {
		panelWidth = ansi.StringWidth(lines[0])
	}

	if x+panelWidth <= 0 || x >= viewportWidth || y+panelHeight <= 0 || y >= viewportHeight {
		return "", max(x, 0), max(y, 0)
	}

	clipTop := 0
	clipLeft := 0
	finalX := x
	finalY := y

	if y < 0 {
		clipTop = -y
		finalY = 0
	}

	if x < 0 {
		clipLeft = -x
		finalX = 0
	}

	visibleLines := lines[clipTop:]
	if maxVisibleLines := viewportHeight - finalY; maxVisibleLines < len(visibleLines) {
		visibleLines = visibleLines[:maxVisibleLines]
	}

	if clipLeft > 0 || finalX+panelWidth > viewportWidth {
		right := clipLeft + viewportWidth - finalX
		for i, line := range visibleLines {
			visibleLines[i] = ansi.Cut(line, clipLeft, right)
		}
	}

	return strings.Join(visibleLines, "\n"), finalX, finalY
}
