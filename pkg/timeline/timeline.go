// Package timeline renders the overlap density strip and per-city status
// markers for the terminal.
package timeline

import (
	"fmt"
	"strings"

	"github.com/codeGROOVE-dev/chronosync/pkg/business"
	"github.com/fatih/color"
)

var (
	fullOverlap    = color.New(color.FgHiGreen, color.Bold)
	strongOverlap  = color.New(color.FgGreen)
	partialOverlap = color.New(color.FgBlue)
	noOverlap      = color.New(color.FgHiBlack)
	markerColor    = color.New(color.FgHiWhite, color.Bold)
)

// RenderStrip draws the 96-slot overlap density strip with an hour ruler.
// markerSlot highlights the slot holding the reference instant; pass -1 for
// no marker. Each cell covers 15 minutes of the UTC day.
func RenderStrip(scores []float64, markerSlot int) string {
	var output strings.Builder

	output.WriteString("🗓  Business-Hours Overlap (UTC day, 15-minute slots)\n")
	output.WriteString(strings.Repeat("─", 50) + "\n")

	// Hour ruler: one label every four hours, sixteen cells apart.
	output.WriteString("    ")
	for hour := 0; hour < 24; hour += 4 {
		output.WriteString(fmt.Sprintf("%-16s", fmt.Sprintf("%02d:00", hour)))
	}
	output.WriteString("\n    ")

	for slot, score := range scores {
		if slot == markerSlot {
			output.WriteString(markerColor.Sprint("│"))
			continue
		}
		output.WriteString(cellFor(score))
	}
	output.WriteString("\n")

	return output.String()
}

// cellFor picks a glyph and color bucket for one density value.
func cellFor(score float64) string {
	switch {
	case score >= 1:
		return fullOverlap.Sprint("█")
	case score > 0.5:
		return strongOverlap.Sprint("▓")
	case score > 0:
		return partialOverlap.Sprint("▒")
	default:
		return noOverlap.Sprint("░")
	}
}

// StatusLabel renders a business status with its conventional color.
func StatusLabel(status business.Status) string {
	switch status {
	case business.Active:
		return color.New(color.FgGreen, color.Bold).Sprint("● Active")
	case business.Overtime:
		return color.New(color.FgYellow).Sprint("◐ Overtime")
	case business.Asleep:
		return color.New(color.FgBlue).Sprint("☾ Asleep")
	case business.Closed:
		return color.New(color.FgHiBlack).Sprint("○ Closed")
	default:
		return status.String()
	}
}

// Legend explains the strip glyphs.
func Legend() string {
	return fmt.Sprintf("    %s all cities  %s most  %s some  %s none\n",
		fullOverlap.Sprint("█"), strongOverlap.Sprint("▓"),
		partialOverlap.Sprint("▒"), noOverlap.Sprint("░"))
}
