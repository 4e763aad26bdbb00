package utils

import (
	"fmt"
	"strings"
	"time"

	"valuation-scanner/models"
)

// Colors for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

// ShowProgress prints an in-place progress line for the current ticker.
func ShowProgress(current, total int, ticker string) {
	percent := float64(current) / float64(total) * 100
	fmt.Printf("\rProcessing %-8s [%d/%d] %.1f%%", ticker, current, total, percent)
	if current == total {
		fmt.Println()
	}
}

// DisplayResults prints a sample of the scan rows and a per-assessment
// summary. maxRows limits the sample; 0 shows everything.
func DisplayResults(rows []models.ScanRow, showColors bool, maxRows int) {
	if len(rows) == 0 {
		fmt.Println("No results to display!")
		return
	}

	displayHeader(showColors)

	sample := rows
	if maxRows > 0 && len(sample) > maxRows {
		sample = sample[:maxRows]
	}
	displayTable(sample, showColors)

	if len(sample) < len(rows) {
		fmt.Printf("... and %d more rows in the output file\n", len(rows)-len(sample))
	}

	displaySummary(rows, showColors)
}

func displayHeader(showColors bool) {
	separator := strings.Repeat("=", 100)
	title := fmt.Sprintf("Stock Valuation Scan - %s", time.Now().Format("2006-01-02 15:04:05"))

	if showColors {
		fmt.Printf("%s%s%s%s\n", ColorBold, ColorCyan, separator, ColorReset)
		fmt.Printf("%s%s%s%s\n", ColorBold, ColorCyan, title, ColorReset)
		fmt.Printf("%s%s%s%s\n", ColorBold, ColorCyan, separator, ColorReset)
	} else {
		fmt.Println(separator)
		fmt.Println(title)
		fmt.Println(separator)
	}
}

func displayTable(rows []models.ScanRow, showColors bool) {
	fmt.Printf("%-8s %-28s %-12s %8s %8s %8s %8s %8s %10s\n",
		"Ticker", "Name", "Assessment", "P/E", "P/B", "P/S", "PEG", "D/E", "FCF Yield")
	fmt.Println(strings.Repeat("-", 100))

	for _, row := range rows {
		name := row.Name
		if len(name) > 28 {
			name = name[:25] + "..."
		}

		assessment := string(row.Assessment)
		if showColors {
			assessment = assessmentColor(row.Assessment) + assessment + ColorReset
			// Pad manually: ANSI codes break %-12s width accounting.
			assessment += strings.Repeat(" ", max(0, 12-len(row.Assessment)))
			fmt.Printf("%-8s %-28s %s %8s %8s %8s %8s %8s %10s\n",
				row.Ticker, name, assessment,
				row.PE, row.PB, row.PS, row.PEG, row.DE, row.FCFYield)
			continue
		}

		fmt.Printf("%-8s %-28s %-12s %8s %8s %8s %8s %8s %10s\n",
			row.Ticker, name, assessment,
			row.PE, row.PB, row.PS, row.PEG, row.DE, row.FCFYield)
	}
}

func displaySummary(rows []models.ScanRow, showColors bool) {
	var undervalued, neutral, overvalued int
	for _, row := range rows {
		switch row.Assessment {
		case models.AssessmentUndervalued:
			undervalued++
		case models.AssessmentOvervalued:
			overvalued++
		default:
			neutral++
		}
	}

	fmt.Println(strings.Repeat("-", 100))
	if showColors {
		fmt.Printf("Total: %d   %sUndervalued: %d%s   %sNeutral: %d%s   %sOvervalued: %d%s\n",
			len(rows),
			ColorGreen, undervalued, ColorReset,
			ColorYellow, neutral, ColorReset,
			ColorRed, overvalued, ColorReset)
	} else {
		fmt.Printf("Total: %d   Undervalued: %d   Neutral: %d   Overvalued: %d\n",
			len(rows), undervalued, neutral, overvalued)
	}
}

func assessmentColor(a models.Assessment) string {
	switch a {
	case models.AssessmentUndervalued:
		return ColorGreen
	case models.AssessmentOvervalued:
		return ColorRed
	}
	return ColorYellow
}
