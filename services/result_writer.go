package services

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"valuation-scanner/models"
)

// WriteResults serializes scan rows to a CSV file in scan order. Absent
// ratios become empty cells via models.Metric's CSV marshaller.
func WriteResults(path string, rows []models.ScanRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("failed to write results to %s: %w", path, err)
	}

	return nil
}
