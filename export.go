package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// exportTimestamp names export files so repeated exports never clobber
// each other.
func exportTimestamp() string {
	return time.Now().UTC().Format("20060102-150405")
}

func writeCSVExport(dir, prefix string, headers []string, rows [][]string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create exports dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.csv", prefix, exportTimestamp()))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("write %s: %w", path, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}
	return path, nil
}

// exportSectionCSV serializes a section's visible columns. Nested
// columns stay in, flattened through the same value funcs the table
// renders with.
func exportSectionCSV(dir, key string, tbl tableFacade, all bool) (string, error) {
	headers := tbl.ExportHeaders(true)
	rows := tbl.ExportRows(true, all)
	return writeCSVExport(dir, key, headers, rows)
}
