package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// dispatch routes a result to its JSON, CSV or table writer.
func dispatch(cfg *contract.Config, data any, csvHeader []string, csvRows func(*csv.Writer) error, table func(io.Writer) error) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, data)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, csvHeader, csvRows)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, table, "Wrote table")
	}
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// createFormatter returns the float formatter for the configured precision.
func createFormatter(precision int) func(float64) string {
	return func(v float64) string {
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
}

// scoreCells renders the five criterion scores in canonical order.
func scoreCells(scores schema.CriterionScores, colored bool) []string {
	cells := make([]string, 0, len(schema.Criteria))
	for _, v := range scores.Values() {
		if colored {
			cells = append(cells, contract.GetScoreColorLabel(v))
		} else {
			cells = append(cells, strconv.Itoa(v))
		}
	}
	return cells
}

// scoreHeaders are the short column names of the five criteria.
var scoreHeaders = []string{"Naming", "Functions", "Comments", "Cohesion", "DeadCode"}

// scoreCSVHeaders are the CSV column names of the five criteria.
var scoreCSVHeaders = []string{"variable_naming", "function_sizes", "no_needs_comments", "method_cohesion", "dead_code"}
