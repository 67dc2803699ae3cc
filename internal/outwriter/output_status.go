package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteStoreStatusResults prints analysis store status information.
func WriteStoreStatusResults(status schema.StoreStatus, cfg *contract.Config) error {
	return dispatch(cfg, status, []string{"table", "rows"}, func(w *csv.Writer) error {
		for _, name := range slices.Sorted(maps.Keys(status.TableSizes)) {
			if err := w.Write([]string{name, strconv.FormatInt(status.TableSizes[name], 10)}); err != nil {
				return err
			}
		}
		return nil
	}, func(w io.Writer) error {
		writeStoreStatusText(w, status)
		return nil
	})
}

func writeStoreStatusText(w io.Writer, status schema.StoreStatus) {
	fmt.Fprintln(w, "=== Analysis Store Status ===")
	fmt.Fprintf(w, "Backend: %s\n", status.Backend)
	fmt.Fprintf(w, "Connected: %v\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Fprintf(w, "Total analyses: %d\n", status.TotalAnalyses)
	fmt.Fprintf(w, "Total file ratings: %d\n", status.TotalFiles)
	if !status.LastAnalysisTime.IsZero() {
		fmt.Fprintf(w, "Last analysis: %s\n", status.LastAnalysisTime.Format(time.RFC3339))
		fmt.Fprintf(w, "Oldest analysis: %s\n", status.OldestAnalysisTime.Format(time.RFC3339))
	}
	if len(status.TableSizes) > 0 {
		fmt.Fprintln(w, "Table sizes:")
		for _, name := range slices.Sorted(maps.Keys(status.TableSizes)) {
			fmt.Fprintf(w, "  %s: %d rows\n", name, status.TableSizes[name])
		}
	}
}

// WriteHealthResults prints the outcome of every health check.
func WriteHealthResults(report schema.HealthReport, cfg *contract.Config) error {
	return dispatch(cfg, report, []string{"check", "ok", "detail"}, func(w *csv.Writer) error {
		for _, row := range healthRows(report) {
			if err := w.Write([]string{row.name, strconv.FormatBool(row.ok), row.detail}); err != nil {
				return err
			}
		}
		return nil
	}, func(w io.Writer) error {
		for _, row := range healthRows(report) {
			mark := "✅"
			if !row.ok {
				mark = "❌"
			}
			fmt.Fprintf(w, "%s %-8s %s\n", mark, row.name, row.detail)
		}
		if report.Ollama.Reachable && !report.Ollama.ModelAvailable {
			fmt.Fprintf(w, "⚠️  model %s is not listed by the server\n", report.Ollama.Model)
		}
		return nil
	})
}

type healthRow struct {
	name   string
	ok     bool
	detail string
}

func healthRows(report schema.HealthReport) []healthRow {
	ollama := healthRow{name: "ollama", ok: report.Ollama.Reachable, detail: report.Ollama.BaseURL}
	if report.Ollama.Error != "" {
		ollama.detail = fmt.Sprintf("%s (%s)", report.Ollama.BaseURL, report.Ollama.Error)
	} else if report.Ollama.Reachable {
		ollama.detail = fmt.Sprintf("%s (%d models)", report.Ollama.BaseURL, len(report.Ollama.Models))
	}

	store := healthRow{name: "store", ok: report.StoreError == "", detail: report.Store.Backend}
	if report.StoreError != "" {
		store.detail = fmt.Sprintf("%s (%s)", report.Store.Backend, report.StoreError)
	}

	repo := healthRow{name: "repo", ok: report.RepoError == "", detail: report.RepoRoot}
	if report.RepoError != "" {
		repo.detail = report.RepoError
	}
	return []healthRow{ollama, store, repo}
}

// WriteScanResults prints one scan cycle as a compact table.
func WriteScanResults(report *schema.ScanReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)
	rows := scanRows(report, fmtFloat)

	return dispatch(cfg, report, []string{"commit_id", "status", "note", "quality", "files", "detail"}, func(w *csv.Writer) error {
		return w.WriteAll(rows)
	}, func(w io.Writer) error {
		fmt.Fprintf(w, "Scanned %s to %s: %d commits found\n",
			report.Since.Format(time.DateTime), report.Until.Format(time.DateTime), report.Found)
		if len(rows) > 0 {
			data := make([][]string, 0, len(rows))
			for _, r := range rows {
				data = append(data, []string{contract.ShortCommitID(r[0]), r[1], r[2], r[3], r[4], contract.TruncateText(r[5], getMaxTableTextWidth(cfg))})
			}
			table := tablewriter.NewWriter(w)
			table.Header([]string{"Commit", "Status", "Note", "Quality", "Files", "Detail"})
			if err := table.Bulk(data); err != nil {
				return err
			}
			if err := table.Render(); err != nil {
				return err
			}
		}
		if duration > 0 {
			fmt.Fprintf(w, "Scan completed in %v\n", duration.Round(time.Millisecond))
		}
		return nil
	})
}

// scanRows lists outcomes in order followed by failures sorted by commit.
func scanRows(report *schema.ScanReport, fmtFloat func(float64) string) [][]string {
	var rows [][]string
	for _, o := range report.Outcomes {
		note, quality, files := "", "", ""
		if o.Analysis != nil {
			if r := o.Analysis.Rating(); r != nil {
				note, quality = fmtFloat(r.Note()), string(r.Quality())
			}
			files = strconv.Itoa(o.Analysis.AnalyzedFileCount())
		}
		rows = append(rows, []string{o.CommitID, string(o.Status), note, quality, files, o.Reason})
	}
	for _, id := range slices.Sorted(maps.Keys(report.Failures)) {
		rows = append(rows, []string{id, "Failed", "", "", "", report.Failures[id]})
	}
	return rows
}
