package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteOutcomeResults prints analysis outcomes in the configured format.
func WriteOutcomeResults(outcomes []schema.AnalysisOutcome, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)
	return dispatch(cfg, outcomes, outcomeCSVHeader(), func(w *csv.Writer) error {
		return writeOutcomeCSVRows(w, outcomes, fmtFloat)
	}, func(w io.Writer) error {
		return writeOutcomeTables(w, outcomes, cfg, fmtFloat, duration)
	})
}

func outcomeCSVHeader() []string {
	header := []string{"commit_id", "status", "author", "language", "file", "added_lines", "removed_lines"}
	header = append(header, scoreCSVHeaders...)
	return append(header, "note", "quality", "suggestions", "reason")
}

// writeOutcomeCSVRows writes one row per analyzed file. Outcomes without
// files still get a single row so skipped commits remain visible.
func writeOutcomeCSVRows(w *csv.Writer, outcomes []schema.AnalysisOutcome, fmtFloat func(float64) string) error {
	for _, o := range outcomes {
		if o.Analysis == nil {
			row := []string{o.CommitID, string(o.Status), "", "", "", "", ""}
			row = append(row, make([]string, len(scoreCSVHeaders))...)
			row = append(row, "", "", "", o.Reason)
			if err := w.Write(row); err != nil {
				return err
			}
			continue
		}
		for _, f := range o.Analysis.Files() {
			if f.Rating == nil {
				continue
			}
			row := []string{
				o.Analysis.CommitID,
				string(o.Status),
				o.Analysis.Author,
				o.Analysis.Language,
				f.Path,
				strconv.Itoa(f.AddedLines),
				strconv.Itoa(f.RemovedLines),
			}
			row = append(row, scoreCells(f.Rating.Scores, false)...)
			row = append(row,
				fmtFloat(f.Rating.Note()),
				string(f.Rating.Quality()),
				strconv.Itoa(len(f.Suggestions)),
				o.Reason,
			)
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeOutcomeTables renders a header block, a file table and a suggestion table per commit.
func writeOutcomeTables(w io.Writer, outcomes []schema.AnalysisOutcome, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	for i, o := range outcomes {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := writeOutcomeTable(w, o, cfg, fmtFloat); err != nil {
			return err
		}
	}
	if duration > 0 {
		fmt.Fprintf(w, "\nAnalysis completed in %v with %d concurrent files. Store backend: %s\n",
			duration.Round(time.Millisecond), cfg.MaxConcurrent, cfg.StoreBackend)
	}
	return nil
}

func writeOutcomeTable(w io.Writer, o schema.AnalysisOutcome, cfg *contract.Config, fmtFloat func(float64) string) error {
	if o.Analysis == nil {
		fmt.Fprintf(w, "Commit %s: %s", contract.ShortCommitID(o.CommitID), o.Status)
		if o.Reason != "" {
			fmt.Fprintf(w, " (%s)", o.Reason)
		}
		fmt.Fprintln(w)
		return nil
	}

	a := o.Analysis
	fmt.Fprintf(w, "Commit %s by %s <%s> on %s [%s]\n",
		contract.ShortCommitID(a.CommitID), a.Author, a.Email, a.CommitDate.Format(time.DateOnly), o.Status)
	if o.Reason != "" {
		fmt.Fprintf(w, "Reason: %s\n", o.Reason)
	}
	fmt.Fprintf(w, "Language: %s  Lines: +%d -%d", a.Language, a.AddedLines, a.RemovedLines)
	if r := a.Rating(); r != nil {
		fmt.Fprintf(w, "  Note: %s  Quality: %s", fmtFloat(r.Note()), qualityLabel(r.Quality(), cfg.UseColors))
	}
	fmt.Fprintln(w)

	files := a.Files()
	if len(files) > 0 {
		if err := writeFileTable(w, files, cfg, fmtFloat); err != nil {
			return err
		}
	}

	suggestions := a.Suggestions()
	if len(suggestions) > 0 {
		return writeSuggestionTable(w, suggestions, cfg)
	}
	return nil
}

func writeFileTable(w io.Writer, files []schema.CommitFile, cfg *contract.Config, fmtFloat func(float64) string) error {
	maxPathWidth := GetMaxTablePathWidth(cfg)
	headers := []string{"Path", "Lang", "+/-"}
	headers = append(headers, scoreHeaders...)
	headers = append(headers, "Note", "Quality")

	data := make([][]string, 0, len(files))
	for _, f := range files {
		row := []string{
			contract.TruncatePath(f.Path, maxPathWidth),
			f.Language,
			fmt.Sprintf("+%d/-%d", f.AddedLines, f.RemovedLines),
		}
		if f.Rating == nil {
			row = append(row, make([]string, len(scoreHeaders))...)
			row = append(row, "-", "-")
		} else {
			row = append(row, scoreCells(f.Rating.Scores, cfg.UseColors)...)
			row = append(row, fmtFloat(f.Rating.Note()), qualityLabel(f.Rating.Quality(), cfg.UseColors))
		}
		data = append(data, row)
	}

	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeSuggestionTable(w io.Writer, suggestions []schema.Suggestion, cfg *contract.Config) error {
	maxPathWidth := GetMaxTablePathWidth(cfg)
	maxTextWidth := getMaxTableTextWidth(cfg)

	data := make([][]string, 0, len(suggestions))
	for i, s := range suggestions {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			string(s.Priority),
			contract.TruncatePath(s.FileReference, maxPathWidth),
			contract.TruncateText(s.Title, maxTextWidth),
			string(s.Difficulty),
			string(s.Category),
		})
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Priority", "File", "Suggestion", "Difficulty", "Category"})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func qualityLabel(q schema.Quality, colored bool) string {
	if colored {
		return contract.GetColorLabel(q)
	}
	return string(q)
}
