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
	"github.com/olekukonko/tablewriter/tw"
)

// WriteSummaryResults prints a list of stored analyses.
func WriteSummaryResults(summaries []schema.AnalysisSummary, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)
	header := []string{"commit_id", "author", "commit_date", "analysis_date", "language", "added_lines", "removed_lines", "files", "suggestions"}
	header = append(header, scoreCSVHeaders...)
	header = append(header, "note", "quality")

	return dispatch(cfg, summaries, header, func(w *csv.Writer) error {
		for _, s := range summaries {
			row := []string{
				s.CommitID,
				s.Author,
				s.CommitDate.UTC().Format(time.RFC3339),
				s.AnalysisDate.UTC().Format(time.RFC3339),
				s.Language,
				strconv.Itoa(s.AddedLines),
				strconv.Itoa(s.RemovedLines),
				strconv.Itoa(s.FileCount),
				strconv.Itoa(s.SuggestionCount),
			}
			row = append(row, scoreCells(s.Scores, false)...)
			row = append(row, fmtFloat(s.Note), string(s.Quality))
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	}, func(w io.Writer) error {
		return writeSummaryTable(w, summaries, cfg, fmtFloat)
	})
}

func writeSummaryTable(w io.Writer, summaries []schema.AnalysisSummary, cfg *contract.Config, fmtFloat func(float64) string) error {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No analyses stored yet.")
		return nil
	}
	data := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		data = append(data, []string{
			contract.ShortCommitID(s.CommitID),
			contract.TruncateText(s.Author, 24),
			s.CommitDate.Format(time.DateOnly),
			s.Language,
			strconv.Itoa(s.FileCount),
			strconv.Itoa(s.SuggestionCount),
			fmtFloat(s.Note),
			qualityLabel(s.Quality, cfg.UseColors),
		})
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Commit", "Author", "Date", "Language", "Files", "Suggestions", "Note", "Quality"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Showing %d analyses.\n", len(summaries))
	return nil
}

// WriteStatisticsResults prints aggregate statistics over stored analyses.
func WriteStatisticsResults(stats schema.Statistics, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)
	header := []string{"commit_id", "author", "language"}
	header = append(header, scoreCSVHeaders...)
	header = append(header, "note", "quality")

	return dispatch(cfg, stats, header, func(w *csv.Writer) error {
		for _, c := range stats.Commits {
			row := []string{c.CommitID, c.Author, c.Language}
			row = append(row, scoreCells(c.Metrics, false)...)
			row = append(row, fmtFloat(c.Note), string(c.Quality))
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	}, func(w io.Writer) error {
		return writeStatisticsText(w, stats, cfg, fmtFloat)
	})
}

func writeStatisticsText(w io.Writer, stats schema.Statistics, cfg *contract.Config, fmtFloat func(float64) string) error {
	fmt.Fprintf(w, "Analyses: %d  Files: %d  Suggestions: %d\n", stats.TotalAnalyses, stats.TotalFiles, stats.TotalSuggestions)
	if stats.TotalAnalyses == 0 {
		return nil
	}
	fmt.Fprintf(w, "Average note: %s  Best: %s  Worst: %s\n",
		fmtFloat(stats.AverageNote), fmtFloat(stats.BestNote), fmtFloat(stats.WorstNote))

	var data [][]string
	for _, q := range schema.AllQualities {
		if n := stats.ByQuality[q]; n > 0 {
			data = append(data, []string{"quality", qualityLabel(q, cfg.UseColors), strconv.Itoa(n)})
		}
	}
	for _, lang := range slices.Sorted(maps.Keys(stats.ByLanguage)) {
		data = append(data, []string{"language", lang, strconv.Itoa(stats.ByLanguage[lang])})
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Group", "Value", "Commits"})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
