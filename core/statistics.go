package core

import (
	"github.com/huangsam/cleanscore/schema"
)

// BuildStatistics summarizes stored analyses for dashboards.
// Best and worst notes only consider rated commits.
func BuildStatistics(summaries []schema.AnalysisSummary) schema.Statistics {
	stats := schema.Statistics{
		TotalAnalyses: len(summaries),
		ByQuality:     make(map[schema.Quality]int),
		ByLanguage:    make(map[string]int),
		Commits:       make([]schema.CommitStatistic, 0, len(summaries)),
	}

	rated := 0
	noteSum := 0.0
	for _, s := range summaries {
		stats.TotalFiles += s.FileCount
		stats.TotalSuggestions += s.SuggestionCount
		stats.ByLanguage[s.Language]++
		stats.Commits = append(stats.Commits, schema.CommitStatistic{
			CommitID: s.CommitID,
			Author:   s.Author,
			Language: s.Language,
			Note:     s.Note,
			Quality:  s.Quality,
			Metrics:  s.Scores,
		})

		if s.Quality == "" {
			continue
		}
		stats.ByQuality[s.Quality]++
		if rated == 0 || s.Note > stats.BestNote {
			stats.BestNote = s.Note
		}
		if rated == 0 || s.Note < stats.WorstNote {
			stats.WorstNote = s.Note
		}
		noteSum += s.Note
		rated++
	}

	if rated > 0 {
		stats.AverageNote = noteSum / float64(rated)
	}
	return stats
}
