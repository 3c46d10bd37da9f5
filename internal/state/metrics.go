package state

import (
	"time"

	"github.com/desertthunder/rba/internal/models"
)

func metricsHook[T any](fn func(m models.Metrics, v T, now time.Time) models.Metrics) hook {
	return func(c *Container, value any) error {
		v, _ := value.(T)
		return c.setMetrics(fn(c.Metrics(), v, c.now().UTC()))
	}
}

func resumeWritten(m models.Metrics, _ models.Resume, _ time.Time) models.Metrics {
	m.ResumeUploaded = true
	return m
}

// analysisWritten counts the analysis and folds its score, if any, into the running mean of scored analyses.
func analysisWritten(m models.Metrics, a models.Analysis, now time.Time) models.Metrics {
	if m.ScoredAnalyses == 0 && m.AverageATSScore > 0 {
		// metrics stored before scoredAnalyses existed averaged over every analysis
		m.ScoredAnalyses = m.TotalAnalyses
	}

	m.TotalAnalyses++
	if a.ATSScore != nil {
		m.ScoredAnalyses++
		n := float64(m.ScoredAnalyses)
		m.AverageATSScore = (m.AverageATSScore*(n-1) + float64(*a.ATSScore)) / n
	}
	m.LastAnalysisDate = &now
	return m
}

func jobsWritten(m models.Metrics, jobs []models.Job, _ time.Time) models.Metrics {
	m.JobsFound = len(jobs)
	return m
}
