package logger

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"
)

// LoggerWithCaller adds caller information to the logger
func LoggerWithCaller(skip int) Logger {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return GetLogger()
	}
	return GetLogger().WithField("caller", fmt.Sprintf("%s:%d", filepath.Base(file), line))
}

// ExtractionStats is the subset of an extraction worth logging.
type ExtractionStats struct {
	Source            string
	Strategy          string
	Records           int
	ContentAnchors    int
	NavigationAnchors int
	Duplicates        int
	Duration          time.Duration
}

// LogExtraction logs the outcome of one snapshot extraction. Empty results
// are logged as warnings since they usually mean an unexpected page layout.
func LogExtraction(l Logger, s ExtractionStats) {
	fields := map[string]interface{}{
		"source":             s.Source,
		"strategy":           s.Strategy,
		"records":            s.Records,
		"content_anchors":    s.ContentAnchors,
		"navigation_anchors": s.NavigationAnchors,
		"duplicates":         s.Duplicates,
		"duration":           s.Duration,
	}
	if s.Records == 0 {
		l.WarnWithFields("Extraction produced no records", fields)
		return
	}
	l.InfoWithFields("Extraction completed", fields)
}

// LogBatchProgress logs batch progress
func LogBatchProgress(l Logger, done, failed, total int) {
	percentage := 0.0
	if total > 0 {
		percentage = float64(done+failed) / float64(total) * 100
	}

	l.WithFields(map[string]interface{}{
		"done":       done,
		"failed":     failed,
		"total":      total,
		"percentage": fmt.Sprintf("%.1f%%", percentage),
	}).Info("Batch progress")
}
