package steplog

import "github.com/vietddude/newsdigest/internal/core/domain"

var stepByTag = map[string]domain.BatchStep{
	"world-news-fetch":   domain.StepWorldNewsFetch,
	"japan-news-fetch":   domain.StepJapanNewsFetch,
	"world-news-summary": domain.StepWorldNewsSummary,
	"japan-news-summary": domain.StepJapanNewsSummary,
	"firestore-save":     domain.StepFirestoreSave,
	"metadata-update":    domain.StepMetadataUpdate,
}

// Classify maps a raw error type tag to its canonical batch step. It is
// total: any unrecognized tag, including the empty string, maps to
// StepUnknown so a bad tag can never fail a run.
func Classify(tag string) domain.BatchStep {
	if step, ok := stepByTag[tag]; ok {
		return step
	}
	return domain.StepUnknown
}
