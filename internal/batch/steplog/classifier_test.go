package steplog

import (
	"testing"

	"github.com/vietddude/newsdigest/internal/core/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		tag    string
		expect domain.BatchStep
	}{
		{"world-news-fetch", domain.StepWorldNewsFetch},
		{"japan-news-fetch", domain.StepJapanNewsFetch},
		{"world-news-summary", domain.StepWorldNewsSummary},
		{"japan-news-summary", domain.StepJapanNewsSummary},
		{"firestore-save", domain.StepFirestoreSave},
		{"metadata-update", domain.StepMetadataUpdate},
		{"unknown-type", domain.StepUnknown},
		{"", domain.StepUnknown},
		{"World-News-Fetch", domain.StepUnknown}, // tags are case-sensitive
		{"firestore", domain.StepUnknown},
	}

	for _, tt := range tests {
		if got := Classify(tt.tag); got != tt.expect {
			t.Errorf("Classify(%q) = %q, want %q", tt.tag, got, tt.expect)
		}
	}
}
