package domain

// BatchStep identifies a sub-phase of a batch job's pipeline. The string
// values are the stable tags consumed by log aggregation and monitoring;
// they must not change even when the backing implementation does (the
// document-store save step keeps its historical "firestore-save" tag).
type BatchStep string

const (
	StepWorldNewsFetch   BatchStep = "world-news-fetch"
	StepJapanNewsFetch   BatchStep = "japan-news-fetch"
	StepWorldNewsSummary BatchStep = "world-news-summary"
	StepJapanNewsSummary BatchStep = "japan-news-summary"
	StepFirestoreSave    BatchStep = "firestore-save"
	StepMetadataUpdate   BatchStep = "metadata-update"
	StepUnknown          BatchStep = "unknown"
)
