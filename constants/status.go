package constants

// Stage is the canonical pipeline stage for a document run.
type Stage string

// Stable values (stored verbatim in the result store).
const (
	StageSegmenting       Stage = "SEGMENTING"        // splitting normalized text into clause spans
	StageClassifying      Stage = "CLASSIFYING"       // per-clause type + confidence
	StageExtractingFields Stage = "EXTRACTING_FIELDS" // single external extraction call per document
	StageAggregated       Stage = "AGGREGATED"        // terminal success (possibly degraded)
	StageFailed           Stage = "FAILED"            // terminal failure
)
