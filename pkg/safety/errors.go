package safety

import (
	"errors"
	"fmt"
)

var (
	// ErrAnalysisFailed is matched by every AnalysisError.
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrTimeoutExceeded marks an analysis that took longer than
	// max_processing_time_ms. The result is still returned.
	ErrTimeoutExceeded = errors.New("processing time exceeded")
)

// Analysis stages reported in AnalysisError.Stage.
const (
	StageValidate     = "validate"
	StageToxicity     = "toxicity"
	StageEmotion      = "emotion"
	StageEducation    = "education"
	StageConversation = "conversation"
	StageBias         = "bias"
)

// AnalysisError reports which stage of an analysis failed.
type AnalysisError struct {
	Stage string
	Err   error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed at %s: %v", e.Stage, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrAnalysisFailed) true for any AnalysisError.
func (e *AnalysisError) Is(target error) bool {
	return target == ErrAnalysisFailed
}
