package digitizer

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when there is no input to reconstruct.
var ErrInvalidInput = errors.New("invalid diagram input")

// Stage names a step of the reconstruction pipeline.
type Stage string

const (
	StageValidate Stage = "validate"
	StageAxes     Stage = "axes"
	StagePlotArea Stage = "plot_area"
	StageLegends  Stage = "legends"
)

// ReconstructError reports a diagram whose reconstruction was abandoned.
type ReconstructError struct {
	Stage   Stage
	Diagram string
	Cause   error
}

func (e *ReconstructError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("reconstruct %s: %s stage failed: %v", e.Diagram, e.Stage, e.Cause)
	}
	return fmt.Sprintf("reconstruct %s: %s stage failed", e.Diagram, e.Stage)
}

func (e *ReconstructError) Unwrap() error {
	return e.Cause
}
