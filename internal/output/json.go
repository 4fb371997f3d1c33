package output

import (
	"github.com/manav03panchal/stepwise/internal/engine"
	"github.com/manav03panchal/stepwise/internal/procedures"
)

// JSONFormatter provides JSON-specific formatting.
type JSONFormatter struct {
	*Formatter
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(f *Formatter) *JSONFormatter {
	return &JSONFormatter{Formatter: f}
}

// ProceduresResponse represents the procedure catalogue in JSON.
type ProceduresResponse struct {
	Procedures []*procedures.Spec `json:"procedures"`
	Count      int                `json:"count"`
}

// RunOutput represents a finished run in JSON.
type RunOutput struct {
	Procedure  string            `json:"procedure"`
	Params     procedures.Params `json:"params,omitempty"`
	RunID      string            `json:"run_id"`
	Outcome    engine.Outcome    `json:"outcome"`
	Steps      int               `json:"steps"`
	DurationMS int64             `json:"duration_ms"`
	SpeedMS    int64             `json:"speed_ms"`
	Counters   engine.Counters   `json:"counters"`
	Summary    string            `json:"summary,omitempty"`
	State      any               `json:"state,omitempty"`
	Error      string            `json:"error,omitempty"`
	Trace      []StepOutput      `json:"trace,omitempty"`
}

// StepOutput represents one recorded step in JSON.
type StepOutput struct {
	Step     int             `json:"step"`
	Line     int             `json:"line"`
	Source   string          `json:"source,omitempty"`
	Counters engine.Counters `json:"counters"`
}

// NewRunOutput creates a RunOutput from an instance's final frame.
func NewRunOutput(in procedures.Instance, f engine.Frame, withState bool) *RunOutput {
	out := &RunOutput{
		Procedure:  in.Spec().ID,
		Params:     in.Params(),
		RunID:      f.LastRun.RunID,
		Outcome:    f.LastRun.Outcome,
		Steps:      f.LastRun.Steps,
		DurationMS: f.LastRun.Duration().Milliseconds(),
		SpeedMS:    f.Flags.Speed.Milliseconds(),
		Counters:   f.Counters,
		Summary:    Summarize(f.State),
		Error:      f.LastRun.Err,
	}
	if withState {
		out.State = f.State
	}
	return out
}

// NewStepOutput creates a StepOutput from a frame seeked to step.
func NewStepOutput(spec *procedures.Spec, step int, f engine.Frame) StepOutput {
	return StepOutput{
		Step:     step,
		Line:     f.Line,
		Source:   spec.SourceLine(f.Line),
		Counters: f.Counters,
	}
}

// RaceOutput represents a race result in JSON.
type RaceOutput struct {
	Winner engine.Winner `json:"winner"`
	Left   *RunOutput    `json:"left"`
	Right  *RunOutput    `json:"right"`
}

// ErrorResponse represents an error in JSON.
type ErrorResponse struct {
	Status     string `json:"status"`
	Error      string `json:"error"`
	Category   string `json:"category,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// VersionOutput represents the version command output in JSON.
type VersionOutput struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
}

// PrintProcedures outputs the catalogue in JSON format.
func (j *JSONFormatter) PrintProcedures(specs []*procedures.Spec) error {
	if specs == nil {
		specs = []*procedures.Spec{}
	}
	return j.JSON(ProceduresResponse{Procedures: specs, Count: len(specs)})
}

// PrintError outputs an error in JSON format.
func (j *JSONFormatter) PrintError(err error, category, suggestion string) error {
	return j.JSON(ErrorResponse{
		Status:     "error",
		Error:      err.Error(),
		Category:   category,
		Suggestion: suggestion,
	})
}

// NewRaceOutput creates a RaceOutput from both instances' final frames.
func NewRaceOutput(left, right procedures.Instance, lf, rf engine.Frame, r engine.RaceResult) *RaceOutput {
	return &RaceOutput{
		Winner: r.Winner,
		Left:   NewRunOutput(left, lf, false),
		Right:  NewRunOutput(right, rf, false),
	}
}
