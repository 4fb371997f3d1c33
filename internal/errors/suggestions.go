package errors

import "errors"

// Suggestions maps common errors to helpful suggestions.
var Suggestions = map[error]string{
	ErrUnknownProcedure: "Use 'stepwise list' to see available procedures.",
	ErrInvalidParams:    "Check the procedure's parameters with 'stepwise list --verbose'.",
	ErrInvalidSize:      "Arrays hold 2-100 values; grids are at most 50x80.",
	ErrInputTooLong:     "Strings are limited to 12 characters so the table stays readable.",
	ErrSpeedOutOfRange:  "Pick a delay between 5ms and 2s, e.g. --speed 50ms.",
	ErrUnknownPreset:    "Graph presets are simple, complex, tree, grid and dag.",
	ErrUnknownNode:      "Start and end must name nodes of the selected graph, e.g. A or F.",
	ErrSessionNotFound:  "List sessions with GET /api/sessions or create one with POST /api/sessions.",
	ErrSessionLimit:     "Delete an idle session with DELETE /api/sessions/{id} or raise server.max_sessions.",
	ErrFamilyMismatch:   "Race two procedures of the same family, e.g. 'stepwise race bubble quick'.",
	ErrNotATerminal:     "Use 'stepwise run' for non-interactive output.",
	ErrConfigInvalid:    "Check the config file or the STEPWISE_* environment variables.",
	ErrServerRunning:    "Stop it with 'stepwise serve stop' or pass a different --pid-file.",
	ErrServerNotRunning: "Start the API with 'stepwise serve'.",
}

// GetSuggestion returns a suggestion for an error, if available.
// A suggestion set on a UserError wins over the sentinel table.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	if ue, ok := AsUserError(err); ok && ue.Suggestion != "" {
		return ue.Suggestion
	}

	for knownErr, suggestion := range Suggestions {
		if errors.Is(err, knownErr) {
			return suggestion
		}
	}
	return ""
}

// CommandExamples provides example commands for common errors.
var CommandExamples = map[error][]string{
	ErrUnknownProcedure: {
		"stepwise list",
		"stepwise play quick",
	},
	ErrInvalidSize: {
		"stepwise play bubble --size 30",
		"stepwise play astar --rows 20 --cols 40",
	},
	ErrSpeedOutOfRange: {
		"stepwise play merge --speed 20ms",
		"stepwise play dijkstra --speed 500ms",
	},
}

// GetExamples returns example commands for an error.
func GetExamples(err error) []string {
	for knownErr, examples := range CommandExamples {
		if errors.Is(err, knownErr) {
			return examples
		}
	}
	return nil
}
