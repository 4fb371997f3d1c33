package runtime

import (
	"io"
	"strings"

	"github.com/manav03panchal/stepwise/internal/errors"
	"github.com/manav03panchal/stepwise/internal/output"
)

func configError(field, value string, cause error) error {
	return errors.NewUserErrorWithField(field, value, "invalid configuration value: "+cause.Error(), "").
		WithCause(errors.ErrConfigInvalid)
}

// FormatError formats an error with its suggestion and example commands.
func FormatError(err error) string {
	msg := errors.FormatByCategory(err)
	if examples := errors.GetExamples(err); len(examples) > 0 {
		msg += "\n\nExamples:\n  " + strings.Join(examples, "\n  ")
	}
	return msg
}

// ReportError writes err in the requested format and returns the process
// exit code for it. A nil err reports nothing and returns 0.
func ReportError(w io.Writer, format output.Format, err error) int {
	if err == nil {
		return 0
	}
	f := &output.Formatter{Writer: w, Format: format, ColorMode: output.ColorNever}
	if format == output.FormatJSON {
		_ = output.NewJSONFormatter(f).PrintError(err, errors.Classify(err).String(), errors.GetSuggestion(err))
	} else {
		f.Println("Error: " + FormatError(err))
	}
	return errors.ExitCode(err)
}
