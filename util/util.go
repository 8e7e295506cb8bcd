package util

import (
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

// Data is a generic map type for template rendering context.
type Data map[string]interface{}

// Render executes the given template with the provided variables.
func Render(tmpl *template.Template, variables Data) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, variables); err != nil {
		return "", errors.Wrap(err, "failed to render template")
	}
	return buf.String(), nil
}

// RenderString parses and executes the given template string with the provided variables.
func RenderString(tmplStr string, variables Data) (string, error) {
	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse template string")
	}
	return Render(tmpl, variables)
}

// EscapeShellArg wraps arg in single quotes so a POSIX shell treats it as one
// literal word. Embedded single quotes are closed, escaped, and reopened.
func EscapeShellArg(arg string) string {
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}

// GetenvOrDefault retrieves the value of the environment variable named by the key.
// If the variable is not present or empty, it returns the defaultValue.
func GetenvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// FirstNonEmpty returns the first non-empty string from a list of strings.
// If all strings are empty, it returns an empty string.
func FirstNonEmpty(strs ...string) string {
	for _, s := range strs {
		if s != "" {
			return s
		}
	}
	return ""
}

// TruncateString shortens a string to a maximum length, appending an ellipsis if truncation occurs.
// If the string is shorter than or equal to maxLength, it's returned unchanged.
// The ellipsis counts towards the maxLength. If maxLength is too small for the ellipsis,
// the string might be truncated more severely or only the ellipsis returned.
func TruncateString(s string, maxLength int, ellipsis string) string {
	if len(s) <= maxLength {
		return s
	}
	if maxLength <= len(ellipsis) {
		if maxLength < 0 {
			maxLength = 0
		}
		return ellipsis[:maxLength]
	}
	return s[:maxLength-len(ellipsis)] + ellipsis
}

// CombineErrors takes multiple errors and returns a single error.
// If no errors or all errors are nil, it returns nil.
// Otherwise, it returns a new error that concatenates the messages of non-nil errors.
func CombineErrors(errs ...error) error {
	var errStrings []string
	for _, err := range errs {
		if err != nil {
			errStrings = append(errStrings, err.Error())
		}
	}
	if len(errStrings) == 0 {
		return nil
	}
	return errors.Errorf("%s", strings.Join(errStrings, "; "))
}

// IsErrPipeClosed reports whether err looks like a read/write on a pipe whose
// other end (or the handle itself) is already closed. Closing a session races
// with its reader goroutine, so teardown paths tolerate these.
func IsErrPipeClosed(err error) bool {
	return errors.Is(err, os.ErrClosed) || // For os.Pipe
		errors.Is(err, io.ErrClosedPipe) || // For io.Pipe / net.Pipe
		errors.Is(err, io.EOF) || // Often signals closed pipe from reader's perspective
		(err != nil && strings.Contains(err.Error(), "file already closed")) ||
		(err != nil && strings.Contains(err.Error(), "pipe already closed")) ||
		(err != nil && strings.Contains(err.Error(), "use of closed"))
}
