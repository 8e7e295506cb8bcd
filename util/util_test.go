// util_test.go
package util

import (
	"fmt"
	"io"
	"os"
	"testing"
	"text/template"

	"github.com/pkg/errors"
)

func TestRender(t *testing.T) {
	tmplStr := "Hello, {{.Name}}! You are {{.Age}} years old."
	tmpl, err := template.New("test").Parse(tmplStr)
	if err != nil {
		t.Fatalf("Failed to parse template: %v", err)
	}

	tests := []struct {
		name      string
		tmpl      *template.Template
		variables Data
		want      string
		wantErr   bool
	}{
		{
			name:      "Simple render",
			tmpl:      tmpl,
			variables: Data{"Name": "World", "Age": 30},
			want:      "Hello, World! You are 30 years old.",
			wantErr:   false,
		},
		{
			name:      "Missing variable",
			tmpl:      tmpl,
			variables: Data{"Name": "Test"}, // Age is missing, template will insert <no value>
			want:      "Hello, Test! You are <no value> years old.",
			wantErr:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.tmpl, tt.variables)
			if (err != nil) != tt.wantErr {
				t.Errorf("Render() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("Render() got = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderString(t *testing.T) {
	tests := []struct {
		name      string
		tmplStr   string
		variables Data
		want      string
		wantErr   bool
	}{
		{
			name:      "Simple render string",
			tmplStr:   "Amount: {{.Value}}",
			variables: Data{"Value": 100},
			want:      "Amount: 100",
			wantErr:   false,
		},
		{
			name:      "Invalid template string",
			tmplStr:   "Hello, {{.Name", // Unclosed brace
			variables: Data{"Name": "Test"},
			want:      "",
			wantErr:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderString(tt.tmplStr, tt.variables)
			if (err != nil) != tt.wantErr {
				t.Errorf("RenderString() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("RenderString() got = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEscapeShellArg(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want string
	}{
		{"Plain word", "hello", `'hello'`},
		{"Spaces", "hello world", `'hello world'`},
		{"Empty", "", `''`},
		{"Single quote", "it's", `'it'\''s'`},
		{"Only quotes", "''", `''\'''\'''`},
		{"Double quotes pass through", `say "hi"`, `'say "hi"'`},
		{"Substitution stays literal", `$(whoami)`, `'$(whoami)'`},
		{"Backticks stay literal", "`id`", "'`id`'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeShellArg(tt.arg); got != tt.want {
				t.Errorf("EscapeShellArg() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetenvOrDefault(t *testing.T) {
	const testEnvKey = "MY_TEST_ENV_VAR_XYZ123_UTIL" // Unique key
	const defaultValue = "this_is_default_val"
	const setValue = "this_is_a_set_value"

	originalValue, wasSet := os.LookupEnv(testEnvKey) // Save original state
	t.Cleanup(func() {                                // Restore original state after test
		if wasSet {
			os.Setenv(testEnvKey, originalValue)
		} else {
			os.Unsetenv(testEnvKey)
		}
	})

	os.Unsetenv(testEnvKey)
	if got := GetenvOrDefault(testEnvKey, defaultValue); got != defaultValue {
		t.Errorf("GetenvOrDefault() got %q, want %q when var not set", got, defaultValue)
	}

	os.Setenv(testEnvKey, "")
	if got := GetenvOrDefault(testEnvKey, defaultValue); got != defaultValue {
		t.Errorf("GetenvOrDefault() got %q, want %q when var is empty string", got, defaultValue)
	}

	os.Setenv(testEnvKey, setValue)
	if got := GetenvOrDefault(testEnvKey, defaultValue); got != setValue {
		t.Errorf("GetenvOrDefault() got %q, want %q when var is set", got, setValue)
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name      string
		s         string
		maxLength int
		ellipsis  string
		want      string
	}{
		{"No truncation", "hello", 10, "...", "hello"},
		{"Exact length", "hello", 5, "...", "hello"},
		{"Simple truncation", "hello world", 8, "...", "hello..."},
		{"Short maxLength for ellipsis", "hello world", 3, "...", "..."},
		{"maxLength smaller than ellipsis", "hello world", 2, "...", ".."},
		{"maxLength zero", "hello world", 0, "...", ""},
		{"Empty string", "", 5, "...", ""},
		{"Empty ellipsis", "hello world", 5, "", "hello"},
		{"maxLength negative", "hello world", -1, "...", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateString(tt.s, tt.maxLength, tt.ellipsis); got != tt.want {
				t.Errorf("TruncateString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCombineErrors(t *testing.T) {
	err1 := fmt.Errorf("error one")
	err2 := fmt.Errorf("error two")

	tests := []struct {
		name string
		errs []error
		want string
	}{
		{"No errors", []error{}, ""},
		{"Nil errors", []error{nil, nil}, ""},
		{"One error", []error{err1}, "error one"},
		{"Multiple errors", []error{err1, err2}, "error one; error two"},
		{"Mixed nil and errors", []error{nil, err1, nil, err2}, "error one; error two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotErr := CombineErrors(tt.errs...)
			if tt.want == "" {
				if gotErr != nil {
					t.Errorf("CombineErrors() got error %v, want nil", gotErr)
				}
			} else {
				if gotErr == nil {
					t.Errorf("CombineErrors() got nil, want error containing %q", tt.want)
				} else if gotErr.Error() != tt.want {
					t.Errorf("CombineErrors() got error string %q, want %q", gotErr.Error(), tt.want)
				}
			}
		})
	}
}

func TestFirstNonEmpty(t *testing.T) {
	tests := []struct {
		name string
		strs []string
		want string
	}{
		{"All empty", []string{"", "", ""}, ""},
		{"First non-empty", []string{"", "hello", "world"}, "hello"},
		{"First is non-empty", []string{"first", "second"}, "first"},
		{"Last non-empty", []string{"", "", "last"}, "last"},
		{"No args", []string{}, ""},
		{"Single empty", []string{""}, ""},
		{"Single non-empty", []string{"single"}, "single"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirstNonEmpty(tt.strs...); got != tt.want {
				t.Errorf("FirstNonEmpty() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsErrPipeClosed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"Nil", nil, false},
		{"os.ErrClosed", os.ErrClosed, true},
		{"io.ErrClosedPipe", io.ErrClosedPipe, true},
		{"io.EOF", io.EOF, true},
		{"Wrapped os.ErrClosed", errors.Wrap(os.ErrClosed, "read pipe"), true},
		{"Wrapped io.EOF", errors.Wrap(io.EOF, "read reply"), true},
		{"File already closed text", fmt.Errorf("write |1: file already closed"), true},
		{"Pipe already closed text", fmt.Errorf("pipe already closed"), true},
		{"Closed network connection text", fmt.Errorf("use of closed network connection"), true},
		{"Unrelated error", fmt.Errorf("connection reset by peer"), false},
		{"Plain failure", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsErrPipeClosed(tt.err); got != tt.want {
				t.Errorf("IsErrPipeClosed(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
