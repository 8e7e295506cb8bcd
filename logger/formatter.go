package logger

import (
	"bytes"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	resetColorCode = 0
	// Default field separator
	defaultFieldSeparator = " | "
	// Default timestamp format
	defaultTimestampFormat = time.RFC3339
)

// Formatter implements logrus.Formatter interface.
type Formatter struct {
	// TimestampFormat specifies the format of the timestamp. Default: time.RFC3339.
	TimestampFormat string
	// NoColors disables colorized output.
	NoColors bool
	// ForceColors forces colorized output, even if TTY is not detected (useful for some CI environments).
	ForceColors bool
	// DisableTimestamp disables timestamp output.
	DisableTimestamp bool
	// DisplayLevelName configures how log level names are displayed.
	DisplayLevelName LevelNameDisplayMode
	// ShowFullLevel shows the full level name (e.g., "WARNING") instead of a shortened version (e.g., "WARN").
	ShowFullLevel bool
	// HideKeys hides field keys, showing only field values.
	HideKeys bool
	// FieldsDisplayWithOrder specifies a list of field keys to display in a specific order.
	// Fields not in this list will be appended alphabetically after the ordered fields.
	// If nil or empty, all fields are displayed alphabetically.
	FieldsDisplayWithOrder []string
	// FieldSeparator defines the separator string used between fields. Default: " | ".
	FieldSeparator string
	// CallerFirst places caller information (if available) before the log level and message.
	CallerFirst bool
	// DisableCaller disables caller information output.
	DisableCaller bool
	// CustomCallerFormatter allows a custom function to format caller information.
	CustomCallerFormatter func(*runtime.Frame) string
}

// LevelNameDisplayMode defines how log level names are displayed.
type LevelNameDisplayMode int

const (
	// ShowAll shows all level names.
	ShowAll LevelNameDisplayMode = iota
	// ShowAboveWarn shows level names for WARN, ERROR, FATAL, PANIC.
	ShowAboveWarn
	// ShowAboveError shows level names for ERROR, FATAL, PANIC.
	ShowAboveError
	// HideAll hides all level names.
	HideAll
)

// Format formats the log entry.
func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := &bytes.Buffer{}

	// Timestamp
	if !f.DisableTimestamp {
		timestampFormat := f.TimestampFormat
		if timestampFormat == "" {
			timestampFormat = defaultTimestampFormat
		}
		b.WriteString(entry.Time.Format(timestampFormat))
		b.WriteString(" ")
	}

	// Caller info (if CallerFirst)
	if f.CallerFirst && !f.DisableCaller {
		f.writeCaller(b, entry)
		if entry.HasCaller() {
			b.WriteString(" ")
		}
	}

	// Level
	showLevelName := false
	switch f.DisplayLevelName {
	case ShowAll:
		showLevelName = true
	case ShowAboveWarn:
		showLevelName = entry.Level <= logrus.WarnLevel
	case ShowAboveError:
		showLevelName = entry.Level <= logrus.ErrorLevel
	case HideAll:
		showLevelName = false
	}

	useColors := !f.NoColors
	if f.ForceColors {
		useColors = true
	}

	if showLevelName {
		levelColor := getColorByLevel(entry.Level)
		if useColors {
			fmt.Fprintf(b, "\x1b[%dm", levelColor)
		}

		var levelStr string
		rawLevelStr := entry.Level.String()
		if f.ShowFullLevel {
			levelStr = rawLevelStr
		} else {
			if len(rawLevelStr) >= 4 {
				levelStr = rawLevelStr[:4]
			} else {
				levelStr = rawLevelStr
			}
		}
		levelStr = strings.ToUpper(levelStr)

		fmt.Fprintf(b, "[%s]", levelStr)

		if useColors {
			fmt.Fprintf(b, "\x1b[%dm", resetColorCode)
		}
		b.WriteString(" ")
	}

	// Fields
	fieldSeparator := f.FieldSeparator
	if fieldSeparator == "" {
		fieldSeparator = defaultFieldSeparator
	}

	if len(entry.Data) > 0 {
		b.WriteString("[")
		if len(f.FieldsDisplayWithOrder) == 0 {
			f.writeFieldsAlphabetically(b, entry, fieldSeparator)
		} else {
			f.writeOrderedFields(b, entry, fieldSeparator)
		}
		b.WriteString("] ")
	}

	// Message
	b.WriteString(entry.Message)

	// Caller info (if not CallerFirst and not disabled)
	if !f.CallerFirst && !f.DisableCaller && entry.HasCaller() {
		b.WriteString(" ")
		f.writeCaller(b, entry)
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func (f *Formatter) writeFieldsAlphabetically(b *bytes.Buffer, entry *logrus.Entry, separator string) {
	fields := make([]string, 0, len(entry.Data))
	for field := range entry.Data {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for i, field := range fields {
		f.writeKeyValue(b, field, entry.Data[field])
		if i < len(fields)-1 {
			b.WriteString(separator)
		}
	}
}

func (f *Formatter) writeOrderedFields(b *bytes.Buffer, entry *logrus.Entry, separator string) {
	displayedCount := 0
	totalFields := len(entry.Data)

	foundInOrder := make(map[string]bool)
	for _, field := range f.FieldsDisplayWithOrder {
		if value, ok := entry.Data[field]; ok {
			if displayedCount > 0 {
				b.WriteString(separator)
			}
			f.writeKeyValue(b, field, value)
			foundInOrder[field] = true
			displayedCount++
		}
	}

	if displayedCount < totalFields {
		remainingFields := make([]string, 0, totalFields-displayedCount)
		for field := range entry.Data {
			if !foundInOrder[field] {
				remainingFields = append(remainingFields, field)
			}
		}
		sort.Strings(remainingFields)

		for _, field := range remainingFields {
			if displayedCount > 0 {
				b.WriteString(separator)
			}
			f.writeKeyValue(b, field, entry.Data[field])
			displayedCount++
		}
	}
}

func (f *Formatter) writeKeyValue(b *bytes.Buffer, key string, value interface{}) {
	valStr := fmt.Sprintf("%v", value)
	if f.HideKeys {
		b.WriteString(valStr)
	} else {
		fmt.Fprintf(b, "%s:%s", key, valStr)
	}
}

func (f *Formatter) writeCaller(b *bytes.Buffer, entry *logrus.Entry) {
	if !entry.HasCaller() {
		return
	}
	if f.CustomCallerFormatter != nil {
		fmt.Fprint(b, f.CustomCallerFormatter(entry.Caller))
	} else {
		callerFile := filepath.Base(entry.Caller.File)
		callerFunc := filepath.Base(entry.Caller.Function)
		if parts := strings.Split(callerFunc, "."); len(parts) > 1 {
			callerFunc = parts[len(parts)-1]
		}
		fmt.Fprintf(b, "(%s:%d %s)", callerFile, entry.Caller.Line, callerFunc)
	}
}

func getColorByLevel(level logrus.Level) int {
	switch level {
	case logrus.TraceLevel:
		return colorGray
	case logrus.DebugLevel:
		return colorBlue
	case logrus.WarnLevel:
		return colorYellow
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return colorRed
	default: // InfoLevel
		return colorGray
	}
}

const (
	colorRed    = 31
	colorYellow = 33
	colorBlue   = 36
	colorGray   = 37
)
