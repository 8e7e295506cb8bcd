// logger.go
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/xmexec/common"
	"github.com/mensylisir/xmexec/file"
)

// Log is the global logger instance of XMLog.
var Log *XMLog

func init() {
	// Library callers may log before InitGlobalLogger runs (tests, embedded
	// use). Start with a plain console logger so Log is never nil.
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&Formatter{
		TimestampFormat:        "15:04:05",
		NoColors:               false,
		DisplayLevelName:       ShowAboveWarn,
		DisableCaller:          true,
		FieldsDisplayWithOrder: defaultFieldsOrder(),
	})
	logger.SetOutput(os.Stdout)
	Log = &XMLog{Logger: logger}
}

// XMLog wraps logrus.Logger for application-specific logging.
type XMLog struct {
	*logrus.Logger // Embed *logrus.Logger directly for direct access to all its methods
}

func defaultFieldsOrder() []string {
	return []string{
		common.ConnectionName, common.RunnerName, common.SessionName, common.CommandName,
	}
}

// InitGlobalLogger initializes the global Log variable.
func InitGlobalLogger(outputPath string, verbose bool, defaultLevel logrus.Level) error {
	logger := logrus.New()

	currentLogLevel := defaultLevel
	if verbose {
		currentLogLevel = logrus.DebugLevel
	}
	logger.SetLevel(currentLogLevel)
	logger.SetReportCaller(true)

	formatterDisplayLevelConfig := ShowAboveWarn
	if verbose {
		formatterDisplayLevelConfig = ShowAll
	}

	if outputPath != "" {
		if err := file.CreateDir(outputPath); err != nil {
			return fmt.Errorf("failed to create log output directory %s: %w", outputPath, err)
		}
		logFilePath := filepath.Join(outputPath, "xmexec.log")

		writer, err := rotatelogs.New(
			logFilePath+".%Y%m%d", // Daily rotation
			rotatelogs.WithLinkName(logFilePath),
			rotatelogs.WithMaxAge(7*24*time.Hour),
			rotatelogs.WithRotationTime(24*time.Hour),
		)
		if err != nil {
			return fmt.Errorf("failed to initialize rotatelogs for %s: %w", logFilePath, err)
		}

		fileFormatter := &Formatter{
			TimestampFormat:        "2006-01-02 15:04:05.000 MST",
			NoColors:               true,
			DisplayLevelName:       formatterDisplayLevelConfig,
			FieldsDisplayWithOrder: defaultFieldsOrder(),
			FieldSeparator:         " | ",
			DisableCaller:          false,
			CustomCallerFormatter: func(frame *runtime.Frame) string {
				return fmt.Sprintf(" [%s:%d %s]", filepath.Base(frame.File), frame.Line, filepath.Base(frame.Function))
			},
		}
		logger.SetFormatter(fileFormatter)

		logWriters := lfshook.WriterMap{}
		for _, level := range logrus.AllLevels {
			if logger.IsLevelEnabled(level) {
				logWriters[level] = writer
			}
		}
		if len(logWriters) > 0 {
			logger.Hooks.Add(lfshook.NewHook(logWriters, fileFormatter))
			// File logging goes through the hook; drop the default stream so
			// lines are not written twice.
			logger.SetOutput(io.Discard)
		}
	} else {
		consoleFormatter := &Formatter{
			TimestampFormat:        "15:04:05",
			NoColors:               false, // Enable colors for console
			DisplayLevelName:       formatterDisplayLevelConfig,
			DisableCaller:          true, // Caller info often too verbose for console
			FieldsDisplayWithOrder: defaultFieldsOrder(),
		}
		logger.SetFormatter(consoleFormatter)
		logger.SetOutput(os.Stdout)
	}

	Log = &XMLog{
		Logger: logger,
	}
	return nil
}

// NewXMLog creates a new instance of XMLog.
func NewXMLog(outputPath string, verbose bool, defaultLevel logrus.Level, forConsole bool) (*XMLog, error) {
	logger := logrus.New()
	currentLogLevel := defaultLevel
	if verbose {
		currentLogLevel = logrus.DebugLevel
	}
	logger.SetLevel(currentLogLevel)
	logger.SetReportCaller(true)

	formatterDisplayLevelConfig := ShowAboveWarn
	if verbose {
		formatterDisplayLevelConfig = ShowAll
	}

	var chosenFormatter *Formatter
	if forConsole {
		chosenFormatter = &Formatter{
			TimestampFormat:        "15:04:05",
			NoColors:               false,
			DisplayLevelName:       formatterDisplayLevelConfig,
			DisableCaller:          true,
			FieldsDisplayWithOrder: defaultFieldsOrder(),
		}
		logger.SetOutput(os.Stdout)
		logger.SetFormatter(chosenFormatter)
	} else if outputPath != "" {
		if err := file.CreateDir(outputPath); err != nil {
			return nil, fmt.Errorf("failed to create log output directory %s: %w", outputPath, err)
		}
		logFilePath := filepath.Join(outputPath, "instance.log")
		writer, err := rotatelogs.New(
			logFilePath+".%Y%m%d",
			rotatelogs.WithLinkName(logFilePath),
			rotatelogs.WithRotationTime(24*time.Hour),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize rotatelogs for instance: %w", err)
		}
		fileFormatter := &Formatter{
			TimestampFormat:        "2006-01-02 15:04:05.000 MST",
			NoColors:               true,
			DisplayLevelName:       formatterDisplayLevelConfig,
			FieldsDisplayWithOrder: defaultFieldsOrder(),
			DisableCaller:          false,
		}
		chosenFormatter = fileFormatter
		logger.SetFormatter(chosenFormatter)

		logWriters := lfshook.WriterMap{}
		for _, level := range logrus.AllLevels {
			if logger.IsLevelEnabled(level) {
				logWriters[level] = writer
			}
		}
		if len(logWriters) > 0 {
			logger.Hooks.Add(lfshook.NewHook(logWriters, fileFormatter))
			logger.SetOutput(io.Discard) // Discard default output, rely on hook
		}
	} else {
		// Default to a simple console logger if no output path and not explicitly for console
		chosenFormatter = &Formatter{
			NoColors:               false,
			DisplayLevelName:       ShowAll,
			FieldsDisplayWithOrder: defaultFieldsOrder(),
		}
		logger.SetFormatter(chosenFormatter)
		logger.SetOutput(os.Stdout)
	}

	return &XMLog{Logger: logger}, nil
}

// --- Internal Helper Methods ---
func (xl *XMLog) logWithStandardFields(level logrus.Level, fixedFields logrus.Fields, message string, dynamicFields ...logrus.Fields) {
	entry := xl.Logger.WithFields(fixedFields)
	if len(dynamicFields) > 0 && dynamicFields[0] != nil {
		entry = entry.WithFields(dynamicFields[0])
	}
	switch level {
	case logrus.TraceLevel:
		entry.Trace(message)
	case logrus.DebugLevel:
		entry.Debug(message)
	case logrus.InfoLevel:
		entry.Info(message)
	case logrus.WarnLevel:
		entry.Warn(message)
	case logrus.ErrorLevel:
		entry.Error(message)
	case logrus.FatalLevel:
		entry.Fatal(message)
	default:
		entry.Print(message)
	}
}

func (xl *XMLog) logfWithStandardFields(level logrus.Level, fixedFields logrus.Fields, format string, args []interface{}, dynamicFields ...logrus.Fields) {
	entry := xl.Logger.WithFields(fixedFields)
	if len(dynamicFields) > 0 && dynamicFields[0] != nil {
		entry = entry.WithFields(dynamicFields[0])
	}
	switch level {
	case logrus.TraceLevel:
		entry.Tracef(format, args...)
	case logrus.DebugLevel:
		entry.Debugf(format, args...)
	case logrus.InfoLevel:
		entry.Infof(format, args...)
	case logrus.WarnLevel:
		entry.Warnf(format, args...)
	case logrus.ErrorLevel:
		entry.Errorf(format, args...)
	case logrus.FatalLevel:
		entry.Fatalf(format, args...)
	default:
		entry.Printf(format, args...)
	}
}

// --- Connection Context Logging ---
func (xl *XMLog) TraceConnection(connectionName string, message string, dynamicFields ...logrus.Fields) {
	xl.logWithStandardFields(logrus.TraceLevel, logrus.Fields{common.ConnectionName: connectionName}, message, dynamicFields...)
}
func (xl *XMLog) TracefConnection(connectionName string, format string, args ...interface{}) {
	xl.logfWithStandardFields(logrus.TraceLevel, logrus.Fields{common.ConnectionName: connectionName}, format, args)
}
func (xl *XMLog) DebugConnection(connectionName string, message string, dynamicFields ...logrus.Fields) {
	xl.logWithStandardFields(logrus.DebugLevel, logrus.Fields{common.ConnectionName: connectionName}, message, dynamicFields...)
}
func (xl *XMLog) DebugfConnection(connectionName string, format string, args ...interface{}) {
	xl.logfWithStandardFields(logrus.DebugLevel, logrus.Fields{common.ConnectionName: connectionName}, format, args)
}
func (xl *XMLog) InfoConnection(connectionName string, message string, dynamicFields ...logrus.Fields) {
	xl.logWithStandardFields(logrus.InfoLevel, logrus.Fields{common.ConnectionName: connectionName}, message, dynamicFields...)
}
func (xl *XMLog) InfofConnection(connectionName string, format string, args ...interface{}) {
	xl.logfWithStandardFields(logrus.InfoLevel, logrus.Fields{common.ConnectionName: connectionName}, format, args)
}
func (xl *XMLog) WarnConnection(connectionName string, message string, dynamicFields ...logrus.Fields) {
	xl.logWithStandardFields(logrus.WarnLevel, logrus.Fields{common.ConnectionName: connectionName}, message, dynamicFields...)
}
func (xl *XMLog) WarnfConnection(connectionName string, format string, args ...interface{}) {
	xl.logfWithStandardFields(logrus.WarnLevel, logrus.Fields{common.ConnectionName: connectionName}, format, args)
}
func (xl *XMLog) ErrorConnection(connectionName string, err error, message string, dynamicFields ...logrus.Fields) {
	fixedFields := logrus.Fields{common.ConnectionName: connectionName}
	if err != nil {
		fixedFields["error"] = err
	}
	xl.logWithStandardFields(logrus.ErrorLevel, fixedFields, message, dynamicFields...)
}
func (xl *XMLog) ErrorfConnection(connectionName string, err error, format string, args ...interface{}) {
	fixedFields := logrus.Fields{common.ConnectionName: connectionName}
	if err != nil {
		fixedFields["error"] = err
	}
	xl.logfWithStandardFields(logrus.ErrorLevel, fixedFields, format, args)
}
func (xl *XMLog) FatalConnection(connectionName string, err error, message string, dynamicFields ...logrus.Fields) {
	fixedFields := logrus.Fields{common.ConnectionName: connectionName}
	if err != nil {
		fixedFields["error"] = err
	}
	xl.logWithStandardFields(logrus.FatalLevel, fixedFields, message, dynamicFields...)
}
func (xl *XMLog) FatalfConnection(connectionName string, err error, format string, args ...interface{}) {
	fixedFields := logrus.Fields{common.ConnectionName: connectionName}
	if err != nil {
		fixedFields["error"] = err
	}
	xl.logfWithStandardFields(logrus.FatalLevel, fixedFields, format, args)
}

// --- Runner Context Logging ---
func (xl *XMLog) TraceRunner(runnerName string, message string, dynamicFields ...logrus.Fields) {
	xl.logWithStandardFields(logrus.TraceLevel, logrus.Fields{common.RunnerName: runnerName}, message, dynamicFields...)
}
func (xl *XMLog) TracefRunner(runnerName string, format string, args ...interface{}) {
	xl.logfWithStandardFields(logrus.TraceLevel, logrus.Fields{common.RunnerName: runnerName}, format, args)
}
func (xl *XMLog) DebugRunner(runnerName string, message string, dynamicFields ...logrus.Fields) {
	xl.logWithStandardFields(logrus.DebugLevel, logrus.Fields{common.RunnerName: runnerName}, message, dynamicFields...)
}
func (xl *XMLog) DebugfRunner(runnerName string, format string, args ...interface{}) {
	xl.logfWithStandardFields(logrus.DebugLevel, logrus.Fields{common.RunnerName: runnerName}, format, args)
}
func (xl *XMLog) InfoRunner(runnerName string, message string, dynamicFields ...logrus.Fields) {
	xl.logWithStandardFields(logrus.InfoLevel, logrus.Fields{common.RunnerName: runnerName}, message, dynamicFields...)
}
func (xl *XMLog) InfofRunner(runnerName string, format string, args ...interface{}) {
	xl.logfWithStandardFields(logrus.InfoLevel, logrus.Fields{common.RunnerName: runnerName}, format, args)
}
func (xl *XMLog) WarnRunner(runnerName string, message string, dynamicFields ...logrus.Fields) {
	xl.logWithStandardFields(logrus.WarnLevel, logrus.Fields{common.RunnerName: runnerName}, message, dynamicFields...)
}
func (xl *XMLog) WarnfRunner(runnerName string, format string, args ...interface{}) {
	xl.logfWithStandardFields(logrus.WarnLevel, logrus.Fields{common.RunnerName: runnerName}, format, args)
}
func (xl *XMLog) ErrorRunner(runnerName string, err error, message string, dynamicFields ...logrus.Fields) {
	fixedFields := logrus.Fields{common.RunnerName: runnerName}
	if err != nil {
		fixedFields["error"] = err
	}
	xl.logWithStandardFields(logrus.ErrorLevel, fixedFields, message, dynamicFields...)
}
func (xl *XMLog) ErrorfRunner(runnerName string, err error, format string, args ...interface{}) {
	fixedFields := logrus.Fields{common.RunnerName: runnerName}
	if err != nil {
		fixedFields["error"] = err
	}
	xl.logfWithStandardFields(logrus.ErrorLevel, fixedFields, format, args)
}
func (xl *XMLog) FatalRunner(runnerName string, err error, message string, dynamicFields ...logrus.Fields) {
	fixedFields := logrus.Fields{common.RunnerName: runnerName}
	if err != nil {
		fixedFields["error"] = err
	}
	xl.logWithStandardFields(logrus.FatalLevel, fixedFields, message, dynamicFields...)
}
func (xl *XMLog) FatalfRunner(runnerName string, err error, format string, args ...interface{}) {
	fixedFields := logrus.Fields{common.RunnerName: runnerName}
	if err != nil {
		fixedFields["error"] = err
	}
	xl.logfWithStandardFields(logrus.FatalLevel, fixedFields, format, args)
}

// --- Session Context Logging ---
func (xl *XMLog) TraceSession(sessionID string, message string, dynamicFields ...logrus.Fields) {
	xl.logWithStandardFields(logrus.TraceLevel, logrus.Fields{common.SessionName: sessionID}, message, dynamicFields...)
}
func (xl *XMLog) TracefSession(sessionID string, format string, args ...interface{}) {
	xl.logfWithStandardFields(logrus.TraceLevel, logrus.Fields{common.SessionName: sessionID}, format, args)
}
func (xl *XMLog) DebugSession(sessionID string, message string, dynamicFields ...logrus.Fields) {
	xl.logWithStandardFields(logrus.DebugLevel, logrus.Fields{common.SessionName: sessionID}, message, dynamicFields...)
}
func (xl *XMLog) DebugfSession(sessionID string, format string, args ...interface{}) {
	xl.logfWithStandardFields(logrus.DebugLevel, logrus.Fields{common.SessionName: sessionID}, format, args)
}
func (xl *XMLog) InfoSession(sessionID string, message string, dynamicFields ...logrus.Fields) {
	xl.logWithStandardFields(logrus.InfoLevel, logrus.Fields{common.SessionName: sessionID}, message, dynamicFields...)
}
func (xl *XMLog) InfofSession(sessionID string, format string, args ...interface{}) {
	xl.logfWithStandardFields(logrus.InfoLevel, logrus.Fields{common.SessionName: sessionID}, format, args)
}
func (xl *XMLog) WarnSession(sessionID string, message string, dynamicFields ...logrus.Fields) {
	xl.logWithStandardFields(logrus.WarnLevel, logrus.Fields{common.SessionName: sessionID}, message, dynamicFields...)
}
func (xl *XMLog) WarnfSession(sessionID string, format string, args ...interface{}) {
	xl.logfWithStandardFields(logrus.WarnLevel, logrus.Fields{common.SessionName: sessionID}, format, args)
}
func (xl *XMLog) ErrorSession(sessionID string, err error, message string, dynamicFields ...logrus.Fields) {
	fixedFields := logrus.Fields{common.SessionName: sessionID}
	if err != nil {
		fixedFields["error"] = err
	}
	xl.logWithStandardFields(logrus.ErrorLevel, fixedFields, message, dynamicFields...)
}
func (xl *XMLog) ErrorfSession(sessionID string, err error, format string, args ...interface{}) {
	fixedFields := logrus.Fields{common.SessionName: sessionID}
	if err != nil {
		fixedFields["error"] = err
	}
	xl.logfWithStandardFields(logrus.ErrorLevel, fixedFields, format, args)
}
func (xl *XMLog) FatalSession(sessionID string, err error, message string, dynamicFields ...logrus.Fields) {
	fixedFields := logrus.Fields{common.SessionName: sessionID}
	if err != nil {
		fixedFields["error"] = err
	}
	xl.logWithStandardFields(logrus.FatalLevel, fixedFields, message, dynamicFields...)
}
func (xl *XMLog) FatalfSession(sessionID string, err error, format string, args ...interface{}) {
	fixedFields := logrus.Fields{common.SessionName: sessionID}
	if err != nil {
		fixedFields["error"] = err
	}
	xl.logfWithStandardFields(logrus.FatalLevel, fixedFields, format, args)
}

// --- General Purpose Structured Log with Level ---
// Debug logs a message at level Debug on the standard logger.
func (xl *XMLog) Debug(args ...interface{}) {
	xl.Logger.Debug(args...)
}

// Debugf logs a formatted message at level Debug on the standard logger.
func (xl *XMLog) Debugf(format string, args ...interface{}) {
	xl.Logger.Debugf(format, args...)
}

// Info logs a message at level Info on the standard logger.
func (xl *XMLog) Info(args ...interface{}) {
	xl.Logger.Info(args...)
}

// Infof logs a formatted message at level Info on the standard logger.
func (xl *XMLog) Infof(format string, args ...interface{}) {
	xl.Logger.Infof(format, args...)
}

// Warn logs a message at level Warn on the standard logger.
func (xl *XMLog) Warn(args ...interface{}) {
	xl.Logger.Warn(args...)
}

// Warnf logs a formatted message at level Warn on the standard logger.
func (xl *XMLog) Warnf(format string, args ...interface{}) {
	xl.Logger.Warnf(format, args...)
}

// Error logs a message at level Error on the standard logger.
func (xl *XMLog) Error(args ...interface{}) {
	xl.Logger.Error(args...)
}

// Errorf logs a formatted message at level Error on the standard logger.
func (xl *XMLog) Errorf(format string, args ...interface{}) {
	xl.Logger.Errorf(format, args...)
}

// Fatal logs a message at level Fatal on the standard logger then the process will exit.
func (xl *XMLog) Fatal(args ...interface{}) {
	xl.Logger.Fatal(args...)
}

// Fatalf logs a formatted message at level Fatal on the standard logger then the process will exit.
func (xl *XMLog) Fatalf(format string, args ...interface{}) {
	xl.Logger.Fatalf(format, args...)
}

// Trace logs a message at level Trace on the standard logger.
func (xl *XMLog) Trace(args ...interface{}) {
	xl.Logger.Trace(args...)
}

// Tracef logs a formatted message at level Trace on the standard logger.
func (xl *XMLog) Tracef(format string, args ...interface{}) {
	xl.Logger.Tracef(format, args...)
}

// Print logs a message at the Print level (typically Info).
func (xl *XMLog) Print(args ...interface{}) {
	xl.Logger.Print(args...)
}

// Printf logs a formatted message at the Print level.
func (xl *XMLog) Printf(format string, args ...interface{}) {
	xl.Logger.Printf(format, args...)
}

// LogAtLevel provides a general way to log with a specific level, message, and fields.
func (xl *XMLog) LogAtLevel(level logrus.Level, message string, fields logrus.Fields) {
	xl.WithFields(fields).Log(level, message)
}

// LogfAtLevel provides a general way to log a formatted message with a specific level and fields.
func (xl *XMLog) LogfAtLevel(level logrus.Level, fields logrus.Fields, format string, args ...interface{}) {
	xl.WithFields(fields).Logf(level, format, args...)
}
