package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
)

// ********************************************************
// ********* LOGGING **************************************
// ********************************************************

var showDateTime bool
var defaultLogger *Logger
var logFile *os.File

type LogLevel int

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorOrange  = "\033[38;5;208m"
)

const (
	DEBUG LogLevel = iota
	INFO
	INFORM
	HIGHLIGHT
	WARN
	ERROR
	FATAL
)

// DefaultLogPath is where file output goes unless SetLogFile says otherwise
var DefaultLogPath = filepath.Join(os.TempDir(), "formscore.log")

type Logger struct {
	infoLogger  *log.Logger
	errorLogger *log.Logger
	level       LogLevel
	colour      bool
}

func init() {
	defaultLogger = NewLogger(INFO)
	showDateTime = false
}

func flags() int {
	if showDateTime {
		return log.Ldate | log.Ltime
	}
	return 0
}

func SetShowDateTime(value bool) {
	showDateTime = value
	defaultLogger.infoLogger.SetFlags(flags())
	defaultLogger.errorLogger.SetFlags(flags())
}

// SetLevel changes the minimum level written by the package level functions
func SetLevel(level LogLevel) {
	defaultLogger.level = level
}

// ParseLevel converts a name such as "debug" or "warn" into a LogLevel, defaulting to INFO
func ParseLevel(name string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DEBUG
	case "inform":
		return INFORM
	case "highlight":
		return HIGHLIGHT
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

// SetOutput points the default logger at arbitrary writers, colour codes are dropped
// when the writer is not a terminal-ish stream (tests use this with a bytes.Buffer)
func SetOutput(info, errs io.Writer, colour bool) {
	defaultLogger.infoLogger = log.New(info, "", flags())
	defaultLogger.errorLogger = log.New(errs, "", flags())
	defaultLogger.colour = colour
}

// SetLogOutput sets the output destination for logs
// 'c' for console, 'f' for file, 'b' for both
func SetLogOutput(outputType rune) error {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	var infoWriter, errorWriter io.Writer
	colour := true

	switch outputType {
	case 'c':
		infoWriter = os.Stdout
		errorWriter = os.Stderr
	case 'f', 'b':
		var err error
		logFile, err = os.OpenFile(DefaultLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", DefaultLogPath, err)
		}
		if outputType == 'f' {
			infoWriter = logFile
			errorWriter = logFile
			colour = false
		} else {
			infoWriter = io.MultiWriter(os.Stdout, logFile)
			errorWriter = io.MultiWriter(os.Stderr, logFile)
		}
	default:
		return fmt.Errorf("invalid log output type: %c", outputType)
	}

	SetOutput(infoWriter, errorWriter, colour)
	return nil
}

func NewLogger(level LogLevel) *Logger {
	return &Logger{
		infoLogger:  log.New(os.Stdout, "", flags()),
		errorLogger: log.New(os.Stderr, "", flags()),
		level:       level,
		colour:      true,
	}
}

func (l *Logger) log(level LogLevel, format string, v ...any) {
	if level < l.level {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "unknown"
		line = 0
	}
	file = filepath.Base(file)

	msg := format
	var jsonObjects []string
	if len(v) > 0 {
		var processed []string
		processed, jsonObjects = processArgs(v...)
		if len(processed) > 0 {
			msg = fmt.Sprintf("%s %s", format, strings.Join(processed, " "))
		}
	}

	start, end := "", ""
	if l.colour {
		start, end = level.colour(), colorReset
	}

	out := l.infoLogger
	if level >= ERROR {
		out = l.errorLogger
	}
	out.Println(fmt.Sprintf("[%s] %s:%d: %s%s%s", level.String(), file, line, start, msg, end))
	for _, obj := range jsonObjects {
		out.Println(fmt.Sprintf("[%s] %s:%d: %s%s%s", level.String(), file, line, start, obj, end))
	}
}

func (l LogLevel) colour() string {
	switch l {
	case DEBUG:
		return colorBlue
	case INFO:
		return colorGreen
	case INFORM:
		return colorMagenta
	case HIGHLIGHT:
		return colorCyan
	case WARN:
		return colorYellow
	case ERROR:
		return colorOrange
	case FATAL:
		return colorRed
	default:
		return colorReset
	}
}

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case INFORM:
		return "INFORM"
	case HIGHLIGHT:
		return "HIGHLIGHT"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// processArgs renders primitives inline and anything else (maps, structs, slices) as indented JSON
// on its own line
func processArgs(args ...any) ([]string, []string) {
	var primitives []string
	var jsonObjects []string

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			primitives = append(primitives, "nil")
		case float32:
			primitives = append(primitives, fmt.Sprintf("%.4f", v))
		case float64:
			primitives = append(primitives, fmt.Sprintf("%.4f", v))
		case string:
			primitives = append(primitives, v)
		case error:
			primitives = append(primitives, v.Error())
		case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			primitives = append(primitives, fmt.Sprintf("%v", v))
		case fmt.Stringer:
			primitives = append(primitives, v.String())
		default:
			jsonBytes, err := json.MarshalIndent(arg, "", "  ")
			if err != nil {
				primitives = append(primitives, fmt.Sprintf("%v", arg))
				continue
			}
			primitives = append(primitives, fmt.Sprintf("[Object of type %s]", reflect.TypeOf(arg)))
			jsonObjects = append(jsonObjects, string(jsonBytes))
		}
	}
	return primitives, jsonObjects
}

// Convenience methods using the default logger
func Debug(format string, v ...any) {
	defaultLogger.log(DEBUG, format, v...)
}

func Info(format string, v ...any) {
	defaultLogger.log(INFO, format, v...)
}

func Inform(format string, v ...any) {
	defaultLogger.log(INFORM, format, v...)
}

func Highlight(format string, v ...any) {
	defaultLogger.log(HIGHLIGHT, format, v...)
}

func Warn(format string, v ...any) {
	defaultLogger.log(WARN, format, v...)
}

func Error(format string, v ...any) {
	defaultLogger.log(ERROR, format, v...)
}

func Fatal(format string, v ...any) {
	defaultLogger.log(FATAL, format, v...)
	os.Exit(1)
}
