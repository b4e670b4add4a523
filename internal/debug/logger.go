package debug

import (
	"log"
	"os"
	"strings"
)

// Logger is the always-on trouble log for the storage and generation paths.
type Logger struct {
	file   *os.File
	logger *log.Logger
}

var globalLogger *Logger

// isTestMode detects if we're running under go test
func isTestMode() bool {
	for _, arg := range os.Args {
		if strings.Contains(arg, "test") || strings.HasSuffix(arg, ".test") {
			return true
		}
	}
	return false
}

func init() {
	var err error
	if isTestMode() {
		globalLogger = &Logger{
			file:   os.Stdout,
			logger: log.New(os.Stdout, "[DEBUG] ", log.LstdFlags|log.Lmicroseconds),
		}
	} else {
		globalLogger, err = NewLogger("galaxygame_debug.log")
		if err != nil {
			// Logging stays disabled if the file cannot be created
			globalLogger = nil
		}
	}
}

// NewLogger creates a debug logger appending to the named file.
func NewLogger(filename string) (*Logger, error) {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}

	return &Logger{
		file:   file,
		logger: log.New(file, "", log.LstdFlags|log.Lmicroseconds),
	}, nil
}

// Log writes a formatted debug message.
func Log(format string, args ...interface{}) {
	if globalLogger != nil {
		globalLogger.logger.Printf(format, args...)
	}
}

// LogError writes an error message with its context.
func LogError(err error, context string) {
	Log("ERROR in %s: %v", context, err)
}

// Close closes the debug logger file
func Close() {
	if globalLogger != nil && globalLogger.file != os.Stdout {
		globalLogger.file.Close()
	}
}
