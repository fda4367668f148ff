package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/architect/internal/logger"
)

// ErrInterrupted is returned by interactive commands when the user aborts a prompt.
var ErrInterrupted = stderrors.New("interrupted")

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1.
// An interrupted prompt exits quietly with code 130.
func Fatal(err error) {
	if err == nil {
		return
	}
	if stderrors.Is(err, ErrInterrupted) {
		logger.Info("Command interrupted")
		os.Exit(130)
	}
	logger.Error("Command execution failed", "error", err)
	fmt.Fprintf(os.Stderr, "%s\n", Format(err))
	os.Exit(1)
}
