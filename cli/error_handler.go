package cli

import (
	"fmt"
	"os"

	"github.com/recaptools/recap/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{Verbose: verbose}
}

// Handle provides user-friendly error messages based on error code
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeParseFailure:
		if recapErr, ok := err.(*errors.RecapError); ok {
			fmt.Fprintf(os.Stderr, "Error: failed to parse %v at byte offset %v\n",
				recapErr.Details["path"], recapErr.Details["offset"])
			return err
		}

	case errors.ErrCodeBackendInference:
		if recapErr, ok := err.(*errors.RecapError); ok {
			fmt.Fprintf(os.Stderr, "Error: cannot infer backend for %v\n", recapErr.Details["path"])
			fmt.Fprintf(os.Stderr, "Known storage roots:\n")
			for key, value := range recapErr.Details {
				if len(key) > 5 && key[:5] == "root." {
					fmt.Fprintf(os.Stderr, "  %-8s %v\n", key[5:], value)
				}
			}
			fmt.Fprintf(os.Stderr, "Hint: pass --backend explicitly.\n")
			return err
		}

	case errors.ErrCodeEmptySession:
		fmt.Fprintf(os.Stderr, "Error: session contains no events.\n")
		return err

	case errors.ErrCodeConfigNotFound, errors.ErrCodeConfigInvalid:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if h.Verbose {
		if recapErr, ok := err.(*errors.RecapError); ok && len(recapErr.Details) > 0 {
			fmt.Fprintf(os.Stderr, "Details: %s\n", recapErr.ToJSON())
		}
	}
	return err
}
