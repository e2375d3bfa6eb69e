package errors

// CommandError represents a command failure carrying the process exit code.
type CommandError struct {
	ExitCode    int
	CommonError string
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

// NewCommandError creates a new CommandError instance encapsulating the error message and exit code.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
	}
}
