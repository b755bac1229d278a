package errors

// EngineError provides specialized error handling for the log-structured
// engine: index lookups, command replay, and compaction. This structure
// extends the base error system with engine-specific context while
// properly supporting method chaining through all base error methods.
type EngineError struct {
	// Embed the base error to inherit all standard error functionality
	// including error chaining, structured details, and error codes.
	*baseError

	// Identifies which key was being processed when the error occurred.
	key string

	// Identifies which log generation was involved, if applicable.
	generation uint64

	// Describes what engine operation was being performed when the
	// error occurred ("Get", "Remove", "Compact", "Replay", "Open", or the
	// command op "set"/"remove" when encoding a record fails).
	operation string
}

// NewEngineError creates a new engine-specific error with the provided context.
func NewEngineError(err error, code ErrorCode, msg string) *EngineError {
	return &EngineError{baseError: NewBaseError(err, code, msg)}
}

// Override base error methods to return *EngineError instead of *baseError.

// WithMessage updates the error message while maintaining the EngineError type.
func (ee *EngineError) WithMessage(msg string) *EngineError {
	ee.baseError.WithMessage(msg)
	return ee
}

// WithCode sets the error code while preserving the EngineError type.
func (ee *EngineError) WithCode(code ErrorCode) *EngineError {
	ee.baseError.WithCode(code)
	return ee
}

// WithDetail adds contextual information while maintaining the EngineError type.
func (ee *EngineError) WithDetail(key string, value any) *EngineError {
	ee.baseError.WithDetail(key, value)
	return ee
}

// WithKey records which key was being processed when the error occurred.
func (ee *EngineError) WithKey(key string) *EngineError {
	ee.key = key
	return ee
}

// WithGeneration captures which log generation was involved in the error.
func (ee *EngineError) WithGeneration(gen uint64) *EngineError {
	ee.generation = gen
	return ee
}

// WithOperation records what engine operation was being performed.
func (ee *EngineError) WithOperation(operation string) *EngineError {
	ee.operation = operation
	return ee
}

// Key returns the key that was being processed when the error occurred.
func (ee *EngineError) Key() string {
	return ee.key
}

// Generation returns the log generation associated with the error.
func (ee *EngineError) Generation() uint64 {
	return ee.generation
}

// Operation returns the name of the operation that was being performed.
func (ee *EngineError) Operation() string {
	return ee.operation
}

// Helper functions for creating common engine errors with appropriate context.

// NewKeyNotFoundError creates the error returned by Remove on an absent key.
// Get never returns this: an absent key from Get is a nil error with a
// false "found" result, per the engine's contract.
func NewKeyNotFoundError(key string) *EngineError {
	return NewEngineError(nil, ErrorCodeKeyNotFound, "key not found").
		WithKey(key).
		WithOperation("Remove")
}

// NewUnexpectedCommandError creates the error returned when a CommandPos
// decodes to a Remove record where a Set was expected — the index and log
// disagree, which indicates corruption.
func NewUnexpectedCommandError(key string, gen uint64) *EngineError {
	return NewEngineError(nil, ErrorCodeUnexpectedCommand, "index points at a Remove record").
		WithKey(key).
		WithGeneration(gen).
		WithOperation("Get")
}

// NewLogFileNotFoundError creates the error returned when the segment file
// for a generation cannot be opened, either for a compaction auxiliary
// reader or for a handle's reader cache during Get. The recorded
// operation is "Compact" in both cases.
func NewLogFileNotFoundError(gen uint64) *EngineError {
	return NewEngineError(nil, ErrorCodeLogFileNotFound, "log file not found for generation").
		WithGeneration(gen).
		WithOperation("Compact")
}

// NewEngineMismatchError creates the error returned at startup when the
// requested engine name conflicts with a directory's sentinel file.
func NewEngineMismatchError(requested, recorded string) *EngineError {
	return NewEngineError(
		nil, ErrorCodeEngineMismatch,
		"wrong engine: directory was previously opened with a different engine",
	).
		WithOperation("Open").
		WithDetail("requested", requested).
		WithDetail("recorded", recorded)
}

// NewCorruptedLogError creates an error for records that fail to decode
// during replay or a Get, or that decode during replay to a variant the
// codec does not recognize. The recorded operation is "Replay" in all cases.
func NewCorruptedLogError(gen uint64, cause error) *EngineError {
	return NewEngineError(cause, ErrorCodeSegmentCorrupted, "log segment contains an unreadable record").
		WithGeneration(gen).
		WithOperation("Replay")
}
