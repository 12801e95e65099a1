package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Input errors. No I/O has been attempted when these are returned.
const (
	// ErrCodeParse indicates malformed input such as an address spec or
	// action path that could not be parsed.
	ErrCodeParse ErrorCode = "PARSE_ERROR"
	// ErrCodeValidation indicates well-formed but semantically invalid
	// input, e.g. an unknown server state.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
)

// Transport errors.
const (
	// ErrCodeConnection indicates the remote endpoint was unreachable or
	// the connection failed mid-exchange.
	ErrCodeConnection ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the exchange exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Remote errors. The transport succeeded but the remote side refused.
const (
	// ErrCodeCommand indicates the remote command was rejected in-band.
	ErrCodeCommand ErrorCode = "COMMAND_REJECTED"
)

// Resource errors.
const (
	// ErrCodeNotFound indicates an unknown instance, backend, server or
	// controller.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeNotImplemented indicates an optional capability the resolved
	// plugin does not provide.
	ErrCodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"
	// ErrCodeDuplicatePlugin indicates a plugin name collision; the later
	// registration is discarded and the error is only ever logged.
	ErrCodeDuplicatePlugin ErrorCode = "DUPLICATE_PLUGIN"
)

// Internal errors.
const (
	// ErrCodeInternal indicates an unexpected agent-side failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)
