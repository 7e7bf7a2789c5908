package roadgraph

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownNode is returned when query references intersection which is not in the graph
	ErrUnknownNode = errors.New("unknown node")
	// ErrDisconnectedRoute is returned when origin and destination are in different components
	ErrDisconnectedRoute = errors.New("origin and destination are in different components")
	// ErrUnreachable is returned when one-way or turn restrictions leave no path inside the component
	ErrUnreachable = errors.New("destination is unreachable")
	// ErrGraphNotBuilt is returned when engine has no graph
	ErrGraphNotBuilt = errors.New("graph is not built")
	// ErrMalformedInput is returned when records reference missing entities or hold values out of range
	ErrMalformedInput = errors.New("malformed input")
	// ErrInternalInvariant indicates a defect, e.g. missing parent pointer during path reconstruction
	ErrInternalInvariant = errors.New("internal invariant violated")
)

// ErrorKind classifies errors returned by the engine
type ErrorKind uint16

const (
	ERROR_NONE = ErrorKind(iota)
	ERROR_UNKNOWN_NODE
	ERROR_DISCONNECTED_ROUTE
	ERROR_UNREACHABLE
	ERROR_GRAPH_NOT_BUILT
	ERROR_MALFORMED_INPUT
	ERROR_INTERNAL_INVARIANT
	ERROR_CANCELLED
	ERROR_OTHER
)

func (iotaIdx ErrorKind) String() string {
	return [...]string{"none", "unknown_node", "disconnected_route", "unreachable", "graph_not_built", "malformed_input", "internal_invariant", "cancelled", "other"}[iotaIdx]
}

// KindOf returns kind of (possibly wrapped) error
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ERROR_NONE
	case errors.Is(err, ErrUnknownNode):
		return ERROR_UNKNOWN_NODE
	case errors.Is(err, ErrDisconnectedRoute):
		return ERROR_DISCONNECTED_ROUTE
	case errors.Is(err, ErrUnreachable):
		return ERROR_UNREACHABLE
	case errors.Is(err, ErrGraphNotBuilt):
		return ERROR_GRAPH_NOT_BUILT
	case errors.Is(err, ErrMalformedInput):
		return ERROR_MALFORMED_INPUT
	case errors.Is(err, ErrInternalInvariant):
		return ERROR_INTERNAL_INVARIANT
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ERROR_CANCELLED
	default:
		return ERROR_OTHER
	}
}
