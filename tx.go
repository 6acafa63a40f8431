package pool

// Msg is a request processed by the engine within a single invocation.
// Messages are routed by their path.
type Msg interface {
	// Path returns the routing path for this message
	Path() string

	// Validate performs static sanity checks that need no state access
	Validate() error
}

// Tx represents a single invocation to be processed. It wraps exactly
// one message. How a transaction travelled to the engine (wire format,
// signatures, ...) is the transport's concern, not ours.
type Tx interface {
	// GetMsg returns the action we wish to perform
	GetMsg() (Msg, error)
}

// CheckResult captures any non-error abci result
// to make sure people use error for error cases
type CheckResult struct {
	// GasAllocated is the maximum units of work we allow this tx to perform
	GasAllocated int64
}

// DeliverResult captures the output of an executed invocation.
type DeliverResult struct {
	// Data is a machine-parseable return value, like id of created entity
	Data []byte
	// Log is human-readable informational string
	Log string
}

// Handler specifies a business logic triggered by a transaction. Check
// validates without persisting, Deliver performs the action.
type Handler interface {
	Check(ctx Context, db KVStore, tx Tx) (*CheckResult, error)
	Deliver(ctx Context, db KVStore, tx Tx) (*DeliverResult, error)
}

// Registry is an interface to register your handler,
// usually implemented by some Router
type Registry interface {
	Handle(path string, h Handler)
}
