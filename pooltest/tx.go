package pooltest

import "github.com/commonpool/pool"

// Tx represents a transaction wrapping a single message.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg pool.Msg
	// Err if set is returned by any method call.
	Err error
}

var _ pool.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (pool.Msg, error) {
	return tx.Msg, tx.Err
}

// Msg is a mock message with a configurable path and validation result.
type Msg struct {
	// RoutePath is returned by the Path method, consumed by the router.
	RoutePath string
	// Err if set is returned by Validate.
	Err error
}

var _ pool.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}
