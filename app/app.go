package app

import (
	"sync"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/commonpool/pool"
	"github.com/commonpool/pool/errors"
)

// StoreApp executes invocations against a cacheable store, strictly one
// at a time. Every invocation runs in its own cache wrap: a successful
// delivery writes through, any error discards the wrap so no partial
// mutation ever becomes visible. Handlers may panic; the dispatcher
// converts a panic into ErrPanic and rolls back like any other error.
type StoreApp struct {
	mutex  sync.Mutex
	store  pool.CacheableKVStore
	router *Router
	logger log.Logger
}

// NewStoreApp wires the dispatcher to a store and a fully populated
// router.
func NewStoreApp(store pool.CacheableKVStore, router *Router) *StoreApp {
	return &StoreApp{
		store:  store,
		router: router,
		logger: log.NewNopLogger(),
	}
}

// WithLogger sets the logger, to make it easy to chain in
// initialization.
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.logger = logger
	return s
}

// Store exposes the backing store for read-only queries. Queries see
// fully delivered state only, never an in-flight wrap.
func (s *StoreApp) Store() pool.ReadOnlyKVStore {
	return s.store
}

// Check validates the transaction against current state without
// persisting anything.
func (s *StoreApp) Check(ctx pool.Context, tx pool.Tx) (res *pool.CheckResult, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	path, err := txPath(tx)
	if err != nil {
		return nil, err
	}
	wrap := s.store.CacheWrap()
	defer wrap.Discard()
	defer errors.Recover(&err)

	return s.router.Handler(path).Check(ctx, wrap, tx)
}

// Deliver executes the transaction. On success all its writes become
// visible atomically, on any error none do.
func (s *StoreApp) Deliver(ctx pool.Context, tx pool.Tx) (res *pool.DeliverResult, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	path, err := txPath(tx)
	if err != nil {
		return nil, err
	}
	wrap := s.store.CacheWrap()
	func() {
		defer errors.Recover(&err)
		res, err = s.router.Handler(path).Deliver(ctx, wrap, tx)
	}()
	if err != nil {
		wrap.Discard()
		s.logger.Info("delivery failed", "path", path, "err", err)
		return nil, err
	}
	wrap.Write()
	s.logger.Info("delivered", "path", path, "log", res.Log)
	return res, nil
}

func txPath(tx pool.Tx) (string, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return "", errors.Wrap(err, "cannot load msg")
	}
	if msg == nil {
		return "", errors.Wrap(errors.ErrMsg, "empty msg")
	}
	return msg.Path(), nil
}
