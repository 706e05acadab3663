package xun

import (
	"github.com/google/uuid"

	"github.com/mrSundvoll/xun/internal/driver"
	"github.com/mrSundvoll/xun/internal/driver/queued"
	"github.com/mrSundvoll/xun/internal/driver/remoteworker"
	"github.com/mrSundvoll/xun/internal/function"
	"github.com/mrSundvoll/xun/internal/rpcstore"
	"github.com/mrSundvoll/xun/internal/store"
	"github.com/mrSundvoll/xun/internal/store/memstore"
	"github.com/mrSundvoll/xun/internal/store/sqlitestore"
	"github.com/mrSundvoll/xun/internal/xunconfig"
)

// Runner bundles the Driver and shared Accessor a project's xun.yaml
// selects (SPEC_FULL.md §3): memstore, sqlitestore, or rpcstore as the
// Store backend, and Sequential, queued.Queued, or
// remoteworker.RemoteWorker as the Driver flavor.
type Runner struct {
	Driver   driver.Driver
	Accessor *store.Accessor
}

// New builds a Runner from cfg. configDir is the directory containing
// xun.yaml, used to resolve cfg.CacheDir for the sqlite backend.
func New(cfg *xunconfig.Config, configDir string) (*Runner, error) {
	backing, err := newBackingStore(cfg, configDir)
	if err != nil {
		return nil, err
	}
	d, err := newDriver(cfg)
	if err != nil {
		return nil, err
	}
	return &Runner{Driver: d, Accessor: store.NewAccessor(backing)}, nil
}

func newBackingStore(cfg *xunconfig.Config, configDir string) (store.Store, error) {
	switch cfg.Store {
	case xunconfig.SQLiteStoreBackend:
		return sqlitestore.Open(cfg.SQLiteStorePath(configDir))
	case xunconfig.RPCStoreBackend:
		id, err := uuid.NewRandom()
		if err != nil {
			return nil, err
		}
		return rpcstore.Dial(cfg.RPCAddr, id)
	default:
		return memstore.New(), nil
	}
}

func newDriver(cfg *xunconfig.Config) (driver.Driver, error) {
	switch cfg.Driver {
	case xunconfig.QueuedDriver:
		return queued.New(cfg.Workers), nil
	case xunconfig.RemoteDriver:
		return remoteworker.Dial(cfg.WorkerAddrs)
	default:
		return driver.New(), nil
	}
}

// Run builds a Blueprint from img and args and executes it against the
// Runner's own Driver and Accessor — spec.md §4.9's `run(driver,
// store)`, specialized to one invocation end to end.
func (r *Runner) Run(img *function.Image, args ...any) (any, error) {
	return driver.Run(r.Driver, r.Accessor, img, args)
}

// Run is the zero-configuration entry point: a Sequential driver over
// a fresh in-memory store, for running one workflow without a project
// config.
func Run(img *function.Image, args ...any) (any, error) {
	return driver.Run(driver.New(), store.NewAccessor(memstore.New()), img, args)
}
