package xunconfig

// Version is the current xun engine version.
var Version = "0.1.0"

const SourceFileExt = ".xun"

// ConfigFileNames are the recognized project config filenames, checked in
// order by FindConfig.
var ConfigFileNames = []string{"xun.yaml", "xun.yml"}

// Store backend names recognized in the "store" field of xun.yaml.
const (
	MemStoreBackend    = "mem"
	SQLiteStoreBackend = "sqlite"
	RPCStoreBackend    = "rpc"
)

// Driver flavor names recognized in the "driver" field of xun.yaml.
const (
	SequentialDriver = "sequential"
	QueuedDriver     = "queued"
	RemoteDriver     = "remote"
)

// DefaultWorkers is the worker count used when xun.yaml omits "workers" or
// sets it to zero. internal/driver/queued.New itself treats a count <= 0
// as 1.
const DefaultWorkers = 4

// DefaultCacheDir is the cache directory used when xun.yaml omits
// "cache_dir", relative to the project config's own directory.
const DefaultCacheDir = ".xun"

// DefaultSQLiteFile is the sqlite database filename created inside the
// cache directory when the sqlite store backend is selected.
const DefaultSQLiteFile = "store.db"

// IsTestMode indicates the program is running under a unit test harness.
// Set once at startup.
var IsTestMode = false
