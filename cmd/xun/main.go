// Command xun is the CLI over pkg/xun: decompose, graph, and run one
// workflow entry point, or serve a store/worker process for a
// distributed run (SPEC_FULL.md §1/§3).
//
// decompose, graph, and run all operate on a workflow entry point built
// by some other Go program and exposed through a Go plugin (-buildmode
// plugin): a .so file exporting a package-level
//
//	func Image() (*function.Image, error)
//
// symbol named Image. This is the idiomatic Go stand-in for "load a
// workflow by name" in a system with no runtime script parser (spec.md
// assumes a host AST handed to it, not a text format this binary could
// read) — the same role plugin.Open plays for Go CLI tools that load
// handler code dynamically.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"plugin"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"google.golang.org/grpc"

	"github.com/mrSundvoll/xun/internal/blueprint"
	"github.com/mrSundvoll/xun/internal/driver"
	"github.com/mrSundvoll/xun/internal/driver/remoteworker"
	"github.com/mrSundvoll/xun/internal/function"
	"github.com/mrSundvoll/xun/internal/rpcstore"
	"github.com/mrSundvoll/xun/internal/store"
	"github.com/mrSundvoll/xun/internal/store/memstore"
	"github.com/mrSundvoll/xun/internal/store/sqlitestore"
	"github.com/mrSundvoll/xun/internal/xunconfig"
	"github.com/mrSundvoll/xun/pkg/xun"
)

var colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func color(code, s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

func usage() {
	fmt.Fprintf(os.Stderr, `xun %s - workflow engine CLI

Usage:
  xun decompose -plugin <path.so> [args...]   print a function's decomposed source
  xun graph     -plugin <path.so> [args...]   print the blueprint call graph
  xun run       -plugin <path.so> [args...]   build and execute a blueprint
  xun serve store  [-addr host:port] [-backend mem|sqlite]
  xun serve worker -plugin <path.so> -addr host:port [args...]

args are JSON values, one per CLI argument (e.g. 5 "hello" [1,2,3]).
`, xunconfig.Version)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "decompose":
		err = runDecompose(os.Args[2:])
	case "graph":
		err = runGraph(os.Args[2:])
	case "run":
		err = runRun(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "-help", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Printf("xun: %v", err)
		os.Exit(1)
	}
}

// parseFlags pulls "-plugin <path>" and "-addr <addr>" out of args,
// wherever they appear, returning what remains as the positional
// argument list.
func parseFlags(args []string) (pluginPath, addr string, rest []string) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-plugin":
			if i+1 < len(args) {
				pluginPath = args[i+1]
				i++
			}
		case "-addr":
			if i+1 < len(args) {
				addr = args[i+1]
				i++
			}
		default:
			rest = append(rest, args[i])
		}
	}
	return
}

func loadImage(pluginPath string) (*function.Image, error) {
	if pluginPath == "" {
		return nil, fmt.Errorf("-plugin <path.so> is required")
	}
	p, err := plugin.Open(pluginPath)
	if err != nil {
		return nil, fmt.Errorf("opening plugin %s: %w", pluginPath, err)
	}
	sym, err := p.Lookup("Image")
	if err != nil {
		return nil, fmt.Errorf("plugin %s does not export Image: %w", pluginPath, err)
	}
	fn, ok := sym.(func() (*function.Image, error))
	if !ok {
		return nil, fmt.Errorf("plugin %s: Image has the wrong signature, want func() (*function.Image, error)", pluginPath)
	}
	return fn()
}

func parseArgs(raw []string) ([]any, error) {
	args := make([]any, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal([]byte(r), &args[i]); err != nil {
			return nil, fmt.Errorf("argument %d (%q) is not valid JSON: %w", i, r, err)
		}
	}
	return args, nil
}

func runDecompose(rawArgs []string) error {
	pluginPath, _, _ := parseFlags(rawArgs)
	img, err := loadImage(pluginPath)
	if err != nil {
		return err
	}
	fmt.Println(color("1", img.Description.QualifiedName))
	fmt.Println(img.Description.Source())
	fmt.Printf("%s %s\n", color("2", "hash:"), img.Hash())
	return nil
}

func runGraph(rawArgs []string) error {
	pluginPath, _, rest := parseFlags(rawArgs)
	img, err := loadImage(pluginPath)
	if err != nil {
		return err
	}
	args, err := parseArgs(rest)
	if err != nil {
		return err
	}
	bp, err := blueprint.Build(img, args)
	if err != nil {
		return err
	}
	order, err := bp.Graph.TopoSort()
	if err != nil {
		return err
	}
	for i, node := range order {
		fmt.Printf("%3d  %s %v\n", i, color("36", node.Function), node.Args)
	}
	fmt.Printf("%s %s%v\n", color("2", "entry:"), bp.Entry.Function, bp.Entry.Args)
	return nil
}

func runRun(rawArgs []string) error {
	pluginPath, _, rest := parseFlags(rawArgs)
	img, err := loadImage(pluginPath)
	if err != nil {
		return err
	}
	args, err := parseArgs(rest)
	if err != nil {
		return err
	}

	runner, err := openProjectRunner()
	if err != nil {
		return err
	}

	start := time.Now()
	out, err := runner.Run(img, args...)
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(out)
	size := "?"
	if err == nil {
		size = humanize.Bytes(uint64(len(encoded)))
	}
	log.Printf("ran %s in %s, result %s", img.Description.QualifiedName, time.Since(start).Round(time.Millisecond), size)
	fmt.Println(string(encoded))
	return nil
}

// openProjectRunner builds a xun.Runner from the nearest xun.yaml, or
// falls back to the zero-configuration in-memory Sequential runner if
// none is found.
func openProjectRunner() (*xun.Runner, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	path, err := xunconfig.FindConfig(cwd)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return &xun.Runner{Driver: driver.New(), Accessor: store.NewAccessor(memstore.New())}, nil
	}
	cfg, err := xunconfig.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return xun.New(cfg, filepath.Dir(path))
}

func runServe(rawArgs []string) error {
	if len(rawArgs) == 0 {
		return fmt.Errorf(`usage: xun serve store|worker ...`)
	}
	switch rawArgs[0] {
	case "store":
		return serveStore(rawArgs[1:])
	case "worker":
		return serveWorker(rawArgs[1:])
	default:
		return fmt.Errorf("unknown serve target %q, want store or worker", rawArgs[0])
	}
}

func serveStore(rawArgs []string) error {
	_, addr, rest := parseFlags(rawArgs)
	if addr == "" {
		addr = ":50051"
	}
	backend := xunconfig.MemStoreBackend
	cacheDir := xunconfig.DefaultCacheDir
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "-backend":
			if i+1 < len(rest) {
				backend = rest[i+1]
				i++
			}
		case "-cache-dir":
			if i+1 < len(rest) {
				cacheDir = rest[i+1]
				i++
			}
		}
	}

	var backing store.Store
	switch backend {
	case xunconfig.SQLiteStoreBackend:
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			return err
		}
		var err error
		backing, err = sqlitestore.Open(filepath.Join(cacheDir, xunconfig.DefaultSQLiteFile))
		if err != nil {
			return err
		}
	case xunconfig.MemStoreBackend, "":
		backing = memstore.New()
	default:
		return fmt.Errorf("serve store: unknown backend %q", backend)
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := grpc.NewServer()
	rpcSrv := rpcstore.NewServer(backing)
	if err := rpcSrv.Register(srv); err != nil {
		return err
	}
	log.Printf("xun: serving store (%s) on %s", backend, addr)
	return srv.Serve(lis)
}

func serveWorker(rawArgs []string) error {
	pluginPath, addr, rest := parseFlags(rawArgs)
	if addr == "" {
		return fmt.Errorf("serve worker: -addr host:port is required")
	}
	img, err := loadImage(pluginPath)
	if err != nil {
		return err
	}
	args, err := parseArgs(rest)
	if err != nil {
		return err
	}
	bp, err := blueprint.Build(img, args)
	if err != nil {
		return err
	}

	runner, err := openProjectRunner()
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := grpc.NewServer()
	worker := remoteworker.NewWorker(bp, runner.Accessor)
	if err := worker.Register(srv); err != nil {
		return err
	}
	log.Printf("xun: serving worker for %s on %s", img.Description.QualifiedName, addr)
	return srv.Serve(lis)
}
