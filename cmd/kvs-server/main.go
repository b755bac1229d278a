// Command kvs-server runs the kvs TCP server against a data directory,
// selecting the storage engine and worker pool from command-line flags.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/bitcaskdb/kvs/internal/engine"
	"github.com/bitcaskdb/kvs/internal/pool"
	"github.com/bitcaskdb/kvs/internal/server"
	"github.com/bitcaskdb/kvs/internal/sledengine"
	"github.com/bitcaskdb/kvs/pkg/logger"
	"github.com/bitcaskdb/kvs/pkg/options"
	"go.uber.org/zap"
)

func main() {
	opts := options.NewDefaultOptions()

	addr := flag.String("addr", opts.Addr, "server listening address")
	engineName := flag.String("engine", "", `storage engine: "kvs" or "sled" (default: "kvs")`)
	dataDir := flag.String("data-dir", "", "data directory (default: current working directory)")
	poolKind := flag.String("pool", opts.PoolKind, `worker pool: "naive", "shared-queue", or "work-stealing"`)
	poolSize := flag.Int("pool-size", opts.PoolSize, "worker pool size")
	flag.Parse()

	log := logger.New("kvs-server")
	defer log.Sync()

	if *dataDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			log.Fatalw("failed to determine working directory", "error", err)
		}
		*dataDir = wd
	}
	if *engineName != "" {
		opts.EngineName = *engineName
	}
	opts.Addr = *addr
	opts.DataDir = *dataDir
	opts.PoolKind = *poolKind
	opts.PoolSize = *poolSize

	if err := run(opts, log); err != nil {
		log.Errorw("kvs-server exiting", "error", err)
		os.Exit(1)
	}
}

func run(opts options.Options, log *zap.SugaredLogger) error {
	log.Infow("starting kvs-server", "engine", opts.EngineName, "addr", opts.Addr, "dataDir", opts.DataDir)

	eng, err := openEngine(opts, log)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer eng.Close()

	p, err := pool.New(opts.PoolKind, opts.PoolSize, log)
	if err != nil {
		return fmt.Errorf("failed to construct worker pool: %w", err)
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", opts.Addr, err)
	}
	defer ln.Close()

	srv := server.New(eng, p, log)
	return srv.Serve(ln)
}

func openEngine(opts options.Options, log *zap.SugaredLogger) (engine.Engine, error) {
	switch opts.EngineName {
	case "sled":
		return sledengine.Open(opts.DataDir)
	default:
		eng, err := engine.Open(engine.Config{
			DataDir:             opts.DataDir,
			CompactionThreshold: opts.CompactionThreshold,
			Logger:              log,
		})
		if err != nil {
			return nil, err
		}
		return engine.NewHandle(eng), nil
	}
}
