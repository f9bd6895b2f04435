package serverrun

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	cfgpkg "github.com/rzbill/journal/internal/config"
	httpserver "github.com/rzbill/journal/internal/server/http"
	pebblestore "github.com/rzbill/journal/internal/storage/pebble"
	"github.com/rzbill/journal/internal/store/local"
	logpkg "github.com/rzbill/journal/pkg/log"
)

// Options parameterize one server run. Config holds the merged file/env
// configuration; the remaining fields are CLI overrides applied on top.
type Options struct {
	Config   cfgpkg.Config
	DataDir  string
	HTTPAddr string
}

// trimBatchLimit and trimThrottle keep retention sweeps from starving reads.
const (
	trimBatchLimit = 512
	trimThrottle   = 10 * time.Millisecond
)

// Run starts the store and the HTTP gateway and blocks until ctx is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	// Layer a local signal context over the provided one so callers that
	// don't pass a signal-aware context still shut down cleanly.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := opts.Config
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.HTTPAddr != "" {
		cfg.HTTP.Addr = opts.HTTPAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logpkg.ApplyConfig(&logpkg.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	// Redirect stdlib logs (e.g. Pebble) to our logger.
	logpkg.RedirectStdLog(logger)

	fsync, err := pebblestore.ParseFsyncMode(cfg.Fsync)
	if err != nil {
		return err
	}
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir: filepath.Join(cfg.DataDir, "store"),
		Fsync:   fsync,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := local.Open(db, local.Options{Logger: logger})
	if err != nil {
		return err
	}

	st := engine.Status()
	logger.Info("starting journal server",
		logpkg.Str("data_dir", cfg.DataDir),
		logpkg.Str("http", cfg.HTTP.Addr),
		logpkg.Str("store_id", st.StoreID),
		logpkg.Str("boot_id", st.BootID),
		logpkg.Uint64("last_seq", st.LastSeq),
	)

	var wg sync.WaitGroup

	maxAge, _ := cfg.Retention.MaxAgeDuration()
	interval, _ := cfg.Retention.IntervalDuration()
	if maxAge > 0 || cfg.Retention.MaxBytes > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			retentionLoop(sctx, engine, logger, maxAge, cfg.Retention.MaxBytes, interval)
		}()
	}

	var hsrv *httpserver.Server
	if cfg.HTTP.Enabled {
		hsrv = httpserver.New(engine, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := hsrv.ListenAndServe(sctx, cfg.HTTP.Addr); err != nil && sctx.Err() == nil {
				logger.Error("http server failed", logpkg.Err(err))
			}
		}()
	}

	<-sctx.Done()
	// Shut the gateway down before closing the DB to avoid races.
	if hsrv != nil {
		hsrv.Close()
	}
	wg.Wait()
	return nil
}

// retentionLoop sweeps expired and excess entries on a fixed cadence until
// ctx is cancelled.
func retentionLoop(ctx context.Context, engine *local.Engine, logger logpkg.Logger, maxAge time.Duration, maxBytes int64, interval time.Duration) {
	log := logger.WithComponent("retention")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if maxAge > 0 {
			cutoff := uint64(time.Now().Add(-maxAge).UnixMicro())
			deleted, _, err := engine.TrimOlderThan(ctx, cutoff, trimBatchLimit, trimThrottle)
			if err != nil {
				log.Warn("age sweep failed", logpkg.Err(err))
			} else if deleted > 0 {
				log.Debug("age sweep", logpkg.Int("deleted", deleted))
			}
		}
		if maxBytes > 0 {
			deleted, err := engine.TrimToMaxBytes(ctx, maxBytes, trimBatchLimit, trimThrottle)
			if err != nil {
				log.Warn("size sweep failed", logpkg.Err(err))
			} else if deleted > 0 {
				log.Debug("size sweep", logpkg.Int("deleted", deleted))
			}
		}
	}
}
