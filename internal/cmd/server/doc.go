// Package serverrun exposes a shared Run entrypoint used by the CLI to start
// the journal store with its HTTP gateway and retention sweeps, handling
// lifecycle and shutdown.
//
// Example:
//
//	opts := serverrun.Options{Config: config.Default(), DataDir: "./data"}
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = serverrun.Run(ctx, opts)
package serverrun
