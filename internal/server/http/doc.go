// Package httpserver provides a minimal REST gateway over the local journal
// store: JSON entry reads with cursor resume and CEL match filtering, an SSE
// follow mode, a remote write endpoint, and store status.
//
// Example:
//
//	e, _ := local.Open(db, local.Options{})
//	s := httpserver.New(e, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8282")
package httpserver
