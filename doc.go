// Package execlog provides a capture-attribute-buffer-flush pipeline for
// application events built on rs/zerolog.
//
// Key features
//   - Three fixed severities (Success, Warning, Error) with call-site
//     attribution resolved from the error that accompanied the event
//   - Causal error chains via Wrap: attribution always follows the root cause,
//     never the wrapper
//   - Dual write: every event is appended immediately to error.json and
//     combined.json (JSON lines) and buffered in memory until Flush writes the
//     aggregated ExecutionLog.json snapshot
//   - A Flush either persists the whole pending buffer and clears it, or keeps
//     every entry when the snapshot cannot be written
//   - Execute/Run boundaries that absorb failures (including panics) and turn
//     them into error entries
//
// Typical usage
//
//	svc := &execlog.Service{Config: execlog.DefaultConfig()}
//	if err := svc.Initialize(); err != nil { panic(err) }
//	defer svc.Close()
//
//	svc.LogSuccess("ingest started", nil)
//	v, ok := execlog.Execute(svc, loadThing, nil)
//	if err := svc.Flush(); err != nil { ... }
package execlog
