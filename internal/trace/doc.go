// Package trace reconstructs a readable timeline from a recorded automation
// or script run.
//
// A run is stored as a flat, path-keyed map of step executions
// ("action/0", "action/0/choose/1/sequence/0", ...) plus the static
// configuration the run executed. Independently, the logbook records the
// entity state changes the run caused. This package walks the step paths in
// document order, infers the control-flow tree from the path segments,
// merges the logbook in chronologically and produces one ordered slice of
// timeline entries.
//
// Architecture:
//
//	┌────────────────────────────────────────────────────────┐
//	│                 Reconstruct (timeline.go)              │
//	│  ┌──────────────┐   ┌──────────────┐   ┌────────────┐  │
//	│  │  PathIndex   │──▶│    walker    │──▶│ LogMerger  │  │
//	│  │  (path.go)   │   │ (walker.go)  │   │(logbook.go)│  │
//	│  └──────────────┘   └──────────────┘   └────────────┘  │
//	│                            │                 │         │
//	│                            ▼                 ▼         │
//	│                  ┌──────────────────────────────┐      │
//	│                  │  TimeGapTracker (timegap.go) │      │
//	│                  └──────────────────────────────┘      │
//	│                            │                           │
//	│                            ▼                           │
//	│                  footer table (footer.go)              │
//	└────────────────────────────────────────────────────────┘
//
// # Purity
//
// Reconstruct performs no I/O, holds no state between calls and never
// returns an error: malformed input degrades into "path error" entries or
// leaf-style rendering. Calling it twice with the same input yields equal
// output, so it is safe to call on every re-render.
//
// Text is produced through two injected collaborators: a DescribeFn that
// turns an action configuration into a sentence, and a Localizer that
// supplies the engine's own strings. English defaults are used when either
// is nil.
//
// # Usage
//
//	entries := trace.Reconstruct(record, logbookEntries, describer.Describe,
//	    trace.WithLocalizer(loc),
//	    trace.WithLocation(tz),
//	)
package trace
