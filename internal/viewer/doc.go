// Package viewer serves the embedded trace viewer: a single page that
// lists recorded runs and renders their timelines from the /api/v1
// endpoints, refreshing when a trace.recorded event arrives.
//
// Unknown paths fall back to index.html so /runs/{run_id} links work.
package viewer
