// Package tasks runs long playlist operations with real-time progress reporting.
//
// # Bulk Export
//
// [ExportEngine.BulkExport] writes many playlists to disk using a worker pool:
//
//   - Playlists are fetched one at a time through a [Source], optionally throttled by a rate limiter
//   - Each fetched playlist is resolved into a [formatter.Export] by an [ExportBuilder]
//   - Workers write CSV, Markdown, plain text or JSON files concurrently
//   - A manifest (export_manifest.json) summarizes successes and failures
//
// A failure to fetch or write one playlist is recorded in its result and does not stop the others.
//
// # Progress Reporting
//
// Progress updates travel over an optional channel. Sends never block: when the channel is full
// the update is dropped, so a slow consumer cannot stall an export.
package tasks
