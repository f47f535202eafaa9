// Package taskloop runs fire-and-forget background tasks and
// recurring jobs inside the same process as the HTTP server, with no
// external broker or persistent queue. All state is in memory and is
// lost on restart; failures are isolated at the task and job boundary
// and logged, never propagated to the host.
package taskloop
