// Package api handles incoming HTTP requests for the background
// scheduler: submitting task requests and inspecting the loop. It
// translates HTTP concerns into event emissions and snapshot reads,
// never touching the loop's internals directly.
package api
