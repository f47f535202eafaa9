// Package events decouples components that request background work
// from the task loop that executes it. Emitters publish
// TaskRequestEvents without knowing which handlers are registered;
// handlers build and submit the corresponding tasks.
package events
