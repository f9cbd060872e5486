// Package app assembles the dashboard service and runs its HTTP server
// lifecycle: construction, startup, signal handling and graceful
// shutdown.
package app
