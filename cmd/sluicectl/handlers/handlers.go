// Package handlers provides command handler functions for sluicectl.
//
//   - classify.go: concurrent classification of arguments, files or stdin
//   - simulate.go: two-client workload replay, remote or in-process
//   - stats.go: scheduler statistics with optional watch mode
//   - health.go: liveness and readiness of the proxy
//
// Handlers have the cobra RunE signature. They set up logging, talk to the
// proxy through the client package and hand results to the display package.
package handlers
