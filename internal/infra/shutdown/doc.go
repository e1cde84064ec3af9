// Package shutdown coordinates graceful process termination.
//
// Components register hooks with OnShutdown; Wait blocks until SIGINT,
// SIGTERM or context cancellation and then runs the hooks in reverse
// order of registration under a shared timeout.
package shutdown
