// Package handlers provides the sandbox node's infrastructure handlers
// (liveness, readiness and version). Ledger routes live in package server.
package handlers
