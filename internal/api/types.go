// Package api holds the wire types, error codes and response helpers of the
// sandbox node's HTTP API.
package api

// NodeInfo is the body of GET /.
type NodeInfo struct {
	Software string             `json:"software"`
	Version  string             `json:"version"`
	API      map[string]APIInfo `json:"api"`
}

// APIInfo is the body of GET /api/v1 and lists the collection URLs.
type APIInfo struct {
	Docs         string `json:"docs"`
	Transactions string `json:"transactions"`
	Outputs      string `json:"outputs"`
	Assets       string `json:"assets"`
	Metadata     string `json:"metadata"`
	Blocks       string `json:"blocks"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
