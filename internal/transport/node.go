package transport

import (
	"net/http"
	"strings"
)

// DefaultEndpoint is used when no node is configured.
const DefaultEndpoint = "http://localhost:9984"

// Node is a ledger node and the headers sent with every request to it.
type Node struct {
	Endpoint string
	Headers  http.Header
}

// NormalizeNodes turns endpoints into nodes, adding http:// where no scheme is
// given and merging the shared headers into each node's own.
// Node headers win over shared ones.
func NormalizeNodes(headers http.Header, nodes ...Node) []Node {
	if len(nodes) == 0 {
		nodes = []Node{{Endpoint: DefaultEndpoint}}
	}

	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		endpoint := strings.TrimRight(strings.TrimSpace(n.Endpoint), "/")
		if endpoint == "" {
			endpoint = DefaultEndpoint
		}
		if !strings.Contains(endpoint, "://") {
			endpoint = "http://" + endpoint
		}

		merged := headers.Clone()
		if merged == nil {
			merged = http.Header{}
		}
		for k, v := range n.Headers {
			merged[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
		}
		out = append(out, Node{Endpoint: endpoint, Headers: merged})
	}
	return out
}

// Endpoints is shorthand for nodes without headers of their own.
func Endpoints(endpoints ...string) []Node {
	nodes := make([]Node, len(endpoints))
	for i, e := range endpoints {
		nodes[i] = Node{Endpoint: e}
	}
	return nodes
}
