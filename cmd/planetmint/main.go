// planetmint is the command line client: key generation, offline transaction
// construction and signing, and access to a node's HTTP API.
package main

import "github.com/planetmint/planetmint-driver-go/internal/cli"

func main() {
	cli.Execute()
}
