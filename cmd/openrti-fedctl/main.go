// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command openrti-fedctl is a federation-execution control client: it
// dials a running openrti-server and issues create/destroy/list
// requests over the wire protocol. Exit codes: 0 for success, 1 for a
// federation-level error reported by the server, 2 for a bad
// invocation (usage, dial failure).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/luxfi/openrti/ltime"
	"github.com/luxfi/openrti/transport"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("openrti-fedctl", flag.ContinueOnError)
	rtiNode := fs.String("rtinode", "localhost:8282", "address of the openrti-server to connect to")
	kindFlag := fs.String("kind", "integer64", "logical time kind for create: integer64 or float64")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	rest := fs.Args()
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "usage: openrti-fedctl [-rtinode addr] <create|destroy|list> [name]")
		return 2
	}
	cmd := rest[0]

	client, err := transport.Dial(context.Background(), *rtiNode, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "openrti-fedctl: dial:", err)
		return 2
	}
	defer client.Close()

	switch cmd {
	case "create":
		if len(rest) < 2 {
			fmt.Fprintln(os.Stderr, "usage: openrti-fedctl create <name>")
			return 2
		}
		kind, err := parseKindFlag(*kindFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, "openrti-fedctl:", err)
			return 2
		}
		if err := client.CreateFederation(rest[1], kind); err != nil {
			fmt.Fprintln(os.Stderr, "openrti-fedctl: create:", err)
			return 1
		}
	case "destroy":
		if len(rest) < 2 {
			fmt.Fprintln(os.Stderr, "usage: openrti-fedctl destroy <name>")
			return 2
		}
		if err := client.DestroyFederation(rest[1]); err != nil {
			fmt.Fprintln(os.Stderr, "openrti-fedctl: destroy:", err)
			return 1
		}
	case "list":
		names, err := client.ListFederations()
		if err != nil {
			fmt.Fprintln(os.Stderr, "openrti-fedctl: list:", err)
			return 1
		}
		for _, n := range names {
			fmt.Println(n)
		}
	default:
		fmt.Fprintln(os.Stderr, "openrti-fedctl: unknown command", cmd)
		return 2
	}
	return 0
}

// parseKindFlag accepts the short flag spellings alongside the full
// HLA implementation names ltime.ParseKind recognises.
func parseKindFlag(s string) (ltime.Kind, error) {
	switch s {
	case "integer64":
		return ltime.Integer64, nil
	case "float64":
		return ltime.Float64, nil
	}
	return ltime.ParseKind(s)
}
