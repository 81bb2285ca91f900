package main

import (
	"fmt"
	"os"

	"refdata-manager/core/reconcile"
)

// Quick scratch tool: prints how the engine classifies raw identifier values.
// Useful when a vendor file rejects with "cannot infer identifier type".
func main() {
	values := os.Args[1:]
	if len(values) == 0 {
		fmt.Println("usage: debug_detect VALUE [VALUE...]")
		os.Exit(2)
	}

	for _, value := range values {
		detected, ok := reconcile.DetectIdentifierType(value)
		if !ok {
			fmt.Printf("%-25s -> no scheme matches\n", value)
			continue
		}
		fmt.Printf("%-25s -> %s\n", value, detected)

		// Show every scheme the value would be accepted under when declared
		// explicitly, since detection stops at the first match.
		for _, t := range reconcile.KnownTypes {
			if t == detected {
				continue
			}
			if err := reconcile.ValidateIdentifier(t, value); err == nil {
				fmt.Printf("%-25s    also valid as declared %s\n", "", t)
			}
		}
	}
}
