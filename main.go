// =============================================================================
// Picking List Generator - Main Entry Point
// =============================================================================
//
// USAGE:
//   picker pick         - Build picking lists for the exports in the input dir
//   picker validate     - Check the configuration and the reference table
//   picker sheets       - List or snapshot the reference spreadsheet
//   picker history      - List, reprint or prune recorded runs
//   picker version      - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core logic (reference table, picking engine, readers,
//                      writers, history store)
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/picking-list/cmd"
)

func main() {
	cmd.Execute()
}
