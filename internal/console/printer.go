// Package console renders listings and run summaries and drives the
// interactive command shell.
package console

import (
	"fmt"
	"io"

	"wattle/downloader/internal/domain"
)

// PrintListing writes the candidates with their 1-based ordinals
func PrintListing(w io.Writer, filter string, items []domain.Item) {
	fmt.Fprintf(w, "Available %s items:\n", filter)
	for _, item := range items {
		fmt.Fprintf(w, "%d. %s\n", item.Ordinal, item.Name)
	}
}

// PrintUsage explains the selection syntax, using filter in the examples
func PrintUsage(w io.Writer, filter string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "To download, enter: download <selection> <filter>")
	fmt.Fprintln(w, "selection can be:")
	fmt.Fprintln(w, "  - Numbers and ranges: '1-3,5,7-9'")
	fmt.Fprintln(w, "  - 'all' for all items")
	fmt.Fprintln(w, "  - 'failed' to retry previously failed downloads")
	fmt.Fprintf(w, "Example: download 1-3,5 %s\n", filter)
	fmt.Fprintf(w, "Example: download all %s\n", filter)
}

// PrintSummary writes the failures of a run, or a success confirmation
func PrintSummary(w io.Writer, filter string, report domain.ErrorReport) {
	if len(report) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "The following items encountered errors:")
		for _, entry := range report {
			fmt.Fprintf(w, "- %s: %s\n", entry.Name, entry.Error)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "To retry failed downloads, use: download failed %s\n", filter)
	} else {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "All selected items were processed without errors.")
	}

	fmt.Fprintln(w, "Download Finished")
}
