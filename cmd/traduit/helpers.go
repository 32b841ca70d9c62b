package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/quillworks/traduit/internal/jobs"
)

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printReport renders a job report honoring the --json flag.
func printReport(report jobs.Report) error {
	if flagJSON {
		return printJSON(report)
	}
	fmt.Printf("run %s locale=%s processed=%d translated=%d created=%d skipped=%d\n",
		report.RunID, report.Locale, report.Processed, report.Translated, report.Created, report.Skipped)
	return nil
}
