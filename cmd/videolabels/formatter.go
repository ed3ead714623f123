package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/videolabels/internal/organizer"
)

func printSummary(cmd *cobra.Command, summary *organizer.Summary) {
	if summary.Total() == 0 {
		cmd.Println("No videos found.")
		return
	}

	for _, r := range summary.Results {
		printResult(cmd, r)
	}

	counts := summary.Counts()
	cmd.Println()
	if summary.Executed {
		cmd.Printf("%d files: %d moved, %d duplicates, %d skipped, %d errors\n",
			summary.Total(),
			counts[organizer.StatusApplied],
			counts[organizer.StatusSkippedDuplicate],
			counts[organizer.StatusSkippedAmbiguous]+counts[organizer.StatusSkippedUnknown],
			counts[organizer.StatusError])
	} else {
		cmd.Printf("%d files: %d planned, %d skipped (preview only, nothing moved)\n",
			summary.Total(),
			counts[organizer.StatusPreview],
			counts[organizer.StatusSkippedAmbiguous]+counts[organizer.StatusSkippedUnknown])
	}
	cmd.Printf("Completed in %s\n", summary.FinishedAt.Sub(summary.StartedAt).Round(10*time.Millisecond))
}

func printResult(cmd *cobra.Command, r organizer.Result) {
	name := filepath.Base(r.Source)

	switch r.Status {
	case organizer.StatusApplied, organizer.StatusPreview:
		marker := "+"
		if r.Status == organizer.StatusPreview {
			marker = "~"
		}
		detail := r.Label
		if r.Quality != "" {
			detail = fmt.Sprintf("%s, %s", detail, r.Quality)
		}
		cmd.Printf("%s %s -> %s (%s)\n", marker, name, r.Destination, detail)
	case organizer.StatusSkippedDuplicate:
		cmd.Printf("= %s (duplicate: %s)\n", name, r.Detail)
	case organizer.StatusSkippedAmbiguous:
		cmd.Printf("? %s (needs user input)\n", name)
	case organizer.StatusSkippedUnknown:
		cmd.Printf("? %s (unclassifiable)\n", name)
	case organizer.StatusError:
		cmd.Printf("! %s: %v\n", name, r.Err)
	}
}
