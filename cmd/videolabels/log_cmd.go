package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/videolabels/internal/oplog"
	"github.com/Nomadcxx/videolabels/internal/paths"
)

func newLogCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent filesystem operations",
		Long: `Show the most recent entries from the operations log, the
append-only audit trail of every move and duplicate deletion.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opsPath, err := paths.OperationsLogPath()
			if err != nil {
				return err
			}

			ops, err := oplog.Open(opsPath, nil)
			if err != nil {
				return err
			}
			defer ops.Close()

			records, err := ops.Recent(limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				cmd.Println("No operations recorded yet.")
				return nil
			}

			for _, rec := range records {
				printOperation(cmd, rec)
			}
			return nil
		},
	}
	// No shorthand: -n belongs to the root command's --dry-run flag.
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to show")
	return cmd
}

func printOperation(cmd *cobra.Command, rec oplog.Record) {
	ts := rec.At.Local().Format("2006-01-02 15:04:05")
	switch rec.Op {
	case oplog.OpMove:
		cmd.Printf("%s  move    %s -> %s\n", ts, rec.Original, rec.New)
	case oplog.OpDelete:
		cmd.Printf("%s  delete  %s (%s)\n", ts, filepath.Base(rec.Original), rec.Reason)
	default:
		cmd.Printf("%s  %-7s %s\n", ts, rec.Op, rec.Original)
	}
}
