package appcompat

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/appcompat/appcompat/internal/history"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func historyLog() (*history.Log, error) {
	p := history.DefaultPath()
	if p == "" {
		return nil, errors.New("no state directory for the history log")
	}
	return history.New(p), nil
}

func newHistoryCmd(_ *ctlFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded launcher runs (enable with history: true)",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			log, err := historyLog()
			if err != nil {
				return err
			}
			records, err := log.Load()
			if err != nil {
				return err
			}
			out := c.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "no recorded runs")
				return nil
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}
			table := tablewriter.NewWriter(out)
			table.Header("#", "Time", "Exit", "Duration", "Source", "Arguments")
			for i, r := range records {
				exit := strconv.Itoa(r.ExitCode)
				if r.Error != "" {
					exit = "error"
				}
				row := []string{
					strconv.Itoa(i),
					r.Timestamp.Local().Format("2006-01-02 15:04:05"),
					exit,
					r.Duration,
					r.Origin,
					strings.Join(r.Args, " "),
				}
				if err := table.Append(row); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "show at most this many runs (0 = all)")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the history log",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			log, err := historyLog()
			if err != nil {
				return err
			}
			if err := log.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), "history cleared")
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm <index>",
		Short: "Delete one run, numbered as in the history listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}
			log, err := historyLog()
			if err != nil {
				return err
			}
			return log.Delete(idx)
		},
	}

	cmd.AddCommand(clearCmd, rmCmd)
	return cmd
}
