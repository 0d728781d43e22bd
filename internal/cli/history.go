package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/bdahlka1/cec.ai-demo/internal/archive"
	"github.com/bdahlka1/cec.ai-demo/internal/common"
	"github.com/bdahlka1/cec.ai-demo/internal/score"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived scoring and evaluation runs",
		Long: `History lists the most recent runs stored in the archive (--archive or archive.dsn).
For evaluation runs the total column is the mean absolute total error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.requireArchive(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs archived yet.")
				return nil
			}

			t := tablewriter.NewWriter(cmd.OutOrStdout())
			t.SetHeader([]string{"ID", "Kind", "Subject", "Total", "Decision", "Projects", "When"})
			t.SetAutoFormatHeaders(false)
			for _, r := range runs {
				projects := ""
				if r.Kind == archive.KindEvaluation {
					projects = strconv.Itoa(r.Projects)
				}
				t.Append([]string{
					r.ID.String(),
					r.Kind,
					r.Subject,
					score.FormatPoints(r.Total),
					r.Decision,
					projects,
					humanize.Time(r.CreatedAt),
				})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to list")
	cmd.AddCommand(newHistoryShowCmd(a))
	return cmd
}

func newHistoryShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the stored report of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return common.InvalidInputError(fmt.Sprintf("run id %q", args[0]), err)
			}
			store, err := a.requireArchive(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), id)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := json.Indent(&buf, run.Payload, "", "  "); err != nil {
				return fmt.Errorf("decode payload: %w", err)
			}
			buf.WriteByte('\n')
			_, err = buf.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
}

func (a *app) requireArchive(cmd *cobra.Command) (archive.Store, error) {
	store, err := a.openArchive(cmd.Context())
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, common.ConfigurationErrorf("no archive configured (set --archive or archive.dsn)")
	}
	return store, nil
}
