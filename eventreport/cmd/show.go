package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sarchlab/eventreport/datarecording"
	"github.com/sarchlab/eventreport/tracing"
	"github.com/spf13/cobra"
)

var errNoDB = errors.New("no database given, use --db or EVENTREPORT_DB_PATH")

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Tabulate the activities of a recorded database.",
	Long: "`show --db run.sqlite3` prints the recorded activities, " +
		"optionally filtered by --name and --status, followed by the " +
		"recorded errors.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := mustLoadConfig(cmd)
		if cfg.DBPath == "" {
			return errNoDB
		}

		reader, err := datarecording.NewReader(cfg.DBPath)
		if err != nil {
			return err
		}
		defer reader.Close()

		name, _ := cmd.Flags().GetString("name")
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		return show(cmd.Context(), cmd.OutOrStdout(), reader, showFilter{
			name:   name,
			status: status,
			limit:  limit,
		})
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().String("db", "", "The recorded database file")
	showCmd.Flags().String("name", "", "Only show activities with this name")
	showCmd.Flags().String("status", "",
		"Only show activities with this status (finished, unfinished)")
	showCmd.Flags().Int("limit", 0, "Maximum number of activities (0: all)")
}

type showFilter struct {
	name   string
	status string
	limit  int
}

func (f showFilter) params() datarecording.QueryParams {
	p := datarecording.QueryParams{
		Limit: f.limit,
		OrderBy: []datarecording.Order{
			datarecording.Asc("StartTime"),
			datarecording.Asc("ID"),
		},
	}

	if f.name != "" {
		p.Filters = append(p.Filters, datarecording.Eq("Name", f.name))
	}

	if f.status != "" {
		p.Filters = append(p.Filters, datarecording.Eq("Status", f.status))
	}

	return p
}

func show(
	ctx context.Context,
	out io.Writer,
	reader datarecording.DataReader,
	filter showFilter,
) error {
	reader.MapTable(tracing.ActivityTable, tracing.ActivityRow{})
	reader.MapTable(tracing.ErrorTable, tracing.ErrorRow{})

	activities, total, err := reader.Query(
		ctx, tracing.ActivityTable, filter.params())
	if err != nil {
		return fmt.Errorf("query activities: %w", err)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "REPORT\tID\tNAME\tSTATUS\tSTART\tEND\tARGS")
	for _, a := range activities {
		row := a.(*tracing.ActivityRow)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.6f\t%.6f\t%s\n",
			row.Report, row.ID, row.Name, row.Status,
			row.StartTime, row.EndTime, row.Args)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d of %d activities\n", len(activities), total)

	errs, _, err := reader.Query(ctx, tracing.ErrorTable,
		datarecording.QueryParams{
			OrderBy: []datarecording.Order{datarecording.Asc("Time")},
		})
	if err != nil {
		return fmt.Errorf("query errors: %w", err)
	}

	if len(errs) == 0 {
		return nil
	}

	fmt.Fprintln(out)

	w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REPORT\tTIME\tERROR")
	for _, e := range errs {
		row := e.(*tracing.ErrorRow)
		fmt.Fprintf(w, "%s\t%.6f\t%s\n", row.Report, row.Time, row.Message)
	}

	return w.Flush()
}
