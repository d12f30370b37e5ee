package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"opecbrain/entity"
	"opecbrain/query"
)

const apiTimeout = 10 * time.Second

type addFlags struct {
	Status string
}

func createAddCommand(flags *GlobalFlags) *cobra.Command {
	af := &addFlags{}
	cmd := &cobra.Command{
		Use:   "add TEXT...",
		Short: "Stamp a status on an object",
		Long: `Stamp the current time on an object, creating it when new.
The text accepts the "name | status" shorthand of the add form.

Examples:
  opecbrain add CAIXA 12
  opecbrain add "CAIXA 12 | pronto"
  opecbrain add caixa 12 --status desceu`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fallback, err := entity.ParseStatus(af.Status)
			if err != nil {
				return err
			}
			name, status, err := entity.ParseEntry(strings.Join(args, " "), fallback)
			if err != nil {
				return err
			}

			s, err := flags.open()
			if err != nil {
				return err
			}
			defer s.Close()

			var rec *entity.Record
			client, err := s.remote()
			if err != nil {
				return err
			}
			if client != nil {
				ctx, cancel := context.WithTimeout(cmd.Context(), apiTimeout)
				defer cancel()
				rec, err = client.AddRecord(ctx, name, status)
			} else {
				rm, closer, oerr := s.records()
				if oerr != nil {
					return oerr
				}
				defer closer.Close()
				rec, err = rm.Upsert(name, status)
			}
			if err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), []entity.Record{*rec})
			return nil
		},
	}
	cmd.Flags().StringVarP(&af.Status, "status", "s", string(entity.StatusRaised), "status when the text has none (Subiu, Desceu, Pronto)")
	return cmd
}

type historyFlags struct {
	Start  string
	End    string
	Period string
	JSON   bool
}

func createHistoryCommand(flags *GlobalFlags) *cobra.Command {
	hf := &historyFlags{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List records, optionally filtered by date",
		Long: `List the records in insertion order. With --start and --end (YYYY-MM-DD,
inclusive) or --period (day, week, month, year), only the records with a
timestamp dated in the range are shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (hf.Start == "") != (hf.End == "") {
				return fmt.Errorf("--start and --end go together")
			}
			s, err := flags.open()
			if err != nil {
				return err
			}
			defer s.Close()
			rm, closer, err := s.records()
			if err != nil {
				return err
			}
			defer closer.Close()

			records, err := rm.Load()
			if err != nil {
				return err
			}
			switch {
			case hf.Start != "":
				start, err := query.ParseDate(hf.Start)
				if err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				end, err := query.ParseDate(hf.End)
				if err != nil {
					return fmt.Errorf("--end: %w", err)
				}
				records = query.FilterByDateRange(records, start, end)
			case hf.Period != "":
				start, end := query.PeriodRange(hf.Period, time.Now())
				records = query.FilterByDateRange(records, start, end)
			}

			if hf.JSON {
				return writeDocument(cmd.OutOrStdout(), records)
			}
			printRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}
	cmd.Flags().StringVar(&hf.Start, "start", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&hf.End, "end", "", "last day (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&hf.Period, "period", "p", "", "day, week, month or year")
	cmd.Flags().BoolVar(&hf.JSON, "json", false, "output as JSON")
	cmd.MarkFlagsMutuallyExclusive("start", "period")
	return cmd
}

func createExportCommand(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write the whole collection as a JSON document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.open()
			if err != nil {
				return err
			}
			defer s.Close()
			rm, closer, err := s.records()
			if err != nil {
				return err
			}
			defer closer.Close()

			records, err := rm.Load()
			if err != nil {
				return err
			}
			if len(args) == 0 || args[0] == "-" {
				return writeDocument(cmd.OutOrStdout(), records)
			}
			if err := query.NewJSONFile(args[0]).WriteAll(records); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d records exported to %s\n", len(records), args[0])
			return nil
		},
	}
}

func createImportCommand(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Merge a JSON document into the collection",
		Long: `Merge the records of FILE: unknown objects are appended, known ones only
get their empty timestamps filled. Nothing is deleted or overwritten.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var records []entity.Record
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			s, err := flags.open()
			if err != nil {
				return err
			}
			defer s.Close()

			var added, merged int
			client, err := s.remote()
			if err != nil {
				return err
			}
			if client != nil {
				ctx, cancel := context.WithTimeout(cmd.Context(), apiTimeout)
				defer cancel()
				added, merged, err = client.Import(ctx, records)
			} else {
				rm, closer, oerr := s.records()
				if oerr != nil {
					return oerr
				}
				defer closer.Close()
				added, merged, err = rm.Import(records)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d added, %d merged\n", added, merged)
			return nil
		},
	}
}
