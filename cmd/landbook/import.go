package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/mkinyua/landbook/internal/cli"
	"github.com/mkinyua/landbook/internal/model"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import clients from a CSV file",
		Long: `Import clients in bulk from a CSV file.

The file must have a header row. "Name" and "LR No" columns are required;
any further column whose header matches a payment stage name becomes that
stage's total for the client.

Example header:
  Name,LR No,Downpayment,County Approvals,Land Approvals,Title Payments`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(args[0]) // #nosec G304
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			rows, err := csv.NewReader(f).ReadAll()
			if err != nil {
				return fmt.Errorf("failed to parse CSV: %w", err)
			}
			if len(rows) < 2 {
				return fmt.Errorf("no data rows in %s", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			engine := initEngine(store)

			header := rows[0]
			nameCol, lrCol := -1, -1
			stageCols := make(map[int]model.StageName)
			for i, column := range header {
				trimmed := strings.TrimSpace(column)
				switch {
				case strings.EqualFold(trimmed, "Name"):
					nameCol = i
				case strings.EqualFold(trimmed, "LR No"):
					lrCol = i
				default:
					if stage, err := parseStage(engine, trimmed); err == nil {
						stageCols[i] = stage
					}
				}
			}
			if nameCol < 0 || lrCol < 0 {
				return fmt.Errorf("header must contain \"Name\" and \"LR No\" columns")
			}

			dataRows := rows[1:]
			bar := progressbar.NewOptions(len(dataRows),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan][bold]Importing clients...[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)

			imported := 0
			var failures []string
			for lineNo, row := range dataRows {
				_ = bar.Add(1)

				name := strings.TrimSpace(row[nameCol])
				lrNo := strings.TrimSpace(row[lrCol])

				stageTotals := make(map[model.StageName]decimal.Decimal)
				rowErr := error(nil)
				for col, stage := range stageCols {
					if col >= len(row) || strings.TrimSpace(row[col]) == "" {
						continue
					}
					total, err := decimal.NewFromString(strings.TrimSpace(row[col]))
					if err != nil {
						rowErr = fmt.Errorf("bad amount in column %q: %w", header[col], err)
						break
					}
					stageTotals[stage] = total
				}
				if rowErr != nil {
					failures = append(failures, fmt.Sprintf("line %d: %v", lineNo+2, rowErr))
					continue
				}

				if dryRun {
					imported++
					continue
				}

				if _, err := engine.CreateClient(ctx, name, lrNo, stageTotals); err != nil {
					failures = append(failures, fmt.Sprintf("line %d: %v", lineNo+2, err))
					continue
				}
				imported++
			}

			if dryRun {
				fmt.Println(cli.FormatInfo(fmt.Sprintf("Dry run: %d of %d rows would import", imported, len(dataRows))))
			} else {
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d of %d clients", imported, len(dataRows))))
			}

			for _, failure := range failures {
				fmt.Println(cli.FormatWarning(failure))
			}
			if len(failures) > 0 && !dryRun {
				return fmt.Errorf("%d rows failed to import", len(failures))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the file without creating clients")

	return cmd
}
