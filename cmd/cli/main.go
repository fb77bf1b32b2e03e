package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rmo02/dash-financeiro/pkg/config"
	"github.com/rmo02/dash-financeiro/pkg/csv"
	"github.com/rmo02/dash-financeiro/pkg/preset"
	"github.com/rmo02/dash-financeiro/pkg/session"
)

const validateWorkers = 4

type validation struct {
	file    string
	dataset *session.Dataset
	err     error
}

var (
	cliFilters filters
	cfgFile    string
	cfg        *config.Config
	logger     *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dash-cli",
	Short: "Financial dashboard command-line interface",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "dash-cli",
			Level:           cfg.Level(),
		})
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <path_or_glob>",
	Short: "Check that workbooks can be loaded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args[0])
		if err != nil {
			return err
		}

		// results keep the file order
		results := make([]validation, len(files))
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(validateWorkers)
		for i, file := range files {
			i, file := i, file
			g.Go(func() error {
				processor := NewFileProcessor(logger, cfg, &cliFilters)
				ds, err := processor.Load(ctx, file)
				results[i] = validation{file: file, dataset: ds, err: err}
				return nil
			})
		}
		_ = g.Wait()

		out := cmd.OutOrStdout()
		failed := 0
		for _, res := range results {
			if res.err != nil {
				logger.Warn("failed to load workbook", "file", res.file, "error", res.err)
				fmt.Fprintf(out, "%s\n", warnStyle.Render(fmt.Sprintf("%s: %s", res.file, res.err)))
				failed++
				continue
			}
			ds := res.dataset
			fmt.Fprintf(out, "%s: %d records, %d warnings, %s headers\n", res.file, len(ds.Records), len(ds.Warnings), ds.Convention)
			renderWarnings(out, ds.Warnings)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d workbooks failed validation", failed, len(files))
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Print headline metrics and views for the selected filters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor := NewFileProcessor(logger, cfg, &cliFilters)
		ds, err := processor.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		presetPath, _ := cmd.Flags().GetString("preset")
		if presetPath == "" {
			report, err := processor.store.Report()
			if err != nil {
				return err
			}
			renderReport(out, ds.FileName, report)
			return nil
		}

		views, err := preset.Load(presetPath)
		if err != nil {
			return err
		}
		for _, view := range views.Views {
			processor.store.SetSelection(view.Selection)
			report, err := processor.store.Report()
			if err != nil {
				return err
			}
			renderReport(out, fmt.Sprintf("%s | %s", ds.FileName, view.Name), report)
		}
		return nil
	},
}

var viewsCmd = &cobra.Command{
	Use:   "views <preset.yaml>",
	Short: "List the named views of a preset file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listViews(cmd.OutOrStdout(), args[0])
	},
}

func listViews(w io.Writer, path string) error {
	views, err := preset.Load(path)
	if err != nil {
		return err
	}
	views.Print(w)
	return nil
}

var dimsCmd = &cobra.Command{
	Use:   "dims <file>",
	Short: "List the values available to each filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor := NewFileProcessor(logger, cfg, &cliFilters)
		if _, err := processor.Load(cmd.Context(), args[0]); err != nil {
			return err
		}
		dims, err := processor.store.Dimensions()
		if err != nil {
			return err
		}
		renderDimensions(cmd.OutOrStdout(), dims)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the filtered records as CSV to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enc, err := csv.ParseEncoding(cfg.CSV.Encoding)
		if err != nil {
			return err
		}

		processor := NewFileProcessor(logger, cfg, &cliFilters)
		if _, err := processor.Load(cmd.Context(), args[0]); err != nil {
			return err
		}
		records, err := processor.store.Filtered()
		if err != nil {
			return err
		}

		data, err := csv.Encode(csv.Create(records, cliFilters.toFilterFunc()), enc)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Pretty-print the filtered records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor := NewFileProcessor(logger, cfg, &cliFilters)
		if _, err := processor.Load(cmd.Context(), args[0]); err != nil {
			return err
		}
		records, err := processor.store.Filtered()
		if err != nil {
			return err
		}

		printer := pp.New()
		printer.SetOutput(cmd.OutOrStdout())
		for _, r := range records {
			if _, err := printer.Println(r); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is config.yaml)")
	rootCmd.PersistentFlags().String("sheet", "", "Preferred worksheet name")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	// Selection flags (global)
	rootCmd.PersistentFlags().StringSliceVar(&cliFilters.companies, "company", nil, "Companies to include (\"Todos\" for all)")
	rootCmd.PersistentFlags().StringSliceVar(&cliFilters.months, "month", nil, "Months to include (janeiro ... dezembro)")
	rootCmd.PersistentFlags().StringVar(&cliFilters.year, "year", "", "Year to include (\"Todos\" for all)")
	rootCmd.PersistentFlags().StringSliceVar(&cliFilters.groups, "group", nil, "Groups to include (\"Todos\" for all)")
	rootCmd.PersistentFlags().StringSliceVar(&cliFilters.subgroups, "subgroup", nil, "Subgroups to include")

	// Flags specific to the export subcommand
	exportCmd.Flags().Float64Var(&cliFilters.minAmount, "min", 0, "Minimum amount")
	exportCmd.Flags().Float64Var(&cliFilters.maxAmount, "max", 0, "Maximum amount")
	exportCmd.Flags().StringVar(&cliFilters.account, "account", "", "Filter by account code or name (case insensitive)")
	exportCmd.Flags().String("encoding", "utf-8", "Output encoding (utf-8, windows-1252)")

	reportCmd.Flags().String("preset", "", "YAML file of named views to report on")

	rootCmd.AddCommand(validateCmd, reportCmd, viewsCmd, dimsCmd, exportCmd, dumpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
