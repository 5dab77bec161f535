package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ikudjoi/fluentmigrator/internal/api/http/dto"
	"github.com/ikudjoi/fluentmigrator/internal/config"
	"github.com/ikudjoi/fluentmigrator/internal/conventions"
	"github.com/ikudjoi/fluentmigrator/internal/loader"
	"github.com/ikudjoi/fluentmigrator/internal/logger"
)

const version = "1.0.0"

// loadOptions are the flags shared by list and validate
type loadOptions struct {
	configPath string
	path       string
	namespace  string
	nested     bool
	tags       []string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &loadOptions{}

	rootCmd := &cobra.Command{
		Use:   "fluentmigrator",
		Short: "FluentMigrator - migration discovery and ordering",
		Long: `fluentmigrator discovers migrations, filters them by namespace and tags,
and lists them in the order they would be applied.

Script trees follow this structure:
  {path}/{backend}/{connection}/{version}_{name}.up.sql
  {path}/{backend}/{connection}/{version}_{name}.down.sql
  {path}/{backend}/{connection}/{version}_{name}.meta.yaml`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: ./fluentmigrator.yaml if present)")

	rootCmd.AddCommand(newListCmd(opts), newValidateCmd(opts), newBuildCmd(), newVersionCmd())
	return rootCmd
}

func addLoadFlags(cmd *cobra.Command, opts *loadOptions) {
	cmd.Flags().StringVarP(&opts.path, "path", "p", "", "Root of the migration script tree (overrides source.path)")
	cmd.Flags().StringVarP(&opts.namespace, "namespace", "n", "", "Only include migrations in this namespace, e.g. postgresql/core")
	cmd.Flags().BoolVar(&opts.nested, "nested", false, "Include migrations in nested namespaces")
	cmd.Flags().StringSliceVarP(&opts.tags, "tag", "t", nil, "Only include migrations matching these tags (repeatable)")
}

// newLoader builds a loader from the configuration with flag overrides applied
func newLoader(cmd *cobra.Command, opts *loadOptions) (*loader.Loader, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if level, ok := logger.ParseLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	flags := cmd.Flags()
	if flags.Changed("path") {
		cfg.Source.Kind = config.SourceDirectory
		cfg.Source.Path = opts.path
	}
	if flags.Changed("namespace") {
		cfg.Filter.Namespace = opts.namespace
	}
	if flags.Changed("nested") {
		cfg.Filter.NestedNamespaces = opts.nested
	}
	if flags.Changed("tag") {
		cfg.Filter.Tags = opts.tags
	}

	src, err := cfg.MigrationSource()
	if err != nil {
		return nil, err
	}
	conv := conventions.NewDefault(cfg.ConventionOptions()...)
	return loader.New(src, cfg.FilterOptions(), conv), nil
}

func newListCmd(opts *loadOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List migrations in application order",
		Long: `List loads the migration tree, applies the namespace and tag filter, and
prints the accepted migrations in ascending version order.

Example:
  fluentmigrator list --path ./migrations --namespace postgresql/core
  fluentmigrator list --tag prod --tag eu -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLoader(cmd, opts)
			if err != nil {
				return err
			}
			reg, err := l.LoadMigrations()
			if err != nil {
				return err
			}

			resp := dto.MigrationListResponse{Items: make([]dto.MigrationListItem, 0, reg.Len())}
			for _, d := range reg.Descriptors() {
				resp.Items = append(resp.Items, dto.NewMigrationListItem(d))
			}
			resp.Total = len(resp.Items)

			return printList(cmd.OutOrStdout(), output, resp)
		},
	}
	addLoadFlags(cmd, opts)
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table or yaml")
	return cmd
}

func printList(w io.Writer, format string, resp dto.MigrationListResponse) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("failed to encode migrations: %w", err)
		}
		return enc.Close()
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "VERSION\tNAMESPACE\tDESCRIPTION\tTRANSACTION\tBREAKING")
		for _, item := range resp.Items {
			namespace := item.Backend
			if item.Connection != "" {
				namespace += "/" + item.Connection
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\n",
				item.Version, namespace, item.Description, item.TransactionBehavior, item.BreakingChange)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q (expected table or yaml)", format)
	}
}

func newValidateCmd(opts *loadOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report every problem in the migration tree",
		Long: `Validate checks the filtered migrations for invalid metadata and duplicate
versions and reports all of them, not only the first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLoader(cmd, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			err = l.Validate()
			if err == nil {
				fmt.Fprintln(out, "OK")
				return nil
			}

			var merr *multierror.Error
			if !errors.As(err, &merr) {
				return err
			}
			for _, e := range merr.Errors {
				fmt.Fprintf(out, "- %v\n", e)
			}
			return fmt.Errorf("validation failed with %d problem(s)", len(merr.Errors))
		},
	}
	addLoadFlags(cmd, opts)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fluentmigrator version %s\n", version)
		},
	}
}
