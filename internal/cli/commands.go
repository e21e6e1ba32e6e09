package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tractorlog/internal/aggregate"
	"tractorlog/internal/core"
	applog "tractorlog/internal/log"
	"tractorlog/internal/services"
	"tractorlog/internal/store"
	"tractorlog/internal/store/jsonfile"
)

// Env is what the maintenance commands operate on.
type Env struct {
	Store   store.Store
	Reports *services.ReportService
}

// EnvLoader opens the configured store. The returned func releases it.
type EnvLoader func(ctx context.Context) (*Env, func() error, error)

// NewRootCommand constructs the tractorlogctl command tree.
func NewRootCommand(load EnvLoader) *cobra.Command {
	root := &cobra.Command{
		Use:           "tractorlogctl",
		Short:         "Tractor work log maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExportCommand(load))
	root.AddCommand(newSummaryCommand(load))
	root.AddCommand(newImportCommand(load))
	return root
}

type filterFlags struct {
	employee  string
	customers []string
	locations []string
	tractors  []string
	from, to  string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.employee, "employee", "", "only entries of this employee")
	cmd.Flags().StringSliceVar(&f.customers, "customer", nil, "only these customers (repeatable)")
	cmd.Flags().StringSliceVar(&f.locations, "location", nil, "only these locations (repeatable)")
	cmd.Flags().StringSliceVar(&f.tractors, "tractor", nil, "only these tractor models (repeatable)")
	cmd.Flags().StringVar(&f.from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "last day, YYYY-MM-DD")
}

func (f *filterFlags) spec() (aggregate.FilterSpec, error) {
	spec := aggregate.FilterSpec{
		Employee:  f.employee,
		Customers: f.customers,
		Locations: f.locations,
		Tractors:  f.tractors,
	}
	var err error
	if f.from != "" {
		if spec.From, err = core.ParseDate(f.from); err != nil {
			return spec, fmt.Errorf("--from: %w", core.ErrInvalidDate)
		}
	}
	if f.to != "" {
		if spec.To, err = core.ParseDate(f.to); err != nil {
			return spec, fmt.Errorf("--to: %w", core.ErrInvalidDate)
		}
	}
	return spec, nil
}

// withEnv opens the store for the duration of fn.
func withEnv(cmd *cobra.Command, load EnvLoader, fn func(ctx context.Context, env *Env) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	env, release, err := load(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if cerr := release(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, env)
}

func newExportCommand(load EnvLoader) *cobra.Command {
	export := &cobra.Command{Use: "export", Short: "Write the filtered entries to a file"}

	for _, format := range []string{"pdf", "csv"} {
		var (
			filters filterFlags
			outDir  string
		)
		cmd := &cobra.Command{
			Use:   format,
			Short: "Export the filtered entries as " + format,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				spec, err := filters.spec()
				if err != nil {
					return err
				}
				return withEnv(cmd, load, func(ctx context.Context, env *Env) error {
					var exp services.Export
					if format == "pdf" {
						exp, err = env.Reports.PDF(ctx, spec)
					} else {
						exp, err = env.Reports.CSV(ctx, spec)
					}
					if err != nil {
						return err
					}
					if err := os.MkdirAll(outDir, 0o755); err != nil {
						return fmt.Errorf("create output directory: %w", err)
					}
					path := filepath.Join(outDir, exp.Filename)
					if err := os.WriteFile(path, exp.Data, 0o644); err != nil {
						return fmt.Errorf("write %s: %w", format, err)
					}
					fmt.Fprintln(cmd.OutOrStdout(), path)
					return nil
				})
			},
		}
		filters.register(cmd)
		cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
		export.AddCommand(cmd)
	}
	return export
}

func newSummaryCommand(load EnvLoader) *cobra.Command {
	var filters filterFlags
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print total acres, cost and log count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := filters.spec()
			if err != nil {
				return err
			}
			return withEnv(cmd, load, func(ctx context.Context, env *Env) error {
				return env.Reports.WriteSummary(ctx, cmd.OutOrStdout(), spec)
			})
		},
	}
	filters.register(cmd)
	return cmd
}

func newImportCommand(load EnvLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "import <db.json>",
		Short: "Append the entries of a JSON record file to the configured store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// A missing file would otherwise load as an empty store.
			if _, err := os.Stat(args[0]); err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			return withEnv(cmd, load, func(ctx context.Context, env *Env) error {
				src, err := jsonfile.New(args[0]).LoadAll(ctx)
				if err != nil {
					return fmt.Errorf("read %s: %w", args[0], err)
				}

				valid := make([]core.LogEntry, 0, len(src))
				for i, e := range src {
					if err := e.Validate(); err != nil {
						applog.FromContext(ctx).WarnContext(ctx, "Skipping invalid entry",
							"index", i,
							applog.FieldError, err)
						continue
					}
					valid = append(valid, e)
				}

				n, err := store.CopyAll(ctx, env.Store, valid)
				if err != nil {
					return fmt.Errorf("imported %d of %d entries: %w", n, len(valid), err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries, skipped %d\n", n, len(src)-len(valid))
				return nil
			})
		},
	}
}
