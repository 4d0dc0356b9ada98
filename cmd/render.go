package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tablekit/internal/limiter"
	"github.com/oakwood-commons/tablekit/internal/render"
	"github.com/oakwood-commons/tablekit/pkg/logger"
	"github.com/oakwood-commons/tablekit/pkg/record"
)

type renderOptions struct {
	output   string
	selected []string
	moves    []string
	limit    limiter.Config
	demo     demoOptions
}

func newRenderCmd() *cobra.Command {
	o := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the mock users table without a TUI",
		Example: "  tablekit render\n" +
			"  tablekit render -o json --select 2 --select 5\n" +
			"  tablekit render -o html --move 1:after:3\n" +
			"  tablekit render --where '_.active' -o yaml\n" +
			"  tablekit render --input users.csv --key email --tail 5",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "table", "output format: table|html|json|yaml|toml")
	f.StringSliceVar(&o.selected, "select", nil, "keys to mark selected")
	f.StringArrayVar(&o.moves, "move", nil, "reorder before rendering, as moving:before|after:target (repeatable)")
	f.IntVar(&o.limit.Limit, "limit", 0, "print only the first N rows after filtering and moves")
	f.IntVar(&o.limit.Offset, "offset", 0, "skip the first N rows")
	f.IntVar(&o.limit.Tail, "tail", 0, "print only the last N rows; excludes --limit")
	f.StringVar(&o.demo.input, "input", "", "records file (json, ndjson, yaml, toml, csv) shown instead of mock users")
	f.IntVar(&o.demo.count, "count", 0, "number of mock users (default from config)")
	f.Int64Var(&o.demo.seed, "seed", 0, "seed for the mock users (default from config)")
	f.BoolVar(&o.demo.selectable, "selectable", true, "include the selection column")
	f.BoolVar(&o.demo.sortable, "sortable", true, "include the reorder handle column")
	f.StringVar(&o.demo.keyField, "key", "", "record field identifying rows (default from config)")
	f.StringVar(&o.demo.strategy, "strategy", "", "reorder strategy for --move: corrected|legacy (default from config)")
	f.StringVar(&o.demo.where, "where", "", "CEL filter over each user, bound to '_'")
	return cmd
}

func runRender(cmd *cobra.Command, o *renderOptions) error {
	ctx := cmd.Context()
	format, err := render.ParseFormat(o.output)
	if err != nil {
		return err
	}
	if err := o.limit.Validate(); err != nil {
		return err
	}
	moves := make([]moveSpec, 0, len(o.moves))
	for _, s := range o.moves {
		mv, err := parseMove(s)
		if err != nil {
			return err
		}
		moves = append(moves, mv)
	}

	cfg, err := loadMergedConfig(ctx)
	if err != nil {
		return err
	}
	if err := o.demo.apply(cmd, &cfg); err != nil {
		return err
	}
	data, err := buildDataset(ctx, cfg)
	if err != nil {
		return err
	}
	strategy, err := cfg.Strategy()
	if err != nil {
		return err
	}
	rows, err := applyMoves(data.Rows, cfg.Table.KeyField, strategy, moves)
	if err != nil {
		return err
	}
	rows = limiter.Apply(o.limit, rows)

	selected := make([]record.Key, len(o.selected))
	for i, k := range o.selected {
		selected[i] = record.Key(k)
	}
	logger.FromContext(ctx).V(1).Info("rendering",
		"format", string(format), "moves", len(moves), "rows", len(rows), logger.SelectedKey, len(selected))
	return render.Write(cmd.OutOrStdout(), format, render.Document{
		Columns:    data.Columns,
		Rows:       rows,
		KeyField:   cfg.Table.KeyField,
		Selected:   selected,
		Selectable: cfg.Table.Selectable,
		Sortable:   cfg.Table.Sortable,
		CellPx:     cfg.Table.CellPx,
		EmptyText:  cfg.Table.EmptyText,
	})
}
