package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tablekit/internal/config"
	"github.com/oakwood-commons/tablekit/internal/demo"
	"github.com/oakwood-commons/tablekit/internal/ui"
	"github.com/oakwood-commons/tablekit/internal/ui/table"
	"github.com/oakwood-commons/tablekit/pkg/logger"
	"github.com/oakwood-commons/tablekit/pkg/settings"
	"github.com/oakwood-commons/tablekit/pkg/tui"
)

type demoOptions struct {
	input      string
	count      int
	seed       int64
	selectable bool
	sortable   bool
	keyField   string
	strategy   string
	failEvery  int
	latency    time.Duration
	timeout    time.Duration
	where      string
	theme      string
	snapshot   bool
	press      []string
	width      int
	height     int
}

func newDemoCmd() *cobra.Command {
	o := &demoOptions{}
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the interactive table over mock users",
		Example: "  tablekit demo\n" +
			"  tablekit demo --count 50 --fail-every 3 --latency 1s\n" +
			"  tablekit demo --where '_.role == \"admin\"' --strategy legacy\n" +
			"  tablekit demo --snapshot --no-color --press '<Drag:0,3,0,8>'",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.input, "input", "", "records file (json, ndjson, yaml, toml, csv) shown instead of mock users")
	f.IntVar(&o.count, "count", 0, "number of mock users (default from config)")
	f.Int64Var(&o.seed, "seed", 0, "seed for the mock users (default from config)")
	f.BoolVar(&o.selectable, "selectable", true, "show selection checkboxes")
	f.BoolVar(&o.sortable, "sortable", true, "allow drag and drop reordering")
	f.StringVar(&o.keyField, "key", "", "record field identifying rows (default from config)")
	f.StringVar(&o.strategy, "strategy", "", "reorder strategy: corrected|legacy (default from config)")
	f.IntVar(&o.failEvery, "fail-every", 0, "fail every Nth reorder request (0 never fails)")
	f.DurationVar(&o.latency, "latency", 0, "simulated latency of each reorder request")
	f.DurationVar(&o.timeout, "timeout", 0, "give up on a reorder request after this long (0 waits)")
	f.StringVar(&o.where, "where", "", "CEL filter over each user, bound to '_' (e.g. '_.age > 30')")
	f.StringVar(&o.theme, "theme", "", "theme name (default from config)")
	f.BoolVar(&o.snapshot, "snapshot", false, "render a single frame and exit; honors --width/--height")
	f.StringArrayVar(&o.press, "press", nil, "simulate input on startup: keys (<Down>, <Space>, <S-Down>, J) and mouse (<Click:X,Y>, <Drag:X1,Y1,X2,Y2>)")
	f.IntVar(&o.width, "width", 0, "width in columns (default terminal width)")
	f.IntVar(&o.height, "height", 0, "height in rows (default terminal height)")
	return cmd
}

// apply overrides cfg with the flags set on the command line.
func (o *demoOptions) apply(cmd *cobra.Command, cfg *config.File) error {
	changed := cmd.Flags().Changed
	if changed("input") {
		cfg.Demo.Input = o.input
	}
	if changed("count") {
		cfg.Demo.Count = o.count
	}
	if changed("seed") {
		cfg.Demo.Seed = o.seed
	}
	if changed("selectable") {
		cfg.Table.Selectable = o.selectable
	}
	if changed("sortable") {
		cfg.Table.Sortable = o.sortable
	}
	if changed("key") {
		cfg.Table.KeyField = o.keyField
	}
	if changed("strategy") {
		cfg.Table.Reorder.Strategy = o.strategy
	}
	if changed("fail-every") {
		cfg.Demo.FailEvery = o.failEvery
	}
	if changed("latency") {
		cfg.Demo.Latency = o.latency
	}
	if changed("timeout") {
		cfg.Table.Reorder.Timeout = o.timeout
	}
	if changed("where") {
		cfg.Demo.Where = o.where
	}
	if err := selectTheme(cfg, o.theme); err != nil {
		return err
	}
	return cfg.Validate()
}

func runDemo(cmd *cobra.Command, o *demoOptions) error {
	ctx := cmd.Context()
	run := settings.FromContextOrDefault(ctx)
	cfg, err := loadMergedConfig(ctx)
	if err != nil {
		return err
	}
	if err := o.apply(cmd, &cfg); err != nil {
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
	theme, err := cfg.ActiveTheme()
	if err != nil {
		return err
	}

	// The full-screen program owns the terminal; logs go to --log-file or
	// nowhere.
	if !o.snapshot && !cmd.Flags().Changed("log-file") {
		ctx = logger.WithLogger(ctx, logger.GetNoopLogger())
	}
	run.ReorderTimeout = cfg.Table.Reorder.Timeout
	run.Interactive = !o.snapshot

	host := demo.NewHost(data.Rows, demo.Options{
		KeyField:  cfg.Table.KeyField,
		Strategy:  strategy,
		Latency:   cfg.Demo.Latency,
		FailEvery: cfg.Demo.FailEvery,
	})
	opts := ui.Options{
		Title: cfg.App.About.Name,
		Props: table.Props{
			Columns:           data.Columns,
			Rows:              host.Rows(),
			KeyField:          cfg.Table.KeyField,
			Selectable:        cfg.Table.Selectable,
			Sortable:          cfg.Table.Sortable,
			OnChangeSelected:  host.SetSelected,
			OnChangeRowsOrder: host.Reorder,
			RowHeight:         cfg.Table.RowHeight,
			CellPx:            cfg.Table.CellPx,
			EmptyText:         cfg.Table.EmptyText,
			Strategy:          strategy,
			Timeout:           run.ReorderTimeout,
			Context:           ctx,
		},
		Theme:   ui.ThemeFromConfig(theme),
		NoColor: run.NoColor,
		Host:    host,
		Width:   o.width,
		Height:  o.height,
	}

	if o.snapshot {
		w, h := tui.DetectTerminalSize()
		size := resolveSnapshotSize(o.width, o.height, w, h)
		opts.Width, opts.Height = size.Width, size.Height
		_, err := fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSnapshot(ui.SnapshotConfig{Options: opts, StartKeys: o.press}))
		return err
	}
	if err := ui.Run(ctx, opts, o.press); err != nil {
		return fmt.Errorf("run demo: %w", err)
	}
	received, applied := host.Calls()
	logger.FromContext(cmd.Context()).V(1).Info("demo finished",
		"reorder_requests", received, "reorders_applied", applied, logger.SelectedKey, len(host.Selected()))
	return nil
}
