package cmd

import (
	"context"
	"fmt"

	"github.com/oakwood-commons/tablekit/internal/cel"
	"github.com/oakwood-commons/tablekit/internal/config"
	"github.com/oakwood-commons/tablekit/internal/mock"
	"github.com/oakwood-commons/tablekit/pkg/columns"
	"github.com/oakwood-commons/tablekit/pkg/loader"
	"github.com/oakwood-commons/tablekit/pkg/logger"
	"github.com/oakwood-commons/tablekit/pkg/record"
	"github.com/oakwood-commons/tablekit/pkg/settings"
)

// loadMergedConfig loads the defaults merged with the resolved config file.
func loadMergedConfig(ctx context.Context) (config.File, error) {
	run := settings.FromContextOrDefault(ctx)
	path := config.ResolvePath(run.ConfigFile)
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	logger.FromContext(ctx).V(1).Info("config loaded", "path", path)
	return cfg, nil
}

// dataset is the mock list and its columns after filtering.
type dataset struct {
	Rows    []record.Record
	Columns []columns.Column
}

// buildDataset reads demo.input (or generates the mock users), applies the
// demo filter and checks that every row carries the key field.
func buildDataset(ctx context.Context, cfg config.File) (dataset, error) {
	log := logger.FromContext(ctx)
	cols := cfg.Columns
	var rows []record.Record
	if cfg.Demo.Input != "" {
		var err error
		if rows, err = loader.LoadFile(cfg.Demo.Input); err != nil {
			return dataset{}, err
		}
		if !anyFieldPresent(cols, rows) {
			cols = fieldColumns(loader.Fields(rows), cfg.Table.KeyField)
		}
		log.V(1).Info("input loaded", "path", cfg.Demo.Input, "rows", len(rows))
	} else {
		rows = mock.Users(cfg.Demo.Count, cfg.Demo.Seed)
	}
	filter, err := cel.Compile(cfg.Demo.Where)
	if err != nil {
		return dataset{}, err
	}
	rows, err = filter.Apply(rows)
	if err != nil {
		return dataset{}, err
	}
	if _, err := record.Keys(rows, cfg.Table.KeyField); err != nil {
		return dataset{}, fmt.Errorf("key field %q: %w", cfg.Table.KeyField, err)
	}
	log.V(1).Info("dataset ready",
		"rows", len(rows), "filter", filter.String(), logger.KeyFieldKey, cfg.Table.KeyField)
	return dataset{Rows: rows, Columns: mock.BindRenderers(cols)}, nil
}

// anyFieldPresent reports whether some configured column reads a field the
// rows carry, or renders without one.
func anyFieldPresent(cols []columns.Column, rows []record.Record) bool {
	if len(rows) == 0 {
		return true
	}
	for _, c := range cols {
		if c.Field == "" {
			return true
		}
		for _, r := range rows {
			if _, ok := r[c.Field]; ok {
				return true
			}
		}
	}
	return false
}

// fieldColumns derives one column per field, key field first.
func fieldColumns(fields []string, keyField string) []columns.Column {
	out := make([]columns.Column, 0, len(fields))
	for _, f := range fields {
		c := columns.Column{Title: f, Field: f}
		if f == keyField {
			out = append([]columns.Column{c}, out...)
			continue
		}
		out = append(out, c)
	}
	return out
}
