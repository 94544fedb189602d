// Copyright 2025 Seedmask
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package validate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/seedmask/seedmask/internal/db/postgres/introspect"
	pgDomains "github.com/seedmask/seedmask/internal/domains"
	"github.com/seedmask/seedmask/internal/utils/logger"
	stringsUtils "github.com/seedmask/seedmask/internal/utils/strings"
	"github.com/seedmask/seedmask/pkg/rowkit"
)

const maxCellLength = 64

var (
	Cmd = &cobra.Command{
		Use:   "validate",
		Short: "check transformation rules against the live database schema",
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
				log.Err(err).Msg("")
			}

			if Config.Validate.RowsLimit == 0 {
				log.Fatal().Msgf("--rows-limit must be greater than 0 got %d", Config.Validate.RowsLimit)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if err := run(ctx); err != nil {
				log.Fatal().Err(err).Msg("")
			}
		},
	}
	Config = pgDomains.NewConfig()
)

func run(ctx context.Context) error {
	rules := Config.Stream.Rules
	if len(rules) == 0 {
		return errors.New("stream.rules is empty: nothing to validate")
	}

	// Bad transformer kinds, params and when expressions surface here,
	// before any database connection is made.
	ts, err := pgDomains.BuildTransformers(rules)
	if err != nil {
		return err
	}
	registry, err := rowkit.BuildRegistry(ts, pgDomains.RegistryOptions(Config.Stream.OnDuplicate)...)
	if err != nil {
		return err
	}
	reportDuplicates(rules)

	conn, err := introspect.Connect(ctx, Config.Stream.PgDumpOptions.ConnectionString())
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("error closing database connection")
		}
	}()

	problems := 0
	tables := make(map[string]*introspect.Table)
	for _, r := range rules {
		t, ok := tables[r.Table]
		if !ok {
			schema, name := introspect.SplitQualified(r.Table)
			t, err = introspect.GetTable(ctx, conn, schema, name)
			if err != nil {
				if errors.Is(err, introspect.ErrTableNotFound) {
					log.Error().
						Str("Table", r.Table).
						Str("Column", r.Column).
						Msg("rule targets a table that does not exist")
					problems++
					tables[r.Table] = nil
					continue
				}
				return err
			}
			tables[r.Table] = t
		}
		if t == nil {
			// Already reported as missing for an earlier rule.
			problems++
			continue
		}
		if _, ok := t.ColumnByName(r.Column); !ok {
			log.Error().
				Str("Table", r.Table).
				Str("Column", r.Column).
				Msg("rule targets a column that does not exist")
			problems++
		}
	}
	if problems > 0 {
		return fmt.Errorf("validation found %d problem(s)", problems)
	}
	log.Info().
		Int("Rules", len(rules)).
		Msg("all transformation rules match the database schema")

	if Config.Validate.Data {
		return printDataSample(ctx, conn, registry)
	}
	return nil
}

// reportDuplicates warns about rules sharing a table.column key. With the
// default on_duplicate policy the registry build has already failed by now,
// so this only fires for last-wins.
func reportDuplicates(rules []*pgDomains.Rule) {
	seen := make(map[string]int, len(rules))
	for i, r := range rules {
		key := r.Table + "." + r.Column
		if first, ok := seen[key]; ok {
			log.Warn().
				Str("TableColumn", key).
				Int("FirstRule", first).
				Int("DuplicateRule", i).
				Msg("duplicate rule, the later one wins")
			continue
		}
		seen[key] = i
	}
}

// printDataSample pulls rows_limit rows from every table the rules target,
// runs them through the registry and renders original next to transformed.
func printDataSample(ctx context.Context, conn *pgx.Conn, registry *rowkit.Registry) error {
	var data [][]string
	for _, table := range targetTables(Config.Stream.Rules) {
		rows, err := introspect.SampleRows(ctx, conn, table, Config.Validate.RowsLimit)
		if err != nil {
			return fmt.Errorf("unable to sample %s: %w", table, err)
		}
		for i, row := range rows {
			transformed, err := registry.ApplyRow(row)
			if err != nil {
				return err
			}
			for j, c := range row.Columns {
				data = append(data, []string{
					table,
					strconv.Itoa(i + 1),
					c.Name(),
					stringsUtils.WrapString(c.Literal(), maxCellLength),
					stringsUtils.WrapString(transformed.Columns[j].Literal(), maxCellLength),
				})
			}
		}
	}

	t := tablewriter.NewWriter(os.Stdout)
	t.SetHeader([]string{"table", "row", "column", "original", "transformed"})
	t.AppendBulk(data)
	t.SetRowLine(true)
	t.SetAutoMergeCellsByColumnIndex([]int{0, 1})
	t.Render()
	return nil
}

// targetTables returns the distinct rule tables in first-appearance order.
func targetTables(rules []*pgDomains.Rule) []string {
	var tables []string
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if _, ok := seen[r.Table]; ok {
			continue
		}
		seen[r.Table] = struct{}{}
		tables = append(tables, r.Table)
	}
	return tables
}

func init() {
	dataFlagName := "data"
	Cmd.Flags().Bool(
		dataFlagName, false, "sample --rows-limit rows per target table and print original next to transformed",
	)
	flag := Cmd.Flags().Lookup(dataFlagName)
	if err := viper.BindPFlag("validate.data", flag); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}

	rowsLimitFlagName := "rows-limit"
	Cmd.Flags().Uint64(
		rowsLimitFlagName, 10, "number of rows to sample per table with --data",
	)
	flag = Cmd.Flags().Lookup(rowsLimitFlagName)
	if err := viper.BindPFlag("validate.rows_limit", flag); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
