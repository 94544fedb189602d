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

package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	gostr "github.com/xhit/go-str2duration/v2"

	pgDomains "github.com/seedmask/seedmask/internal/domains"
	"github.com/seedmask/seedmask/internal/storages/builder"
	"github.com/seedmask/seedmask/internal/utils/logger"
	"github.com/seedmask/seedmask/pkg/rowkit"
	"github.com/seedmask/seedmask/pkg/source"
)

var (
	Cmd = &cobra.Command{
		Use:   "stream",
		Short: "dump the database, transform rows on the fly, and write anonymized inserts",
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
				log.Fatal().Err(err).Msg("")
			}

			if err := run(); err != nil {
				log.Fatal().Err(err).Msg("stream failed")
			}
		},
	}
	Config = pgDomains.NewConfig()
)

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if Config.Stream.ProducerTimeout != "" {
		d, err := gostr.ParseDuration(Config.Stream.ProducerTimeout)
		if err != nil {
			return fmt.Errorf("invalid stream.producer_timeout: %w", err)
		}
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	ts, err := pgDomains.BuildTransformers(Config.Stream.Rules)
	if err != nil {
		return err
	}
	registry, err := rowkit.BuildRegistry(ts, pgDomains.RegistryOptions(Config.Stream.OnDuplicate)...)
	if err != nil {
		return err
	}
	if registry.Len() == 0 {
		log.Warn().Msg("no transformation rules configured, rows pass through unchanged")
	}

	src, err := buildSource(ctx)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(Config.Stream.Output)
	if err != nil {
		return err
	}
	defer closeOut()

	w := bufio.NewWriter(out)
	var rows uint64
	start := time.Now()
	err = src.StreamRows(ctx, registry, func(_, transformed rowkit.Row) error {
		if _, err := w.WriteString(transformed.InsertStatement()); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
		rows++
		return nil
	})
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("unable to flush output: %w", err)
	}

	log.Info().
		Uint64("Rows", rows).
		Str("Elapsed", time.Since(start).String()).
		Msg("stream completed")
	return nil
}

// buildSource picks the dump source from stream.input: empty spawns pg_dump,
// "-" consumes stdin, anything else names a dump object in the configured
// storage.
func buildSource(ctx context.Context) (source.RowStreamer, error) {
	var opts []source.Option
	if Config.Stream.Strict {
		opts = append(opts, source.WithStrict())
	}
	if Config.Stream.UsePgzip {
		opts = append(opts, source.WithPgzip())
	}

	switch Config.Stream.Input {
	case "":
		return source.NewPostgres(Config.Common.PgBinPath, &Config.Stream.PgDumpOptions, opts...), nil
	case "-":
		return source.NewReader(os.Stdin, opts...), nil
	default:
		st, err := builder.GetStorage(ctx, &Config.Storage, &Config.Log)
		if err != nil {
			return nil, fmt.Errorf("unable to build storage: %w", err)
		}
		return source.NewDumpFile(st, Config.Stream.Input, opts...), nil
	}
}

// openOutput resolves stream.output. Stdout is the default so the command
// composes into pipelines; logging goes to stderr and never mixes in.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create output file: %w", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing output file")
		}
	}, nil
}

func init() {
	// Stream options:
	Cmd.Flags().StringP("input", "i", "", "dump input: empty spawns pg_dump, - reads stdin, otherwise a dump object in storage")
	Cmd.Flags().StringP("output", "o", "", "write anonymized statements to this file instead of stdout")
	Cmd.Flags().BoolP("strict", "", false, "abort on the first malformed statement instead of skipping it")
	Cmd.Flags().BoolP("use-pgzip", "", false, "use the parallel pgzip implementation for compressed dumps")
	Cmd.Flags().StringP("on-duplicate", "", pgDomains.OnDuplicateError,
		fmt.Sprintf("behavior for duplicate table.column rules [%s|%s]",
			pgDomains.OnDuplicateError, pgDomains.OnDuplicateLastWins,
		),
	)
	Cmd.Flags().StringP("producer-timeout", "", "", "abort the dump producer after this duration, e.g. 30m or 2h45m")

	for flagName, key := range map[string]string{
		"input":            "stream.input",
		"output":           "stream.output",
		"strict":           "stream.strict",
		"use-pgzip":        "stream.use_pgzip",
		"on-duplicate":     "stream.on_duplicate",
		"producer-timeout": "stream.producer_timeout",
	} {
		if err := viper.BindPFlag(key, Cmd.Flags().Lookup(flagName)); err != nil {
			log.Fatal().Err(err).Msg("")
		}
	}

	// Options controlling the output content:
	Cmd.Flags().BoolP("data-only", "a", false, "dump only the data, not the schema")
	Cmd.Flags().StringP("encoding", "E", "", "dump the data in encoding ENCODING")
	Cmd.Flags().StringSliceVarP(
		&Config.Stream.PgDumpOptions.Schema, "schema", "n", []string{}, "dump the specified schema(s) only",
	)
	Cmd.Flags().StringSliceVarP(
		&Config.Stream.PgDumpOptions.ExcludeSchema, "exclude-schema", "N", []string{},
		"do NOT dump the specified schema(s)",
	)
	Cmd.Flags().StringSliceVarP(
		&Config.Stream.PgDumpOptions.Table, "table", "t", []string{}, "dump the specified table(s) only",
	)
	Cmd.Flags().StringSliceVarP(
		&Config.Stream.PgDumpOptions.ExcludeTable, "exclude-table", "T", []string{}, "do NOT dump the specified table(s)",
	)
	Cmd.Flags().StringSliceVarP(
		&Config.Stream.PgDumpOptions.ExcludeTableData, "exclude-table-data", "", []string{},
		"do NOT dump data for the specified table(s)",
	)
	Cmd.Flags().StringP("extra-float-digits", "", "", "override default setting for extra_float_digits")
	Cmd.Flags().IntP("lock-wait-timeout", "", -1, "fail after waiting TIMEOUT for a table lock")
	Cmd.Flags().BoolP("no-comments", "", false, "do not dump comments")
	Cmd.Flags().BoolP("on-conflict-do-nothing", "", false, "add ON CONFLICT DO NOTHING to INSERT commands")
	Cmd.Flags().BoolP("quote-all-identifiers", "", false, "quote all identifiers, even if not key words")
	Cmd.Flags().StringP("snapshot", "", "", "use given snapshot for the dump")
	Cmd.Flags().BoolP("verbose", "v", false, "verbose mode")
	Cmd.Flags().BoolP(
		"enable-row-security", "", false, "enable row security (dump only content user has access to)",
	)

	// Connection options:
	Cmd.Flags().StringP("dbname", "d", "postgres", "database to dump")
	Cmd.Flags().StringP("host", "h", "/var/run/postgres", "database server host or socket directory")
	Cmd.Flags().IntP("port", "p", 5432, "database server port number")
	Cmd.Flags().StringP("username", "U", "postgres", "connect as specified database user")
	Cmd.Flags().StringP("role", "", "", "do SET ROLE before dump")

	for _, flagName := range []string{
		"data-only", "encoding", "schema", "exclude-schema", "table", "exclude-table",
		"exclude-table-data", "extra-float-digits", "lock-wait-timeout", "no-comments",
		"on-conflict-do-nothing", "quote-all-identifiers", "snapshot", "verbose",
		"enable-row-security",

		"dbname", "host", "port", "username", "role",
	} {
		flag := Cmd.Flags().Lookup(flagName)
		if err := viper.BindPFlag(fmt.Sprintf("%s.%s", "stream.pg_dump_options", flagName), flag); err != nil {
			log.Fatal().Err(err).Msg("")
		}
	}

	if err := viper.BindEnv("stream.pg_dump_options.dbname", "PGDATABASE"); err != nil {
		panic(err)
	}
	if err := viper.BindEnv("stream.pg_dump_options.host", "PGHOST"); err != nil {
		panic(err)
	}
	if err := viper.BindEnv("stream.pg_dump_options.port", "PGPORT"); err != nil {
		panic(err)
	}
	if err := viper.BindEnv("stream.pg_dump_options.username", "PGUSER"); err != nil {
		panic(err)
	}
}
