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

package rules

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	pgDomains "github.com/seedmask/seedmask/internal/domains"
	"github.com/seedmask/seedmask/internal/utils/logger"
)

var (
	Cmd = &cobra.Command{
		Use:   "rules",
		Short: "inspect and scaffold the transformation rule configuration",
	}
	Config = pgDomains.NewConfig()
	output string

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "write a commented starter configuration",
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
				log.Err(err).Msg("")
			}

			if err := runInit(); err != nil {
				log.Fatal().Err(err).Msg("")
			}
		},
	}

	showCmd = &cobra.Command{
		Use:   "show",
		Short: "print the effective configuration after file, flag and environment merging",
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
				log.Err(err).Msg("")
			}

			if err := runShow(); err != nil {
				log.Fatal().Err(err).Msg("")
			}
		},
	}
)

func runInit() error {
	if output == "" || output == "-" {
		_, err := os.Stdout.WriteString(starterConfig)
		return err
	}

	if _, err := os.Stat(output); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", output)
	}
	if err := os.WriteFile(output, []byte(starterConfig), 0644); err != nil {
		return fmt.Errorf("unable to write %s: %w", output, err)
	}
	log.Info().Str("Path", output).Msg("starter configuration written")
	return nil
}

func runShow() error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(Config); err != nil {
		return fmt.Errorf("unable to render configuration: %w", err)
	}
	return enc.Close()
}

func init() {
	initCmd.Flags().StringVarP(&output, "output", "o", "", "write the starter file here instead of stdout")
	Cmd.AddCommand(initCmd)
	Cmd.AddCommand(showCmd)
}

// starterConfig is the scaffold emitted by rules init. It decodes into the
// config model as is, see rules_test.go.
const starterConfig = `# Seedmask configuration.
#
# The stream command spawns pg_dump against the connection below, rewrites
# row INSERT statements according to the rules and writes the anonymized
# dump to stdout. The database password never goes on the command line:
# export PGPASSWORD instead, it is handed to pg_dump via the environment.

common:
  # Directory holding the pg_dump executable. Empty resolves it from PATH.
  pg_bin_path: ""

log:
  format: text # text|json
  level: info # debug|info|warn|error

storage:
  # Where dump objects live when stream.input names one. directory|s3
  type: directory
  directory:
    path: "."

stream:
  pg_dump_options:
    dbname: postgres
    host: localhost
    port: 5432
    username: postgres
  # input: ""            # empty spawns pg_dump, "-" reads stdin, otherwise a dump object in storage
  # output: ""           # empty or "-" writes to stdout
  # strict: false        # abort on the first malformed statement instead of skipping it
  # on_duplicate: error  # error|last-wins for rules sharing a table.column
  # producer_timeout: 2h # abort the pg_dump producer after this duration
  rules:
    # Tables match by the exact name the dump spells, usually schema-qualified.
    # Run seedmask list-transformers for the full transformer catalog.
    - table: public.users
      column: email
      transformer: email
    - table: public.users
      column: first_name
      transformer: first_name
    - table: public.users
      column: note
      transformer: redact
      params:
        placeholder: "*"
    # A when expression limits the rule to matching rows. The original row is
    # visible as record.<column>.
    - table: public.users
      column: salary
      transformer: random
      when: record.role != "intern"
`
