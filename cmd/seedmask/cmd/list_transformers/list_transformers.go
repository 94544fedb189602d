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

package list_transformers

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	pgDomains "github.com/seedmask/seedmask/internal/domains"
	"github.com/seedmask/seedmask/internal/utils/logger"
	stringsUtils "github.com/seedmask/seedmask/internal/utils/strings"
	"github.com/seedmask/seedmask/pkg/transformers"
)

var (
	Cmd = &cobra.Command{
		Use:   "list-transformers",
		Short: "list of the allowed transformers with documentation",
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
				log.Err(err).Msg("")
			}

			if err := run(args); err != nil {
				log.Err(err).Msg("")
			}
		},
	}
	Config = pgDomains.NewConfig()
	format string
)

const (
	JsonFormatName = "json"
	TextFormatName = "text"

	descriptionWidth = 72
)

func run(transformerNames []string) error {
	defs, err := selectDefinitions(transformers.DefaultRegistry, transformerNames)
	if err != nil {
		return err
	}

	switch format {
	case JsonFormatName:
		err = listTransformersJson(defs)
	case TextFormatName:
		err = listTransformersText(defs)
	default:
		return fmt.Errorf(`unknown format %s`, format)
	}
	if err != nil {
		return fmt.Errorf("error listing transformers: %w", err)
	}

	return nil
}

// selectDefinitions resolves the requested names, or every registered kind
// sorted by name when no names are given.
func selectDefinitions(registry *transformers.Registry, transformerNames []string) ([]*transformers.Definition, error) {
	if len(transformerNames) == 0 {
		return registry.List(), nil
	}

	defs := make([]*transformers.Definition, 0, len(transformerNames))
	for _, name := range transformerNames {
		def, ok := registry.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown transformer name \"%s\"", name)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func listTransformersJson(defs []*transformers.Definition) error {
	return json.NewEncoder(os.Stdout).Encode(defs)
}

func listTransformersText(defs []*transformers.Definition) error {
	var data [][]string
	for _, def := range defs {
		data = append(data, []string{def.Name, stringsUtils.WrapString(def.Description, descriptionWidth)})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"name", "description"})
	table.AppendBulk(data)
	table.SetRowLine(true)
	table.Render()

	return nil
}

func init() {
	Cmd.Flags().StringVarP(&format, "format", "f", TextFormatName, "output format [text|json]")
}
