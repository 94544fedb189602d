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

package domains

import (
	"sync"

	"github.com/seedmask/seedmask/internal/db/postgres/pgdump"
	"github.com/seedmask/seedmask/internal/storages/directory"
	"github.com/seedmask/seedmask/internal/storages/s3"
	"github.com/seedmask/seedmask/pkg/transformers"
)

var (
	Cfg  *Config
	once sync.Once
)

const (
	defaultStorageType          = "directory"
	defaultDirectoryStoragePath = "."
	defaultValidateRowsLimit    = 10

	OnDuplicateError    = "error"
	OnDuplicateLastWins = "last-wins"
)

func NewConfig() *Config {
	once.Do(
		func() {
			Cfg = &Config{
				Storage: StorageConfig{
					Type:      defaultStorageType,
					S3:        s3.NewConfig(),
					Directory: &directory.Config{Path: defaultDirectoryStoragePath},
				},
				Stream: Stream{
					OnDuplicate: OnDuplicateError,
				},
				Validate: Validate{
					RowsLimit: defaultValidateRowsLimit,
				},
			}
		},
	)
	return Cfg
}

type Config struct {
	Common   Common        `mapstructure:"common" yaml:"common" json:"common"`
	Log      LogConfig     `mapstructure:"log" yaml:"log" json:"log"`
	Storage  StorageConfig `mapstructure:"storage" yaml:"storage" json:"storage"`
	Stream   Stream        `mapstructure:"stream" yaml:"stream" json:"stream"`
	Validate Validate      `mapstructure:"validate" yaml:"validate" json:"validate"`
}

type Common struct {
	PgBinPath string `mapstructure:"pg_bin_path" yaml:"pg_bin_path,omitempty" json:"pg_bin_path,omitempty"`
}

type LogConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format,omitempty"`
	Level  string `mapstructure:"level" yaml:"level" json:"level,omitempty"`
}

type StorageConfig struct {
	Type      string            `mapstructure:"type" yaml:"type" json:"type,omitempty"`
	S3        *s3.Config        `mapstructure:"s3"  json:"s3,omitempty" yaml:"s3"`
	Directory *directory.Config `mapstructure:"directory" json:"directory,omitempty" yaml:"directory"`
}

// Stream configures the anonymization pipeline. Input selects the dump
// source: empty spawns pg_dump, "-" reads stdin, anything else is an object
// path inside the configured storage.
type Stream struct {
	PgDumpOptions   pgdump.Options `mapstructure:"pg_dump_options" yaml:"pg_dump_options" json:"pg_dump_options"`
	Input           string         `mapstructure:"input" yaml:"input" json:"input,omitempty"`
	Output          string         `mapstructure:"output" yaml:"output" json:"output,omitempty"`
	Strict          bool           `mapstructure:"strict" yaml:"strict" json:"strict,omitempty"`
	UsePgzip        bool           `mapstructure:"use_pgzip" yaml:"use_pgzip" json:"use_pgzip,omitempty"`
	OnDuplicate     string         `mapstructure:"on_duplicate" yaml:"on_duplicate" json:"on_duplicate,omitempty"`
	ProducerTimeout string         `mapstructure:"producer_timeout" yaml:"producer_timeout" json:"producer_timeout,omitempty"`
	Rules           []*Rule        `mapstructure:"rules" yaml:"rules" json:"rules,omitempty"`
}

type Validate struct {
	Data      bool   `mapstructure:"data" yaml:"data" json:"data,omitempty"`
	RowsLimit uint64 `mapstructure:"rows_limit" yaml:"rows_limit" json:"rows_limit,omitempty"`
}

// Rule binds one transformer kind to a table.column target. Params decoding
// bypasses viper (see internal/utils/config), so user payloads keep their
// key case.
type Rule struct {
	Table       string              `mapstructure:"table" yaml:"table" json:"table,omitempty"`
	Column      string              `mapstructure:"column" yaml:"column" json:"column,omitempty"`
	Transformer string              `mapstructure:"transformer" yaml:"transformer" json:"transformer,omitempty"`
	Params      transformers.Params `mapstructure:"params" yaml:"params,omitempty" json:"params,omitempty"`
	When        string              `mapstructure:"when" yaml:"when" json:"when,omitempty"`
}
