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

package pgdump

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path"
	"strconv"
	"strings"
)

const pgDumpExecutable = "pg_dump"

const pgDefaultPort = 5432

type PgDump struct {
	BinPath string
}

func NewPgDump(binPath string) *PgDump {
	return &PgDump{
		BinPath: binPath,
	}
}

func (pd *PgDump) CommandPath() string {
	return path.Join(pd.BinPath, pgDumpExecutable)
}

// Command builds the pg_dump invocation with stdout left for the caller to
// capture. The connection secret travels in the child environment, never in
// the argument list.
func (pd *PgDump) Command(ctx context.Context, options *Options) *exec.Cmd {
	cmd := exec.CommandContext(ctx, pd.CommandPath(), options.GetParams()...)
	cmd.Env = append(os.Environ(), options.Env()...)
	return cmd
}

// Options holds the pg_dump flags the streamer supports. The output is always
// plain-text SQL with one self-describing single-row INSERT per table row,
// everything else is tuning and filtering on top of that.
type Options struct {
	// Options controlling the output content
	DataOnly            bool     `mapstructure:"data-only"`
	Encoding            string   `mapstructure:"encoding"`
	Schema              []string `mapstructure:"schema"`
	ExcludeSchema       []string `mapstructure:"exclude-schema"`
	Table               []string `mapstructure:"table"`
	ExcludeTable        []string `mapstructure:"exclude-table"`
	ExcludeTableData    []string `mapstructure:"exclude-table-data"`
	ExtraFloatDigits    string   `mapstructure:"extra-float-digits"`
	LockWaitTimeout     int      `mapstructure:"lock-wait-timeout"`
	NoComments          bool     `mapstructure:"no-comments"`
	OnConflictDoNothing bool     `mapstructure:"on-conflict-do-nothing"`
	QuoteAllIdentifiers bool     `mapstructure:"quote-all-identifiers"`
	Snapshot            string   `mapstructure:"snapshot"`
	Verbose             bool     `mapstructure:"verbose"`
	EnableRowSecurity   bool     `mapstructure:"enable-row-security"`

	// Connection options:
	DbName   string `mapstructure:"dbname"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Role     string `mapstructure:"role"`
}

// ConnectionString returns a DSN for the same server the dump runs against,
// used by the validation command to introspect the schema. DbName may already
// be a URI or keyword/value DSN, in which case it wins as is.
func (o *Options) ConnectionString() string {
	if strings.HasPrefix(o.DbName, "postgresql://") ||
		strings.HasPrefix(o.DbName, "postgres://") ||
		strings.Contains(o.DbName, "=") {
		return o.DbName
	}

	var parts []string
	if o.Host != "" {
		parts = append(parts, fmt.Sprintf("host=%s", o.Host))
	}
	if o.Port > 0 && o.Port != pgDefaultPort {
		parts = append(parts, fmt.Sprintf("port=%d", o.Port))
	}
	if o.Username != "" {
		parts = append(parts, fmt.Sprintf("user=%s", o.Username))
	}
	if o.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", o.Password))
	}
	if o.DbName != "" {
		parts = append(parts, fmt.Sprintf("dbname=%s", o.DbName))
	}
	return strings.Join(parts, " ")
}

// GetParams renders the pg_dump argument list. --column-inserts is always
// present: the row decoder needs one self-describing INSERT per row. The
// password is deliberately absent, see Env.
func (o *Options) GetParams() []string {
	args := []string{"--column-inserts"}

	// Options controlling the output content
	if o.DataOnly {
		args = append(args, "--data-only")
	}
	if o.Encoding != "" {
		args = append(args, "--encoding", o.Encoding)
	}
	for _, item := range o.Schema {
		args = append(args, "--schema", item)
	}
	for _, item := range o.ExcludeSchema {
		args = append(args, "--exclude-schema", item)
	}
	for _, item := range o.Table {
		args = append(args, "--table", item)
	}
	for _, item := range o.ExcludeTable {
		args = append(args, "--exclude-table", item)
	}
	for _, item := range o.ExcludeTableData {
		args = append(args, "--exclude-table-data", item)
	}
	if o.ExtraFloatDigits != "" {
		args = append(args, "--extra-float-digits", o.ExtraFloatDigits)
	}
	if o.LockWaitTimeout > 0 {
		args = append(args, "--lock-wait-timeout", strconv.FormatInt(int64(o.LockWaitTimeout), 10))
	}
	if o.NoComments {
		args = append(args, "--no-comments")
	}
	if o.OnConflictDoNothing {
		args = append(args, "--on-conflict-do-nothing")
	}
	if o.QuoteAllIdentifiers {
		args = append(args, "--quote-all-identifiers")
	}
	if o.Snapshot != "" {
		args = append(args, "--snapshot", o.Snapshot)
	}
	if o.Verbose {
		args = append(args, "--verbose")
	}
	if o.EnableRowSecurity {
		args = append(args, "--enable-row-security")
	}

	// Connection options:
	if o.DbName != "" {
		args = append(args, "--dbname", o.DbName)
	}
	if o.Host != "" {
		args = append(args, "--host", o.Host)
	}
	if o.Port > 0 && o.Port != pgDefaultPort {
		args = append(args, "--port", strconv.FormatInt(int64(o.Port), 10))
	}
	if o.Username != "" {
		args = append(args, "--username", o.Username)
	}
	if o.Role != "" {
		args = append(args, "--role", o.Role)
	}

	return args
}

// Env returns the extra environment entries for the pg_dump child process.
// The password goes through PGPASSWORD so it never leaks into the process
// table the way an argument would.
func (o *Options) Env() []string {
	if o.Password == "" {
		return nil
	}
	return []string{"PGPASSWORD=" + o.Password}
}
