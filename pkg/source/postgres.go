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

package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/seedmask/seedmask/internal/db/postgres/pgdump"
	"github.com/seedmask/seedmask/internal/utils/reader"
	"github.com/seedmask/seedmask/pkg/rowkit"
)

// Postgres streams rows from a live pg_dump subprocess. The producer writes
// plain-text SQL with per-row inserts to its stdout, which is the only data
// channel; stderr is forwarded to the log so pg_dump diagnostics stay
// visible without touching the row stream.
type Postgres struct {
	dump    *pgdump.PgDump
	options *pgdump.Options
	cfg     *config
}

// NewPostgres builds a pg_dump backed source. binPath is the directory
// holding the pg_dump executable, empty means PATH lookup.
func NewPostgres(binPath string, options *pgdump.Options, opts ...Option) *Postgres {
	return &Postgres{
		dump:    pgdump.NewPgDump(binPath),
		options: options,
		cfg:     newConfig(opts...),
	}
}

// StreamRows spawns the producer and pumps its dump through the statement
// loop. The callback sees every recognized row before the producer's exit
// status is known: a nil return is the only confirmation that the dump was
// complete, rows delivered before a non-zero exit are provisional.
func (p *Postgres) StreamRows(ctx context.Context, registry *rowkit.Registry, fn RowFunc) error {
	cmd := p.dump.Command(ctx, p.options)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: stdout pipe: %w", ErrProducerStart, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("%w: stderr pipe: %w", ErrProducerStart, err)
	}

	log.Debug().
		Str("Executable", p.dump.CommandPath()).
		Str("Args", strings.Join(p.options.GetParams(), " ")).
		Msg("starting dump producer")

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %w", ErrProducerStart, err)
	}

	eg, gtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return forwardStderr(gtx, p.dump.CommandPath(), stderr)
	})

	if streamErr := streamStatements(ctx, stdout, registry, fn, p.cfg); streamErr != nil {
		// The producer may be blocked writing into a pipe nobody drains
		// anymore. Kill it so Wait can reap it; Wait also closes the pipe
		// ends, which unblocks the stderr forwarder.
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			log.Warn().Err(err).Msg("unable to kill dump producer")
		}
		_ = cmd.Wait()
		_ = eg.Wait()
		return streamErr
	}

	if err := eg.Wait(); err != nil {
		log.Warn().Err(err).Msg("dump producer stderr forwarding failed")
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: exit code %d", ErrProducerFailed, exitErr.ExitCode())
		}
		return fmt.Errorf("%w: %w", ErrProducerFailed, err)
	}
	return nil
}

func forwardStderr(ctx context.Context, executable string, r io.Reader) error {
	br := bufio.NewReader(r)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line, err := reader.ReadLine(br)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		log.Info().Str("Executable", executable).Str("Stderr", string(line)).Msg("stderr forwarding")
	}
}
