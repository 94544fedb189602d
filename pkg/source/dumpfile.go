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
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/seedmask/seedmask/internal/storages"
	"github.com/seedmask/seedmask/internal/utils/ioutils"
	"github.com/seedmask/seedmask/pkg/rowkit"
)

// DumpFile streams rows from a dump object held in a storage backend. The
// dump must be the plain-text format the subprocess source produces, gzip
// compression is unwrapped transparently.
type DumpFile struct {
	st   storages.Storager
	path string
	cfg  *config
}

func NewDumpFile(st storages.Storager, path string, opts ...Option) *DumpFile {
	return &DumpFile{
		st:   st,
		path: path,
		cfg:  newConfig(opts...),
	}
}

func (d *DumpFile) StreamRows(ctx context.Context, registry *rowkit.Registry, fn RowFunc) error {
	exists, err := d.st.Exists(ctx, d.path)
	if err != nil {
		return fmt.Errorf("unable to check dump %q: %w", d.path, err)
	}
	if !exists {
		return fmt.Errorf("dump %q not found in storage %q", d.path, d.st.GetCwd())
	}

	obj, err := d.st.GetObject(ctx, d.path)
	if err != nil {
		return fmt.Errorf("unable to open dump %q: %w", d.path, err)
	}
	cr := ioutils.NewReader(obj)
	defer func() {
		if err := cr.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing dump file")
		}
	}()

	r, gz, err := transparentReader(cr, d.cfg.usePgzip)
	if err != nil {
		return err
	}
	if gz != nil {
		defer func() {
			if err := gz.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing gzip reader")
			}
		}()
	}

	if err := streamStatements(ctx, r, registry, fn, d.cfg); err != nil {
		return err
	}
	log.Debug().
		Str("Path", d.path).
		Int64("Bytes", cr.Count).
		Msg("dump file consumed")
	return nil
}

// Reader streams rows from an already-open dump stream, typically stdin.
// The stream is consumed to EOF, closing it stays with the caller.
type Reader struct {
	r   io.Reader
	cfg *config
}

func NewReader(r io.Reader, opts ...Option) *Reader {
	return &Reader{
		r:   r,
		cfg: newConfig(opts...),
	}
}

func (s *Reader) StreamRows(ctx context.Context, registry *rowkit.Registry, fn RowFunc) error {
	r, gz, err := transparentReader(s.r, s.cfg.usePgzip)
	if err != nil {
		return err
	}
	if gz != nil {
		defer func() {
			if err := gz.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing gzip reader")
			}
		}()
	}
	return streamStatements(ctx, r, registry, fn, s.cfg)
}

// transparentReader unwraps gzip when the stream opens with its magic
// bytes. Sniffing beats extension checks here because stdin has no name.
// The returned closer is non-nil only for the gzip layer, the underlying
// stream stays the caller's to close.
func transparentReader(r io.Reader, usePgzip bool) (io.Reader, io.Closer, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil || magic[0] != 0x1f || magic[1] != 0x8b {
		// Short or plain streams pass through untouched, the splitter
		// reports EOF on its own.
		return br, nil, nil
	}

	gz, err := ioutils.GetGzipReadCloser(br, usePgzip)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open compressed dump: %w", err)
	}
	return gz, gz, nil
}
