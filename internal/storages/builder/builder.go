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

package builder

import (
	"context"
	"fmt"
	"os"

	"github.com/seedmask/seedmask/internal/domains"
	"github.com/seedmask/seedmask/internal/storages"
	"github.com/seedmask/seedmask/internal/storages/directory"
	"github.com/seedmask/seedmask/internal/storages/s3"
)

// GetStorage builds the dump storage backend selected by the config.
// The STORAGE_TYPE environment variable overrides the config value.
func GetStorage(ctx context.Context, stCfg *domains.StorageConfig, logCfg *domains.LogConfig) (
	storages.Storager, error,
) {
	stType := stCfg.Type
	if envCfg := os.Getenv("STORAGE_TYPE"); envCfg != "" {
		stType = envCfg
	}
	switch stType {
	case "directory":
		return directory.NewStorage(stCfg.Directory)
	case "s3":
		if err := stCfg.S3.Validate(); err != nil {
			return nil, fmt.Errorf("invalid s3 storage config: %w", err)
		}
		return s3.NewStorage(ctx, stCfg.S3, logCfg.Level)
	}
	return nil, fmt.Errorf(`unknown storage type %q: must be "directory" or "s3"`, stType)
}
