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

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/seedmask/seedmask/internal/domains"
	"github.com/seedmask/seedmask/pkg/transformers"
)

// ParseRuleParamsManually re-decodes stream.rules[i].params straight from
// the config file. Viper lowercases map keys on unmarshal
// (https://github.com/spf13/viper/issues/373), which corrupts
// case-sensitive param payloads such as json paths or template values, so
// params bypass it entirely.
func ParseRuleParamsManually(cfgFilePath string, cfg *domains.Config) error {
	ext := path.Ext(cfgFilePath)
	tmpCfg := &dummyConfig{}
	f, err := os.Open(cfgFilePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing config file")
		}
	}()

	switch ext {
	case ".json":
		if err = json.NewDecoder(f).Decode(&tmpCfg); err != nil {
			return err
		}
	case ".yaml", ".yml":
		if err = yaml.NewDecoder(f).Decode(&tmpCfg); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported file extension \"%s\"", ext)
	}
	return setRuleParams(tmpCfg, cfg)
}

// dummyConfig decodes only the params subtree, everything else stays with
// viper.
type dummyConfig struct {
	Stream struct {
		Rules []struct {
			Params map[string]any `yaml:"params" json:"params"`
		} `yaml:"rules" json:"rules"`
	} `yaml:"stream" json:"stream"`
}

func setRuleParams(tmpCfg *dummyConfig, cfg *domains.Config) error {
	if len(tmpCfg.Stream.Rules) != len(cfg.Stream.Rules) {
		return fmt.Errorf(
			"config decode mismatch: %d rules via viper, %d in the file",
			len(cfg.Stream.Rules), len(tmpCfg.Stream.Rules),
		)
	}
	for i, r := range tmpCfg.Stream.Rules {
		if r.Params == nil {
			continue
		}
		cfg.Stream.Rules[i].Params = transformers.Params(r.Params)
	}
	return nil
}
