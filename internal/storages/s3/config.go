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

package s3

import (
	"errors"
)

const defaultMaxRetries = 3

type Config struct {
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`
	Bucket          string `mapstructure:"bucket" yaml:"bucket" json:"bucket"`
	Prefix          string `mapstructure:"prefix" yaml:"prefix" json:"prefix"`
	Region          string `mapstructure:"region" yaml:"region" json:"region"`
	DisableSSL      bool   `mapstructure:"disable_ssl" yaml:"disable_ssl" json:"disable_ssl"`
	AccessKeyId     string `mapstructure:"access_key_id" yaml:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key" json:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token" yaml:"session_token" json:"session_token"`
	RoleArn         string `mapstructure:"role_arn" yaml:"role_arn" json:"role_arn"`
	SessionName     string `mapstructure:"session_name" yaml:"session_name" json:"session_name"`
	MaxRetries      int    `mapstructure:"max_retries" yaml:"max_retries" json:"max_retries"`
	CertFile        string `mapstructure:"cert_file" yaml:"cert_file" json:"cert_file"`
	ForcePathStyle  bool   `mapstructure:"force_path_style" yaml:"force_path_style" json:"force_path_style"`
	UseAccelerate   bool   `mapstructure:"use_accelerate" yaml:"use_accelerate" json:"use_accelerate"`
}

func NewConfig() *Config {
	return &Config{
		ForcePathStyle: true,
		MaxRetries:     defaultMaxRetries,
	}
}

func (c *Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("bucket cannot be empty")
	}
	return nil
}
