// Copyright 2026 Blink Labs Software
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

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	LogFormatText = "text"
	LogFormatJson = "json"
)

type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Node    NodeConfig    `yaml:"node"`
	Client  ClientConfig  `yaml:"client"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type NodeConfig struct {
	EpochInterval time.Duration `yaml:"epochInterval"`
	RateLimit     float64       `yaml:"rateLimit"`
	RateBurst     int           `yaml:"rateBurst"`
	DecodeWorkers int           `yaml:"decodeWorkers"`
	VerifyWorkers int           `yaml:"verifyWorkers"`
}

type ClientConfig struct {
	PollingInterval time.Duration `yaml:"pollingInterval"`
}

func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: LogFormatText,
		},
		Node: NodeConfig{
			EpochInterval: time.Second,
			RateLimit:     50,
			RateBurst:     100,
			DecodeWorkers: 2,
			VerifyWorkers: 4,
		},
		Client: ClientConfig{
			PollingInterval: 250 * time.Millisecond,
		},
	}
}

// LoadConfig reads the YAML file at path over the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Node.EpochInterval <= 0 {
		return errors.New("node.epochInterval must be positive")
	}
	if c.Client.PollingInterval <= 0 {
		return errors.New("client.pollingInterval must be positive")
	}
	if c.Node.DecodeWorkers < 1 {
		return errors.New("node.decodeWorkers must be at least 1")
	}
	if c.Node.VerifyWorkers < 0 {
		return errors.New("node.verifyWorkers must not be negative")
	}
	return nil
}

// NewLogger builds the slog logger described by the logging config
func NewLogger(cfg LoggingConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case LogFormatText, "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case LogFormatJson:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}
}
