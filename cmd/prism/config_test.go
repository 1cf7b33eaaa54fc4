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
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeFile(t, "prism.yaml", `
logging:
  level: debug
node:
  epochInterval: 50ms
  rateLimit: 5
client:
  pollingInterval: 10ms
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unset values keep their defaults
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.Equal(t, 50*time.Millisecond, cfg.Node.EpochInterval)
	assert.InDelta(t, 5.0, cfg.Node.RateLimit, 0)
	assert.Equal(t, DefaultConfig().Node.RateBurst, cfg.Node.RateBurst)
	assert.Equal(t, 10*time.Millisecond, cfg.Client.PollingInterval)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadConfig(writeFile(t, "bad.yaml", "node: [1, 2"))
	require.Error(t, err)

	_, err = LoadConfig(writeFile(t, "zero.yaml", "node:\n  epochInterval: 0s\n"))
	require.ErrorContains(t, err, "epochInterval")

	_, err = LoadConfig(writeFile(t, "workers.yaml", "node:\n  decodeWorkers: 0\n"))
	require.ErrorContains(t, err, "decodeWorkers")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LoggingConfig{Level: "warn", Format: LogFormatJson}, &buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.True(t, logger.Enabled(t.Context(), slog.LevelError))

	_, err = NewLogger(LoggingConfig{Level: "loud"}, &buf)
	require.Error(t, err)
	_, err = NewLogger(LoggingConfig{Level: "info", Format: "xml"}, &buf)
	require.Error(t, err)
}
