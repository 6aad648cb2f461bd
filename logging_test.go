// Copyright (c) 2023 The KBase Project and its Contributors
// Copyright (c) 2023 Cohere Consulting, LLC
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTeeHandler(t *testing.T) {
	assert := assert.New(t)
	var debug, info bytes.Buffer
	logger := slog.New(teeHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
	}}).With("run", "42")

	logger.Debug("Doing a basic check for already existing sample file")
	logger.Info("Imported: /illumina_reads/bobname/file1.fasta")

	assert.Equal(2, strings.Count(debug.String(), "\n"))
	assert.Contains(debug.String(), `"run":"42"`)
	assert.Equal(1, strings.Count(info.String(), "\n"))
	assert.Contains(info.String(), "run=42")
	assert.NotContains(info.String(), "basic check")
}

func TestSetupLogging(t *testing.T) {
	assert := assert.New(t)
	defaultLogger := slog.Default()
	defer slog.SetDefault(defaultLogger)

	logPath := filepath.Join(t.TempDir(), "log_irida_import")
	err := os.WriteFile(logPath, []byte("stale output\n"), 0644)
	assert.Nil(err)

	file, err := setupLogging(logPath)
	assert.Nil(err)
	slog.Debug("The JSON parameters from IRIDA are: {}")
	file.Close()

	data, err := os.ReadFile(logPath)
	assert.Nil(err)
	assert.NotContains(string(data), "stale output")
	assert.Contains(string(data), "The JSON parameters from IRIDA are")

	_, err = setupLogging(filepath.Join(t.TempDir(), "missing", "log"))
	assert.NotNil(err)
}
