package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/wavsplit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStereo(t *testing.T, dir string) string {
	t.Helper()

	data := make([]byte, 8000*4)
	for i := range data {
		data[i] = byte(i)
	}

	var buf bytes.Buffer
	require.NoError(t, wavsplit.EncodeHeader(&buf, wavsplit.NewPCMHeader(2, 8000, 16, uint32(len(data)))))
	buf.Write(data)

	path := filepath.Join(dir, "stereo.wav")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	return path
}

func TestRunRequiresPath(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), nil, &stdout, &stderr)
	require.ErrorIs(t, err, errMissingPath)
	assert.Contains(t, stderr.String(), "usage:")
}

func TestRunHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"--help"}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "--output")
}

func TestRunSplits(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	in := writeStereo(t, dir)

	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"-o", out, in}, &stdout, &stderr)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Files to split: 1\nSplit file: stereo.wav\n")
	assert.Contains(t, stdout.String(), "Data bytes processed: 32044 (0 MB)\n")
	assert.Contains(t, stderr.String(), "progress: 100.0%")

	assert.FileExists(t, filepath.Join(out, "stereo.CH01.wav"))
	assert.FileExists(t, filepath.Join(out, "stereo.CH02.wav"))
}

func TestRunNoProgress(t *testing.T) {
	in := writeStereo(t, t.TempDir())

	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"--no-progress", in}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Empty(t, stderr.String())
}

func TestRunCanceled(t *testing.T) {
	in := writeStereo(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer

	err := run(ctx, []string{in}, &stdout, &stderr)
	require.ErrorIs(t, err, errCanceled)
	assert.NotContains(t, stdout.String(), "Done.")
	assert.Contains(t, stdout.String(), "Canceled: "+filepath.Base(in))
}

func TestRunUnsupported(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.wav")
	require.NoError(t, os.WriteFile(in, []byte("not a wav file at all, just text"), 0o644))

	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{in}, &stdout, &stderr)
	require.ErrorIs(t, err, wavsplit.ErrUnsupportedFormat)
	assert.Contains(t, stdout.String(), "Error: ")
}
