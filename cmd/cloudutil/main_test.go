package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/andresuchdata/cloudutil/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LOG_LEVEL", "disabled")
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("FILE_PATH_TEMPLATE", filepath.Join(dir, "{}.csv"))
	return dir
}

func run(args ...string) error {
	return newApp().Run(append([]string{"cloudutil", "--env-file", "testdata/none.env"}, args...))
}

func TestKeywordsCommand(t *testing.T) {
	dir := setupEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seed.csv"), []byte("keyword,location\nFoo,US\n"), 0o644))

	assert.NoError(t, run("keywords", "--file", "seed"))
}

func TestKeywordsCommandMissingFile(t *testing.T) {
	setupEnv(t)

	err := run("keywords", "--file", "absent")
	assert.ErrorIs(t, err, ingest.ErrNotFound)
}

func TestPutRequiresSource(t *testing.T) {
	setupEnv(t)

	err := run("put", "--bucket", "b", "--path", "p")
	assert.ErrorContains(t, err, "--source or --file")
}

func TestSendRejectsInvalidJSON(t *testing.T) {
	setupEnv(t)

	err := run("send", "--queue", "keywords", "--message", "{not json")
	assert.ErrorContains(t, err, "valid JSON")
}

func TestInvalidConfigFailsEarly(t *testing.T) {
	setupEnv(t)
	t.Setenv("STORAGE_BACKEND", "ftp")

	err := run("keywords", "--file", "seed")
	assert.ErrorContains(t, err, "failed to load config")
}
