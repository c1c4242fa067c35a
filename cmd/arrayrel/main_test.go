package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/arrayrel/internal/cli"
)

const testModels = `
models:
  - name: Publication
    fields:
      - {name: title, type: string}
  - name: Article
    fields:
      - {name: headline, type: string}
    relations:
      - {name: publications, target: Publication}
`

// run executes the root command in an empty repository with the given
// arguments.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models.yaml"), []byte(testModels), 0o644))
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })

	modelsFile, dbURL, verbose, quiet, allowDrop, pruneConcurrency = "", "", 0, false, false, 0
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), err
}

func TestDDLCommand(t *testing.T) {
	out, err := run(t, "ddl")
	require.NoError(t, err)
	assert.Contains(t, out, `CREATE TABLE "publications"`)
	assert.Contains(t, out, `"publications" bigint[] NOT NULL DEFAULT '{}'`)
	assert.Contains(t, out, `USING GIN ("publications")`)
}

func TestValidateCommandWithoutDatabase(t *testing.T) {
	out, err := run(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Models are valid: 2 models, 2 tables.")
}

func TestMissingModelsFile(t *testing.T) {
	_, err := run(t, "ddl", "--models", "nope.yaml")
	require.Error(t, err)
	assert.Equal(t, cli.ExitModels, cli.ExitCode(err))
}

func TestPruneRequiresDatabase(t *testing.T) {
	_, err := run(t, "prune")
	require.Error(t, err)
	assert.Equal(t, cli.ExitConfig, cli.ExitCode(err))
}
