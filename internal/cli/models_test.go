package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modelsYAML = `
models:
  - name: Publication
    fields:
      - {name: title, type: string}
  - name: Article
    fields:
      - {name: headline, type: string}
    relations:
      - {name: publications, target: Publication}
    mixins:
      - {name: time}
`

func TestLoadGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(modelsYAML), 0o644))

	g, err := LoadGraph(path)
	require.NoError(t, err)
	art := g.Model("Article")
	require.NotNil(t, art)
	require.NotNil(t, art.Relation("publications"))
	assert.Equal(t, "Publication", art.Relation("publications").Target.Name)
	assert.NotNil(t, art.Field("created_at"))
}

func TestLoadGraphErrors(t *testing.T) {
	_, err := LoadGraph(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitModels, ExitCode(err))

	path := filepath.Join(t.TempDir(), "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
models:
  - name: Article
    relations:
      - {name: publications, target: Publication}
    mixins:
      - {name: time}
`), 0o644))
	_, err = LoadGraph(path)
	require.Error(t, err)
	assert.Equal(t, ExitModels, ExitCode(err))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&buf, LogConfig{Level: "info"}, 0, false)
	require.NoError(t, err)
	log.Debug("hidden")
	log.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")

	buf.Reset()
	log, err = NewLogger(&buf, LogConfig{Level: "info"}, 1, false)
	require.NoError(t, err)
	log.Debug("verbose")
	assert.Contains(t, buf.String(), "verbose")

	buf.Reset()
	log, err = NewLogger(&buf, LogConfig{Level: "debug", Format: "json"}, 0, true)
	require.NoError(t, err)
	log.Warn("quiet")
	assert.Empty(t, buf.String())

	_, err = NewLogger(&buf, LogConfig{Level: "loud"}, 0, false)
	assert.Equal(t, ExitConfig, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitGeneral, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitDBConnect, ExitCode(DBConnectError("connecting", errors.New("refused"))))
	assert.Equal(t, ExitSchemaDrift, ExitCode(SchemaDriftError("drift")))

	err := GeneralError("pruning", errors.New("locked"))
	assert.EqualError(t, err, "pruning: locked")
	assert.Equal(t, "locked", errors.Unwrap(err).Error())
}
