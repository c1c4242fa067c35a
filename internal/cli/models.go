package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/syssam/arrayrel/graph"
	"github.com/syssam/arrayrel/schema"
	_ "github.com/syssam/arrayrel/schema/mixin" // mixins of models files
)

// LoadGraph reads the models file at path and resolves its model graph.
func LoadGraph(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ModelsError("opening models file", err)
	}
	defer f.Close()
	descs, err := schema.DecodeYAML(f)
	if err != nil {
		return nil, ModelsError(fmt.Sprintf("parsing %s", path), err)
	}
	g, err := graph.New(descs...)
	if err != nil {
		return nil, ModelsError(fmt.Sprintf("resolving %s", path), err)
	}
	return g, nil
}

// NewLogger returns the logger of the command. Each verbose step lowers
// the configured level by one; quiet keeps errors only.
func NewLogger(w io.Writer, cfg LogConfig, verbose int, quiet bool) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, ConfigError("log.level", err)
	}
	level -= slog.Level(4 * verbose)
	if quiet {
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, ConfigError("log.format", fmt.Errorf("unsupported format %q", cfg.Format))
	}
}
