package telemetry_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"itunes2storage/core/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_IsValidExporter(t *testing.T) {
	tests := []struct {
		name     string
		exporter string
		want     bool
	}{
		{"Empty", "", true},
		{"None", telemetry.ExporterNone, true},
		{"Stdout", telemetry.ExporterStdout, true},
		{"OTLP", "otlp", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, telemetry.Config{Exporter: tt.exporter}.IsValidExporter())
		})
	}
}

func TestInit(t *testing.T) {
	ctx := context.Background()

	t.Run("None", func(t *testing.T) {
		shutdown, err := telemetry.Init(ctx, telemetry.Config{Exporter: telemetry.ExporterNone}, "test")
		require.NoError(t, err)
		assert.NoError(t, shutdown(ctx))
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := telemetry.Init(ctx, telemetry.Config{Exporter: "zipkin"}, "test")
		assert.ErrorIs(t, err, telemetry.ErrUnknownExporter)
	})

	t.Run("StdoutToFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "spans.json")
		shutdown, err := telemetry.Init(ctx, telemetry.Config{Exporter: telemetry.ExporterStdout, File: path}, "test")
		require.NoError(t, err)

		_, span := telemetry.Tracer().Start(ctx, "reconcile")
		span.End()

		require.NoError(t, shutdown(ctx))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"Name": "reconcile"`)
	})
}
