package inference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-textrec/inference/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineBuilder_Errors(t *testing.T) {
	dir := t.TempDir()

	testCases := []struct {
		name    string
		builder func() *EngineBuilder
		want    string
	}{
		{
			name:    "no model",
			builder: NewEngineBuilder,
			want:    "model not configured",
		},
		{
			name: "missing model file",
			builder: func() *EngineBuilder {
				return NewEngineBuilder().WithModel(filepath.Join(dir, "missing.onnx"))
			},
			want: "model not found",
		},
		{
			name: "directory without model",
			builder: func() *EngineBuilder {
				return NewEngineBuilder().WithModel(dir)
			},
			want: ModelFileName,
		},
		{
			name: "invalid provider",
			builder: func() *EngineBuilder {
				cfg := providers.DefaultConfig()
				cfg.Options = providers.CUDAOptions{}
				return NewEngineBuilder().WithProvider(cfg).WithModel(dir)
			},
			want: "cpu backend takes no options",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			engine, err := tc.builder().Build()
			require.Error(t, err)
			assert.Nil(t, engine)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestEngineBuilder_ResolvesModelDirectory(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, ModelFileName)
	require.NoError(t, os.WriteFile(model, []byte("onnx"), 0o644))

	b := NewEngineBuilder().WithModel(dir)
	require.False(t, b.HasError())
	assert.Equal(t, model, b.modelPath)
}

func TestEngineBuilder_MustBuildPanics(t *testing.T) {
	assert.Panics(t, func() { NewEngineBuilder().MustBuild() })
}
