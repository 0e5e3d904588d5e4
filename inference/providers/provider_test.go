package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackend(t *testing.T) {
	for _, b := range Backends {
		got, err := ParseBackend(string(b))
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}

	got, err := ParseBackend("CUDA")
	require.NoError(t, err)
	assert.Equal(t, CUDAProviderBackend, got, "Backend names should be case-insensitive")

	_, err = ParseBackend("tpu")
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default", cfg: DefaultConfig()},
		{name: "cuda without options", cfg: Config{Backend: CUDAProviderBackend}},
		{name: "cuda options", cfg: Config{Backend: CUDAProviderBackend, Options: CUDAOptions{DeviceID: 1}}},
		{name: "coreml options", cfg: Config{Backend: CoreMLProviderBackend, Options: CoreMLOptions{}}},
		{name: "openvino options", cfg: Config{Backend: OpenVINOProviderBackend, Options: OpenVINOOptions{}}},
		{name: "empty backend", cfg: Config{}, wantErr: true},
		{name: "unknown backend", cfg: Config{Backend: "tpu"}, wantErr: true},
		{name: "cpu with options", cfg: Config{Backend: CPUProviderBackend, Options: CUDAOptions{}}, wantErr: true},
		{name: "mismatched options", cfg: Config{Backend: CUDAProviderBackend, Options: CoreMLOptions{}}, wantErr: true},
		{name: "negative threads", cfg: Config{Backend: CPUProviderBackend, IntraOpNumThreads: -1}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSettings(t *testing.T) {
	assert.Equal(t, map[string]string{
		"device_id":                 "0",
		"do_copy_in_default_stream": "0",
	}, CUDAOptions{}.Settings(), "Zero CUDA options should keep runtime defaults")

	assert.Equal(t, map[string]string{
		"device_id":                 "1",
		"do_copy_in_default_stream": "1",
		"gpu_mem_limit":             "1024",
		"arena_extend_strategy":     "kSameAsRequested",
		"cudnn_conv_algo_search":    "HEURISTIC",
		"prefer_nhwc":               "1",
	}, CUDAOptions{
		DeviceID:              1,
		GPUMemLimit:           1024,
		ArenaExtendStrategy:   "kSameAsRequested",
		CudnnConvAlgoSearch:   "HEURISTIC",
		DoCopyInDefaultStream: true,
		PreferNHWC:            true,
	}.Settings())

	assert.Equal(t, map[string]string{
		"RequireStaticInputShapes": "1",
		"ModelFormat":              "MLProgram",
	}, CoreMLOptions{ModelFormat: "MLProgram", RequireStaticInputShapes: true}.Settings())

	assert.Equal(t, map[string]string{
		"disable_dynamic_shapes": "false",
		"device_type":            "GPU",
		"num_of_threads":         "4",
	}, OpenVINOOptions{DeviceType: "GPU", NumOfThreads: 4}.Settings())
}

func TestGetSharedLibPath_Env(t *testing.T) {
	t.Setenv(SharedLibraryEnv, "/opt/onnxruntime/libonnxruntime.so")
	assert.Equal(t, "/opt/onnxruntime/libonnxruntime.so", GetSharedLibPath())
}
