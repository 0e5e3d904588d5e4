// Package providers - Execution providers for the ONNX Runtime engine.
package providers

import (
	"strings"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// ProviderBackend represents different ONNX Runtime execution providers
type ProviderBackend string

const (
	// CPUProviderBackend runs inference on the default CPU provider.
	CPUProviderBackend ProviderBackend = "cpu"
)

// Backends lists every supported backend.
var Backends = []ProviderBackend{
	CPUProviderBackend,
	CUDAProviderBackend,
	CoreMLProviderBackend,
	OpenVINOProviderBackend,
}

// ProviderOptions is a marker interface for provider-specific config.
type ProviderOptions interface {
	isProviderOptions()
}

// Config describes how an ONNX Runtime session is created.
type Config struct {
	// Backend specifies the execution provider to use.
	Backend ProviderBackend `json:"backend" yaml:"backend"`

	// Options contains provider-specific configuration options. Nil selects the
	// provider defaults.
	Options ProviderOptions `json:"options" yaml:"options"`

	// SharedLibraryPath overrides the onnxruntime shared library location.
	SharedLibraryPath string `json:"shared_library_path" yaml:"shared_library_path"`

	// IntraOpNumThreads sets threads for parallelizing ops. 0 uses the runtime default.
	IntraOpNumThreads int `json:"intra_op_num_threads" yaml:"intra_op_num_threads"`

	// InterOpNumThreads sets threads for parallelizing independent ops. 0 uses the runtime default.
	InterOpNumThreads int `json:"inter_op_num_threads" yaml:"inter_op_num_threads"`

	// GraphOptimizationLevel controls the level of graph optimization.
	GraphOptimizationLevel ort.GraphOptimizationLevel `json:"graph_optimization_level" yaml:"graph_optimization_level"`
}

// DefaultConfig returns a CPU configuration with extended graph optimizations.
//
// Returns:
//   - Config: The default configuration.
func DefaultConfig() Config {
	return Config{
		Backend:                CPUProviderBackend,
		GraphOptimizationLevel: ort.GraphOptimizationLevelEnableExtended,
	}
}

// Validate checks that the options match the backend.
//
// Returns:
//   - error: An error if the backend is unknown or the options belong to another backend.
func (c Config) Validate() error {
	if c.Backend == "" {
		return errors.New("backend is required")
	}
	if c.IntraOpNumThreads < 0 || c.InterOpNumThreads < 0 {
		return errors.New("thread counts must not be negative")
	}

	switch c.Backend {
	case CPUProviderBackend:
		if c.Options != nil {
			return errors.Errorf("cpu backend takes no options, got %T", c.Options)
		}
	case CUDAProviderBackend:
		if _, ok := c.Options.(CUDAOptions); c.Options != nil && !ok {
			return errors.Errorf("invalid options type for CUDA: %T", c.Options)
		}
	case CoreMLProviderBackend:
		if _, ok := c.Options.(CoreMLOptions); c.Options != nil && !ok {
			return errors.Errorf("invalid options type for CoreML: %T", c.Options)
		}
	case OpenVINOProviderBackend:
		if _, ok := c.Options.(OpenVINOOptions); c.Options != nil && !ok {
			return errors.Errorf("invalid options type for OpenVINO: %T", c.Options)
		}
	default:
		return errors.Errorf("no matching provider backend registered: %s", c.Backend)
	}
	return nil
}

// ParseBackend resolves a backend name, ignoring case.
//
// Arguments:
//   - name: The backend name, e.g. "cpu" or "cuda".
//
// Returns:
//   - ProviderBackend: The backend.
//   - error: An error if the name is not a supported backend.
func ParseBackend(name string) (ProviderBackend, error) {
	for _, b := range Backends {
		if strings.EqualFold(name, string(b)) {
			return b, nil
		}
	}
	return "", errors.Errorf("unsupported provider backend: %q", name)
}

// NewSessionOptions creates session options for the configuration and appends
// the execution provider. The caller must destroy the returned options.
//
// Arguments:
//   - cfg: The provider configuration.
//
// Returns:
//   - *ort.SessionOptions: The session options.
//   - error: An error if the options cannot be created or the provider cannot be enabled.
func NewSessionOptions(cfg Config) (*ort.SessionOptions, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "error creating ORT session options")
	}

	if err := configureSessionOptions(options, cfg); err != nil {
		options.Destroy()
		return nil, err
	}
	return options, nil
}

func configureSessionOptions(options *ort.SessionOptions, cfg Config) error {
	if err := options.SetIntraOpNumThreads(cfg.IntraOpNumThreads); err != nil {
		return errors.Wrap(err, "error setting intra-op threads")
	}
	if err := options.SetInterOpNumThreads(cfg.InterOpNumThreads); err != nil {
		return errors.Wrap(err, "error setting inter-op threads")
	}
	if err := options.SetGraphOptimizationLevel(cfg.GraphOptimizationLevel); err != nil {
		return errors.Wrap(err, "error setting graph optimization level")
	}

	switch cfg.Backend {
	case CUDAProviderBackend:
		opts, _ := cfg.Options.(CUDAOptions)
		cuda, err := opts.ToNativeProviderOptions()
		if err != nil {
			return errors.Wrap(err, "error converting CUDA options")
		}
		defer cuda.Destroy()
		if err := options.AppendExecutionProviderCUDA(cuda); err != nil {
			return errors.Wrap(err, "error enabling CUDA")
		}
	case CoreMLProviderBackend:
		opts, _ := cfg.Options.(CoreMLOptions)
		if err := options.AppendExecutionProviderCoreMLV2(opts.Settings()); err != nil {
			return errors.Wrap(err, "error enabling CoreML")
		}
	case OpenVINOProviderBackend:
		opts, _ := cfg.Options.(OpenVINOOptions)
		if err := options.AppendExecutionProviderOpenVINO(opts.Settings()); err != nil {
			return errors.Wrap(err, "error enabling OpenVINO")
		}
	}
	return nil
}
