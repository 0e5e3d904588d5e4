package providers

import "strconv"

const (
	// CoreMLProviderBackend uses Apple CoreML for macOS/iOS acceleration.
	CoreMLProviderBackend ProviderBackend = "coreml"
)

// CoreMLOptions contains arguments for the CoreML provider.
// See: https://onnxruntime.ai/docs/execution-providers/CoreML-ExecutionProvider.html
type CoreMLOptions struct {
	// MLProgram or NeuralNetwork. Default: NeuralNetwork
	ModelFormat string `json:"modelFormat"              yaml:"modelFormat"`
	// CPUOnly, CPUAndNeuralEngine, CPUAndGPU or ALL. Default: ALL
	MLComputeUnits string `json:"mlComputeUnits"           yaml:"mlComputeUnits"`
	// Only allow the CoreML EP to take nodes with inputs that have static shapes.
	RequireStaticInputShapes bool `json:"requireStaticInputShapes" yaml:"requireStaticInputShapes"`
	// The directory where compiled CoreML models are cached. Empty disables the cache.
	ModelCacheDirectory string `json:"modelCacheDirectory"      yaml:"modelCacheDirectory"`
}

func (CoreMLOptions) isProviderOptions() {}

// Settings returns the provider options as runtime keys.
func (o CoreMLOptions) Settings() map[string]string {
	settings := map[string]string{
		"RequireStaticInputShapes": strconv.Itoa(btoi(o.RequireStaticInputShapes)),
	}
	if o.ModelFormat != "" {
		settings["ModelFormat"] = o.ModelFormat
	}
	if o.MLComputeUnits != "" {
		settings["MLComputeUnits"] = o.MLComputeUnits
	}
	if o.ModelCacheDirectory != "" {
		settings["ModelCacheDirectory"] = o.ModelCacheDirectory
	}
	return settings
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
