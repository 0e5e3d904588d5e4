package textrec

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the side-car file expected inside every model directory.
const ConfigFileName = "inference.yml"

// DefaultRecImageShape is the (C, H, W) recognition input used when the config
// does not declare one.
var DefaultRecImageShape = [3]int{3, 48, 320}

// DefaultCharacters is the dictionary used when the config declares none.
const DefaultCharacters = "0123456789abcdefghijklmnopqrstuvwxyz"

// ErrConfigNotFound is matched by every ConfigNotFoundError.
var ErrConfigNotFound = errors.New("config file not found")

// ConfigNotFoundError reports a model directory without a side-car config.
type ConfigNotFoundError struct {
	// Path is the expected config file path.
	Path string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("cannot find config file: %s", e.Path)
}

// Is makes errors.Is(err, ErrConfigNotFound) hold.
func (e *ConfigNotFoundError) Is(target error) bool {
	return target == ErrConfigNotFound
}

// PostProcessConfig holds the label decoding parameters.
type PostProcessConfig struct {
	// Name of the decoder, e.g. CTCLabelDecode.
	Name string `yaml:"name"`
	// CharacterDict is the label set, one entry per class (blank excluded).
	CharacterDict CharacterDict `yaml:"character_dict"`
	// UseSpaceChar appends a space class after the dictionary. Defaults to true.
	UseSpaceChar *bool `yaml:"use_space_char"`
}

// SpaceChar reports whether a space class follows the dictionary.
func (c PostProcessConfig) SpaceChar() bool {
	return c.UseSpaceChar == nil || *c.UseSpaceChar
}

// CharacterDict is a label set read verbatim from YAML scalars, so entries
// such as 0 or true stay text.
type CharacterDict []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *CharacterDict) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return errors.Errorf("line %d: character_dict must be a sequence", value.Line)
	}
	out := make(CharacterDict, 0, len(value.Content))
	for _, n := range value.Content {
		if n.Kind != yaml.ScalarNode {
			return errors.Errorf("line %d: character_dict entries must be scalars", n.Line)
		}
		out = append(out, n.Value)
	}
	*d = out
	return nil
}

type rawConfig struct {
	Global struct {
		ModelName string `yaml:"model_name"`
	} `yaml:"Global"`
	PreProcess struct {
		TransformOps []map[string]yaml.Node `yaml:"transform_ops"`
	} `yaml:"PreProcess"`
	PostProcess PostProcessConfig `yaml:"PostProcess"`
}

// InnerConfig is the parsed model side-car. It is read-only after loading.
type InnerConfig struct {
	path          string
	modelName     string
	recImageShape [3]int
	postProcess   PostProcessConfig
}

// LoadInnerConfig loads ConfigFileName from a model directory.
//
// Arguments:
//   - modelDir: The model directory.
//
// Returns:
//   - *InnerConfig: The parsed config.
//   - error: A *ConfigNotFoundError when the file is missing, or a parse error.
func LoadInnerConfig(modelDir string) (*InnerConfig, error) {
	path := filepath.Join(modelDir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigNotFoundError{Path: path}
		}
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}
	cfg, err := ParseInnerConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", path)
	}
	cfg.path = path
	return cfg, nil
}

// ParseInnerConfig parses side-car YAML.
//
// Arguments:
//   - data: The YAML document.
//
// Returns:
//   - *InnerConfig: The parsed config.
//   - error: An error if the document is malformed.
func ParseInnerConfig(data []byte) (*InnerConfig, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	cfg := &InnerConfig{
		modelName:     raw.Global.ModelName,
		recImageShape: DefaultRecImageShape,
		postProcess:   raw.PostProcess,
	}

	for _, op := range raw.PreProcess.TransformOps {
		node, ok := op["RecResizeImg"]
		if !ok {
			continue
		}
		var args struct {
			ImageShape []int `yaml:"image_shape"`
		}
		if err := node.Decode(&args); err != nil {
			return nil, errors.Wrap(err, "RecResizeImg")
		}
		if len(args.ImageShape) == 0 {
			continue
		}
		if len(args.ImageShape) != 3 {
			return nil, errors.Errorf("RecResizeImg.image_shape must have 3 entries, got %v", args.ImageShape)
		}
		for _, d := range args.ImageShape {
			if d <= 0 {
				return nil, errors.Errorf("RecResizeImg.image_shape must be positive, got %v", args.ImageShape)
			}
		}
		copy(cfg.recImageShape[:], args.ImageShape)
	}

	if len(cfg.postProcess.CharacterDict) == 0 {
		for _, r := range DefaultCharacters {
			cfg.postProcess.CharacterDict = append(cfg.postProcess.CharacterDict, string(r))
		}
	}
	return cfg, nil
}

// Path returns the file the config was loaded from.
func (c *InnerConfig) Path() string { return c.path }

// ModelName returns Global.model_name.
func (c *InnerConfig) ModelName() string { return c.modelName }

// RecImageShape returns the (C, H, W) recognition input shape.
func (c *InnerConfig) RecImageShape() [3]int { return c.recImageShape }

// PostProcess returns a copy of the post-processing settings.
func (c *InnerConfig) PostProcess() PostProcessConfig {
	pp := c.postProcess
	pp.CharacterDict = slices.Clone(c.postProcess.CharacterDict)
	return pp
}
