package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/nvr-ai/go-textrec/inference"
	"github.com/nvr-ai/go-textrec/inference/providers"
	"github.com/nvr-ai/go-textrec/models"
	"github.com/nvr-ai/go-textrec/transforms"
	"github.com/nvr-ai/go-textrec/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// options holds the command line configuration.
type options struct {
	modelDir    string
	modelPath   string
	modelName   string
	imagePath   string
	imageDir    string
	outputDir   string
	provider    string
	batchSize   int
	libraryPath string
	verbose     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.modelDir, "model-dir", "", "Model directory containing inference.yml")
	flag.StringVar(&opts.modelPath, "model", "", "ONNX model path (default: <model-dir>/inference.onnx)")
	flag.StringVar(&opts.modelName, "model-name", "", "Model name (default: Global.model_name from inference.yml)")
	flag.StringVar(&opts.imagePath, "image", "", "Path to a text line image")
	flag.StringVar(&opts.imageDir, "image-dir", "", "Directory of text line images")
	flag.StringVar(&opts.outputDir, "output-dir", "./", "Output directory for results")
	flag.StringVar(&opts.provider, "provider", string(providers.CPUProviderBackend), "Execution provider (cpu, cuda, coreml, openvino)")
	flag.IntVar(&opts.batchSize, "batch-size", 1, "Images per inference call")
	flag.StringVar(&opts.libraryPath, "onnxruntime-lib", "", "onnxruntime shared library path")
	flag.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	flag.Parse()

	logger, err := newLogger(opts.verbose)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logger.Fatal("text recognition failed", zap.Error(err))
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, opts options, logger *zap.Logger) error {
	if opts.modelDir == "" {
		return errors.New("-model-dir is required")
	}
	items, err := inputItems(opts)
	if err != nil {
		return err
	}

	backend, err := providers.ParseBackend(opts.provider)
	if err != nil {
		return err
	}
	cfg := providers.DefaultConfig()
	cfg.Backend = backend
	cfg.SharedLibraryPath = opts.libraryPath

	modelPath := opts.modelPath
	if modelPath == "" {
		modelPath = opts.modelDir
	}
	engine, err := inference.NewEngineBuilder().
		WithProvider(cfg).
		WithModel(modelPath).
		WithLogger(logger).
		Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	p, err := models.NewPredictor(models.NewPredictorArgs{
		Name:      opts.modelName,
		ModelDir:  opts.modelDir,
		BatchSize: opts.batchSize,
		Engine:    engine,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	results, err := p.Predict(ctx, items)
	if err != nil {
		return err
	}
	logger.Info("text recognition complete", zap.Int("images", len(results)))
	return nil
}

// inputItems builds one command-line batch item per input image.
func inputItems(opts options) ([]transforms.Item, error) {
	var paths []string
	switch {
	case opts.imagePath != "" && opts.imageDir != "":
		return nil, errors.New("cannot specify both -image and -image-dir")
	case opts.imagePath != "":
		paths = []string{opts.imagePath}
	case opts.imageDir != "":
		var err error
		if paths, err = util.ListImageFiles(opts.imageDir); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("one of -image or -image-dir is required")
	}
	if len(paths) == 0 {
		return nil, errors.Errorf("no images found in %s", opts.imageDir)
	}

	items := make([]transforms.Item, len(paths))
	for i, path := range paths {
		items[i] = transforms.Item{
			transforms.KeyInputPath: path,
			transforms.KeyCLIFlag:   true,
			transforms.KeyOutputDir: opts.outputDir,
		}
	}
	return items, nil
}
