package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cube-dp/lease-classifier/internal/classify"
	"github.com/cube-dp/lease-classifier/internal/common"
	"github.com/cube-dp/lease-classifier/internal/fields"
	"github.com/cube-dp/lease-classifier/internal/train"
)

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "config file path")
		dataPath   = flag.String("data", "", "training data file or directory (overrides config)")
		outPath    = flag.String("out", "", "model artifact path (overrides config)")
		builtin    = flag.Bool("builtin", false, "train on the built-in sample corpus only")
	)
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		printError("Error: load config: %v\n", err)
		os.Exit(1)
	}
	if *dataPath != "" {
		cfg.Model.TrainData = *dataPath
	}
	if *outPath != "" {
		cfg.Model.Path = *outPath
	}

	logger := common.NewLogger(cfg.Logging)

	var samples []train.Sample
	if *builtin {
		samples = train.SampleClauses()
		logger.Info("using built-in sample corpus", "samples", len(samples))
	} else {
		mapping, err := fields.LoadClauseMapping(cfg.Model.Mapping)
		if err != nil {
			logger.Warn("clause mapping unavailable, labels must already be canonical",
				"path", cfg.Model.Mapping, "error", err)
			mapping = nil
		}
		loader := train.NewLoader(mapping, logger)
		samples, err = loader.LoadPath(cfg.Model.TrainData)
		if err != nil {
			logger.Error("failed to load training data", "path", cfg.Model.TrainData, "error", err)
			os.Exit(1)
		}
		if len(samples) == 0 {
			logger.Warn("no labeled samples found, falling back to built-in corpus",
				"path", cfg.Model.TrainData)
			samples = train.SampleClauses()
		}
	}

	kernel, err := classify.ParseKernel(cfg.Model.Kernel)
	if err != nil {
		logger.Error("invalid model config", "error", err)
		os.Exit(1)
	}

	texts, labels := train.Split(samples)
	clf := classify.New(classify.Config{
		Kernel:      kernel,
		C:           cfg.Model.C,
		Gamma:       cfg.Model.Gamma,
		MaxFeatures: cfg.Model.MaxFeatures,
	})

	logger.Info("training classifier",
		"samples", len(texts),
		"kernel", string(kernel),
		"c", cfg.Model.C,
		"max_features", cfg.Model.MaxFeatures,
	)
	if err := clf.Fit(texts, labels); err != nil {
		logger.Error("training failed", "error", err)
		os.Exit(1)
	}

	if err := clf.Save(cfg.Model.Path); err != nil {
		logger.Error("failed to save model artifact", "path", cfg.Model.Path, "error", err)
		os.Exit(1)
	}
	logger.Info("model saved",
		"path", cfg.Model.Path,
		"classes", len(clf.Classes()),
	)
}
