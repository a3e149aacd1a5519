package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cube-dp/lease-classifier/internal/classify"
	"github.com/cube-dp/lease-classifier/internal/common"
	"github.com/cube-dp/lease-classifier/internal/entity"
	"github.com/cube-dp/lease-classifier/internal/export"
	"github.com/cube-dp/lease-classifier/internal/extract"
	"github.com/cube-dp/lease-classifier/internal/fields"
	"github.com/cube-dp/lease-classifier/internal/llm/openai"
	"github.com/cube-dp/lease-classifier/internal/pipeline"
	"github.com/cube-dp/lease-classifier/internal/results"
	"github.com/cube-dp/lease-classifier/internal/storage"
)

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		input       = flag.String("input", "", "lease text file or directory of files (required)")
		configPath  = flag.String("config", "config.yaml", "config file path")
		out         = flag.String("out", "", "output XLSX path (defaults next to input)")
		jsonOut     = flag.String("json", "", "optional JSON results path")
		gptModel    = flag.String("gpt-model", "", "model for field extraction (overrides config)")
		noFields    = flag.Bool("no-fields", false, "classification only, skip field extraction")
		concurrency = flag.Int("concurrency", 4, "documents processed in parallel")
	)
	flag.Parse()

	if *input == "" {
		printError("Error: --input is required\n")
		os.Exit(1)
	}

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		printError("Error: load config: %v\n", err)
		os.Exit(1)
	}
	if *noFields {
		cfg.Extract.Enabled = false
	}
	if *gptModel != "" {
		cfg.OpenAI.GPTModel = *gptModel
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewLogger(cfg.Logging)
	ctx := context.Background()

	model, err := classify.Load(cfg.Model.Path)
	if err != nil {
		logger.Error("failed to load classifier model", "path", cfg.Model.Path, "error", err)
		os.Exit(1)
	}

	mapping, err := fields.LoadClauseMapping(cfg.Model.Mapping)
	if err != nil {
		logger.Warn("clause mapping unavailable, type ids will be empty", "path", cfg.Model.Mapping, "error", err)
		mapping = nil
	}

	var extractor pipeline.FieldExtractor
	if cfg.Extract.Enabled {
		defs, err := fields.LoadDefinitions(cfg.Model.Fields)
		if err != nil {
			logger.Error("failed to load field definitions", "path", cfg.Model.Fields, "error", err)
			os.Exit(1)
		}
		completer, err := openai.NewCompleter(cfg, logger)
		if err != nil {
			logger.Error("failed to build model-service client", "error", err)
			os.Exit(1)
		}
		modelName := cfg.OpenAI.GPTModel
		if cfg.Provider == "azure" && *gptModel == "" {
			modelName = cfg.Azure.DefaultModel
		} else if cfg.Provider == "azure" {
			modelName = *gptModel
		}
		if !validModel(completer.Models(), modelName) {
			printError("Error: model %q is not available; choose one of: %s\n",
				modelName, strings.Join(completer.Models(), ", "))
			os.Exit(1)
		}
		extractor = extract.New(completer, defs, extract.Options{
			Model:         modelName,
			BatchSize:     cfg.Extract.BatchSize,
			MaxPromptText: cfg.Extract.MaxPromptText,
			Matcher:       fields.Matcher{Exact: cfg.Extract.MatchExact},
			Retry:         cfg.Retry,
		}, logger)
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Error("failed to build storage", "error", err)
		os.Exit(1)
	}

	resultStore, err := results.Open(ctx, cfg.Results)
	if err != nil {
		logger.Error("failed to open results store", "error", err)
		os.Exit(1)
	}
	if resultStore != nil {
		defer resultStore.Close()
	}

	orch := pipeline.NewOrchestrator(model, extractor, mapping, pipeline.Options{
		MinClauseLength: cfg.Segmenter.MinLength,
		ExtractEnabled:  cfg.Extract.Enabled,
		ExtractTimeout:  cfg.Retry.Timeout,
	}, logger)

	files, err := collectInputs(*input)
	if err != nil {
		logger.Error("failed to read input", "input", *input, "error", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		printError("Error: no input files found under %s\n", *input)
		os.Exit(1)
	}

	items := make([]pipeline.Item, 0, len(files))
	locations := make(map[string]string, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("failed to read file, skipping", "path", path, "error", err)
			continue
		}
		name := filepath.Base(path)
		loc, err := store.Put(ctx, name, data)
		if err != nil {
			logger.Warn("failed to archive input file", "path", path, "error", err)
		} else {
			locations[name] = loc
		}
		items = append(items, pipeline.Item{Name: name, Text: string(data)})
	}

	batch := orch.ProcessBatch(ctx, items, *concurrency)

	var docs []entity.ResultDocument
	failures := 0
	for _, item := range batch {
		if item.Err != nil {
			logger.Error("document failed", "doc", item.Name, "error", item.Err)
			failures++
			continue
		}
		item.Result.StorageType = store.Type()
		item.Result.StorageName = locations[item.Name]
		doc := item.Result.ToResultDocument()
		docs = append(docs, doc)

		if resultStore != nil {
			if id, err := resultStore.Save(ctx, doc); err != nil {
				logger.Warn("failed to persist result", "doc", item.Name, "error", err)
			} else {
				logger.Info("result persisted", "doc", item.Name, "result_id", id)
			}
		}
	}

	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(*input), "lease_classification.xlsx")
	}
	xlsxBytes, err := export.NewService(logger).ReportXLSX(docs)
	if err != nil {
		logger.Error("failed to render report", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, xlsxBytes, 0o644); err != nil {
		logger.Error("failed to write report", "path", outPath, "error", err)
		os.Exit(1)
	}

	if *jsonOut != "" {
		payload, err := json.MarshalIndent(docs, "", "  ")
		if err == nil {
			err = os.WriteFile(*jsonOut, payload, 0o644)
		}
		if err != nil {
			logger.Error("failed to write JSON results", "path", *jsonOut, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("classification complete",
		"documents", len(docs),
		"failures", failures,
		"report", outPath,
	)
	if failures > 0 && len(docs) == 0 {
		os.Exit(1)
	}
}

func validModel(models []string, name string) bool {
	for _, m := range models {
		if m == name {
			return true
		}
	}
	return false
}

// collectInputs returns the text files under path, sorted; a single file is
// returned as-is.
func collectInputs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
