// Package train loads labeled clause corpora for classifier training, from
// the built-in samples or from JSON/CSV/XLSX dataset files.
package train

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cube-dp/lease-classifier/constants"
	"github.com/cube-dp/lease-classifier/internal/common"
	"github.com/cube-dp/lease-classifier/internal/fields"
)

// Loader reads training datasets. An optional clause mapping translates
// stored label ids into clause type names before canonicalization.
type Loader struct {
	mapping *fields.ClauseMapping
	logger  *slog.Logger
}

func NewLoader(mapping *fields.ClauseMapping, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{mapping: mapping, logger: logger}
}

// LoadPath loads a dataset file or every dataset file in a directory
// (sorted by name). Rows with labels outside the closed category set are
// skipped with a warning, never silently relabeled.
func (l *Loader) LoadPath(path string) ([]Sample, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat training data: %w", err)
	}
	if !info.IsDir() {
		return l.loadFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read training data dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".csv", ".xlsx", ".xls":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no dataset files in %s", common.ErrNotFound, path)
	}

	var all []Sample
	for _, name := range names {
		samples, err := l.loadFile(filepath.Join(path, name))
		if err != nil {
			l.logger.Error("train.load.file_failed", "file", name, "error", err)
			continue
		}
		l.logger.Info("train.load.file_ok", "file", name, "samples", len(samples))
		all = append(all, samples...)
	}
	return all, nil
}

func (l *Loader) loadFile(path string) ([]Sample, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return l.loadJSON(path)
	case ".csv":
		return l.loadCSV(path)
	case ".xlsx", ".xls":
		return l.loadXLSX(path)
	}
	return nil, fmt.Errorf("%w: unsupported dataset format %q", common.ErrInvalidInput, filepath.Ext(path))
}

type jsonDataset struct {
	TrainingData []struct {
		Text  string `json:"text"`
		Label string `json:"label"`
	} `json:"training_data"`
}

func (l *Loader) loadJSON(path string) ([]Sample, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var ds jsonDataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset json: %w", err)
	}
	var out []Sample
	for _, row := range ds.TrainingData {
		l.appendRow(&out, row.Text, row.Label)
	}
	return out, nil
}

func (l *Loader) loadCSV(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	textCol, labelCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "text":
			textCol = i
		case "label":
			labelCol = i
		}
	}
	if textCol < 0 || labelCol < 0 {
		return nil, fmt.Errorf("%w: csv needs text and label columns", common.ErrInvalidInput)
	}

	var out []Sample
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if textCol >= len(row) || labelCol >= len(row) {
			continue
		}
		l.appendRow(&out, row[textCol], row[labelCol])
	}
	return out, nil
}

func (l *Loader) loadXLSX(path string) ([]Sample, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", common.ErrInvalidInput)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	textCol, labelCol := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "text":
			textCol = i
		case "label":
			labelCol = i
		}
	}
	if textCol < 0 || labelCol < 0 {
		return nil, fmt.Errorf("%w: sheet needs text and label columns", common.ErrInvalidInput)
	}

	var out []Sample
	for _, row := range rows[1:] {
		var text, label string
		if textCol < len(row) {
			text = row[textCol]
		}
		if labelCol < len(row) {
			label = row[labelCol]
		}
		l.appendRow(&out, text, label)
	}
	return out, nil
}

// appendRow maps and validates one dataset row.
func (l *Loader) appendRow(out *[]Sample, text, label string) {
	text = strings.TrimSpace(text)
	label = strings.TrimSpace(label)
	if text == "" || label == "" {
		return
	}
	if l.mapping != nil {
		if name, ok := l.mapping.Name(label); ok {
			label = name
		}
	}
	cat, ok := constants.Canonicalize(label)
	if !ok {
		l.logger.Warn("train.load.unknown_label", "label", label)
		return
	}
	*out = append(*out, Sample{Text: text, Label: cat})
}
