// Package classify implements the clause classifier: TF-IDF features over a
// bounded vocabulary feeding a calibrated multi-class support-vector machine.
package classify

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/cube-dp/lease-classifier/constants"
	"github.com/cube-dp/lease-classifier/internal/common"
)

// Config holds the classifier hyperparameters. Zero values fall back to the
// trained defaults (rbf kernel, C=1, gamma=scale, 5000 features).
type Config struct {
	Kernel      Kernel
	C           float64
	Gamma       float64 // <= 0 means "scale": 1 / (nFeatures * var(X))
	MaxFeatures int
}

// Classifier assigns a lease clause type and calibrated confidence to clause
// text. It is read-only after Fit or Load and safe for concurrent Predict
// calls.
type Classifier struct {
	cfg      Config
	vec      Vectorizer
	classes  []constants.Category
	machines []binarySVM // one-vs-rest, aligned with classes
	train    [][]float64 // training vectors, needed for kernel evaluation
	gamma    float64     // resolved gamma
	fitted   bool
}

// New returns an unfitted classifier with the given hyperparameters.
func New(cfg Config) *Classifier {
	if cfg.Kernel == "" {
		cfg.Kernel = KernelRBF
	}
	if cfg.C <= 0 {
		cfg.C = 1.0
	}
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = 5000
	}
	return &Classifier{cfg: cfg}
}

// Fit trains the vectorizer and the one-vs-rest machines on labeled clause
// texts. Labels outside the closed category set are rejected.
func (c *Classifier) Fit(texts []string, labels []constants.Category) error {
	if len(texts) == 0 || len(texts) != len(labels) {
		return fmt.Errorf("%w: need equal, non-empty texts and labels", common.ErrInvalidInput)
	}
	for i, l := range labels {
		if !constants.IsValid(l) {
			return fmt.Errorf("%w: label %q at sample %d is not a known clause type", common.ErrInvalidInput, l, i)
		}
	}

	c.vec = Vectorizer{Cfg: VectorizerConfig{
		MaxFeatures: c.cfg.MaxFeatures,
		MaxDFRatio:  0.95,
		MinDF:       1,
		NgramMax:    2,
	}}
	c.vec.Fit(texts)

	c.train = make([][]float64, len(texts))
	for i, t := range texts {
		c.train[i] = c.vec.Transform(t)
	}

	c.gamma = c.cfg.Gamma
	if c.gamma <= 0 {
		c.gamma = scaleGamma(c.train)
	}
	kern := kernelFunc(c.cfg.Kernel, c.gamma)

	n := len(c.train)
	gram := make([][]float64, n)
	for i := range gram {
		gram[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			k := kern(c.train[i], c.train[j])
			gram[i][j], gram[j][i] = k, k
		}
	}

	// classes in canonical order, restricted to what the data contains
	present := make(map[constants.Category]bool, len(labels))
	for _, l := range labels {
		present[l] = true
	}
	c.classes = c.classes[:0]
	for _, cat := range constants.Categories() {
		if present[cat] {
			c.classes = append(c.classes, cat)
		}
	}

	c.machines = make([]binarySVM, len(c.classes))
	for ci, cat := range c.classes {
		y := make([]float64, n)
		for i, l := range labels {
			if l == cat {
				y[i] = 1
			} else {
				y[i] = -1
			}
		}
		m := trainBinary(gram, y, c.cfg.C)
		scores := make([]float64, n)
		for i := 0; i < n; i++ {
			scores[i] = m.decision(gram[i])
		}
		m.fitPlatt(scores)
		c.machines[ci] = m
	}

	c.fitted = true
	return nil
}

// PredictProba returns the calibrated probability for every clause type the
// model was trained on. The values sum to 1 within floating-point tolerance.
func (c *Classifier) PredictProba(text string) (map[constants.Category]float64, error) {
	if !c.fitted {
		return nil, common.ErrNotFitted
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty clause text", common.ErrInvalidInput)
	}

	x := c.vec.Transform(text)
	kern := kernelFunc(c.cfg.Kernel, c.gamma)
	kRow := make([]float64, len(c.train))
	for i, tv := range c.train {
		kRow[i] = kern(tv, x)
	}

	probs := make(map[constants.Category]float64, len(c.classes))
	total := 0.0
	for ci, cat := range c.classes {
		p := c.machines[ci].calibrated(c.machines[ci].decision(kRow))
		probs[cat] = p
		total += p
	}
	if total <= 0 {
		// degenerate calibration; fall back to uniform
		for _, cat := range c.classes {
			probs[cat] = 1 / float64(len(c.classes))
		}
		return probs, nil
	}
	for cat := range probs {
		probs[cat] /= total
	}
	return probs, nil
}

// Predict returns the clause type with the highest calibrated probability.
// Ties resolve in canonical category order.
func (c *Classifier) Predict(text string) (constants.Category, error) {
	probs, err := c.PredictProba(text)
	if err != nil {
		return "", err
	}
	best := c.classes[0]
	bestP := math.Inf(-1)
	for _, cat := range c.classes {
		if probs[cat] > bestP {
			best, bestP = cat, probs[cat]
		}
	}
	return best, nil
}

// Classes returns the trained class set in canonical order.
func (c *Classifier) Classes() []constants.Category {
	out := make([]constants.Category, len(c.classes))
	copy(out, c.classes)
	return out
}

// IsFitted reports whether the classifier can predict.
func (c *Classifier) IsFitted() bool { return c.fitted }

// scaleGamma resolves gamma="scale": 1 / (nFeatures * variance of all
// training-matrix entries).
func scaleGamma(x [][]float64) float64 {
	if len(x) == 0 || len(x[0]) == 0 {
		return 1
	}
	n := float64(len(x) * len(x[0]))
	var sum float64
	for _, row := range x {
		for _, v := range row {
			sum += v
		}
	}
	mean := sum / n
	var varSum float64
	for _, row := range x {
		for _, v := range row {
			d := v - mean
			varSum += d * d
		}
	}
	variance := varSum / n
	if variance <= 0 {
		return 1
	}
	return 1 / (float64(len(x[0])) * variance)
}

// modelArtifact is the gob-serialized state. The artifact is opaque to
// callers; load(save(m)) must predict identically to m.
type modelArtifact struct {
	Kernel      Kernel
	C           float64
	Gamma       float64
	MaxFeatures int

	VecCfg   VectorizerConfig
	Vocab    map[string]int
	IDF      []float64
	Classes  []constants.Category
	Machines []binarySVM
	Train    [][]float64
}

// Save serializes the trained model into a single artifact file.
func (c *Classifier) Save(path string) error {
	if !c.fitted {
		return fmt.Errorf("%w: cannot save an unfitted classifier", common.ErrNotFitted)
	}
	art := modelArtifact{
		Kernel:      c.cfg.Kernel,
		C:           c.cfg.C,
		Gamma:       c.gamma,
		MaxFeatures: c.cfg.MaxFeatures,
		VecCfg:      c.vec.Cfg,
		Vocab:       c.vec.Vocab,
		IDF:         c.vec.IDF,
		Classes:     c.classes,
		Machines:    c.machines,
		Train:       c.train,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(art); err != nil {
		return fmt.Errorf("%w: encode model: %v", common.ErrPersistence, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: write model artifact: %v", common.ErrPersistence, err)
	}
	return nil
}

// Load reads a model artifact back into a ready classifier.
func Load(path string) (*Classifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read model artifact: %v", common.ErrPersistence, err)
	}
	var art modelArtifact
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&art); err != nil {
		return nil, fmt.Errorf("%w: decode model artifact: %v", common.ErrPersistence, err)
	}

	c := &Classifier{
		cfg: Config{
			Kernel:      art.Kernel,
			C:           art.C,
			Gamma:       art.Gamma,
			MaxFeatures: art.MaxFeatures,
		},
		vec:      Vectorizer{Cfg: art.VecCfg, Vocab: art.Vocab, IDF: art.IDF},
		classes:  art.Classes,
		machines: art.Machines,
		train:    art.Train,
		gamma:    art.Gamma,
		fitted:   true,
	}
	return c, nil
}
