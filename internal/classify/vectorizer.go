package classify

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/cube-dp/lease-classifier/internal/textproc"
)

// VectorizerConfig bounds the TF-IDF vocabulary.
type VectorizerConfig struct {
	MaxFeatures int     // cap on vocabulary size, 0 means unbounded
	MaxDFRatio  float64 // drop terms present in more than this fraction of docs
	MinDF       int     // drop terms present in fewer than this many docs
	NgramMax    int     // 1 = unigrams, 2 = unigrams+bigrams
}

func defaultVectorizerConfig() VectorizerConfig {
	return VectorizerConfig{
		MaxFeatures: 5000,
		MaxDFRatio:  0.95,
		MinDF:       1,
		NgramMax:    2,
	}
}

// Vectorizer turns clause text into l2-normalized TF-IDF feature vectors
// over a bounded vocabulary. Fields are exported for gob serialization of
// the trained model artifact.
type Vectorizer struct {
	Cfg   VectorizerConfig
	Vocab map[string]int
	IDF   []float64
}

// tokenize folds the text and produces the ngram term stream. Single-rune
// tokens and stopwords are dropped before ngrams are formed.
func (v *Vectorizer) tokenize(text string) []string {
	words := strings.Fields(textproc.FoldForFeatures(text))
	kept := words[:0]
	for _, w := range words {
		if len(w) < 2 {
			continue
		}
		if _, stop := englishStopwords[w]; stop {
			continue
		}
		kept = append(kept, w)
	}

	max := v.Cfg.NgramMax
	if max < 1 {
		max = 1
	}
	terms := make([]string, 0, len(kept)*max)
	for n := 1; n <= max; n++ {
		for i := 0; i+n <= len(kept); i++ {
			terms = append(terms, strings.Join(kept[i:i+n], " "))
		}
	}
	return terms
}

// Fit builds the vocabulary and IDF weights from the training documents.
func (v *Vectorizer) Fit(docs []string) {
	if v.Cfg == (VectorizerConfig{}) {
		v.Cfg = defaultVectorizerConfig()
	}

	df := make(map[string]int)
	cf := make(map[string]int) // corpus frequency, used for the feature cap
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, t := range v.tokenize(doc) {
			cf[t]++
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				df[t]++
			}
		}
	}

	n := len(docs)
	maxDF := n
	if v.Cfg.MaxDFRatio > 0 && v.Cfg.MaxDFRatio < 1 {
		maxDF = int(math.Floor(v.Cfg.MaxDFRatio * float64(n)))
		if maxDF < 1 {
			maxDF = 1
		}
	}

	terms := make([]string, 0, len(df))
	for t, d := range df {
		if d < v.Cfg.MinDF || d > maxDF {
			continue
		}
		terms = append(terms, t)
	}
	// order by corpus frequency, ties lexically, so the cap is deterministic
	sort.Slice(terms, func(i, j int) bool {
		if cf[terms[i]] != cf[terms[j]] {
			return cf[terms[i]] > cf[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if v.Cfg.MaxFeatures > 0 && len(terms) > v.Cfg.MaxFeatures {
		terms = terms[:v.Cfg.MaxFeatures]
	}
	sort.Strings(terms)

	v.Vocab = make(map[string]int, len(terms))
	for i, t := range terms {
		v.Vocab[t] = i
	}

	v.IDF = make([]float64, len(terms))
	for t, i := range v.Vocab {
		// smoothed IDF, as if one extra document contained every term
		v.IDF[i] = math.Log(float64(1+n)/float64(1+df[t])) + 1
	}
}

// Transform maps text onto the fitted vocabulary. Terms outside the
// vocabulary are ignored; the result is l2-normalized unless empty.
func (v *Vectorizer) Transform(text string) []float64 {
	vec := make([]float64, len(v.IDF))
	for _, t := range v.tokenize(text) {
		if i, ok := v.Vocab[t]; ok {
			vec[i] += v.IDF[i]
		}
	}
	if norm := math.Sqrt(floats.Dot(vec, vec)); norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec
}

// NumFeatures returns the fitted vocabulary size.
func (v *Vectorizer) NumFeatures() int {
	return len(v.IDF)
}
