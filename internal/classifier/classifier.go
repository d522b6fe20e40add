// Package classifier maps chat messages to intent labels with a naive Bayes
// model trained from a small labelled corpus at start-up.
package classifier

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/jbrukh/bayesian"

	"github.com/4rinababan/chatfinance/internal/core"
)

//go:embed data/intents.csv
var defaultDataset string

// numberToken replaces every digit run so amounts do not fragment the vocabulary.
const numberToken = "<num>"

var ErrNotEnoughClasses = errors.New("training data needs at least two intents")

// Sample is one labelled training message.
type Sample struct {
	Text   string
	Intent string
}

// NaiveBayes is safe for concurrent Predict calls once constructed.
type NaiveBayes struct {
	model   *bayesian.Classifier
	classes []bayesian.Class
	vocab   map[string]struct{}
}

// NewDefault trains on the embedded intent corpus.
func NewDefault() (*NaiveBayes, error) {
	samples, err := ParseSamples(strings.NewReader(defaultDataset))
	if err != nil {
		return nil, fmt.Errorf("parse embedded dataset: %w", err)
	}
	return Train(samples)
}

// Train builds a model over the distinct intents found in samples.
func Train(samples []Sample) (*NaiveBayes, error) {
	seen := make(map[string]struct{})
	var names []string
	for _, s := range samples {
		if _, ok := seen[s.Intent]; !ok {
			seen[s.Intent] = struct{}{}
			names = append(names, s.Intent)
		}
	}
	if len(names) < 2 {
		return nil, ErrNotEnoughClasses
	}
	sort.Strings(names)

	classes := make([]bayesian.Class, len(names))
	for i, n := range names {
		classes[i] = bayesian.Class(n)
	}

	nb := &NaiveBayes{
		model:   bayesian.NewClassifier(classes...),
		classes: classes,
		vocab:   make(map[string]struct{}),
	}
	for _, s := range samples {
		tokens := Tokenize(s.Text)
		if len(tokens) == 0 {
			continue
		}
		for _, tok := range tokens {
			nb.vocab[tok] = struct{}{}
		}
		nb.model.Learn(tokens, bayesian.Class(s.Intent))
	}
	return nb, nil
}

// Predict returns the most likely intent and its posterior probability.
// Messages with no known word yield LabelUnknown with zero confidence.
func (nb *NaiveBayes) Predict(text string) core.Classification {
	tokens := nb.known(Tokenize(text))
	if len(tokens) == 0 {
		return core.Classification{Label: core.LabelUnknown}
	}

	scores, best, _ := nb.model.LogScores(tokens)
	return core.Classification{
		Label:      string(nb.classes[best]),
		Confidence: posterior(scores, best),
	}
}

// Labels lists the intents the model was trained on, sorted.
func (nb *NaiveBayes) Labels() []string {
	out := make([]string, len(nb.classes))
	for i, c := range nb.classes {
		out[i] = string(c)
	}
	return out
}

func (nb *NaiveBayes) known(tokens []string) []string {
	out := tokens[:0:0]
	for _, t := range tokens {
		if _, ok := nb.vocab[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// posterior normalises log scores with a softmax and returns the share of idx.
func posterior(logScores []float64, idx int) float64 {
	top := math.Inf(-1)
	for _, s := range logScores {
		if s > top {
			top = s
		}
	}
	var sum float64
	for _, s := range logScores {
		sum += math.Exp(s - top)
	}
	if sum == 0 || math.IsNaN(sum) {
		return 0
	}
	return math.Exp(logScores[idx]-top) / sum
}

// Tokenize lowercases text, splits on anything that is not a letter or
// digit and collapses digit runs into a single number token.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, f := range fields {
		if isDigits(f) {
			fields[i] = numberToken
		}
	}
	return fields
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// ParseSamples reads "text;intent" lines. A header line "text;intent",
// blank lines and lines starting with '#' are skipped.
func ParseSamples(r io.Reader) ([]Sample, error) {
	var out []Sample
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		idx := strings.LastIndex(raw, ";")
		if idx < 0 {
			return nil, fmt.Errorf("line %d: missing ';' separator", line)
		}
		text := strings.TrimSpace(raw[:idx])
		intent := strings.ToLower(strings.TrimSpace(raw[idx+1:]))
		if line == 1 && strings.EqualFold(text, "text") && intent == "intent" {
			continue
		}
		if text == "" || intent == "" {
			return nil, fmt.Errorf("line %d: empty text or intent", line)
		}
		out = append(out, Sample{Text: text, Intent: intent})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan samples: %w", err)
	}
	return out, nil
}
