package scoring

import (
	"encoding/json"
	"math"
	"os"
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
)

// Weights maps a category (or a blend component) to its relative weight.
type Weights map[string]float64

// WeightSet holds the per-category weights of the three scoring domains.
type WeightSet struct {
	Resume Weights `json:"resume" toml:"resume"`
	Job    Weights `json:"job" toml:"job"`
	Match  Weights `json:"match" toml:"match"`
}

// Keys of the overall blend used to drive iteration.
const (
	BlendResume = "resume"
	BlendMatch  = "match"
)

// DefaultResumeWeights returns the built-in resume category weights.
func DefaultResumeWeights() Weights {
	return Weights{
		CategoryCompleteness:      0.30,
		CategorySkillsQuality:     0.20,
		CategoryExperienceQuality: 0.30,
		CategoryImpact:            0.20,
	}
}

// DefaultJobWeights returns the built-in job posting category weights.
func DefaultJobWeights() Weights {
	return Weights{
		CategoryCompleteness:             0.35,
		CategoryClarity:                  0.35,
		CategoryCompensationTransparency: 0.15,
		CategoryLinkQuality:              0.15,
	}
}

// DefaultMatchWeights returns the built-in resume/job match category weights.
func DefaultMatchWeights() Weights {
	return Weights{
		CategoryKeywordOverlap: 0.45,
		CategorySkillsOverlap:  0.35,
		CategoryRoleAlignment:  0.20,
	}
}

// DefaultOverallWeights returns the built-in blend of resume quality and match
// quality.
func DefaultOverallWeights() Weights {
	return Weights{
		BlendResume: 0.45,
		BlendMatch:  0.55,
	}
}

// DefaultWeightSet returns the built-in weights of every scoring domain.
func DefaultWeightSet() WeightSet {
	return WeightSet{
		Resume: DefaultResumeWeights(),
		Job:    DefaultJobWeights(),
		Match:  DefaultMatchWeights(),
	}
}

// Clone returns an independently owned copy.
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for key, value := range w {
		out[key] = value
	}
	return out
}

// Normalized returns a copy of the set with every domain normalized.
func (s WeightSet) Normalized() WeightSet {
	return WeightSet{
		Resume: NormalizeWeights(s.Resume),
		Job:    NormalizeWeights(s.Job),
		Match:  NormalizeWeights(s.Match),
	}
}

// NormalizeWeights rescales the positive finite weights so they sum to 1.
// Non-positive and non-finite entries map to 0. When no entry is positive every key maps to 0.
func NormalizeWeights(w Weights) Weights {
	keys := make([]string, 0, len(w))
	for key := range w {
		keys = append(keys, key)
	}
	// Sum in key order so repeated calls produce bit-identical weights.
	sort.Strings(keys)

	sum := 0.0
	for _, key := range keys {
		if value := w[key]; usableWeight(value) {
			sum += value
		}
	}

	out := make(Weights, len(w))
	for key, value := range w {
		if sum <= 0 || math.IsInf(sum, 0) || !usableWeight(value) {
			out[key] = 0
			continue
		}
		out[key] = value / sum
	}

	return out
}

// usableWeight reports whether value takes part in normalization. NaN and
// infinities are treated like non-positive entries.
func usableWeight(value float64) bool {
	return value > 0 && !math.IsInf(value, 0)
}

// LoadWeights reads category weights from a TOML or JSON file. Named keys
// override the defaults; missing keys keep their default values. A missing,
// unreadable or unparsable file yields the defaults.
func LoadWeights(path string) WeightSet {
	tree, ok := readWeightSource(path)
	if !ok {
		return DefaultWeightSet()
	}
	return WeightSetFromTree(tree)
}

// LoadOverallWeights reads the resume/match blend from the [overall] table of a
// weights file, falling back to the defaults.
func LoadOverallWeights(path string) Weights {
	tree, ok := readWeightSource(path)
	if !ok {
		return DefaultOverallWeights()
	}
	return OverallWeightsFromTree(tree)
}

// ParseWeights merges raw weights file content over the defaults and returns
// the category weights together with the overall blend.
func ParseWeights(data []byte) (WeightSet, Weights) {
	tree, ok := parseWeightSource(data)
	if !ok {
		return DefaultWeightSet(), DefaultOverallWeights()
	}
	return WeightSetFromTree(tree), OverallWeightsFromTree(tree)
}

// parseWeightSource decodes raw weights file content. TOML is tried first, then
// JSON.
func parseWeightSource(data []byte) (map[string]any, bool) {
	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err == nil {
		return tree, true
	}

	tree = nil
	if err := json.Unmarshal(data, &tree); err == nil && tree != nil {
		return tree, true
	}

	return nil, false
}

// WeightSetFromTree merges the resume, job and match tables of a decoded
// weights source over the defaults.
func WeightSetFromTree(tree map[string]any) WeightSet {
	set := DefaultWeightSet()
	mergeDomain(set.Resume, tree, "resume", nil)
	mergeDomain(set.Job, tree, "job", nil)
	mergeDomain(set.Match, tree, "match", nil)
	return set
}

// OverallWeightsFromTree merges the [overall] table of a decoded weights source
// over the default blend. Only the resume and match keys are read.
func OverallWeightsFromTree(tree map[string]any) Weights {
	weights := DefaultOverallWeights()
	mergeDomain(weights, tree, "overall", []string{BlendResume, BlendMatch})
	return weights
}

func readWeightSource(path string) (map[string]any, bool) {
	if path == "" {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	return parseWeightSource(data)
}

// mergeDomain overwrites dst entries with the numeric values found under
// tree[domain].weights, tree[domain].weight or tree[domain] itself. When only
// is non-empty, other keys are ignored.
func mergeDomain(dst Weights, tree map[string]any, domain string, only []string) {
	table, ok := tree[domain].(map[string]any)
	if !ok {
		return
	}

	if nested, ok := table["weights"].(map[string]any); ok {
		table = nested
	} else if nested, ok := table["weight"].(map[string]any); ok {
		table = nested
	}

	allowed := func(key string) bool {
		if len(only) == 0 {
			return true
		}
		for _, candidate := range only {
			if candidate == key {
				return true
			}
		}
		return false
	}

	for key, raw := range table {
		if !allowed(key) {
			continue
		}

		value, ok := decodeWeight(raw)
		if !ok {
			continue
		}
		dst[key] = value
	}
}

// decodeWeight accepts finite integers and floats. Strings and booleans are
// rejected because the decoder runs without weak typing.
func decodeWeight(raw any) (float64, bool) {
	if raw == nil {
		return 0, false
	}

	var value float64
	if err := mapstructure.Decode(raw, &value); err != nil {
		return 0, false
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
