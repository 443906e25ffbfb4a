package vendors

import (
	"math"
	"strings"
)

// Match tier confidences and fuzzy-match bounds. The fuzzy floor and caps are
// policy constants; tune them here, not in the matching code.
const (
	ExactConfidence   = 0.98
	PrefixConfidence  = 0.95
	PatternConfidence = 0.93
	FuzzyFloor        = 0.7
	FuzzyDescriptorCap = 0.9
	FuzzyCompanyCap    = 0.85

	locationPlaceholder = "[location]"
)

// Record is one known vendor in the static reference table.
type Record struct {
	Brand       string
	Category    string
	Subcategory string
	CompanyName string
	Descriptors []string
}

// Match is a successful dictionary hit.
type Match struct {
	Brand             string
	Category          string
	Subcategory       string
	Confidence        float64
	MatchedDescriptor string
	Tier              string
}

// Dictionary matches raw transaction text against the static vendor table.
// Construct one at startup and inject it wherever matching is needed; there
// is no package-level instance.
type Dictionary struct {
	records      []Record
	descriptors  [][]string     // lower-cased, aligned with records
	byDescriptor map[string]int // exact-lookup index into records
}

// NewDictionary builds the descriptor index. Record order matters: ties at
// the fuzzy tier resolve to the earliest record loaded.
func NewDictionary(records []Record) *Dictionary {
	d := &Dictionary{
		records:      records,
		descriptors:  make([][]string, len(records)),
		byDescriptor: make(map[string]int),
	}
	for i, rec := range records {
		lowered := make([]string, 0, len(rec.Descriptors))
		for _, desc := range rec.Descriptors {
			ld := strings.ToLower(desc)
			lowered = append(lowered, ld)
			if _, taken := d.byDescriptor[ld]; !taken {
				d.byDescriptor[ld] = i
			}
		}
		d.descriptors[i] = lowered
	}
	return d
}

// Match resolves transaction text through four tiers, first hit wins:
// exact descriptor, descriptor prefix, location-pattern, fuzzy token overlap.
func (d *Dictionary) Match(text string) (*Match, bool) {
	input := strings.ToLower(strings.TrimSpace(text))
	if input == "" {
		return nil, false
	}

	if idx, ok := d.byDescriptor[input]; ok {
		return d.hit(idx, input, ExactConfidence, "exact"), true
	}

	for i := range d.records {
		for _, desc := range d.descriptors[i] {
			// Placeholder descriptors are patterns, not prefixes.
			if strings.Contains(desc, locationPlaceholder) {
				continue
			}
			if strings.HasPrefix(input, desc) {
				return d.hit(i, desc, PrefixConfidence, "prefix"), true
			}
		}
	}

	if m, ok := d.patternMatch(input); ok {
		return m, true
	}

	return d.fuzzyMatch(input)
}

// patternMatch compares the input's segment before a '*' delimiter against
// descriptors carrying a location placeholder, e.g. "DMART*BANGALORE" vs
// "DMART*[LOCATION]".
func (d *Dictionary) patternMatch(input string) (*Match, bool) {
	base, _, found := strings.Cut(input, "*")
	if !found {
		return nil, false
	}
	base = strings.TrimSpace(base)
	if base == "" {
		return nil, false
	}
	for i := range d.records {
		for _, desc := range d.descriptors[i] {
			if !strings.Contains(desc, locationPlaceholder) {
				continue
			}
			descBase, _, _ := strings.Cut(desc, "*")
			if strings.TrimSpace(descBase) == base {
				return d.hit(i, desc, PatternConfidence, "pattern"), true
			}
		}
	}
	return nil, false
}

func (d *Dictionary) fuzzyMatch(input string) (*Match, bool) {
	inputTokens := tokenSet(input)
	if len(inputTokens) == 0 {
		return nil, false
	}

	bestIdx := -1
	bestScore := 0.0
	bestDesc := ""
	bestCap := 0.0
	// Strict > keeps the earliest-loaded record on ties.
	for i, rec := range d.records {
		for _, desc := range d.descriptors[i] {
			score := jaccard(inputTokens, tokenSet(desc))
			if score >= FuzzyFloor && score > bestScore {
				bestIdx, bestScore, bestDesc, bestCap = i, score, desc, FuzzyDescriptorCap
			}
		}
		if rec.CompanyName != "" {
			company := strings.ToLower(rec.CompanyName)
			score := jaccard(inputTokens, tokenSet(company))
			if score >= FuzzyFloor && score > bestScore {
				bestIdx, bestScore, bestDesc, bestCap = i, score, company, FuzzyCompanyCap
			}
		}
	}
	if bestIdx < 0 {
		return nil, false
	}
	return d.hit(bestIdx, bestDesc, math.Min(bestCap, bestScore), "fuzzy"), true
}

func (d *Dictionary) hit(idx int, descriptor string, confidence float64, tier string) *Match {
	rec := d.records[idx]
	return &Match{
		Brand:             rec.Brand,
		Category:          rec.Category,
		Subcategory:       rec.Subcategory,
		Confidence:        confidence,
		MatchedDescriptor: descriptor,
		Tier:              tier,
	}
}

// tokenSet splits on non-alphanumerics and keeps tokens longer than two
// characters, so noise like "dr", "po", "of" never drives a fuzzy match.
func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	for _, f := range fields {
		if len(f) > 2 {
			set[f] = struct{}{}
		}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
