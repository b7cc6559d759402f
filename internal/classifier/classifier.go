// Package classifier implements spec §4.3: a pure function mapping a
// request to {type, complexity_score, cacheable, estimated_latency_ms,
// reason}. Grounded in the teacher's pkg/search/relevance_ranker.go style
// of scoring (additive, capped contributions, a final rounded score) but
// built fresh since the teacher never classifies a request by engine
// route — that part is this gateway's own domain logic.
package classifier

import (
	"fmt"
	"math"
	"strings"

	"github.com/S-Corkum/search-gateway/internal/model"
)

var phraseMarkers = []string{"\"", "'"}
var wildcardMarkers = []string{"*", "?", "~"}

func Classify(req model.Request, cfg Config) model.Classification {
	score, reasons := score(req, cfg)
	score = math.Round(score*10) / 10

	wordCount := len(strings.Fields(req.Q))
	hasFreeText := req.Q != ""
	filterCount := countUserFilters(req.Filters)
	hasHighlightOrSuggest := req.Options.Highlight || req.Options.Suggest
	longFuzzy := containsAny(req.Q, wildcardMarkers) && len(req.Q) > cfg.LongQueryChars/2
	longMultiWord := hasFreeText && wordCount > 6 && len(req.Q) > cfg.LongQueryChars
	hasPhrase := containsAny(req.Q, phraseMarkers)
	nestedFilters := hasNestedFilters(req.Filters)
	veryLargePage := req.Page.Size > cfg.LargePageSize

	switch {
	case score <= cfg.SimpleThreshold && !hasFreeText && filterCount <= 2 && !hasHighlightOrSuggest:
		return classification(model.ClassSimple, score, req, cfg, "low score, no free text, few filters, no highlight/suggest")

	case score >= cfg.ComplexThreshold:
		return classification(model.ClassComplex, score, req, cfg, "score at or above complex threshold: "+strings.Join(reasons, "; "))

	case hasHighlightOrSuggest || hasPhrase || longFuzzy || longMultiWord || nestedFilters || veryLargePage:
		return classification(model.ClassComplex, score, req, cfg, "requires complex-engine feature")

	case hasFreeText && filterCount > 0:
		return classification(model.ClassHybrid, score, req, cfg, "free text plus structured filters")

	case score < (cfg.SimpleThreshold+cfg.ComplexThreshold)/2:
		return classification(model.ClassSimple, score, req, cfg, "residual below mid-threshold")

	default:
		return classification(model.ClassComplex, score, req, cfg, "residual at or above mid-threshold")
	}
}

func classification(typ string, score float64, req model.Request, cfg Config, reason string) model.Classification {
	return model.Classification{
		Type:               typ,
		ComplexityScore:    score,
		Cacheable:          cacheable(req, cfg),
		EstimatedLatencyMs: estimatedLatency(typ, score, cfg),
		Reason:             reason,
	}
}

func score(req model.Request, cfg Config) (float64, []string) {
	var s float64
	var reasons []string

	if req.Q != "" {
		words := len(strings.Fields(req.Q))
		contribution := math.Min(float64(words), 10) * 0.3
		s += contribution
		reasons = append(reasons, fmt.Sprintf("free-text %d words", words))
	}

	if containsAny(req.Q, phraseMarkers) {
		s += 2
		reasons = append(reasons, "phrase marker")
	}
	if containsAny(req.Q, wildcardMarkers) {
		s += 2
		reasons = append(reasons, "wildcard/fuzzy marker")
	}

	userFilterCount := countUserFilters(req.Filters)
	filterCount := math.Min(float64(userFilterCount), 10)
	s += filterCount * 0.5
	for field, fv := range req.Filters {
		if isInternalFilter(field) {
			continue
		}
		switch fv.Kind {
		case model.FilterRange:
			s += 1
		case model.FilterArray:
			s += 0.5
		}
	}
	if userFilterCount > 0 {
		reasons = append(reasons, fmt.Sprintf("%d filters", userFilterCount))
	}

	for _, sk := range req.Sort {
		if isTextSort(sk.Field) {
			s += 1.5
		} else {
			s += 0.5
		}
	}
	if len(req.Sort) > 0 {
		reasons = append(reasons, fmt.Sprintf("%d sort keys", len(req.Sort)))
	}

	if req.Page.Size > cfg.LargePageSize/2 {
		s += 1
		reasons = append(reasons, "large page size")
	}

	if req.Options.Highlight {
		s += 2
		reasons = append(reasons, "highlight requested")
	}
	if req.Options.Suggest {
		s += 1
		reasons = append(reasons, "suggest requested")
	}

	return s, reasons
}

func cacheable(req model.Request, cfg Config) bool {
	for field, fv := range req.Filters {
		if isInternalFilter(field) {
			continue
		}
		if fv.Kind == model.FilterRange && model.IsDateRangeField(field) {
			return false
		}
	}
	if len(req.Q) > cfg.LongQueryChars {
		return false
	}
	if req.Page.Size > cfg.LargePageSize {
		return false
	}
	return true
}

func estimatedLatency(typ string, score float64, cfg Config) int {
	var base int
	switch typ {
	case model.ClassSimple:
		base = cfg.BaseLatencySimpleMs
	case model.ClassHybrid:
		base = cfg.BaseLatencyHybridMs
	default:
		base = cfg.BaseLatencyComplexMs
	}
	return int(float64(base) * (1 + score/20))
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func isTextSort(field string) bool {
	lower := strings.ToLower(field)
	return !strings.Contains(lower, "date") && !strings.Contains(lower, "_at") &&
		!strings.Contains(lower, "amount") && !strings.Contains(lower, "count") &&
		!strings.Contains(lower, "score")
}

// isInternalFilter reports a filter synthesized by tenant authorization
// (the mandatory tenant scope, ACL visibility) rather than supplied by the
// caller; these must never influence classification or cacheability so
// that authorization doesn't change a request's routing semantics.
func isInternalFilter(field string) bool {
	return strings.HasPrefix(field, "_")
}

func countUserFilters(filters map[string]model.FilterValue) int {
	n := 0
	for field := range filters {
		if !isInternalFilter(field) {
			n++
		}
	}
	return n
}

func hasNestedFilters(filters map[string]model.FilterValue) bool {
	for field := range filters {
		if isInternalFilter(field) {
			continue
		}
		if strings.Contains(field, ".") && strings.Count(field, ".") > 1 {
			return true
		}
	}
	return false
}
