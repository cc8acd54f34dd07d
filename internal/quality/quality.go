// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package quality deduplicates, scores, and ranks discovered records.
//
// Identity for deduplication is the DOI (case-insensitive) or the
// normalized title; the first-encountered record of an identity class
// survives. Scoring is a pure additive function of a record's discovery
// fields; the constants are empirically chosen and kept as-is for
// behavioral compatibility with prior runs.
package quality

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/meshintelligence/primer-engine/pkg/types"
)

// minAbstractLen is the eligibility floor: a record whose abstract is this
// short or absent cannot support ranking or primer generation.
const minAbstractLen = 50

var (
	nonWord      = regexp.MustCompile(`\W+`)
	quotedPhrase = regexp.MustCompile(`"([^"]+)"`)
)

// NormalizeTitle lowercases a title and strips every non-word character,
// so punctuation and spacing differences between backends collapse.
func NormalizeTitle(title string) string {
	return nonWord.ReplaceAllString(strings.ToLower(title), "")
}

// ExtractQuotedPhrases returns the literal substrings of double-quoted
// segments in the topic string. Ranking treats them as required phrases.
func ExtractQuotedPhrases(topic string) []string {
	var phrases []string
	for _, m := range quotedPhrase.FindAllStringSubmatch(topic, -1) {
		if p := strings.TrimSpace(m[1]); p != "" {
			phrases = append(phrases, p)
		}
	}
	return phrases
}

// Deduplicate collapses records that refer to the same work, in a single
// order-preserving pass. A record is dropped when its DOI or its
// normalized title was already seen; which copy survives is determined
// solely by input order. Idempotent.
func Deduplicate(records []types.Record) []types.Record {
	seenDOIs := make(map[string]bool)
	seenTitles := make(map[string]bool)
	unique := make([]types.Record, 0, len(records))

	for _, r := range records {
		doi := strings.ToLower(r.DOI)
		normTitle := NormalizeTitle(r.Title)

		if doi != "" && seenDOIs[doi] {
			continue
		}
		if seenTitles[normTitle] {
			continue
		}

		if doi != "" {
			seenDOIs[doi] = true
		}
		seenTitles[normTitle] = true
		unique = append(unique, r)
	}
	return unique
}

// Score computes the composite quality score for one record. Each term is
// zero when the underlying field is absent or zero.
func Score(r types.Record) float64 {
	score := 0.0

	// Citation impact on a log scale, so a 10k-cited classic doesn't
	// drown everything else.
	if r.CitationCount > 0 {
		score += math.Log1p(float64(r.CitationCount)) * 5
	}

	// Influential citations weigh double per unit of log-count: these are
	// works that built on the record substantially.
	if r.InfluentialCitationCount > 0 {
		score += math.Log1p(float64(r.InfluentialCitationCount)) * 10
	}

	// Recency bonus, gated on a minimal citation signal so unvalidated
	// recent noise isn't rewarded.
	if r.Year > 0 && r.CitationCount >= 2 {
		switch {
		case r.Year >= 2020:
			score += 12
		case r.Year >= 2015:
			score += 7
		case r.Year >= 2010:
			score += 3
		}
	}

	// A venue string is a peer-review proxy; preprints are excluded upstream.
	if r.Venue != "" {
		score += 5
	}

	if r.IsOpenAccess {
		score += 4
	}

	// Abstract substance, graduated by length.
	switch n := len(r.Abstract); {
	case n > 1000:
		score += 10
	case n > 300:
		score += 7
	case n > minAbstractLen:
		score += 3
	}

	return score
}

// FilterAndRank removes ineligible records, deduplicates, scores, and
// returns the top N by descending score. Ties keep input order (stable
// sort). When requiredPhrases is non-empty a record is eligible only if
// every phrase appears, case-insensitively, in its title or abstract.
func FilterAndRank(records []types.Record, topN int, requiredPhrases []string) []types.Record {
	eligible := make([]types.Record, 0, len(records))
	for _, r := range records {
		if len(r.Abstract) <= minAbstractLen {
			continue
		}
		if !containsAllPhrases(r, requiredPhrases) {
			continue
		}
		eligible = append(eligible, r)
	}

	unique := Deduplicate(eligible)

	for i := range unique {
		unique[i].QualityScore = Score(unique[i])
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].QualityScore > unique[j].QualityScore
	})

	if topN > 0 && len(unique) > topN {
		unique = unique[:topN]
	}
	return unique
}

// containsAllPhrases reports whether every phrase occurs in the record's
// title+abstract, ignoring case.
func containsAllPhrases(r types.Record, phrases []string) bool {
	if len(phrases) == 0 {
		return true
	}
	haystack := strings.ToLower(r.Title + " " + r.Abstract)
	for _, p := range phrases {
		if !strings.Contains(haystack, strings.ToLower(p)) {
			return false
		}
	}
	return true
}
