// Package results derives vote statistics from the raw submission list.
//
// Everything here is a pure function of its input: the snapshot is rebuilt
// from scratch on every call and nothing is cached between calls.
package results

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/okian/langvote/internal/domain/model"
)

// Snapshot is the aggregate view over a list of submissions.
type Snapshot struct {
	TotalVotes          int                           `json:"totalVotes"`
	LanguageCounts      map[string]int                `json:"languageCounts"`
	LanguagePercentages map[string]float64            `json:"languagePercentages"`
	GroupedSubmissions  map[string][]model.Submission `json:"groupedSubmissions"`
}

// Aggregate tallies submissions per language, computes each language's share
// of the total rounded to two decimals and groups the submissions by language
// in ascending submission time. Submissions with an unparsable timestamp sort
// after every parsable one in their group, keeping their input order.
func Aggregate(subs []model.Submission) Snapshot {
	counts := Tally(subs)
	return Snapshot{
		TotalVotes:          len(subs),
		LanguageCounts:      counts,
		LanguagePercentages: Percentages(counts, len(subs)),
		GroupedSubmissions:  Group(subs),
	}
}

// Tally counts submissions per language.
func Tally(subs []model.Submission) map[string]int {
	counts := make(map[string]int)
	for _, s := range subs {
		counts[s.Language]++
	}
	return counts
}

// Percentages converts counts into shares of total. The map is empty when
// total is zero.
func Percentages(counts map[string]int, total int) map[string]float64 {
	pct := make(map[string]float64, len(counts))
	if total <= 0 {
		return pct
	}
	for lang, n := range counts {
		pct[lang] = Round2(float64(n) / float64(total) * 100)
	}
	return pct
}

// Round2 rounds v to two decimal places, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Group partitions submissions by language, each partition sorted by time.
func Group(subs []model.Submission) map[string][]model.Submission {
	groups := make(map[string][]model.Submission)
	for _, s := range subs {
		groups[s.Language] = append(groups[s.Language], s)
	}
	for lang := range groups {
		SortByTime(groups[lang])
	}
	return groups
}

// SortByTime stable-sorts subs ascending by TimeSubmitted in place.
func SortByTime(subs []model.Submission) {
	type keyed struct {
		at    time.Time
		valid bool
	}
	keys := make(map[string]keyed, len(subs))
	key := func(s model.Submission) keyed {
		k, ok := keys[s.TimeSubmitted]
		if !ok {
			at, valid := s.Submitted()
			k = keyed{at: at, valid: valid}
			keys[s.TimeSubmitted] = k
		}
		return k
	}
	slices.SortStableFunc(subs, func(a, b model.Submission) int {
		ka, kb := key(a), key(b)
		switch {
		case ka.valid && kb.valid:
			return ka.at.Compare(kb.at)
		case ka.valid:
			return -1
		case kb.valid:
			return 1
		default:
			return 0
		}
	})
}

// Languages returns the language keys ordered by count descending, then by
// key ascending.
func Languages(counts map[string]int) []string {
	langs := make([]string, 0, len(counts))
	for lang := range counts {
		langs = append(langs, lang)
	}
	slices.SortFunc(langs, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return langs
}

// GroupKeys returns the keys of a grouped snapshot in ascending order.
func GroupKeys(groups map[string][]model.Submission) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
