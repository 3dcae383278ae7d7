// Package similarity finds near-duplicate function bodies across the corpus.
package similarity

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/phobologic/treemap/internal/model"
)

// Ratio returns 2*M/T for the two texts, where M is the total length of
// the matching blocks and T the combined length, compared rune by rune.
// Two empty texts are identical.
func Ratio(a, b string) float64 {
	return difflib.NewMatcherWithJunk(runes(a), runes(b), false, nil).Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

type body struct {
	model.FunctionBody
	seq []string
	sum uint64
}

type pair struct {
	i, j  int
	ratio float64
}

// FindDuplicates compares every unordered pair of bodies and returns one
// DUPLICATE_LOGIC finding, attributed to the earlier body, for each pair
// whose ratio exceeds threshold. Findings follow input pair order.
func FindDuplicates(bodies []model.FunctionBody, threshold float64) []model.Finding {
	if len(bodies) < 2 {
		return nil
	}

	prepared := make([]body, len(bodies))
	for i, b := range bodies {
		prepared[i] = body{FunctionBody: b, seq: runes(b.Text), sum: xxhash.Sum64String(b.Text)}
	}

	// The matcher caches its index of the second sequence, so each body is
	// indexed once as seq2 and compared against every earlier body.
	var pairs []pair
	m := difflib.NewMatcherWithJunk(nil, nil, false, nil)
	for j := 1; j < len(prepared); j++ {
		m.SetSeq2(prepared[j].seq)
		for i := 0; i < j; i++ {
			if r, ok := compare(m, &prepared[i], &prepared[j], threshold); ok {
				pairs = append(pairs, pair{i: i, j: j, ratio: r})
			}
		}
	}

	sort.Slice(pairs, func(x, y int) bool {
		if pairs[x].i != pairs[y].i {
			return pairs[x].i < pairs[y].i
		}
		return pairs[x].j < pairs[y].j
	})

	findings := make([]model.Finding, 0, len(pairs))
	for _, p := range pairs {
		a, b := prepared[p.i], prepared[p.j]
		findings = append(findings, model.NewFinding(
			model.DuplicateLogic, a.File, a.Line,
			fmt.Sprintf("%s() is %.0f%% similar to %s() in %s:%d", a.Name, p.ratio*100, b.Name, b.File, b.Line),
		))
	}
	return findings
}

// compare returns the ratio of a and b when it exceeds threshold. The
// length and multiset bounds are upper bounds on the real ratio, so pruning
// on them never drops a qualifying pair.
func compare(m *difflib.SequenceMatcher, a, b *body, threshold float64) (float64, bool) {
	if a.sum == b.sum && a.Text == b.Text {
		return 1.0, 1.0 > threshold
	}
	m.SetSeq1(a.seq)
	if m.RealQuickRatio() <= threshold || m.QuickRatio() <= threshold {
		return 0, false
	}
	r := m.Ratio()
	return r, r > threshold
}
