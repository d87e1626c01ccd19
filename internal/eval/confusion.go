package eval

import "sort"

// ConfusionPair is one (expected, got) character substitution observed
// across the dataset's edit-op alignments, with its occurrence count.
type ConfusionPair struct {
	Expected string `json:"expected"`
	Got      string `json:"got"`
	Count    int    `json:"count"`
}

// topConfusionPairs aligns every item's predicted/ground-truth pair with a
// Needleman-Wunsch-style edit-distance alignment, tallies substitution
// pairs, and returns the top-N by count.
func topConfusionPairs(items []ItemResult, topN int) []ConfusionPair {
	counts := map[[2]rune]int{}
	for _, it := range items {
		for _, sub := range alignSubstitutions(it.Predicted, it.GroundTruth) {
			counts[sub]++
		}
	}

	pairs := make([]ConfusionPair, 0, len(counts))
	for k, c := range counts {
		pairs = append(pairs, ConfusionPair{Got: string(k[0]), Expected: string(k[1]), Count: c})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count != pairs[j].Count {
			return pairs[i].Count > pairs[j].Count
		}
		if pairs[i].Expected != pairs[j].Expected {
			return pairs[i].Expected < pairs[j].Expected
		}
		return pairs[i].Got < pairs[j].Got
	})
	if len(pairs) > topN {
		pairs = pairs[:topN]
	}
	return pairs
}

// alignSubstitutions runs a standard edit-distance DP over predicted vs
// groundTruth and backtracks the chosen path, collecting every substitution
// (got != expected) operation along the way.
func alignSubstitutions(predicted, groundTruth string) [][2]rune {
	p := []rune(predicted)
	g := []rune(groundTruth)
	n, m := len(p), len(g)

	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
		dp[i][0] = i
	}
	for j := 0; j <= m; j++ {
		dp[0][j] = j
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost := 1
			if p[i-1] == g[j-1] {
				cost = 0
			}
			del := dp[i-1][j] + 1
			ins := dp[i][j-1] + 1
			sub := dp[i-1][j-1] + cost
			dp[i][j] = min3(del, ins, sub)
		}
	}

	var subs [][2]rune
	i, j := n, m
	for i > 0 && j > 0 {
		cost := 1
		if p[i-1] == g[j-1] {
			cost = 0
		}
		switch {
		case dp[i][j] == dp[i-1][j-1]+cost:
			if cost == 1 {
				subs = append(subs, [2]rune{p[i-1], g[j-1]})
			}
			i--
			j--
		case dp[i][j] == dp[i-1][j]+1:
			i--
		default:
			j--
		}
	}
	return subs
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
