package eval

import "sort"

// Stat holds the summary statistics spec §4.11 requires per metric: mean,
// median, and the {25,50,75,90,95} percentile set.
type Stat struct {
	Mean        float64            `json:"mean"`
	Median      float64            `json:"median"`
	Percentiles map[int]float64    `json:"percentiles"`
}

// Aggregate is the full set of aggregate statistics over an evaluation run.
type Aggregate struct {
	CER               Stat                           `json:"cer"`
	WER               Stat                           `json:"wer"`
	Similarity        Stat                           `json:"similarity"`
	ProcessingTimeMS  Stat                           `json:"processing_time_ms"`
	ExactMatchRate    float64                        `json:"exact_match_rate"`
	ErrorCategoryCounts map[string]int               `json:"error_category_counts"`
	LengthBuckets     map[string]Stat                `json:"length_buckets"`
	ConfidenceBuckets map[string]Stat                `json:"confidence_buckets"`
}

var percentileSet = []int{25, 50, 75, 90, 95}

func computeStat(values []float64) Stat {
	if len(values) == 0 {
		return Stat{Percentiles: map[int]float64{}}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	percentiles := make(map[int]float64, len(percentileSet))
	for _, p := range percentileSet {
		percentiles[p] = percentile(sorted, p)
	}

	return Stat{Mean: mean, Median: percentiles[50], Percentiles: percentiles}
}

// percentile computes the p-th percentile of an already-sorted slice using
// linear interpolation between closest ranks over rank p/100*(n-1) (the
// common "inclusive" percentile method used by most stats libraries).
func percentile(sorted []float64, p int) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := float64(p) / 100 * float64(len(sorted)-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func aggregateResults(items []ItemResult) Aggregate {
	cer := make([]float64, len(items))
	wer := make([]float64, len(items))
	sim := make([]float64, len(items))
	procTime := make([]float64, len(items))
	categoryCounts := map[string]int{}
	exactCount := 0

	lengthBuckets := map[string][]float64{}
	confidenceBuckets := map[string][]float64{}

	for i, it := range items {
		cer[i] = it.CER
		wer[i] = it.WER
		sim[i] = it.Similarity
		procTime[i] = it.ProcessingTimeMS
		categoryCounts[string(it.ErrorCategory)]++
		if it.ExactMatch {
			exactCount++
		}
		lb := lengthBucket(len([]rune(it.GroundTruth)))
		lengthBuckets[lb] = append(lengthBuckets[lb], it.CER)
		cb := confidenceBucket(it.Confidence)
		confidenceBuckets[cb] = append(confidenceBuckets[cb], it.CER)
	}

	lengthStats := make(map[string]Stat, len(lengthBuckets))
	for k, v := range lengthBuckets {
		lengthStats[k] = computeStat(v)
	}
	confStats := make(map[string]Stat, len(confidenceBuckets))
	for k, v := range confidenceBuckets {
		confStats[k] = computeStat(v)
	}

	var exactRate float64
	if len(items) > 0 {
		exactRate = float64(exactCount) / float64(len(items))
	}

	return Aggregate{
		CER:                 computeStat(cer),
		WER:                 computeStat(wer),
		Similarity:          computeStat(sim),
		ProcessingTimeMS:    computeStat(procTime),
		ExactMatchRate:      exactRate,
		ErrorCategoryCounts: categoryCounts,
		LengthBuckets:       lengthStats,
		ConfidenceBuckets:   confStats,
	}
}

func lengthBucket(n int) string {
	switch {
	case n <= 5:
		return "0-5"
	case n <= 10:
		return "6-10"
	case n <= 20:
		return "11-20"
	default:
		return "21+"
	}
}

func confidenceBucket(c float64) string {
	switch {
	case c < 0.25:
		return "0.0-0.25"
	case c < 0.5:
		return "0.25-0.5"
	case c < 0.75:
		return "0.5-0.75"
	default:
		return "0.75-1.0"
	}
}
