package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStatEmptyReturnsZeroValues(t *testing.T) {
	s := computeStat(nil)
	assert.Equal(t, 0.0, s.Mean)
	assert.Empty(t, s.Percentiles)
}

func TestComputeStatSingleValue(t *testing.T) {
	s := computeStat([]float64{5})
	assert.Equal(t, 5.0, s.Mean)
	assert.Equal(t, 5.0, s.Median)
	for _, p := range percentileSet {
		assert.Equal(t, 5.0, s.Percentiles[p])
	}
}

func TestComputeStatMeanAndMedian(t *testing.T) {
	s := computeStat([]float64{1, 2, 3, 4})
	assert.Equal(t, 2.5, s.Mean)
	assert.InDelta(t, 2.5, s.Median, 1e-9)
}

func TestPercentileInterpolates(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}
	assert.InDelta(t, 10.0, percentile(sorted, 0), 1e-9)
	assert.InDelta(t, 40.0, percentile(sorted, 100), 1e-9)
}

func TestLengthBucketBoundaries(t *testing.T) {
	assert.Equal(t, "0-5", lengthBucket(5))
	assert.Equal(t, "6-10", lengthBucket(6))
	assert.Equal(t, "11-20", lengthBucket(20))
	assert.Equal(t, "21+", lengthBucket(21))
}

func TestConfidenceBucketBoundaries(t *testing.T) {
	assert.Equal(t, "0.0-0.25", confidenceBucket(0))
	assert.Equal(t, "0.25-0.5", confidenceBucket(0.25))
	assert.Equal(t, "0.5-0.75", confidenceBucket(0.5))
	assert.Equal(t, "0.75-1.0", confidenceBucket(0.99))
}

func TestAggregateResultsComputesExactMatchRate(t *testing.T) {
	items := []ItemResult{
		{ExactMatch: true, CER: 0, GroundTruth: "ab", Confidence: 0.9},
		{ExactMatch: false, CER: 1, GroundTruth: "abcdef", Confidence: 0.1},
	}
	agg := aggregateResults(items)
	assert.Equal(t, 0.5, agg.ExactMatchRate)
	assert.Contains(t, agg.LengthBuckets, "0-5")
	assert.Contains(t, agg.LengthBuckets, "6-10")
}
