// Package ctcdecode wraps the teacher's internal/recognizer CTC decoding
// machinery (greedy decode, collapse, confidence) behind a small
// logits-and-charset -> (text, confidence) API shared by the easyocr and
// paddleocr adapters, both of which are CRNN-style CTC recognizers.
package ctcdecode

import (
	"strings"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/recognizer"
)

// Decode runs greedy CTC decoding over logits (shape [N,T,C] or [N,C,T])
// for the first batch item and renders it through charset, returning the
// decoded text and its mean per-character confidence.
func Decode(logits []float32, shape []int64, charset *recognizer.Charset, blank int, classesFirst bool) (string, float64) {
	decoded := recognizer.DecodeCTCGreedy(logits, shape, blank, classesFirst)
	if len(decoded) == 0 {
		return "", 0
	}
	seq := decoded[0]
	var sb strings.Builder
	for _, idx := range seq.Collapsed {
		sb.WriteString(charset.LookupToken(idx))
	}
	return sb.String(), recognizer.SequenceConfidence(seq.CollapsedProb)
}
