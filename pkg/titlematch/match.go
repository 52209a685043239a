package titlematch

import (
	"regexp"

	"github.com/hbollon/go-edlib"
)

var digits = regexp.MustCompile(`\b(\d+)\b`)

// Confidence buckets a similarity score.
type Confidence int

const (
	None   Confidence = iota // < 0.70
	Low                      // >= 0.70
	Medium                   // >= 0.85
	High                     // >= 0.95
)

func (c Confidence) String() string {
	switch c {
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	default:
		return "none"
	}
}

// Result is the best candidate for a title. Index is -1 when nothing scored
// at least Low.
type Result struct {
	Index      int
	Title      string
	Score      float64
	Confidence Confidence
}

// Best picks the candidate most similar to title using Jaro-Winkler on cleaned
// titles, nudged up when sequence numbers agree and down when they differ.
func Best(title string, candidates []string) Result {
	best := Result{Index: -1}
	if len(candidates) == 0 {
		return best
	}

	want := Clean(title)
	wantNums := digits.FindAllString(want, -1)

	for i, c := range candidates {
		got := Clean(c)
		score := float64(edlib.JaroWinklerSimilarity(want, got))
		score = adjustForNumbers(score, wantNums, digits.FindAllString(got, -1))
		if score > best.Score {
			best = Result{Index: i, Title: c, Score: score}
		}
	}

	switch {
	case best.Score >= 0.95:
		best.Confidence = High
	case best.Score >= 0.85:
		best.Confidence = Medium
	case best.Score >= 0.70:
		best.Confidence = Low
	default:
		return Result{Index: -1, Score: best.Score}
	}
	return best
}

// Score returns the adjusted similarity of two titles in [0, 1].
func Score(a, b string) float64 {
	ca, cb := Clean(a), Clean(b)
	s := float64(edlib.JaroWinklerSimilarity(ca, cb))
	return adjustForNumbers(s, digits.FindAllString(ca, -1), digits.FindAllString(cb, -1))
}

func adjustForNumbers(score float64, want, got []string) float64 {
	if len(want) == 0 {
		return score
	}
	if len(got) == 0 {
		return score * 0.85
	}
	seen := make(map[string]struct{}, len(got))
	for _, n := range got {
		seen[n] = struct{}{}
	}
	for _, n := range want {
		if _, ok := seen[n]; ok {
			return min(score*1.05, 1.0)
		}
	}
	return score * 0.90
}
