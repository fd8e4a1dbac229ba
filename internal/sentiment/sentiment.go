package sentiment

import (
	"log/slog"
	"math"
	"strings"

	"github.com/jonreiter/govader"

	"ReviewPipeline/internal/domain"
)

// strippedRunes is the fixed punctuation, symbol, and digit set removed
// from review text before scoring.
const strippedRunes = "/.,@£#+=_-)(*^%$~`'\"<>1023456789;:|{}[]"

// Scorer attaches a bounded sentiment value to each review using a
// lexicon compound scorer.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
	logger   *slog.Logger
}

// NewScorer builds a scorer with the default lexicon.
func NewScorer(logger *slog.Logger) *Scorer {
	return &Scorer{analyzer: govader.NewSentimentIntensityAnalyzer(), logger: logger}
}

// Score computes a sentiment value in [0, 5] for every review. The
// cleaning step only affects the scoring input; the stored text is
// untouched. No row is dropped at this stage.
func (s *Scorer) Score(reviews []domain.Review) []domain.ScoredReview {
	scored := make([]domain.ScoredReview, 0, len(reviews))
	for _, review := range reviews {
		raw := s.analyzer.PolarityScores(Clean(review.Text)).Compound
		scored = append(scored, domain.ScoredReview{
			Review:    review,
			Sentiment: Rescale(raw),
		})
	}

	if s.logger != nil {
		s.logger.Debug("sentiment scored", "reviews", len(scored))
	}
	return scored
}

// Clean strips punctuation and English stop words from review text,
// case-insensitively, producing the reduced token string fed to the
// lexicon scorer.
func Clean(text string) string {
	return clean(text, englishStopWords, strippedRunes)
}

func clean(text string, stopWords map[string]struct{}, stripped string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(stripped, r) {
			continue
		}
		b.WriteRune(r)
	}

	words := strings.Split(strings.ReplaceAll(b.String(), "\n", " "), " ")
	kept := make([]string, 0, len(words))
	for _, word := range words {
		if word == "" {
			continue
		}
		if _, stop := stopWords[strings.ToLower(word)]; stop {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

// Rescale maps a raw compound value in [-1, 1] onto [0, 5] with one
// decimal, rounding halves to even. Downstream aggregation depends on
// this exact mapping.
func Rescale(raw float64) float64 {
	return round1((raw + 1) / 2 * 5)
}

func round1(v float64) float64 {
	scaled := v * 10
	floor := math.Floor(scaled)
	switch diff := scaled - floor; {
	case diff > 0.5:
		floor++
	case diff == 0.5 && math.Mod(floor, 2) != 0:
		floor++
	}
	return floor / 10
}
