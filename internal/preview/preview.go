package preview

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
	wordRe     = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// Excerpter builds short previews of extracted document text for lists.
type Excerpter struct {
	MaxSentences int
	MaxRunes     int
	stopwords    map[string]struct{}
}

func NewExcerpter(maxSentences, maxRunes int) *Excerpter {
	if maxSentences <= 0 {
		maxSentences = 1
	}
	if maxRunes <= 0 {
		maxRunes = 120
	}
	return &Excerpter{MaxSentences: maxSentences, MaxRunes: maxRunes, stopwords: stopwords()}
}

// Excerpt returns the most representative sentences of text, in their
// original order, flattened to one line and cut to MaxRunes.
func (e *Excerpter) Excerpt(text string) string {
	flat := strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
	if flat == "" {
		return ""
	}
	sentences := sentenceRe.FindAllString(flat, -1)
	if len(sentences) <= e.MaxSentences {
		return clip(flat, e.MaxRunes)
	}

	freq := map[string]float64{}
	for _, s := range sentences {
		for _, w := range e.words(s) {
			freq[w]++
		}
	}
	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(sentences))
	for i, s := range sentences {
		words := e.words(s)
		total := 0.0
		for _, w := range words {
			total += freq[w]
		}
		if len(words) > 0 {
			total /= math.Sqrt(float64(len(words)))
		}
		ranked[i] = scored{i, total}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	picked := make([]int, e.MaxSentences)
	for i := range picked {
		picked[i] = ranked[i].idx
	}
	sort.Ints(picked)
	parts := make([]string, len(picked))
	for i, idx := range picked {
		parts[i] = strings.TrimSpace(sentences[idx])
	}
	return clip(strings.Join(parts, " "), e.MaxRunes)
}

func (e *Excerpter) words(s string) []string {
	all := wordRe.FindAllString(strings.ToLower(s), -1)
	out := all[:0]
	for _, w := range all {
		if _, stop := e.stopwords[w]; !stop {
			out = append(out, w)
		}
	}
	return out
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}

func stopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "it", "this", "that", "these", "those", "from", "so", "into", "about", "can", "will", "not", "no",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
