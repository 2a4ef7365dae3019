package rag

import (
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"github.com/SamOhrenberg/AboutSamuel/internal/config"
)

const (
	KindInformation    = "information"
	KindProject        = "project"
	KindWorkExperience = "work_experience"
)

// Candidate is anything that can be injected into the answer prompt.
type Candidate struct {
	ID       string
	Kind     string
	Text     string
	Keywords []string
}

type ScoredCandidate struct {
	Candidate
	Matches int
	Score   float64
}

type Options struct {
	SmallPoolThreshold int
	TopN               int
	MatchWeight        float64
	MaxJitter          float64
	FuzzyThreshold     int
	MinFuzzyLength     int
}

func DefaultOptions() Options {
	return Options{
		SmallPoolThreshold: 3,
		TopN:               5,
		MatchWeight:        60,
		MaxJitter:          10,
		FuzzyThreshold:     30,
		MinFuzzyLength:     4,
	}
}

// Selection is the outcome of one retrieval. Context is empty only when no
// candidate carried any text.
type Selection struct {
	Candidates []ScoredCandidate
	Context    string
	// Scored is false when the pool was small enough to be returned whole.
	Scored bool
	// Fallback is true when no candidate matched and the jitter order was used.
	Fallback bool
}

func (s Selection) Empty() bool {
	return strings.TrimSpace(s.Context) == ""
}

type Retriever struct {
	opts Options

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRetriever builds a retriever. A nil src uses a randomly seeded source.
func NewRetriever(opts Options, src rand.Source) *Retriever {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Retriever{opts: opts, rnd: rand.New(src)}
}

func (r *Retriever) Select(candidates []Candidate, queryTokens []string) Selection {
	pool := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		c.Keywords = NormalizeKeywords(c.Keywords)
		pool = append(pool, c)
	}
	if len(pool) == 0 {
		return Selection{}
	}

	if len(pool) <= r.opts.SmallPoolThreshold {
		out := make([]ScoredCandidate, len(pool))
		for i, c := range pool {
			out[i] = ScoredCandidate{Candidate: c}
		}
		return Selection{Candidates: out, Context: joinContext(out)}
	}

	query := NormalizeKeywords(queryTokens)
	scored := make([]ScoredCandidate, len(pool))
	for i, c := range pool {
		matches := r.countMatches(c.Keywords, query)
		score := r.jitter()
		if len(c.Keywords) > 0 {
			score += float64(matches) / float64(len(c.Keywords)) * r.opts.MatchWeight
		}
		scored[i] = ScoredCandidate{Candidate: c, Matches: matches, Score: score}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	matched := make([]ScoredCandidate, 0, len(scored))
	for _, s := range scored {
		if s.Matches > 0 {
			matched = append(matched, s)
		}
	}

	sel := Selection{Scored: true}
	if len(matched) > 0 {
		sel.Candidates = truncate(matched, r.opts.TopN)
	} else {
		sel.Fallback = true
		sel.Candidates = truncate(scored, r.opts.TopN)
	}
	sel.Context = joinContext(sel.Candidates)
	return sel
}

// countMatches counts the candidate keywords that equal, or fuzzily resemble,
// at least one query token.
func (r *Retriever) countMatches(keywords, query []string) int {
	matches := 0
	for _, kw := range keywords {
		for _, q := range query {
			if r.tokensMatch(kw, q) {
				matches++
				break
			}
		}
	}
	return matches
}

func (r *Retriever) tokensMatch(keyword, token string) bool {
	if keyword == token {
		return true
	}
	if len([]rune(keyword)) < r.opts.MinFuzzyLength || len([]rune(token)) < r.opts.MinFuzzyLength {
		return false
	}
	return LevenshteinDifference(keyword, token) <= r.opts.FuzzyThreshold
}

func (r *Retriever) jitter() float64 {
	if r.opts.MaxJitter <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64() * r.opts.MaxJitter
}

func truncate(in []ScoredCandidate, n int) []ScoredCandidate {
	if n > 0 && len(in) > n {
		return in[:n]
	}
	return in
}

func joinContext(cands []ScoredCandidate) string {
	texts := make([]string, 0, len(cands))
	for _, c := range cands {
		texts = append(texts, strings.TrimSpace(c.Text))
	}
	return strings.Join(texts, "\n\n")
}

func OptionsFromConfig(cfg config.ChatConfig) Options {
	return Options{
		SmallPoolThreshold: cfg.SmallPoolThreshold,
		TopN:               cfg.TopN,
		MatchWeight:        float64(cfg.MatchWeight),
		MaxJitter:          float64(cfg.MaxJitter),
		FuzzyThreshold:     cfg.FuzzyThreshold,
		MinFuzzyLength:     cfg.MinFuzzyLength,
	}
}
