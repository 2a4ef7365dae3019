package rag

import (
	"sort"
	"strings"
	"unicode"
)

// Technology names that would otherwise lose their punctuation, e.g. "c#" -> "c".
var technologyNames = []string{
	"c#",
	".net",
	"asp.net",
	"vue.js",
	"react.js",
	"angular.js",
	"node.js",
	"backbone.js",
	"ember.js",
	"gitlab ci",
	"github actions",
	"bitbucket pipelines",
}

var stopWords = toSet([]string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "your", "yours", "yourself", "yourselves",
	"he", "him", "his", "himself", "she", "her", "hers", "herself", "it", "its", "itself", "they", "them", "their",
	"theirs", "themselves", "what", "which", "who", "whom", "this", "that", "these", "those", "am", "is", "are", "was",
	"were", "be", "been", "being", "have", "has", "had", "having", "do", "does", "did", "doing", "a", "an", "the",
	"and", "but", "if", "or", "because", "as", "until", "while", "of", "at", "by", "for", "with", "about", "against",
	"between", "into", "through", "during", "before", "after", "above", "below", "to", "from", "up", "down", "in", "out",
	"on", "off", "over", "under", "again", "further", "then", "once", "here", "there", "when", "where", "why", "how",
	"all", "any", "both", "each", "few", "more", "most", "other", "some", "such", "no", "nor", "not", "only", "own",
	"same", "so", "than", "too", "very", "s", "t", "can", "will", "just", "don", "should", "now",
})

type placeholder struct {
	name  string
	token string
}

// placeholders are ordered longest name first so "asp.net" wins over ".net".
var placeholders = func() []placeholder {
	out := make([]placeholder, 0, len(technologyNames))
	for _, name := range technologyNames {
		var b strings.Builder
		b.WriteString("TECH")
		for _, r := range strings.ToUpper(name) {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			} else if r == '#' {
				b.WriteString("SHARP")
			} else if r == '.' {
				b.WriteString("DOT")
			}
		}
		out = append(out, placeholder{name: name, token: b.String()})
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i].name) > len(out[j].name) })
	return out
}()

// Tokenize lower-cases text, strips punctuation, drops stop words and returns
// the distinct remaining tokens in order of first appearance. Known technology
// names such as "c#" and "asp.net" survive intact.
func Tokenize(text string) []string {
	s := strings.ToLower(text)
	for _, p := range placeholders {
		s = strings.ReplaceAll(s, p.name, " "+p.token+" ")
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}

	fields := strings.Fields(b.String())
	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = restorePlaceholder(f)
		if _, stop := stopWords[f]; stop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

// NormalizeKeywords lower-cases, trims and de-duplicates a keyword set.
func NormalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

func restorePlaceholder(tok string) string {
	for _, p := range placeholders {
		if tok == p.token {
			return p.name
		}
	}
	return tok
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
