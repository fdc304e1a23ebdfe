// Package intent provides lightweight lexical intent classification for
// analytics questions. It scores free text against the registry's keyword
// tables without calling external NLP services, so classification is cheap
// enough to run on every request.
package intent

import (
	"sort"
	"strings"

	"districtlens/internal/registry"
)

const (
	phraseWeight = 2
	wordWeight   = 1
)

// Score is one ranked classification outcome.
type Score struct {
	Intent registry.Intent
	Points int
}

// Classifier scores query text against the registry's intent patterns.
// It is stateless apart from the registry handle and safe for concurrent use.
type Classifier struct {
	reg *registry.Registry
}

func NewClassifier(reg *registry.Registry) *Classifier {
	return &Classifier{reg: reg}
}

// Classify returns the intents matching the query, ranked by score
// descending. Multi-word phrase matches count double so that common single
// words ("cost", "active") do not drown out precise phrases ("cost per
// student"). An empty result means no intent matched; that is the normal
// unknown-question case, not an error.
func (c *Classifier) Classify(query string) []Score {
	normalized := Normalize(query)
	if normalized == "" {
		return nil
	}

	// Pad so phrase containment can only match on word boundaries.
	padded := " " + normalized + " "
	words := make(map[string]bool)
	for _, w := range strings.Fields(normalized) {
		words[w] = true
	}

	var scores []Score
	for _, in := range c.reg.Intents() {
		points := 0
		for _, pattern := range c.reg.Patterns(in) {
			if strings.ContainsRune(pattern, ' ') {
				if strings.Contains(padded, " "+pattern+" ") {
					points += phraseWeight
				}
			} else if words[pattern] {
				points += wordWeight
			}
		}
		if points > 0 {
			scores = append(scores, Score{Intent: in, Points: points})
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Points != scores[j].Points {
			return scores[i].Points > scores[j].Points
		}
		// Tie: prefer the intent whose best view ranks higher in the
		// registry; lower priority number wins.
		pi, pj := c.bestViewPriority(scores[i].Intent), c.bestViewPriority(scores[j].Intent)
		if pi != pj {
			return pi < pj
		}
		return scores[i].Intent < scores[j].Intent
	})

	return scores
}

func (c *Classifier) bestViewPriority(in registry.Intent) int {
	if v, ok := c.reg.BestView(in); ok {
		return v.Priority
	}
	return int(^uint(0) >> 1)
}

// Normalize lowercases the query and strips punctuation, keeping hyphens so
// grade-band patterns like "k-5" and "9-12" survive.
func Normalize(query string) string {
	var b strings.Builder
	b.Grow(len(query))
	for _, r := range strings.ToLower(query) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
