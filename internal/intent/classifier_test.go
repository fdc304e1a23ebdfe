package intent

import (
	"testing"

	"districtlens/internal/registry"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	reg, err := registry.Default()
	if err != nil {
		t.Fatalf("registry.Default failed: %v", err)
	}
	return NewClassifier(reg)
}

func TestClassifyKnownQuestions(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		expect registry.Intent
	}{
		{
			name:   "top usage question",
			query:  "Show me top 5 most used software",
			expect: registry.IntentUsageRankings,
		},
		{
			name:   "unauthorized software question",
			query:  "unauthorized software usage",
			expect: registry.IntentUnauthorizedSoftware,
		},
		{
			name:   "roi question",
			query:  "what is the return on investment of our software",
			expect: registry.IntentSoftwareROI,
		},
		{
			name:   "investment question",
			query:  "how much budget did we spend on licenses",
			expect: registry.IntentSoftwareInvestment,
		},
		{
			name:   "student question",
			query:  "how are students doing with the reading platform",
			expect: registry.IntentStudentAnalysis,
		},
		{
			name:   "dashboard question",
			query:  "give me an executive summary dashboard",
			expect: registry.IntentDashboardOverview,
		},
		{
			name:   "cost per student phrase",
			query:  "which apps have the worst cost per student",
			expect: registry.IntentCostAnalysis,
		},
	}

	c := newTestClassifier(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := c.Classify(tt.query)
			if len(scores) == 0 {
				t.Fatalf("no intents matched %q", tt.query)
			}
			found := false
			for _, s := range scores {
				if s.Intent == tt.expect {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("query %q: expected intent %q among results, got %v", tt.query, tt.expect, scores)
			}
		})
	}
}

func TestClassifyGibberishReturnsEmpty(t *testing.T) {
	c := newTestClassifier(t)
	if scores := c.Classify("gibberish xyz123"); len(scores) != 0 {
		t.Errorf("expected empty ranking for gibberish, got %v", scores)
	}
	if scores := c.Classify("   !!! ???"); len(scores) != 0 {
		t.Errorf("expected empty ranking for punctuation-only input, got %v", scores)
	}
}

func TestClassifyCaseAndPunctuationInsensitive(t *testing.T) {
	c := newTestClassifier(t)
	a := c.Classify("UNAUTHORIZED software!!!")
	b := c.Classify("unauthorized software")
	if len(a) == 0 || len(b) == 0 {
		t.Fatal("expected matches for both variants")
	}
	if a[0].Intent != b[0].Intent || a[0].Points != b[0].Points {
		t.Errorf("case/punctuation changed the result: %v vs %v", a[0], b[0])
	}
}

func TestPhraseOutweighsWord(t *testing.T) {
	c := newTestClassifier(t)
	scores := c.Classify("return on investment")
	if len(scores) == 0 {
		t.Fatal("expected a match")
	}
	if scores[0].Intent != registry.IntentSoftwareROI {
		t.Errorf("expected %q first, got %q", registry.IntentSoftwareROI, scores[0].Intent)
	}
}

// Adding an exact phrase for an intent must never lower that intent's score.
func TestClassifierMonotonicity(t *testing.T) {
	c := newTestClassifier(t)
	base := "how are the schools doing"
	queries := []struct {
		phrase string
		intent registry.Intent
	}{
		{"return on investment", registry.IntentSoftwareROI},
		{"cost per student", registry.IntentCostAnalysis},
		{"shadow it", registry.IntentUnauthorizedSoftware},
		{"active users", registry.IntentUserAnalytics},
	}

	score := func(scores []Score, in registry.Intent) int {
		for _, s := range scores {
			if s.Intent == in {
				return s.Points
			}
		}
		return 0
	}

	for _, q := range queries {
		before := score(c.Classify(base), q.intent)
		after := score(c.Classify(base+" "+q.phrase), q.intent)
		if after < before {
			t.Errorf("adding phrase %q decreased %q score from %d to %d", q.phrase, q.intent, before, after)
		}
		if after <= before {
			t.Errorf("adding phrase %q did not increase %q score (%d -> %d)", q.phrase, q.intent, before, after)
		}
	}
}

func TestMultipleUnrelatedIntentsAllReturned(t *testing.T) {
	c := newTestClassifier(t)
	scores := c.Classify("roi of unauthorized software")
	var sawROI, sawUnauthorized bool
	for _, s := range scores {
		switch s.Intent {
		case registry.IntentSoftwareROI:
			sawROI = true
		case registry.IntentUnauthorizedSoftware:
			sawUnauthorized = true
		}
	}
	if !sawROI || !sawUnauthorized {
		t.Errorf("expected both roi and unauthorized intents, got %v", scores)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Show me TOP 5!", "show me top 5"},
		{"k-5 students", "k-5 students"},
		{"  spaced   out  ", "spaced out"},
		{"cost/benefit?", "cost benefit"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
