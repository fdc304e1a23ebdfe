package registry

import (
	"errors"
	"testing"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatalf("Default() failed: %v", err)
	}
	if got := len(r.Views()); got != 16 {
		t.Errorf("expected 16 views in the default catalog, got %d", got)
	}
}

func TestEveryIntentHasAView(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatalf("Default() failed: %v", err)
	}
	for _, in := range r.Intents() {
		if len(r.Lookup(in)) == 0 {
			t.Errorf("intent %q has no views", in)
		}
	}
}

func TestDistrictScopedViewsDeclareTenantFilter(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatalf("Default() failed: %v", err)
	}
	for _, v := range r.Views() {
		if v.Global {
			if v.HasFilter(TenantColumn) {
				t.Errorf("global view %q declares a %s filter", v.Name, TenantColumn)
			}
			continue
		}
		if !v.HasFilter(TenantColumn) {
			t.Errorf("view %q lacks a %s filter", v.Name, TenantColumn)
		}
	}
}

func TestLookupOrdersByPriorityThenSpecificity(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatalf("Default() failed: %v", err)
	}
	for _, in := range r.Intents() {
		candidates := r.Lookup(in)
		for i := 1; i < len(candidates); i++ {
			prev, cur := candidates[i-1], candidates[i]
			if prev.Priority > cur.Priority {
				t.Errorf("intent %q: %q (priority %d) ranked before %q (priority %d)",
					in, prev.Name, prev.Priority, cur.Name, cur.Priority)
			}
			if prev.Priority == cur.Priority && prev.specificity() < cur.specificity() {
				t.Errorf("intent %q: less specific view %q ranked before %q on a priority tie",
					in, prev.Name, cur.Name)
			}
		}
	}
}

func TestDescribeUnknownView(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatalf("Default() failed: %v", err)
	}
	if _, err := r.Describe("mv_does_not_exist"); !errors.Is(err, ErrViewNotFound) {
		t.Errorf("expected ErrViewNotFound, got %v", err)
	}
	v, err := r.Describe("mv_software_usage_analytics_v4")
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if !v.AnswersIntent(IntentSoftwareUsage) {
		t.Errorf("expected %q to answer %q", v.Name, IntentSoftwareUsage)
	}
}

func TestNewRejectsOrphanIntent(t *testing.T) {
	views := []*ViewDescriptor{{
		Name:             "mv_something",
		PrimaryIntents:   []Intent{IntentSoftwareUsage},
		AvailableFilters: []string{TenantColumn},
		Priority:         1,
	}}
	patterns := IntentPatterns{
		IntentSoftwareUsage: {"usage"},
		IntentSoftwareROI:   {"roi"},
	}
	if _, err := New(views, patterns); err == nil {
		t.Fatal("expected error for orphan intent, got nil")
	}
}

func TestNewRejectsScopedViewWithoutTenantFilter(t *testing.T) {
	views := []*ViewDescriptor{{
		Name:             "mv_bad",
		PrimaryIntents:   []Intent{IntentSoftwareUsage},
		AvailableFilters: []string{"category"},
		Priority:         1,
	}}
	patterns := IntentPatterns{IntentSoftwareUsage: {"usage"}}
	if _, err := New(views, patterns); err == nil {
		t.Fatal("expected error for missing district_id filter, got nil")
	}
}
