package registry

// Intent is a category of analytic question the system knows how to answer.
type Intent string

const (
	IntentDashboardOverview    Intent = "dashboard_overview"
	IntentSoftwareUsage        Intent = "software_usage"
	IntentSoftwareROI          Intent = "software_roi"
	IntentSoftwareInvestment   Intent = "software_investment"
	IntentUserAnalytics        Intent = "user_analytics"
	IntentStudentAnalysis      Intent = "student_analysis"
	IntentTeacherAnalysis      Intent = "teacher_analysis"
	IntentUnauthorizedSoftware Intent = "unauthorized_software"
	IntentSchoolAnalysis       Intent = "school_analysis"
	IntentGradeAnalysis        Intent = "grade_analysis"
	IntentUsageTrends          Intent = "usage_trends"
	IntentUsageRankings        Intent = "usage_rankings"
	IntentReportGeneration     Intent = "report_generation"
	IntentActiveUsers          Intent = "active_users"
	IntentCostAnalysis         Intent = "cost_analysis"
	IntentUtilizationAnalysis  Intent = "utilization_analysis"
)

// TenantColumn is the filter dimension every district-scoped view must declare.
const TenantColumn = "district_id"

// IntentPatterns maps each intent to the keyword and phrase patterns that
// signal it. Patterns containing a space are matched as whole phrases and
// weighted higher during classification.
type IntentPatterns map[Intent][]string

// ViewDescriptor describes one materialized view: what questions it answers,
// which columns it exposes, and which filter dimensions it supports.
// Descriptors are immutable once the registry is built.
type ViewDescriptor struct {
	Name               string   `json:"name" yaml:"name"`
	Description        string   `json:"description" yaml:"description"`
	PrimaryIntents     []Intent `json:"primary_intents" yaml:"primary_intents"`
	KeyColumns         []string `json:"key_columns" yaml:"key_columns"`
	AggregationColumns []string `json:"aggregation_columns" yaml:"aggregation_columns"`
	AvailableFilters   []string `json:"available_filters" yaml:"available_filters"`
	// Global marks views that carry no district_id dimension. They hold
	// cross-district aggregates and are only selectable under elevated access.
	Global   bool `json:"global,omitempty" yaml:"global,omitempty"`
	Priority int  `json:"priority" yaml:"priority"`
}

// HasFilter reports whether the view supports filtering on the given column.
func (d *ViewDescriptor) HasFilter(column string) bool {
	for _, f := range d.AvailableFilters {
		if f == column {
			return true
		}
	}
	return false
}

// HasColumn reports whether the view exposes the given output column.
func (d *ViewDescriptor) HasColumn(column string) bool {
	for _, c := range d.KeyColumns {
		if c == column {
			return true
		}
	}
	return false
}

// AnswersIntent reports whether the view is declared for the given intent.
func (d *ViewDescriptor) AnswersIntent(in Intent) bool {
	for _, i := range d.PrimaryIntents {
		if i == in {
			return true
		}
	}
	return false
}

// specificity ranks views on a priority tie: views exposing more columns and
// filter dimensions answer a wider range of follow-up shapes.
func (d *ViewDescriptor) specificity() int {
	return len(d.KeyColumns) + len(d.AvailableFilters)
}
