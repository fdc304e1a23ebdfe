package registry

// defaultViews is the fixed catalog of materialized views the analytics
// store maintains. The SQL bodies live with the database migrations; the
// descriptors here only record what each view answers and how it may be
// filtered. Views without a district_id dimension are marked Global and
// serve cross-district analysis only.
var defaultViews = []*ViewDescriptor{
	{
		Name:        "mv_dashboard_software_metrics",
		Description: "Pre-computed dashboard metrics for authorized, district-purchased software including ROI, costs, and usage statistics",
		PrimaryIntents: []Intent{
			IntentDashboardOverview, IntentSoftwareUsage, IntentSoftwareROI, IntentCostAnalysis,
		},
		KeyColumns: []string{
			"software_id", "name", "district_id", "school_name", "category",
			"funding_source", "total_cost", "user_type", "authorized",
			"district_purchased", "students_licensed", "purchase_date",
			"grade_range", "roi_percentage", "cost_per_student",
			"active_users_30d", "active_users_all_time", "total_minutes_90d",
			"last_usage_date", "utilization", "roi_status",
		},
		AggregationColumns: []string{"active_users_30d", "active_users_all_time", "total_minutes_90d", "utilization", "roi_percentage"},
		AvailableFilters:   []string{"district_id", "school_name", "category", "roi_status", "authorized"},
		Priority:           1,
	},
	{
		Name:        "mv_dashboard_user_analytics",
		Description: "User analytics grouped by district, school, role, and grade with usage aggregations",
		PrimaryIntents: []Intent{
			IntentUserAnalytics, IntentStudentAnalysis, IntentTeacherAnalysis, IntentActiveUsers,
		},
		KeyColumns: []string{
			"row_id", "district_id", "school_id", "school_name", "user_type",
			"grade", "total_users", "active_users_30d", "active_users_all_time",
			"total_usage_minutes_90d",
		},
		AggregationColumns: []string{"total_users", "active_users_30d", "active_users_all_time", "total_usage_minutes_90d"},
		AvailableFilters:   []string{"district_id", "school_id", "user_type", "grade"},
		Priority:           1,
	},
	{
		Name:        "mv_software_usage_analytics_v4",
		Description: "Most comprehensive software analytics view with ROI calculations, usage ratios, engagement rates, and compliance metrics grouped by software name and district",
		PrimaryIntents: []Intent{
			IntentSoftwareUsage, IntentSoftwareROI, IntentUtilizationAnalysis, IntentDashboardOverview,
		},
		KeyColumns: []string{
			"name", "district_id", "primary_category", "category_type",
			"school_names", "user_types", "grades", "grade_ranges",
			"funding_sources", "total_cost", "students_licensed", "authorized",
			"district_purchased", "total_minutes", "active_users", "usage_days",
			"first_use_date", "last_use_date", "active_students",
			"active_teachers", "expected_daily_minutes", "cost_per_student",
			"expected_minutes_to_date", "usage_ratio", "avg_minutes_per_day",
			"avg_roi_percentage", "roi_status", "engagement_rate",
			"usage_compliance", "avg_usage_compliance",
		},
		AggregationColumns: []string{
			"total_minutes", "active_users", "active_students", "active_teachers",
			"usage_ratio", "avg_roi_percentage", "engagement_rate", "usage_compliance",
		},
		AvailableFilters: []string{"district_id", "authorized", "district_purchased", "roi_status", "category_type"},
		Priority:         1,
	},
	{
		Name:           "mv_unauthorized_software_analytics_v3",
		Description:    "Analytics for unauthorized software including usage metrics, user counts by type, and last usage tracking",
		PrimaryIntents: []Intent{IntentUnauthorizedSoftware},
		KeyColumns: []string{
			"id", "name", "category", "url", "district_id", "school_name",
			"user_type", "district_name", "total_usage_minutes", "unique_users",
			"student_users", "teacher_users", "usage_count", "last_used_date",
			"avg_minutes_per_user", "refreshed_at",
		},
		AggregationColumns: []string{"total_usage_minutes", "unique_users", "student_users", "teacher_users", "usage_count"},
		AvailableFilters:   []string{"district_id", "category", "school_name"},
		Priority:           1,
	},
	{
		Name:        "mv_unauthorized_usage_dashboard",
		Description: "Dashboard-optimized view for unauthorized software with in-school vs out-of-school usage breakdown over a 90-day window",
		PrimaryIntents: []Intent{
			IntentUnauthorizedSoftware, IntentDashboardOverview,
		},
		KeyColumns: []string{
			"software_id", "software_name", "category", "url", "district_id",
			"district_name", "user_type", "total_minutes", "in_school_minutes",
			"out_of_school_minutes", "active_users", "usage_count",
			"last_used_date", "school_name", "in_school_percentage",
			"out_of_school_percentage", "refreshed_at",
		},
		AggregationColumns: []string{"total_minutes", "in_school_minutes", "out_of_school_minutes", "active_users"},
		AvailableFilters:   []string{"district_id", "category", "school_name"},
		Priority:           2,
	},
	{
		Name:        "mv_software_investment_summary",
		Description: "Software investment analysis with ROI metrics, utilization rates, and cost-per-student calculations",
		PrimaryIntents: []Intent{
			IntentSoftwareInvestment, IntentCostAnalysis, IntentSoftwareROI,
		},
		KeyColumns: []string{
			"software_id", "software_name", "display_name", "district_id",
			"school_name", "category", "funding_source", "grade_ranges",
			"user_type", "latest_purchase_date", "last_usage_date",
			"total_investment", "total_licensed_users", "active_users",
			"avg_utilization", "total_minutes", "avg_cost_per_student",
			"avg_roi_percentage", "roi_status", "roi_status_priority",
			"authorized", "district_purchased",
		},
		AggregationColumns: []string{"total_investment", "total_licensed_users", "active_users", "avg_utilization", "avg_roi_percentage"},
		AvailableFilters:   []string{"district_id", "school_name", "category", "funding_source", "roi_status"},
		Priority:           1,
	},
	{
		Name:        "mv_user_software_utilization_v2",
		Description: "Detailed user-level software utilization with session counts, location breakdown, and weekly averages",
		PrimaryIntents: []Intent{
			IntentUserAnalytics, IntentStudentAnalysis, IntentTeacherAnalysis, IntentUtilizationAnalysis,
		},
		KeyColumns: []string{
			"software_id", "user_id", "user_email", "first_name", "last_name",
			"grade", "school_id", "district_id", "user_role", "school_name",
			"district_name", "software_name", "software_category",
			"sessions_count", "total_minutes", "minutes_in_school",
			"minutes_at_home", "first_active", "last_active", "days_active",
			"avg_weekly_minutes",
		},
		AggregationColumns: []string{"sessions_count", "total_minutes", "minutes_in_school", "minutes_at_home", "avg_weekly_minutes"},
		AvailableFilters:   []string{"district_id", "school_id", "user_role", "grade", "software_id"},
		Priority:           1,
	},
	{
		Name:        "mv_active_users_summary",
		Description: "Summary of active users with total usage, session counts, and grade band classification",
		PrimaryIntents: []Intent{
			IntentActiveUsers, IntentUserAnalytics, IntentGradeAnalysis,
		},
		KeyColumns: []string{
			"user_id", "email", "first_name", "last_name", "role", "grade",
			"school_id", "district_id", "school_name", "district_name",
			"total_usage_minutes", "total_sessions", "first_active_date",
			"last_active_date", "grade_band", "full_name",
		},
		AggregationColumns: []string{"total_usage_minutes", "total_sessions"},
		AvailableFilters:   []string{"district_id", "school_id", "role", "grade", "grade_band"},
		Priority:           1,
	},
	{
		Name:        "mv_software_details_metrics",
		Description: "Detailed software metrics including weekly usage patterns, user-day statistics, and cost efficiency calculations",
		PrimaryIntents: []Intent{
			IntentSoftwareUsage, IntentUtilizationAnalysis, IntentCostAnalysis,
		},
		KeyColumns: []string{
			"name", "district_id", "primary_category", "school_names",
			"user_types", "grades", "grade_ranges", "funding_sources",
			"total_cost", "students_licensed", "authorized",
			"district_purchased", "total_minutes", "active_users", "usage_days",
			"first_use_date", "last_use_date", "cost_per_student", "roi_status",
			"engagement_rate", "usage_compliance",
			"avg_weekly_minutes_per_user", "total_weekly_minutes_all_users",
			"median_weekly_minutes_per_user", "days_with_10min_usage",
			"days_with_15min_usage", "days_with_20min_usage",
			"cost_per_user_hour_per_week", "utilization_rate_percentage",
		},
		AggregationColumns: []string{"avg_weekly_minutes_per_user", "total_weekly_minutes_all_users", "utilization_rate_percentage"},
		AvailableFilters:   []string{"district_id", "authorized", "district_purchased", "roi_status"},
		Priority:           2,
	},
	{
		Name:        "mv_report_data_unified_v4",
		Description: "Unified report data for authorized software grouped by software name and school, with comprehensive metrics",
		PrimaryIntents: []Intent{
			IntentReportGeneration, IntentSchoolAnalysis, IntentSoftwareUsage,
		},
		KeyColumns: []string{
			"software_name", "software_record_count", "school_id",
			"school_name", "district_id", "category", "funding_source",
			"grade_range", "authorized", "approval_status", "purchase_date",
			"total_cost", "students_licensed", "cost_per_student",
			"active_students", "active_teachers", "total_minutes",
			"total_usage_hours", "usage_days", "average_session_time",
			"usage_frequency", "avg_weekly_usage_hours", "first_use_date",
			"last_use_date", "expected_daily_minutes", "usage_compliance",
		},
		AggregationColumns: []string{"total_minutes", "total_usage_hours", "active_students", "active_teachers", "avg_weekly_usage_hours"},
		AvailableFilters:   []string{"district_id", "school_id", "school_name", "category", "funding_source"},
		Priority:           1,
	},
	{
		Name:           "mv_unauthorized_software_by_school",
		Description:    "Unauthorized software usage aggregated by school over a 90-day window, across all districts",
		PrimaryIntents: []Intent{IntentUnauthorizedSoftware, IntentSchoolAnalysis},
		KeyColumns: []string{
			"software_id", "school_name", "total_minutes", "unique_users", "session_count",
		},
		AggregationColumns: []string{"total_minutes", "unique_users", "session_count"},
		AvailableFilters:   []string{"software_id", "school_name"},
		Global:             true,
		Priority:           2,
	},
	{
		Name:           "mv_unauthorized_software_by_grade",
		Description:    "Unauthorized software usage aggregated by grade level over a 90-day window, across all districts",
		PrimaryIntents: []Intent{IntentUnauthorizedSoftware, IntentGradeAnalysis},
		KeyColumns: []string{
			"software_id", "grade", "total_minutes", "unique_users", "session_count",
		},
		AggregationColumns: []string{"total_minutes", "unique_users", "session_count"},
		AvailableFilters:   []string{"software_id", "grade"},
		Global:             true,
		Priority:           2,
	},
	{
		Name:           "mv_unauthorized_software_by_hour",
		Description:    "Unauthorized software usage aggregated by hour of day over a 90-day window, across all districts",
		PrimaryIntents: []Intent{IntentUnauthorizedSoftware, IntentUsageTrends},
		KeyColumns: []string{
			"software_id", "hour", "session_count", "total_minutes",
		},
		AggregationColumns: []string{"session_count", "total_minutes"},
		AvailableFilters:   []string{"software_id", "hour"},
		Global:             true,
		Priority:           3,
	},
	{
		Name:           "mv_unauthorized_software_timeline",
		Description:    "Daily timeline of unauthorized software usage, across all districts",
		PrimaryIntents: []Intent{IntentUnauthorizedSoftware, IntentUsageTrends},
		KeyColumns: []string{
			"software_id", "date", "total_minutes", "unique_users", "session_count",
		},
		AggregationColumns: []string{"total_minutes", "unique_users", "session_count"},
		AvailableFilters:   []string{"software_id", "date"},
		Global:             true,
		Priority:           2,
	},
	{
		Name:        "mv_software_usage_by_school_v2",
		Description: "Software usage metrics broken down by school with ROI calculations",
		PrimaryIntents: []Intent{
			IntentSchoolAnalysis, IntentSoftwareUsage, IntentSoftwareROI,
		},
		KeyColumns: []string{
			"software_id", "software_name", "school_id", "school_name",
			"district_id", "total_cost", "category", "authorized",
			"district_purchased", "students_licensed", "funding_source",
			"user_type", "grade", "active_users", "active_students",
			"active_teachers", "total_minutes", "usage_days", "first_use_date",
			"last_use_date", "expected_daily_minutes", "cost_per_student",
			"usage_ratio", "avg_minutes_per_day", "avg_roi_percentage",
			"roi_status", "engagement_rate", "usage_compliance",
		},
		AggregationColumns: []string{"active_users", "active_students", "active_teachers", "total_minutes", "avg_roi_percentage"},
		AvailableFilters:   []string{"district_id", "school_id", "school_name", "category", "roi_status"},
		Priority:           1,
	},
	{
		Name:        "mv_software_usage_rankings_v4",
		Description: "Software usage rankings with percentage calculations, supporting filtering by grade band, user type, school, and funding source",
		PrimaryIntents: []Intent{
			IntentUsageRankings, IntentSoftwareUsage, IntentGradeAnalysis,
		},
		KeyColumns: []string{
			"id", "name", "category", "district_id", "user_type", "school_name",
			"funding_source", "grade_band", "total_cost", "total_minutes",
			"instance_count", "context_total_minutes", "usage_percentage",
		},
		AggregationColumns: []string{"total_minutes", "total_cost", "usage_percentage"},
		AvailableFilters:   []string{"district_id", "user_type", "school_name", "funding_source", "grade_band"},
		Priority:           1,
	},
}
