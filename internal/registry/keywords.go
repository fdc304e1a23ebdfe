package registry

// defaultIntentPatterns maps intents to the words and phrases that signal
// them. Multi-word entries are matched as whole phrases; the classifier
// weights them double to keep common single words from dominating.
var defaultIntentPatterns = IntentPatterns{
	IntentDashboardOverview: {
		"dashboard", "overview", "summary", "executive", "overall", "metrics",
		"kpi", "snapshot", "at a glance", "highlights",
	},
	IntentSoftwareUsage: {
		"software", "usage", "app", "application", "tool", "platform",
		"minutes", "sessions", "active", "used", "using", "utilization",
	},
	IntentSoftwareROI: {
		"roi", "return on investment", "value", "effectiveness", "performance",
		"worth", "benefit", "payoff", "high roi", "low roi", "moderate roi",
	},
	IntentSoftwareInvestment: {
		"investment", "cost", "spend", "spending", "budget", "expense",
		"money", "purchase", "license", "pricing", "financial",
	},
	IntentUserAnalytics: {
		"user", "users", "profile", "profiles", "people", "person",
		"individual", "active users", "unique users",
	},
	IntentStudentAnalysis: {
		"student", "students", "learner", "learners", "pupil", "pupils",
		"kids", "children", "enrolled",
	},
	IntentTeacherAnalysis: {
		"teacher", "teachers", "educator", "educators", "instructor", "staff",
		"faculty", "teaching",
	},
	IntentUnauthorizedSoftware: {
		"unauthorized", "unapproved", "blocked", "banned", "restricted",
		"not approved", "shadow it", "security", "compliance", "risk",
		"unauthorized software", "unauthorized usage", "unapproved software",
	},
	IntentSchoolAnalysis: {
		"school", "schools", "campus", "building", "location", "site",
		"by school", "per school", "each school",
	},
	IntentGradeAnalysis: {
		"grade", "grades", "grade level", "elementary", "middle",
		"high school", "k-5", "6-8", "9-12", "kindergarten", "by grade",
	},
	IntentUsageTrends: {
		"trend", "trends", "over time", "daily", "weekly", "monthly",
		"history", "growth", "decline", "pattern", "timeline", "recent",
	},
	IntentUsageRankings: {
		"top", "ranking", "ranked", "best", "worst", "most", "least",
		"highest", "lowest", "compare", "comparison", "vs",
	},
	IntentReportGeneration: {
		"report", "reports", "generate", "export", "document", "analysis",
		"detailed", "comprehensive",
	},
	IntentActiveUsers: {
		"active", "engagement", "engaged", "participating", "logged in",
		"last active", "recently active",
	},
	IntentCostAnalysis: {
		"cost", "price", "expensive", "cheap", "cost per student",
		"cost per user", "cost effective", "efficiency", "waste", "savings",
	},
	IntentUtilizationAnalysis: {
		"utilization", "utilized", "underutilized", "overutilized", "unused",
		"adoption", "penetration", "coverage", "compliance",
	},
}

func cloneIntentPatterns(src IntentPatterns) IntentPatterns {
	dst := make(IntentPatterns, len(src))
	for intent, patterns := range src {
		copied := make([]string, len(patterns))
		copy(copied, patterns)
		dst[intent] = copied
	}
	return dst
}
