package query

import (
	"math"
	"strconv"
)

// EnrichInvestmentFields derives investment_return and unrealized_value for
// rows exposing total_cost and usage_compliance, then strips the raw ROI
// percentage columns:
//
//	investment_return = round(total_cost * usage_compliance / 100, 2)
//	unrealized_value  = round(total_cost - investment_return, 2)
func EnrichInvestmentFields(rows []Row) {
	for _, row := range rows {
		totalCost := toFloat(row["total_cost"])
		compliance := toFloat(row["usage_compliance"])
		investmentReturn := round2(totalCost * compliance / 100)
		row["investment_return"] = investmentReturn
		row["unrealized_value"] = round2(totalCost - investmentReturn)
		delete(row, "avg_roi_percentage")
		delete(row, "roi_percentage")
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
