package insights

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"vcon-insights/internal/types"
)

const (
	satisfactionThreshold = 7.0
	qualityThreshold      = 7.0

	// retention risk factor weights
	riskLowSatisfaction     = 0.3
	riskPoorQuality         = 0.25
	riskPoorAdherence       = 0.2
	riskNegativeSentiment   = 0.15
	riskDeepDissatisfaction = 0.2
)

// TrendPoint is one month of aggregated satisfaction history.
type TrendPoint struct {
	Month           string  `json:"month"`
	AvgSatisfaction float64 `json:"avg_satisfaction"`
	AvgQuality      float64 `json:"avg_quality"`
	AvgPolarity     float64 `json:"avg_sentiment_polarity"`
	Calls           int     `json:"calls"`
}

// SatisfactionTrend fits a least-squares line through the monthly
// satisfaction means. Strength is the absolute Pearson correlation of the
// fit; direction turns over at a slope of 0.1 points per month.
type SatisfactionTrend struct {
	Monthly     []TrendPoint `json:"monthly"`
	Direction   string       `json:"direction"`
	Slope       float64      `json:"slope"`
	Strength    float64      `json:"strength"`
	RiskPeriods int          `json:"risk_periods"`
	Current     float64      `json:"current_satisfaction"`
	Volatility  float64      `json:"satisfaction_volatility"`
}

func (e *Engine) SatisfactionTrend() SatisfactionTrend {
	monthly := e.monthlyPoints()
	if len(monthly) == 0 {
		return SatisfactionTrend{Direction: "no_data"}
	}

	means := make([]float64, len(monthly))
	riskPeriods := 0
	for i, p := range monthly {
		means[i] = p.AvgSatisfaction
		if p.AvgSatisfaction < satisfactionThreshold {
			riskPeriods++
		}
	}

	out := SatisfactionTrend{
		Monthly:     monthly,
		RiskPeriods: riskPeriods,
		Current:     means[len(means)-1],
	}
	if len(means) < 2 {
		out.Direction = "insufficient_data"
		return out
	}

	slope, _, r := linregress(means)
	out.Slope = slope
	out.Strength = math.Abs(r)
	out.Volatility = populationStd(means)
	switch {
	case slope > 0.1:
		out.Direction = "improving"
	case slope < -0.1:
		out.Direction = "declining"
	default:
		out.Direction = "stable"
	}
	return out
}

// monthlyPoints groups records by calendar month of call_date, ascending.
func (e *Engine) monthlyPoints() []TrendPoint {
	type acc struct {
		n                             int
		satisfaction, quality, polarity float64
	}
	groups := make(map[string]*acc)
	for i := range e.records {
		r := &e.records[i]
		if len(r.CallDate) < 7 {
			continue
		}
		month := r.CallDate[:7]
		g := groups[month]
		if g == nil {
			g = &acc{}
			groups[month] = g
		}
		g.n++
		g.satisfaction += r.SatisfactionScore
		g.quality += r.CallQualityScore
		g.polarity += r.Polarity
	}

	months := make([]string, 0, len(groups))
	for month := range groups {
		months = append(months, month)
	}
	sort.Strings(months)

	out := make([]TrendPoint, 0, len(months))
	for _, month := range months {
		g := groups[month]
		n := float64(g.n)
		out = append(out, TrendPoint{
			Month:           month,
			AvgSatisfaction: round2(g.satisfaction / n),
			AvgQuality:      round2(g.quality / n),
			AvgPolarity:     round2(g.polarity / n),
			Calls:           g.n,
		})
	}
	return out
}

// ForecastPoint is one projected month. Bounds are the 95% confidence
// interval from the residual spread of the fitted line, clamped to the valid
// satisfaction range.
type ForecastPoint struct {
	Period          string  `json:"period"`
	Satisfaction    float64 `json:"forecast_satisfaction"`
	LowerBound      float64 `json:"lower_bound"`
	UpperBound      float64 `json:"upper_bound"`
	TrendConfidence float64 `json:"trend_confidence"`
}

// Forecast is a linear satisfaction projection with model diagnostics.
type Forecast struct {
	Points   []ForecastPoint `json:"points"`
	RSquared float64         `json:"r_squared"`
	Slope    float64         `json:"slope"`
	Variance float64         `json:"historical_variance"`
}

// SatisfactionForecast projects monthly satisfaction means the given number
// of months ahead. At least three months of history are required; months < 1
// defaults to six.
func (e *Engine) SatisfactionForecast(months int) (Forecast, error) {
	if months < 1 {
		months = 6
	}
	monthly := e.monthlyPoints()
	if len(monthly) < 3 {
		return Forecast{}, fmt.Errorf("insufficient history: %d month(s) of data, need 3", len(monthly))
	}

	means := make([]float64, len(monthly))
	for i, p := range monthly {
		means[i] = p.AvgSatisfaction
	}
	slope, intercept, r := linregress(means)

	// residual spread of the fit drives the confidence margin
	var mse float64
	for i, v := range means {
		residual := v - (slope*float64(i) + intercept)
		mse += residual * residual
	}
	mse /= float64(len(means))
	margin := 1.96 * math.Sqrt(mse)

	last, err := time.Parse("2006-01", monthly[len(monthly)-1].Month)
	if err != nil {
		return Forecast{}, fmt.Errorf("bad month label %q: %w", monthly[len(monthly)-1].Month, err)
	}

	points := make([]ForecastPoint, 0, months)
	for i := 0; i < months; i++ {
		value := slope*float64(len(means)+i) + intercept
		points = append(points, ForecastPoint{
			Period:          last.AddDate(0, i+1, 0).Format("2006-01"),
			Satisfaction:    clamp(value, 0, 10),
			LowerBound:      clamp(value-margin, 0, 10),
			UpperBound:      clamp(value+margin, 0, 10),
			TrendConfidence: math.Abs(r),
		})
	}
	return Forecast{
		Points:   points,
		RSquared: r * r,
		Slope:    slope,
		Variance: populationVariance(means),
	}, nil
}

// CustomerRisk is the per-customer interaction profile with its weighted
// retention risk score.
type CustomerRisk struct {
	CustomerName     string  `json:"customer_name"`
	Interactions     int     `json:"interactions"`
	AvgSatisfaction  float64 `json:"avg_satisfaction"`
	MinSatisfaction  float64 `json:"min_satisfaction"`
	AvgQuality       float64 `json:"avg_quality"`
	AvgAdherence     float64 `json:"avg_adherence"`
	AvgPolarity      float64 `json:"avg_polarity"`
	FirstInteraction string  `json:"first_interaction"`
	LastInteraction  string  `json:"last_interaction"`
	RiskScore        float64 `json:"risk_score"`
}

// RiskSegment summarizes one band of the risk distribution.
type RiskSegment struct {
	Count           int      `json:"count"`
	Percentage      float64  `json:"percentage"`
	AvgSatisfaction float64  `json:"avg_satisfaction"`
	Customers       []string `json:"customers,omitempty"`
}

// RetentionRisk segments customers into high (score >= 0.6), medium (>= 0.3)
// and low risk bands.
type RetentionRisk struct {
	TotalCustomers int            `json:"total_customers"`
	HighRisk       RiskSegment    `json:"high_risk"`
	MediumRisk     RiskSegment    `json:"medium_risk"`
	LowRisk        RiskSegment    `json:"low_risk"`
	Customers      []CustomerRisk `json:"customers"`
}

// RetentionRisk scores every customer from their interaction history. Each
// factor below its threshold adds its weight; the score caps at 1.0.
func (e *Engine) RetentionRisk() RetentionRisk {
	type acc struct {
		n                                         int
		satisfaction, quality, adherence, polarity float64
		minSatisfaction                           float64
		first, last                               string
	}
	groups := make(map[string]*acc)
	for i := range e.records {
		r := &e.records[i]
		g := groups[r.CustomerName]
		if g == nil {
			g = &acc{minSatisfaction: r.SatisfactionScore, first: r.CallDate, last: r.CallDate}
			groups[r.CustomerName] = g
		}
		g.n++
		g.satisfaction += r.SatisfactionScore
		g.quality += r.CallQualityScore
		g.adherence += r.AdherenceRate
		g.polarity += r.Polarity
		if r.SatisfactionScore < g.minSatisfaction {
			g.minSatisfaction = r.SatisfactionScore
		}
		if r.CallDate < g.first {
			g.first = r.CallDate
		}
		if r.CallDate > g.last {
			g.last = r.CallDate
		}
	}
	if len(groups) == 0 {
		return RetentionRisk{}
	}

	customers := make([]CustomerRisk, 0, len(groups))
	for name, g := range groups {
		n := float64(g.n)
		c := CustomerRisk{
			CustomerName:     name,
			Interactions:     g.n,
			AvgSatisfaction:  round2(g.satisfaction / n),
			MinSatisfaction:  g.minSatisfaction,
			AvgQuality:       round2(g.quality / n),
			AvgAdherence:     round2(g.adherence / n),
			AvgPolarity:      round2(g.polarity / n),
			FirstInteraction: g.first,
			LastInteraction:  g.last,
		}
		risk := 0.0
		if c.AvgSatisfaction < satisfactionThreshold {
			risk += riskLowSatisfaction
		}
		if c.AvgQuality < qualityThreshold {
			risk += riskPoorQuality
		}
		if c.AvgAdherence < coachingAdherenceTarget {
			risk += riskPoorAdherence
		}
		if c.AvgPolarity < 0 {
			risk += riskNegativeSentiment
		}
		if c.MinSatisfaction < 5.0 {
			risk += riskDeepDissatisfaction
		}
		c.RiskScore = math.Min(risk, 1.0)
		customers = append(customers, c)
	}
	sort.Slice(customers, func(i, j int) bool {
		return customers[i].CustomerName < customers[j].CustomerName
	})

	out := RetentionRisk{TotalCustomers: len(customers), Customers: customers}
	total := float64(len(customers))
	var highNames []CustomerRisk
	var highSat, mediumSat, lowSat float64
	for _, c := range customers {
		switch {
		case c.RiskScore >= 0.6:
			out.HighRisk.Count++
			highSat += c.AvgSatisfaction
			highNames = append(highNames, c)
		case c.RiskScore >= 0.3:
			out.MediumRisk.Count++
			mediumSat += c.AvgSatisfaction
		default:
			out.LowRisk.Count++
			lowSat += c.AvgSatisfaction
		}
	}
	fill := func(seg *RiskSegment, sum float64) {
		seg.Percentage = round1(float64(seg.Count) / total * 100)
		if seg.Count > 0 {
			seg.AvgSatisfaction = round2(sum / float64(seg.Count))
		}
	}
	fill(&out.HighRisk, highSat)
	fill(&out.MediumRisk, mediumSat)
	fill(&out.LowRisk, lowSat)

	// most at-risk first, capped at ten names
	sort.Slice(highNames, func(i, j int) bool {
		if highNames[i].RiskScore != highNames[j].RiskScore {
			return highNames[i].RiskScore > highNames[j].RiskScore
		}
		return highNames[i].CustomerName < highNames[j].CustomerName
	})
	for i, c := range highNames {
		if i == 10 {
			break
		}
		out.HighRisk.Customers = append(out.HighRisk.Customers, c.CustomerName)
	}
	return out
}

// Driver is one numeric factor's Pearson correlation with satisfaction.
type Driver struct {
	Factor      string  `json:"factor"`
	Correlation float64 `json:"correlation"`
}

// SatisfactionDrivers ranks what moves satisfaction: numeric correlations
// plus categorical standouts by agent, location and hour.
type SatisfactionDrivers struct {
	Drivers         []Driver `json:"drivers"`
	TopAgents       []Metric `json:"top_agents"`
	AgentVariance   float64  `json:"agent_variance"`
	LocationMeans   []Metric `json:"location_means"`
	BestHours       []int    `json:"best_hours"`
	WorstHours      []int    `json:"worst_hours"`
	Recommendations []string `json:"recommendations"`
}

func (e *Engine) SatisfactionDrivers() SatisfactionDrivers {
	if len(e.records) == 0 {
		return SatisfactionDrivers{}
	}

	satisfaction := make([]float64, len(e.records))
	for i := range e.records {
		satisfaction[i] = e.records[i].SatisfactionScore
	}
	factors := []struct {
		name  string
		value func(*types.EnrichedRecord) float64
	}{
		{"call_quality_score", func(r *types.EnrichedRecord) float64 { return r.CallQualityScore }},
		{"script_adherence_rate", func(r *types.EnrichedRecord) float64 { return r.AdherenceRate }},
		{"duration_seconds", func(r *types.EnrichedRecord) float64 { return r.DurationSeconds }},
		{"sentiment_polarity", func(r *types.EnrichedRecord) float64 { return r.Polarity }},
	}

	correlations := make(map[string]float64)
	var drivers []Driver
	for _, f := range factors {
		values := make([]float64, len(e.records))
		for i := range e.records {
			values[i] = f.value(&e.records[i])
		}
		if r, ok := pearson(satisfaction, values); ok {
			correlations[f.name] = r
			drivers = append(drivers, Driver{Factor: f.name, Correlation: r})
		}
	}
	sort.Slice(drivers, func(i, j int) bool {
		if a, b := math.Abs(drivers[i].Correlation), math.Abs(drivers[j].Correlation); a != b {
			return a > b
		}
		return drivers[i].Factor < drivers[j].Factor
	})

	agentMeans := meanByKey(e.records,
		func(r *types.EnrichedRecord) string { return r.AgentName },
		func(r *types.EnrichedRecord) float64 { return r.SatisfactionScore })
	locationMeans := meanByKey(e.records,
		func(r *types.EnrichedRecord) string { return r.Location },
		func(r *types.EnrichedRecord) float64 { return r.SatisfactionScore })

	agentValues := make([]float64, 0, len(agentMeans))
	for _, v := range agentMeans {
		agentValues = append(agentValues, v)
	}

	out := SatisfactionDrivers{
		Drivers:       drivers,
		TopAgents:     roundMetrics(TopMetrics(agentMeans, 5)),
		AgentVariance: sampleVariance(agentValues),
		LocationMeans: roundMetrics(TopMetrics(locationMeans, 0)),
	}
	out.BestHours, out.WorstHours = e.hourExtremes(3)
	out.Recommendations = driverRecommendations(correlations, out)
	return out
}

// hourExtremes returns the n hours with the highest and lowest mean
// satisfaction, ties resolved toward the earlier hour.
func (e *Engine) hourExtremes(n int) (best, worst []int) {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for i := range e.records {
		h := e.records[i].CallHour
		sums[h] += e.records[i].SatisfactionScore
		counts[h]++
	}
	type hourMean struct {
		hour int
		mean float64
	}
	means := make([]hourMean, 0, len(sums))
	for h, sum := range sums {
		means = append(means, hourMean{hour: h, mean: sum / float64(counts[h])})
	}

	sort.Slice(means, func(i, j int) bool {
		if means[i].mean != means[j].mean {
			return means[i].mean > means[j].mean
		}
		return means[i].hour < means[j].hour
	})
	for i := 0; i < n && i < len(means); i++ {
		best = append(best, means[i].hour)
	}

	sort.Slice(means, func(i, j int) bool {
		if means[i].mean != means[j].mean {
			return means[i].mean < means[j].mean
		}
		return means[i].hour < means[j].hour
	})
	for i := 0; i < n && i < len(means); i++ {
		worst = append(worst, means[i].hour)
	}
	return best, worst
}

func driverRecommendations(correlations map[string]float64, d SatisfactionDrivers) []string {
	var recs []string
	if correlations["call_quality_score"] > 0.5 {
		recs = append(recs, "Focus on call quality training - strong correlation with satisfaction")
	}
	if correlations["script_adherence_rate"] > 0.3 {
		recs = append(recs, "Improve script adherence through coaching - moderate satisfaction impact")
	}
	if len(d.BestHours) > 0 {
		recs = append(recs, fmt.Sprintf("Schedule important calls during peak performance hours: %s", formatHours(d.BestHours)))
	}
	if d.AgentVariance > 1.0 {
		recs = append(recs, "Address agent performance inconsistencies through targeted training")
	}
	return recs
}

func formatHours(hours []int) string {
	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = fmt.Sprintf("%d:00", h)
	}
	return strings.Join(parts, ", ")
}

func roundMetrics(ms []Metric) []Metric {
	for i := range ms {
		ms[i].Value = round2(ms[i].Value)
	}
	return ms
}

// linregress fits y over x = 0..len(y)-1 by least squares, returning the
// slope, intercept and Pearson correlation of the fit.
func linregress(y []float64) (slope, intercept, r float64) {
	n := float64(len(y))
	if len(y) < 2 {
		if len(y) == 1 {
			intercept = y[0]
		}
		return 0, intercept, 0
	}
	var sumX, sumY, sumXX, sumYY, sumXY float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXX += x * x
		sumYY += v * v
		sumXY += x * v
	}
	denomX := n*sumXX - sumX*sumX
	denomY := n*sumYY - sumY*sumY
	slope = (n*sumXY - sumX*sumY) / denomX
	intercept = (sumY - slope*sumX) / n
	if denomY == 0 {
		return slope, intercept, 0
	}
	r = (n*sumXY - sumX*sumY) / math.Sqrt(denomX*denomY)
	return slope, intercept, r
}

// pearson reports the correlation of two equal-length series. ok is false
// when either series has no variance.
func pearson(x, y []float64) (r float64, ok bool) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, false
	}
	n := float64(len(x))
	var sumX, sumY, sumXX, sumYY, sumXY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXX += x[i] * x[i]
		sumYY += y[i] * y[i]
		sumXY += x[i] * y[i]
	}
	denomX := n*sumXX - sumX*sumX
	denomY := n*sumYY - sumY*sumY
	if denomX <= 0 || denomY <= 0 {
		return 0, false
	}
	return (n*sumXY - sumX*sumY) / math.Sqrt(denomX*denomY), true
}

func populationVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := meanOf(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values))
}

func populationStd(values []float64) float64 {
	return math.Sqrt(populationVariance(values))
}

// sampleVariance uses the n-1 denominator, matching how spreadsheet and
// dataframe tools report variance.
func sampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := meanOf(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values)-1)
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
