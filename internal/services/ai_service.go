package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/models"
	"github.com/YeiyoNathnael/Green-Commitment-wall/pkg/ai"
	"github.com/YeiyoNathnael/Green-Commitment-wall/pkg/logger"
)

// Interpretation is the structured reading of a free-text commitment.
type Interpretation struct {
	Category         string                 `json:"category"`
	Frequency        string                 `json:"frequency"`
	Parameters       map[string]interface{} `json:"parameters"`
	ExtractedDetails string                 `json:"extracted_details"`
}

// CarbonEstimate quantifies projected savings for a commitment.
type CarbonEstimate struct {
	PerPeriod   float64 `json:"per_period"`
	Total       float64 `json:"total"`
	Unit        string  `json:"unit"`
	Confidence  string  `json:"confidence"` // "high", "medium" or "low"
	Explanation string  `json:"explanation"`
}

// MilestoneSuggestion is one proposed milestone for a new commitment.
type MilestoneSuggestion struct {
	Title                  string  `json:"title"`
	Description            string  `json:"description"`
	TargetValue            float64 `json:"target_value"`
	EstimatedCarbonSavings float64 `json:"estimated_carbon_savings"`
}

// Deterministic fallback table: base kg CO2 saved per period by category.
var baseEstimates = map[string]float64{
	models.CategoryTransport:   5.0,
	models.CategoryEnergy:      3.0,
	models.CategoryFood:        2.5,
	models.CategoryWaste:       1.5,
	models.CategoryWater:       1.0,
	models.CategoryConsumption: 2.0,
	models.CategoryOther:       1.0,
}

// Periods per "1 month" horizon by frequency.
var frequencyMultipliers = map[string]float64{
	models.FrequencyDaily:   30,
	models.FrequencyWeekly:  4,
	models.FrequencyMonthly: 1,
	models.FrequencyOnce:    1,
}

// AIService turns commitment text into interpretations, carbon estimates and
// milestone suggestions. The oracle is treated as unreliable: every method
// degrades to deterministic defaults and never returns an error.
type AIService struct {
	oracle ai.Oracle
}

// NewAIService creates a new instance of AIService. A nil oracle is allowed
// and forces the fallback path everywhere.
func NewAIService(oracle ai.Oracle) *AIService {
	return &AIService{oracle: oracle}
}

// InterpretCommitment extracts category, frequency and parameters from
// commitment text. Each field falls back independently when the oracle reply
// is missing or unusable.
func (s *AIService) InterpretCommitment(ctx context.Context, text string) Interpretation {
	fallback := Interpretation{
		Category:         models.CategoryOther,
		Frequency:        models.FrequencyOnce,
		Parameters:       map[string]interface{}{},
		ExtractedDetails: truncate(text, 100),
	}

	if s.oracle == nil {
		return fallback
	}

	prompt := fmt.Sprintf(`Extract category, frequency, and key parameters from this sustainability commitment. Return JSON only.

Commitment: %q

Extract:
- category: one of [transport, energy, food, waste, water, consumption, other]
- frequency: one of [daily, weekly, monthly, once]
- parameters: relevant details (e.g., distance, quantity, type)
- extractedDetails: brief summary

Return valid JSON format.`, text)

	reply, err := s.oracle.GenerateContent(ctx, prompt)
	if err != nil {
		logger.Log.WithError(err).Warn("Oracle interpretation failed, using fallback")
		return fallback
	}

	raw := extractJSONObject(reply)
	if raw == "" {
		return fallback
	}

	var parsed struct {
		Category         string                 `json:"category"`
		Frequency        string                 `json:"frequency"`
		Parameters       map[string]interface{} `json:"parameters"`
		ExtractedDetails string                 `json:"extractedDetails"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		logger.Log.WithError(err).Warn("Oracle interpretation reply unparseable, using fallback")
		return fallback
	}

	result := fallback
	if parsed.Category != "" {
		result.Category = parsed.Category
	}
	if parsed.Frequency != "" {
		result.Frequency = parsed.Frequency
	}
	if parsed.Parameters != nil {
		result.Parameters = parsed.Parameters
	}
	if parsed.ExtractedDetails != "" {
		result.ExtractedDetails = parsed.ExtractedDetails
	}
	return result
}

// EstimateCarbonSavings quantifies savings for an interpreted commitment.
// The oracle answer is accepted only when both perPeriod and total parse as
// numbers; anything else falls through to the rule table.
func (s *AIService) EstimateCarbonSavings(ctx context.Context, interp Interpretation, duration string) CarbonEstimate {
	if duration == "" {
		duration = "1 month"
	}

	if s.oracle != nil {
		params, _ := json.Marshal(interp.Parameters)
		prompt := fmt.Sprintf(`Estimate CO2 savings in kg for this commitment. Return JSON only.

Category: %s
Frequency: %s
Duration: %s
Details: %s
Parameters: %s

Calculate:
- perPeriod: kg CO2 saved per frequency period
- total: total kg CO2 for duration
- confidence: high/medium/low
- explanation: brief reasoning

Return valid JSON format.`, interp.Category, interp.Frequency, duration, interp.ExtractedDetails, params)

		reply, err := s.oracle.GenerateContent(ctx, prompt)
		if err == nil {
			if raw := extractJSONObject(reply); raw != "" {
				var parsed map[string]interface{}
				if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
					perPeriod, okPer := toFloat(parsed["perPeriod"])
					total, okTotal := toFloat(parsed["total"])
					if okPer && okTotal {
						estimate := CarbonEstimate{
							PerPeriod:   perPeriod,
							Total:       total,
							Unit:        "kg CO2",
							Confidence:  "medium",
							Explanation: "Estimated based on commitment details",
						}
						if c, ok := parsed["confidence"].(string); ok && c != "" {
							estimate.Confidence = c
						}
						if e, ok := parsed["explanation"].(string); ok && e != "" {
							estimate.Explanation = e
						}
						return estimate
					}
				}
			}
		} else {
			logger.Log.WithError(err).Warn("Oracle estimation failed, using rule table")
		}
	}

	return simpleCarbonEstimate(interp)
}

// simpleCarbonEstimate is the deterministic rule-based path.
func simpleCarbonEstimate(interp Interpretation) CarbonEstimate {
	perPeriod, ok := baseEstimates[interp.Category]
	if !ok {
		perPeriod = 1.0
	}
	multiplier, ok := frequencyMultipliers[interp.Frequency]
	if !ok {
		multiplier = 1
	}

	return CarbonEstimate{
		PerPeriod:   perPeriod,
		Total:       perPeriod * multiplier,
		Unit:        "kg CO2",
		Confidence:  "low",
		Explanation: "Estimated using baseline averages",
	}
}

// SuggestMilestones proposes up to three milestones for a commitment, with a
// fixed three-entry ladder when the oracle is unavailable or unparseable.
func (s *AIService) SuggestMilestones(ctx context.Context, text string, interp Interpretation) []MilestoneSuggestion {
	if s.oracle == nil {
		return defaultMilestones()
	}

	prompt := fmt.Sprintf(`Suggest 3 achievable milestones for this commitment. Return JSON array only.

Commitment: %q
Category: %s
Frequency: %s

For each milestone provide:
- title: short milestone name
- description: what to achieve
- targetValue: numeric goal
- estimatedCarbonSavings: kg CO2

Return valid JSON array format.`, text, interp.Category, interp.Frequency)

	reply, err := s.oracle.GenerateContent(ctx, prompt)
	if err != nil {
		logger.Log.WithError(err).Warn("Oracle milestone suggestion failed, using defaults")
		return defaultMilestones()
	}

	raw := extractJSONArray(reply)
	if raw == "" {
		return defaultMilestones()
	}

	var parsed []map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || len(parsed) == 0 {
		return defaultMilestones()
	}

	if len(parsed) > 3 {
		parsed = parsed[:3]
	}

	suggestions := make([]MilestoneSuggestion, 0, len(parsed))
	for _, m := range parsed {
		suggestion := MilestoneSuggestion{
			Title:       "Milestone",
			TargetValue: 1,
		}
		if title, ok := m["title"].(string); ok && title != "" {
			suggestion.Title = title
		}
		if desc, ok := m["description"].(string); ok {
			suggestion.Description = desc
		}
		if target, ok := toFloat(m["targetValue"]); ok && target != 0 {
			suggestion.TargetValue = target
		}
		if savings, ok := toFloat(m["estimatedCarbonSavings"]); ok {
			suggestion.EstimatedCarbonSavings = savings
		}
		suggestions = append(suggestions, suggestion)
	}
	return suggestions
}

// defaultMilestones is the fixed fallback ladder.
func defaultMilestones() []MilestoneSuggestion {
	return []MilestoneSuggestion{
		{
			Title:                  "First Week",
			Description:            "Complete your commitment for 7 days",
			TargetValue:            7,
			EstimatedCarbonSavings: 5,
		},
		{
			Title:                  "One Month Strong",
			Description:            "Maintain your commitment for 30 days",
			TargetValue:            30,
			EstimatedCarbonSavings: 20,
		},
		{
			Title:                  "Sustainability Champion",
			Description:            "Complete 3 months of consistent action",
			TargetValue:            90,
			EstimatedCarbonSavings: 60,
		},
	}
}

// extractJSONObject returns the outermost {...} block in s, or "".
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}

// extractJSONArray returns the outermost [...] block in s, or "".
func extractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}

// toFloat coerces the loosely typed values the oracle returns (numbers or
// numeric strings) into a float64.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
