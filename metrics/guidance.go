package metrics

// GuidanceLevel classifies the most recent glucose reading.
type GuidanceLevel string

const (
	GuidanceLow     GuidanceLevel = "low"
	GuidanceInRange GuidanceLevel = "inRange"
	GuidanceHigh    GuidanceLevel = "high"
)

// Guidance thresholds in mg/dL. The high threshold is deliberately above
// the time-in-range band; the dashboards only escalate diet advice at 250.
const (
	guidanceLowThreshold  = 70.0
	guidanceHighThreshold = 250.0
)

// Guidance is a classification of the latest reading with the matching
// dietary advice. Advisory only, not medical guidance.
type Guidance struct {
	Level  GuidanceLevel `json:"level"`
	Advice string        `json:"advice"`
}

// GuidanceFor classifies a latest glucose value.
func GuidanceFor(latestGlucose float64) Guidance {
	switch {
	case latestGlucose > guidanceHighThreshold:
		return Guidance{
			Level: GuidanceHigh,
			Advice: "Avoid refined carbs, sugary foods and sweetened drinks. " +
				"Choose lean protein, green vegetables and water. " +
				"Consider a gentle 10-20 minute walk after meals.",
		}
	case latestGlucose < guidanceLowThreshold:
		return Guidance{
			Level: GuidanceLow,
			Advice: "Take fast-acting carbs now (juice, glucose tablets or fruit), " +
				"then follow with a protein snack. " +
				"Recheck in 15 minutes and avoid being alone.",
		}
	default:
		return Guidance{
			Level: GuidanceInRange,
			Advice: "Balanced meals: whole grains, lean protein, vegetables and healthy fats. " +
				"Hydrate well and keep regular meal timing.",
		}
	}
}
