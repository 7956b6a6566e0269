package metrics

import "fmt"

// Defaults carried over from the coaching dashboards this service replaced.
const (
	DefaultTargetGlucose            = 150.0
	DefaultInsulinSensitivityFactor = 14.13
)

// CorrectionRequest is the input of a single correction dose computation.
// Not persisted; a new request is built for every query.
type CorrectionRequest struct {
	CurrentGlucose           float64 `json:"currentGlucose"`
	TargetGlucose            float64 `json:"targetGlucose"`
	InsulinSensitivityFactor float64 `json:"insulinSensitivityFactor"`
}

// InvalidParameterError reports a structurally invalid dose parameter. It
// invalidates only the single computation, never the underlying series.
type InvalidParameterError struct {
	Parameter string
	Value     float64
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid value %v for parameter %s", e.Value, e.Parameter)
}

// CorrectionDose returns the insulin units needed to bring the current
// glucose down to the target, via the insulin sensitivity factor (mg/dL
// dropped per unit). At or below target no correction is needed. An ISF of
// zero or less errors instead of silently degrading, so bad configuration
// is auditable.
func CorrectionDose(currentGlucose, targetGlucose, insulinSensitivityFactor float64) (float64, error) {
	if insulinSensitivityFactor <= 0 {
		return 0, &InvalidParameterError{
			Parameter: "insulinSensitivityFactor",
			Value:     insulinSensitivityFactor,
		}
	}
	if currentGlucose <= targetGlucose {
		return 0, nil
	}
	return (currentGlucose - targetGlucose) / insulinSensitivityFactor, nil
}

// CarbBolusDose returns the insulin units covering a meal. A carb ratio of
// zero or less is treated as "ratio not configured" and yields 0. Note the
// asymmetry with CorrectionDose's stricter error policy.
func CarbBolusDose(mealCarbsGrams, carbRatioGramsPerUnit float64) float64 {
	if carbRatioGramsPerUnit <= 0 {
		return 0
	}
	return mealCarbsGrams / carbRatioGramsPerUnit
}

// TotalSuggestedDose is the plain sum of the correction dose and the carb
// bolus. No cap is applied beyond the individual functions' own floors.
func TotalSuggestedDose(currentGlucose, targetGlucose, insulinSensitivityFactor, mealCarbsGrams, carbRatioGramsPerUnit float64) (float64, error) {
	correction, err := CorrectionDose(currentGlucose, targetGlucose, insulinSensitivityFactor)
	if err != nil {
		return 0, err
	}
	return correction + CarbBolusDose(mealCarbsGrams, carbRatioGramsPerUnit), nil
}
