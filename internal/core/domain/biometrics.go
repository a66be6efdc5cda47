package domain

import (
	"fmt"
	"math"
)

// BiometricSnapshot holds vital signs for a profile or a journal entry.
// A nil field means "not measured", which is neither normal nor abnormal.
type BiometricSnapshot struct {
	SystolicBP          *float64 `json:"systolic_bp,omitempty"`
	DiastolicBP         *float64 `json:"diastolic_bp,omitempty"`
	HeartRateBPM        *float64 `json:"heart_rate_bpm,omitempty"`
	BloodSugarLevelMgDl *float64 `json:"blood_sugar_level_mg_dl,omitempty"`
	WeightKg            *float64 `json:"weight_kg,omitempty"`
	HeightCm            *float64 `json:"height_cm,omitempty"`
}

// IsEmpty reports whether nothing was measured
func (s BiometricSnapshot) IsEmpty() bool {
	return s.SystolicBP == nil && s.DiastolicBP == nil && s.HeartRateBPM == nil &&
		s.BloodSugarLevelMgDl == nil && s.WeightKg == nil && s.HeightCm == nil
}

// FindingField identifies the metric a finding is about
type FindingField string

const (
	FieldBloodPressure FindingField = "bloodPressure"
	FieldHeartRate     FindingField = "heartRateBPM"
	FieldBloodSugar    FindingField = "bloodSugarLevelMgDl"
	FieldBMI           FindingField = "bmi"
)

// Severity of an abnormal finding
type Severity string

const (
	SeverityElevated Severity = "elevated" // above the normal band
	SeveritySevere   Severity = "severe"   // far above, needs immediate attention
	SeverityHypo     Severity = "hypo"     // below the normal band
)

// Condition names the clinical band a reading fell into
type Condition string

const (
	ConditionSevereHypertension Condition = "severe_hypertension"
	ConditionHypertension       Condition = "hypertension"
	ConditionHypotension        Condition = "hypotension"
	ConditionHyperglycemia      Condition = "hyperglycemia"
	ConditionHypoglycemia       Condition = "hypoglycemia"
	ConditionTachycardia        Condition = "tachycardia"
	ConditionBradycardia        Condition = "bradycardia"
	ConditionUnderweight        Condition = "underweight"
	ConditionObesity            Condition = "obesity"
)

// AbnormalFinding is derived from a snapshot on every read, never stored
type AbnormalFinding struct {
	Field     FindingField `json:"field"`
	Abnormal  bool         `json:"abnormal"`
	Severity  Severity     `json:"severity,omitempty"`
	Condition Condition    `json:"condition"`
	Value     float64      `json:"value"` // systolic for blood pressure, unrounded BMI for bmi
	Message   string       `json:"message"`
}

// Thresholds. Each field is evaluated on its own; the first matching band wins.
const (
	BPSevereSystolic    = 160.0
	BPSevereDiastolic   = 110.0
	BPElevatedSystolic  = 140.0
	BPElevatedDiastolic = 90.0
	BPLowSystolic       = 90.0
	BPLowDiastolic      = 60.0

	GlucoseHighMgDl = 95.0
	GlucoseLowMgDl  = 70.0

	HeartRateHigh = 110.0
	HeartRateLow  = 50.0

	BMIUnderweight = 18.5
	BMIObese       = 30.0
)

// ClassifyBiometrics returns one finding per measured, out-of-band field in
// the order blood pressure, blood sugar, heart rate, BMI. Normal and
// unmeasured fields produce nothing.
func ClassifyBiometrics(s BiometricSnapshot) []AbnormalFinding {
	findings := []AbnormalFinding{}

	if f, ok := classifyBloodPressure(s.SystolicBP, s.DiastolicBP); ok {
		findings = append(findings, f)
	}
	if f, ok := classifyBloodSugar(s.BloodSugarLevelMgDl); ok {
		findings = append(findings, f)
	}
	if f, ok := classifyHeartRate(s.HeartRateBPM); ok {
		findings = append(findings, f)
	}
	if f, ok := classifyBMI(s.WeightKg, s.HeightCm); ok {
		findings = append(findings, f)
	}

	return findings
}

// classifyBloodPressure requires both readings
func classifyBloodPressure(systolic, diastolic *float64) (AbnormalFinding, bool) {
	if systolic == nil || diastolic == nil {
		return AbnormalFinding{}, false
	}
	sys, dia := *systolic, *diastolic
	reading := fmt.Sprintf("%s/%s mmHg", formatReading(sys), formatReading(dia))

	finding := AbnormalFinding{Field: FieldBloodPressure, Abnormal: true, Value: sys}
	switch {
	case sys >= BPSevereSystolic || dia >= BPSevereDiastolic:
		finding.Severity = SeveritySevere
		finding.Condition = ConditionSevereHypertension
		finding.Message = fmt.Sprintf("Blood pressure %s is severely high (at or above %s/%s mmHg). Contact your care provider immediately.",
			reading, formatReading(BPSevereSystolic), formatReading(BPSevereDiastolic))
	case sys >= BPElevatedSystolic || dia >= BPElevatedDiastolic:
		finding.Severity = SeverityElevated
		finding.Condition = ConditionHypertension
		finding.Message = fmt.Sprintf("Blood pressure %s is high (at or above %s/%s mmHg). This may indicate gestational hypertension.",
			reading, formatReading(BPElevatedSystolic), formatReading(BPElevatedDiastolic))
	case sys < BPLowSystolic || dia < BPLowDiastolic:
		finding.Severity = SeverityHypo
		finding.Condition = ConditionHypotension
		finding.Message = fmt.Sprintf("Blood pressure %s is low (below %s/%s mmHg). Rest and stay hydrated; report dizziness or fainting.",
			reading, formatReading(BPLowSystolic), formatReading(BPLowDiastolic))
	default:
		return AbnormalFinding{}, false
	}
	return finding, true
}

func classifyBloodSugar(level *float64) (AbnormalFinding, bool) {
	if level == nil {
		return AbnormalFinding{}, false
	}
	v := *level

	finding := AbnormalFinding{Field: FieldBloodSugar, Abnormal: true, Value: v}
	switch {
	case v > GlucoseHighMgDl:
		finding.Severity = SeverityElevated
		finding.Condition = ConditionHyperglycemia
		finding.Message = fmt.Sprintf("Blood sugar %s mg/dL is above the target of %s mg/dL. This may indicate gestational diabetes.",
			formatReading(v), formatReading(GlucoseHighMgDl))
	case v < GlucoseLowMgDl:
		finding.Severity = SeverityHypo
		finding.Condition = ConditionHypoglycemia
		finding.Message = fmt.Sprintf("Blood sugar %s mg/dL is below %s mg/dL (hypoglycemia). Eat a snack with fast-acting carbohydrates.",
			formatReading(v), formatReading(GlucoseLowMgDl))
	default:
		return AbnormalFinding{}, false
	}
	return finding, true
}

func classifyHeartRate(bpm *float64) (AbnormalFinding, bool) {
	if bpm == nil {
		return AbnormalFinding{}, false
	}
	v := *bpm

	finding := AbnormalFinding{Field: FieldHeartRate, Abnormal: true, Value: v}
	switch {
	case v > HeartRateHigh:
		finding.Severity = SeverityElevated
		finding.Condition = ConditionTachycardia
		finding.Message = fmt.Sprintf("Heart rate %s bpm is above %s bpm. Rest and recheck; seek care if it persists.",
			formatReading(v), formatReading(HeartRateHigh))
	case v < HeartRateLow:
		finding.Severity = SeverityHypo
		finding.Condition = ConditionBradycardia
		finding.Message = fmt.Sprintf("Heart rate %s bpm is below %s bpm (bradycardia).",
			formatReading(v), formatReading(HeartRateLow))
	default:
		return AbnormalFinding{}, false
	}
	return finding, true
}

func classifyBMI(weightKg, heightCm *float64) (AbnormalFinding, bool) {
	bmi, ok := BMI(weightKg, heightCm)
	if !ok {
		return AbnormalFinding{}, false
	}

	finding := AbnormalFinding{Field: FieldBMI, Abnormal: true, Value: bmi}
	switch {
	case bmi < BMIUnderweight:
		finding.Severity = SeverityHypo
		finding.Condition = ConditionUnderweight
		finding.Message = fmt.Sprintf("BMI %.1f is below %.1f (underweight).", bmi, BMIUnderweight)
	case bmi >= BMIObese:
		finding.Severity = SeverityElevated
		finding.Condition = ConditionObesity
		finding.Message = fmt.Sprintf("BMI %.1f is at or above %.1f (obesity).", bmi, BMIObese)
	default:
		return AbnormalFinding{}, false
	}
	return finding, true
}

// BMI computes weight / (height in metres)^2. ok is false unless both values
// are present and height is positive.
func BMI(weightKg, heightCm *float64) (float64, bool) {
	if weightKg == nil || heightCm == nil || *heightCm <= 0 {
		return 0, false
	}
	m := *heightCm / 100
	return *weightKg / (m * m), true
}

// HasSevereFinding reports whether any finding needs immediate attention
func HasSevereFinding(findings []AbnormalFinding) bool {
	for _, f := range findings {
		if f.Severity == SeveritySevere {
			return true
		}
	}
	return false
}

// ValidateSnapshot rejects readings no device could produce. Used at input
// time by the services; the classifier itself never validates.
func ValidateSnapshot(s BiometricSnapshot) error {
	checks := []struct {
		name     string
		value    *float64
		min, max float64
	}{
		{"systolic_bp", s.SystolicBP, 40, 300},
		{"diastolic_bp", s.DiastolicBP, 20, 200},
		{"heart_rate_bpm", s.HeartRateBPM, 20, 250},
		{"blood_sugar_level_mg_dl", s.BloodSugarLevelMgDl, 10, 1000},
		{"weight_kg", s.WeightKg, 20, 300},
		{"height_cm", s.HeightCm, 100, 250},
	}
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		v := *c.value
		if math.IsNaN(v) || v < c.min || v > c.max {
			return fmt.Errorf("%w: %s must be between %s and %s", ErrInvalidInput, c.name, formatReading(c.min), formatReading(c.max))
		}
	}
	return nil
}

// formatReading prints whole readings without decimals and keeps one decimal otherwise
func formatReading(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
