package domain_test

import (
	"testing"

	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBiometrics_SevereBloodPressure(t *testing.T) {
	findings := domain.ClassifyBiometrics(domain.BiometricSnapshot{SystolicBP: ptr(165), DiastolicBP: ptr(115)})

	require.Len(t, findings, 1)
	assert.Equal(t, domain.FieldBloodPressure, findings[0].Field)
	assert.Equal(t, domain.SeveritySevere, findings[0].Severity)
	assert.Equal(t, domain.ConditionSevereHypertension, findings[0].Condition)
	assert.True(t, findings[0].Abnormal)
	assert.Contains(t, findings[0].Message, "165/115 mmHg")
	assert.Contains(t, findings[0].Message, "160/110")
}

func TestClassifyBiometrics_SystolicAloneElevated(t *testing.T) {
	findings := domain.ClassifyBiometrics(domain.BiometricSnapshot{SystolicBP: ptr(150), DiastolicBP: ptr(80)})

	require.Len(t, findings, 1)
	assert.Equal(t, domain.SeverityElevated, findings[0].Severity)
	assert.Equal(t, domain.ConditionHypertension, findings[0].Condition)
	assert.Equal(t, 150.0, findings[0].Value)
}

func TestClassifyBiometrics_BloodPressureBands(t *testing.T) {
	tests := []struct {
		name      string
		sys, dia  float64
		condition domain.Condition
		normal    bool
	}{
		{"diastolic alone severe", 120, 110, domain.ConditionSevereHypertension, false},
		{"systolic at elevated edge", 140, 70, domain.ConditionHypertension, false},
		{"diastolic at elevated edge", 120, 90, domain.ConditionHypertension, false},
		{"low systolic", 85, 70, domain.ConditionHypotension, false},
		{"low diastolic", 110, 55, domain.ConditionHypotension, false},
		{"normal", 120, 80, "", true},
		{"normal lower edge", 90, 60, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := domain.ClassifyBiometrics(domain.BiometricSnapshot{SystolicBP: ptr(tt.sys), DiastolicBP: ptr(tt.dia)})
			if tt.normal {
				assert.Empty(t, findings)
				return
			}
			require.Len(t, findings, 1)
			assert.Equal(t, tt.condition, findings[0].Condition)
		})
	}
}

func TestClassifyBiometrics_BloodPressureNeedsBothReadings(t *testing.T) {
	assert.Empty(t, domain.ClassifyBiometrics(domain.BiometricSnapshot{SystolicBP: ptr(190)}))
	assert.Empty(t, domain.ClassifyBiometrics(domain.BiometricSnapshot{DiastolicBP: ptr(130)}))
}

func TestClassifyBiometrics_BloodSugar(t *testing.T) {
	high := domain.ClassifyBiometrics(domain.BiometricSnapshot{BloodSugarLevelMgDl: ptr(96)})
	require.Len(t, high, 1)
	assert.Equal(t, domain.ConditionHyperglycemia, high[0].Condition)
	assert.Equal(t, domain.SeverityElevated, high[0].Severity)

	low := domain.ClassifyBiometrics(domain.BiometricSnapshot{BloodSugarLevelMgDl: ptr(69.5)})
	require.Len(t, low, 1)
	assert.Equal(t, domain.ConditionHypoglycemia, low[0].Condition)
	assert.Contains(t, low[0].Message, "69.5 mg/dL")

	assert.Empty(t, domain.ClassifyBiometrics(domain.BiometricSnapshot{BloodSugarLevelMgDl: ptr(95)}))
	assert.Empty(t, domain.ClassifyBiometrics(domain.BiometricSnapshot{BloodSugarLevelMgDl: ptr(70)}))
}

func TestClassifyBiometrics_HeartRate(t *testing.T) {
	fast := domain.ClassifyBiometrics(domain.BiometricSnapshot{HeartRateBPM: ptr(111)})
	require.Len(t, fast, 1)
	assert.Equal(t, domain.ConditionTachycardia, fast[0].Condition)

	slow := domain.ClassifyBiometrics(domain.BiometricSnapshot{HeartRateBPM: ptr(49)})
	require.Len(t, slow, 1)
	assert.Equal(t, domain.ConditionBradycardia, slow[0].Condition)

	assert.Empty(t, domain.ClassifyBiometrics(domain.BiometricSnapshot{HeartRateBPM: ptr(110)}))
	assert.Empty(t, domain.ClassifyBiometrics(domain.BiometricSnapshot{HeartRateBPM: ptr(50)}))
}

func TestClassifyBiometrics_BMI(t *testing.T) {
	assert.Empty(t, domain.ClassifyBiometrics(domain.BiometricSnapshot{WeightKg: ptr(50), HeightCm: ptr(160)}))

	under := domain.ClassifyBiometrics(domain.BiometricSnapshot{WeightKg: ptr(45), HeightCm: ptr(160)})
	require.Len(t, under, 1)
	assert.Equal(t, domain.FieldBMI, under[0].Field)
	assert.Equal(t, domain.ConditionUnderweight, under[0].Condition)
	// unrounded in the value, one decimal in the message
	assert.InDelta(t, 17.578125, under[0].Value, 1e-9)
	assert.Contains(t, under[0].Message, "17.6")

	obese := domain.ClassifyBiometrics(domain.BiometricSnapshot{WeightKg: ptr(90), HeightCm: ptr(160)})
	require.Len(t, obese, 1)
	assert.Equal(t, domain.ConditionObesity, obese[0].Condition)
}

func TestClassifyBiometrics_BMINeedsBothValues(t *testing.T) {
	assert.Empty(t, domain.ClassifyBiometrics(domain.BiometricSnapshot{WeightKg: ptr(150)}))
	assert.Empty(t, domain.ClassifyBiometrics(domain.BiometricSnapshot{HeightCm: ptr(150)}))
}

func TestClassifyBiometrics_EmptySnapshot(t *testing.T) {
	findings := domain.ClassifyBiometrics(domain.BiometricSnapshot{})
	assert.NotNil(t, findings)
	assert.Empty(t, findings)
	assert.True(t, domain.BiometricSnapshot{}.IsEmpty())
}

func TestClassifyBiometrics_FieldOrder(t *testing.T) {
	findings := domain.ClassifyBiometrics(domain.BiometricSnapshot{
		SystolicBP:          ptr(145),
		DiastolicBP:         ptr(85),
		HeartRateBPM:        ptr(120),
		BloodSugarLevelMgDl: ptr(60),
		WeightKg:            ptr(100),
		HeightCm:            ptr(165),
	})

	require.Len(t, findings, 4)
	assert.Equal(t, domain.FieldBloodPressure, findings[0].Field)
	assert.Equal(t, domain.FieldBloodSugar, findings[1].Field)
	assert.Equal(t, domain.FieldHeartRate, findings[2].Field)
	assert.Equal(t, domain.FieldBMI, findings[3].Field)
	assert.False(t, domain.HasSevereFinding(findings))
}

func TestBMI(t *testing.T) {
	bmi, ok := domain.BMI(ptr(64), ptr(160))
	assert.True(t, ok)
	assert.InDelta(t, 25.0, bmi, 1e-9)

	_, ok = domain.BMI(ptr(64), ptr(0))
	assert.False(t, ok)
	_, ok = domain.BMI(nil, ptr(160))
	assert.False(t, ok)
}

func TestValidateSnapshot(t *testing.T) {
	assert.NoError(t, domain.ValidateSnapshot(domain.BiometricSnapshot{}))
	assert.NoError(t, domain.ValidateSnapshot(domain.BiometricSnapshot{SystolicBP: ptr(120), HeightCm: ptr(170)}))

	err := domain.ValidateSnapshot(domain.BiometricSnapshot{HeartRateBPM: ptr(900)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "heart_rate_bpm")

	assert.ErrorIs(t, domain.ValidateSnapshot(domain.BiometricSnapshot{WeightKg: ptr(-1)}), domain.ErrInvalidInput)
}
