package domain

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Mood is the optional mood tag on a journal entry
type Mood string

const (
	MoodHappy     Mood = "happy"
	MoodCalm      Mood = "calm"
	MoodTired     Mood = "tired"
	MoodAnxious   Mood = "anxious"
	MoodSad       Mood = "sad"
	MoodIrritable Mood = "irritable"
)

// IsValid reports whether m is one of the known moods
func (m Mood) IsValid() bool {
	switch m {
	case MoodHappy, MoodCalm, MoodTired, MoodAnxious, MoodSad, MoodIrritable:
		return true
	}
	return false
}

// MaxImagesPerList bounds both the related and the ultrasound image lists
const MaxImagesPerList = 2

// MaxNoteLength bounds the free-text note
const MaxNoteLength = 5000

// SymptomRef is a symptom attached to a journal entry or listed in the catalog.
// Template symptoms are shared; custom symptoms belong to UserID.
type SymptomRef struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	IsTemplate bool       `json:"is_template"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
}

// JournalEntry is one week's journal for a pregnancy profile.
// At most one entry exists per (GrowthDataID, CurrentWeek).
type JournalEntry struct {
	ID               uuid.UUID         `json:"id"`
	GrowthDataID     uuid.UUID         `json:"growth_data_id"` // owning pregnancy profile
	UserID           uuid.UUID         `json:"user_id"`
	CurrentWeek      int               `json:"current_week"`
	Note             string            `json:"note"`
	Biometrics       BiometricSnapshot `json:"biometrics"`
	Mood             *Mood             `json:"mood,omitempty"`
	Symptoms         []SymptomRef      `json:"symptoms"`
	RelatedImages    []string          `json:"related_images"`
	UltrasoundImages []string          `json:"ultrasound_images"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`

	// Findings is never stored; RefreshFindings derives it from Biometrics
	Findings []AbnormalFinding `json:"findings"`
}

// RefreshFindings re-derives the abnormal findings for the entry's biometrics
func (e *JournalEntry) RefreshFindings() []AbnormalFinding {
	e.Findings = ClassifyBiometrics(e.Biometrics)
	return e.Findings
}

// ValidateEntryContent checks the fields an entry is created or updated with.
// The week itself is checked by the tracker.
func ValidateEntryContent(note string, mood *Mood, biometrics BiometricSnapshot, relatedImages, ultrasoundImages []string) error {
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return fmt.Errorf("%w: note must be at most %d characters", ErrInvalidInput, MaxNoteLength)
	}
	if mood != nil && !mood.IsValid() {
		return fmt.Errorf("%w: unknown mood %q", ErrInvalidInput, *mood)
	}
	if err := ValidateSnapshot(biometrics); err != nil {
		return err
	}
	if err := validateImageList("related_images", relatedImages); err != nil {
		return err
	}
	return validateImageList("ultrasound_images", ultrasoundImages)
}

func validateImageList(name string, images []string) error {
	if len(images) > MaxImagesPerList {
		return fmt.Errorf("%w: %s accepts at most %d images", ErrInvalidInput, name, MaxImagesPerList)
	}
	for _, raw := range images {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("%w: %s contains an invalid URL %q", ErrInvalidInput, name, raw)
		}
	}
	return nil
}

// WeekSet is the set of weeks that already have a journal entry
type WeekSet map[int]struct{}

// NewWeekSet builds a WeekSet from a list of weeks
func NewWeekSet(weeks ...int) WeekSet {
	set := make(WeekSet, len(weeks))
	for _, w := range weeks {
		set[w] = struct{}{}
	}
	return set
}

// Has reports whether week is documented
func (s WeekSet) Has(week int) bool {
	_, ok := s[week]
	return ok
}

// Sorted returns the weeks in ascending order
func (s WeekSet) Sorted() []int {
	weeks := make([]int, 0, len(s))
	for w := range s {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks
}

// journalableWeek caps the current week at the last week that can be journaled
func journalableWeek(currentWeek int) int {
	if currentWeek > LastJournalWeek {
		return LastJournalWeek
	}
	return currentWeek
}

// UndocumentedWeeks returns every week in [1, currentWeek] that has no entry,
// ascending. currentWeek is capped at 40.
func UndocumentedWeeks(currentWeek int, documented WeekSet) []int {
	last := journalableWeek(currentWeek)
	weeks := []int{}
	for w := 1; w <= last; w++ {
		if !documented.Has(w) {
			weeks = append(weeks, w)
		}
	}
	return weeks
}

// CanCreateEntryForWeek reports whether week is one of the undocumented weeks
func CanCreateEntryForWeek(week, currentWeek int, documented WeekSet) bool {
	return CheckWeekAvailable(week, currentWeek, documented) == nil
}

// CheckWeekAvailable explains why an entry cannot be created for week:
// ErrDuplicateWeek when it is already documented, ErrOutOfRange when it lies
// outside [1, min(currentWeek, 40)].
func CheckWeekAvailable(week, currentWeek int, documented WeekSet) error {
	if documented.Has(week) {
		return fmt.Errorf("%w %d", ErrDuplicateWeek, week)
	}
	last := journalableWeek(currentWeek)
	if week < 1 || week > last {
		return fmt.Errorf("%w: week %d is outside 1..%d", ErrOutOfRange, week, last)
	}
	return nil
}

var (
	ultrasoundWeeks = NewWeekSet(12, 20, 28, 36)
	bloodTestWeeks  = NewWeekSet(4, 12, 24, 28)
)

// IsUltrasoundWeek reports whether the ultrasound image field is offered for week
func IsUltrasoundWeek(week int) bool { return ultrasoundWeeks.Has(week) }

// IsBloodTestWeek reports whether the blood test fields are offered for week
func IsBloodTestWeek(week int) bool { return bloodTestWeeks.Has(week) }

// FormFields lists the optional form sections offered for a week. Advisory
// only: supplied fields are never rejected for being outside these weeks.
type FormFields struct {
	Week       int  `json:"week"`
	Ultrasound bool `json:"ultrasound"`
	BloodTest  bool `json:"blood_test"`
}

// FormFieldsForWeek returns the optional form sections for week
func FormFieldsForWeek(week int) FormFields {
	return FormFields{
		Week:       week,
		Ultrasound: IsUltrasoundWeek(week),
		BloodTest:  IsBloodTestWeek(week),
	}
}
