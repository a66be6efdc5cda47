package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/IANDYI/pregnancy-service/internal/core/ports"
	"github.com/rs/zerolog"
)

// InsightHandler exposes the stateless calculators over HTTP
type InsightHandler struct {
	insightService ports.InsightService
	logger         zerolog.Logger
}

func NewInsightHandler(insightService ports.InsightService, logger zerolog.Logger) *InsightHandler {
	return &InsightHandler{
		insightService: insightService,
		logger:         logger.With().Str("component", "insight_handler").Logger(),
	}
}

// ClassifyResponse lists the findings for a submitted snapshot
type ClassifyResponse struct {
	Findings []domain.AbnormalFinding `json:"findings"`
	Severe   bool                     `json:"severe"`
}

// GestationResponse is a gestational age flattened with its display strings
type GestationResponse struct {
	Weeks               int              `json:"weeks"`
	Days                int              `json:"days"`
	Trimester           domain.Trimester `json:"trimester"`
	DaysUntilDue        int              `json:"days_until_due"`
	ProgressPercent     float64          `json:"progress_percent"`
	LastMenstrualPeriod string           `json:"last_menstrual_period"`
	DueDate             string           `json:"due_date"`
	DueDateDisplay      string           `json:"due_date_display"`
}

// Classify handles POST /insights/classify
func (h *InsightHandler) Classify(w http.ResponseWriter, r *http.Request) {
	c, ok := identify(w, r, h.logger)
	if !ok {
		return
	}

	var snapshot domain.BiometricSnapshot
	if err := decodeBody(r, &snapshot); err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	findings, err := h.insightService.Classify(snapshot)
	if err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}
	if findings == nil {
		findings = []domain.AbnormalFinding{}
	}

	writeJSON(w, http.StatusOK, ClassifyResponse{Findings: findings, Severe: domain.HasSevereFinding(findings)})
	logStructured(h.logger, c, r, http.StatusOK)
}

// Development handles GET /insights/development/{week}
func (h *InsightHandler) Development(w http.ResponseWriter, r *http.Request) {
	c, ok := identify(w, r, h.logger)
	if !ok {
		return
	}

	week, err := strconv.Atoi(r.PathValue("week"))
	if err != nil {
		writeError(w, h.logger, c, r, fmt.Errorf("%w: week must be an integer", domain.ErrInvalidInput))
		return
	}

	fact, err := h.insightService.Development(week)
	if err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	writeJSON(w, http.StatusOK, fact)
	logStructured(h.logger, c, r, http.StatusOK)
}

// Timeline handles GET /insights/timeline?week=&total=&radius=
// total and radius default to 40 and 4
func (h *InsightHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	c, ok := identify(w, r, h.logger)
	if !ok {
		return
	}

	q := r.URL.Query()
	if q.Get("week") == "" {
		writeError(w, h.logger, c, r, fmt.Errorf("%w: week is required", domain.ErrInvalidInput))
		return
	}
	week, err := queryInt(q.Get("week"), 0, "week")
	var total, radius int
	if err == nil {
		total, err = queryInt(q.Get("total"), domain.DefaultTimelineTotal, "total")
	}
	if err == nil {
		radius, err = queryInt(q.Get("radius"), domain.DefaultTimelineRadius, "radius")
	}
	if err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	timeline, err := h.insightService.Timeline(week, total, radius)
	if err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	writeJSON(w, http.StatusOK, timeline)
	logStructured(h.logger, c, r, http.StatusOK)
}

// Gestation handles GET /insights/gestation?lmp=yyyy/MM/dd
func (h *InsightHandler) Gestation(w http.ResponseWriter, r *http.Request) {
	c, ok := identify(w, r, h.logger)
	if !ok {
		return
	}

	lmp, err := domain.ParseAPIDate(r.URL.Query().Get("lmp"))
	if err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	age, err := h.insightService.Gestation(lmp)
	if err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	writeJSON(w, http.StatusOK, GestationResponse{
		Weeks:               age.Weeks,
		Days:                age.Days,
		Trimester:           age.Trimester,
		DaysUntilDue:        age.DaysUntilDue,
		ProgressPercent:     age.ProgressPercent,
		LastMenstrualPeriod: domain.FormatAPIDate(lmp),
		DueDate:             domain.FormatAPIDate(age.DueDate),
		DueDateDisplay:      domain.FormatDisplayDate(age.DueDate),
	})
	logStructured(h.logger, c, r, http.StatusOK)
}

func queryInt(raw string, def int, name string) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, name)
	}
	return n, nil
}
