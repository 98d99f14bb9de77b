package models

import (
	"fmt"
	"strings"
)

// Scenario is the questionnaire answer driving a recommendation request.
// It is immutable once received and fully determines genre selection
// and filter policy.
type Scenario struct {
	WithWhom string `json:"with_whom"`
	WhenTime string `json:"when_time"`
	Purpose  string `json:"purpose"`
	ShowOnly string `json:"show_only,omitempty"`
}

// show_only values.
const (
	ShowOnlyObscure  = "малоизвестное"
	ShowOnlyCult     = "культовое"
	ShowOnlyArthouse = "артхаус"
)

// Accepted values for each scenario field.
var (
	ValidWithWhom = []string{
		"Один",
		"С партнером (романтика)",
		"С партнером (экшн)",
		"С детьми",
		"С друзьями (чтобы обсудить)",
		"С друзьями (фоном)",
	}
	ValidWhenTime = []string{
		"Пятничный вечер",
		"Воскресное утро",
		"Ночью после работы",
		"В отпуске",
	}
	ValidPurpose = []string{
		"Отдохнуть мозгом",
		"Вдохновиться",
		"Пощекотать нервы",
		"Порефлексировать",
	}
	ValidShowOnly = []string{ShowOnlyObscure, ShowOnlyCult, ShowOnlyArthouse}
)

// MissingFieldsError reports mandatory scenario fields absent from a request.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// InvalidValueError reports a scenario field value outside its enumerated domain.
type InvalidValueError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for %s: %q (allowed: %s)",
		e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// Validate checks the scenario against the fixed field domains. Missing
// mandatory fields are aggregated into one MissingFieldsError; enum
// membership is then checked field by field and the first mismatch is
// reported. No side effects.
func (s Scenario) Validate() error {
	var missing []string
	if s.WithWhom == "" {
		missing = append(missing, "with_whom")
	}
	if s.WhenTime == "" {
		missing = append(missing, "when_time")
	}
	if s.Purpose == "" {
		missing = append(missing, "purpose")
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}

	checks := []struct {
		field   string
		value   string
		allowed []string
	}{
		{"with_whom", s.WithWhom, ValidWithWhom},
		{"when_time", s.WhenTime, ValidWhenTime},
		{"purpose", s.Purpose, ValidPurpose},
	}
	for _, c := range checks {
		if !contains(c.allowed, c.value) {
			return &InvalidValueError{Field: c.field, Value: c.value, Allowed: c.allowed}
		}
	}

	if s.ShowOnly != "" && !contains(ValidShowOnly, s.ShowOnly) {
		return &InvalidValueError{Field: "show_only", Value: s.ShowOnly, Allowed: ValidShowOnly}
	}

	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// ValidOptions returns the full set of accepted values per field, used in
// validation error responses and the options endpoint.
func ValidOptions() map[string][]string {
	return map[string][]string{
		"with_whom": ValidWithWhom,
		"when_time": ValidWhenTime,
		"purpose":   ValidPurpose,
		"show_only": ValidShowOnly,
	}
}
