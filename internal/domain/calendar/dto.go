package calendar

import (
	"strings"

	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/validator"
)

type CreateEventRequest struct {
	Date                  string   `json:"date"`
	EventType             string   `json:"event_type"`
	AppliesToAllEmployees *bool    `json:"applies_to_all_employees"`
	EmployeeIDs           []string `json:"employee_ids,omitempty"`
	Description           string   `json:"description"`
}

func (r *CreateEventRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}
	r.EventType = strings.ToUpper(strings.TrimSpace(r.EventType))
	if !validator.IsInSlice(r.EventType, EventTypeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "event_type",
			Message: "event_type must be one of: " + strings.Join(EventTypeValues, ", "),
		})
	}
	if r.AppliesToAllEmployees == nil {
		all := len(r.EmployeeIDs) == 0
		r.AppliesToAllEmployees = &all
	}
	if !*r.AppliesToAllEmployees && len(r.EmployeeIDs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_ids",
			Message: "employee_ids is required when applies_to_all_employees is false",
		})
	}
	for i, id := range r.EmployeeIDs {
		if !validator.IsValidEmployeeID(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "employee_ids[" + validator.Itoa(i) + "]",
				Message: "invalid employee id",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EventFilter struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	EventType *string `json:"event_type,omitempty"`
}

func (f *EventFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.StartDate != nil {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.EndDate != nil {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.EventType != nil && !validator.IsInSlice(*f.EventType, EventTypeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "event_type",
			Message: "event_type must be one of: " + strings.Join(EventTypeValues, ", "),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EventResponse struct {
	ID                    string   `json:"id"`
	Date                  string   `json:"date"`
	EventType             string   `json:"event_type"`
	AppliesToAllEmployees bool     `json:"applies_to_all_employees"`
	EmployeeIDs           []string `json:"employee_ids,omitempty"`
	Description           string   `json:"description"`
	Warning               *string  `json:"warning,omitempty"`
}

type ImportResponse struct {
	Imported int             `json:"imported"`
	Skipped  int             `json:"skipped"`
	Events   []EventResponse `json:"events"`
	Warning  *string         `json:"warning,omitempty"`
}
