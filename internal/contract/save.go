package contract

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/alexanderramin/kurva/internal/app"
	"github.com/alexanderramin/kurva/internal/domain"
)

type SaveRequest = app.SaveRequest

type SaveResponse = app.SaveResponse

type SaveErrorCode = app.SaveErrorCode

const (
	SaveErrInvalidPayload SaveErrorCode = app.SaveErrInvalidPayload
	SaveErrValidation     SaveErrorCode = app.SaveErrValidation
	SaveErrPersistence    SaveErrorCode = app.SaveErrPersistence
)

type SaveError = app.SaveError

type Issue = app.Issue

type ValidationError = app.ValidationError

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func payloadValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// NewSaveRequest wraps canonical records for a project's scale and week end.
func NewSaveRequest(records []domain.CanonicalRecord, mode domain.TimeScale, weekEnd time.Weekday) SaveRequest {
	return SaveRequest{Assignments: records, Mode: mode, WeekEndDay: weekEnd}
}

// ValidateSaveRequest checks the payload's struct rules and returns a
// *ValidationError naming every offending record.
func ValidateSaveRequest(req SaveRequest) error {
	err := payloadValidator().Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &SaveError{Code: SaveErrInvalidPayload, Message: err.Error()}
	}

	ve := &ValidationError{}
	for _, fe := range fieldErrs {
		ve.Issues = append(ve.Issues, Issue{
			Message:    fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()),
			WorkItemID: recordOwner(req, fe),
		})
	}
	return ve
}

// recordOwner resolves the work item of an Assignments[i] field error.
func recordOwner(req SaveRequest, fe validator.FieldError) string {
	var idx int
	if _, err := fmt.Sscanf(fe.Namespace(), "SaveRequest.Assignments[%d]", &idx); err != nil {
		return ""
	}
	if idx < 0 || idx >= len(req.Assignments) {
		return ""
	}
	return req.Assignments[idx].WorkItemID
}
