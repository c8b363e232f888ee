package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	assignmentdomain "github.com/smallbiznis/quotation/internal/assignment/domain"
	auditdomain "github.com/smallbiznis/quotation/internal/audit/domain"
	catalogdomain "github.com/smallbiznis/quotation/internal/catalog/domain"
	"github.com/smallbiznis/quotation/internal/pricing"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrRateLimited    = errors.New("rate_limited")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if code := validationErrorCode(err); code != "" {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: err.Error(),
				},
			},
		}
	}

	switch {
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: notFoundMessage(err),
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyError returns the type and code logged for a failed request.
func classifyError(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return payload.Type, "internal_error"
	case len(payload.Errors) > 0:
		return payload.Type, payload.Errors[0].Code
	default:
		return payload.Type, payload.Message
	}
}

// validationErrorCode returns the stable code for request errors, or "" when
// err is not a validation failure.
func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, assignmentdomain.ErrInvalidPaymentPlan):
		return assignmentdomain.ErrInvalidPaymentPlan.Error()
	case errors.Is(err, pricing.ErrInvalidPrice):
		return pricing.ErrInvalidPrice.Error()
	case errors.Is(err, catalogdomain.ErrInvalidName),
		errors.Is(err, catalogdomain.ErrInvalidCategory),
		errors.Is(err, catalogdomain.ErrInvalidDeliveryTime),
		errors.Is(err, auditdomain.ErrInvalidAction),
		errors.Is(err, auditdomain.ErrInvalidTarget):
		return rootCode(err)
	case errors.Is(err, assignmentdomain.ErrValidation):
		return rootCode(err)
	default:
		return ""
	}
}

// rootCode strips the wrapping context added with fmt.Errorf("...: %w").
func rootCode(err error) string {
	msg := err.Error()
	if idx := strings.LastIndex(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return msg
}

func validationErrorField(code string) string {
	switch code {
	case "missing_packages":
		return "packages"
	case "invalid_request":
		return "request"
	case "invalid_payment_amount":
		return "amount"
	case "invalid_milestone_status":
		return "status"
	case "invalid_actor":
		return "actor"
	case "invalid_user":
		return "userId"
	}
	return strings.TrimPrefix(code, "invalid_")
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		assignmentdomain.IsNotFound(err) ||
		errors.Is(err, gorm.ErrRecordNotFound)
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, assignmentdomain.ErrAssignmentNotFound):
		return "assignment not found"
	case errors.Is(err, assignmentdomain.ErrProjectMilestoneNotFound):
		return "project milestone not found"
	case errors.Is(err, assignmentdomain.ErrPaymentMilestoneNotFound):
		return "payment milestone not found"
	case errors.Is(err, catalogdomain.ErrAddOnNotFound):
		return "add-on not found"
	case errors.Is(err, catalogdomain.ErrServiceNotFound):
		return "service not found"
	default:
		return "not found"
	}
}

func isConflictError(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, assignmentdomain.ErrDuplicateAddOn) ||
		errors.Is(err, assignmentdomain.ErrPaymentAlreadyRecorded) ||
		errors.Is(err, assignmentdomain.ErrPaidHistoryRewritten) ||
		errors.Is(err, assignmentdomain.ErrVersionConflict) ||
		errors.Is(err, assignmentdomain.ErrAssignmentExists)
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, assignmentdomain.ErrDuplicateAddOn):
		return "add-on already attached"
	case errors.Is(err, assignmentdomain.ErrPaymentAlreadyRecorded):
		return "payment already recorded"
	case errors.Is(err, assignmentdomain.ErrVersionConflict):
		return "assignment was modified concurrently"
	default:
		return "conflict"
	}
}
