package domain

import (
	"errors"

	catalogdomain "github.com/smallbiznis/quotation/internal/catalog/domain"
)

// ErrValidation matches every request validation failure via errors.Is.
var ErrValidation = errors.New("validation_error")

type validationError string

func (e validationError) Error() string { return string(e) }

func (e validationError) Is(target error) bool { return target == ErrValidation }

var (
	ErrInvalidUser            error = validationError("invalid_user")
	ErrMissingPackages        error = validationError("missing_packages")
	ErrInvalidActor           error = validationError("invalid_actor")
	ErrInvalidMilestoneStatus error = validationError("invalid_milestone_status")
	ErrInvalidPaymentAmount   error = validationError("invalid_payment_amount")
)

var (
	ErrAssignmentNotFound       = errors.New("assignment_not_found")
	ErrProjectMilestoneNotFound = errors.New("project_milestone_not_found")
	ErrPaymentMilestoneNotFound = errors.New("payment_milestone_not_found")
	ErrAddOnNotFound            = catalogdomain.ErrAddOnNotFound
	ErrServiceNotFound          = catalogdomain.ErrServiceNotFound

	ErrInvalidPaymentPlan     = errors.New("invalid_payment_plan")
	ErrDuplicateAddOn         = errors.New("duplicate_addon")
	ErrPaymentAlreadyRecorded = errors.New("payment_already_recorded")
	ErrPaidHistoryRewritten   = errors.New("paid_history_rewritten")
	ErrVersionConflict        = errors.New("version_conflict")
	ErrAssignmentExists       = errors.New("assignment_exists")
)

// IsNotFound reports whether err is one of the not-found kinds.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAssignmentNotFound) ||
		errors.Is(err, ErrProjectMilestoneNotFound) ||
		errors.Is(err, ErrPaymentMilestoneNotFound) ||
		errors.Is(err, ErrAddOnNotFound) ||
		errors.Is(err, ErrServiceNotFound)
}
