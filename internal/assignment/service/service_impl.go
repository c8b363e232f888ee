package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quotation/internal/assignment/domain"
	"github.com/smallbiznis/quotation/internal/assignment/repository"
	auditdomain "github.com/smallbiznis/quotation/internal/audit/domain"
	catalogdomain "github.com/smallbiznis/quotation/internal/catalog/domain"
	"github.com/smallbiznis/quotation/internal/clock"
	"github.com/smallbiznis/quotation/internal/config"
	"github.com/smallbiznis/quotation/internal/observability/metrics"
	"github.com/smallbiznis/quotation/internal/pricing"
	"github.com/smallbiznis/quotation/internal/schedule"
	"github.com/smallbiznis/quotation/pkg/log/ctxlogger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	ActionAssignmentCreated      = "assignment.created"
	ActionMilestoneStatusChanged = "assignment.milestone_status_changed"
	ActionPaymentRecorded        = "assignment.payment_recorded"
	ActionAddOnAdded             = "assignment.addon_added"
	ActionNotesUpdated           = "assignment.notes_updated"

	auditTargetAssignment = "assignment"
)

type Params struct {
	fx.In

	Repo     domain.Repository
	Catalog  catalogdomain.Lookup
	Audit    auditdomain.Service `optional:"true"`
	Metrics  *metrics.Metrics    `optional:"true"`
	Schedule *config.ScheduleConfigHolder
	Clock    clock.Clock
	GenID    *snowflake.Node
	Log      *zap.Logger
}

type Service struct {
	repo     domain.Repository
	catalog  catalogdomain.Lookup
	audit    auditdomain.Service
	metrics  *metrics.Metrics
	schedule *config.ScheduleConfigHolder
	clock    clock.Clock
	genID    *snowflake.Node
	log      *zap.Logger
}

func New(p Params) domain.Service {
	return &Service{
		repo:     p.Repo,
		catalog:  p.Catalog,
		audit:    p.Audit,
		metrics:  p.Metrics,
		schedule: p.Schedule,
		clock:    p.Clock,
		genID:    p.GenID,
		log:      p.Log.Named("assignment.service"),
	}
}

// Assign creates one assignment per resolvable package in the request.
// Unknown package and add-on ids are skipped, so the result may be empty.
// Repeated add-on ids within a package are attached once. When a write fails
// the assignments already stored are returned alongside the error.
func (s *Service) Assign(ctx context.Context, req domain.AssignRequest) ([]domain.Assignment, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	if len(req.Packages) == 0 {
		return nil, domain.ErrMissingPackages
	}
	actorID := s.actor(ctx, req.ActorID)
	if actorID == "" {
		return nil, domain.ErrInvalidActor
	}

	plan := req.PaymentPlan
	if len(plan.Percentages) == 0 && plan.Installments > 0 {
		plan.Percentages = schedule.SplitPercentages(plan.Installments)
	}
	if err := schedule.ValidatePlan(plan); err != nil {
		return nil, err
	}

	services, err := s.catalog.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	servicesByID := make(map[string]catalogdomain.ServicePackage, len(services))
	for _, svc := range services {
		servicesByID[svc.ID] = svc
	}

	var addOnsByID map[string]catalogdomain.AddOn
	if requestsAddOns(req.Packages) {
		addOns, err := s.catalog.ListAddOns(ctx)
		if err != nil {
			return nil, err
		}
		addOnsByID = make(map[string]catalogdomain.AddOn, len(addOns))
		for _, addOn := range addOns {
			addOnsByID[addOn.ID] = addOn
		}
	}

	cfg := s.schedule.Get()
	now := s.clock.Now()
	startDate := now
	if req.StartDate != nil && !req.StartDate.IsZero() {
		startDate = req.StartDate.UTC()
	}
	customizations := trimAll(req.Customizations)

	log := ctxlogger.WithContext(ctx, s.log)
	created := make([]domain.Assignment, 0, len(req.Packages))
	for _, selection := range req.Packages {
		svc, ok := servicesByID[strings.TrimSpace(selection.PackageID)]
		if !ok {
			log.Debug("skipping unknown package", zap.String("package_id", selection.PackageID))
			continue
		}

		selected := make([]catalogdomain.AddOn, 0, len(selection.AddOnIDs))
		seen := make(map[string]struct{}, len(selection.AddOnIDs))
		for _, addOnID := range selection.AddOnIDs {
			addOnID = strings.TrimSpace(addOnID)
			if _, dup := seen[addOnID]; dup {
				log.Debug("skipping repeated add-on", zap.String("addon_id", addOnID))
				continue
			}
			seen[addOnID] = struct{}{}

			addOn, ok := addOnsByID[addOnID]
			if !ok {
				log.Debug("skipping unknown add-on", zap.String("addon_id", addOnID))
				continue
			}
			addOn.Selected = true
			selected = append(selected, addOn)
		}

		totalPrice := pricing.Total(svc.Price, selected)
		deliveryDays := schedule.DeliveryDays(svc.DeliveryTime, cfg.DefaultDeliveryDays)

		assignment := domain.Assignment{
			ID:                     s.genID.Generate().String(),
			UserID:                 userID,
			UserName:               strings.TrimSpace(req.UserName),
			UserEmail:              strings.TrimSpace(req.UserEmail),
			PackageID:              svc.ID,
			PackageCategory:        svc.Category,
			PackageName:            svc.Name,
			PackageDescription:     svc.Description,
			BasePrice:              svc.Price,
			SelectedAddOns:         selected,
			TotalPrice:             totalPrice,
			Progress:               0,
			Status:                 domain.StatusAssigned,
			ProjectMilestones:      schedule.ProjectMilestones(&deliveryDays, now),
			PaymentMilestones:      schedule.PaymentSchedule(totalPrice, plan.Percentages, now, cfg.InstallmentCadenceDays),
			TotalPaid:              0,
			RemainingBalance:       totalPrice,
			AssignedDate:           now,
			StartDate:              startDate,
			ExpectedCompletionDate: now.AddDate(0, 0, deliveryDays),
			Notes:                  strings.TrimSpace(req.Notes),
			Customizations:         customizations,
			CreatedAt:              now,
			UpdatedAt:              now,
			CreatedBy:              actorID,
		}
		assignment.RefreshNextPayment()

		if err := s.repo.Insert(ctx, &assignment); err != nil {
			if len(created) > 0 {
				log.Error("assign stopped after partial insert",
					zap.String("user_id", userID),
					zap.Strings("created_ids", assignmentIDs(created)),
					zap.Error(err),
				)
			}
			return created, fmt.Errorf("insert assignment for package %s: %w", svc.ID, err)
		}
		created = append(created, assignment)

		s.metrics.RecordAssignmentsCreated(ctx, assignment.PackageCategory, 1)
		s.auditLog(ctx, actorID, ActionAssignmentCreated, assignment.ID, map[string]any{
			"userId":      assignment.UserID,
			"userEmail":   assignment.UserEmail,
			"packageId":   assignment.PackageID,
			"totalPrice":  assignment.TotalPrice,
			"addOnCount":  len(assignment.SelectedAddOns),
			"percentages": plan.Percentages,
		})
		log.Info("assignment created",
			zap.String("assignment_id", assignment.ID),
			zap.String("user_id", assignment.UserID),
			zap.String("package_id", assignment.PackageID),
			zap.Float64("total_price", assignment.TotalPrice),
		)
	}

	if len(created) == 0 {
		log.Info("no assignments created", zap.String("user_id", userID), zap.Int("requested", len(req.Packages)))
	}
	return created, nil
}

func (s *Service) SetMilestoneStatus(ctx context.Context, req domain.SetMilestoneStatusRequest) (*domain.Assignment, error) {
	if !req.Status.Valid() {
		return nil, domain.ErrInvalidMilestoneStatus
	}

	updated, err := s.mutate(ctx, "set_milestone_status", req.AssignmentID, func(a *domain.Assignment) error {
		return a.ApplyMilestoneStatus(strings.TrimSpace(req.MilestoneID), req.Status, s.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordMilestoneUpdate(ctx, string(req.Status), string(updated.Status))
	s.auditLog(ctx, s.actor(ctx, req.ActorID), ActionMilestoneStatusChanged, updated.ID, map[string]any{
		"milestoneId": req.MilestoneID,
		"status":      string(req.Status),
		"progress":    updated.Progress,
		"assignment":  string(updated.Status),
	})
	ctxlogger.WithContext(ctx, s.log).Info("milestone status updated",
		zap.String("assignment_id", updated.ID),
		zap.String("milestone_id", req.MilestoneID),
		zap.String("status", string(req.Status)),
		zap.Int("progress", updated.Progress),
	)
	return updated, nil
}

func (s *Service) RecordPayment(ctx context.Context, req domain.RecordPaymentRequest) (*domain.Assignment, error) {
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidPaymentAmount
	}

	updated, err := s.mutate(ctx, "record_payment", req.AssignmentID, func(a *domain.Assignment) error {
		return a.ApplyPayment(strings.TrimSpace(req.MilestoneID), req.Amount, s.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPayment(ctx, updated.PackageCategory, req.Amount)
	s.auditLog(ctx, s.actor(ctx, req.ActorID), ActionPaymentRecorded, updated.ID, map[string]any{
		"milestoneId":      req.MilestoneID,
		"amount":           req.Amount,
		"totalPaid":        updated.TotalPaid,
		"remainingBalance": updated.RemainingBalance,
	})
	ctxlogger.WithContext(ctx, s.log).Info("payment recorded",
		zap.String("assignment_id", updated.ID),
		zap.String("milestone_id", req.MilestoneID),
		zap.Float64("amount", req.Amount),
		zap.Float64("remaining_balance", updated.RemainingBalance),
	)
	return updated, nil
}

func (s *Service) AddAddOn(ctx context.Context, req domain.AddAddOnRequest) (*domain.Assignment, error) {
	addOn, err := s.catalog.GetAddOn(ctx, strings.TrimSpace(req.AddOnID))
	if err != nil {
		return nil, err
	}

	updated, err := s.mutate(ctx, "add_addon", req.AssignmentID, func(a *domain.Assignment) error {
		return a.ApplyAddOn(*addOn, s.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAddOnAdded(ctx, addOn.Category)
	s.auditLog(ctx, s.actor(ctx, req.ActorID), ActionAddOnAdded, updated.ID, map[string]any{
		"addOnId":    addOn.ID,
		"price":      addOn.Price,
		"totalPrice": updated.TotalPrice,
	})
	ctxlogger.WithContext(ctx, s.log).Info("add-on attached",
		zap.String("assignment_id", updated.ID),
		zap.String("addon_id", addOn.ID),
		zap.Float64("total_price", updated.TotalPrice),
	)
	return updated, nil
}

func (s *Service) UpdateNotes(ctx context.Context, req domain.UpdateNotesRequest) (*domain.Assignment, error) {
	notes := strings.TrimSpace(req.Notes)
	updated, err := s.mutate(ctx, "update_notes", req.AssignmentID, func(a *domain.Assignment) error {
		a.Notes = notes
		a.UpdatedAt = s.clock.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditLog(ctx, s.actor(ctx, req.ActorID), ActionNotesUpdated, updated.ID, nil)
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Assignment, error) {
	item, err := s.repo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrAssignmentNotFound
	}
	return item, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Assignment, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Assignment, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) mutate(ctx context.Context, operation, assignmentID string, apply func(*domain.Assignment) error) (*domain.Assignment, error) {
	id := strings.TrimSpace(assignmentID)
	if id == "" {
		return nil, domain.ErrAssignmentNotFound
	}

	attempts := s.schedule.Get().MaxConflictRetries
	updated, err := repository.Mutate(ctx, s.repo, id, attempts, apply)
	if errors.Is(err, domain.ErrVersionConflict) {
		s.metrics.RecordVersionConflict(ctx, operation)
		ctxlogger.WithContext(ctx, s.log).Warn("assignment write lost to concurrent update",
			zap.String("assignment_id", id),
			zap.String("operation", operation),
			zap.Int("attempts", attempts),
		)
	}
	return updated, err
}

func (s *Service) actor(ctx context.Context, actorID string) string {
	if trimmed := strings.TrimSpace(actorID); trimmed != "" {
		return trimmed
	}
	return ctxlogger.ActorFromContext(ctx)
}

func (s *Service) auditLog(ctx context.Context, actorID, action, assignmentID string, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.AuditLog(ctx, actorID, action, auditTargetAssignment, assignmentID, metadata); err != nil {
		ctxlogger.WithContext(ctx, s.log).Warn("audit log failed",
			zap.String("action", action),
			zap.String("assignment_id", assignmentID),
			zap.Error(err),
		)
	}
}

func requestsAddOns(selections []domain.PackageSelection) bool {
	for _, selection := range selections {
		if len(selection.AddOnIDs) > 0 {
			return true
		}
	}
	return false
}

func assignmentIDs(items []domain.Assignment) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
