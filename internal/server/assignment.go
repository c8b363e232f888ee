package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	assignmentdomain "github.com/smallbiznis/quotation/internal/assignment/domain"
)

const dateOnlyLayout = "2006-01-02"

type assignPackagesRequest struct {
	UserID         string                              `json:"userId"`
	UserName       string                              `json:"userName"`
	UserEmail      string                              `json:"userEmail"`
	Packages       []assignmentdomain.PackageSelection `json:"packages"`
	PaymentPlan    assignmentdomain.PaymentPlan        `json:"paymentPlan"`
	StartDate      string                              `json:"startDate"`
	Notes          string                              `json:"notes"`
	Customizations []string                            `json:"customizations"`
}

func (s *Server) AssignPackages(c *gin.Context) {
	var req assignPackagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		AbortWithError(c, newValidationError("startDate", "invalid_start_date", "startDate must be RFC 3339 or YYYY-MM-DD"))
		return
	}

	created, err := s.assignmentSvc.Assign(c.Request.Context(), assignmentdomain.AssignRequest{
		UserID:         strings.TrimSpace(req.UserID),
		UserName:       strings.TrimSpace(req.UserName),
		UserEmail:      strings.TrimSpace(req.UserEmail),
		Packages:       req.Packages,
		PaymentPlan:    req.PaymentPlan,
		StartDate:      startDate,
		Notes:          req.Notes,
		Customizations: req.Customizations,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if created == nil {
		created = []assignmentdomain.Assignment{}
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (s *Server) ListAssignments(c *gin.Context) {
	items, err := s.assignmentSvc.ListAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if items == nil {
		items = []assignmentdomain.Assignment{}
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) ListUserAssignments(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userId"))
	items, err := s.assignmentSvc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if items == nil {
		items = []assignmentdomain.Assignment{}
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetAssignment(c *gin.Context) {
	item, err := s.assignmentSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

type setMilestoneStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) SetMilestoneStatus(c *gin.Context) {
	var req setMilestoneStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.assignmentSvc.SetMilestoneStatus(c.Request.Context(), assignmentdomain.SetMilestoneStatusRequest{
		AssignmentID: strings.TrimSpace(c.Param("id")),
		MilestoneID:  strings.TrimSpace(c.Param("milestoneId")),
		Status:       assignmentdomain.MilestoneStatus(strings.ToLower(strings.TrimSpace(req.Status))),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

type recordPaymentRequest struct {
	Amount *float64 `json:"amount"`
}

func (s *Server) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Amount == nil {
		AbortWithError(c, newValidationError("amount", "required", "amount is required"))
		return
	}

	item, err := s.assignmentSvc.RecordPayment(c.Request.Context(), assignmentdomain.RecordPaymentRequest{
		AssignmentID: strings.TrimSpace(c.Param("id")),
		MilestoneID:  strings.TrimSpace(c.Param("milestoneId")),
		Amount:       *req.Amount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

type addAddOnRequest struct {
	AddOnID string `json:"addOnId"`
}

func (s *Server) AddAddOn(c *gin.Context) {
	var req addAddOnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	addOnID := strings.TrimSpace(req.AddOnID)
	if addOnID == "" {
		AbortWithError(c, newValidationError("addOnId", "required", "addOnId is required"))
		return
	}

	item, err := s.assignmentSvc.AddAddOn(c.Request.Context(), assignmentdomain.AddAddOnRequest{
		AssignmentID: strings.TrimSpace(c.Param("id")),
		AddOnID:      addOnID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

type updateNotesRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) UpdateNotes(c *gin.Context) {
	var req updateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.assignmentSvc.UpdateNotes(c.Request.Context(), assignmentdomain.UpdateNotesRequest{
		AssignmentID: strings.TrimSpace(c.Param("id")),
		Notes:        req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func parseOptionalDate(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed, nil
	}
	parsed, err := time.Parse(dateOnlyLayout, trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
