package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/quotation/internal/audit/domain"
)

func (s *Server) ListAssignmentAuditLogs(c *gin.Context) {
	if s.auditSvc == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	items, err := s.auditSvc.ListByTarget(c.Request.Context(), "assignment", strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if items == nil {
		items = []auditdomain.AuditLog{}
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}
