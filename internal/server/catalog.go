package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/quotation/internal/catalog/domain"
)

func (s *Server) ListServices(c *gin.Context) {
	items, err := s.catalogSvc.ListServices(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if items == nil {
		items = []catalogdomain.ServicePackage{}
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetService(c *gin.Context) {
	item, err := s.catalogSvc.GetService(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CreateService(c *gin.Context) {
	var req catalogdomain.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.catalogSvc.CreateService(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) ListAddOns(c *gin.Context) {
	items, err := s.catalogSvc.ListAddOns(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if items == nil {
		items = []catalogdomain.AddOn{}
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

// SaveAddOn serves both POST /addons and PUT /addons/:id; the path id wins.
func (s *Server) SaveAddOn(c *gin.Context) {
	var req catalogdomain.SaveAddOnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if id := strings.TrimSpace(c.Param("id")); id != "" {
		req.ID = id
	}

	item, err := s.catalogSvc.SaveAddOn(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DeleteAddOn(c *gin.Context) {
	if err := s.catalogSvc.DeleteAddOn(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
