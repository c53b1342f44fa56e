package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	ruledomain "github.com/sellside/closedesk/internal/commissionrule/domain"
)

type createCommissionRuleRequest struct {
	Role        string `json:"role"`
	ProductLine string `json:"product_line"`
	Percentage  string `json:"percentage"`
}

func (s *Server) CreateCommissionRule(c *gin.Context) {
	var req createCommissionRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ruleSvc.Create(c.Request.Context(), ruledomain.CreateRuleRequest{
		Role:        strings.TrimSpace(req.Role),
		ProductLine: strings.TrimSpace(req.ProductLine),
		Percentage:  strings.TrimSpace(req.Percentage),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeactivateCommissionRule(c *gin.Context) {
	if err := s.ruleSvc.Deactivate(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ListCommissionRules(c *gin.Context) {
	var query struct {
		Role string `form:"role"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ruleSvc.List(c.Request.Context(), ruledomain.ListRuleRequest{
		Role: strings.TrimSpace(query.Role),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCommissionRuleDefaults(c *gin.Context) {
	resp, err := s.ruleSvc.ListDefaults(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
