package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	commissiondomain "github.com/sellside/closedesk/internal/commission/domain"
)

func (s *Server) ListCommissions(c *gin.Context) {
	var query struct {
		PageToken     string `form:"page_token"`
		PageSize      int32  `form:"page_size"`
		CallID        string `form:"call_id"`
		BeneficiaryID string `form:"beneficiary_id"`
		Status        string `form:"status"`
		CreatedFrom   string `form:"created_from"`
		CreatedTo     string `form:"created_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	createdFrom, err := parseOptionalTime(query.CreatedFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("created_from", "invalid_created_from", "invalid created_from"))
		return
	}
	createdTo, err := parseOptionalTime(query.CreatedTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("created_to", "invalid_created_to", "invalid created_to"))
		return
	}

	resp, err := s.commissionSvc.List(c.Request.Context(), commissiondomain.ListCommissionRequest{
		PageToken:     strings.TrimSpace(query.PageToken),
		PageSize:      query.PageSize,
		CallID:        strings.TrimSpace(query.CallID),
		BeneficiaryID: strings.TrimSpace(query.BeneficiaryID),
		Status:        strings.TrimSpace(query.Status),
		CreatedFrom:   createdFrom,
		CreatedTo:     createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Commissions, "page_info": resp.PageInfo})
}
