package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	calldomain "github.com/sellside/closedesk/internal/call/domain"
)

type logCallRequest struct {
	LeadID     string `json:"lead_id"`
	CloserID   string `json:"closer_id"`
	ProductID  string `json:"product_id"`
	SaleValue  string `json:"sale_value"`
	Outcome    string `json:"outcome"`
	OccurredAt string `json:"occurred_at"`
}

func (s *Server) LogCall(c *gin.Context) {
	var req logCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	occurredAt, err := parseOptionalTime(req.OccurredAt, false)
	if err != nil {
		AbortWithError(c, newValidationError("occurred_at", "invalid_occurred_at", "invalid occurred_at"))
		return
	}

	resp, err := s.callSvc.Log(c.Request.Context(), calldomain.LogCallRequest{
		LeadID:     strings.TrimSpace(req.LeadID),
		CloserID:   strings.TrimSpace(req.CloserID),
		ProductID:  strings.TrimSpace(req.ProductID),
		SaleValue:  strings.TrimSpace(req.SaleValue),
		Outcome:    strings.TrimSpace(req.Outcome),
		OccurredAt: occurredAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCallByID(c *gin.Context) {
	resp, err := s.callSvc.GetByID(c.Request.Context(), calldomain.GetCallRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCalls(c *gin.Context) {
	var query struct {
		PageToken      string `form:"page_token"`
		PageSize       int32  `form:"page_size"`
		Outcome        string `form:"outcome"`
		ApprovalStatus string `form:"approval_status"`
		CloserID       string `form:"closer_id"`
		OccurredFrom   string `form:"occurred_from"`
		OccurredTo     string `form:"occurred_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	occurredFrom, err := parseOptionalTime(query.OccurredFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("occurred_from", "invalid_occurred_from", "invalid occurred_from"))
		return
	}
	occurredTo, err := parseOptionalTime(query.OccurredTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("occurred_to", "invalid_occurred_to", "invalid occurred_to"))
		return
	}

	resp, err := s.callSvc.List(c.Request.Context(), calldomain.ListCallRequest{
		PageToken:      strings.TrimSpace(query.PageToken),
		PageSize:       query.PageSize,
		Outcome:        strings.TrimSpace(query.Outcome),
		ApprovalStatus: strings.TrimSpace(query.ApprovalStatus),
		CloserID:       strings.TrimSpace(query.CloserID),
		OccurredFrom:   occurredFrom,
		OccurredTo:     occurredTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Calls, "page_info": resp.PageInfo})
}
