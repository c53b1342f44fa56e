package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	approvaldomain "github.com/sellside/closedesk/internal/approval/domain"
)

type approvalDecisionRequest struct {
	AdminID string `json:"admin_id"`
}

func (s *Server) ApproveCall(c *gin.Context) {
	var req approvalDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.approvalSvc.Approve(c.Request.Context(), approvaldomain.ApproveRequest{
		CallID:  strings.TrimSpace(c.Param("id")),
		AdminID: strings.TrimSpace(req.AdminID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RejectCall(c *gin.Context) {
	var req approvalDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.approvalSvc.Reject(c.Request.Context(), approvaldomain.RejectRequest{
		CallID:  strings.TrimSpace(c.Param("id")),
		AdminID: strings.TrimSpace(req.AdminID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
