package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type testCleanupRequest struct {
	Prefix string `json:"prefix"`
}

// TestCleanup removes fixture data created by integration suites. It is
// only routed outside production.
func (s *Server) TestCleanup(c *gin.Context) {
	if s.cfg.Environment == "production" {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req testCleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	prefix := strings.TrimSpace(req.Prefix)
	if prefix == "" {
		AbortWithError(c, newValidationError("prefix", "required", "prefix is required"))
		return
	}

	ctx := c.Request.Context()
	like := prefix + "%"

	var identityIDs []int64
	if err := s.db.WithContext(ctx).
		Table("identities").
		Select("id").
		Where("name LIKE ?", like).
		Scan(&identityIDs).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	if len(identityIDs) > 0 {
		if err := s.db.WithContext(ctx).Exec(
			`DELETE FROM commission_records WHERE beneficiary_id IN ?`, identityIDs,
		).Error; err != nil {
			AbortWithError(c, err)
			return
		}
		if err := s.db.WithContext(ctx).Exec(
			`DELETE FROM calls WHERE closer_id IN ?`, identityIDs,
		).Error; err != nil {
			AbortWithError(c, err)
			return
		}
		if err := s.db.WithContext(ctx).Exec(
			`DELETE FROM leads WHERE originator_id IN ?`, identityIDs,
		).Error; err != nil {
			AbortWithError(c, err)
			return
		}
		if err := s.db.WithContext(ctx).Exec(
			`DELETE FROM identities WHERE id IN ?`, identityIDs,
		).Error; err != nil {
			AbortWithError(c, err)
			return
		}
	}

	if err := s.db.WithContext(ctx).Exec(
		`DELETE FROM leads WHERE name LIKE ?`, like,
	).Error; err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.db.WithContext(ctx).Exec(
		`DELETE FROM products WHERE name LIKE ?`, like,
	).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
