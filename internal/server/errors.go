package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	approvaldomain "github.com/sellside/closedesk/internal/approval/domain"
	auditdomain "github.com/sellside/closedesk/internal/audit/domain"
	calldomain "github.com/sellside/closedesk/internal/call/domain"
	commissiondomain "github.com/sellside/closedesk/internal/commission/domain"
	ruledomain "github.com/sellside/closedesk/internal/commissionrule/domain"
	identitydomain "github.com/sellside/closedesk/internal/identity/domain"
	leaddomain "github.com/sellside/closedesk/internal/lead/domain"
	productdomain "github.com/sellside/closedesk/internal/product/domain"
	"github.com/sellside/closedesk/pkg/db"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, approvaldomain.ErrInvalidState),
		errors.Is(err, ErrConflict),
		db.IsDuplicateKeyErr(err):
		return http.StatusConflict, errorPayload{
			Type:    "invalid_state",
			Message: "call is not an unreviewed sale",
		}
	case errors.Is(err, ruledomain.ErrRuleNotFound):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "rule_not_found",
			Message: "no commission rule or default rate matches",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, approvaldomain.ErrPersistence),
		errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isIdentityValidationError(err),
		isLeadValidationError(err),
		isProductValidationError(err),
		isCallValidationError(err),
		isCommissionValidationError(err),
		isRuleValidationError(err),
		isAuditValidationError(err),
		errors.Is(err, approvaldomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, approvaldomain.ErrCallNotFound),
		errors.Is(err, approvaldomain.ErrApproverNotFound),
		errors.Is(err, calldomain.ErrNotFound),
		errors.Is(err, identitydomain.ErrNotFound),
		errors.Is(err, leaddomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, ruledomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isIdentityValidationError(err error) bool {
	switch err {
	case identitydomain.ErrInvalidKind,
		identitydomain.ErrInvalidName,
		identitydomain.ErrInvalidEmail,
		identitydomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isLeadValidationError(err error) bool {
	switch err {
	case leaddomain.ErrInvalidName,
		leaddomain.ErrInvalidOriginator,
		leaddomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isProductValidationError(err error) bool {
	switch err {
	case productdomain.ErrInvalidName,
		productdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isCallValidationError(err error) bool {
	switch err {
	case calldomain.ErrInvalidCloser,
		calldomain.ErrInvalidLead,
		calldomain.ErrInvalidProduct,
		calldomain.ErrInvalidSaleValue,
		calldomain.ErrInvalidOutcome,
		calldomain.ErrInvalidStatus,
		calldomain.ErrInvalidID,
		calldomain.ErrInvalidPageToken:
		return true
	default:
		return false
	}
}

func isCommissionValidationError(err error) bool {
	switch err {
	case commissiondomain.ErrInvalidCall,
		commissiondomain.ErrInvalidRole,
		commissiondomain.ErrInvalidBeneficiary,
		commissiondomain.ErrInvalidAmount,
		commissiondomain.ErrInvalidStatus,
		commissiondomain.ErrInvalidPageToken:
		return true
	default:
		return false
	}
}

func isRuleValidationError(err error) bool {
	switch err {
	case ruledomain.ErrInvalidPercentage,
		ruledomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isAuditValidationError(err error) bool {
	switch err {
	case auditdomain.ErrInvalidAction,
		auditdomain.ErrInvalidPageToken,
		auditdomain.ErrInvalidTimeRange:
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog keys request log lines by coarse error class so
// dashboards can group failures without parsing messages.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	if vErr := asValidationErrors(err); vErr != nil {
		code := ""
		if len(vErr.Errors) > 0 {
			code = vErr.Errors[0].Code
		}
		return "validation_error", code
	}
	switch {
	case isValidationError(err):
		return "validation_error", validationErrorCode(err)
	case errors.Is(err, approvaldomain.ErrInvalidState), db.IsDuplicateKeyErr(err):
		return "invalid_state", "invalid_state"
	case errors.Is(err, ruledomain.ErrRuleNotFound):
		return "rule_not_found", "rule_not_found"
	case isNotFoundError(err):
		return "not_found", "not_found"
	default:
		return "internal_error", "internal_error"
	}
}
