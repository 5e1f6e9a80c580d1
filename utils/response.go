package utils

import (
	"github.com/gin-gonic/gin"
)

// Error codes shared across all endpoints. The response body is always
// {code, message, details?} so the admin console can branch on code.
const (
	CodeBadRequest                = "BAD_REQUEST"
	CodeUnauthorized              = "UNAUTHORIZED"
	CodeForbidden                 = "FORBIDDEN"
	CodeConflict                  = "CONFLICT"
	CodeInternalError             = "INTERNAL_ERROR"
	CodeSiteNotFound              = "SITE_NOT_FOUND"
	CodeReportNotFound            = "REPORT_NOT_FOUND"
	CodeInvalidReportTransition   = "INVALID_REPORT_STATUS_TRANSITION"
	CodeInvalidSiteTransition     = "INVALID_SITE_STATUS_TRANSITION"
	CodeInvalidDuplicateSelection = "INVALID_DUPLICATE_SELECTION"
	CodeEmptyMergeSelection       = "EMPTY_MERGE_SELECTION"
	CodePrimaryReportNotMergeable = "PRIMARY_REPORT_NOT_MERGEABLE"
)

// ErrorResponse is the uniform error envelope
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SendError sends the uniform error envelope
func SendError(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// SendErrorDetails sends the error envelope with a structured details
// payload identifying what was invalid
func SendErrorDetails(c *gin.Context, statusCode int, code string, message string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// ValidateRequestBody binds the JSON body and reports a 400 on failure
func ValidateRequestBody(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		SendError(c, 400, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
