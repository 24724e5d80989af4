package controllers

import (
	"net/http"
	"strconv"

	"coaching-platform-api/config"
	"coaching-platform-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func getDB() *gorm.DB { return config.DB }

func getCurrentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	userID, ok := value.(uint)
	return userID, ok
}

func getCurrentRoleID(c *gin.Context) (int, bool) {
	value, exists := c.Get("roleID")
	if !exists {
		return 0, false
	}
	roleID, ok := value.(int)
	return roleID, ok
}

// parseIDParam reads a positive numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// auditMeta captures the request context recorded in audit log rows.
func auditMeta(c *gin.Context) services.AuditMeta {
	return services.AuditMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
}

// respondError maps workflow errors onto the HTTP surface. Anything that is
// not a WorkflowError is a store failure and stays a generic 500.
func respondError(c *gin.Context, err error) {
	if wfErr, ok := services.AsWorkflowError(err); ok {
		c.JSON(wfErr.HTTPStatus(), gin.H{
			"success": false,
			"error":   wfErr.Message,
			"code":    wfErr.Code,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
}
