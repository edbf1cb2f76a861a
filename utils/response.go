package utils

import "github.com/gin-gonic/gin"

func RespondWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}

func RespondWithErrorData(c *gin.Context, status int, message string, extra gin.H) {
	body := gin.H{"success": false, "error": message}
	for k, v := range extra {
		body[k] = v
	}
	c.AbortWithStatusJSON(status, body)
}
