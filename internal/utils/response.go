package utils

import "github.com/gin-gonic/gin"

// Success writes a 200 response with status "success" merged into the body.
func Success(c *gin.Context, data gin.H) {
	data["status"] = "success"
	c.JSON(200, data)
}

func Error(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{
		"error": msg,
	})
}
