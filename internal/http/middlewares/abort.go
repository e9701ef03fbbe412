package middlewares

import "github.com/gin-gonic/gin"

// abortWithError writes the API error body and stops the chain.
func abortWithError(c *gin.Context, status int, code, message string) {
	body := gin.H{
		"error": message,
		"code":  code,
	}
	if id := c.GetString(CtxRequestID); id != "" {
		body["requestId"] = id
	}
	c.AbortWithStatusJSON(status, body)
}
