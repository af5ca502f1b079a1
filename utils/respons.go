package utils

import (
	"github.com/gin-gonic/gin"
)

// RespondJSON menulis body sukses. Field "success" diisi dari status code,
// sisanya diambil dari payload.
func RespondJSON(c *gin.Context, code int, payload gin.H) {
	body := gin.H{"success": code >= 200 && code < 300}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(code, body)
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, gin.H{
		"error": err.Error(),
	})
}

// RespondErrorWith is RespondError with extra fields next to "error".
func RespondErrorWith(c *gin.Context, code int, err error, extra gin.H) {
	body := gin.H{"error": err.Error()}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(code, body)
}
