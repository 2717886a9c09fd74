package handlers

import "github.com/gin-gonic/gin"

func Healthcheck(c *gin.Context) {
	RespondOK(c, gin.H{"status": "ok"})
}
