package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// internalError answers 500 with the raw failure text, no structured body.
func internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.String(http.StatusInternalServerError, "Internal server error: %s", err.Error())
}
