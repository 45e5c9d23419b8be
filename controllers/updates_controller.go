// File: controllers/updates_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LiveUpdateServer upgrades a request to a dashboard event stream.
type LiveUpdateServer interface {
	ServeWs(w http.ResponseWriter, r *http.Request)
}

// LiveUpdates hands the request to the websocket hub.
func LiveUpdates(hub LiveUpdateServer) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub.ServeWs(c.Writer, c.Request)
	}
}
