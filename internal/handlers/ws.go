package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskforge-dev/taskforge/internal/utils"
	"github.com/taskforge-dev/taskforge/internal/ws"
)

// WebSocket upgrades the connection and binds it to the authenticated user
// so notification pushes can reach them.
func WebSocket(c *gin.Context) {
	userID, err := utils.GetCurrentUserID(c)

	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	conn, err := ws.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	ws.ServeConnection(userID, conn)
}
