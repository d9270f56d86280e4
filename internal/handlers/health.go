package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Ready checks if the service is ready to accept requests
// @Summary      Checks if the service is ready to accept requests
// @Id           Ready
// @Tags         Private
// @Produce      json
// @Success      200
// @Router       /ready [get]
func (api *API) Ready(c *gin.Context) {
	api.Live(c)
}

// Live checks if the service is live
// @Summary      Checks if the service is live
// @Id           Live
// @Tags         Private
// @Produce      json
// @Success      200
// @Router       /live [get]
func (api *API) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "UP",
	})
}
