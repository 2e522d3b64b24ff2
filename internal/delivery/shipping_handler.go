package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/infrastructure/shiprocket"
)

type ShippingHandler struct {
	client *shiprocket.Client
	log    *logrus.Logger
}

func NewShippingHandler(client *shiprocket.Client, log *logrus.Logger) *ShippingHandler {
	return &ShippingHandler{client: client, log: log}
}

// RegisterAdminRoutes mounts the shipment listing endpoint. Admin only.
func (h *ShippingHandler) RegisterAdminRoutes(router gin.IRouter) {
	router.GET("/shipments", h.ListShipments)
}

func (h *ShippingHandler) ListShipments(c *gin.Context) {
	shipments := h.client.ListShipments(c.Request.Context())
	SuccessResponse(c, http.StatusOK, "Shipments retrieved successfully", shipments)
}
