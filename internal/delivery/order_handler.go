package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/domain"
	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/usecase"
)

type OrderHandler struct {
	orders *usecase.OrderService
	log    *logrus.Logger
}

func NewOrderHandler(orders *usecase.OrderService, log *logrus.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

// RegisterRoutes installs the authenticated order routes. Tracking by
// order number is public and registered separately.
func (h *OrderHandler) RegisterRoutes(router gin.IRouter, admin gin.HandlerFunc) {
	group := router.Group("/orders")
	{
		group.POST("/place", h.PlaceOrder)
		group.GET("/my", h.MyOrders)
		group.GET("", admin, h.AllOrders)
		group.PUT("/:orderId/status", admin, h.UpdateStatus)
		group.POST("/:orderId/ship", admin, h.RetryShipment)
	}
}

func (h *OrderHandler) RegisterPublicRoutes(router gin.IRouter) {
	router.GET("/orders/track/:orderNumber", h.TrackOrder)
}

type placeOrderRequest struct {
	RecipientName   string `json:"recipientName"`
	PhoneNumber     string `json:"phoneNumber"`
	Street          string `json:"street"`
	City            string `json:"city"`
	State           string `json:"state"`
	PostalCode      string `json:"postalCode"`
	Country         string `json:"country"`
	RazorpayOrderID string `json:"razorpayOrderId"`
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	user := CurrentUser(c)
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	address := domain.Address{
		RecipientName: req.RecipientName,
		PhoneNumber:   req.PhoneNumber,
		Street:        req.Street,
		City:          req.City,
		State:         req.State,
		PostalCode:    req.PostalCode,
		Country:       req.Country,
	}
	order, err := h.orders.PlaceOrder(user.ID, address, req.RazorpayOrderID)
	if err != nil {
		h.log.Warnf("Place order failed for user %s: %v", user.ID, err)
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusCreated, "Order placed successfully", order)
}

func (h *OrderHandler) MyOrders(c *gin.Context) {
	user := CurrentUser(c)
	orders, err := h.orders.MyOrders(user.ID)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) AllOrders(c *gin.Context) {
	orders, err := h.orders.AllOrders()
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	status := domain.OrderStatus(c.Query("status"))
	order, err := h.orders.UpdateStatus(c.Param("orderId"), status)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	h.log.Infof("Order %s status forced to %s", order.ID, order.Status)
	SuccessResponse(c, http.StatusOK, "Order status updated", order)
}

func (h *OrderHandler) RetryShipment(c *gin.Context) {
	order, err := h.orders.RetryShipment(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Shipment attempt finished", order)
}

func (h *OrderHandler) TrackOrder(c *gin.Context) {
	order, err := h.orders.TrackByNumber(c.Param("orderNumber"))
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	resp := gin.H{
		"orderNumber": order.OrderNumber,
		"status":      order.Status,
	}
	if order.ShiprocketTrackingURL != "" {
		resp["trackingUrl"] = order.ShiprocketTrackingURL
		resp["awb"] = order.ShiprocketAwb
		resp["message"] = "You can track your shipment using the provided URL."
	} else {
		resp["message"] = "Shipment not yet created. Please check again later."
	}
	SuccessResponse(c, http.StatusOK, "Order tracked", resp)
}
