package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/usecase"
)

type PaymentHandler struct {
	orders *usecase.OrderService
	keyID  string
	log    *logrus.Logger
}

func NewPaymentHandler(orders *usecase.OrderService, razorpayKeyID string, log *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{orders: orders, keyID: razorpayKeyID, log: log}
}

func (h *PaymentHandler) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/payment")
	{
		group.POST("/create-order", h.CreateOrder)
		group.POST("/verify", h.Verify)
	}
}

type createPaymentRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Missing required field: orderId")
		return
	}
	order, intent, err := h.orders.CreatePaymentOrder(c.Request.Context(), req.OrderID)
	if err != nil {
		h.log.Errorf("Failed to create payment order for %s: %v", req.OrderID, err)
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Payment order created", gin.H{
		"key":          h.keyID,
		"amount":       intent.Amount,
		"currency":     intent.Currency,
		"orderId":      intent.ID,
		"receipt":      intent.Receipt,
		"localOrderId": order.ID,
	})
}

// verifyRequest is the structured callback payload. Required keys are
// rejected at the boundary instead of surfacing as nil failures deeper in
// the flow.
type verifyRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

func (h *PaymentHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	order, err := h.orders.ConfirmPaymentAndShip(c.Request.Context(), req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil {
		h.log.Warnf("Payment verification failed for %s: %v", req.RazorpayOrderID, err)
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Payment verified successfully", gin.H{
		"orderId":     order.ID,
		"orderStatus": order.Status,
	})
}
