package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/usecase"
)

type CartHandler struct {
	carts *usecase.CartService
	log   *logrus.Logger
}

func NewCartHandler(carts *usecase.CartService, log *logrus.Logger) *CartHandler {
	return &CartHandler{carts: carts, log: log}
}

func (h *CartHandler) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/cart")
	{
		group.GET("", h.GetCart)
		group.POST("/add", h.AddItem)
		group.PUT("/update", h.UpdateQuantity)
		group.DELETE("/remove/:productId", h.RemoveItem)
	}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	user := CurrentUser(c)
	cart := h.carts.GetCart(user.ID)
	SuccessResponse(c, http.StatusOK, "Cart retrieved successfully", cart)
}

type cartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) AddItem(c *gin.Context) {
	user := CurrentUser(c)
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	cart, err := h.carts.AddItem(user.ID, req.ProductID, req.Quantity)
	if err != nil {
		h.log.Warnf("Add to cart failed for user %s, product %s: %v", user.ID, req.ProductID, err)
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Item added to cart", cart)
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	user := CurrentUser(c)
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	cart, err := h.carts.UpdateQuantity(user.ID, req.ProductID, req.Quantity)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart updated", cart)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	user := CurrentUser(c)
	cart, err := h.carts.RemoveItem(user.ID, c.Param("productId"))
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Item removed from cart", cart)
}
