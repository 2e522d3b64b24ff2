package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/domain"
	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/usecase"
)

type CatalogHandler struct {
	catalog *usecase.CatalogService
	log     *logrus.Logger
}

func NewCatalogHandler(catalog *usecase.CatalogService, log *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

// RegisterPublicRoutes installs the read-only browse endpoints.
func (h *CatalogHandler) RegisterPublicRoutes(router gin.IRouter) {
	router.GET("/products", h.ListProducts)
	router.GET("/products/:productId", h.GetProduct)
	router.GET("/categories", h.ListCategories)
}

// RegisterAdminRoutes installs the catalog write endpoints. The caller is
// expected to mount these behind auth and admin middleware.
func (h *CatalogHandler) RegisterAdminRoutes(router gin.IRouter) {
	router.POST("/products", h.CreateProduct)
	router.PUT("/products/:productId", h.UpdateProduct)
	router.DELETE("/products/:productId", h.DeactivateProduct)
	router.POST("/categories", h.CreateCategory)
	router.DELETE("/categories/:categoryId", h.DeactivateCategory)
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts()
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", products)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.ProductByID(c.Param("productId"))
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", product)
}

type productRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"imageUrl"`
	CategoryID  string  `json:"categoryId"`
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	product, err := h.catalog.CreateProduct(&domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	h.log.Infof("Product created: %s (%s)", product.Name, product.ID)
	SuccessResponse(c, http.StatusCreated, "Product created successfully", product)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	product, err := h.catalog.UpdateProduct(c.Param("productId"), &domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Product updated successfully", product)
}

func (h *CatalogHandler) DeactivateProduct(c *gin.Context) {
	if err := h.catalog.DeactivateProduct(c.Param("productId")); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Product deleted successfully", nil)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories()
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Categories retrieved successfully", categories)
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	category, err := h.catalog.CreateCategory(req.Name)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusCreated, "Category created successfully", category)
}

func (h *CatalogHandler) DeactivateCategory(c *gin.Context) {
	if err := h.catalog.DeactivateCategory(c.Param("categoryId")); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Category deleted successfully", nil)
}
