package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/usecase"
)

type AuthHandler struct {
	auth *usecase.AuthService
	log  *logrus.Logger
}

func NewAuthHandler(auth *usecase.AuthService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

func (h *AuthHandler) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/auth")
	{
		group.POST("/register", h.Register)
		group.POST("/login", h.Login)
	}
}

type registerRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	token, user, err := h.auth.Register(req.Firstname, req.Lastname, req.Email, req.Password)
	if err != nil {
		h.log.Warnf("Registration failed for %s: %v", req.Email, err)
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	h.log.Infof("User registered: %s", user.Email)
	SuccessResponse(c, http.StatusCreated, "Registered successfully", gin.H{"token": token, "user": user})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	token, user, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Invalid credentials")
		return
	}
	SuccessResponse(c, http.StatusOK, "Logged in successfully", gin.H{"token": token, "user": user})
}
