package controllers

import (
	"net/http"

	"drivebox/services"
	"drivebox/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService *services.AuthService
}

func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

func (ac *AuthController) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=1,max=255"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}

	user, err := ac.authService.Register(req.Username, req.Password)
	if err != nil {
		handleError(c, err, "Failed to register user")
		return
	}

	utils.CreatedResponse(c, "User registered successfully", user)
}

func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}

	user, token, err := ac.authService.Login(req.Username, req.Password)
	if err != nil {
		handleError(c, err, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged in successfully",
		"data": gin.H{
			"token": token,
			"user":  user,
		},
	})
}

func (ac *AuthController) Me(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	user, err := ac.authService.GetProfile(userID)
	if err != nil {
		handleError(c, err, "Failed to load profile")
		return
	}

	utils.SuccessResponse(c, "Profile loaded", user)
}
