package routes

import (
	"net/http"

	"bitbucket.org/mmdatafocus/billbook_backend/models"
	"bitbucket.org/mmdatafocus/billbook_backend/utils"
	"github.com/gin-gonic/gin"
)

func registerHandler(c *gin.Context) {
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "please provide all fields"})
		return
	}

	payload, err := models.Register(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payload)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "please provide email and password"})
		return
	}

	payload, err := models.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if utils.IsInvalidInput(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid email or password"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func logoutHandler(c *gin.Context) {
	token, _ := utils.GetTokenFromContext(c.Request.Context())
	if err := models.Logout(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}

func meHandler(c *gin.Context) {
	userId, _ := utils.GetUserIdFromContext(c.Request.Context())
	user, err := models.GetUser(c.Request.Context(), userId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
