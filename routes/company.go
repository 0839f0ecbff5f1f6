package routes

import (
	"net/http"

	"bitbucket.org/mmdatafocus/billbook_backend/models"
	"github.com/gin-gonic/gin"
)

func getCompanyHandler(c *gin.Context) {
	company, err := models.GetCompany(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func upsertCompanyHandler(c *gin.Context) {
	var input models.NewCompany
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "company name is required"})
		return
	}

	company, err := models.UpsertCompany(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}
