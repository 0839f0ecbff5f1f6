package routes

import (
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/billbook_backend/models"
	"github.com/gin-gonic/gin"
)

func listPaymentsHandler(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	filter := &models.PaymentFilter{
		CustomerId: queryInt(c, "customerId", 0),
		StartDate:  queryDate(c, "startDate"),
		EndDate:    queryDate(c, "endDate"),
	}

	result, err := models.GetPayments(c.Request.Context(), page, limit, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payments":    result.Payments,
		"totalPages":  result.PageInfo.TotalPages,
		"currentPage": result.PageInfo.CurrentPage,
		"total":       result.PageInfo.Total,
	})
}

func getPaymentHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payment id"})
		return
	}

	payment, err := models.GetPayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func createPaymentHandler(c *gin.Context) {
	var input models.NewPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "customer and amount are required"})
		return
	}

	payment, err := models.CreatePayment(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func deletePaymentHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payment id"})
		return
	}

	if _, err := models.DeletePayment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "payment deleted successfully"})
}

func customerPaymentsHandler(c *gin.Context) {
	customerId, err := strconv.Atoi(c.Param("customerId"))
	if err != nil || customerId <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid customer id"})
		return
	}

	payments, err := models.GetCustomerPayments(c.Request.Context(), customerId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}
