package routes

import (
	"fmt"
	"net/http"

	"bitbucket.org/mmdatafocus/billbook_backend/models"
	"github.com/gin-gonic/gin"
)

func customerStatsHandler(c *gin.Context) {
	stats, err := models.GetCustomerStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func listCustomersHandler(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 50)

	result, err := models.GetCustomers(c.Request.Context(), page, limit, c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"customers":   result.Customers,
		"totalPages":  result.PageInfo.TotalPages,
		"currentPage": result.PageInfo.CurrentPage,
		"total":       result.PageInfo.Total,
	})
}

func searchCustomersHandler(c *gin.Context) {
	customers, err := models.SearchCustomers(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func getCustomerHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid customer id"})
		return
	}

	customer, err := models.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func createCustomerHandler(c *gin.Context) {
	var input models.NewCustomer
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name and mobile are required"})
		return
	}

	customer, err := models.CreateCustomer(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func updateCustomerHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid customer id"})
		return
	}

	var input models.UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	customer, err := models.UpdateCustomer(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func deleteCustomerHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid customer id"})
		return
	}

	if _, err := models.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "customer deleted successfully"})
}

func customerLedgerHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid customer id"})
		return
	}

	ledger, err := models.GetCustomerLedger(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ledger)
}

func customerLedgerExportHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid customer id"})
		return
	}

	f, err := models.ExportCustomerLedgerExcel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=ledger-%d.xlsx", id))
	if err := f.Write(c.Writer); err != nil {
		respondError(c, err)
	}
}
