package routes

import (
	"net/http"

	"bitbucket.org/mmdatafocus/billbook_backend/models"
	"bitbucket.org/mmdatafocus/billbook_backend/utils"
	"github.com/gin-gonic/gin"
)

func billStatsHandler(c *gin.Context) {
	stats, err := models.GetBillStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// nextBillNumberHandler previews the next number without reserving it:
// it reports max(sequence_no)+1 rather than consuming the counter.
func nextBillNumberHandler(c *gin.Context) {
	userId, _ := utils.GetUserIdFromContext(c.Request.Context())
	next, err := models.PeekNextBillNumber(c.Request.Context(), userId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nextBillNumber": next})
}

func listBillsHandler(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	filter := &models.BillFilter{
		CustomerId: queryInt(c, "customerId", 0),
		BillType:   models.BillType(c.Query("billType")),
		StartDate:  queryDate(c, "startDate"),
		EndDate:    queryDate(c, "endDate"),
	}

	result, err := models.GetBills(c.Request.Context(), page, limit, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bills":       result.Bills,
		"totalPages":  result.PageInfo.TotalPages,
		"currentPage": result.PageInfo.CurrentPage,
		"total":       result.PageInfo.Total,
	})
}

func getBillHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid bill id"})
		return
	}

	bill, err := models.GetBill(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func createBillHandler(c *gin.Context) {
	var input models.NewBill
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "customer and items are required"})
		return
	}

	bill, err := models.CreateBill(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bill)
}

func updateBillHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid bill id"})
		return
	}

	var input models.UpdateBillInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	bill, err := models.UpdateBill(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func deleteBillHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid bill id"})
		return
	}

	if _, err := models.DeleteBill(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bill deleted successfully"})
}
