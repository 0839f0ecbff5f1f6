package routes

import (
	"net/http"

	"bitbucket.org/mmdatafocus/billbook_backend/models"
	"github.com/gin-gonic/gin"
)

func listProductsHandler(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 100)
	activeOnly := c.DefaultQuery("active", "true") == "true"

	result, err := models.GetProducts(c.Request.Context(), page, limit, c.Query("search"), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"products":    result.Products,
		"totalPages":  result.PageInfo.TotalPages,
		"currentPage": result.PageInfo.CurrentPage,
		"total":       result.PageInfo.Total,
	})
}

func searchProductsHandler(c *gin.Context) {
	products, err := models.SearchProducts(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func productCatalogHandler(c *gin.Context) {
	products, err := models.ListActiveProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func getProductHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
		return
	}

	product, err := models.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func createProductHandler(c *gin.Context) {
	var input models.NewProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name and price are required"})
		return
	}

	product, err := models.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func updateProductHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
		return
	}

	var input models.UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	product, err := models.UpdateProduct(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// archiveProductHandler soft-deletes by flipping is_active off.
func archiveProductHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
		return
	}

	product, err := models.ToggleActiveProduct(c.Request.Context(), id, false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
