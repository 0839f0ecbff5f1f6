package routes

import (
	"fmt"
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/billbook_backend/models"
	"github.com/gin-gonic/gin"
)

// backupHandler streams the tenant's full data export as a JSON download.
func backupHandler(c *gin.Context) {
	backup, err := models.GetBackup(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	fileName := fmt.Sprintf("backup-%s.json", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.IndentedJSON(http.StatusOK, backup)
}
