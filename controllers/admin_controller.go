// File: controllers/admin_controller.go
package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"athmageeth-portal/export"
	"athmageeth-portal/logger"
	"athmageeth-portal/models"
	"athmageeth-portal/services"
)

// AdminQuerier answers the dashboard's queries.
type AdminQuerier interface {
	List(ctx context.Context, p services.ListParams) services.ListResult
	ListAll(ctx context.Context) ([]models.Registration, error)
	Remove(ctx context.Context, id string) services.RemoveResult
	Stats(ctx context.Context) models.DashboardStats
	Dashboard(ctx context.Context, p services.ListParams) services.DashboardResult
}

// SheetsPusher rewrites the export spreadsheet.
type SheetsPusher interface {
	Push(ctx context.Context, regs []models.Registration, loc *time.Location) (int, error)
}

// ---------------- Admin Controller ----------------

// AdminController serves the protected dashboard endpoints.
type AdminController struct {
	Service AdminQuerier
	// Sheets is nil when no spreadsheet is configured.
	Sheets   SheetsPusher
	Location *time.Location
	now      func() time.Time
}

// NewAdminController initializes an AdminController.
func NewAdminController(service AdminQuerier, sheets SheetsPusher, loc *time.Location) *AdminController {
	if loc == nil {
		loc = time.UTC
	}
	return &AdminController{Service: service, Sheets: sheets, Location: loc, now: time.Now}
}

// ---------------- dashboard queries ----------------

// Dashboard returns the stats cards together with the requested page.
func (ac *AdminController) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, ac.Service.Dashboard(c.Request.Context(), listParams(c)))
}

// List returns one page of registrations.
func (ac *AdminController) List(c *gin.Context) {
	c.JSON(http.StatusOK, ac.Service.List(c.Request.Context(), listParams(c)))
}

// Stats returns the dashboard totals.
func (ac *AdminController) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, ac.Service.Stats(c.Request.Context()))
}

// Delete removes the registration named by the :id path parameter.
func (ac *AdminController) Delete(c *gin.Context) {
	res := ac.Service.Remove(c.Request.Context(), c.Param("id"))
	if !res.Success {
		c.JSON(http.StatusInternalServerError, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ---------------- export ----------------

// ExportCSV streams every registration as a CSV download.
func (ac *AdminController) ExportCSV(c *gin.Context) {
	regs, err := ac.Service.ListAll(c.Request.Context())
	if err != nil {
		logger.Error.Printf("[ExportCSV] loading registrations: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export"})
		return
	}

	name := export.FileName(ac.now(), ac.Location)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Status(http.StatusOK)
	if err := export.WriteCSV(c.Writer, regs, ac.Location); err != nil {
		logger.Error.Printf("[ExportCSV] writing %s: %v", name, err)
		return
	}
	logger.Info.Printf("[ExportCSV] exported %d registrations", len(regs))
}

// ExportSheets pushes every registration to the configured spreadsheet.
func (ac *AdminController) ExportSheets(c *gin.Context) {
	if ac.Sheets == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Google Sheets export is not configured"})
		return
	}
	regs, err := ac.Service.ListAll(c.Request.Context())
	if err != nil {
		logger.Error.Printf("[ExportSheets] loading registrations: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to export"})
		return
	}
	n, err := ac.Sheets.Push(c.Request.Context(), regs, ac.Location)
	if err != nil {
		logger.Error.Printf("[ExportSheets] push failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to export"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rows": n})
}

// listParams reads query, page and district. A missing or non-numeric page
// is page 1.
func listParams(c *gin.Context) services.ListParams {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	return services.ListParams{
		Query:    c.Query("query"),
		Page:     page,
		District: c.DefaultQuery("district", models.AllDistricts),
	}
}
