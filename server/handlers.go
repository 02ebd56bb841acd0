package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"buscacasas/config"
	"buscacasas/models"
	"buscacasas/scraper"
	"buscacasas/scraper/sources"
	"buscacasas/storage"
)

// Handler holds the collaborators the API routes delegate to.
type Handler struct {
	cfg    *config.Config
	store  storage.Store
	agg    *scraper.Aggregator
	logger *logrus.Logger
}

// ScrapeRequest is the POST /api/scrape body.
type ScrapeRequest struct {
	Source  string         `json:"source"`
	Pages   int            `json:"pages"`
	Save    *bool          `json:"save"`
	Filters models.Filters `json:"filters"`
}

// FavoriteRequest is the POST /api/favorites body.
type FavoriteRequest struct {
	PropertyID string `json:"propertyId" binding:"required"`
	Notes      string `json:"notes"`
}

// GetProperties returns active properties matching the query-string filters.
func (h *Handler) GetProperties(c *gin.Context) {
	var filters models.Filters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filters"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	properties, err := h.store.Query(filters, limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to query properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch properties"})
		return
	}
	if properties == nil {
		properties = []*models.Property{}
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": properties,
		"total":      len(properties),
		"filters":    filters,
	})
}

// GetProperty returns one property by its global ID.
func (h *Handler) GetProperty(c *gin.Context) {
	property, err := h.store.GetByID(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch property"})
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}
	c.JSON(http.StatusOK, property)
}

// DeactivateProperty soft-deletes a property. The row stays addressable by
// ID but disappears from listing queries and stats.
func (h *Handler) DeactivateProperty(c *gin.Context) {
	id := c.Param("id")

	property, err := h.store.GetByID(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch property"})
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}

	if err := h.store.MarkInactive([]string{id}); err != nil {
		h.logger.WithError(err).Error("Failed to deactivate property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deactivate property"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "isActive": false})
}

// GetStats returns dataset totals grouped by source and department.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.store.Stats()
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetFavorites lists bookmarked properties.
func (h *Handler) GetFavorites(c *gin.Context) {
	favorites, err := h.store.Favorites()
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch favorites")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch favorites"})
		return
	}
	if favorites == nil {
		favorites = []*storage.Favorite{}
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}

// AddFavorite bookmarks a property.
func (h *Handler) AddFavorite(c *gin.Context) {
	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.AddFavorite(req.PropertyID, req.Notes); err != nil {
		h.logger.WithError(err).Error("Failed to add favorite")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add favorite"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"propertyId": req.PropertyID})
}

// Scrape triggers a multi-source run and reports per-source outcomes. One
// source failing shows up in its status entry; the others still deliver.
func (h *Handler) Scrape(c *gin.Context) {
	var req ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	selected, err := sources.ForSelector(req.Source)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := h.agg.OptionsFromConfig(req.Filters, req.Pages)
	listings, statuses := h.agg.Scrape(c.Request.Context(), selected, opts)

	report := &models.ScrapeReport{
		Statuses:   statuses,
		TotalFound: len(listings),
	}

	save := req.Save == nil || *req.Save
	if save {
		saved, skipped, err := h.agg.Save(h.store, listings)
		report.TotalSaved = saved
		report.Skipped = skipped
		if err != nil {
			h.logger.WithError(err).Error("Failed to save scraped properties")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":  "scrape succeeded but saving failed",
				"report": report,
			})
			return
		}
	}

	report.Preview = preview(listings, 5)
	c.JSON(http.StatusOK, report)
}

// preview validates up to n gathered records for the response body.
func preview(listings []*models.PartialProperty, n int) []*models.Property {
	out := []*models.Property{}
	for _, partial := range listings {
		if len(out) == n {
			break
		}
		if p, verr := partial.Validate(); verr == nil {
			out = append(out, p)
		}
	}
	return out
}
