// controllers/service.go
package controllers

import (
	"net/http"

	"spa-booking-backend/config"
	"spa-booking-backend/models"
	"spa-booking-backend/services"
	"spa-booking-backend/utils"

	"github.com/gin-gonic/gin"
)

// CatalogController serves the menu to the storefront and the admin writes
type CatalogController struct {
	Catalog *services.CatalogService
	Log     *config.Logger
}

// ServiceInput defines the expected JSON structure for creating or replacing a service
type ServiceInput struct {
	ID             string               `json:"id"`
	CategoryID     string               `json:"categoryId" binding:"required"`
	ServiceGroupID string               `json:"serviceGroupId"`
	Name           models.LocalizedText `json:"name" binding:"required"`
	Description    models.LocalizedText `json:"description"`
	PriceVND       int64                `json:"priceVND" binding:"min=0"`
	PriceUSD       int64                `json:"priceUSD" binding:"min=0"`
	Duration       int                  `json:"duration" binding:"required,min=1"` // in minutes
	Image          string               `json:"image"`
	IsActive       *bool                `json:"active"`
	IsBestSeller   bool                 `json:"bestSeller"`
	IsBestChoice   bool                 `json:"bestChoice"`
	ShowStrength   bool                 `json:"showStrength"`
	Areas          models.AreaFlags     `json:"areas"`
	Tags           models.TagList       `json:"tags"`
	Hint           models.LocalizedText `json:"hint"`
	SortOrder      int                  `json:"sortOrder"`
}

func (in ServiceInput) toModel() *models.Service {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return &models.Service{
		ID:             in.ID,
		CategoryID:     in.CategoryID,
		ServiceGroupID: in.ServiceGroupID,
		Name:           in.Name,
		Description:    in.Description,
		PriceVND:       in.PriceVND,
		PriceUSD:       in.PriceUSD,
		Duration:       in.Duration,
		Image:          in.Image,
		IsActive:       active,
		IsBestSeller:   in.IsBestSeller,
		IsBestChoice:   in.IsBestChoice,
		ShowStrength:   in.ShowStrength,
		Areas:          in.Areas,
		Tags:           in.Tags,
		Hint:           in.Hint,
		SortOrder:      in.SortOrder,
	}
}

// CategoryInput defines the expected JSON structure for upserting a category
type CategoryInput struct {
	ID        string               `json:"id" binding:"required"`
	Name      models.LocalizedText `json:"name" binding:"required"`
	Image     string               `json:"image"`
	SortOrder int                  `json:"sortOrder"`
}

// GetServices returns the active menu; never cached
func (cc *CatalogController) GetServices(c *gin.Context) {
	list, err := cc.Catalog.ListServices(c.Request.Context(), c.Query("menuType"))
	if err != nil {
		respondError(c, cc.Log, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, list)
}

func (cc *CatalogController) GetCategories(c *gin.Context) {
	list, err := cc.Catalog.ListCategories(c.Request.Context(), c.Query("menuType"))
	if err != nil {
		respondError(c, cc.Log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateService adds a service to the catalog
func (cc *CatalogController) CreateService(c *gin.Context) {
	var input ServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if _, err := cc.Catalog.GetService(c.Request.Context(), input.ID); err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Service already exists")
		return
	}

	svc := input.toModel()
	if err := cc.Catalog.SaveService(c.Request.Context(), svc); err != nil {
		respondError(c, cc.Log, err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// UpdateService replaces an existing service
func (cc *CatalogController) UpdateService(c *gin.Context) {
	id := c.Param("id")
	if _, err := cc.Catalog.GetService(c.Request.Context(), id); err != nil {
		respondError(c, cc.Log, err)
		return
	}

	var input ServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	input.ID = id

	svc := input.toModel()
	if err := cc.Catalog.SaveService(c.Request.Context(), svc); err != nil {
		respondError(c, cc.Log, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (cc *CatalogController) UpsertCategory(c *gin.Context) {
	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	cat := &models.Category{ID: input.ID, Name: input.Name, Image: input.Image, SortOrder: input.SortOrder}
	if err := cc.Catalog.SaveCategory(c.Request.Context(), cat); err != nil {
		respondError(c, cc.Log, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}
