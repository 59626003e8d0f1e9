package handlers

import (
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"
	"github.com/IIoT-Solutions-SA/forum-platform-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	categories *services.CategoryService
}

func NewCategoryHandler(categories *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List handles GET /api/v1/categories.
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.ListActive(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.OK(c, categories)
}

// Get handles GET /api/v1/categories/:slug.
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.categories.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.OK(c, category)
}

type createCategoryRequest struct {
	Name                 string `json:"name" binding:"required"`
	Description          string `json:"description"`
	CategoryType         string `json:"category_type"`
	Icon                 string `json:"icon"`
	RequiresVerification bool   `json:"requires_verification"`
	SortOrder            int    `json:"sort_order"`
}

// Create handles POST /api/v1/admin/categories.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "name is required")
		return
	}

	category := &models.ForumCategory{
		Name:                 req.Name,
		Description:          req.Description,
		Type:                 models.CategoryType(req.CategoryType),
		Icon:                 req.Icon,
		RequiresVerification: req.RequiresVerification,
		SortOrder:            req.SortOrder,
		IsActive:             true,
	}
	if category.Type == "" {
		category.Type = models.CategoryGeneral
	}

	if err := h.categories.Create(c.Request.Context(), category); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Created(c, "Category created", category)
}
