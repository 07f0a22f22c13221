package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/potluckhq/potluck/internal/service"
)

type CategoryHandler struct {
	categoryService service.ICategoryService
	dishService     service.IDishService
}

func NewCategoryHandler(categoryService service.ICategoryService, dishService service.IDishService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		dishService:     dishService,
	}
}

// CreateCategory adds a node to the category tree
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name     string  `json:"name" binding:"required,min=1,max=100"`
		ParentID *string `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), req.Name, req.ParentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// ListCategories returns the whole category forest
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// ReparentCategory moves a category under a new parent (null for root)
func (h *CategoryHandler) ReparentCategory(c *gin.Context) {
	var req struct {
		ParentID *string `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.categoryService.Reparent(c.Request.Context(), c.Param("category_id"), req.ParentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "category moved"})
}

// DeleteCategory removes a category; children become roots
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	err := h.categoryService.Delete(c.Request.Context(), c.Param("category_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}

// CreateDish adds a dish to the shared catalog
func (h *CategoryHandler) CreateDish(c *gin.Context) {
	var req service.CreateDishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dish, err := h.dishService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dish)
}

// ListDishes returns the catalog, optionally filtered by category
func (h *CategoryHandler) ListDishes(c *gin.Context) {
	if categoryID := c.Query("category_id"); categoryID != "" {
		dishes, err := h.dishService.ListByCategory(c.Request.Context(), categoryID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dishes)
		return
	}

	dishes, err := h.dishService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dishes)
}
