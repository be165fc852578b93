package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/JosephCatalano/ledgerleaf/internal/models"
	"github.com/JosephCatalano/ledgerleaf/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler serves category CRUD.
type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{DB: db}
}

type createCategoryReq struct {
	Name string `json:"name" binding:"required,max=64"`
	Type string `json:"type" binding:"required,oneof=income expense"`
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "category name is required")
		return
	}

	var count int64
	if err := h.DB.Model(&models.Category{}).
		Where("user_id = ? AND name = ?", user.ID, req.Name).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check category")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "category already exists")
		return
	}

	category := models.Category{
		UserID: user.ID,
		Name:   req.Name,
		Type:   req.Type,
	}
	if err := h.DB.Create(&category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create category")
		return
	}

	util.Success(c, util.Response{
		"category": gin.H{
			"id":   category.ID,
			"name": category.Name,
			"type": category.Type,
		},
	})
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var categories []models.Category
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("type ASC, name ASC").
		Find(&categories).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list categories")
		return
	}

	items := make([]gin.H, 0, len(categories))
	for _, cat := range categories {
		items = append(items, gin.H{
			"id":   cat.ID,
			"name": cat.Name,
			"type": cat.Type,
		})
	}

	util.Success(c, util.Response{"items": items})
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var category models.Category
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&category).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load category")
		}
		return
	}

	// the default bucket must always exist
	if category.Name == models.UncategorizedName {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "the default category cannot be deleted")
		return
	}

	if err := h.DB.Delete(&category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete category")
		return
	}

	util.Success(c, util.Response{"message": "category deleted"})
}

// ensureUncategorized returns the user's default category, creating it on
// first use.
func ensureUncategorized(db *gorm.DB, userID uint) (*models.Category, error) {
	var category models.Category
	err := db.Where("user_id = ? AND name = ?", userID, models.UncategorizedName).
		First(&category).Error
	if err == nil {
		return &category, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	category = models.Category{
		UserID: userID,
		Name:   models.UncategorizedName,
		Type:   "expense",
	}
	if err := db.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}
