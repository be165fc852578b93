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

// AccountHandler serves bank account CRUD.
type AccountHandler struct {
	DB *gorm.DB
}

func NewAccountHandler(db *gorm.DB) *AccountHandler {
	return &AccountHandler{DB: db}
}

type createAccountReq struct {
	Name string `json:"name" binding:"required,max=128"`
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "account name is required")
		return
	}

	account, err := resolveAccount(h.DB, user.ID, req.Name)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create account")
		return
	}

	util.Success(c, util.Response{
		"account": gin.H{
			"id":   account.ID,
			"name": account.Name,
		},
	})
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var accounts []models.Account
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("name ASC").
		Find(&accounts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list accounts")
		return
	}

	items := make([]gin.H, 0, len(accounts))
	for _, a := range accounts {
		var count int64
		_ = h.DB.Model(&models.Transaction{}).
			Where("account_id = ?", a.ID).
			Count(&count).Error
		items = append(items, gin.H{
			"id":                a.ID,
			"name":              a.Name,
			"transaction_count": count,
			"created_at":        a.CreatedAt,
		})
	}

	util.Success(c, util.Response{"items": items})
}

func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	if err := h.DB.
		Where("id = ? AND user_id = ?", id, user.ID).
		Delete(&models.Account{}).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete account")
		return
	}

	util.Success(c, util.Response{"message": "account deleted"})
}

// resolveAccount finds a user's account by name, creating it if missing.
func resolveAccount(db *gorm.DB, userID uint, name string) (*models.Account, error) {
	var account models.Account
	err := db.Where("user_id = ? AND name = ?", userID, name).First(&account).Error
	if err == nil {
		return &account, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	account = models.Account{UserID: userID, Name: name}
	if err := db.Create(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}
