package handler

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/JosephCatalano/ledgerleaf/internal/models"
	"github.com/JosephCatalano/ledgerleaf/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TransactionHandler serves transaction listing and editing.
type TransactionHandler struct {
	DB *gorm.DB
}

func NewTransactionHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{DB: db}
}

type transactionResp struct {
	ID          uint      `json:"id"`
	AccountID   uint      `json:"account_id"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	CategoryID  uint      `json:"category_id"`
	Merchant    string    `json:"merchant"`
	AmountCent  int64     `json:"amount_cent"`
	Amount      string    `json:"amount"` // dollars, two decimals, for display
	Description string    `json:"description"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

// formatCentToDollar renders cents as a two-decimal dollar string.
func formatCentToDollar(amountCent int64) string {
	return strconv.FormatFloat(float64(amountCent)/100.0, 'f', 2, 64)
}

func (h *TransactionHandler) toTransactionResp(t *models.Transaction) transactionResp {
	resp := transactionResp{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Type:        t.Type,
		CategoryID:  t.CategoryID,
		AmountCent:  t.AmountCent,
		Amount:      formatCentToDollar(t.AmountCent),
		Description: t.Description,
		Date:        t.Date,
		CreatedAt:   t.CreatedAt,
	}
	if t.Category.ID != 0 {
		resp.Category = t.Category.Name
	}
	if t.Merchant.ID != 0 {
		resp.Merchant = t.Merchant.Name
	}
	return resp
}

// ListTransactions returns a page of transactions with date range, type,
// account and category filters plus summary totals under the same filters.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	startStr := c.Query("start")
	endStr := c.Query("end")
	if startStr != "" {
		if err := util.ValidateDate(startStr); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "start date must be YYYY-MM-DD")
			return
		}
	}
	if endStr != "" {
		if err := util.ValidateDate(endStr); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "end date must be YYYY-MM-DD")
			return
		}
	}

	txType := c.Query("type")
	if txType != "income" && txType != "expense" {
		txType = ""
	}

	accountID, _ := strconv.Atoi(c.Query("account_id"))
	categoryID, _ := strconv.Atoi(c.Query("category_id"))

	// sort: date_desc (default), date_asc, amount_desc, amount_asc
	sortKey := c.DefaultQuery("sort", "date_desc")
	orderBy := "date DESC, id DESC"
	switch sortKey {
	case "date_asc":
		orderBy = "date ASC, id ASC"
	case "amount_desc":
		orderBy = "amount_cent DESC, id DESC"
	case "amount_asc":
		orderBy = "amount_cent ASC, id ASC"
	}

	base := h.DB.Model(&models.Transaction{}).Where("user_id = ?", user.ID)
	if startStr != "" {
		base = base.Where("date >= ?", startStr)
	}
	if endStr != "" {
		base = base.Where("date <= ?", endStr)
	}
	if txType != "" {
		base = base.Where("type = ?", txType)
	}
	if accountID > 0 {
		base = base.Where("account_id = ?", accountID)
	}
	if categoryID > 0 {
		base = base.Where("category_id = ?", categoryID)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count transactions")
		return
	}

	var txns []models.Transaction
	if err := base.Session(&gorm.Session{}).
		Preload("Category").
		Preload("Merchant").
		Order(orderBy).
		Limit(size).
		Offset(offset).
		Find(&txns).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list transactions")
		return
	}

	items := make([]transactionResp, 0, len(txns))
	for i := range txns {
		items = append(items, h.toTransactionResp(&txns[i]))
	}

	// summary under the same filters
	type sumRow struct {
		Type string
		Sum  int64
	}
	var sums []sumRow
	if err := base.Session(&gorm.Session{}).
		Select("type, SUM(amount_cent) AS sum").
		Group("type").
		Scan(&sums).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to summarize")
		return
	}

	var incomeCent, expenseCent int64
	for _, s := range sums {
		if s.Type == "income" {
			incomeCent = s.Sum
		} else {
			expenseCent = s.Sum
		}
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
		"summary": gin.H{
			"total_income_cent":  incomeCent,
			"total_income":       formatCentToDollar(incomeCent),
			"total_expense_cent": expenseCent,
			"total_expense":      formatCentToDollar(expenseCent),
			"balance_cent":       incomeCent - expenseCent,
			"balance":            formatCentToDollar(incomeCent - expenseCent),
		},
	})
}

type updateTransactionReq struct {
	CategoryID  *uint   `json:"category_id"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
}

// UpdateTransaction reassigns category, description or type of one of the
// user's transactions.
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var req updateTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	var txn models.Transaction
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&txn).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "transaction not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transaction")
		}
		return
	}

	if req.CategoryID != nil {
		var category models.Category
		if err := h.DB.Where("id = ? AND user_id = ?", *req.CategoryID, user.ID).
			First(&category).Error; err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown category")
			return
		}
		txn.CategoryID = category.ID
	}
	if req.Description != nil {
		txn.Description = strings.TrimSpace(*req.Description)
	}
	if req.Type != nil {
		if *req.Type != "income" && *req.Type != "expense" {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "type must be income or expense")
			return
		}
		txn.Type = *req.Type
	}

	if err := h.DB.Save(&txn).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save transaction")
		return
	}

	if err := h.DB.Preload("Category").Preload("Merchant").
		First(&txn, txn.ID).Error; err == nil {
		util.Success(c, util.Response{"transaction": h.toTransactionResp(&txn)})
		return
	}
	util.Success(c, util.Response{"transaction": h.toTransactionResp(&txn)})
}

func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
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
		Delete(&models.Transaction{}).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete transaction")
		return
	}

	util.Success(c, util.Response{"message": "transaction deleted"})
}

// GetMonthlyStats returns daily and per-category totals for one month.
func (h *TransactionHandler) GetMonthlyStats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	monthStr := c.Query("month")
	if monthStr == "" {
		monthStr = time.Now().Format("2006-01")
	}
	t, err := time.Parse("2006-01", monthStr)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "month must be YYYY-MM")
		return
	}

	startDate := t.Format("2006-01-02")
	endDate := t.AddDate(0, 1, 0).Format("2006-01-02")

	var txns []models.Transaction
	if err := h.DB.Preload("Category").
		Where("user_id = ? AND date >= ? AND date < ?", user.ID, startDate, endDate).
		Order("date ASC").
		Find(&txns).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list transactions")
		return
	}

	type bucket struct {
		Key         string `json:"-"`
		IncomeCent  int64  `json:"income_cent"`
		ExpenseCent int64  `json:"expense_cent"`
		BalanceCent int64  `json:"balance_cent"`
		Income      string `json:"income"`
		Expense     string `json:"expense"`
		Balance     string `json:"balance"`
	}

	dailyMap := make(map[string]*bucket)
	catMap := make(map[string]*bucket)
	var totalIncomeCent, totalExpenseCent int64

	for i := range txns {
		txn := &txns[i]

		day, ok := dailyMap[txn.Date]
		if !ok {
			day = &bucket{Key: txn.Date}
			dailyMap[txn.Date] = day
		}

		catName := txn.Category.Name
		if catName == "" {
			catName = models.UncategorizedName
		}
		cat, ok := catMap[catName]
		if !ok {
			cat = &bucket{Key: catName}
			catMap[catName] = cat
		}

		if txn.Type == "income" {
			day.IncomeCent += txn.AmountCent
			cat.IncomeCent += txn.AmountCent
			totalIncomeCent += txn.AmountCent
		} else {
			day.ExpenseCent += txn.AmountCent
			cat.ExpenseCent += txn.AmountCent
			totalExpenseCent += txn.AmountCent
		}
	}

	finish := func(m map[string]*bucket, keyName string) []gin.H {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make([]gin.H, 0, len(keys))
		for _, k := range keys {
			b := m[k]
			b.BalanceCent = b.IncomeCent - b.ExpenseCent
			out = append(out, gin.H{
				keyName:        b.Key,
				"income_cent":  b.IncomeCent,
				"expense_cent": b.ExpenseCent,
				"balance_cent": b.BalanceCent,
				"income":       formatCentToDollar(b.IncomeCent),
				"expense":      formatCentToDollar(b.ExpenseCent),
				"balance":      formatCentToDollar(b.BalanceCent),
			})
		}
		return out
	}

	util.Success(c, util.Response{
		"month":         monthStr,
		"daily":         finish(dailyMap, "date"),
		"by_category":   finish(catMap, "category"),
		"total_income":  formatCentToDollar(totalIncomeCent),
		"total_expense": formatCentToDollar(totalExpenseCent),
		"total_balance": formatCentToDollar(totalIncomeCent - totalExpenseCent),
	})
}
