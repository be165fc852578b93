package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/JosephCatalano/ledgerleaf/internal/models"
	"github.com/JosephCatalano/ledgerleaf/internal/rules"
	"github.com/JosephCatalano/ledgerleaf/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RuleHandler serves categorization rule CRUD and rule preview.
type RuleHandler struct {
	DB *gorm.DB
}

func NewRuleHandler(db *gorm.DB) *RuleHandler {
	return &RuleHandler{DB: db}
}

type ruleReq struct {
	Priority   int    `json:"priority"`
	Field      string `json:"field" binding:"required"`
	Pattern    string `json:"pattern" binding:"required,max=255"`
	CategoryID *uint  `json:"category_id"`
	Active     *bool  `json:"active"`
}

func ruleResp(r *models.Rule) gin.H {
	return gin.H{
		"id":          r.ID,
		"priority":    r.Priority,
		"field":       r.Field,
		"pattern":     r.Pattern,
		"category_id": r.CategoryID,
		"active":      r.Active,
	}
}

func (h *RuleHandler) CreateRule(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req ruleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	if err := util.ValidateRuleField(req.Field); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "field must be merchant, description or amount")
		return
	}

	req.Pattern = strings.TrimSpace(req.Pattern)
	if req.Pattern == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "pattern is required")
		return
	}

	if req.CategoryID != nil {
		var category models.Category
		if err := h.DB.Where("id = ? AND user_id = ?", *req.CategoryID, user.ID).
			First(&category).Error; err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown category")
			return
		}
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	rule := models.Rule{
		UserID:     user.ID,
		Priority:   req.Priority,
		Field:      req.Field,
		Pattern:    req.Pattern,
		CategoryID: req.CategoryID,
		Active:     active,
	}
	if err := h.DB.Create(&rule).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create rule")
		return
	}

	util.Success(c, util.Response{"rule": ruleResp(&rule)})
}

func (h *RuleHandler) ListRules(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := loadRules(h.DB, user.ID, false)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list rules")
		return
	}

	items := make([]gin.H, 0, len(list))
	for i := range list {
		items = append(items, ruleResp(&list[i]))
	}

	util.Success(c, util.Response{"items": items})
}

func (h *RuleHandler) UpdateRule(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var req ruleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	if err := util.ValidateRuleField(req.Field); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "field must be merchant, description or amount")
		return
	}

	var rule models.Rule
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&rule).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "rule not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load rule")
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
	}

	rule.Priority = req.Priority
	rule.Field = req.Field
	rule.Pattern = strings.TrimSpace(req.Pattern)
	rule.CategoryID = req.CategoryID
	if req.Active != nil {
		rule.Active = *req.Active
	}

	if err := h.DB.Save(&rule).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save rule")
		return
	}

	util.Success(c, util.Response{"rule": ruleResp(&rule)})
}

func (h *RuleHandler) DeleteRule(c *gin.Context) {
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
		Delete(&models.Rule{}).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete rule")
		return
	}

	util.Success(c, util.Response{"message": "rule deleted"})
}

// PreviewRules returns the rule set plus, for each of the most recent `limit`
// transactions, the matching rule and category (or the uncategorized
// fallback).
func (h *RuleHandler) PreviewRules(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	ruleRows, err := loadRules(h.DB, user.ID, true)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load rules")
		return
	}
	matchRules := toMatchRules(ruleRows)

	var txns []models.Transaction
	if err := h.DB.Preload("Merchant").Preload("Category").
		Where("user_id = ?", user.ID).
		Order("date DESC, id DESC").
		Limit(limit).
		Find(&txns).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list transactions")
		return
	}

	fallback, err := ensureUncategorized(h.DB, user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to resolve default category")
		return
	}

	candidates := make([]rules.Candidate, len(txns))
	for i := range txns {
		candidates[i] = candidateFor(&txns[i])
	}
	outcomes := rules.ApplyBatch(candidates, matchRules)

	categoryNames := make(map[uint]string)
	items := make([]gin.H, 0, len(txns))
	for i := range txns {
		item := gin.H{
			"transaction_id": txns[i].ID,
			"description":    txns[i].Description,
			"merchant":       txns[i].Merchant.Name,
			"amount":         formatCentToDollar(txns[i].AmountCent),
			"date":           txns[i].Date,
		}

		m := outcomes[i]
		if m == nil {
			item["matched"] = false
			item["category_id"] = fallback.ID
			item["category"] = fallback.Name
		} else {
			catID := fallback.ID
			if m.CategoryID != nil {
				catID = *m.CategoryID
			}
			name, ok := categoryNames[catID]
			if !ok {
				var category models.Category
				if err := h.DB.First(&category, catID).Error; err == nil {
					name = category.Name
				} else {
					name = fallback.Name
				}
				categoryNames[catID] = name
			}
			item["matched"] = true
			item["rule_id"] = m.RuleID
			item["reason"] = m.Reason
			item["category_id"] = catID
			item["category"] = name
		}
		items = append(items, item)
	}

	ruleItems := make([]gin.H, 0, len(ruleRows))
	for i := range ruleRows {
		ruleItems = append(ruleItems, ruleResp(&ruleRows[i]))
	}

	util.Success(c, util.Response{
		"rules": ruleItems,
		"items": items,
	})
}

// loadRules returns a user's rules sorted by ascending priority, which is the
// ordering the matcher depends on.
func loadRules(db *gorm.DB, userID uint, activeOnly bool) ([]models.Rule, error) {
	q := db.Where("user_id = ?", userID)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var list []models.Rule
	if err := q.Order("priority ASC, id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func toMatchRules(rows []models.Rule) []rules.Rule {
	out := make([]rules.Rule, len(rows))
	for i, r := range rows {
		out[i] = rules.Rule{
			ID:         r.ID,
			Priority:   r.Priority,
			Field:      r.Field,
			Pattern:    r.Pattern,
			CategoryID: r.CategoryID,
		}
	}
	return out
}

func candidateFor(t *models.Transaction) rules.Candidate {
	return rules.Candidate{
		Description:        t.Description,
		MerchantName:       t.Merchant.Name,
		MerchantNormalized: t.Merchant.NormalizedName,
		Amount:             decimal.New(t.AmountCent, -2),
	}
}
