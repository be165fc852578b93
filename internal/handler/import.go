package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/JosephCatalano/ledgerleaf/internal/importer"
	"github.com/JosephCatalano/ledgerleaf/internal/models"
	"github.com/JosephCatalano/ledgerleaf/internal/rules"
	"github.com/JosephCatalano/ledgerleaf/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImportHandler serves CSV upload preview and import.
type ImportHandler struct {
	DB             *gorm.DB
	Presets        PresetStore
	MaxUploadBytes int64
	SampleRows     int
}

func NewImportHandler(db *gorm.DB, presets PresetStore, maxUploadBytes int64, sampleRows int) *ImportHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 5 << 20
	}
	if sampleRows <= 0 {
		sampleRows = 5
	}
	return &ImportHandler{
		DB:             db,
		Presets:        presets,
		MaxUploadBytes: maxUploadBytes,
		SampleRows:     sampleRows,
	}
}

// csvMIMETypes lists upload content types accepted as CSV. Browsers are
// inconsistent here, so a few non-csv types are tolerated as long as the
// filename checks out.
var csvMIMETypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"text/plain":               true,
	"application/octet-stream": true, // curl and Go clients default to this
	"":                         true, // some clients omit the part content type
}

// readUpload validates upload metadata and returns the file's text content.
// Validation failures are written as structured field errors; ok=false means
// the response has already been sent.
func (h *ImportHandler) readUpload(c *gin.Context) (string, string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		util.FieldErrors(c, map[string]string{"file": "file is required"})
		return "", "", false
	}

	fields := map[string]string{}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".csv") {
		fields["file"] = "only .csv files are accepted"
	}
	if fileHeader.Size > h.MaxUploadBytes {
		fields["file"] = fmt.Sprintf("file exceeds the %d MB limit", h.MaxUploadBytes>>20)
	}
	if ct := fileHeader.Header.Get("Content-Type"); !csvMIMETypes[ct] {
		fields["file"] = fmt.Sprintf("unsupported content type %q", ct)
	}
	if len(fields) > 0 {
		util.FieldErrors(c, fields)
		return "", "", false
	}

	text, err := readAll(fileHeader)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read upload")
		return "", "", false
	}
	return text, fileHeader.Filename, true
}

func readAll(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// parseUpload runs the bank-aware parser first and falls back to plain
// first-row-is-header parsing when no marker row is found.
func parseUpload(text string) (importer.Document, error) {
	doc, err := importer.ParseBank(text)
	if err != nil {
		return importer.Document{}, err
	}
	if len(doc.Headers) > 0 {
		return doc, nil
	}
	return importer.Parse(text)
}

// Preview accepts an uploaded CSV and returns its headers, a small sample,
// the row count and a column mapping: the saved preset for the file's bank
// key when one exists, otherwise a fresh guess.
func (h *ImportHandler) Preview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	text, filename, ok := h.readUpload(c)
	if !ok {
		return
	}

	doc, err := parseUpload(text)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "file is not valid CSV")
		return
	}

	bankKey := importer.BankKey(filename)

	var (
		mapping    importer.Mapping
		unresolved []string
		fromPreset bool
	)
	if saved, found, err := h.Presets.Get(user.ID, bankKey); err == nil && found {
		mapping = saved
		fromPreset = true
	} else {
		mapping, unresolved = importer.Guess(doc.Headers)
	}

	sample := doc.Rows
	if len(sample) > h.SampleRows {
		sample = sample[:h.SampleRows]
	}

	util.Success(c, util.Response{
		"headers":     doc.Headers,
		"sample":      sample,
		"row_count":   len(doc.Rows),
		"bank_key":    bankKey,
		"mapping":     mapping,
		"unresolved":  unresolved,
		"from_preset": fromPreset,
	})
}

type saveMappingReq struct {
	BankKey string           `json:"bank_key" binding:"required,max=128"`
	Mapping importer.Mapping `json:"mapping" binding:"required"`
}

// SaveMapping persists a column mapping preset for a bank key.
func (h *ImportHandler) SaveMapping(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req saveMappingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	if err := h.Presets.Set(user.ID, req.BankKey, req.Mapping); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save mapping")
		return
	}

	util.Success(c, util.Response{"message": "mapping saved"})
}

// Import runs the full pipeline over an uploaded CSV: parse, normalize every
// data row, resolve account and merchants, categorize via the user's active
// rules (default Uncategorized) and insert, skipping duplicates both within
// the batch and against history.
func (h *ImportHandler) Import(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	accountName := strings.TrimSpace(c.PostForm("account_name"))
	if accountName == "" {
		util.FieldErrors(c, map[string]string{"account_name": "account name is required"})
		return
	}

	text, filename, ok := h.readUpload(c)
	if !ok {
		return
	}

	doc, err := parseUpload(text)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "file is not valid CSV")
		return
	}

	mapping, ok := h.resolveMapping(c, user.ID, filename, doc)
	if !ok {
		return
	}

	account, err := resolveAccount(h.DB, user.ID, accountName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to resolve account")
		return
	}
	fallback, err := ensureUncategorized(h.DB, user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to resolve default category")
		return
	}
	ruleRows, err := loadRules(h.DB, user.ID, true)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load rules")
		return
	}
	matchRules := toMatchRules(ruleRows)

	batchID := uuid.NewString()
	normalizer := importer.Normalizer{}

	var processed, inserted, skipped int
	seen := make(map[string]bool)      // duplicates within this batch
	merchants := make(map[string]uint) // normalized name -> id

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		for _, row := range doc.Rows {
			processed++
			norm := normalizer.NormalizeRow(doc.Headers, row, mapping)

			date := normalizeDate(norm.Date)
			amountCent := norm.Amount.Shift(2).IntPart()

			dedupKey := fmt.Sprintf("%s|%d|%s", date, amountCent, norm.Description)
			if seen[dedupKey] {
				skipped++
				continue
			}
			seen[dedupKey] = true

			var count int64
			if err := tx.Model(&models.Transaction{}).
				Where("user_id = ? AND account_id = ? AND date = ? AND amount_cent = ? AND description = ?",
					user.ID, account.ID, date, amountCent, norm.Description).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				skipped++
				continue
			}

			merchantID, merchantName, merchantNorm, err := h.resolveMerchant(tx, user.ID, norm.Merchant, merchants)
			if err != nil {
				return err
			}

			categoryID := fallback.ID
			match := rules.Apply(rules.Candidate{
				Description:        norm.Description,
				MerchantName:       merchantName,
				MerchantNormalized: merchantNorm,
				Amount:             norm.Amount,
			}, matchRules)
			if match != nil && match.CategoryID != nil {
				categoryID = *match.CategoryID
			}

			txType := "expense"
			if norm.Type == importer.TypeIncome {
				txType = "income"
			}

			txn := models.Transaction{
				UserID:      user.ID,
				AccountID:   account.ID,
				MerchantID:  merchantID,
				CategoryID:  categoryID,
				Type:        txType,
				AmountCent:  amountCent,
				Description: norm.Description,
				Date:        date,
				ImportBatch: batchID,
			}
			if err := tx.Create(&txn).Error; err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "import failed")
		return
	}

	util.Success(c, util.Response{
		"processed":         processed,
		"inserted":          inserted,
		"skipped_duplicate": skipped,
		"import_batch":      batchID,
		"account": gin.H{
			"id":   account.ID,
			"name": account.Name,
		},
	})
}

// resolveMapping reads the mapping form field (falling back to the saved
// preset, then to a guess) and checks every field resolves to a real header.
func (h *ImportHandler) resolveMapping(c *gin.Context, userID uint, filename string, doc importer.Document) (importer.Mapping, bool) {
	var mapping importer.Mapping

	if raw := c.PostForm("mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
			util.FieldErrors(c, map[string]string{"mapping": "mapping is not valid JSON"})
			return importer.Mapping{}, false
		}
	} else if saved, found, err := h.Presets.Get(userID, importer.BankKey(filename)); err == nil && found {
		mapping = saved
	} else {
		mapping, _ = importer.Guess(doc.Headers)
	}

	headerSet := make(map[string]bool, len(doc.Headers))
	for _, hd := range doc.Headers {
		headerSet[hd] = true
	}
	fields := map[string]string{}
	for field, header := range map[string]string{
		"date":        mapping.Date,
		"amount":      mapping.Amount,
		"type":        mapping.Type,
		"description": mapping.Description,
		"merchant":    mapping.Merchant,
	} {
		if !headerSet[header] {
			fields["mapping."+field] = fmt.Sprintf("header %q not present in file", header)
		}
	}
	if len(fields) > 0 {
		util.FieldErrors(c, fields)
		return importer.Mapping{}, false
	}
	return mapping, true
}

// resolveMerchant finds or creates a merchant by normalized name, memoizing
// within the batch. Empty merchant text yields a nil merchant.
func (h *ImportHandler) resolveMerchant(tx *gorm.DB, userID uint, name string, cache map[string]uint) (*uint, string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", "", nil
	}
	norm := models.NormalizeMerchantName(name)

	if id, ok := cache[norm]; ok {
		return &id, name, norm, nil
	}

	var merchant models.Merchant
	err := tx.Where("user_id = ? AND normalized_name = ?", userID, norm).
		First(&merchant).Error
	if err == gorm.ErrRecordNotFound {
		merchant = models.Merchant{
			UserID:         userID,
			Name:           name,
			NormalizedName: norm,
		}
		if err := tx.Create(&merchant).Error; err != nil {
			return nil, "", "", err
		}
	} else if err != nil {
		return nil, "", "", err
	}

	cache[norm] = merchant.ID
	return &merchant.ID, merchant.Name, merchant.NormalizedName, nil
}

// dateLayouts are the date shapes seen across supported bank exports.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"02/01/2006",
	"2006/01/02",
	"Jan 2, 2006",
}

// normalizeDate converts a raw CSV date cell to YYYY-MM-DD, keeping the raw
// text when no layout fits so the row still imports.
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return raw
}
