package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/JosephCatalano/ledgerleaf/internal/models"
	"github.com/JosephCatalano/ledgerleaf/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler serves transaction export downloads.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

var exportHeaders = []string{"Date", "Account", "Type", "Category", "Merchant", "Amount", "Description"}

func (h *ExportHandler) loadTransactions(c *gin.Context, userID uint) ([]models.Transaction, bool) {
	var txns []models.Transaction
	if err := h.DB.Preload("Account").Preload("Category").Preload("Merchant").
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Find(&txns).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list transactions")
		return nil, false
	}
	return txns, true
}

func exportRow(t *models.Transaction) []string {
	return []string{
		t.Date,
		t.Account.Name,
		t.Type,
		t.Category.Name,
		t.Merchant.Name,
		formatCentToDollar(t.AmountCent),
		t.Description,
	}
}

// ExportCSV downloads all of the user's transactions as CSV.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	txns, ok := h.loadTransactions(c, user.ID)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM so spreadsheet apps detect the encoding
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range txns {
		writer.Write(exportRow(&txns[i]))
	}
}

// ExportXLSX downloads all of the user's transactions as an XLSX workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	txns, ok := h.loadTransactions(c, user.ID)
	if !ok {
		return
	}

	f := excelize.NewFile()
	sheetName := "Transactions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}
	f.SetActiveSheet(index)

	for i, hd := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, hd)
	}

	for idx := range txns {
		row := idx + 2
		for col, val := range exportRow(&txns[idx]) {
			cell := fmt.Sprintf("%c%d", 'A'+col, row)
			f.SetCellValue(sheetName, cell, val)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "E", 18)
	f.SetColWidth(sheetName, "F", "F", 12)
	f.SetColWidth(sheetName, "G", "G", 40)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to write workbook")
	}
}
