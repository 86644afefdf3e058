package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// MaxImportRows bounds a single catalog import upload.
const MaxImportRows = 10000

type ImportHandler struct {
	repo repository.CatalogRepositoryInterface
}

func NewImportHandler(repo repository.CatalogRepositoryInterface) *ImportHandler {
	return &ImportHandler{repo: repo}
}

// ImportCatalog imports catalog products from a CSV or Excel file
// @Summary Import catalog products
// @Description Upserts catalog products from an uploaded CSV or XLSX file, matched on SKU
// @Tags catalog
// @Accept multipart/form-data
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} models.CatalogImportResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /catalog/import [post]
func (h *ImportHandler) ImportCatalog(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FILE_REQUIRED",
				Message: "Please upload a CSV or Excel file",
			},
		})
		return
	}
	defer file.Close()

	var rows []map[string]string
	var parseErr error

	filename := strings.ToLower(header.Filename)
	switch {
	case strings.HasSuffix(filename, ".csv"):
		rows, parseErr = parseCSV(file)
	case strings.HasSuffix(filename, ".xlsx"):
		rows, parseErr = parseXLSX(file)
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_FORMAT",
				Message: "Only CSV and XLSX files are supported",
			},
		})
		return
	}

	if parseErr != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "PARSE_ERROR",
				Message: parseErr.Error(),
			},
		})
		return
	}

	if len(rows) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "EMPTY_FILE",
				Message: "The file contains no data rows",
			},
		})
		return
	}
	if len(rows) > MaxImportRows {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "TOO_MANY_ROWS",
				Message: fmt.Sprintf("Import is limited to %d rows per file", MaxImportRows),
			},
		})
		return
	}

	result := models.CatalogImportResult{TotalRows: len(rows)}

	products := make([]models.CatalogProduct, 0, len(rows))
	for _, row := range rows {
		product, rowErr := buildCatalogProduct(tenantID, row)
		if rowErr != nil {
			result.SkippedRows++
			result.Errors = append(result.Errors, rowErr.Error())
			continue
		}
		products = append(products, *product)
	}

	if len(products) > 0 {
		imported, err := h.repo.UpsertProducts(c.Request.Context(), tenantID, products)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "IMPORT_FAILED",
					Message: "Failed to persist catalog products",
				},
			})
			return
		}
		result.ImportedRows = imported
	}

	c.JSON(http.StatusOK, models.CatalogImportResponse{Success: true, Data: result})
}

// buildCatalogProduct maps a parsed row onto the catalog model. Rows missing
// sku, name or a valid price are rejected.
func buildCatalogProduct(tenantID string, row map[string]string) (*models.CatalogProduct, error) {
	rowNum := row["_row"]

	if row["sku"] == "" {
		return nil, fmt.Errorf("row %s: sku is required", rowNum)
	}
	if row["name"] == "" {
		return nil, fmt.Errorf("row %s: name is required", rowNum)
	}

	price, err := strconv.ParseFloat(row["price"], 64)
	if err != nil || price < 0 {
		return nil, fmt.Errorf("row %s: price must be a non-negative number", rowNum)
	}

	product := &models.CatalogProduct{
		TenantID:    tenantID,
		SKU:         row["sku"],
		Name:        row["name"],
		Price:       price,
		Category:    row["category"],
		SubCategory: row["subcategory"],
		Status:      models.CatalogProductStatusActive,
	}

	if tags := splitList(row["tags"]); len(tags) > 0 {
		product.Tags = models.ToJSONArray(tags)
	}
	if images := splitList(row["images"]); len(images) > 0 {
		product.Images = models.ToJSONArray(images)
	}
	if row["rating"] != "" {
		rating, err := strconv.ParseFloat(row["rating"], 64)
		if err != nil || rating < 0 || rating > 5 {
			return nil, fmt.Errorf("row %s: rating must be between 0 and 5", rowNum)
		}
		product.Rating = &rating
	}
	if row["popularity"] != "" {
		popularity, err := strconv.Atoi(row["popularity"])
		if err != nil || popularity < 0 {
			return nil, fmt.Errorf("row %s: popularity must be a non-negative integer", rowNum)
		}
		product.Popularity = &popularity
	}
	if status := strings.ToUpper(strings.TrimSpace(row["status"])); status != "" {
		product.Status = models.CatalogProductStatus(status)
	}

	return product, nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseCSV parses a CSV file into rows keyed by lowercased header names
func parseCSV(file io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(file)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	normalizeHeaders(headers)

	var rows []map[string]string
	lineNum := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", lineNum+1, err)
		}

		row := make(map[string]string)
		for i, value := range record {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row["_row"] = strconv.Itoa(lineNum + 1)
		rows = append(rows, row)
		lineNum++
	}

	return rows, nil
}

// parseXLSX parses an Excel file into rows keyed by lowercased header names
func parseXLSX(file io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	sheetName := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, "Products") {
			sheetName = name
			break
		}
	}

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, fmt.Errorf("file must have a header row and at least one data row")
	}

	headers := excelRows[0]
	normalizeHeaders(headers)

	var rows []map[string]string
	for rowIdx, excelRow := range excelRows[1:] {
		row := make(map[string]string)
		for i, value := range excelRow {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row["_row"] = strconv.Itoa(rowIdx + 2)
		rows = append(rows, row)
	}

	return rows, nil
}

func normalizeHeaders(headers []string) {
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}
}
