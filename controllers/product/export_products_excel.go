package productcontroller

import (
	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/ayushmanmishra18/storefront-api/apperr"
	"github.com/ayushmanmishra18/storefront-api/models"
)

// sheetHeaders is the column layout shared by export and import.
var sheetHeaders = []string{
	"ID", "Name", "Price", "Description", "Image", "Category", "Stock", "CreatedBy", "CreatedAt",
}

const (
	colID = iota
	colName
	colPrice
	colDescription
	colImage
	colCategory
	colStock
)

// BuildProductsSheet renders products into a single-sheet workbook.
func BuildProductsSheet(products []models.Product) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, err
	}

	headerRow := sheet.AddRow()
	for _, h := range sheetHeaders {
		headerRow.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Price.StringFixed(2))
		row.AddCell().SetString(p.Description)
		row.AddCell().SetString(p.Image)
		row.AddCell().SetString(p.Category)
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetString(p.CreatedBy)
		row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return file, nil
}

// GET /admin/products/export
func ExportProductsToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := models.ListProducts(db.WithContext(c.Request.Context()), "")
		if err != nil {
			_ = c.Error(apperr.Wrap(apperr.Internal, "Failed to fetch products", err))
			return
		}

		file, err := BuildProductsSheet(products)
		if err != nil {
			_ = c.Error(apperr.Wrap(apperr.Internal, "Failed to create Excel sheet", err))
			return
		}

		// Set response headers for download
		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			_ = c.Error(apperr.Wrap(apperr.Internal, "Failed to write Excel file", err))
			return
		}
	}
}
