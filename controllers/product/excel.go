package productcontroller

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/ayushmanmishra18/storefront-api/apperr"
	"github.com/ayushmanmishra18/storefront-api/auth"
)

var (
	ErrExcelRequired = apperr.Invalidf("Excel file is required")
	ErrExcelInvalid  = apperr.Invalidf("Failed to parse Excel file")
	ErrExcelEmpty    = apperr.Invalidf("Excel file is empty or missing header row")
)

type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ImportProducts reads rows laid out like the export. Rows with a known ID
// update that product, others create one owned by p. Invalid rows are skipped.
func ImportProducts(ctx context.Context, db *gorm.DB, p auth.Principal, file *xlsx.File) (ImportResult, error) {
	var result ImportResult
	if len(file.Sheets) == 0 || file.Sheets[0].MaxRow < 2 {
		return result, ErrExcelEmpty
	}

	sheet := file.Sheets[0]
	for i := 1; i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]
		get := func(index int) string {
			if row != nil && index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}

		in, ok := rowInput(get)
		if !ok {
			result.Skipped++
			continue
		}

		if id := get(colID); id != "" {
			if _, err := findProduct(ctx, db, id); err == nil {
				if _, err := UpdateProductRecord(ctx, db, id, p, in); err != nil {
					result.Skipped++
				} else {
					result.Updated++
				}
				continue
			}
		}

		if _, err := CreateProductRecord(ctx, db, p.ID, in); err != nil {
			result.Skipped++
			continue
		}
		result.Created++
	}
	return result, nil
}

func rowInput(get func(int) string) (ProductInput, bool) {
	name := get(colName)
	price, err := decimal.NewFromString(get(colPrice))
	if name == "" || err != nil {
		return ProductInput{}, false
	}

	in := ProductInput{
		Name:        name,
		Price:       &price,
		Description: get(colDescription),
		Image:       get(colImage),
		Category:    get(colCategory),
	}
	if s := get(colStock); s != "" {
		stock, err := strconv.Atoi(s)
		if err != nil {
			return ProductInput{}, false
		}
		in.Stock = &stock
	}
	return in, true
}

// POST /admin/products/import
func ImportProductsFromExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			_ = c.Error(err)
			return
		}

		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			_ = c.Error(ErrExcelRequired)
			return
		}
		file, err := excelFileHeader.Open()
		if err != nil {
			_ = c.Error(apperr.Wrap(apperr.Internal, "Failed to open Excel file", err))
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			_ = c.Error(ErrExcelInvalid)
			return
		}

		result, err := ImportProducts(c.Request.Context(), db, p, xlFile)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
