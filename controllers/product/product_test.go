package productcontroller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/ayushmanmishra18/storefront-api/apperr"
	"github.com/ayushmanmishra18/storefront-api/auth"
	"github.com/ayushmanmishra18/storefront-api/internal/testdb"
	"github.com/ayushmanmishra18/storefront-api/middleware"
	"github.com/ayushmanmishra18/storefront-api/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(db *gorm.DB, p auth.Principal) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler(slog.New(slog.NewJSONHandler(io.Discard, nil))))
	r.Use(func(c *gin.Context) { auth.SetPrincipal(c, p); c.Next() })
	r.GET("/products", GetProducts(db))
	r.GET("/products/categories", GetCategories(db))
	r.GET("/products/:id", GetProductByID(db))
	r.POST("/products", CreateProduct(db))
	r.PUT("/products/:id", UpdateProduct(db))
	r.DELETE("/products/:id", DeleteProduct(db))
	r.GET("/admin/products/export", ExportProductsToExcel(db))
	r.POST("/admin/products/import", ImportProductsFromExcel(db))
	return r
}

func send(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, reader))
	return w
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCreateProductRecord(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	p, err := CreateProductRecord(ctx, db, "admin", ProductInput{Name: "Shoe", Price: price("50")})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultProductStock, p.Stock)
	assert.Equal(t, models.DefaultProductImage, p.Image)
	assert.Equal(t, "admin", p.CreatedBy)

	zero := 0
	p, err = CreateProductRecord(ctx, db, "admin", ProductInput{Name: "Hat", Price: price("5"), Stock: &zero})
	require.NoError(t, err)
	assert.Zero(t, p.Stock)

	tests := []struct {
		name string
		in   ProductInput
		want error
	}{
		{"missing name", ProductInput{Price: price("1")}, ErrNameAndPriceRequired},
		{"missing price", ProductInput{Name: "A"}, ErrNameAndPriceRequired},
		{"zero price", ProductInput{Name: "A", Price: price("0")}, ErrNameAndPriceRequired},
		{"negative price", ProductInput{Name: "A", Price: price("-3")}, ErrInvalidPrice},
		{"sub-cent price", ProductInput{Name: "A", Price: price("9.999")}, ErrPricePrecision},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateProductRecord(ctx, db, "admin", tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
		})
	}
}

func TestUpdateAndDelete_Ownership(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	owner := auth.Principal{Role: auth.RoleUser, ID: uuid.NewString()}
	stranger := auth.Principal{Role: auth.RoleUser, ID: uuid.NewString()}
	admin := auth.Principal{Role: auth.RoleAdmin, ID: uuid.NewString()}

	p, err := CreateProductRecord(ctx, db, owner.ID, ProductInput{Name: "Shoe", Price: price("50"), Category: "shoes"})
	require.NoError(t, err)

	_, err = UpdateProductRecord(ctx, db, p.ID, stranger, ProductInput{Name: "Boot"})
	assert.ErrorIs(t, err, ErrUpdateForbidden)

	updated, err := UpdateProductRecord(ctx, db, p.ID, owner, ProductInput{Name: "Boot"})
	require.NoError(t, err)
	assert.Equal(t, "Boot", updated.Name)
	assert.True(t, decimal.NewFromInt(50).Equal(updated.Price))
	assert.Equal(t, "shoes", updated.Category)

	updated, err = UpdateProductRecord(ctx, db, p.ID, admin, ProductInput{Price: price("60")})
	require.NoError(t, err)
	assert.Equal(t, "Boot", updated.Name)
	assert.True(t, decimal.NewFromInt(60).Equal(updated.Price))

	_, err = UpdateProductRecord(ctx, db, p.ID, admin, ProductInput{Price: price("60.001")})
	assert.ErrorIs(t, err, ErrPricePrecision)

	assert.ErrorIs(t, DeleteProductRecord(ctx, db, p.ID, stranger), ErrDeleteForbidden)
	require.NoError(t, DeleteProductRecord(ctx, db, p.ID, owner))
	assert.ErrorIs(t, DeleteProductRecord(ctx, db, p.ID, admin), ErrProductNotFound)

	_, err = UpdateProductRecord(ctx, db, "nope", admin, ProductInput{Name: "X"})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductHandlers(t *testing.T) {
	db := testdb.Open(t)
	admin := auth.Principal{Role: auth.RoleAdmin, ID: uuid.NewString()}
	r := newRouter(db, admin)

	w := send(r, http.MethodPost, "/products", `{"name":"Shoe","price":50,"category":"shoes"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var shoe models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shoe))
	assert.Equal(t, admin.ID, shoe.CreatedBy)
	assert.Equal(t, 100, shoe.Stock)

	w = send(r, http.MethodPost, "/products", `{"name":"Sock","price":3,"category":"socks"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = send(r, http.MethodPost, "/products", `{"price":3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Product name and price are required"}`, w.Body.String())

	w = send(r, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	var all []models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	w = send(r, http.MethodGet, "/products?createdBy="+uuid.NewString(), "")
	assert.JSONEq(t, `[]`, w.Body.String())

	w = send(r, http.MethodGet, "/products/categories", "")
	assert.JSONEq(t, `["shoes","socks"]`, w.Body.String())

	w = send(r, http.MethodGet, "/products/"+shoe.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = send(r, http.MethodGet, "/products/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = send(r, http.MethodPut, "/products/"+shoe.ID, `{"stock":7}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"stock":7`)

	w = send(r, http.MethodDelete, "/products/"+shoe.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Product removed"}`, w.Body.String())
	w = send(r, http.MethodGet, "/products/"+shoe.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	other := newRouter(db, auth.Principal{Role: auth.RoleUser, ID: uuid.NewString()})
	w = send(other, http.MethodDelete, "/products/"+all[1].ID, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestExportImportRoundTrip(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	admin := auth.Principal{Role: auth.RoleAdmin, ID: uuid.NewString()}
	r := newRouter(db, admin)

	existing, err := CreateProductRecord(ctx, db, admin.ID, ProductInput{Name: "Shoe", Price: price("50")})
	require.NoError(t, err)

	w := send(r, http.MethodGet, "/admin/products/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	exported, err := xlsx.OpenBinary(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, exported.Sheets, 1)
	sheet := exported.Sheets[0]
	require.Equal(t, 2, sheet.MaxRow)
	assert.Equal(t, existing.ID, sheet.Rows[1].Cells[colID].String())
	assert.Equal(t, "50.00", sheet.Rows[1].Cells[colPrice].String())

	// edit the exported row and add a new one plus a broken one
	sheet.Rows[1].Cells[colName].SetString("Boot")
	row := sheet.AddRow()
	for _, v := range []string{"", "Hat", "12.5", "warm", "", "hats", "3"} {
		row.AddCell().SetString(v)
	}
	row = sheet.AddRow()
	for _, v := range []string{"", "Broken", "free"} {
		row.AddCell().SetString(v)
	}

	var buf bytes.Buffer
	require.NoError(t, exported.Write(&buf))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "products.xlsx")
	require.NoError(t, err)
	_, err = part.Write(buf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/products/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"created":1,"updated":1,"skipped":1}`, w.Body.String())

	got, err := models.FindProductByID(db, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Boot", got.Name)

	products, err := models.ListProducts(db, admin.ID)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Hat", products[1].Name)
	assert.Equal(t, 3, products[1].Stock)
	assert.Equal(t, "hats", products[1].Category)
}

func TestImport_RequiresFile(t *testing.T) {
	r := newRouter(testdb.Open(t), auth.Principal{Role: auth.RoleAdmin, ID: "a"})

	w := send(r, http.MethodPost, "/admin/products/import", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Excel file is required"}`, w.Body.String())
}
