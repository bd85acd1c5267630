package integration_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/lltsaorg/thiha-shop-app/internal/catalog"
)

func TestCreateProduct_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := catalog.NewHandler(catalog.NewRepository(db))

	router.POST("/products", handler.CreateProduct)
	router.GET("/products", handler.ListProducts)

	reqBody := map[string]interface{}{
		"name":  "Drinking Water",
		"price": 300,
	}
	bodyBytes, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/products", bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var created catalog.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "Drinking Water", created.Name)
	require.Equal(t, int64(300), created.Price)
	require.True(t, created.Active)

	req, _ = http.NewRequest("GET", "/products", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var listed []catalog.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	require.Equal(t, created.ID, listed[0].ID)
}
