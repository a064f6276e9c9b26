package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hotel-manager/config"
	"hotel-manager/models"
	"hotel-manager/queue"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

type apiClient struct {
	t      *testing.T
	router http.Handler
	token  string
}

func (c *apiClient) do(method, path string, body interface{}) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (c *apiClient) login(username, password string) {
	c.t.Helper()
	code, env := c.do(http.MethodPost, "/api/auth/login", gin.H{"username": username, "password": password})
	require.Equal(c.t, http.StatusOK, code, env.Error)
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(c.t, json.Unmarshal(env.Data, &res))
	c.token = res.Token
}

func decodeID(t *testing.T, env envelope) uint {
	t.Helper()
	var v struct {
		ID uint `json:"ID"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &v))
	require.NotZero(t, v.ID)
	return v.ID
}

func setupAPI(t *testing.T) (*gorm.DB, http.Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := config.Config{
		JWTSecret:         "integration-secret",
		TokenTTL:          time.Hour,
		BcryptCost:        4,
		Timezone:          "UTC",
		SeedAdminUsername: "admin",
		SeedAdminPassword: "admin123",
	}
	require.NoError(t, config.AutoMigrate(db))
	require.NoError(t, config.Seed(db, cfg))
	return db, buildRouter(cfg, db, nil, queue.Noop{})
}

func TestReceptionOverHTTP(t *testing.T) {
	_, router := setupAPI(t)
	admin := &apiClient{t: t, router: router}

	code, env := admin.do(http.MethodGet, "/api/reception", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	admin.login("admin", "admin123")

	code, env = admin.do(http.MethodPost, "/api/floors", gin.H{"number": 1})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var floor models.Floor
	require.NoError(t, json.Unmarshal(env.Data, &floor))
	assert.True(t, floor.Active)

	code, env = admin.do(http.MethodPost, "/api/room-types", gin.H{"name": "Matrimonial"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var roomType models.RoomType
	require.NoError(t, json.Unmarshal(env.Data, &roomType))

	code, env = admin.do(http.MethodPost, "/api/rooms", gin.H{
		"number": "101", "floor_id": floor.ID, "room_type_id": roomType.ID, "nightly_price": "100.00",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	roomID := decodeID(t, env)

	code, env = admin.do(http.MethodPost, "/api/clients", gin.H{"document_id": "0102030405", "full_name": "Ana Torres"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	clientID := decodeID(t, env)

	code, env = admin.do(http.MethodPost, "/api/products", gin.H{"name": "Agua", "sale_price": "15.00", "stock": 10})
	require.Equal(t, http.StatusCreated, code, env.Error)
	productID := decodeID(t, env)

	code, env = admin.do(http.MethodPost, "/api/clients", gin.H{"full_name": "Sin documento"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Fields, "document_id")

	checkout := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)
	code, env = admin.do(http.MethodPost, fmt.Sprintf("/api/rooms/%d/occupy", roomID), gin.H{
		"client_id":        clientID,
		"check_out_at":     checkout,
		"discount_percent": "10",
		"payment":          gin.H{"payment_type": "CASH", "amount_received": "180.00"},
		"companions":       []gin.H{{"full_name": "Luis Torres"}},
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var res models.Reservation
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, models.ReservationActive, res.Status)
	assert.True(t, res.RoomCost.Equal(decimal.RequireFromString("200")), res.RoomCost.String())

	code, _ = admin.do(http.MethodPost, fmt.Sprintf("/api/rooms/%d/occupy", roomID), gin.H{
		"client_id": clientID, "check_out_at": checkout, "payment": gin.H{"payment_type": "CASH", "amount_received": "0"},
	})
	assert.Equal(t, http.StatusConflict, code)

	code, env = admin.do(http.MethodPost, fmt.Sprintf("/api/rooms/%d/consumptions", roomID), gin.H{
		"lines": []gin.H{{"product_id": productID, "quantity": 2}},
	})
	require.Equal(t, http.StatusOK, code, env.Error)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.ProductCost.Equal(decimal.RequireFromString("30")))

	code, env = admin.do(http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var summary struct {
		OccupiedRooms int64 `json:"occupied_rooms"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.EqualValues(t, 1, summary.OccupiedRooms)

	code, _ = admin.do(http.MethodPost, fmt.Sprintf("/api/rooms/%d/checkout", roomID), nil)
	require.Equal(t, http.StatusOK, code)
	code, env = admin.do(http.MethodPost, fmt.Sprintf("/api/rooms/%d/checkout", roomID), nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "no active reservation", env.Error)

	code, _ = admin.do(http.MethodPost, fmt.Sprintf("/api/rooms/%d/mark-available", roomID), nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = admin.do(http.MethodGet, "/api/rooms/999", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = admin.do(http.MethodGet, "/api/rooms/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPermissionsOverHTTP(t *testing.T) {
	db, router := setupAPI(t)
	admin := &apiClient{t: t, router: router}
	admin.login("admin", "admin123")

	var receptionist models.Group
	require.NoError(t, db.Where("name = ?", config.ReceptionistGroupName).First(&receptionist).Error)

	code, env := admin.do(http.MethodPost, "/api/users", gin.H{
		"username": "maria", "password": "secret1", "group_ids": []uint{receptionist.ID},
	})
	require.Equal(t, http.StatusCreated, code, env.Error)

	desk := &apiClient{t: t, router: router}
	desk.login("maria", "secret1")

	code, env = desk.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), models.PermOccupyRoom)

	code, _ = desk.do(http.MethodGet, "/api/reception", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = desk.do(http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = desk.do(http.MethodPost, "/api/purchases", gin.H{"supplier_id": 1, "lines": []gin.H{}})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Contains(t, env.Error, "ledger.add_purchase")

	code, _ = desk.do(http.MethodPost, "/api/products", gin.H{"name": "Hielo"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = desk.do(http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusForbidden, code)
}
