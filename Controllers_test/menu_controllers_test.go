package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokulpos/restaurant-pos/models"
)

func TestMenuCRUD(t *testing.T) {
	r, _, _ := setupServer(t)

	// Seeded starter menu
	w := doRequest(t, r, "GET", "/api/menu", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var menu []models.MenuItem
	decodeData(t, w, &menu)
	assert.Len(t, menu, 17)

	// Create
	w = doRequest(t, r, "POST", "/api/menu", map[string]interface{}{
		"category": "Drinks",
		"name":     "Masala Chai",
		"price":    20.0,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.MenuItem
	decodeData(t, w, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Masala Chai", created.Name)

	// Invalid create
	w = doRequest(t, r, "POST", "/api/menu", map[string]interface{}{
		"category": "Drinks",
		"name":     "",
		"price":    20.0,
	}, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// Delete
	w = doRequest(t, r, "DELETE", fmt.Sprintf("/api/menu/%d", created.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, "GET", "/api/menu", nil, nil)
	decodeData(t, w, &menu)
	assert.Len(t, menu, 17)
}

func TestBulkUpdateMenuRequiresOwner(t *testing.T) {
	r, _, _ := setupServer(t)

	payload := map[string]interface{}{
		"items": []map[string]interface{}{
			{"category": "Drinks", "name": "Chai", "price": 15.0},
		},
	}

	w := doRequest(t, r, "POST", "/api/menu/bulk", payload, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, r, "POST", "/api/menu/bulk", payload, ownerHeaders(t))
	require.Equal(t, http.StatusOK, w.Code)
	var menu []models.MenuItem
	decodeData(t, w, &menu)
	assert.Len(t, menu, 1)
	assert.Equal(t, "Chai", menu[0].Name)
}
