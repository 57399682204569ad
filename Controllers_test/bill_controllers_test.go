package Controllers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokulpos/restaurant-pos/models"
)

func TestBillCreateAndSearch(t *testing.T) {
	r, _, _ := setupServer(t)

	w := doRequest(t, r, "POST", "/api/bills", map[string]interface{}{
		"order_id":   1,
		"table_id":   2,
		"staff_name": "Ravi",
		"items": []map[string]interface{}{
			{"item_name": "Samosa", "quantity": 2, "price": 8.0},
		},
		"subtotal": 16.0,
		"tax":      0.0,
		"total":    16.0,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var bill models.Bill
	decodeData(t, w, &bill)
	assert.True(t, strings.HasPrefix(bill.BillNumber, "BILL-"))
	assert.Equal(t, 16.0, bill.Total)

	w = doRequest(t, r, "POST", "/api/bills", map[string]interface{}{
		"order_id":   2,
		"staff_name": "Meena",
		"total":      50.0,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, r, "GET", "/api/bills?search=Meena", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bills []models.Bill
	decodeData(t, w, &bills)
	require.Len(t, bills, 1)
	assert.Equal(t, "Meena", bills[0].StaffName)

	w = doRequest(t, r, "GET", fmt.Sprintf("/api/bills/%d", bill.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, "GET", "/api/bills/99999", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
