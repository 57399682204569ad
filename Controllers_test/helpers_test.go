package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/gokulpos/restaurant-pos/live"
	"github.com/gokulpos/restaurant-pos/router"
	"github.com/gokulpos/restaurant-pos/store"
	"github.com/gokulpos/restaurant-pos/utils"
)

func setupServer(t *testing.T) (*gin.Engine, store.Store, *live.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "pos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	hub := live.NewHub()
	return router.SetupRouter(st, hub), st, hub
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var env struct {
		Status  bool            `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
}

func ownerHeaders(t *testing.T) map[string]string {
	t.Helper()
	token, err := utils.GenerateToken("owner")
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}
