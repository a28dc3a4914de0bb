package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineAdmin(t *testing.T) {
	router, _ := newTestServer(t)

	// Create.
	w := doJSON(t, router, http.MethodPost, "/api/machines", gin.H{
		"display_name": "Tumbler 9", "type": "tumbler",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := int64(created["id"].(float64))
	assert.Equal(t, "tumbler", created["type"])

	// Unknown type rejected.
	w = doJSON(t, router, http.MethodPost, "/api/machines", gin.H{
		"display_name": "Mystery", "type": "mangler",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Delete.
	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/machines/%d", id), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/machines/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetMachinesCacheInvalidation(t *testing.T) {
	router, _ := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/api/machines", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var machines []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &machines))
	before := len(machines)

	// The create must flush the GET cache so the new machine is visible
	// immediately.
	w = doJSON(t, router, http.MethodPost, "/api/machines", gin.H{
		"display_name": "Washer Z", "type": "washer",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/machines", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &machines))
	assert.Len(t, machines, before+1)
}

func TestGetWindows(t *testing.T) {
	router, _ := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/api/windows", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []any{"morning", "afternoon", "evening"}, resp["windows"])
	assert.Equal(t, "Sunday", resp["blackout_weekday"])
}
