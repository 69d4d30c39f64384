package controller

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{"Repeated values", []string{"meals", "drinks"}, []string{"meals", "drinks"}},
		{"Comma separated", []string{"meals, drinks"}, []string{"meals", "drinks"}},
		{"Mixed with blanks", []string{"meals,,", " ", "desserts"}, []string{"meals", "desserts"}},
		{"Nothing", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitList(tt.values))
		})
	}
}

func TestParseID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantID     uint
	}{
		{"Valid", "/items/42", http.StatusOK, 42},
		{"Zero", "/items/0", http.StatusBadRequest, 0},
		{"Negative", "/items/-3", http.StatusBadRequest, 0},
		{"Not a number", "/items/abc", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/items/:id", func(c *gin.Context) {
				id, ok := parseID(c, "id")
				if !ok {
					return
				}
				c.JSON(http.StatusOK, gin.H{"id": id})
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, float64(tt.wantID), body["id"])
				return
			}
			assert.Equal(t, "VALIDATION_INVALID_ID", body["errorData"].(map[string]interface{})["code"])
		})
	}
}

func TestFormFiles(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range []string{"a.png", "b.png"} {
		part, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("data"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", &buf)
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())

	files, err := formFiles(c, "images")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.png", files[0].Name)
	assert.Equal(t, int64(4), files[0].Size)

	single, err := formFile(c, "missing")
	require.NoError(t, err)
	assert.Nil(t, single)

	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{}`))
	c.Request.Header.Set("Content-Type", "application/json")
	files, err = formFiles(c, "images")
	require.NoError(t, err)
	assert.Empty(t, files)
}
