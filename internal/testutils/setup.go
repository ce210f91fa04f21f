package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/database"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/kvstore"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/registry"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/server"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/storage"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/upload"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "Failed to create test database")

	// One connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db), "Failed to migrate test database")

	return db
}

// TestApp bundles the app with the stores behind it so tests can seed and
// inspect state directly.
type TestApp struct {
	App         *fiber.App
	DB          *gorm.DB
	Templates   *storage.Templates
	Submissions *storage.Submissions
	UploadDir   string
}

func SetupTestApp(t *testing.T) *TestApp {
	db := TestDB(t)

	kv := kvstore.NewGorm(db, 0)
	submissions := storage.NewSubmissions(kv)
	templates := storage.NewTemplates(kv, submissions)

	dir := t.TempDir()
	local, err := upload.NewLocal(dir)
	require.NoError(t, err, "Failed to initialize storage")

	app := server.New(server.Deps{
		Registry:    registry.Default(),
		Templates:   templates,
		Submissions: submissions,
		Uploader:    local,
		UploadDir:   dir,
	})
	return &TestApp{App: app, DB: db, Templates: templates, Submissions: submissions, UploadDir: dir}
}

func MakeRequest(app *fiber.App, method, url string, body interface{}) (*httptest.ResponseRecorder, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, url, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()

	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode
	for k, v := range resp.Header {
		for _, val := range v {
			rec.Header().Add(k, val)
		}
	}

	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

func ParseResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	if resp.Body.Len() == 0 {
		t.Log("Warning: Response body is empty")
		return
	}

	err := json.Unmarshal(resp.Body.Bytes(), v)
	if err != nil {
		t.Logf("Response body: %s", resp.Body.String())
		assert.NoError(t, err, "Failed to parse response")
	}
}

type StandardResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorDetail    `json:"error"`
	Meta    *Meta           `json:"meta"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// DecodeData unmarshals the data member of a success envelope into v.
func DecodeData(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) StandardResponse {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	if v != nil && len(result.Data) > 0 {
		require.NoError(t, json.Unmarshal(result.Data, v), "Failed to decode data")
	}
	return result
}

func AssertSuccess(t *testing.T, resp *httptest.ResponseRecorder) {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.True(t, result.Success, "Expected success response")
	assert.Empty(t, result.Error, "Expected no error")
}

func AssertError(t *testing.T, resp *httptest.ResponseRecorder, expectedCode string) {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.False(t, result.Success, "Expected error response")
	if assert.NotNil(t, result.Error, "Expected error object") {
		assert.Equal(t, expectedCode, result.Error.Code, "Error code mismatch")
	}
}
