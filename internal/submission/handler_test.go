package submission_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/submission"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTemplate(t *testing.T, app *testutils.TestApp) *models.FormTemplate {
	t.Helper()
	min := 0.0
	tmpl, err := app.Templates.Save(context.Background(), &models.FormTemplate{
		Name: "Site Survey",
		Fields: []models.FieldDefinition{
			{ID: "f1", Type: models.FieldText, Name: "customer_name", Label: "Customer Name", Required: true, Order: 0},
			{ID: "f2", Type: models.FieldNumber, Name: "roof_area", Label: "Roof Area", Min: &min, Order: 1},
			{ID: "f3", Type: models.FieldToggle, Name: "shading", Label: "Shading", Order: 2},
		},
	})
	require.NoError(t, err)
	return tmpl
}

func createSubmission(t *testing.T, app *testutils.TestApp, templateID string, data map[string]interface{}) *models.Submission {
	t.Helper()
	resp, err := testutils.MakeRequest(app.App, "POST", "/templates/"+templateID+"/submissions", map[string]interface{}{"data": data})
	require.NoError(t, err)
	require.Equal(t, 201, resp.Code, resp.Body.String())

	var sub models.Submission
	testutils.DecodeData(t, resp, &sub)
	return &sub
}

func TestCreateSubmissionHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)
	tmpl := seedTemplate(t, app)

	t.Run("Success - Values are coerced and unknown keys dropped", func(t *testing.T) {
		sub := createSubmission(t, app, tmpl.ID, map[string]interface{}{
			"customer_name": "Jane Doe",
			"roof_area":     "42",
			"extra":         "ignored",
		})
		assert.NotEmpty(t, sub.ID)
		assert.Equal(t, tmpl.ID, sub.TemplateID)
		assert.Equal(t, "Site Survey", sub.Name)
		assert.Equal(t, 42.0, sub.Data["roof_area"])
		assert.NotContains(t, sub.Data, "extra")
		assert.Contains(t, sub.Data, "shading")
	})

	t.Run("Error - Failing fields", func(t *testing.T) {
		body := map[string]interface{}{"data": map[string]interface{}{"roof_area": -1}}
		resp, err := testutils.MakeRequest(app.App, "POST", "/templates/"+tmpl.ID+"/submissions", body)
		assert.NoError(t, err)
		assert.Equal(t, 422, resp.Code)
		testutils.AssertError(t, resp, "VALIDATION_ERROR")
		assert.Contains(t, resp.Body.String(), "Customer Name is required")
		assert.Contains(t, resp.Body.String(), "Roof Area must be at least 0")
	})

	t.Run("Error - Unknown template", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app.App, "POST", "/templates/missing/submissions", map[string]interface{}{})
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
		testutils.AssertError(t, resp, "NOT_FOUND")
	})
}

func TestSubmissionCRUD(t *testing.T) {
	app := testutils.SetupTestApp(t)
	tmpl := seedTemplate(t, app)
	sub := createSubmission(t, app, tmpl.ID, map[string]interface{}{"customer_name": "Ann", "roof_area": 10})

	t.Run("Success - Get", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app.App, "GET", "/submissions/"+sub.ID, nil)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)
		testutils.AssertSuccess(t, resp)
	})

	t.Run("Success - Partial update", func(t *testing.T) {
		body := map[string]interface{}{"name": "Ann's roof", "data": map[string]interface{}{"roof_area": 12.5}}
		resp, err := testutils.MakeRequest(app.App, "PUT", "/submissions/"+sub.ID, body)
		assert.NoError(t, err)
		require.Equal(t, 200, resp.Code, resp.Body.String())

		var updated models.Submission
		testutils.DecodeData(t, resp, &updated)
		assert.Equal(t, "Ann's roof", updated.Name)
		assert.Equal(t, "Ann", updated.Data["customer_name"])
		assert.Equal(t, 12.5, updated.Data["roof_area"])
	})

	t.Run("Error - Update breaking a rule", func(t *testing.T) {
		body := map[string]interface{}{"data": map[string]interface{}{"customer_name": ""}}
		resp, err := testutils.MakeRequest(app.App, "PUT", "/submissions/"+sub.ID, body)
		assert.NoError(t, err)
		assert.Equal(t, 422, resp.Code)

		stored, err := app.Submissions.Load(context.Background(), sub.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ann", stored.Data["customer_name"])
	})

	t.Run("Success - Paginated list", func(t *testing.T) {
		createSubmission(t, app, tmpl.ID, map[string]interface{}{"customer_name": "Bob"})
		createSubmission(t, app, tmpl.ID, map[string]interface{}{"customer_name": "Cy"})

		resp, err := testutils.MakeRequest(app.App, "GET", "/templates/"+tmpl.ID+"/submissions?page=2&limit=2", nil)
		assert.NoError(t, err)
		require.Equal(t, 200, resp.Code)

		var list []models.SubmissionSummary
		result := testutils.DecodeData(t, resp, &list)
		assert.Len(t, list, 1)
		require.NotNil(t, result.Meta)
		assert.Equal(t, int64(3), result.Meta.Total)
		assert.Equal(t, int64(2), result.Meta.TotalPages)
	})

	t.Run("Success - Delete", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app.App, "DELETE", "/submissions/"+sub.ID, nil)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		resp, err = testutils.MakeRequest(app.App, "GET", "/submissions/"+sub.ID, nil)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})
}

func TestTemplateDeleteCascades(t *testing.T) {
	app := testutils.SetupTestApp(t)
	keep := seedTemplate(t, app)
	drop := seedTemplate(t, app)

	var dropped []string
	for _, name := range []string{"A", "B", "C"} {
		dropped = append(dropped, createSubmission(t, app, drop.ID, map[string]interface{}{"customer_name": name}).ID)
	}
	kept := createSubmission(t, app, keep.ID, map[string]interface{}{"customer_name": "D"})

	resp, err := testutils.MakeRequest(app.App, "DELETE", "/templates/"+drop.ID, nil)
	require.NoError(t, err)
	require.Equal(t, 200, resp.Code)

	for _, id := range dropped {
		resp, err := testutils.MakeRequest(app.App, "GET", "/submissions/"+id, nil)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	}

	resp, err = testutils.MakeRequest(app.App, "GET", "/templates/"+drop.ID+"/submissions", nil)
	assert.NoError(t, err)
	assert.Equal(t, 404, resp.Code)

	all, err := app.Submissions.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, kept.ID, all[0].ID)
}

func TestExportHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)
	tmpl := seedTemplate(t, app)
	createSubmission(t, app, tmpl.ID, map[string]interface{}{"customer_name": "Jane Doe", "roof_area": 42, "shading": true})

	t.Run("Success - CSV download", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app.App, "GET", "/templates/"+tmpl.ID+"/export?format=csv", nil)
		assert.NoError(t, err)
		require.Equal(t, 200, resp.Code)
		assert.Equal(t, "attachment; filename=site_survey.csv", resp.Header().Get("Content-Disposition"))
		assert.True(t, strings.HasPrefix(resp.Header().Get("Content-Type"), "text/csv"))

		rows, err := csv.NewReader(resp.Body).ReadAll()
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"Customer Name", "Roof Area", "Shading"},
			{"Jane Doe", "42", "Yes"},
		}, rows)
	})

	t.Run("Success - JSON by default", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app.App, "GET", "/templates/"+tmpl.ID+"/export", nil)
		assert.NoError(t, err)
		require.Equal(t, 200, resp.Code)
		assert.Contains(t, resp.Body.String(), `"Customer Name": "Jane Doe"`)
	})

	t.Run("Error - Unknown format", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app.App, "GET", "/templates/"+tmpl.ID+"/export?format=xlsx", nil)
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
		testutils.AssertError(t, resp, "BAD_REQUEST")
	})
}

func TestUploadHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)
	tmpl := seedTemplate(t, app)
	sub := createSubmission(t, app, tmpl.ID, map[string]interface{}{"customer_name": "Jane Doe"})

	t.Run("Success - Stored locally", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app.App, "POST", "/submissions/"+sub.ID+"/upload?folder=exports", nil)
		assert.NoError(t, err)
		require.Equal(t, 201, resp.Code, resp.Body.String())

		var res submission.UploadResult
		testutils.DecodeData(t, resp, &res)
		assert.Equal(t, "local", res.Storage)
		assert.Equal(t, "site_survey.csv", res.Filename)
		require.True(t, strings.HasPrefix(res.URL, "/uploads/exports/"), res.URL)

		body, err := os.ReadFile(filepath.Join(app.UploadDir, "exports", filepath.Base(res.URL)))
		require.NoError(t, err)
		assert.Contains(t, string(body), "Jane Doe")

		served, err := testutils.MakeRequest(app.App, "GET", res.URL, nil)
		assert.NoError(t, err)
		assert.Equal(t, 200, served.Code)
	})

	t.Run("Error - Escaping folder", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app.App, "POST", "/submissions/"+sub.ID+"/upload?folder=../up", nil)
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
		testutils.AssertError(t, resp, "BAD_REQUEST")
	})

	t.Run("Error - Unknown submission", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app.App, "POST", "/submissions/missing/upload", nil)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})
}
