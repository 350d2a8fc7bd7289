package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/straye-as/project-desk-api/internal/drafting"
	"github.com/straye-as/project-desk-api/internal/http/handler"
	"github.com/straye-as/project-desk-api/internal/repository"
	"github.com/straye-as/project-desk-api/internal/service"
	"github.com/straye-as/project-desk-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixedGenerator struct {
	text string
}

func (g fixedGenerator) GenerateDraft(ctx context.Context, req drafting.Request) (string, error) {
	return g.text, nil
}

type handlers struct {
	project  *handler.ProjectHandler
	feedback *handler.FeedbackHandler
	favorite *handler.FavoriteHandler
	desk     *handler.DeskHandler
	deskSvc  *service.ResponseDeskService
}

func createHandlers(t *testing.T, db *gorm.DB) handlers {
	t.Helper()
	logger := zap.NewNop()
	projectRepo := repository.NewProjectRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	deskSvc := service.NewResponseDeskService(feedbackRepo, projectRepo, fixedGenerator{text: "感谢反馈，已安排维修"}, 0, logger)
	return handlers{
		project:  handler.NewProjectHandler(service.NewProjectService(projectRepo, favoriteRepo, logger), logger),
		feedback: handler.NewFeedbackHandler(service.NewFeedbackService(feedbackRepo, projectRepo, logger), logger),
		favorite: handler.NewFavoriteHandler(service.NewFavoriteService(favoriteRepo, projectRepo, logger), logger),
		desk:     handler.NewDeskHandler(deskSvc, logger),
		deskSvc:  deskSvc,
	}
}

// withURLParams attaches chi path parameters to the request
func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestProjectHandler_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createHandlers(t, db)

	t.Run("valid project", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/projects", jsonBody(t, domain.CreateProjectRequest{
			Name:          "光伏电站",
			Type:          domain.ProjectTypeNewEnergy,
			Status:        domain.ProjectStatusConstruction,
			Progress:      35,
			ContractValue: 800000,
			Stakeholders:  []domain.CreateStakeholderRequest{{ID: "s1", Name: "陈经理", Role: "业主"}},
		}))
		rr := httptest.NewRecorder()
		h.project.Create(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		project := decode[domain.ProjectDTO](t, rr)
		assert.Equal(t, "光伏电站", project.Name)
		assert.Equal(t, "在建", project.StatusLabel)
		assert.Equal(t, "/api/v1/projects/"+project.ID, rr.Header().Get("Location"))
	})

	t.Run("validation error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/projects", jsonBody(t, map[string]interface{}{
			"type":     "rocket",
			"status":   "planning",
			"progress": 150,
		}))
		rr := httptest.NewRecorder()
		h.project.Create(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		apiErr := decode[domain.APIError](t, rr)
		assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
		assert.Contains(t, apiErr.Errors, "name")
		assert.Contains(t, apiErr.Errors, "type")
		assert.Contains(t, apiErr.Errors, "progress")
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader("{"))
		rr := httptest.NewRecorder()
		h.project.Create(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestProjectHandler_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createHandlers(t, db)
	testutil.CreateTestProject(t, db, "运行中", 50)
	testutil.CreateTestProject(t, db, "已完成", 100)

	t.Run("all", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.project.List(rr, httptest.NewRequest(http.MethodGet, "/projects", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 2, decode[domain.ListResponse](t, rr).Total)
	})

	t.Run("active only", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.project.List(rr, httptest.NewRequest(http.MethodGet, "/projects?active=true", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, decode[domain.ListResponse](t, rr).Total)
	})

	t.Run("invalid type", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.project.List(rr, httptest.NewRequest(http.MethodGet, "/projects?type=rocket", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestProjectHandler_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createHandlers(t, db)

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/projects/missing", nil), "id", "missing")
	rr := httptest.NewRecorder()
	h.project.GetByID(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, domain.ErrorTypeNotFound, decode[domain.APIError](t, rr).Type)
}

func TestFeedbackHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createHandlers(t, db)
	project := testutil.CreateTestProject(t, db, "污水厂", 20, domain.Stakeholder{ID: "s1", Name: "林工", Role: "监理"})

	var created domain.FeedbackDTO
	t.Run("create", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/feedback", jsonBody(t, domain.CreateFeedbackRequest{
			ProjectID:     project.ID,
			StakeholderID: "s1",
			Content:       "围挡破损",
		}))
		rr := httptest.NewRecorder()
		h.feedback.Create(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		created = decode[domain.FeedbackDTO](t, rr)
		assert.Equal(t, domain.FeedbackStatusPending, created.Status)
		assert.Equal(t, "待处理", created.StatusLabel)
	})

	t.Run("create with bad date", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/feedback", jsonBody(t, domain.CreateFeedbackRequest{
			ProjectID:     project.ID,
			StakeholderID: "s1",
			Content:       "x",
			ReceivedDate:  "01/05/2024",
		}))
		rr := httptest.NewRecorder()
		h.feedback.Create(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("update status", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/feedback/"+created.ID, jsonBody(t, domain.UpdateFeedbackRequest{
			Status: domain.FeedbackStatusResolved,
		}))
		rr := httptest.NewRecorder()
		h.feedback.Update(rr, withURLParams(req, "id", created.ID))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, domain.FeedbackStatusResolved, decode[domain.FeedbackDTO](t, rr).Status)
	})

	t.Run("list with invalid status", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.feedback.List(rr, httptest.NewRequest(http.MethodGet, "/feedback?status=done", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestFavoriteHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createHandlers(t, db)
	project := testutil.CreateTestProject(t, db, "枢纽", 80)

	rr := httptest.NewRecorder()
	h.favorite.Add(rr, withURLParams(httptest.NewRequest(http.MethodPut, "/favorites/"+project.ID, nil), "projectId", project.ID))
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.favorite.List(rr, httptest.NewRequest(http.MethodGet, "/favorites", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decode[domain.ListResponse](t, rr).Total)

	rr = httptest.NewRecorder()
	h.favorite.Add(rr, withURLParams(httptest.NewRequest(http.MethodPut, "/favorites/nope", nil), "projectId", "nope"))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	h.favorite.Remove(rr, withURLParams(httptest.NewRequest(http.MethodDelete, "/favorites/"+project.ID, nil), "projectId", project.ID))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestDeskHandler_Flow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createHandlers(t, db)
	project := testutil.CreateTestProject(t, db, "高架桥", 45, domain.Stakeholder{ID: "s1", Name: "黄主任"})
	fb := testutil.CreateTestFeedback(t, db, project.ID, "s1", "漏水", domain.FeedbackStatusPending)

	rr := httptest.NewRecorder()
	h.desk.OpenSession(rr, httptest.NewRequest(http.MethodPost, "/desk/sessions", nil))
	require.Equal(t, http.StatusCreated, rr.Code)
	session := decode[domain.DeskSessionDTO](t, rr)
	id := session.ID

	t.Run("save without selection conflicts", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.desk.Save(rr, withURLParams(httptest.NewRequest(http.MethodPost, "/", nil), "id", id))
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("select requires feedback id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.desk.Select(rr, withURLParams(httptest.NewRequest(http.MethodPost, "/", jsonBody(t, map[string]string{})), "id", id))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	rr = httptest.NewRecorder()
	h.desk.Select(rr, withURLParams(httptest.NewRequest(http.MethodPost, "/", jsonBody(t, domain.SelectFeedbackRequest{FeedbackID: fb.ID})), "id", id))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "detail", decode[domain.DeskSessionDTO](t, rr).Phase)

	rr = httptest.NewRecorder()
	h.desk.Generate(rr, withURLParams(httptest.NewRequest(http.MethodPost, "/", nil), "id", id))
	require.Equal(t, http.StatusAccepted, rr.Code)
	h.deskSvc.Wait()

	rr = httptest.NewRecorder()
	h.desk.GetSession(rr, withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "id", id))
	require.Equal(t, http.StatusOK, rr.Code)
	ready := decode[domain.DeskSessionDTO](t, rr)
	assert.Equal(t, "draft_ready", ready.Phase)
	assert.Equal(t, "感谢反馈，已安排维修", ready.DisplayText)

	rr = httptest.NewRecorder()
	h.desk.EditDraft(rr, withURLParams(httptest.NewRequest(http.MethodPut, "/", jsonBody(t, domain.EditDraftRequest{Text: "已安排维修，明日到场"})), "id", id))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.desk.Save(rr, withURLParams(httptest.NewRequest(http.MethodPost, "/", nil), "id", id))
	require.Equal(t, http.StatusOK, rr.Code)
	saved := decode[domain.DeskSaveResponse](t, rr)
	assert.Equal(t, "idle", saved.Session.Phase)
	assert.Equal(t, domain.FeedbackStatusInProgress, saved.Feedback.Status)
	require.NotNil(t, saved.Feedback.Response)
	assert.Equal(t, "已安排维修，明日到场", *saved.Feedback.Response)

	rr = httptest.NewRecorder()
	h.desk.CloseSession(rr, withURLParams(httptest.NewRequest(http.MethodDelete, "/", nil), "id", id))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.desk.GetSession(rr, withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "id", id))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
