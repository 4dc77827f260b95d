package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ScriptMaster-server/config"
	"ScriptMaster-server/models"
	"ScriptMaster-server/pkg/logger"
	"ScriptMaster-server/routers/api"
	"ScriptMaster-server/service"
	"ScriptMaster-server/store"
)

type nopQueue struct{ ids []string }

func (q *nopQueue) EnqueueExport(taskID string) error {
	q.ids = append(q.ids, taskID)
	return nil
}

type testServer struct {
	router *gin.Engine
	store  *store.Store
	queue  *nopQueue
}

func setupRouter(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	st, err := store.New(db, 16, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, st.AutoMigrate())

	q := &nopQueue{}
	svc := service.NewProjectService(st, q, nil, logger.Nop())
	h := api.NewHandler(svc, logger.Nop())
	h.SetPollInterval(10 * time.Millisecond)

	cfg := &config.Config{}
	cfg.Server.AllowedOrigins = []string{"*"}
	return &testServer{router: InitRouter(cfg, h, logger.Nop()), store: st, queue: q}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeProject(t *testing.T, w *httptest.ResponseRecorder) *models.Project {
	t.Helper()
	p, err := models.Unmarshal(w.Body.Bytes())
	require.NoError(t, err, w.Body.String())
	return p
}

func (s *testServer) createProject(t *testing.T) *models.Project {
	t.Helper()
	w := s.do(t, http.MethodPost, "/v1/api/projects", map[string]string{"title": "Lesson 1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeProject(t, w)
}

func TestHealthAndTypes(t *testing.T) {
	s := setupRouter(t)
	w := s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/v1/api/types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Types []struct {
			Label   string   `json:"label"`
			Formats []string `json:"formats"`
		} `json:"types"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Types, 6)
	assert.Equal(t, "图片 (Image)", resp.Types[0].Label)
	assert.Contains(t, resp.Types[0].Formats, "PNG")
}

func TestProjectCRUD(t *testing.T) {
	s := setupRouter(t)
	p := s.createProject(t)
	assert.Equal(t, "Lesson 1", p.Title)
	assert.Len(t, p.Templates, 3)

	w := s.do(t, http.MethodGet, "/v1/api/projects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), p.ID)

	w = s.do(t, http.MethodGet, "/v1/api/projects/"+p.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, p.ID, decodeProject(t, w).ID)

	p.Title = "Renamed"
	doc, err := models.Marshal(p)
	require.NoError(t, err)
	w = s.do(t, http.MethodPut, "/v1/api/projects/"+p.ID, string(doc))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Renamed", decodeProject(t, w).Title)

	w = s.do(t, http.MethodDelete, "/v1/api/projects/"+p.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/v1/api/projects/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)
}

func TestCreateProjectWithoutBody(t *testing.T) {
	s := setupRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/api/projects", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Lesson 1", decodeProject(t, w).Title)
}

func TestImportInvalidDocument(t *testing.T) {
	s := setupRouter(t)
	w := s.do(t, http.MethodPost, "/v1/api/projects", `{"document": {"id": "x", "title": "t"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INVALID_DOCUMENT"`)
}

func TestApplyCommands(t *testing.T) {
	s := setupRouter(t)
	p := s.createProject(t)

	w := s.do(t, http.MethodPost, "/v1/api/projects/"+p.ID+"/commands", map[string]any{
		"op":   "segment.add",
		"args": map[string]string{"id": "seg-1"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decodeProject(t, w).Segments, 1)

	w = s.do(t, http.MethodPost, "/v1/api/projects/"+p.ID+"/commands", map[string]any{
		"commands": []map[string]any{
			{"op": "segment.apply_template", "args": map[string]string{"segmentId": "seg-1", "templateId": p.Templates[0].ID}},
			{"op": "project.set_title", "args": map[string]string{"title": "Lesson 1 (final)"}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decodeProject(t, w)
	assert.Equal(t, "Lesson 1 (final)", got.Title)
	assert.Equal(t, p.Templates[0].ID, got.Segments[0].TemplateID)
}

func TestApplyCommandsErrors(t *testing.T) {
	s := setupRouter(t)
	p := s.createProject(t)
	path := "/v1/api/projects/" + p.ID + "/commands"

	w := s.do(t, http.MethodPost, path, map[string]any{"op": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"UNKNOWN_COMMAND"`)

	w = s.do(t, http.MethodPost, path, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 删除最后一个模版被拒绝，且前面的命令不生效
	cmds := []map[string]any{{"op": "project.set_title", "args": map[string]string{"title": "x"}}}
	for _, tpl := range p.Templates {
		cmds = append(cmds, map[string]any{"op": "template.delete", "args": map[string]string{"templateId": tpl.ID}})
	}
	w = s.do(t, http.MethodPost, path, map[string]any{"commands": cmds})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"LAST_TEMPLATE"`)

	w = s.do(t, http.MethodGet, "/v1/api/projects/"+p.ID, nil)
	assert.Equal(t, "Lesson 1", decodeProject(t, w).Title)

	w = s.do(t, http.MethodPost, path, map[string]any{
		"op":   "segment.load_course_preset",
		"args": map[string]any{"presetId": p.CoursePresets[0].ID},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodPost, path, map[string]any{
		"op":   "segment.load_course_preset",
		"args": map[string]any{"presetId": p.CoursePresets[0].ID},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"CONFIRMATION_REQUIRED"`)
}

func TestNextLesson(t *testing.T) {
	s := setupRouter(t)
	p := s.createProject(t)
	w := s.do(t, http.MethodPost, "/v1/api/projects/"+p.ID+"/next-lesson", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	next := decodeProject(t, w)
	assert.Equal(t, "Lesson 2", next.Title)
	assert.NotEqual(t, p.ID, next.ID)
}

func TestDownloadExport(t *testing.T) {
	s := setupRouter(t)
	p := s.createProject(t)

	w := s.do(t, http.MethodGet, "/v1/api/projects/"+p.ID+"/export", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"EMPTY_PROJECT"`)

	w = s.do(t, http.MethodPost, "/v1/api/projects/"+p.ID+"/commands", map[string]any{
		"commands": []map[string]any{
			{"op": "segment.add", "args": map[string]string{"id": "seg-1"}},
			{"op": "segment.apply_template", "args": map[string]string{"segmentId": "seg-1", "templateId": p.Templates[0].ID}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/v1/api/projects/"+p.ID+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.ms-excel", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "filename*=UTF-8''Lesson%201_")
	assert.Contains(t, w.Body.String(), "Lesson 1 - 课程脚本单")
}

func TestEnqueueExportAndTaskStatus(t *testing.T) {
	s := setupRouter(t)
	p := s.createProject(t)

	w := s.do(t, http.MethodPost, "/v1/api/projects/"+p.ID+"/exports", nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var resp struct {
		TaskID string `json:"task_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{resp.TaskID}, s.queue.ids)

	w = s.do(t, http.MethodGet, "/v1/api/tasks/"+resp.TaskID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)

	w = s.do(t, http.MethodGet, "/v1/api/projects/"+p.ID+"/exports", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"exports":[]}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/v1/api/tasks/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPolishWithoutPolisher(t *testing.T) {
	s := setupRouter(t)
	p := s.createProject(t)
	w := s.do(t, http.MethodPost, "/v1/api/projects/"+p.ID+"/segments/seg/polish", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestTaskProgressWebSocket(t *testing.T) {
	s := setupRouter(t)
	ctx := context.Background()
	require.NoError(t, s.store.CreateExportTask(ctx, &store.ExportTask{ID: "task-ws", ProjectID: "p1"}))

	srv := httptest.NewServer(s.router)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/tasks/task-ws/wss"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var first store.ExportTask
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, store.TaskStatusPending, first.Status)

	done := 100
	require.NoError(t, s.store.UpdateExportTask(ctx, "task-ws", store.TaskUpdate{Status: store.TaskStatusSuccess, Progress: &done}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var last store.ExportTask
	require.NoError(t, conn.ReadJSON(&last))
	assert.Equal(t, store.TaskStatusSuccess, last.Status)
	assert.Equal(t, 100, last.Progress)
}

func TestCORSConfig(t *testing.T) {
	cfg := corsConfig([]string{"*"})
	assert.True(t, cfg.AllowAllOrigins)
	assert.False(t, cfg.AllowCredentials)

	cfg = corsConfig([]string{"http://localhost:5173"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowOrigins)
}
