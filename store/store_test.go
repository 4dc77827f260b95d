package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ScriptMaster-server/models"
	"ScriptMaster-server/pkg/logger"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "连接测试数据库失败")

	s, err := New(db, 8, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s.AutoMigrate(), "数据库迁移失败")
	return s
}

func TestSaveAndLoadProject(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := models.NewProject("Lesson 1")
	require.NoError(t, s.SaveProject(ctx, p))
	require.NotNil(t, p.UpdatedAt)

	// 绕过缓存直接读库
	s.cache.Purge()
	got, err := s.LoadProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Title, got.Title)
	assert.Len(t, got.Templates, 3)
	assert.Equal(t, *p.UpdatedAt, *got.UpdatedAt)

	// 返回的是副本
	got.Title = "changed"
	again, err := s.LoadProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lesson 1", again.Title)
}

func TestSaveProjectUpserts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := models.NewProject("Lesson 1")
	require.NoError(t, s.SaveProject(ctx, p))
	p.Title = "Lesson 1 (rev)"
	p.Segments = append(p.Segments, models.NewSegment(""))
	require.NoError(t, s.SaveProject(ctx, p))

	list, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Lesson 1 (rev)", list[0].Title)
	assert.Equal(t, 1, list[0].SegmentCount)
}

func TestListProjectsNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	older := models.NewProject("older")
	require.NoError(t, s.SaveProject(ctx, older))
	time.Sleep(5 * time.Millisecond)
	newer := models.NewProject("newer")
	require.NoError(t, s.SaveProject(ctx, newer))

	list, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Title)
}

func TestLoadMissingProject(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.LoadProject(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestConcurrentLoads(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	p := models.NewProject("Lesson 1")
	require.NoError(t, s.SaveProject(ctx, p))
	s.cache.Purge()

	var wg sync.WaitGroup
	results := make([]*models.Project, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := s.LoadProject(ctx, p.ID)
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}
	wg.Wait()
	for i := 1; i < len(results); i++ {
		assert.NotSame(t, results[0], results[i])
	}
}

func TestDeleteProject(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	p := models.NewProject("Lesson 1")
	require.NoError(t, s.SaveProject(ctx, p))

	require.NoError(t, s.DeleteProject(ctx, p.ID))
	_, err := s.LoadProject(ctx, p.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(s.DeleteProject(ctx, p.ID), ErrNotFound))
}

func TestLoadRacingDeleteDoesNotRecache(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	p := models.NewProject("Lesson 1")
	require.NoError(t, s.SaveProject(ctx, p))
	s.cache.Purge()

	// 读取开始后、写缓存前发生删除
	gen := s.generation(p.ID)
	loaded := p.Clone()
	require.NoError(t, s.DeleteProject(ctx, p.ID))
	s.cacheLoaded(p.ID, gen, loaded)

	assert.False(t, s.cache.Contains(p.ID))
	_, err := s.LoadProject(ctx, p.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLoadRacingSaveKeepsNewerDocument(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	p := models.NewProject("v1")
	require.NoError(t, s.SaveProject(ctx, p))
	s.cache.Purge()

	gen := s.generation(p.ID)
	stale := p.Clone()
	p.Title = "v2"
	require.NoError(t, s.SaveProject(ctx, p))

	got := s.cacheLoaded(p.ID, gen, stale)
	assert.Equal(t, "v2", got.Title)
	again, err := s.LoadProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", again.Title)
}

func TestExportTaskLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	task := &ExportTask{ID: "task-1", ProjectID: "p1"}
	require.NoError(t, s.CreateExportTask(ctx, task))
	assert.Equal(t, TaskStatusPending, task.Status)

	progress := 50
	now := time.Now()
	require.NoError(t, s.UpdateExportTask(ctx, "task-1", TaskUpdate{Status: TaskStatusProcessing, Progress: &progress, StartedAt: &now}))

	done := 100
	msg := "导出完成"
	require.NoError(t, s.UpdateExportTask(ctx, "task-1", TaskUpdate{
		Status:   TaskStatusSuccess,
		Progress: &done,
		Message:  &msg,
		Result:   &ExportResult{FileName: "a.xls", URL: "http://minio/a.xls", FileSize: 12},
	}))

	got, err := s.GetExportTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusSuccess, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, "导出完成", got.Message)
	assert.Equal(t, "a.xls", got.Result.FileName)
	assert.EqualValues(t, 12, got.Result.FileSize)
	assert.NotNil(t, got.StartedAt)
	assert.True(t, got.Done())

	assert.True(t, errors.Is(s.UpdateExportTask(ctx, "missing", TaskUpdate{Status: TaskStatusFailed}), ErrNotFound))
	_, err = s.GetExportTask(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestExportRecords(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Now()
	require.NoError(t, s.CreateExportRecord(ctx, &ExportRecord{ID: "r1", ProjectID: "p1", FileName: "1.xls", CreatedAt: base}))
	require.NoError(t, s.CreateExportRecord(ctx, &ExportRecord{ID: "r2", ProjectID: "p1", FileName: "2.xls", CreatedAt: base.Add(time.Second)}))
	require.NoError(t, s.CreateExportRecord(ctx, &ExportRecord{ID: "r3", ProjectID: "p2", FileName: "x.xls", CreatedAt: base}))

	list, err := s.ListExportRecords(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r2", list[0].ID)
}
