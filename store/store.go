// Package store 持久化项目文档与导出任务。
// 文档整体以 JSON 存放，读取时经过 LRU 缓存，并发加载同一文档只查询一次。
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ScriptMaster-server/models"
	"ScriptMaster-server/pkg/logger"
	"ScriptMaster-server/pkg/metrics"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	db    *gorm.DB
	cache *lru.Cache[string, *models.Project]
	group singleflight.Group
	log   *logger.Logger

	// 每次保存、删除递增，读取期间有变化的结果不进缓存
	genMu sync.Mutex
	gens  map[string]uint64
}

func New(db *gorm.DB, cacheSize int, log *logger.Logger) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = 128
	}
	cache, err := lru.New[string, *models.Project](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create document cache: %w", err)
	}
	return &Store{db: db, cache: cache, log: log, gens: make(map[string]uint64)}, nil
}

// AutoMigrate 建表
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&ProjectDocument{}, &ExportTask{}, &ExportRecord{})
}

// ListProjects 按更新时间倒序
func (s *Store) ListProjects(ctx context.Context) ([]ProjectSummary, error) {
	var rows []ProjectDocument
	err := s.db.WithContext(ctx).
		Select("id", "title", "segment_count", "updated_at").
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	out := make([]ProjectSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, ProjectSummary{
			ID:           r.ID,
			Title:        r.Title,
			SegmentCount: r.SegmentCount,
			UpdatedAt:    r.UpdatedAt.UnixMilli(),
		})
	}
	return out, nil
}

// LoadProject 返回文档副本，调用方可以随意修改
func (s *Store) LoadProject(ctx context.Context, id string) (*models.Project, error) {
	if p, ok := s.cache.Get(id); ok {
		metrics.CacheHits.Inc()
		return p.Clone(), nil
	}
	metrics.CacheMisses.Inc()

	v, err, _ := s.group.Do(id, func() (interface{}, error) {
		gen := s.generation(id)
		var row ProjectDocument
		if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("load project %s: %w", id, err)
		}
		p, err := models.Unmarshal(row.Document)
		if err != nil {
			return nil, fmt.Errorf("decode project %s: %w", id, err)
		}
		return s.cacheLoaded(id, gen, p), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Project).Clone(), nil
}

// SaveProject 插入或覆盖文档，并写入 updatedAt（毫秒）
func (s *Store) SaveProject(ctx context.Context, p *models.Project) error {
	now := time.Now()
	ts := now.UnixMilli()
	p.UpdatedAt = &ts

	doc, err := models.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project %s: %w", p.ID, err)
	}
	row := ProjectDocument{
		ID:           p.ID,
		Title:        p.Title,
		Document:     datatypes.JSON(doc),
		SegmentCount: len(p.Segments),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "document", "segment_count", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		s.invalidate(p.ID, nil)
		return fmt.Errorf("save project %s: %w", p.ID, err)
	}
	s.invalidate(p.ID, p.Clone())
	s.log.Debug("project saved", "project_id", p.ID, "segments", row.SegmentCount)
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	s.invalidate(id, nil)
	res := s.db.WithContext(ctx).Delete(&ProjectDocument{}, "id = ?", id)
	s.invalidate(id, nil)
	if res.Error != nil {
		return fmt.Errorf("delete project %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) generation(id string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.gens[id]
}

// cacheLoaded 读取期间没有保存或删除时写入缓存；否则以缓存中的新值为准
func (s *Store) cacheLoaded(id string, gen uint64, p *models.Project) *models.Project {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.gens[id] != gen {
		if cached, ok := s.cache.Get(id); ok {
			return cached
		}
		return p
	}
	s.cache.Add(id, p)
	return p
}

// invalidate 递增版本；p 为 nil 时移出缓存
func (s *Store) invalidate(id string, p *models.Project) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.gens[id]++
	if p == nil {
		s.cache.Remove(id)
		return
	}
	s.cache.Add(id, p)
}

func (s *Store) CreateExportTask(ctx context.Context, t *ExportTask) error {
	if t.Status == "" {
		t.Status = TaskStatusPending
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create export task: %w", err)
	}
	return nil
}

func (s *Store) GetExportTask(ctx context.Context, id string) (*ExportTask, error) {
	var t ExportTask
	if err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get export task %s: %w", id, err)
	}
	return &t, nil
}

// UpdateExportTask 更新任务的状态/进度/消息/结果等
func (s *Store) UpdateExportTask(ctx context.Context, id string, u TaskUpdate) error {
	res := s.db.WithContext(ctx).Model(&ExportTask{}).Where("id = ?", id).Updates(u.columns())
	if res.Error != nil {
		return fmt.Errorf("update export task %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreateExportRecord(ctx context.Context, r *ExportRecord) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("create export record: %w", err)
	}
	return nil
}

// ListExportRecords 最新的在前
func (s *Store) ListExportRecords(ctx context.Context, projectID string) ([]ExportRecord, error) {
	var out []ExportRecord
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list export records: %w", err)
	}
	if out == nil {
		out = []ExportRecord{}
	}
	return out, nil
}
