package sweeper

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/weiwangfds/galleria/config"
	"github.com/weiwangfds/galleria/internal/database"
	"github.com/weiwangfds/galleria/internal/logger"
)

// Sweeper 孤儿文件清理器
// 周期扫描存储目录，删除数据库中无记录且超过宽限期的文件。
// 宽限期保护刚落盘、记录尚未提交的上传
type Sweeper struct {
	db          *gorm.DB
	contentRoot string
	interval    time.Duration
	grace       time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
}

// New 创建清理器实例
func New(db *gorm.DB, storageCfg *config.StorageConfig, cfg *config.SweeperConfig) *Sweeper {
	return &Sweeper{
		db:          db,
		contentRoot: storageCfg.ContentRoot,
		interval:    time.Duration(cfg.IntervalSec) * time.Second,
		grace:       time.Duration(cfg.GraceSec) * time.Second,
	}
}

// Start 启动后台清理
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	go s.run(ctx)
	logger.Infof("Orphan sweeper started: interval=%s grace=%s", s.interval, s.grace)
}

// Stop 停止后台清理
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cancel()
	s.running = false
	logger.Info("Orphan sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed, err := s.SweepOnce(); err != nil {
				logger.Errorf("Sweep failed: %v", err)
			} else if removed > 0 {
				logger.Infof("Sweep removed %d orphan files", removed)
			}
		}
	}
}

// SweepOnce 执行一轮扫描，返回删除的文件数
func (s *Sweeper) SweepOnce() (int, error) {
	entries, err := os.ReadDir(s.contentRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-s.grace)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		// 上传中的临时文件交给上传流程自己清理
		if strings.HasPrefix(name, ".upload-") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		var count int64
		if err := s.db.Model(&database.GalleryImage{}).Where("file_name = ?", name).Count(&count).Error; err != nil {
			return removed, err
		}
		if count > 0 {
			continue
		}

		path := filepath.Join(s.contentRoot, name)
		if err := os.Remove(path); err != nil {
			logger.Warnf("Failed to remove orphan file %s: %v", path, err)
			continue
		}
		logger.Infof("Removed orphan file: %s", name)
		removed++
	}
	return removed, nil
}
