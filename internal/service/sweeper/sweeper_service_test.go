package sweeper

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/weiwangfds/galleria/config"
	"github.com/weiwangfds/galleria/internal/database"
)

// setupSweeper 设置测试清理器
func setupSweeper(t *testing.T, graceSec int) (*Sweeper, *gorm.DB, string) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&database.Gallery{}, &database.GalleryImage{}))

	dir := t.TempDir()
	sw := New(db, &config.StorageConfig{ContentRoot: dir}, &config.SweeperConfig{
		IntervalSec: 3600,
		GraceSec:    graceSec,
	})
	return sw, db, dir
}

// writeAgedFile 写入一个修改时间在过去的文件
func writeAgedFile(t *testing.T, dir, name string, age time.Duration) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
	old := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, old, old))
	return path
}

// TestSweepOnce 测试单轮扫描
func TestSweepOnce(t *testing.T) {
	t.Run("过期孤儿文件被删除", func(t *testing.T) {
		sw, _, dir := setupSweeper(t, 60)
		path := writeAgedFile(t, dir, "orphan.jpg", 2*time.Minute)

		removed, err := sw.SweepOnce()
		require.NoError(t, err)
		assert.Equal(t, 1, removed)
		assert.NoFileExists(t, path)
	})

	t.Run("有记录的文件保留", func(t *testing.T) {
		sw, db, dir := setupSweeper(t, 60)

		g := database.Gallery{Name: "Trip"}
		require.NoError(t, db.Create(&g).Error)
		path := writeAgedFile(t, dir, "kept.jpg", 2*time.Minute)
		require.NoError(t, db.Create(&database.GalleryImage{
			GalleryID:        g.ID,
			FileName:         "kept.jpg",
			OriginalFilename: "kept.jpg",
			FilePath:         path,
			FileURL:          "/uploads/custom-gallery/kept.jpg",
		}).Error)

		removed, err := sw.SweepOnce()
		require.NoError(t, err)
		assert.Equal(t, 0, removed)
		assert.FileExists(t, path)
	})

	t.Run("宽限期内的文件保留", func(t *testing.T) {
		sw, _, dir := setupSweeper(t, 3600)
		path := writeAgedFile(t, dir, "fresh.jpg", time.Minute)

		removed, err := sw.SweepOnce()
		require.NoError(t, err)
		assert.Equal(t, 0, removed)
		assert.FileExists(t, path)
	})

	t.Run("上传中的临时文件跳过", func(t *testing.T) {
		sw, _, dir := setupSweeper(t, 60)
		path := writeAgedFile(t, dir, ".upload-12345", 2*time.Minute)

		removed, err := sw.SweepOnce()
		require.NoError(t, err)
		assert.Equal(t, 0, removed)
		assert.FileExists(t, path)
	})

	t.Run("存储目录不存在不报错", func(t *testing.T) {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		require.NoError(t, err)
		require.NoError(t, db.AutoMigrate(&database.GalleryImage{}))

		sw := New(db, &config.StorageConfig{ContentRoot: "/nonexistent/path"}, &config.SweeperConfig{
			IntervalSec: 3600,
			GraceSec:    60,
		})
		removed, err := sw.SweepOnce()
		require.NoError(t, err)
		assert.Equal(t, 0, removed)
	})
}

// TestStartStop 测试启停
func TestStartStop(t *testing.T) {
	sw, _, _ := setupSweeper(t, 60)

	ctx := context.Background()
	sw.Start(ctx)
	// 重复启动是安全的
	sw.Start(ctx)

	sw.Stop()
	// 重复停止是安全的
	sw.Stop()
}
