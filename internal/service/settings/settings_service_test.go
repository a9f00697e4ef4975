package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/weiwangfds/galleria/internal/database"
	"github.com/weiwangfds/galleria/internal/errors"
)

// setupService 设置测试配置服务
func setupService(t *testing.T) (Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&database.Setting{}))
	return NewService(db), db
}

// TestDefaults 测试默认配置
func TestDefaults(t *testing.T) {
	svc, _ := setupService(t)

	snap, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, 5, snap.MaxFileSizeMB)
	assert.Equal(t, []string{"jpg", "jpeg", "png", "gif", "webp"}, snap.AllowedExtensions)
	assert.Equal(t, 50, snap.MaxImagesPerGallery)
	assert.Equal(t, 2000, snap.SliderTimerMS)
	assert.Equal(t, "medium", snap.DefaultSize)
	assert.EqualValues(t, 5*1024*1024, snap.MaxFileSizeBytes())
}

// TestUpdate 测试配置更新
func TestUpdate(t *testing.T) {
	svc, db := setupService(t)

	t.Run("正常更新并落库", func(t *testing.T) {
		snap, err := svc.Update(map[string]string{
			"max_file_size": "10",
			"default_size":  "full",
		})
		require.NoError(t, err)
		assert.Equal(t, 10, snap.MaxFileSizeMB)
		assert.Equal(t, "full", snap.DefaultSize)

		var count int64
		require.NoError(t, db.Model(&database.Setting{}).Count(&count).Error)
		assert.EqualValues(t, 2, count)
	})

	t.Run("重复更新走覆盖不新增行", func(t *testing.T) {
		_, err := svc.Update(map[string]string{"max_file_size": "8"})
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&database.Setting{}).Where("key = ?", "max_file_size").Count(&count).Error)
		assert.EqualValues(t, 1, count)

		snap, err := svc.Get()
		require.NoError(t, err)
		assert.Equal(t, 8, snap.MaxFileSizeMB)
	})

	t.Run("扩展名列表被归一化", func(t *testing.T) {
		snap, err := svc.Update(map[string]string{"allowed_extensions": " JPG, .png ,gif"})
		require.NoError(t, err)
		assert.Equal(t, []string{"jpg", "png", "gif"}, snap.AllowedExtensions)
	})
}

// TestUpdateValidation 测试非法值拒绝
func TestUpdateValidation(t *testing.T) {
	svc, db := setupService(t)

	cases := []struct {
		name    string
		updates map[string]string
	}{
		{"文件大小非数字", map[string]string{"max_file_size": "big"}},
		{"文件大小为负", map[string]string{"max_file_size": "-1"}},
		{"图片上限为零", map[string]string{"max_images_per_gallery": "0"}},
		{"扩展名列表为空", map[string]string{"allowed_extensions": " , "}},
		{"尺寸标记非法", map[string]string{"default_size": "huge"}},
		{"未知配置键", map[string]string{"unknown_key": "x"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Update(tc.updates)
			assert.True(t, errors.IsCode(err, errors.ErrSettingInvalid))
		})
	}

	t.Run("任一键非法时整体不落库", func(t *testing.T) {
		_, err := svc.Update(map[string]string{
			"max_file_size": "10",
			"default_size":  "huge",
		})
		assert.True(t, errors.IsCode(err, errors.ErrSettingInvalid))

		var count int64
		require.NoError(t, db.Model(&database.Setting{}).Count(&count).Error)
		assert.EqualValues(t, 0, count)
	})
}

// TestSliderTimerClamp 测试轮播间隔钳制
func TestSliderTimerClamp(t *testing.T) {
	svc, _ := setupService(t)

	t.Run("低于下限钳制到下限", func(t *testing.T) {
		snap, err := svc.Update(map[string]string{"slider_timer": "200"})
		require.NoError(t, err)
		assert.Equal(t, 1000, snap.SliderTimerMS)
	})

	t.Run("高于上限钳制到上限", func(t *testing.T) {
		snap, err := svc.Update(map[string]string{"slider_timer": "60000"})
		require.NoError(t, err)
		assert.Equal(t, 10000, snap.SliderTimerMS)
	})

	t.Run("范围内取原值", func(t *testing.T) {
		snap, err := svc.Update(map[string]string{"slider_timer": "3500"})
		require.NoError(t, err)
		assert.Equal(t, 3500, snap.SliderTimerMS)
	})
}

// TestCorruptRowFallsBack 测试脏数据回退默认值
func TestCorruptRowFallsBack(t *testing.T) {
	svc, db := setupService(t)

	// 绕过校验直接写入脏数据
	require.NoError(t, db.Create(&database.Setting{Key: KeyMaxFileSize, Value: "garbage"}).Error)

	snap, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxFileSizeMB, snap.MaxFileSizeMB)
}

// TestExtensionAllowed 测试扩展名判断
func TestExtensionAllowed(t *testing.T) {
	snap := Snapshot{AllowedExtensions: []string{"jpg", "png"}}
	assert.True(t, snap.ExtensionAllowed("jpg"))
	assert.False(t, snap.ExtensionAllowed("exe"))
	assert.False(t, snap.ExtensionAllowed(""))
}
