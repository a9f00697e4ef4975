package settings

import (
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/weiwangfds/galleria/internal/database"
	"github.com/weiwangfds/galleria/internal/errors"
	"github.com/weiwangfds/galleria/internal/logger"
)

// 配置键名
const (
	KeyMaxFileSize         = "max_file_size"          // 单个文件大小上限，单位MB
	KeyAllowedExtensions   = "allowed_extensions"     // 允许的扩展名，逗号分隔
	KeyMaxImagesPerGallery = "max_images_per_gallery" // 单相册图片数量上限
	KeySliderTimer         = "slider_timer"           // 轮播切换间隔，毫秒
	KeyDefaultSize         = "default_size"           // 默认渲染尺寸
)

// 默认配置值
const (
	DefaultMaxFileSizeMB       = 5
	DefaultAllowedExtensions   = "jpg,jpeg,png,gif,webp"
	DefaultMaxImagesPerGallery = 50
	DefaultSliderTimerMS       = 2000
	DefaultSize                = "medium"

	MinSliderTimerMS = 1000
	MaxSliderTimerMS = 10000
)

// validSizes 合法的尺寸标记
var validSizes = map[string]bool{
	"small":  true,
	"medium": true,
	"full":   true,
}

// Snapshot 配置快照
// 一次性读出全部配置项，缺失的键填充默认值
type Snapshot struct {
	MaxFileSizeMB       int      `json:"max_file_size"`
	AllowedExtensions   []string `json:"allowed_extensions"`
	MaxImagesPerGallery int      `json:"max_images_per_gallery"`
	SliderTimerMS       int      `json:"slider_timer"`
	DefaultSize         string   `json:"default_size"`
}

// MaxFileSizeBytes 文件大小上限，单位字节
func (s Snapshot) MaxFileSizeBytes() int64 {
	return int64(s.MaxFileSizeMB) * 1024 * 1024
}

// ExtensionAllowed 判断扩展名（不含点，小写）是否在允许列表中
func (s Snapshot) ExtensionAllowed(ext string) bool {
	for _, allowed := range s.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Service 配置服务接口
type Service interface {
	// Get 获取配置快照
	Get() (Snapshot, error)
	// Update 更新配置项，非法值返回错误且不落库
	Update(updates map[string]string) (Snapshot, error)
}

type settingsService struct {
	db *gorm.DB
}

// NewService 创建配置服务实例
func NewService(db *gorm.DB) Service {
	return &settingsService{db: db}
}

// Get 获取配置快照
func (s *settingsService) Get() (Snapshot, error) {
	var rows []database.Setting
	if err := s.db.Find(&rows).Error; err != nil {
		return defaults(), errors.Wrap(errors.ErrDatabaseQuery, "failed to load settings", err)
	}

	snap := defaults()
	for _, row := range rows {
		applyRow(&snap, row.Key, row.Value)
	}
	return snap, nil
}

// Update 更新配置项
// 先整体校验，全部合法后逐键落库，任一非法键拒绝整个请求
func (s *settingsService) Update(updates map[string]string) (Snapshot, error) {
	for key, value := range updates {
		if err := validate(key, value); err != nil {
			return Snapshot{}, err
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for key, value := range updates {
			normalized := normalize(key, value)
			var row database.Setting
			result := tx.Where("key = ?", key).First(&row)
			if result.Error != nil {
				if result.Error == gorm.ErrRecordNotFound {
					if err := tx.Create(&database.Setting{Key: key, Value: normalized}).Error; err != nil {
						return err
					}
					continue
				}
				return result.Error
			}
			if err := tx.Model(&row).Update("value", normalized).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrDatabaseUpdate, "failed to update settings", err)
	}

	logger.Infof("Settings updated: %d keys", len(updates))
	return s.Get()
}

// defaults 返回全默认值的配置快照
func defaults() Snapshot {
	return Snapshot{
		MaxFileSizeMB:       DefaultMaxFileSizeMB,
		AllowedExtensions:   splitExtensions(DefaultAllowedExtensions),
		MaxImagesPerGallery: DefaultMaxImagesPerGallery,
		SliderTimerMS:       DefaultSliderTimerMS,
		DefaultSize:         DefaultSize,
	}
}

// applyRow 将单行配置应用到快照，无法解析的值保持默认
func applyRow(snap *Snapshot, key, value string) {
	switch key {
	case KeyMaxFileSize:
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			snap.MaxFileSizeMB = n
		}
	case KeyAllowedExtensions:
		if exts := splitExtensions(value); len(exts) > 0 {
			snap.AllowedExtensions = exts
		}
	case KeyMaxImagesPerGallery:
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			snap.MaxImagesPerGallery = n
		}
	case KeySliderTimer:
		if n, err := strconv.Atoi(value); err == nil {
			snap.SliderTimerMS = clampTimer(n)
		}
	case KeyDefaultSize:
		if validSizes[value] {
			snap.DefaultSize = value
		}
	}
}

// validate 校验单个配置键值
func validate(key, value string) error {
	switch key {
	case KeyMaxFileSize:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return errors.NewByCode(errors.ErrSettingInvalid).
				WithDetails(fmt.Sprintf("%s must be a positive integer", key))
		}
	case KeyAllowedExtensions:
		if len(splitExtensions(value)) == 0 {
			return errors.NewByCode(errors.ErrSettingInvalid).
				WithDetails(fmt.Sprintf("%s must contain at least one extension", key))
		}
	case KeyMaxImagesPerGallery:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return errors.NewByCode(errors.ErrSettingInvalid).
				WithDetails(fmt.Sprintf("%s must be a positive integer", key))
		}
	case KeySliderTimer:
		if _, err := strconv.Atoi(value); err != nil {
			return errors.NewByCode(errors.ErrSettingInvalid).
				WithDetails(fmt.Sprintf("%s must be an integer in milliseconds", key))
		}
	case KeyDefaultSize:
		if !validSizes[value] {
			return errors.NewByCode(errors.ErrSettingInvalid).
				WithDetails(fmt.Sprintf("%s must be one of small, medium, full", key))
		}
	default:
		return errors.NewByCode(errors.ErrSettingInvalid).
			WithDetails(fmt.Sprintf("unknown setting key: %s", key))
	}
	return nil
}

// normalize 落库前归一化配置值
// 轮播间隔超出范围时钳制到边界而非拒绝
func normalize(key, value string) string {
	switch key {
	case KeySliderTimer:
		if n, err := strconv.Atoi(value); err == nil {
			return strconv.Itoa(clampTimer(n))
		}
	case KeyAllowedExtensions:
		return strings.Join(splitExtensions(value), ",")
	}
	return value
}

// clampTimer 将轮播间隔钳制到合法范围
func clampTimer(ms int) int {
	if ms < MinSliderTimerMS {
		return MinSliderTimerMS
	}
	if ms > MaxSliderTimerMS {
		return MaxSliderTimerMS
	}
	return ms
}

// splitExtensions 解析逗号分隔的扩展名列表，去空白并统一小写
func splitExtensions(s string) []string {
	parts := strings.Split(s, ",")
	exts := make([]string, 0, len(parts))
	for _, p := range parts {
		ext := strings.ToLower(strings.TrimSpace(p))
		ext = strings.TrimPrefix(ext, ".")
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}
