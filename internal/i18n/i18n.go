// Package i18n 提供国际化支持
// 负责管理应用程序的语言包和翻译功能
package i18n

import (
	"sync"

	"github.com/go-playground/locales/en_US"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"

	"github.com/weiwangfds/galleria/internal/logger"
)

// 支持的语言
const (
	LangZhCN = "zh-CN"
	LangEnUS = "en-US"
)

var (
	instance *I18n
	once     sync.Once

	// 语言包存储
	translations = map[string]map[string]string{
		LangZhCN: {
			"success":               "成功",
			"internal_server_error": "服务器内部错误",
			"invalid_params":        "参数错误",
			"not_found":             "资源未找到",

			"gallery_name_required":  "画廊名称不能为空",
			"gallery_not_found":      "画廊未找到",
			"gallery_create_failed":  "创建画廊失败",
			"gallery_update_failed":  "更新画廊失败",
			"gallery_delete_failed":  "删除画廊失败",
			"gallery_image_limit":    "画廊图片数量已达上限",

			"image_not_found":         "图片未找到",
			"image_update_failed":     "更新图片信息失败",
			"image_delete_failed":     "删除图片失败",
			"image_partially_deleted": "图片已删除，但文件清理未完全成功",
			"no_file_uploaded":        "未选择文件",
			"file_too_large":          "文件大小超过上限",
			"extension_not_allowed":   "文件扩展名不允许",
			"not_an_image":            "文件不是图片",
			"storage_write_failed":    "文件写入存储失败",
			"sort_failed":             "图片排序失败",

			"setting_invalid": "设置项取值无效",

			"database_query":  "数据库查询错误",
			"database_insert": "数据库插入错误",
			"database_update": "数据库更新错误",
			"database_delete": "数据库删除错误",

			"unknown_error": "未知错误",
		},
		LangEnUS: {
			"success":               "Success",
			"internal_server_error": "Internal server error",
			"invalid_params":        "Invalid parameters",
			"not_found":             "Resource not found",

			"gallery_name_required":  "Gallery name is required",
			"gallery_not_found":      "Gallery not found",
			"gallery_create_failed":  "Failed to create gallery",
			"gallery_update_failed":  "Failed to update gallery",
			"gallery_delete_failed":  "Failed to delete gallery",
			"gallery_image_limit":    "Gallery has reached the maximum number of images",

			"image_not_found":         "Image not found",
			"image_update_failed":     "Failed to update image data",
			"image_delete_failed":     "Failed to delete image from database",
			"image_partially_deleted": "Image deleted, but file cleanup did not fully succeed",
			"no_file_uploaded":        "No file uploaded",
			"file_too_large":          "File size exceeds maximum allowed size",
			"extension_not_allowed":   "File type not allowed",
			"not_an_image":            "File is not an image",
			"storage_write_failed":    "Failed to upload file",
			"sort_failed":             "Failed to sort images",

			"setting_invalid": "Invalid setting value",

			"database_query":  "Database query error",
			"database_insert": "Database insert error",
			"database_update": "Database update error",
			"database_delete": "Database delete error",

			"unknown_error": "Unknown error",
		},
	}
)

// I18n 国际化管理器
type I18n struct {
	translators map[string]ut.Translator
	defaultLang string
	mu          sync.RWMutex
}

// GetInstance 获取国际化管理器单例
func GetInstance() *I18n {
	once.Do(func() {
		zhLocale := zh.New()
		enLocale := en_US.New()
		uni := ut.New(enLocale, enLocale, zhLocale)

		translators := make(map[string]ut.Translator)
		if t, ok := uni.GetTranslator("en_US"); ok {
			translators[LangEnUS] = t
		}
		if t, ok := uni.GetTranslator("zh"); ok {
			translators[LangZhCN] = t
		}

		instance = &I18n{
			translators: translators,
			defaultLang: LangEnUS,
		}
		logger.Info("i18n initialized, default language: " + instance.defaultLang)
	})
	return instance
}

// SetDefaultLanguage 设置默认语言
// 不支持的语言代码将被忽略
func (i *I18n) SetDefaultLanguage(lang string) {
	if _, ok := translations[lang]; !ok {
		logger.Warnf("unsupported language %q, keeping %s", lang, i.defaultLang)
		return
	}
	i.mu.Lock()
	i.defaultLang = lang
	i.mu.Unlock()
}

// GetDefaultLanguage 获取默认语言
func (i *I18n) GetDefaultLanguage() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.defaultLang
}

// Translate 翻译指定键
// 参数:
//   - key: 语言包键名
//   - lang: 语言代码，如zh-CN、en-US；不支持时回退到默认语言
//
// 返回:
//   - string: 翻译后的消息；键不存在时返回unknown_error对应消息
func (i *I18n) Translate(key string, lang string) string {
	pack, ok := translations[lang]
	if !ok {
		pack = translations[i.GetDefaultLanguage()]
	}
	if msg, ok := pack[key]; ok {
		return msg
	}
	return pack["unknown_error"]
}
