package errors

import (
	"fmt"

	"github.com/weiwangfds/galleria/internal/i18n"
)

// ErrorCode 错误码类型
type ErrorCode int

// 定义错误码常量
const (
	// 通用错误码 (1000-1999)
	ErrSuccess        ErrorCode = 0    // 成功
	ErrInternalServer ErrorCode = 1000 // 服务器内部错误
	ErrInvalidParams  ErrorCode = 1001 // 参数错误
	ErrNotFound       ErrorCode = 1004 // 资源未找到

	// 画廊相关错误码 (2000-2099)
	ErrGalleryNameRequired ErrorCode = 2000 // 画廊名称为空
	ErrGalleryNotFound     ErrorCode = 2001 // 画廊未找到
	ErrGalleryCreateFailed ErrorCode = 2002 // 创建画廊失败
	ErrGalleryUpdateFailed ErrorCode = 2003 // 更新画廊失败
	ErrGalleryDeleteFailed ErrorCode = 2004 // 删除画廊失败
	ErrGalleryImageLimit   ErrorCode = 2005 // 画廊图片数量超限

	// 图片/上传相关错误码 (2100-2199)
	ErrImageNotFound         ErrorCode = 2100 // 图片未找到
	ErrImageUpdateFailed     ErrorCode = 2101 // 更新图片信息失败
	ErrImageDeleteFailed     ErrorCode = 2102 // 删除图片失败
	ErrImagePartiallyDeleted ErrorCode = 2103 // 图片删除不完整（行与文件仅其一被删）
	ErrNoFileUploaded        ErrorCode = 2104 // 未选择文件
	ErrFileTooLarge          ErrorCode = 2105 // 文件大小超限
	ErrExtensionNotAllowed   ErrorCode = 2106 // 文件扩展名不允许
	ErrNotAnImage            ErrorCode = 2107 // 文件不是图片
	ErrStorageWriteFailed    ErrorCode = 2108 // 文件写入失败
	ErrSortFailed            ErrorCode = 2109 // 图片排序失败

	// 设置相关错误码 (3000-3099)
	ErrSettingInvalid ErrorCode = 3000 // 设置项取值无效

	// 数据库相关错误码 (4000-4999)
	ErrDatabaseQuery  ErrorCode = 4001 // 数据库查询错误
	ErrDatabaseInsert ErrorCode = 4002 // 数据库插入错误
	ErrDatabaseUpdate ErrorCode = 4003 // 数据库更新错误
	ErrDatabaseDelete ErrorCode = 4004 // 数据库删除错误
)

// AppError 应用错误结构体
// @Description 应用程序统一错误格式
type AppError struct {
	// 错误码
	Code ErrorCode `json:"code"`
	// 错误消息
	Message string `json:"message"`
	// 详细错误信息
	Details string `json:"details,omitempty"`
	// 原始错误
	OriginalError error `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// WithDetails 添加详细错误信息
func (e *AppError) WithDetails(details string) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

// WithOriginalError 添加原始错误
func (e *AppError) WithOriginalError(err error) *AppError {
	clone := *e
	clone.OriginalError = err
	if clone.Details == "" && err != nil {
		clone.Details = err.Error()
	}
	return &clone
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewByCode 根据错误码创建应用错误，消息取自i18n语言包
func NewByCode(code ErrorCode) *AppError {
	return New(code, GetErrorMessage(code))
}

// Wrap 包装原始错误
func Wrap(code ErrorCode, message string, err error) *AppError {
	appErr := &AppError{
		Code:          code,
		Message:       message,
		OriginalError: err,
	}
	if err != nil {
		appErr.Details = err.Error()
	}
	return appErr
}

// IsAppError 判断是否为应用错误
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetAppError 获取应用错误
func GetAppError(err error) (*AppError, bool) {
	appErr, ok := err.(*AppError)
	return appErr, ok
}

// IsCode 判断错误是否携带指定错误码
func IsCode(err error, code ErrorCode) bool {
	if appErr, ok := GetAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// 错误码到i18n键的映射
var errorCodeToKeyMap = map[ErrorCode]string{
	ErrSuccess:        "success",
	ErrInternalServer: "internal_server_error",
	ErrInvalidParams:  "invalid_params",
	ErrNotFound:       "not_found",

	ErrGalleryNameRequired: "gallery_name_required",
	ErrGalleryNotFound:     "gallery_not_found",
	ErrGalleryCreateFailed: "gallery_create_failed",
	ErrGalleryUpdateFailed: "gallery_update_failed",
	ErrGalleryDeleteFailed: "gallery_delete_failed",
	ErrGalleryImageLimit:   "gallery_image_limit",

	ErrImageNotFound:         "image_not_found",
	ErrImageUpdateFailed:     "image_update_failed",
	ErrImageDeleteFailed:     "image_delete_failed",
	ErrImagePartiallyDeleted: "image_partially_deleted",
	ErrNoFileUploaded:        "no_file_uploaded",
	ErrFileTooLarge:          "file_too_large",
	ErrExtensionNotAllowed:   "extension_not_allowed",
	ErrNotAnImage:            "not_an_image",
	ErrStorageWriteFailed:    "storage_write_failed",
	ErrSortFailed:            "sort_failed",

	ErrSettingInvalid: "setting_invalid",

	ErrDatabaseQuery:  "database_query",
	ErrDatabaseInsert: "database_insert",
	ErrDatabaseUpdate: "database_update",
	ErrDatabaseDelete: "database_delete",
}

// GetErrorMessage 根据错误码获取错误消息（使用默认语言）
func GetErrorMessage(code ErrorCode) string {
	return GetErrorMessageWithLang(code, i18n.GetInstance().GetDefaultLanguage())
}

// GetErrorMessageWithLang 根据错误码和语言获取错误消息
func GetErrorMessageWithLang(code ErrorCode, lang string) string {
	key, exists := errorCodeToKeyMap[code]
	if !exists {
		key = "unknown_error"
	}
	return i18n.GetInstance().Translate(key, lang)
}
