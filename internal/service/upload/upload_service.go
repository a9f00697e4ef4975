package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/weiwangfds/galleria/config"
	"github.com/weiwangfds/galleria/internal/errors"
	"github.com/weiwangfds/galleria/internal/logger"
	"github.com/weiwangfds/galleria/internal/service/settings"
)

// StoredFile 落盘完成的文件描述
type StoredFile struct {
	FileName         string // 磁盘存储名
	OriginalFilename string // 上传时的原始文件名
	FilePath         string // 磁盘绝对/相对路径
	FileURL          string // 对外访问URL
	Size             int64
	ContentType      string
}

// Service 文件上传服务接口
// 负责校验和落盘，不涉及数据库记录
type Service interface {
	// Store 校验并保存上传文件
	// 校验顺序：大小、扩展名、声明的Content-Type、文件内容嗅探
	Store(file *multipart.FileHeader, snap settings.Snapshot) (*StoredFile, error)
	// Remove 删除已落盘的文件，文件不存在不视为错误
	Remove(filePath string) error
}

type uploadService struct {
	contentRoot string
	publicPath  string
	publicBase  string
}

// NewService 创建上传服务实例
// publicBase为空时生成相对URL，由同域静态路由提供文件
func NewService(cfg *config.StorageConfig, publicBase string) Service {
	return &uploadService{
		contentRoot: cfg.ContentRoot,
		publicPath:  strings.TrimSuffix(cfg.PublicPath, "/"),
		publicBase:  strings.TrimSuffix(publicBase, "/"),
	}
}

// unsafeChars 文件名中需要替换的字符，仅保留字母数字、点、横线和下划线
var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Store 校验并保存上传文件
func (s *uploadService) Store(file *multipart.FileHeader, snap settings.Snapshot) (*StoredFile, error) {
	if file == nil {
		return nil, errors.NewByCode(errors.ErrNoFileUploaded)
	}

	// 大小校验放在最前，避免为超限文件做任何IO
	if file.Size > snap.MaxFileSizeBytes() {
		return nil, errors.NewByCode(errors.ErrFileTooLarge).
			WithDetails(fmt.Sprintf("%s: size %d exceeds limit of %d MB", file.Filename, file.Size, snap.MaxFileSizeMB))
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Filename), "."))
	if !snap.ExtensionAllowed(ext) {
		return nil, errors.NewByCode(errors.ErrExtensionNotAllowed).
			WithDetails(fmt.Sprintf("%s: extension %q is not allowed", file.Filename, ext))
	}

	declared := file.Header.Get("Content-Type")
	if declared != "" && !strings.HasPrefix(declared, "image/") {
		return nil, errors.NewByCode(errors.ErrNotAnImage).
			WithDetails(fmt.Sprintf("%s: declared content type %q is not an image", file.Filename, declared))
	}

	src, err := file.Open()
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorageWriteFailed, "failed to open uploaded file", err)
	}
	defer src.Close()

	// 内容嗅探不信任客户端声明，读取文件头判断真实类型
	sniffed, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrNotAnImage, "failed to detect file type", err)
	}
	if !strings.HasPrefix(sniffed.String(), "image/") {
		return nil, errors.NewByCode(errors.ErrNotAnImage).
			WithDetails(fmt.Sprintf("%s: file content detected as %q", file.Filename, sniffed.String()))
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(errors.ErrStorageWriteFailed, "failed to rewind uploaded file", err)
	}

	storedName := generateStoredName(file.Filename)
	if err := os.MkdirAll(s.contentRoot, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrStorageWriteFailed, "failed to create storage directory", err)
	}
	destPath := filepath.Join(s.contentRoot, storedName)

	written, err := s.writeFile(src, destPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorageWriteFailed, "failed to write file", err)
	}

	logger.Infof("Stored uploaded file: %s (%d bytes, %s)", storedName, written, sniffed.String())

	return &StoredFile{
		FileName:         storedName,
		OriginalFilename: file.Filename,
		FilePath:         destPath,
		FileURL:          s.publicBase + s.publicPath + "/" + storedName,
		Size:             written,
		ContentType:      sniffed.String(),
	}, nil
}

// Remove 删除已落盘的文件
func (s *uploadService) Remove(filePath string) error {
	if filePath == "" {
		return nil
	}
	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(errors.ErrImageDeleteFailed, "failed to remove file", err)
	}
	return nil
}

// writeFile 将内容写入目标路径
// 先写临时文件再重命名，避免读到半截文件
func (s *uploadService) writeFile(src io.Reader, destPath string) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".upload-*")
	if err != nil {
		return 0, err
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, src)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return 0, err
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, err
	}
	return written, nil
}

// generateStoredName 生成磁盘存储名
// uuid前缀保证唯一，原名经清洗后保留便于排查
func generateStoredName(original string) string {
	base := filepath.Base(original)
	sanitized := unsafeChars.ReplaceAllString(base, "_")
	sanitized = strings.Trim(sanitized, "._")
	if sanitized == "" {
		sanitized = "upload"
	}
	return uuid.New().String()[:8] + "_" + sanitized
}
