package mirror

import (
	"fmt"
	"os"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/weiwangfds/galleria/config"
	"github.com/weiwangfds/galleria/internal/logger"
)

// Service 图片镜像服务接口
// 将本地图片同步到对象存储作为远程副本，所有操作尽力而为，
// 失败只记日志不影响主流程
type Service interface {
	// Enabled 镜像是否启用
	Enabled() bool
	// Upload 上传本地文件到镜像
	Upload(galleryID uint, storedName, filePath, contentType string) error
	// Delete 删除镜像中的对象，对象不存在不视为错误
	Delete(galleryID uint, storedName string) error
	// TestConnection 测试镜像连接是否可用
	TestConnection() error
}

type aliyunMirror struct {
	cfg    config.MirrorConfig
	client *oss.Client
}

// noopMirror 未配置镜像时的空实现
type noopMirror struct{}

func (noopMirror) Enabled() bool                             { return false }
func (noopMirror) Upload(uint, string, string, string) error { return nil }
func (noopMirror) Delete(uint, string) error                 { return nil }
func (noopMirror) TestConnection() error                     { return nil }

// NewService 创建镜像服务实例
// 配置不完整时返回空实现，调用方无需判空
func NewService(cfg *config.MirrorConfig) (Service, error) {
	if cfg == nil || !cfg.Enabled {
		return noopMirror{}, nil
	}
	if cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		logger.Warn("Mirror enabled but credentials incomplete, mirroring disabled")
		return noopMirror{}, nil
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://oss-%s.aliyuncs.com", cfg.Region)
	}

	client, err := oss.New(endpoint, cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	logger.Infof("Mirror service initialized: bucket=%s endpoint=%s", cfg.Bucket, endpoint)
	return &aliyunMirror{cfg: *cfg, client: client}, nil
}

func (m *aliyunMirror) Enabled() bool {
	return true
}

// objectKey 镜像对象键：galleries/<相册ID>/<存储名>
func objectKey(galleryID uint, storedName string) string {
	return fmt.Sprintf("galleries/%d/%s", galleryID, storedName)
}

// Upload 上传本地文件到镜像
func (m *aliyunMirror) Upload(galleryID uint, storedName, filePath, contentType string) error {
	bucket, err := m.client.Bucket(m.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("failed to get bucket: %w", err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open local file: %w", err)
	}
	defer file.Close()

	key := objectKey(galleryID, storedName)
	var opts []oss.Option
	if contentType != "" {
		opts = append(opts, oss.ContentType(contentType))
	}
	if err := bucket.PutObject(key, file, opts...); err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}

	logger.Infof("Mirrored file to OSS: %s", key)
	return nil
}

// Delete 删除镜像中的对象
func (m *aliyunMirror) Delete(galleryID uint, storedName string) error {
	bucket, err := m.client.Bucket(m.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("failed to get bucket: %w", err)
	}

	key := objectKey(galleryID, storedName)
	exist, err := bucket.IsObjectExist(key)
	if err != nil {
		return fmt.Errorf("failed to check object %s: %w", key, err)
	}
	if !exist {
		return nil
	}

	if err := bucket.DeleteObject(key); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}

	logger.Infof("Removed mirrored file from OSS: %s", key)
	return nil
}

// TestConnection 通过查询bucket信息验证凭证和连通性
func (m *aliyunMirror) TestConnection() error {
	_, err := m.client.GetBucketInfo(m.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("OSS connection test failed: %w", err)
	}
	return nil
}
