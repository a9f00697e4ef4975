// Package config 提供应用程序配置加载功能
// 使用viper从配置文件和环境变量读取服务器、数据库、存储等配置
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用程序配置
// 进程级配置（监听端口、数据库、内容目录等）在启动时加载一次；
// 可在后台修改的展示/上传选项由settings服务持久化在数据库中
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Database DatabaseConfig `mapstructure:"database"` // 数据库配置
	Storage  StorageConfig  `mapstructure:"storage"`  // 本地存储配置
	Mirror   MirrorConfig   `mapstructure:"mirror"`   // 可选的OSS镜像配置
	Sweeper  SweeperConfig  `mapstructure:"sweeper"`  // 孤儿文件清理配置
	Language string         `mapstructure:"language"` // 消息语言 (zh-CN, en-US)
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port         int    `mapstructure:"port"`           // HTTP端口
	HTTPSPort    int    `mapstructure:"https_port"`     // HTTPS端口
	EnableHTTPS  bool   `mapstructure:"enable_https"`   // 是否启用HTTPS
	EnableHTTP2  bool   `mapstructure:"enable_http2"`   // 是否启用HTTP/2（仅HTTPS下生效）
	TLSCertFile  string `mapstructure:"tls_cert_file"`  // TLS证书路径
	TLSKeyFile   string `mapstructure:"tls_key_file"`   // TLS私钥路径
	ReadTimeout  int    `mapstructure:"read_timeout"`   // 读超时（秒）
	WriteTimeout int    `mapstructure:"write_timeout"`  // 写超时（秒）
	PublicBase   string `mapstructure:"public_base"`    // 公网访问基础URL，用于拼接图片file_url
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`            // 数据库驱动，目前支持sqlite
	DSN             string `mapstructure:"dsn"`               // 数据源名称
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	MaxOpenConns    int    `mapstructure:"max_open_conns"`    // 最大打开连接数
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 连接最大生命周期（秒）
}

// StorageConfig 本地存储配置
type StorageConfig struct {
	ContentRoot string `mapstructure:"content_root"` // 图片文件存放目录
	PublicPath  string `mapstructure:"public_path"`  // 对外暴露的URL路径前缀
}

// MirrorConfig 阿里云OSS镜像配置
// 留空表示不启用镜像
type MirrorConfig struct {
	Enabled   bool   `mapstructure:"enabled"`    // 是否启用镜像
	Endpoint  string `mapstructure:"endpoint"`   // OSS访问域名，为空时按区域拼默认域名
	Region    string `mapstructure:"region"`     // OSS区域
	Bucket    string `mapstructure:"bucket"`     // 存储桶名称
	AccessKey string `mapstructure:"access_key"` // 访问密钥ID
	SecretKey string `mapstructure:"secret_key"` // 访问密钥Secret
}

// SweeperConfig 孤儿文件清理配置
type SweeperConfig struct {
	Enabled     bool `mapstructure:"enabled"`      // 是否启用后台清理
	IntervalSec int  `mapstructure:"interval_sec"` // 扫描间隔（秒）
	GraceSec    int  `mapstructure:"grace_sec"`    // 文件落盘后的宽限期（秒），宽限期内不清理
}

// Load 加载配置
// 依次读取 ./config.yaml 与环境变量（前缀GALLERIA），缺省值按默认配置填充
// 返回:
//   - *Config: 加载完成的配置实例
//   - error: 加载失败时返回错误
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("GALLERIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 配置文件缺失时仅使用默认值和环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults 填充默认配置
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.https_port", 8443)
	v.SetDefault("server.enable_https", false)
	v.SetDefault("server.enable_http2", false)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.public_base", "http://localhost:8080")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/galleria.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 3600)

	v.SetDefault("storage.content_root", "data/custom-gallery")
	v.SetDefault("storage.public_path", "/uploads/custom-gallery")

	v.SetDefault("mirror.enabled", false)

	v.SetDefault("sweeper.enabled", false)
	v.SetDefault("sweeper.interval_sec", 3600)
	v.SetDefault("sweeper.grace_sec", 86400)

	v.SetDefault("language", "en-US")
}
