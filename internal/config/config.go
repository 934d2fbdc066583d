// Package config 负责加载和管理应用程序的配置。
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Log        LogConfig        `mapstructure:"log"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	FileSearch FileSearchConfig `mapstructure:"filesearch"`
	Chunking   ChunkingConfig   `mapstructure:"chunking"`
	Upload     UploadConfig     `mapstructure:"upload"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 存储会话令牌相关的配置。
type JWTConfig struct {
	Secret             string `mapstructure:"secret"`
	SessionExpireHours int    `mapstructure:"session_expire_hours"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// MinIOConfig 存储 MinIO 对象存储的配置。
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// FileSearchConfig 存储托管文件检索/生成服务相关的配置。
type FileSearchConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
}

// ChunkingConfig 存储上传时生效的分块策略（由远端服务执行）。
type ChunkingConfig struct {
	MaxTokensPerChunk int    `mapstructure:"max_tokens_per_chunk"`
	MaxOverlapTokens  int    `mapstructure:"max_overlap_tokens"`
	ChunkingMethod    string `mapstructure:"chunking_method"`
}

// UploadConfig 存储文件上传相关的配置。
type UploadConfig struct {
	AcceptedExtensions  []string `mapstructure:"accepted_extensions"`
	TextExtensions      []string `mapstructure:"text_extensions"`
	PollIntervalSeconds int      `mapstructure:"poll_interval_seconds"`
	PollTimeoutSeconds  int      `mapstructure:"poll_timeout_seconds"`
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// filesearch.api_key 允许通过环境变量 FILESEARCH_API_KEY 注入
	_ = viper.BindEnv("filesearch.api_key", "FILESEARCH_API_KEY")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("读取配置文件失败: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("无法将配置解析到结构体中: %w", err))
	}

	applyDefaults(&Conf)
}

// applyDefaults 为缺省的可选项填充默认值。
func applyDefaults(c *Config) {
	if c.FileSearch.BaseURL == "" {
		c.FileSearch.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if c.FileSearch.Model == "" {
		c.FileSearch.Model = "gemini-2.5-flash"
	}
	if c.Chunking.MaxTokensPerChunk == 0 {
		c.Chunking.MaxTokensPerChunk = 400
	}
	if c.Chunking.MaxOverlapTokens == 0 {
		c.Chunking.MaxOverlapTokens = 40
	}
	if c.Chunking.ChunkingMethod == "" {
		c.Chunking.ChunkingMethod = "white_space"
	}
	if len(c.Upload.AcceptedExtensions) == 0 {
		c.Upload.AcceptedExtensions = []string{".pdf", ".txt", ".docx", ".md", ".csv"}
	}
	if len(c.Upload.TextExtensions) == 0 {
		c.Upload.TextExtensions = []string{".txt", ".md", ".csv", ".json", ".xml", ".html"}
	}
	if c.Upload.PollIntervalSeconds == 0 {
		c.Upload.PollIntervalSeconds = 2
	}
	if c.Upload.PollTimeoutSeconds == 0 {
		c.Upload.PollTimeoutSeconds = 600
	}
	if c.JWT.SessionExpireHours == 0 {
		c.JWT.SessionExpireHours = 24
	}
}

// Validate 校验启动所必需的配置项。缺少远端服务凭证属于致命错误，
// 应在启动时立即暴露，而不是等到第一次调用才失败。
func Validate(c *Config) error {
	if c.FileSearch.APIKey == "" {
		return errors.New("filesearch.api_key 未配置（也可通过环境变量 FILESEARCH_API_KEY 设置）")
	}
	return nil
}
