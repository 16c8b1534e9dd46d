// Package dashboard 实现仪表盘 CLI 客户端。
package dashboard

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ClientConfig CLI 配置结构
type ClientConfig struct {
	Server  ClientServerConfig  `mapstructure:"server"`
	Session ClientSessionConfig `mapstructure:"session"`
}

// ClientServerConfig 服务器配置
type ClientServerConfig struct {
	URL string `mapstructure:"url"` // HTTP API 地址
}

// ClientSessionConfig 会话配置
type ClientSessionConfig struct {
	ID    string `mapstructure:"id"`    // 会话 ID
	Token string `mapstructure:"token"` // 会话令牌（用于 Bearer 鉴权）
}

var clientCfg *ClientConfig

// InitConfig 初始化 CLI 配置，配置文件位于 ~/.soul-lifter/config.yaml。
func InitConfig() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("获取用户目录失败: %w", err)
	}

	configDir := filepath.Join(home, ".soul-lifter")
	configPath := filepath.Join(configDir, "config.yaml")

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("server.url", "http://localhost:5000")
	viper.SetDefault("session.id", "")
	viper.SetDefault("session.token", "")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := viper.SafeWriteConfig(); err != nil {
				// 忽略文件已存在的错误
			}
		}
	}

	clientCfg = &ClientConfig{}
	if err := viper.Unmarshal(clientCfg); err != nil {
		return fmt.Errorf("解析配置失败: %w", err)
	}
	return nil
}

// GetServerURL 获取服务器地址
func GetServerURL() string {
	if clientCfg == nil {
		return "http://localhost:5000"
	}
	return clientCfg.Server.URL
}

// SetServerURL 设置服务器地址
func SetServerURL(url string) {
	viper.Set("server.url", url)
	if clientCfg != nil {
		clientCfg.Server.URL = url
	}
}

// GetSessionToken 获取已保存的会话令牌
func GetSessionToken() string {
	if clientCfg == nil {
		return ""
	}
	return clientCfg.Session.Token
}

// GetSessionID 获取已保存的会话 ID
func GetSessionID() string {
	if clientCfg == nil {
		return ""
	}
	return clientCfg.Session.ID
}

// SaveSession 持久化会话 ID 与令牌，下次启动时继续同一会话。
func SaveSession(sessionID, token string) error {
	viper.Set("session.id", sessionID)
	viper.Set("session.token", token)
	if clientCfg != nil {
		clientCfg.Session.ID = sessionID
		clientCfg.Session.Token = token
	}
	return viper.WriteConfig()
}
