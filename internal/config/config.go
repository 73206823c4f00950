package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	Rules   RulesConfig
	Session SessionConfig
	Report  ReportConfig
	Log     LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	rules, err := loadRulesConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	report, err := loadReportConfig()
	if err != nil {
		return nil, err
	}

	log, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Rules: rules, Session: session, Report: report, Log: log}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// RulesConfig 描述规则文件的位置与热加载开关。
type RulesConfig struct {
	Path  string
	Watch bool
}

func loadRulesConfig() (RulesConfig, error) {
	watch, err := parseBoolEnv("RULES_WATCH", true)
	if err != nil {
		return RulesConfig{}, err
	}

	// RULES_PATH 显式设为空字符串时只使用内置规则。
	path := "data/oca_rules.yaml"
	if raw, ok := os.LookupEnv("RULES_PATH"); ok {
		path = strings.TrimSpace(raw)
	}

	return RulesConfig{Path: path, Watch: watch && path != ""}, nil
}

// SessionConfig 描述会话缓存的容量与过期策略。
type SessionConfig struct {
	TTL           time.Duration
	MaxSessions   int
	SweepInterval time.Duration
}

func loadSessionConfig() (SessionConfig, error) {
	ttl, err := parsePositiveIntEnv("SESSION_TTL_MINUTES", 30)
	if err != nil {
		return SessionConfig{}, err
	}

	maxSessions, err := parsePositiveIntEnv("SESSION_MAX", 10000)
	if err != nil {
		return SessionConfig{}, err
	}

	sweep, err := parsePositiveIntEnv("SESSION_SWEEP_SECONDS", 60)
	if err != nil {
		return SessionConfig{}, err
	}

	return SessionConfig{
		TTL:           time.Duration(ttl) * time.Minute,
		MaxSessions:   maxSessions,
		SweepInterval: time.Duration(sweep) * time.Second,
	}, nil
}

// ReportConfig 描述报告分段与洞察数量上限。
type ReportConfig struct {
	MaxSegmentLen int
	RuleCap       int
}

func loadReportConfig() (ReportConfig, error) {
	maxLen, err := parsePositiveIntEnv("REPORT_MAX_SEGMENT", 4800)
	if err != nil {
		return ReportConfig{}, err
	}

	ruleCap, err := parsePositiveIntEnv("REPORT_RULE_CAP", 6)
	if err != nil {
		return ReportConfig{}, err
	}

	return ReportConfig{MaxSegmentLen: maxLen, RuleCap: ruleCap}, nil
}

// LogConfig 描述日志级别与输出格式。
type LogConfig struct {
	Level  zapcore.Level
	Format string
}

func loadLogConfig() (LogConfig, error) {
	level, err := zapcore.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return LogConfig{}, fmt.Errorf("invalid LOG_LEVEL value: %w", err)
	}

	format := strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json"))
	if format != "json" && format != "console" {
		return LogConfig{}, fmt.Errorf("invalid LOG_FORMAT value %q: want json or console", format)
	}

	return LogConfig{Level: level, Format: format}, nil
}

// NewLogger 使用配置创建 zap 日志实例。
func (c LogConfig) NewLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(c.Level)
	if c.Format == "console" {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

// parsePositiveIntEnv 读取正整数，未设置时返回默认值。
func parsePositiveIntEnv(key string, defaultValue int) (int, error) {
	val, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return defaultValue, nil
	}
	if *val < 1 {
		return 0, fmt.Errorf("invalid %s value %d: must be positive", key, *val)
	}
	return *val, nil
}
