package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrInvalid 环境变量取值非法
var ErrInvalid = errors.New("invalid config")

// Config 进程级配置，来源优先级：命令行 > 环境变量 > .env > 默认值
type Config struct {
	Addr          string
	LogFile       string
	LogLevel      string
	LogStderr     bool
	StaticDir     string
	TickHz        int
	Countdown     time.Duration
	CountdownMode string

	// EnvFileErr .env 加载失败的原因（文件不存在不算致命错误）
	EnvFileErr error
}

// Default 默认配置
func Default() Config {
	return Config{
		Addr:          ":8080",
		LogFile:       "app.log",
		LogLevel:      "info",
		StaticDir:     "web",
		TickHz:        60,
		Countdown:     3 * time.Second,
		CountdownMode: "server",
	}
}

// Load 读取 .env（可指定文件）后再从环境变量覆盖默认值
func Load(files ...string) (Config, error) {
	c := Default()
	c.EnvFileErr = godotenv.Load(files...)

	c.Addr = str("ARENA_ADDR", c.Addr)
	c.LogFile = str("ARENA_LOG_FILE", c.LogFile)
	c.LogLevel = strings.ToLower(str("ARENA_LOG_LEVEL", c.LogLevel))
	c.StaticDir = str("ARENA_STATIC_DIR", c.StaticDir)
	c.CountdownMode = strings.ToLower(str("ARENA_COUNTDOWN_MODE", c.CountdownMode))

	var err error
	if c.LogStderr, err = boolean("ARENA_LOG_STDERR", c.LogStderr); err != nil {
		return c, err
	}
	if c.TickHz, err = integer("ARENA_TICK_HZ", c.TickHz); err != nil {
		return c, err
	}
	if c.Countdown, err = duration("ARENA_COUNTDOWN", c.Countdown); err != nil {
		return c, err
	}
	return c, c.Validate()
}

// Validate 检查取值范围
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: empty listen address", ErrInvalid)
	case c.TickHz < 1 || c.TickHz > 240:
		return fmt.Errorf("%w: tick rate %d out of [1, 240]", ErrInvalid, c.TickHz)
	case c.Countdown <= 0:
		return fmt.Errorf("%w: countdown must be positive", ErrInvalid)
	case c.CountdownMode != "server" && c.CountdownMode != "client":
		return fmt.Errorf("%w: countdown mode %q (want server or client)", ErrInvalid, c.CountdownMode)
	}
	return nil
}

func str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func integer(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
	}
	return n, nil
}

func boolean(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
	}
	return b, nil
}

// duration 接受 Go 时长（"3s"、"1500ms"）或纯数字秒
func duration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
	}
	return d, nil
}
