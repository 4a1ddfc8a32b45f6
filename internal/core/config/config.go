package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// DevJWTSecret 仅供本地开发；生产环境禁止使用
const DevJWTSecret = "your_super_secret_key"

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type HTTP struct {
	Host               string
	Port               int
	ReadTimeoutSec     int
	WriteTimeoutSec    int
	IdleTimeoutSec     int
	RequestTimeoutSec  int
	ShutdownTimeoutSec int
	MaxBodyMB          int
	MaxInflight        int64
	CORSOrigins        []string `mapstructure:"cors_origins"`
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type FileRotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  FileRotate
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
	LeewaySec         int
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Upload struct {
	Dir          string
	PublicPrefix string
	MaxSizeMB    int
}

type Security struct {
	BcryptCost int
}

type Config struct {
	App      App
	Log      Log
	JWT      JWT
	DB       DB
	Upload   Upload
	Security Security
}

// Dev 开发模式：500 响应附带 stack
func (c *Config) Dev() bool { return c.App.Env == EnvDevelopment }

func (c *Config) Production() bool { return c.App.Env == EnvProduction }

// Validate 启动时校验；生产环境缺少密钥直接失败，不回落到默认值
func (c *Config) Validate() error {
	var errs []error
	if c.App.HTTP.Port <= 0 || c.App.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("app.http.port out of range: %d", c.App.HTTP.Port))
	}
	if c.JWT.AccessTokenTTLMin <= 0 {
		errs = append(errs, errors.New("jwt.accesstokenttlmin must be positive"))
	}
	switch c.DB.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("db.driver %q not supported", c.DB.Driver))
	}
	if c.Production() {
		if strings.TrimSpace(c.JWT.Secret) == "" || c.JWT.Secret == DevJWTSecret {
			errs = append(errs, errors.New("jwt.secret must be set in production"))
		}
		if c.DB.AutoMigrate {
			errs = append(errs, errors.New("db.automigrate is not allowed in production"))
		}
	} else if c.JWT.Secret == "" {
		c.JWT.Secret = DevJWTSecret
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "tienda-api")
	v.SetDefault("app.env", EnvDevelopment)
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 3000)
	v.SetDefault("app.http.readtimeoutsec", 10)
	v.SetDefault("app.http.writetimeoutsec", 15)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.requesttimeoutsec", 10)
	v.SetDefault("app.http.shutdowntimeoutsec", 15)
	v.SetDefault("app.http.maxbodymb", 16)
	v.SetDefault("app.http.maxinflight", 300)
	v.SetDefault("app.http.cors_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.maxsizemb", 100)
	v.SetDefault("log.file.maxbackups", 7)
	v.SetDefault("log.file.maxagedays", 30)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "tienda-api")
	v.SetDefault("jwt.accesstokenttlmin", 24*60)
	v.SetDefault("jwt.leewaysec", 0)

	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.dsn", "root:@tcp(127.0.0.1:3306)/tienda?parseTime=true&charset=utf8mb4&loc=Local")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.maxopenconns", 10)
	v.SetDefault("db.maxidleconns", 5)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", false)
	v.SetDefault("db.loglevel", "warn")

	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.publicprefix", "/uploads")
	v.SetDefault("upload.maxsizemb", 5)

	v.SetDefault("security.bcryptcost", 10)
}

// Load 读取 yaml（可选）+ 环境变量（APP_ 前缀，. 替换为 _）
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	explicit := path != ""
	if !explicit {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 兼容常见的无前缀变量
	_ = v.BindEnv("app.http.port", "APP_APP_HTTP_PORT", "PORT")
	_ = v.BindEnv("app.env", "APP_APP_ENV", "APP_ENV")
	_ = v.BindEnv("jwt.secret", "APP_JWT_SECRET", "JWT_SECRET")

	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}
