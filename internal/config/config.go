package config

import (
	"errors"
	"flag"
	"io/fs"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string           `yaml:"env" env:"APP_ENV" env-default:"local"` // environment
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	Database   DatabaseConfig   `yaml:"database"`
	Migrations MigrationsConfig `yaml:"migrations"`
	Auth       AuthConfig       `yaml:"auth"`
	CORS       CORSConfig       `yaml:"cors"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// HTTPServerConfig структура http сервера
type HTTPServerConfig struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// DatabaseConfig структура по работе с БД
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-required:"true"`
	Password string `yaml:"-" env:"DB_PASSWORD" env-required:"true"`
	Name     string `yaml:"name" env:"DB_NAME" env-required:"true"`
	SSLMode  string `yaml:"sslmode" env-default:"disable"`
}

// DSN собирает строку подключения для lib/pq и golang-migrate.
// Логин и пароль экранируются, в них допустимы любые символы.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

type MigrationsConfig struct {
	Path string `yaml:"path" env-default:"./migrations"`
}

// AuthConfig настройка jwt. Проверка токена включается флагом enabled,
// секрет при этом обязателен.
type AuthConfig struct {
	Enabled  bool          `yaml:"enabled" env:"AUTH_ENABLED" env-default:"false"`
	Secret   string        `yaml:"-" env:"JWT_SECRET"`
	TokenTTL time.Duration `yaml:"token_ttl" env-default:"1h"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env-default:"*"`
	MaxAge         int      `yaml:"max_age" env-default:"300"`
}

type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" env-default:"jpashop-orders"`
	ServiceVersion string `yaml:"service_version" env-default:"0.1.0"`
	// пустой endpoint отключает экспорт трейсов
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// MustLoad - если не загружаем - паникуем
func MustLoad() *Config {
	loadDotEnv(".env")

	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH not exists")
	}
	return MustLoadByPath(configPath)
}

// loadDotEnv подгружает переменные из .env, если файл есть.
// Уже заданные переменные окружения не перезаписываются.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("can't read %s: %v", path, err)
	}
}

func fetchConfigPath() string {
	var path string

	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file not found: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("can't read config file %s: %v", configPath, err)
	}

	if cfg.Auth.Enabled && cfg.Auth.Secret == "" {
		panic("auth is enabled but JWT_SECRET is not set")
	}

	return &cfg
}
