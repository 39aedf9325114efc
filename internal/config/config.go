// Package config предоставляет структуры настроек и функции их загрузки
// из YAML-файла и переменных окружения.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/magabrotheeeer/diary-sync/internal/models"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	Version                 string `yaml:"version" env-default:"v0.0.0" validate:"required"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" validate:"required"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Portal                  Portal `yaml:"portal"`
	Sync                    Sync   `yaml:"sync"`
	Jobs                    Jobs   `yaml:"jobs"`
	Update                  Update `yaml:"update"`
}

// HTTPServer структура для настройки управляющего сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RateLimit   float64       `yaml:"rate_limit" env-default:"1" validate:"gt=0"`
	RateBurst   int           `yaml:"rate_burst" env-default:"3" validate:"gte=1"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" validate:"required"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// RabbitMQ структура для подключения к брокеру уведомлений.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL" validate:"required"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// JWTToken структура для проверки токенов управляющего API.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" validate:"required"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Portal описывает адреса и параметры работы с порталом дневника.
type Portal struct {
	BaseURL         string        `yaml:"base_url" validate:"required,url"`
	LoginPath       string        `yaml:"login_path" env-default:"/login"`
	DayPath         string        `yaml:"day_path" env-default:"/journal/day"`
	PerformancePath string        `yaml:"performance_path" env-default:"/journal/performance"`
	Referer         string        `yaml:"referer"`
	CookieName      string        `yaml:"cookie_name" env-default:"sessionid"`
	UserAgent       string        `yaml:"user_agent" env-default:"diary-sync/1.0"`
	Login           string        `yaml:"login" env:"PORTAL_LOGIN"`
	Password        string        `yaml:"password" env:"PORTAL_PASSWORD"`
	Timeout         time.Duration `yaml:"timeout" env-default:"30s"`
	MaxReauth       int           `yaml:"max_reauth" env-default:"1" validate:"gte=0,lte=3"`
	MaxPageSize     int64         `yaml:"max_page_size" env-default:"5242880"`
}

// Credentials возвращает учётные данные портала.
// Реализует portal.CredentialsProvider.
func (p Portal) Credentials() models.Credentials {
	return models.Credentials{Login: p.Login, Password: p.Password}
}

// Sync задаёт окно синхронизации.
type Sync struct {
	LookaheadDays     int           `yaml:"lookahead_days" env-default:"7" validate:"gte=0,lte=31"`
	GradeBackfillDays int           `yaml:"grade_backfill_days" env-default:"3" validate:"gte=0,lte=31"`
	LessonDuration    time.Duration `yaml:"lesson_duration" env-default:"45m"`
	BatchPolicy       string        `yaml:"batch_policy" env-default:"all_or_nothing" validate:"oneof=all_or_nothing partial"`
}

// Jobs задаёт периодичность и бюджеты фоновых задач.
type Jobs struct {
	ScheduleInterval    time.Duration `yaml:"schedule_interval" env-default:"3h"`
	SubjectsInterval    time.Duration `yaml:"subjects_interval" env-default:"24h"`
	TasksGradesInterval time.Duration `yaml:"tasks_grades_interval" env-default:"1h"`
	AppVersionInterval  time.Duration `yaml:"app_version_interval" env-default:"24h"`
	TasksGradesTimeout  time.Duration `yaml:"tasks_grades_timeout" env-default:"15s"`
	AppVersionTimeout   time.Duration `yaml:"app_version_timeout" env-default:"10s"`
	MaxRetries          int           `yaml:"max_retries" env-default:"3"`
	RetryInitialDelay   time.Duration `yaml:"retry_initial_delay" env-default:"30s"`
	RetryMaxDelay       time.Duration `yaml:"retry_max_delay" env-default:"10m"`
}

// Update описывает источник сведений о новых версиях.
type Update struct {
	ManifestURL string `yaml:"manifest_url"`
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает и валидирует конфиг по указанному пути.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// String печатает конфиг без секретов.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Version: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"Portal:\n"+
			"  BaseURL: %s\n"+
			"  Login: %s\n"+
			"  MaxReauth: %d\n"+
			"Sync:\n"+
			"  LookaheadDays: %d\n"+
			"  BatchPolicy: %s\n",
		c.Env,
		c.Version,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.Portal.BaseURL,
		c.Portal.Login,
		c.Portal.MaxReauth,
		c.Sync.LookaheadDays,
		c.Sync.BatchPolicy,
	)
}
