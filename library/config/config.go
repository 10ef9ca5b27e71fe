package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/library-catalog/library/internal/storage"
	"github.com/Astemirdum/library-catalog/pkg/auth"
	"github.com/Astemirdum/library-catalog/pkg/kafka"
	"github.com/Astemirdum/library-catalog/pkg/logger"
	"github.com/Astemirdum/library-catalog/pkg/postgres"
	"github.com/kelseyhightower/envconfig"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
	RateLimit    float64       `envconfig:"HTTP_RATE_LIMIT" default:"50"`
	AllowOrigins []string      `envconfig:"HTTP_CORS_ORIGINS" default:"*"`
}

type Auth struct {
	JWT        auth.Config
	BcryptCost int `envconfig:"BCRYPT_COST" default:"12"`
}

type Borrowing struct {
	MaxActive   int     `envconfig:"BORROW_MAX_ACTIVE" default:"5"`
	DailyFine   float64 `envconfig:"BORROW_DAILY_FINE" default:"1.0"`
	DefaultDays int     `envconfig:"BORROW_DEFAULT_DAYS" default:"14"`
}

type Config struct {
	Server    HTTPServer     `yaml:"server"`
	Database  postgres.DB    `yaml:"db"`
	Log       logger.Log     `yaml:"log"`
	Auth      Auth           `yaml:"auth"`
	Borrowing Borrowing      `yaml:"borrowing"`
	Storage   storage.Config `yaml:"storage"`
	Kafka     kafka.Config   `yaml:"kafka"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment once; options override what the environment set.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		config, err := load(ops...)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
		printConfig(cfg)
	})

	return cfg
}

func load(ops ...Option) (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, err
	}
	for _, op := range ops {
		op(&config)
	}
	return &config, nil
}

func printConfig(cfg *Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
