package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/booktracker/pkg/circuit_breaker"
	"github.com/Astemirdum/booktracker/pkg/kafka"
	"github.com/Astemirdum/booktracker/pkg/logger"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
)

type API struct {
	URL     string        `yaml:"url" envconfig:"BOOKTRACKER_API_URL" default:"http://localhost:8080"`
	Timeout time.Duration `yaml:"timeout" envconfig:"BOOKTRACKER_API_TIMEOUT" default:"30s"`
	RPS     float64       `yaml:"rps" envconfig:"BOOKTRACKER_API_RPS" default:"20"`
	Burst   int           `yaml:"burst" envconfig:"BOOKTRACKER_API_BURST" default:"5"`
}

type FakeHTTPServer struct {
	Host string `envconfig:"FAKE_HTTP_HOST" default:"localhost"`
	Port string `envconfig:"FAKE_HTTP_PORT" default:"8080"`
}

type Config struct {
	API            API    `yaml:"api"`
	Route          string `yaml:"route" envconfig:"BOOKTRACKER_ROUTE" default:"/books"`
	CircuitBreaker circuit_breaker.Config
	Kafka          kafka.Config
	NotifyTopic    string `envconfig:"BOOKTRACKER_NOTIFY_TOPIC" default:"booktracker.notifications"`
	FakeHTTPServer FakeHTTPServer
	Log            logger.Log `yaml:"log"`
}

var (
	once sync.Once
	cfg  Config
)

// NewConfig reads config from environment once per process.
func NewConfig(ops ...Option) Config {
	once.Do(func() {
		config, err := Load(ops...)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
		if cfg.Log.LogLevel == zapcore.DebugLevel {
			printConfig(cfg)
		}
	})

	return cfg
}

// Load reads config from environment; ops override what was read.
func Load(ops ...Option) (Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return Config{}, err
	}
	for _, op := range ops {
		op(&config)
	}
	return config, nil
}

func printConfig(cfg Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
