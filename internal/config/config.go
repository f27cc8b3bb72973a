package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageLocal    = "local"
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
)

type Config struct {
	Env        string `yaml:"env" env-default:"local"`
	Dealership struct {
		Name string `yaml:"name" env-default:"AutoPier"`
	} `yaml:"dealership"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"9200"`
		ApiKey string `yaml:"key" env-default:""`
	} `yaml:"listen"`
	Storage struct {
		Mode    string `yaml:"mode" env-default:"local"`
		DataDir string `yaml:"data_dir" env-default:".data"`
	} `yaml:"storage"`
	Mongo struct {
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:""`
		Password string `yaml:"password" env-default:""`
		Database string `yaml:"database" env-default:"autopier"`
	} `yaml:"mongo"`
	Postgres struct {
		DSN string `yaml:"dsn" env-default:""`
	} `yaml:"postgres"`
	Redis struct {
		Enabled bool   `yaml:"enabled" env-default:"false"`
		URL     string `yaml:"url" env-default:"redis://127.0.0.1:6379"`
	} `yaml:"redis"`
	Telegram struct {
		Enabled bool   `yaml:"enabled" env-default:"false"`
		ApiKey  string `yaml:"api_key" env-default:""`
		AdminId int64  `yaml:"admin_id" env-default:"0"`
	} `yaml:"telegram"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	once.Do(func() {
		instance = &Config{}
		if err := cleanenv.ReadConfig(path, instance); err != nil {
			// A missing config file is fine for local mode, defaults apply.
			if readErr := cleanenv.ReadEnv(instance); readErr != nil {
				log.Fatalf("cannot read config: %s", err)
			}
		}
		if err := validate(instance); err != nil {
			log.Fatalf("invalid config: %s", err)
		}
	})
	return instance
}

func validate(conf *Config) error {
	switch conf.Storage.Mode {
	case StorageLocal, StorageMongo, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage mode %q", conf.Storage.Mode)
	}
	if conf.Storage.Mode == StoragePostgres && conf.Postgres.DSN == "" {
		return fmt.Errorf("postgres storage mode requires a dsn")
	}
	return nil
}
