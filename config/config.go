package config

import (
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

/*
把init config跟read config分開
init : 需要設置viper watch 與 onConfigChange
read config : 一般讀寫  需要使用讀寫鎖
*/
var config_singleton *ConfigSingleTon
var muonce sync.Once

type ConfigSingleTon struct {
	Config *Config
	mu     sync.RWMutex
	hooks  []func(cf *Config)
}

type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	Env        string `mapstructure:"ENV"`

	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogFormat     string `mapstructure:"LOG_FORMAT"`
	LogKafkaTopic string `mapstructure:"LOG_KAFKA_TOPIC"`

	CommerceApiUrl       string        `mapstructure:"COMMERCE_API_URL"`
	CommerceApiTimeout   time.Duration `mapstructure:"COMMERCE_API_TIMEOUT"`
	CommerceProbeTimeout time.Duration `mapstructure:"COMMERCE_PROBE_TIMEOUT"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	StoreDriver   string `mapstructure:"STORE_DRIVER"`

	SoundEnabled          bool          `mapstructure:"SOUND_ENABLED"`
	CartMutationPolicy    string        `mapstructure:"CART_MUTATION_POLICY"`
	StockCheckConcurrency int           `mapstructure:"STOCK_CHECK_CONCURRENCY"`
	SessionLoadTimeout    time.Duration `mapstructure:"SESSION_LOAD_TIMEOUT"`

	KafkaBrokers []string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string   `mapstructure:"KAFKA_TOPIC"`
	KafkaGroup   string   `mapstructure:"KAFKA_GROUP"`

	OrderPollInterval time.Duration `mapstructure:"ORDER_POLL_INTERVAL"`

	RateLimitCapacity int           `mapstructure:"RATE_LIMIT_CAPACITY"`
	RateLimitRefill   time.Duration `mapstructure:"RATE_LIMIT_REFILL"`
}

// KafkaEnabled 沒有設定 broker 時不啟動事件 consumer
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.KafkaTopic != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_KAFKA_TOPIC", "")
	v.SetDefault("COMMERCE_API_URL", "http://localhost:3000/api")
	v.SetDefault("COMMERCE_API_TIMEOUT", 10*time.Second)
	v.SetDefault("COMMERCE_PROBE_TIMEOUT", 3*time.Second)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("STORE_DRIVER", "memory")
	v.SetDefault("SOUND_ENABLED", true)
	v.SetDefault("CART_MUTATION_POLICY", "last_write_wins")
	v.SetDefault("STOCK_CHECK_CONCURRENCY", 4)
	v.SetDefault("SESSION_LOAD_TIMEOUT", 2*time.Second)
	v.SetDefault("KAFKA_BROKERS", []string{})
	v.SetDefault("KAFKA_TOPIC", "")
	v.SetDefault("KAFKA_GROUP", "shopcore")
	v.SetDefault("ORDER_POLL_INTERVAL", 15*time.Second)
	v.SetDefault("RATE_LIMIT_CAPACITY", 100)
	v.SetDefault("RATE_LIMIT_REFILL", time.Second)
}

func GetConfig() *Config {
	initConfig()
	config_singleton.mu.RLock()
	defer config_singleton.mu.RUnlock()
	return config_singleton.Config
}

func initConfig() {
	muonce.Do(func() {
		config_singleton = &ConfigSingleTon{}
		path := os.Getenv("CONFIG_PATH")
		if path == "" {
			path = ".env"
		}

		v := viper.New()
		cf, fromFile, err := load(v, path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("error read config")
		}
		config_singleton.Config = cf

		if !fromFile {
			return
		}
		v.OnConfigChange(func(e fsnotify.Event) {
			cf := &Config{}
			if err := v.Unmarshal(cf); err != nil {
				log.Error().Err(err).Str("file", e.Name).Msg("failed to reload config file")
				return
			}
			swap(cf)
			log.Info().Str("file", e.Name).Msg("config reloaded")
		})
		v.WatchConfig()
	})
}

// OnChange 設定檔重新載入後呼叫 fn
func OnChange(fn func(cf *Config)) {
	initConfig()
	config_singleton.mu.Lock()
	defer config_singleton.mu.Unlock()
	config_singleton.hooks = append(config_singleton.hooks, fn)
}

// swap 替換目前設定並通知 OnChange 註冊的 hook
func swap(cf *Config) {
	config_singleton.mu.Lock()
	config_singleton.Config = cf
	hooks := make([]func(cf *Config), len(config_singleton.hooks))
	copy(hooks, config_singleton.hooks)
	config_singleton.mu.Unlock()

	for _, fn := range hooks {
		fn(cf)
	}
}

// LoadConfig 讀取指定的設定檔，檔案不存在時只使用環境變數與預設值
// 單純回傳錯誤  由外部決定要不要Fatal
func LoadConfig(path string) (*Config, error) {
	cf, _, err := load(viper.New(), path)
	return cf, err
}

// load fromFile 表示是否有讀到設定檔
func load(v *viper.Viper, path string) (cf *Config, fromFile bool, err error) {
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err = v.ReadInConfig(); err == nil {
			fromFile = true
		} else {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, false, err
			}
		}
	}

	cf = &Config{}
	if err = v.Unmarshal(cf); err != nil {
		return nil, false, err
	}
	return cf, fromFile, nil
}
