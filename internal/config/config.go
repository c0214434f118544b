package config

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

/*
init 跟 read 分開
init : 設置 viper watch 與 onConfigChange
read : 一般讀取 需要使用讀寫鎖
*/
var configSingleton *ConfigSingleton
var initOnce sync.Once

type ConfigSingleton struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`
	ServerPort  string `mapstructure:"SERVER_PORT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	DbName         string        `mapstructure:"POSTGRES_DB"`
	DbHost         string        `mapstructure:"POSTGRES_HOST"`
	DbPort         string        `mapstructure:"POSTGRES_PORT"`
	DbUser         string        `mapstructure:"POSTGRES_USER"`
	DbPas          string        `mapstructure:"POSTGRES_PASSWORD"`
	DbSSLMode      string        `mapstructure:"POSTGRES_SSLMODE"`
	MigrateOnStart bool          `mapstructure:"MIGRATE_ON_START"`
	DbMaxConns     int32         `mapstructure:"POSTGRES_MAX_CONNS"`
	DbSlowQuery    time.Duration `mapstructure:"POSTGRES_SLOW_QUERY"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	KafkaBrokers       []string      `mapstructure:"KAFKA_BROKERS"`
	KafkaEventTopic    string        `mapstructure:"KAFKA_EVENT_TOPIC"`
	KafkaLogTopic      string        `mapstructure:"KAFKA_LOG_TOPIC"`
	KafkaBatchSize     int           `mapstructure:"KAFKA_BATCH_SIZE"`
	KafkaFlushInterval time.Duration `mapstructure:"KAFKA_FLUSH_INTERVAL"`
	KafkaRetryLimit    int           `mapstructure:"KAFKA_RETRY_LIMIT"`

	ElasticURL      string `mapstructure:"ELASTIC_URL"`
	ElasticUser     string `mapstructure:"ELASTIC_USER"`
	ElasticPassword string `mapstructure:"ELASTIC_PASSWORD"`
	ElasticLogIndex string `mapstructure:"ELASTIC_LOG_INDEX"`

	CatalogServiceURL  string        `mapstructure:"CATALOG_SERVICE_URL"`
	CartServiceURL     string        `mapstructure:"CART_SERVICE_URL"`
	IdentityServiceURL string        `mapstructure:"IDENTITY_SERVICE_URL"`
	UpstreamTimeout    time.Duration `mapstructure:"UPSTREAM_TIMEOUT"`

	AuthTokenKey    string        `mapstructure:"AUTH_TOKEN_KEY"`
	ServiceTokenTTL time.Duration `mapstructure:"SERVICE_TOKEN_TTL"`

	ProductCacheTTL time.Duration `mapstructure:"PRODUCT_CACHE_TTL"`
	ShippingFee     string        `mapstructure:"SHIPPING_FEE"`

	CheckoutLockTTL         time.Duration `mapstructure:"CHECKOUT_LOCK_TTL"`
	PlaceOrderRateCapacity  int           `mapstructure:"PLACE_ORDER_RATE_CAPACITY"`
	PlaceOrderRatePS        float64       `mapstructure:"PLACE_ORDER_RATE_PS"`
	LegacyPlacementResponse bool          `mapstructure:"LEGACY_PLACEMENT_RESPONSE"`

	RecoveryInterval  time.Duration `mapstructure:"RECOVERY_INTERVAL"`
	RecoveryGrace     time.Duration `mapstructure:"RECOVERY_GRACE"`
	RecoveryBatchSize int           `mapstructure:"RECOVERY_BATCH_SIZE"`

	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

// AutomaticEnv only feeds Unmarshal for keys viper already knows about,
// so every key needs a default here.
func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "storefront")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("POSTGRES_DB", "storefront")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("MIGRATE_ON_START", true)
	v.SetDefault("POSTGRES_MAX_CONNS", 10)
	v.SetDefault("POSTGRES_SLOW_QUERY", 200*time.Millisecond)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("KAFKA_BROKERS", []string{})
	v.SetDefault("KAFKA_EVENT_TOPIC", "storefront.checkout")
	v.SetDefault("KAFKA_LOG_TOPIC", "")
	v.SetDefault("KAFKA_BATCH_SIZE", 100)
	v.SetDefault("KAFKA_FLUSH_INTERVAL", time.Second)
	v.SetDefault("KAFKA_RETRY_LIMIT", 3)

	v.SetDefault("ELASTIC_URL", "")
	v.SetDefault("ELASTIC_USER", "")
	v.SetDefault("ELASTIC_PASSWORD", "")
	v.SetDefault("ELASTIC_LOG_INDEX", "storefront-logs")

	v.SetDefault("CATALOG_SERVICE_URL", "http://localhost:8081")
	v.SetDefault("CART_SERVICE_URL", "http://localhost:8082")
	v.SetDefault("IDENTITY_SERVICE_URL", "")
	v.SetDefault("UPSTREAM_TIMEOUT", 5*time.Second)

	v.SetDefault("AUTH_TOKEN_KEY", "")
	v.SetDefault("SERVICE_TOKEN_TTL", 15*time.Minute)

	v.SetDefault("PRODUCT_CACHE_TTL", time.Minute)
	v.SetDefault("SHIPPING_FEE", "200")

	v.SetDefault("CHECKOUT_LOCK_TTL", 2*time.Minute)
	v.SetDefault("PLACE_ORDER_RATE_CAPACITY", 5)
	v.SetDefault("PLACE_ORDER_RATE_PS", 1.0)
	v.SetDefault("LEGACY_PLACEMENT_RESPONSE", false)

	v.SetDefault("RECOVERY_INTERVAL", 30*time.Second)
	v.SetDefault("RECOVERY_GRACE", time.Minute)
	v.SetDefault("RECOVERY_BATCH_SIZE", 50)

	v.SetDefault("SHUTDOWN_TIMEOUT", 30*time.Second)
}

func GetConfig() *Config {
	initConfig()
	configSingleton.mu.RLock()
	defer configSingleton.mu.RUnlock()
	return configSingleton.Config
}

func initConfig() {
	initOnce.Do(func() {
		configSingleton = &ConfigSingleton{}
		v := viper.GetViper()
		path := os.Getenv("CONFIG_FILE")
		cf, err := LoadConfig(v, path)
		if err != nil {
			log.Fatalf("error read config: %v", err)
		}
		configSingleton.Config = cf

		if path == "" {
			return
		}
		v.OnConfigChange(func(e fsnotify.Event) {
			cf, err := LoadConfig(v, path)
			if err != nil {
				log.Printf("failed to reload config file %s: %v", e.Name, err)
				return
			}
			configSingleton.mu.Lock()
			configSingleton.Config = cf
			configSingleton.mu.Unlock()
		})
		v.WatchConfig()
	})
}

/*
單純回傳錯誤, 由外部決定要不要Fatal
path 為空時只讀環境變數
*/
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cf := &Config{}
	if err := v.Unmarshal(cf); err != nil {
		return nil, err
	}
	return cf, nil
}
