package config

import (
	"flag"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerCfg struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
	// PublicURL is this service's externally reachable base URL, used when
	// handing out same-origin links (QR proxy). Falls back to the checkout
	// host when empty.
	PublicURL string `mapstructure:"publicUrl"`
	// AdminToken guards operator endpoints; empty disables them.
	AdminToken string `mapstructure:"adminToken"`
}

type MysqlCfg struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Database     string `mapstructure:"database"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Charset      string `mapstructure:"charset"`
	MaxIdleConns int    `mapstructure:"maxIdleConns"`
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
}

type RedisCfg struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RabbitCfg struct {
	URL string `mapstructure:"url"`
}

type ProviderEndpointCfg struct {
	BaseURL string `mapstructure:"baseUrl"`
	// Platform-level secret; per-merchant secrets live on sub_merchant rows.
	Secret string `mapstructure:"secret"`
}

type ProvidersCfg struct {
	// Non-empty value forces every new transaction onto this provider,
	// overriding the partner's defaultProvider and the request channel.
	Force    string              `mapstructure:"force"`
	Hilogate ProviderEndpointCfg `mapstructure:"hilogate"`
	OY       ProviderEndpointCfg `mapstructure:"oy"`
	Gidi     ProviderEndpointCfg `mapstructure:"gidi"`
	TwoC2P   ProviderEndpointCfg `mapstructure:"2c2p"`
	// Per-call timeout for outbound gateway HTTP requests.
	TimeoutSec int `mapstructure:"timeoutSec"`
}

type CheckoutCfg struct {
	// Static checkout hostnames; orders are spread across them.
	Hosts []string `mapstructure:"hosts"`
}

type SettlementCfg struct {
	BatchSize     int `mapstructure:"batchSize"`
	Concurrency   int `mapstructure:"concurrency"`
	SweepMinutes  int `mapstructure:"sweepMinutes"`
	DailyHour     int `mapstructure:"dailyHour"` // Asia/Jakarta wall clock
	RetryAttempts int `mapstructure:"retryAttempts"`
}

type CallbackQueueCfg struct {
	DrainSeconds int `mapstructure:"drainSeconds"`
	BatchSize    int `mapstructure:"batchSize"`
	MaxAttempts  int `mapstructure:"maxAttempts"`
	TimeoutSec   int `mapstructure:"timeoutSec"`
}

type Root struct {
	Server        ServerCfg        `mapstructure:"server"`
	Mysql         MysqlCfg         `mapstructure:"mysql"`
	Redis         RedisCfg         `mapstructure:"redis"`
	RabbitMQ      RabbitCfg        `mapstructure:"rabbitmq"`
	Providers     ProvidersCfg     `mapstructure:"providers"`
	Checkout      CheckoutCfg      `mapstructure:"checkout"`
	Settlement    SettlementCfg    `mapstructure:"settlement"`
	CallbackQueue CallbackQueueCfg `mapstructure:"callback_queue"`
}

var C Root

func Init() {
	env := flag.String("env", "dev", "config env: dev|prod")
	flag.Parse()

	v := viper.New()
	v.SetConfigFile("config/config." + *env + ".yaml")
	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config file failed: %v", err)
	}
	if err := v.Unmarshal(&C); err != nil {
		log.Fatalf("unmarshal config failed: %v", err)
	}

	// sane defaults
	if strings.TrimSpace(C.Server.Port) == "" {
		C.Server.Port = "8080"
	}
	if C.Providers.TimeoutSec <= 0 {
		C.Providers.TimeoutSec = 15
	}
	if len(C.Checkout.Hosts) == 0 {
		C.Checkout.Hosts = []string{"https://checkout.launcx.com"}
	}
	if C.Settlement.BatchSize <= 0 {
		C.Settlement.BatchSize = 1000
	}
	if C.Settlement.Concurrency <= 0 {
		C.Settlement.Concurrency = 8
	}
	if C.Settlement.SweepMinutes <= 0 {
		C.Settlement.SweepMinutes = 60
	}
	if C.Settlement.DailyHour <= 0 {
		C.Settlement.DailyHour = 16
	}
	if C.Settlement.RetryAttempts <= 0 {
		C.Settlement.RetryAttempts = 3
	}
	if C.CallbackQueue.DrainSeconds <= 0 {
		C.CallbackQueue.DrainSeconds = 30
	}
	if C.CallbackQueue.BatchSize <= 0 {
		C.CallbackQueue.BatchSize = 50
	}
	if C.CallbackQueue.MaxAttempts <= 0 {
		C.CallbackQueue.MaxAttempts = 5
	}
	if C.CallbackQueue.TimeoutSec <= 0 {
		C.CallbackQueue.TimeoutSec = 8
	}
}

// ProviderTimeout is the per-call deadline for outbound gateway requests.
func ProviderTimeout() time.Duration {
	if C.Providers.TimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(C.Providers.TimeoutSec) * time.Second
}
