package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Email        EmailConfig        `mapstructure:"email"`
	Queue        QueueConfig        `mapstructure:"queue"`
	Subscription SubscriptionConfig `mapstructure:"subscription"`
	ECPay        ECPayConfig        `mapstructure:"ecpay"`
	OSS          OSSConfig          `mapstructure:"oss"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type QueueConfig struct {
	NotificationQueue string `mapstructure:"notification_queue"`
}

// SubscriptionConfig 訂閱方案參數
// 試用會員為終身額度（total），VIP 會員為每日額度（daily）
type SubscriptionConfig struct {
	TrialDays              int     `mapstructure:"trial_days"`
	TrialUploadQuota       int     `mapstructure:"trial_upload_quota"`
	TrialQueryQuota        int     `mapstructure:"trial_query_quota"`
	MonthlyPrice           float64 `mapstructure:"monthly_price"`
	VIPDurationDays        int     `mapstructure:"vip_duration_days"`
	VIPUploadDaily         int     `mapstructure:"vip_upload_daily"`
	VIPQueryDaily          int     `mapstructure:"vip_query_daily"`
	NotificationDaysBefore []int   `mapstructure:"notification_days_before"`
}

// ECPayConfig 綠界金流設定
type ECPayConfig struct {
	MerchantID    string `mapstructure:"merchant_id"`
	HashKey       string `mapstructure:"hash_key"`
	HashIV        string `mapstructure:"hash_iv"`
	TestMode      bool   `mapstructure:"test_mode"`
	ReturnURL     string `mapstructure:"return_url"`
	ClientBackURL string `mapstructure:"client_back_url"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

func Load(configPath string) (*Config, error) {
	// 優先讀取 config.local.yaml（包含真實金鑰，不提交到 git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 環境變數覆寫
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
