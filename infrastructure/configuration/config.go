package configuration

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"dev-pulse/infrastructure/logger"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	Queue       Queue       `json:"queue"`
	Scheduler   Scheduler   `json:"scheduler"`
	Leaderboard Leaderboard `json:"leaderboard"`
	Platforms   Platforms   `json:"platforms"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	Vault       Vault       `json:"vault"`
}

type App struct {
	Port      int    `json:"port"`
	SecretKey string `json:"secretKey"`
}

type Database struct {
	Psql  Db `json:"psql"`
	Mssql Db `json:"mssql"`
	Mongo Db `json:"mongo"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Queue parameterizes the durable job queue.
type Queue struct {
	MaxAttempts     int           `json:"maxAttempts"`
	BackoffBase     time.Duration `json:"backoffBase"`
	BackoffCap      time.Duration `json:"backoffCap"`
	DedupBucket     time.Duration `json:"dedupBucket"`
	RetentionCount  int           `json:"retentionCount"`
	WorkerPoolSize  int           `json:"workerPoolSize"`
	DequeueWait     time.Duration `json:"dequeueWait"`
	PromoteInterval time.Duration `json:"promoteInterval"`
}

type Scheduler struct {
	// DefaultCron is the recurring refresh spec used when a connection
	// does not carry its own.
	DefaultCron string `json:"defaultCron"`
}

type Leaderboard struct {
	CacheTTL     time.Duration `json:"cacheTTL"`
	CandidateCap int           `json:"candidateCap"`
}

// Platforms carries per-platform API settings for the adapters.
type Platforms struct {
	GitHub         PlatformAPI `json:"github"`
	LeetCode       PlatformAPI `json:"leetcode"`
	Codeforces     PlatformAPI `json:"codeforces"`
	GoogleCalendar GoogleAPI   `json:"googleCalendar"`
	Trello         PlatformAPI `json:"trello"`
}

type PlatformAPI struct {
	BaseURL string        `json:"baseUrl"`
	APIKey  string        `json:"apiKey"`
	Timeout time.Duration `json:"timeout"`
}

type GoogleAPI struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	CalendarID   string `json:"calendarId"`
}

type Pubsub struct {
	ProjectID string `json:"projectId"`
	Topic     string `json:"topic"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

type Vault struct {
	// Key is the hex-encoded AES key for the credential vault.
	Key string `json:"key"`
}

var C Config

func init() {
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initDefaults(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	if C.Database.Psql.Name == "" {
		C.Database.Psql.Name = os.Getenv("DB_NAME")
	}
	if C.Database.Psql.Host == "" {
		C.Database.Psql.Host = os.Getenv("DB_HOST")
	}
	if C.Database.Psql.User == "" {
		C.Database.Psql.User = os.Getenv("DB_USER")
	}
	if C.Database.Psql.Password == "" {
		C.Database.Psql.Password = os.Getenv("DB_PASSWORD")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = os.Getenv("DB_PORT")
	}

	// Optional MSSQL config for production.
	if C.Database.Mssql.Host == "" {
		C.Database.Mssql.Host = os.Getenv("MSSQL_HOST")
	}
	if C.Database.Mssql.Name == "" {
		C.Database.Mssql.Name = os.Getenv("MSSQL_NAME")
	}
	if C.Database.Mssql.User == "" {
		C.Database.Mssql.User = os.Getenv("MSSQL_USER")
	}
	if C.Database.Mssql.Password == "" {
		C.Database.Mssql.Password = os.Getenv("MSSQL_PASSWORD")
	}

	if C.RedisClient.Host == "" {
		C.RedisClient.Host = os.Getenv("REDIS_HOST")
	}
	if C.RedisClient.Port == "" {
		C.RedisClient.Port = os.Getenv("REDIS_PORT")
	}
	if C.RedisClient.Password == "" {
		C.RedisClient.Password = os.Getenv("REDIS_PASSWORD")
	}
}

func initApp(C *Config) {
	if C.App.Port == 0 {
		if p, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
			C.App.Port = p
		} else {
			C.App.Port = 8080
		}
	}
	if C.App.SecretKey == "" {
		C.App.SecretKey = os.Getenv("SECRET_KEY")
	}
	if C.Vault.Key == "" {
		C.Vault.Key = os.Getenv("VAULT_KEY")
	}
}

func initDefaults(C *Config) {
	if C.Queue.MaxAttempts == 0 {
		C.Queue.MaxAttempts = 3
	}
	if C.Queue.BackoffBase == 0 {
		C.Queue.BackoffBase = 30 * time.Second
	}
	if C.Queue.BackoffCap == 0 {
		C.Queue.BackoffCap = time.Hour
	}
	if C.Queue.DedupBucket == 0 {
		C.Queue.DedupBucket = 5 * time.Minute
	}
	if C.Queue.RetentionCount == 0 {
		C.Queue.RetentionCount = 500
	}
	if C.Queue.WorkerPoolSize == 0 {
		C.Queue.WorkerPoolSize = 4
	}
	if C.Queue.DequeueWait == 0 {
		C.Queue.DequeueWait = 5 * time.Second
	}
	if C.Queue.PromoteInterval == 0 {
		C.Queue.PromoteInterval = 15 * time.Second
	}
	if C.Scheduler.DefaultCron == "" {
		C.Scheduler.DefaultCron = "*/30 * * * *"
	}
	if C.Leaderboard.CacheTTL == 0 {
		C.Leaderboard.CacheTTL = time.Hour
	}
	if C.Leaderboard.CandidateCap == 0 {
		C.Leaderboard.CandidateCap = 1000
	}
}
