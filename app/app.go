package app

import (
	"Gin_postgres_redis_invent_tool/db"
	"Gin_postgres_redis_invent_tool/notify"
	"Gin_postgres_redis_invent_tool/session"
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router   *gin.Engine
	DB       *gorm.DB
	RDB      *redis.Client
	Repo     *db.Repo
	Notifier notify.Notifier
	Config   Config

	appSess *session.AppSessionStore
	kafka   *notify.KafkaNotifier
}

// Config 从环境变量读取
type Config struct {
	RedisAddr     string
	RedisPwd      string
	WebOrigin     string
	SessionTTL    time.Duration
	KafkaBrokers  []string
	KafkaTopic    string
	BootstrapUser string // 首个 branch admin 的用户名
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }

func MustNew() *App {
	cfg := loadConfig()

	// --- DB: Postgres ---
	dbConn := db.ConnectDB()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	// --- 通知通道：有 broker 用 Kafka，没有就打日志 ---
	var notifier notify.Notifier = notify.LogNotifier{}
	var kn *notify.KafkaNotifier
	if len(cfg.KafkaBrokers) > 0 {
		kn = notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic, 256)
		notifier = kn
	}

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)
	a := &App{
		Router: r, DB: dbConn, RDB: rdb,
		Repo:     db.NewRepo(dbConn),
		Notifier: notifier,
		Config:   cfg,
		appSess:  session.NewAppSessionStore(rdb, cfg.SessionTTL),
		kafka:    kn,
	}
	return a
}

func (a *App) Close() {
	if a.kafka != nil {
		a.kafka.Close()
	}
	_ = a.RDB.Close()
}

func loadConfig() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}
	ttl := 24 * time.Hour
	if sec, err := strconv.Atoi(get("SESSION_TTL_SECONDS", "")); err == nil && sec > 0 {
		ttl = time.Duration(sec) * time.Second
	}
	var brokers []string
	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if t := strings.TrimSpace(b); t != "" {
			brokers = append(brokers, t)
		}
	}
	return Config{
		RedisAddr:     get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:      os.Getenv("REDIS_PASSWORD"),
		WebOrigin:     get("WEB_ORIGIN", "http://localhost:3000"),
		SessionTTL:    ttl,
		KafkaBrokers:  brokers,
		KafkaTopic:    get("KAFKA_TOPIC", "invent.request.events"),
		BootstrapUser: os.Getenv("BOOTSTRAP_ADMIN_USERNAME"),
	}
}
