package main

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/OjusAnilNaik/To-do-List/todo-api/api"
	"github.com/OjusAnilNaik/To-do-List/todo-api/storage"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("read .env: %v", err)
	}
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}
	logger := log.StandardLogger()

	var store api.Storage = storage.NewMemory()
	connStr := os.Getenv("STORAGE_CONNECTION_STRING")
	if tasksTableName := os.Getenv("TASKS_TABLE"); connStr != "" && tasksTableName != "" {
		tables, err := storage.NewTables(connStr, tasksTableName)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		store = tables
		log.Infof("using table storage, table: %s", tasksTableName)
	} else {
		log.Info("using in-memory storage")
	}

	var deduper api.Deduper
	if redisConn := os.Getenv("REDIS_CONNECTION_STRING"); redisConn != "" {
		rc := redis.NewClient(redisOptions(redisConn))
		cacheTTL := durationEnv("TASKS_CACHE_TTL", 5*time.Minute)
		store = storage.NewCache(store, rc, cacheTTL)
		deduper = api.NewRedisDeduper(rc, durationEnv("DEDUPER_TTL", 24*time.Hour))
		log.Infof("redis enabled, cache ttl: %v", cacheTTL)
	}

	var events *api.EventSender
	if queueName := os.Getenv("TASK_EVENTS_QUEUE"); queueName != "" {
		if connStr == "" {
			log.Fatal("TASK_EVENTS_QUEUE requires STORAGE_CONNECTION_STRING")
		}
		publisher, err := storage.NewQueuePublisher(connStr, queueName)
		if err != nil {
			log.Fatalf("event queue: %v", err)
		}
		events = api.NewEventSender(publisher, logger, senderConfig())
		defer events.Close()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Idempotency-Key"},
	}))

	api.Register(e, store, newAuthenticator(), deduper, events, logger)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}
	if err := e.Start(listenAddr); err != nil {
		log.Errorf("server stopped: %v", err)
	}
}

func newAuthenticator() api.Authenticator {
	switch mode := strings.ToLower(os.Getenv("AUTH_MODE")); mode {
	case "", "none":
		log.Warn("authentication disabled, all requests act as user \"local\"")
		return api.SingleUser("local")
	case "hs256":
		secret := os.Getenv("LOCAL_AUTH_SHARED_SECRET")
		if secret == "" {
			log.Fatal("AUTH_MODE=hs256 requires LOCAL_AUTH_SHARED_SECRET")
		}
		return api.NewSharedSecretAuth([]byte(secret))
	case "auth0":
		jwtAudience := os.Getenv("AUTH0_AUDIENCE")
		domain := os.Getenv("AUTH0_DOMAIN")
		if jwtAudience == "" || domain == "" {
			log.Fatal("missing Auth0 config")
		}
		jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", domain)
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
		return api.NewAuth(jwks, jwtAudience, "https://"+domain+"/", durationEnv("JWKS_CACHE_TTL", api.DefaultJWKSCacheTTL))
	default:
		log.Fatalf("invalid AUTH_MODE: %q", mode)
	}
	return nil
}

// redisOptions accepts a redis:// URL or an Azure style
// "host:port,password=...,ssl=True" connection string.
func redisOptions(conn string) *redis.Options {
	opts, err := redis.ParseURL(conn)
	if err == nil {
		return opts
	}
	parts := strings.Split(conn, ",")
	opts = &redis.Options{Addr: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(kv[0]) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.ToLower(kv[1]) == "true" {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}

func senderConfig() api.SenderConfig {
	cfg := api.DefaultSenderConfig
	if v := os.Getenv("EVENT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Fatalf("invalid EVENT_WORKERS: %q", v)
		}
		cfg.Workers = n
	}
	if v := os.Getenv("EVENT_BUFFER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Fatalf("invalid EVENT_BUFFER: %q", v)
		}
		cfg.Buffer = n
	}
	cfg.Timeout = durationEnv("EVENT_PUBLISH_TIMEOUT", cfg.Timeout)
	return cfg
}

func durationEnv(name string, def time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Fatalf("invalid %s: %q", name, v)
	}
	return d
}
