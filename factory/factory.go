package factory

import (
	"context"
	"database/sql"
	"rovify-backend/config"
	"rovify-backend/database"
	"rovify-backend/logger"
	"sync"

	firebase "firebase.google.com/go"
	"github.com/go-redis/redis"
	"github.com/spf13/viper"
	"google.golang.org/api/option"
)

// Factory hands out the process-wide connections, opening each one on first use.
type Factory interface {
	DB(ctx context.Context) *sql.DB
	Redis(ctx context.Context) *redis.Client
	FirebaseApp(ctx context.Context) *firebase.App
}

type factory struct {
	dbOnce    sync.Once
	redisOnce sync.Once
	appOnce   sync.Once

	db    *sql.DB
	redis *redis.Client
	app   *firebase.App
}

func NewFactory() Factory {
	return &factory{}
}

func (f *factory) DB(ctx context.Context) *sql.DB {
	f.dbOnce.Do(func() {
		db, err := database.Open(ctx, viper.GetString(config.DBURL), viper.GetInt(config.DBMaxOpenConns))
		if err != nil {
			logger.Fatalf(ctx, "db: could not establish connection to the DB: %+v", err)
		}
		f.db = db
	})
	return f.db
}

// Redis returns nil when no redis address is configured.
func (f *factory) Redis(ctx context.Context) *redis.Client {
	f.redisOnce.Do(func() {
		addr := viper.GetString(config.RedisAddress)
		if addr == "" {
			logger.Warnf(ctx, "redis: no address configured")
			return
		}
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: viper.GetString(config.RedisPassword),
			DB:       viper.GetInt(config.RedisDB),
		})
		if err := client.WithContext(ctx).Ping().Err(); err != nil {
			logger.Fatalf(ctx, "redis: could not connect to %s: %+v", addr, err)
		}
		f.redis = client
	})
	return f.redis
}

// FirebaseApp returns nil when no service account is configured.
func (f *factory) FirebaseApp(ctx context.Context) *firebase.App {
	f.appOnce.Do(func() {
		path := viper.GetString(config.FirebaseServiceAccountKeyPath)
		if path == "" {
			logger.Warnf(ctx, "firebaseApp: no service account configured")
			return
		}
		conf := &firebase.Config{ProjectID: viper.GetString(config.FirebaseProjectID)}
		app, err := firebase.NewApp(context.Background(), conf, option.WithCredentialsFile(path))
		if err != nil {
			logger.Fatalf(ctx, "firebaseApp: error initializing firebase app: %+v", err)
		}
		f.app = app
	})
	return f.app
}
