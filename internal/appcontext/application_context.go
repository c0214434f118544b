package appcontext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/infra/cache"
	"github.com/RoyceAzure/lab/storefront/internal/infra/client"
	"github.com/RoyceAzure/lab/storefront/internal/infra/limiter"
	"github.com/RoyceAzure/lab/storefront/internal/infra/lock"
	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/logger"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/token"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/service/placement"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const producerCloseWait = 5 * time.Second

// ApplicationContext owns every process-wide handle of one service. The
// common infrastructure is built by NewApplicationContext, each service then
// wires its own part with SetUpCatalog, SetUpCart or SetUpOrder.
type ApplicationContext struct {
	Cf     *config.Config
	Schema db.Schema
	Logger *zerolog.Logger

	DbConn *pgxpool.Pool
	Gorm   *gorm.DB
	DbDao  *db.DbDao
	Redis  *redis.Client

	// nil when AUTH_TOKEN_KEY is empty
	TokenMaker    token.Maker
	serviceTokens *token.ServiceTokenSource

	logProducer   *producer.AsyncProducer
	logElastic    *logger.ElasticWriter
	eventProducer *producer.AsyncProducer

	CatalogService service.ICatalogService
	CartService    service.ICartService
	OrderService   service.IOrderService
	Orchestrator   *placement.Orchestrator
	Recoverer      *placement.Recoverer
	PlaceOrderRate *limiter.TokenBucket

	background []func(ctx context.Context)
}

func NewApplicationContext(cf *config.Config, schema db.Schema) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf:     cf,
		Schema: schema,
	}
	if err := app.Init(); err != nil {
		app.closeInfra()
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"logger", app.setUpLogger},
		{"database connection", app.setUpDbConn},
		{"database migration", app.setUpMigration},
		{"database DAO", app.setUpDbDao},
		{"redis", app.setUpRedis},
		{"token maker", app.setUpTokenMaker},
	}
	for _, step := range steps {
		if app.Logger != nil {
			app.Logger.Info().Msgf("Start setup %s", step.name)
		}
		if err := step.fn(); err != nil {
			return fmt.Errorf("setup %s: %w", step.name, err)
		}
		app.Logger.Info().Msgf("Finish setup %s", step.name)
	}
	return nil
}

func (app *ApplicationContext) serviceName() string {
	if app.Cf.ServiceName != "" {
		return app.Cf.ServiceName
	}
	return string(app.Schema)
}

// setUpLogger 先建 stdout logger, 有設 kafka log topic 或 ELASTIC_URL 時再 tee 出去.
// log producer 自己只用 stdout logger, 避免回送自己的錯誤.
func (app *ApplicationContext) setUpLogger() error {
	base := logger.New(app.serviceName(), app.Cf.LogLevel)
	app.Logger = &base

	var extra []io.Writer
	if app.Cf.KafkaLogTopic != "" && len(app.Cf.KafkaBrokers) > 0 {
		cfg := app.producerConfig(app.Cf.KafkaLogTopic)
		p, err := producer.NewAsyncProducer(producer.NewKafkaWriter(cfg), cfg, &base)
		if err != nil {
			return err
		}
		p.Start()
		app.logProducer = p
		extra = append(extra, logger.NewKafkaWriter(p))
	}

	if app.Cf.ElasticURL != "" {
		w, err := logger.NewElasticWriter(context.Background(), logger.ElasticConfig{
			URL:      app.Cf.ElasticURL,
			Username: app.Cf.ElasticUser,
			Password: app.Cf.ElasticPassword,
			Index:    app.Cf.ElasticLogIndex,
		})
		if err != nil {
			return err
		}
		app.logElastic = w
		extra = append(extra, w)
	}

	if len(extra) == 0 {
		return nil
	}
	tee := logger.New(app.serviceName(), app.Cf.LogLevel, extra...)
	app.Logger = &tee
	return nil
}

func (app *ApplicationContext) producerConfig(topic string) producer.Config {
	return producer.Config{
		Brokers:       app.Cf.KafkaBrokers,
		Topic:         topic,
		BatchSize:     app.Cf.KafkaBatchSize,
		FlushInterval: app.Cf.KafkaFlushInterval,
		RetryLimit:    app.Cf.KafkaRetryLimit,
	}
}

func (app *ApplicationContext) dsn() string {
	return db.DSN(app.Cf.DbUser, app.Cf.DbPas, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbName, app.Cf.DbSSLMode)
}

func (app *ApplicationContext) setUpDbConn() error {
	pool, err := db.NewPgxPool(context.Background(), app.dsn(), app.Cf.DbMaxConns)
	if err != nil {
		return err
	}
	app.DbConn = pool
	return nil
}

func (app *ApplicationContext) setUpMigration() error {
	if !app.Cf.MigrateOnStart {
		app.Logger.Info().Msg("migration on start disabled")
		return nil
	}
	return db.RunDBMigration(app.Schema, app.dsn())
}

func (app *ApplicationContext) setUpDbDao() error {
	conn, err := db.GetDbConn(app.DbConn, app.Logger, app.Cf.DbSlowQuery)
	if err != nil {
		return err
	}
	app.Gorm = conn
	app.DbDao = db.NewDbDao(conn)
	return nil
}

// setUpRedis is optional here, services that need redis check app.Redis.
func (app *ApplicationContext) setUpRedis() error {
	if app.Cf.RedisAddr == "" {
		app.Logger.Warn().Msg("REDIS_ADDR not set, redis disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     app.Cf.RedisAddr,
		Password: app.Cf.RedisPassword,
		DB:       app.Cf.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return err
	}
	app.Redis = rdb
	return nil
}

func (app *ApplicationContext) setUpTokenMaker() error {
	if app.Cf.AuthTokenKey == "" {
		app.Logger.Warn().Msg("AUTH_TOKEN_KEY not set, authentication disabled")
		return nil
	}
	maker, err := token.NewPasetoMaker(app.Cf.AuthTokenKey)
	if err != nil {
		return err
	}
	app.TokenMaker = maker
	app.serviceTokens = token.NewServiceTokenSource(maker, app.Cf.ServiceTokenTTL)
	return nil
}

// upstreamOptions 呼叫其他服務時帶上 service token, 對方的內部路由只收 service token
func (app *ApplicationContext) upstreamOptions() []client.Option {
	opts := []client.Option{client.WithTimeout(app.Cf.UpstreamTimeout)}
	if app.serviceTokens != nil {
		opts = append(opts, client.WithTokenSource(app.serviceTokens))
	}
	return opts
}

func (app *ApplicationContext) SetUpCatalog() error {
	var productCache *cache.ProductCache
	if app.Redis != nil {
		productCache = cache.NewProductCache(app.Redis, app.serviceName(), app.Cf.ProductCacheTTL, app.Logger)
	}
	app.CatalogService = service.NewCatalogService(db.NewProductRepo(app.DbDao), productCache, app.Logger)
	return nil
}

func (app *ApplicationContext) SetUpCart() error {
	fee, err := decimal.NewFromString(app.Cf.ShippingFee)
	if err != nil {
		return fmt.Errorf("invalid SHIPPING_FEE %q: %w", app.Cf.ShippingFee, err)
	}
	catalog := client.NewCatalogClient(app.Cf.CatalogServiceURL, app.upstreamOptions()...)
	app.CartService = service.NewCartService(db.NewCartRepo(app.DbDao), catalog, fee, app.Logger)
	return nil
}

func (app *ApplicationContext) SetUpOrder() error {
	if app.Redis == nil {
		return errors.New("order service requires REDIS_ADDR for the checkout lock")
	}

	catalog := client.NewCatalogClient(app.Cf.CatalogServiceURL, app.upstreamOptions()...)
	cart := client.NewCartClient(app.Cf.CartServiceURL, app.upstreamOptions()...)
	identity := client.NewIdentityClient(app.Cf.IdentityServiceURL, app.upstreamOptions()...)
	checkouts := db.NewCheckoutRepo(app.DbDao)

	var events placement.EventPublisher = producer.NopPublisher{}
	if len(app.Cf.KafkaBrokers) > 0 && app.Cf.KafkaEventTopic != "" {
		cfg := app.producerConfig(app.Cf.KafkaEventTopic)
		p, err := producer.NewAsyncProducer(producer.NewKafkaWriter(cfg), cfg, app.Logger,
			producer.WithFailureHandler(func(pe producer.ProducerError) {
				app.Logger.Error().Err(pe.Err).Str("key", string(pe.Message.Key)).Msg("checkout event dropped")
			}))
		if err != nil {
			return err
		}
		p.Start()
		app.eventProducer = p
		events = producer.NewCheckoutEventPublisher(p)
	} else {
		app.Logger.Warn().Msg("kafka not configured, checkout events disabled")
	}

	locker := lock.NewRedisLocker(app.Redis, "checkout:lock", app.Cf.CheckoutLockTTL)
	app.Orchestrator = placement.NewOrchestrator(checkouts, catalog, cart, locker, events, app.Logger)
	app.OrderService = service.NewOrderService(db.NewOrderRepo(app.DbDao), checkouts, catalog, identity, app.Logger)
	app.PlaceOrderRate = limiter.NewTokenBucket(app.Redis, limiter.Config{
		Capacity: app.Cf.PlaceOrderRateCapacity,
		RatePS:   app.Cf.PlaceOrderRatePS,
		Prefix:   "place-order",
	})

	app.Recoverer = placement.NewRecoverer(app.Orchestrator, placement.RecoveryConfig{
		Interval:  app.Cf.RecoveryInterval,
		Grace:     app.Cf.RecoveryGrace,
		BatchSize: app.Cf.RecoveryBatchSize,
	})
	app.background = append(app.background, app.Recoverer.Run)
	return nil
}

func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	app.Logger.Info().Msg("Start application shutdown")

	done := make(chan struct{})
	go func() {
		defer close(done)
		app.closeInfra()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}
}

// closeInfra closes whatever was opened, in reverse order. The log sinks go
// last so shutdown logs still reach kafka and elasticsearch.
func (app *ApplicationContext) closeInfra() {
	if app.eventProducer != nil {
		if err := app.eventProducer.Close(producerCloseWait); err != nil {
			app.Logger.Error().Err(err).Msg("event producer close error")
		}
	}
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			app.Logger.Error().Err(err).Msg("redis close error")
		}
	}
	if app.Gorm != nil {
		if sqlDB, err := app.Gorm.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if app.DbConn != nil {
		app.DbConn.Close()
	}
	if app.Logger != nil {
		app.Logger.Info().Msg("Application shutdown complete")
	}
	if app.logProducer != nil {
		app.logProducer.Close(producerCloseWait)
	}
	if app.logElastic != nil {
		app.logElastic.Close()
	}
}
