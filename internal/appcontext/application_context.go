package appcontext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/RoyceAzure/lab/shopcore/config"
	"github.com/RoyceAzure/lab/shopcore/internal/api"
	"github.com/RoyceAzure/lab/shopcore/internal/api/handler"
	"github.com/RoyceAzure/lab/shopcore/internal/api/router"
	"github.com/RoyceAzure/lab/shopcore/internal/constants"
	"github.com/RoyceAzure/lab/shopcore/internal/domain/lifecycle"
	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/cache"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/consumer"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/poller"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/remote"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/repository"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/repository/memory_repo"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/logger"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/ratelimit"
	"github.com/RoyceAzure/lab/shopcore/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type ApplicationContext struct {
	Cf             *config.Config
	Logger         zerolog.Logger
	KafkaLogWriter *logger.KafkaWriter

	RedisClient      *redis.Client
	Cache            cache.Cache
	NotificationRepo repository.INotificationRepository
	SessionRepo      repository.ISessionRepository

	CommerceClient remote.ICommerceClient
	Lifecycle      *lifecycle.Lifecycle

	SessionService      service.ISessionService
	CartService         service.ICartService
	StockValidator      service.IStockValidator
	NotificationService service.INotificationService
	OrderService        *service.OrderService
	CheckoutService     service.ICheckoutService

	OrderPoller   *poller.OrderPoller
	EventConsumer *consumer.Consumer
	Limiter       ratelimit.ILimiter

	cancel context.CancelFunc
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	if cf == nil {
		return nil, errors.New("config cannot be nil")
	}
	app := ApplicationContext{
		Cf: cf,
	}

	err := app.Init()
	if err != nil {
		return nil, err
	}

	return &app, nil
}

func (app *ApplicationContext) Init() error {
	steps := []func() error{
		app.setUpLogger,
		app.setUpStore,
		app.setUpSessionService,
		app.setUpCommerceClient,
		app.setUpCartService,
		app.setUpStockValidator,
		app.setUpNotificationService,
		app.setUpOrderService,
		app.setUpCheckoutService,
		app.setUpOrderPoller,
		app.setUpEventConsumer,
		app.setUpLimiter,
		app.setUpSessionHooks,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (app *ApplicationContext) setUpLogger() error {
	var extra []io.Writer
	if app.Cf.LogKafkaTopic != "" && len(app.Cf.KafkaBrokers) > 0 {
		app.KafkaLogWriter = logger.NewKafkaWriter(app.Cf.KafkaBrokers, app.Cf.LogKafkaTopic)
		extra = append(extra, app.KafkaLogWriter)
	}

	cfg := logger.Config{Level: app.Cf.LogLevel, Format: app.Cf.LogFormat, Service: "shopcore"}
	logger.Setup(cfg, extra...)
	app.Logger = logger.New(cfg, os.Stdout, extra...)
	log.Info().Str("env", app.Cf.Env).Bool("kafka_log", app.KafkaLogWriter != nil).Msg("Finish setup logger")
	return nil
}

func (app *ApplicationContext) setUpStore() error {
	log.Info().Str("driver", app.Cf.StoreDriver).Msg("Start setup store")
	if !constants.IsValidStoreDriver(app.Cf.StoreDriver) {
		return fmt.Errorf("invalid STORE_DRIVER %q", app.Cf.StoreDriver)
	}

	if constants.StoreDriver(app.Cf.StoreDriver) == constants.StoreDriverMemory {
		app.NotificationRepo = memory_repo.NewNotificationRepo()
		app.SessionRepo = memory_repo.NewSessionRepo()
		log.Info().Msg("Finish setup store")
		return nil
	}

	app.RedisClient = cache.GetRedisClient(app.Cf.RedisAddr,
		cache.WithPassword(app.Cf.RedisPassword),
		cache.WithDB(app.Cf.RedisDB),
	)
	app.Cache = cache.NewRedisCache(app.RedisClient, "shopcore")

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := app.Cache.Ping(ctx); err != nil {
		// 槽位只是快取，連不上仍可啟動
		log.Warn().Err(err).Str("addr", app.Cf.RedisAddr).Msg("redis not reachable")
	}

	app.NotificationRepo = redis_repo.NewNotificationRepo(app.Cache)
	app.SessionRepo = redis_repo.NewSessionRepo(app.Cache)
	log.Info().Msg("Finish setup store")
	return nil
}

func (app *ApplicationContext) setUpSessionService() error {
	log.Info().Msg("Start setup session service")
	sessionService := service.NewSessionService(app.SessionRepo, app.Cf.SessionLoadTimeout)
	identity := sessionService.Load(context.Background())
	app.SessionService = sessionService
	log.Info().Str("user_id", identity.UserID).Bool("buyer", identity.IsBuyer()).Msg("Finish setup session service")
	return nil
}

func (app *ApplicationContext) setUpCommerceClient() error {
	log.Info().Str("url", app.Cf.CommerceApiUrl).Msg("Start setup commerce client")
	client, err := remote.NewCommerceClient(app.Cf.CommerceApiUrl, app.SessionService,
		remote.WithTimeout(app.Cf.CommerceApiTimeout),
		remote.WithProbeTimeout(app.Cf.CommerceProbeTimeout),
	)
	if err != nil {
		return err
	}
	app.CommerceClient = client
	log.Info().Msg("Finish setup commerce client")
	return nil
}

func (app *ApplicationContext) setUpCartService() error {
	log.Info().Msg("Start setup cart service")
	policy, err := service.ParseMutationPolicy(app.Cf.CartMutationPolicy)
	if err != nil {
		return err
	}
	app.CartService = service.NewCartService(app.CommerceClient, app.SessionService, policy)
	log.Info().Str("policy", string(policy)).Msg("Finish setup cart service")
	return nil
}

func (app *ApplicationContext) setUpStockValidator() error {
	log.Info().Msg("Start setup stock validator")
	app.StockValidator = service.NewStockValidator(app.CommerceClient, app.Cf.StockCheckConcurrency)
	log.Info().Msg("Finish setup stock validator")
	return nil
}

func (app *ApplicationContext) setUpNotificationService() error {
	log.Info().Msg("Start setup notification service")
	app.Lifecycle = lifecycle.New(nil)

	var chime service.Chime = service.NopChime{}
	if app.Cf.SoundEnabled {
		chime = service.NewBellChime(os.Stdout)
	}

	notificationService := service.NewNotificationService(app.NotificationRepo, app.SessionService,
		service.WithChime(chime),
		service.WithLifecycle(app.Lifecycle),
	)
	notificationService.Load(context.Background())
	app.NotificationService = notificationService
	log.Info().Int("unread", notificationService.UnreadCount()).Msg("Finish setup notification service")
	return nil
}

func (app *ApplicationContext) setUpOrderService() error {
	log.Info().Msg("Start setup order service")
	app.OrderService = service.NewOrderService(app.CommerceClient, app.SessionService, app.CartService, app.NotificationService, app.Lifecycle)
	log.Info().Msg("Finish setup order service")
	return nil
}

func (app *ApplicationContext) setUpCheckoutService() error {
	log.Info().Msg("Start setup checkout service")
	app.CheckoutService = service.NewCheckoutService(app.CartService, app.StockValidator, app.OrderService)
	log.Info().Msg("Finish setup checkout service")
	return nil
}

func (app *ApplicationContext) setUpOrderPoller() error {
	log.Info().Msg("Start setup order poller")
	app.OrderPoller = poller.NewOrderPoller(app.CommerceClient, app.NotificationService, app.Cf.OrderPollInterval)
	app.OrderService.SetTracker(app.OrderPoller)
	log.Info().Dur("interval", app.Cf.OrderPollInterval).Msg("Finish setup order poller")
	return nil
}

func (app *ApplicationContext) setUpEventConsumer() error {
	if !app.Cf.KafkaEnabled() {
		log.Info().Msg("Skip setup event consumer, kafka not configured")
		return nil
	}
	log.Info().Strs("brokers", app.Cf.KafkaBrokers).Str("topic", app.Cf.KafkaTopic).Msg("Start setup event consumer")
	reader := consumer.NewKafkaReader(app.Cf.KafkaBrokers, app.Cf.KafkaTopic, app.Cf.KafkaGroup)
	app.EventConsumer = consumer.NewConsumer(reader, consumer.NewNotificationProcesser(app.NotificationService), nil)
	log.Info().Msg("Finish setup event consumer")
	return nil
}

func (app *ApplicationContext) setUpLimiter() error {
	log.Info().Msg("Start setup rate limiter")
	cfg := ratelimit.Config{
		Capacity:   app.Cf.RateLimitCapacity,
		RatePS:     float64(app.Cf.RateLimitCapacity) / app.Cf.RateLimitRefill.Seconds(),
		RefillRate: app.Cf.RateLimitRefill,
	}
	if app.Cf.RateLimitRefill <= 0 {
		cfg.RatePS = 0
	}

	if app.RedisClient != nil {
		app.Limiter = ratelimit.NewRedisBucket(app.RedisClient, cfg)
	} else {
		app.Limiter = ratelimit.NewTokenBucket(cfg)
	}
	log.Info().Msg("Finish setup rate limiter")
	return nil
}

// setUpSessionHooks 登入時載入該使用者的通知與購物車，登出時清除所有使用者資料
func (app *ApplicationContext) setUpSessionHooks() error {
	app.SessionService.OnSignIn(func(ctx context.Context, identity model.SessionIdentity) {
		app.NotificationService.Load(ctx)
		if !identity.IsBuyer() {
			return
		}
		if _, err := app.CartService.FetchCart(ctx); err != nil {
			log.Warn().Err(err).Str("user_id", identity.UserID).Msg("fetch cart after sign in failed")
		}
	})
	app.SessionService.OnSignOut(func(ctx context.Context) {
		app.CheckoutService.Close()
		app.CartService.ResetCart()
		app.NotificationService.Reset()
		app.OrderPoller.Reset()
	})
	return nil
}

// Start 啟動背景工作 (訂單輪詢、事件 consumer)
func (app *ApplicationContext) Start(ctx context.Context) error {
	ctx, app.cancel = context.WithCancel(ctx)
	if identity := app.SessionService.Identity(); identity.IsBuyer() {
		if _, err := app.CartService.FetchCart(ctx); err != nil {
			log.Warn().Err(err).Str("user_id", identity.UserID).Msg("fetch cart on start failed")
		}
	}
	if err := app.OrderPoller.Start(ctx); err != nil {
		return err
	}
	if app.EventConsumer != nil {
		app.EventConsumer.Start()
	}
	return nil
}

// Handler 建立 API 路由
func (app *ApplicationContext) Handler() http.Handler {
	server := api.NewServer(
		handler.NewSessionHandler(app.SessionService),
		handler.NewCartHandler(app.CartService),
		handler.NewCheckoutHandler(app.CheckoutService),
		handler.NewOrderHandler(app.OrderService),
		handler.NewNotificationHandler(app.NotificationService),
		handler.NewHealthHandler(app.CommerceClient),
	)
	r := router.SetupRouter(server, app.SessionService, app.Limiter, &app.Logger)
	if err := router.PrintRoutes(r, &app.Logger); err != nil {
		log.Warn().Err(err).Msg("walk routes failed")
	}
	return r
}

func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	log.Info().Msg("Start application shutdown")

	timeout := 10 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	var errs []error
	if app.cancel != nil {
		app.cancel()
	}
	if app.EventConsumer != nil {
		log.Info().Msg("Stopping event consumer...")
		if err := app.EventConsumer.Stop(timeout); err != nil {
			//有錯誤不結束流程
			errs = append(errs, err)
		}
	}
	if app.OrderPoller != nil {
		log.Info().Msg("Stopping order poller...")
		if err := app.OrderPoller.Stop(timeout); err != nil {
			errs = append(errs, err)
		}
	}
	if app.CheckoutService != nil {
		app.CheckoutService.Close()
	}
	if app.CartService != nil {
		app.CartService.Close()
	}
	if bucket, ok := app.Limiter.(*ratelimit.TokenBucket); ok {
		bucket.Stop()
	}
	if app.RedisClient != nil {
		log.Info().Msg("Closing redis client...")
		if err := cache.CloseRedisClient(app.Cf.RedisAddr); err != nil {
			errs = append(errs, err)
		}
	}
	if app.KafkaLogWriter != nil {
		if err := app.KafkaLogWriter.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		log.Error().Err(err).Msg("application shutdown with errors")
		return err
	}
	log.Info().Msg("Finish application shutdown")
	return nil
}
