package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/go-playground/validator/v10"
	"github.com/czConstant/constant-pawn-protocol/base/ctx"
	"github.com/czConstant/constant-pawn-protocol/base/database/mongoclient"
	"github.com/czConstant/constant-pawn-protocol/base/database/redisclient"
	"github.com/czConstant/constant-pawn-protocol/base/log"
	"github.com/czConstant/constant-pawn-protocol/base/metrics"
	bValidator "github.com/czConstant/constant-pawn-protocol/base/validator"
	mmiddleware "github.com/czConstant/constant-pawn-protocol/middleware"
	escrow_service "github.com/czConstant/constant-pawn-protocol/service/escrow"
	"github.com/czConstant/constant-pawn-protocol/service/query"
	"github.com/czConstant/constant-pawn-protocol/service/redis"
	auth_delivery "github.com/czConstant/constant-pawn-protocol/stores/auth/delivery/http"
	auth_middleware "github.com/czConstant/constant-pawn-protocol/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/czConstant/constant-pawn-protocol/stores/auth/usecase"
	currency_delivery "github.com/czConstant/constant-pawn-protocol/stores/currency/delivery/http"
	currency_repository "github.com/czConstant/constant-pawn-protocol/stores/currency/repository"
	currency_usecase "github.com/czConstant/constant-pawn-protocol/stores/currency/usecase"
	hc_delivery "github.com/czConstant/constant-pawn-protocol/stores/healthcheck/delivery/http"
	hc_repo "github.com/czConstant/constant-pawn-protocol/stores/healthcheck/repository"
	hc_usecase "github.com/czConstant/constant-pawn-protocol/stores/healthcheck/usecase"
	pawn_delivery "github.com/czConstant/constant-pawn-protocol/stores/pawn/delivery/http"
	pawn_repository "github.com/czConstant/constant-pawn-protocol/stores/pawn/repository"
	pawn_usecase "github.com/czConstant/constant-pawn-protocol/stores/pawn/usecase"
)

var configFile = pflag.String("config", "infra/configs/config.yaml", "path of config file")

func init() {
	pflag.Parse()
	viper.SetConfigType("yaml")
	viper.SetConfigFile(*configFile)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// init mongo client
	context.Info("init mongo")
	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	checkIndex := viper.GetBool("mongo.checkIndex")
	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	q := query.New(mongoClient, checkIndex)

	// init Redis service
	context.Info("init redis cache")
	redisCacheName := viper.GetString("redis_cache.name")
	redisCacheURI := viper.GetString("redis_cache.uri")
	redisCachePwd := viper.GetString("redis_cache.password")
	redisCachePoolMultiplier := viper.GetFloat64("redis_cache.poolMultiplier")
	redisCachePool := redisclient.MustConnectRedis(redisCacheURI, redisCachePwd, redisclient.RedisParam{
		PoolMultiplier: redisCachePoolMultiplier,
		Retry:          true,
	})
	redisCache := redis.New(redisCacheName, metrics.New(redisCacheName), &redis.Pools{
		Src: redisCachePool,
	})

	mmiddleware.SetupCache(redisCache)

	// init escrow custody client
	escrowService := escrow_service.NewClient(&escrow_service.ClientCfg{
		HttpClient: http.Client{},
		BaseUrl:    viper.GetString("escrow.baseUrl"),
		Timeout:    viper.GetDuration("escrow.timeout"),
		ApiKey:     viper.GetString("escrow.apikey"),
	})

	// construct repository, usecase and delivery
	hcRepo := hc_repo.New(mongoClient, redisCache)
	saleRepo := pawn_repository.NewSaleRepo(q)
	currencyRepo := currency_repository.NewCurrencyRepo(q)

	hc := hc_usecase.New(hcRepo)
	auth := auth_usecase.New(viper.GetString("auth.jwtSecret"))
	currency := currency_usecase.New(currencyRepo)
	pawn := pawn_usecase.New(&pawn_usecase.PawnUseCaseCfg{
		SaleRepo:     saleRepo,
		CurrencyRepo: currencyRepo,
		Escrow:       escrowService,
		GracePeriod:  viper.GetDuration("pawn.gracePeriod"),
	})

	authMiddleware := auth_middleware.New(auth)
	escrowCallbackMiddleware := middL.ApiKeyAuth(viper.GetString("escrow.callbackApiKey"))

	hc_delivery.New(e, hc)
	auth_delivery.New(e, auth)
	currency_delivery.New(e, currency)
	pawn_delivery.New(e, pawn, authMiddleware.Auth(), escrowCallbackMiddleware)

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
