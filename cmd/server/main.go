package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"railway/pkg/broker"
	"railway/pkg/cache"
	"railway/pkg/config"
	"railway/pkg/database"
	"railway/pkg/handlers"
	"railway/pkg/hub"
	"railway/pkg/media"
	"railway/pkg/middleware"
	"railway/pkg/policy"
	"railway/pkg/repository"
	"railway/pkg/server"
	"railway/pkg/services"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("[RAILWAY] config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[RAILWAY] database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("[RAILWAY] migrate: %v", err)
	}

	stop := make(chan struct{})
	go database.CleanExpiredSessions(db, time.Hour, stop)

	// Redis backs the read cache and the cross-instance event bus. Without it
	// reads go to Postgres and the hub delivers events to local watchers only.
	var readCache services.Cache = services.NopCache{}
	wsHub := hub.New()
	var events services.Publisher = wsHub

	log.Println("[RAILWAY] Connecting to Redis...")
	if rc, err := cache.New(cfg.RedisURL); err != nil {
		log.Printf("[RAILWAY] cache disabled: %v", err)
	} else {
		defer rc.Close()
		readCache = rc
	}
	if b, err := broker.New(cfg.RedisURL); err != nil {
		log.Printf("[RAILWAY] broker disabled: %v", err)
	} else {
		defer b.Close()
		wsHub.Listen(b)
		events = b
	}

	engine, err := policy.New(context.Background())
	if err != nil {
		log.Fatalf("[RAILWAY] policy: %v", err)
	}

	stationRepo := repository.NewStationRepository(db)
	routeRepo := repository.NewRouteRepository(db)
	trainTypeRepo := repository.NewTrainTypeRepository(db)
	trainRepo := repository.NewTrainRepository(db)
	journeyRepo := repository.NewJourneyRepository(db)

	images := media.NewStore(cfg.Media.Root, cfg.Media.Prefix)
	auth := services.NewAuthService(repository.NewAuthRepository(db), cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	journeys := services.NewJourneyService(journeyRepo, routeRepo, trainRepo)

	app := server.NewApp(server.Options{
		Name:         cfg.Name,
		CORSOrigins:  cfg.CORSOrigins,
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Static(cfg.Media.Prefix, images.Root())
	app.Use(middleware.Identify(auth))
	app.Use(middleware.Throttle(cfg.Throttle.AnonPerMinute, cfg.Throttle.UserPerMinute))

	handlers.Register(app, handlers.Set{
		Stations:   handlers.NewStation(services.NewStationService(stationRepo, readCache, cfg.Cache.TTL), engine),
		Routes:     handlers.NewRoute(services.NewRouteService(routeRepo, stationRepo, readCache, cfg.Cache.TTL), engine),
		Crew:       handlers.NewCrew(services.NewCrewService(repository.NewCrewRepository(db)), engine),
		TrainTypes: handlers.NewTrainType(services.NewTrainTypeService(trainTypeRepo), engine),
		Trains:     handlers.NewTrain(services.NewTrainService(trainRepo, trainTypeRepo, images), engine),
		Journeys:   handlers.NewJourney(journeys, engine),
		Orders:     handlers.NewOrder(services.NewOrderService(repository.NewOrderRepository(db), journeyRepo, events), engine),
		Auth:       handlers.NewAuth(auth, engine, cfg.Auth.RefreshTTL, cfg.Production),
		Live:       handlers.NewLive(wsHub, journeys, auth),
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("[RAILWAY] Shutting down...")
		close(stop)
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("[RAILWAY] shutdown: %v", err)
		}
	}()

	log.Printf("[RAILWAY] WebSocket: ws://<host>/ws/journeys/:id")
	log.Printf("[RAILWAY] Server starting on %s", cfg.ListenAddr())

	if err := app.Listen(cfg.ListenAddr()); err != nil {
		log.Fatalf("[RAILWAY] Failed to start: %v", err)
	}
}
