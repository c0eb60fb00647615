package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/roomcast/roomcast/internal/db"
	"github.com/roomcast/roomcast/internal/presence"
	"github.com/roomcast/roomcast/internal/realtime"
	"github.com/roomcast/roomcast/internal/redis"
	"github.com/roomcast/roomcast/internal/resolver"
	"github.com/roomcast/roomcast/internal/schedule"
	syncpkg "github.com/roomcast/roomcast/internal/sync"
)

func main() {
	// .env is optional; real deployments set vars in the environment
	_ = godotenv.Load()

	env := LoadEnvironment()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if env.Environment == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	store := db.NewStore(db.DB)

	redisClient := redis.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)

	channel, err := realtime.NewMQTTChannel(env.MQTTBrokerURL, env.MQTTClientID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mqtt broker")
	}
	defer channel.Close()

	hub := realtime.NewHub()
	go hub.Run()

	displayPresence := presence.NewRedisPresence(redisClient)

	coord := syncpkg.NewCoordinator(store, channel, displayPresence, hub, syncpkg.Options{
		TickInterval:      env.TickInterval,
		HeartbeatInterval: env.HeartbeatInterval,
	})
	if err := coord.Load(); err != nil {
		log.Fatal().Err(err).Msg("failed to load sync groups")
	}
	router := syncpkg.NewRouter(coord)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go coord.RunConductorSweep(ctx)

	res := resolver.New(store, schedule.NewEvaluator())

	r := gin.Default()
	RegisterRoutes(r, env, store, coord, router, res, channel, hub)

	log.Info().Str("address", env.ServerAddress).Msg("starting server")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
