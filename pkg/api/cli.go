package api

import (
	"context"
	"time"

	"github.com/raildeck/raildeck/pkg/adapters/knowledge"
	"github.com/raildeck/raildeck/pkg/adapters/ldb"
	"github.com/raildeck/raildeck/pkg/aggregator"
	"github.com/raildeck/raildeck/pkg/config"
	"github.com/raildeck/raildeck/pkg/ratelimit"
	"github.com/raildeck/raildeck/pkg/realtime/movements"
	"github.com/raildeck/raildeck/pkg/redis_client"
	"github.com/raildeck/raildeck/pkg/sourcemanager"
	"github.com/raildeck/raildeck/pkg/stanox"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the core web API and the movement ingestion broker",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return err
					}

					// Redis is optional: without it the rate limiter and
					// result cache fall back to in-process state and the
					// movement consumer stays off.
					var redisClient *redis.Client
					if err := redis_client.Connect(); err != nil {
						log.Warn().Err(err).Msg("Redis unavailable, using in-process fallbacks")
					} else {
						redisClient = redis_client.Client
					}

					server, err := buildServer(c.Context, cfg, redisClient)
					if err != nil {
						return err
					}

					return server.Listen(c.String("listen"))
				},
			},
		},
	}
}

// buildServer is the composition root: it constructs and wires every
// service object explicitly.
func buildServer(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (*Server, error) {
	resolver := stanox.NewResolver(cfg.StanoxLookupEndpoint, cfg.StanoxOverridePath)
	go resolver.RunPersister(ctx, 0)

	manager := sourcemanager.NewManager(sourcemanager.Config{
		PrimarySource:      cfg.PrimarySource,
		FallbackEnabled:    cfg.FallbackEnabled,
		EnhancementEnabled: cfg.EnhancementEnabled,
	})

	manager.Register(ctx, ldb.NewAdapter(ldb.NewClient(cfg.LDBEndpoint, cfg.LDBAccessToken, 0)))
	manager.Register(ctx, knowledge.NewAdapter(knowledge.NewClient(cfg.KnowledgeEndpoint, cfg.KnowledgeAPIKey, 0)))

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	limiterWindow := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	server := &Server{
		Aggregator: aggregator.NewAggregator(manager, redisClient, cacheTTL),
		Manager:    manager,

		Events: movements.NewStationEventCache(cfg.RingCapacity),
		Hub:    movements.NewHub(),

		Limiter: ratelimit.NewLimiter(cfg.RateLimit, limiterWindow, redisClient),
	}

	if redis_client.QueueConnection != nil {
		broker := movements.NewConsumer(cfg.MovementQueue, resolver, server.Events, server.Hub)
		if err := broker.Start(redis_client.QueueConnection); err != nil {
			return nil, err
		}

		server.Broker = broker
	}

	return server, nil
}
