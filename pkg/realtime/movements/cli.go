package movements

import (
	"github.com/raildeck/raildeck/pkg/config"
	"github.com/raildeck/raildeck/pkg/raildata"
	"github.com/raildeck/raildeck/pkg/redis_client"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "movements",
		Usage: "Bridge the train movement push feed into the movement queue",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run an instance of the movement feed bridge",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return err
					}

					if cfg.StompAddress == "" || cfg.StompTopic == "" {
						return raildata.NewError(raildata.CodeConfigurationMissing, "movement feed connection details are not configured", nil)
					}

					if err := redis_client.Connect(); err != nil {
						return err
					}

					log.Info().Str("topic", cfg.StompTopic).Msg("Starting movement feed bridge")

					bridge := &FeedBridge{
						Address:   cfg.StompAddress,
						Username:  cfg.StompUsername,
						Password:  cfg.StompPassword,
						Topic:     cfg.StompTopic,
						ClientID:  cfg.StompClientID,
						QueueName: cfg.MovementQueue,
					}
					bridge.Run(redis_client.QueueConnection)

					return nil
				},
			},
		},
	}
}
