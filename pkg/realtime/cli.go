package realtime

import (
	"github.com/raildeck/raildeck/pkg/realtime/movements"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "realtime",
		Usage: "Realtime sources",
		Subcommands: []*cli.Command{
			movements.RegisterCLI(),
		},
	}
}
