package command

import (
	commandHandler "academy/internal/command/handler"
	client "academy/internal/database/client"

	"github.com/google/wire"
	"github.com/spf13/cobra"
)

var ProviderSet = wire.NewSet(
	NewCommand,
	commandHandler.NewIndexHandler,
	wire.Bind(new(commandHandler.IndexSyncer), new(*client.MongoClient)),
	wire.Bind(new(commandHandler.ReportForwarder), new(*client.EventForwarder)),
)

type Command struct {
	indexCommandHandler *commandHandler.IndexHandler
}

// NewCommand .
func NewCommand(
	indexCommandHandler *commandHandler.IndexHandler,
) *Command {
	return &Command{
		indexCommandHandler: indexCommandHandler,
	}
}

func Register(rootCmd *cobra.Command, newCmd func() (*Command, func(), error)) {
	indexesCmd := &cobra.Command{
		Use:   "indexes",
		Short: "manage the MongoDB secondary indexes",
	}
	indexesCmd.AddCommand(
		&cobra.Command{
			Use:   "plan",
			Short: "print the index table without connecting",
			Run: func(cmd *cobra.Command, args []string) {
				command, cleanup, err := newCmd()
				if err != nil {
					panic(err)
				}
				defer cleanup()

				command.indexCommandHandler.Plan(cmd, args)
			},
		},
		&cobra.Command{
			Use:          "sync",
			Short:        "connect, create every index once, then exit",
			SilenceUsage: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				command, cleanup, err := newCmd()
				if err != nil {
					return err
				}
				defer cleanup()

				return command.indexCommandHandler.Sync(cmd, args)
			},
		},
	)
	rootCmd.AddCommand(indexesCmd)
}
