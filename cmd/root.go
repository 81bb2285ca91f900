package cmd

import (
	"fmt"
	"os"

	"refdata-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "refdata-manager",
	Short: "Reference Data Manager Service",
	Long: `Reference Data Manager resolves vendor security and counterparty feeds
into canonical internal entities: validation, identity matching,
source-priority conflict resolution, and change-event emission.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Report through the standard logger in console format; debug level
		// gives readable ISO8601 timestamps for a CLI run.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
