package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/eclyon/internal/config"
	"github.com/YuminosukeSato/eclyon/pkg/errors"
	"github.com/YuminosukeSato/eclyon/pkg/log"
)

type rootFlags struct {
	configFile string
	logLevel   string
	console    bool
}

// newRootCmd はサブコマンドを登録したルートコマンドを作成する
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "eclyon",
		Short: "tabular preprocessing and tree ensemble interpretation",
		// errors are printed once by cobra; usage only on flag errors
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			// ログ設定は 設定ファイル < ECLYON_* 環境変数 < 明示したフラグ の順に優先する
			cfg, err := config.Read(flags.configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = flags.logLevel
			}
			if cmd.Flags().Changed("log-console") {
				cfg.LogConsole = flags.console
			}
			return log.SetupLoggerWithWriter(cfg.LogLevel, cmd.ErrOrStderr(), cfg.LogConsole)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "pipeline config file (YAML)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&flags.console, "log-console", false, "human readable log output")

	cmd.AddCommand(
		newProcessCmd(flags),
		newImportanceCmd(),
		newTreeCmd(),
	)
	return cmd
}

// Execute はルートコマンドを実行する
func Execute() error {
	return newRootCmd().Execute()
}

// absPath はコマンドラインで指定されたパスを絶対パスにする。空ならそのまま返す
// 利用者が明示した "../data.csv" のようなパスを CleanPath で拒否しないため
func absPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "resolve path %s", path)
	}
	return abs, nil
}
