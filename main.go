package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"undercover-be/internal/api/http"
	"undercover-be/internal/config"
	"undercover-be/internal/logger"
	"undercover-be/internal/state"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "undercover",
		Short:         "谁是卧底多人派对游戏服务端",
		Args:          cobra.NoArgs,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// 加载配置
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}

			// 初始化日志器
			syncLogger, err := logger.InitLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer syncLogger()

			// 组装应用状态
			appState := state.NewAppState(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// 启动服务器
			if err := http.RunServer(ctx, appState); err != nil {
				zap.L().Error("服务异常退出", zap.Error(err))
				return err
			}

			zap.L().Info("服务已退出")
			return nil
		},
	}

	config.BindFlags(cmd.Flags())

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetVersionTemplate("undercover {{.Version}}\n")

	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
