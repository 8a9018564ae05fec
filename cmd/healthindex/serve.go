package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"healthindex/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Seed the taxonomy if needed and run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("Starting healthindex service")

	// 创建服务
	svc, err := service.NewHealthIndexService(cfg, log)
	if err != nil {
		log.Error("Failed to create healthindex service", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// 监听系统信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// 启动服务（在 goroutine 中）
	errChan := make(chan error, 1)
	go func() {
		errChan <- svc.Start(ctx)
	}()

	var runErr error
	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errChan:
		// 种子失败等启动故障
		if err != nil {
			log.Error("Service error", zap.Error(err))
			runErr = err
		}
	}
	cancel()

	if err := svc.Stop(ctx); err != nil {
		log.Error("Error stopping service", zap.Error(err))
	}

	log.Info("Service stopped")
	if runErr != nil {
		return fmt.Errorf("service failed: %w", runErr)
	}
	return nil
}
