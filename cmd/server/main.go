package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/palemoky/draw-and-guess/internal/config"
	"github.com/palemoky/draw-and-guess/internal/logger"
	"github.com/palemoky/draw-and-guess/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	shutdownTimeout := flag.Duration("shutdown-timeout", 60*time.Second, "关闭前等待对局结束的最长时间")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warnf("加载配置文件失败，使用默认配置: %v", err)
		cfg = config.Default()
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		logger.Warnf("初始化日志失败，沿用默认日志: %v", err)
	}
	defer logger.Sync()

	// 创建服务器
	srv, err := server.NewServer(cfg)
	if err != nil {
		logger.Errorf("创建服务器失败: %v", err)
		os.Exit(1)
	}

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-quit
		logger.Infof("正在关闭服务器...")
		srv.GracefulShutdown(*shutdownTimeout)
	}()

	// 启动服务器，关闭后 Start 返回
	logger.Infof("🎨 你画我猜服务器启动中...")
	if err := srv.Start(); err != nil {
		logger.Errorf("服务器启动失败: %v", err)
		os.Exit(1)
	}
	<-done
}
