// Package app はサブコマンドの解析と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/taskman/internal/auth"
	"github.com/hitoshi/taskman/internal/config"
	"github.com/hitoshi/taskman/internal/database"
	"github.com/hitoshi/taskman/internal/handler"
	"github.com/hitoshi/taskman/internal/logger"
	"github.com/hitoshi/taskman/internal/metrics"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/task"
	"github.com/hitoshi/taskman/internal/token"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	dbConnectTimeout = 5 * time.Second
	shutdownTimeout  = 30 * time.Second
)

// Init はアプリケーションの初期化を行う。
// .envファイルと環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再構成する
	level, ok := logger.ParseLevel(cfg.LogLevel)
	logger.SetupDefault(w, level)
	if !ok {
		slog.Warn("unknown LOG_LEVEL, falling back to info", slog.String("log_level", cfg.LogLevel))
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, known := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8000"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if !known {
		slog.Warn("unknown command, falling back to serve", slog.String("command", args[0]))
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("store_driver", cfg.StoreDriver),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, nil)
}

// serve はストアを開き、全依存関係をワイヤリングしてHTTPサーバーを起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
// readyがnilでなければ、待ち受け開始後にリッスンアドレスを送る。
func serve(ctx context.Context, cfg *config.Config, ready chan<- net.Addr) error {
	// 1. ストアの初期化
	stores, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer stores.close()

	// 2. メトリクスの初期化
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	// 3. ドメインサービスの初期化
	codec := token.NewCodec(cfg.AuthSecret, token.WithTTL(cfg.TokenTTL))
	authService := auth.NewService(stores.users, codec, nil, collector)
	taskService := task.NewService(stores.tasks, collector)

	// 4. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		IdentityResolver:  auth.NewIdentityResolver(codec),
		HTTPMetrics:       collector,
		MetricsGatherer:   reg,
		Pinger:            stores.pinger,
		AuthService:       authService,
		TaskService:       taskService,
	})

	// 5. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", server.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if ready != nil {
		ready <- ln.Addr()
	}

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// stores はSTORE_DRIVERに応じて選択されたリポジトリ群。
type stores struct {
	users  repository.UserRepository
	tasks  repository.TaskRepository
	pinger repository.Pinger
	close  func()
}

// openStores はSTORE_DRIVERに応じたリポジトリを初期化する。
// postgresの場合は接続を確認し、AUTO_MIGRATEが有効ならマイグレーションを適用する。
func openStores(cfg *config.Config) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		slog.Warn("using in-memory store; data is lost on restart")
		taskRepo := repository.NewMemoryTaskRepo()
		return &stores{
			users:  repository.NewMemoryUserRepo(),
			tasks:  taskRepo,
			pinger: taskRepo,
			close:  func() {},
		}, nil
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.Ping(db, dbConnectTimeout); err != nil {
		db.Close()
		return nil, err
	}
	slog.Info("database connection established")

	if cfg.AutoMigrate {
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			db.Close()
			return nil, fmt.Errorf("auto migration failed: %w", err)
		}
		slog.Info("database schema is up to date")
	}

	return &stores{
		users:  repository.NewPostgresUserRepo(db),
		tasks:  repository.NewPostgresTaskRepo(db),
		pinger: db,
		close: func() {
			if err := db.Close(); err != nil {
				slog.Error("failed to close database", slog.String("error", err.Error()))
			}
		},
	}, nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return fmt.Errorf("migrate requires STORE_DRIVER=%s, got %q", config.StoreDriverPostgres, cfg.StoreDriver)
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := database.Version(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	slog.Info("database migrations completed successfully",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
