package container

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"wattle/downloader/internal/candidate"
	"wattle/downloader/internal/client"
	"wattle/downloader/internal/config"
	"wattle/downloader/internal/console"
	"wattle/downloader/internal/ledger"
	"wattle/downloader/internal/proxy"
	"wattle/downloader/internal/repository"
	"wattle/downloader/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	SessionID  string
	Client     client.CourseClient
	Ledger     ledger.Ledger
	Repository repository.AttemptRepository

	Service *service.Service
	Shell   *console.Shell

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config:    cfg,
		SessionID: uuid.NewString(),
	}

	proxySupplier, err := proxy.NewProxySupplier(ctx, cfg.Download.Proxies, cfg.Course.PageURL, cfg.Download.InsecureSkipVerify)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize proxy supplier: %w", err)
	}

	courseClient := client.NewCourseClient(cfg.Course, cfg.Download, proxySupplier)
	container.Client = courseClient

	if err := container.initLedger(ctx); err != nil {
		container.Close()
		return nil, err
	}

	if err := container.initRepository(ctx); err != nil {
		container.Close()
		return nil, err
	}

	container.Service = service.NewService(
		candidate.NewProvider(courseClient, cfg.Course.TypeFilters),
		courseClient,
		container.Ledger,
		container.Repository,
		container.SessionID,
		cfg.Download.DelayMinMs,
		cfg.Download.DelayMaxMs,
	)
	container.Shell = console.NewShell(container.Service, os.Stdout)

	log.Infof("✅ Session %s ready (ledger: %s)", container.SessionID, cfg.Ledger.Backend)
	return container, nil
}

func (c *Container) initLedger(ctx context.Context) error {
	if c.Config.Ledger.Backend != config.LedgerBackendRedis {
		c.Ledger = ledger.NewMemoryLedger()
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", c.Config.Redis.Host, c.Config.Redis.Port),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.Database,
	})
	c.redis = rdb

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("✅ Connected to Redis successfully")

	ttl := time.Duration(c.Config.Redis.SessionTTL) * time.Second
	c.Ledger = ledger.NewRedisLedger(rdb, c.SessionID, ttl)
	return nil
}

func (c *Container) initRepository(ctx context.Context) error {
	if !c.Config.Database.Enabled {
		c.Repository = repository.NewNoopAttemptRepository()
		return nil
	}

	db, err := pgxpool.New(ctx,
		fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.Config.Database.Host,
			c.Config.Database.Port,
			c.Config.Database.User,
			c.Config.Database.Password,
			c.Config.Database.Name,
		))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.db = db

	if err := repository.EnsureSchema(ctx, db); err != nil {
		return err
	}
	log.Info("✅ Attempt journal ready")

	c.Repository = repository.NewAttemptRepository(db)
	return nil
}

// Run executes args as a single command, or starts the interactive shell on
// in when args is empty
func (c *Container) Run(ctx context.Context, args []string, in io.Reader) error {
	if len(args) == 0 {
		return c.Shell.Run(ctx, in)
	}

	_, err := c.Shell.Execute(ctx, strings.Join(args, " "))
	return err
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.Ledger != nil {
		if err := c.Ledger.Close(); err != nil {
			log.Warnf("⚠️ Failed to clear ledger: %v", err)
		}
	}
	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		c.redis.Close()
	}

	log.Info("Container shut down successfully")
	return nil
}
