package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/redis/go-redis/v9"

	"github.com/educonnect/educonnect-web/config"
	"github.com/educonnect/educonnect-web/internal/migrate"
)

// redisTopology is how the Redis device store reaches its servers.
type redisTopology string

const (
	redisStandalone redisTopology = "standalone"
	redisSentinel   redisTopology = "sentinel"
	redisCluster    redisTopology = "cluster"
)

const (
	connectTimeout = 5 * time.Second

	// Device storage issues one short statement per request, so the pool stays small.
	pgMaxOpenConns    = 10
	pgMaxIdleConns    = 5
	pgConnMaxLifetime = 5 * time.Minute

	pgApplicationName = "educonnect-web"
)

// ConnectPostgres opens the database behind the postgres storage backend and checks
// that it answers.
func ConnectPostgres(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", postgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(pgMaxOpenConns)
	db.SetMaxIdleConns(pgMaxIdleConns)
	db.SetConnMaxLifetime(pgConnMaxLifetime)

	if err = pingOrClose(ctx, db.PingContext, db); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.InfoContext(ctx, "device storage database connected",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Name,
	)
	return db, nil
}

// postgresDSN renders cfg as a URL so credentials with reserved characters survive.
func postgresDSN(cfg config.DBConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	q := url.Values{"application_name": {pgApplicationName}}
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ConnectRedis builds the client for the configured topology and checks that it answers.
//
//nolint:ireturn // the topology decides between *redis.Client and *redis.ClusterClient.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	topology, opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := newRedisClient(topology, opts)
	ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
	if err = pingOrClose(ctx, ping, client); err != nil {
		return nil, fmt.Errorf("ping redis %s: %w", topology, err)
	}

	// Addrs never carry credentials; redis.ParseURL splits them out.
	logger.InfoContext(ctx, "device storage redis connected",
		"topology", string(topology),
		"addrs", opts.Addrs,
		"master", opts.MasterName,
	)
	return client, nil
}

// redisOptions picks the topology from cfg and collects its connection settings.
// Cluster wins over sentinel when both are enabled.
func redisOptions(cfg config.RedisConfig) (redisTopology, *redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{Password: cfg.Password}

	switch {
	case cfg.UseCluster:
		opts.Addrs = trimAddrs(cfg.ClusterNodes)
		if len(opts.Addrs) == 0 {
			// One seed node is enough; the client discovers the rest of the cluster.
			if err := applyRedisURI(opts, cfg.URI); err != nil {
				return "", nil, err
			}
		}
		if len(opts.Addrs) == 0 {
			return "", nil, errors.New("redis cluster: set REDIS_CLUSTER_NODES or REDIS_URI")
		}
		if opts.DB != 0 {
			return "", nil, fmt.Errorf("redis cluster: database %d requested, only 0 is supported", opts.DB)
		}
		return redisCluster, opts, nil

	case cfg.UseSentinel:
		opts.Addrs = trimAddrs(cfg.SentinelNodes)
		if len(opts.Addrs) == 0 {
			return "", nil, errors.New("redis sentinel: set REDIS_SENTINEL_NODES")
		}
		opts.MasterName = strings.TrimSpace(cfg.SentinelMasterName)
		if opts.MasterName == "" {
			return "", nil, errors.New("redis sentinel: set REDIS_SENTINEL_MASTER_NAME")
		}
		opts.SentinelPassword = cfg.SentinelPassword
		return redisSentinel, opts, nil

	default:
		if err := applyRedisURI(opts, cfg.URI); err != nil {
			return "", nil, err
		}
		if len(opts.Addrs) == 0 {
			return "", nil, errors.New("redis: set REDIS_URI")
		}
		return redisStandalone, opts, nil
	}
}

// applyRedisURI accepts a bare host:port or a redis:// / rediss:// URL. A password in
// the URL takes precedence over REDIS_PASSWORD.
func applyRedisURI(opts *redis.UniversalOptions, uri string) error {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil
	}
	if !strings.Contains(uri, "://") {
		opts.Addrs = []string{uri}
		return nil
	}

	parsed, err := redis.ParseURL(uri)
	if err != nil {
		return fmt.Errorf("parse redis uri: %w", err)
	}
	opts.Addrs = []string{parsed.Addr}
	opts.Username = parsed.Username
	if parsed.Password != "" {
		opts.Password = parsed.Password
	}
	opts.DB = parsed.DB
	opts.TLSConfig = parsed.TLSConfig
	return nil
}

//nolint:ireturn // see ConnectRedis.
func newRedisClient(topology redisTopology, opts *redis.UniversalOptions) redis.UniversalClient {
	switch topology {
	case redisCluster:
		return redis.NewClusterClient(opts.Cluster())
	case redisSentinel:
		return redis.NewFailoverClient(opts.Failover())
	default:
		return redis.NewClient(opts.Simple())
	}
}

func trimAddrs(raw []string) []string {
	addrs := make([]string, 0, len(raw))
	for _, a := range raw {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return addrs
}

// pingOrClose bounds ping by connectTimeout and releases c when it fails.
func pingOrClose(ctx context.Context, ping func(context.Context) error, c io.Closer) error {
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := ping(pingCtx); err != nil {
		if closeErr := c.Close(); closeErr != nil {
			return errors.Join(err, fmt.Errorf("close: %w", closeErr))
		}
		return err
	}
	return nil
}

// RunMigrations creates or upgrades the device_storage schema.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := migrate.RunWithLogger(ctx, db, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.InfoContext(ctx, "database migrations completed")
	return nil
}
