package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/lostfound-service/pkg/client"
)

const usage = `Usage: lostfound <command> [flags]

Commands:
  ping           check the API is reachable
  login          sign in and keep the session
  logout         revoke the token and clear the session
  whoami         show the signed-in user
  items          list items (filters: -q -type -status -category -location -page)
  search         search descriptions and locations
  report         report a lost or found item
  claim          claim a found item
  matches        list potential matches for an item
  stats          show item statistics
  notifications  list notifications (-read-all to mark them read)
`

type command func(ctx context.Context, env *env, args []string) error

var commands = map[string]command{
	"ping":          cmdPing,
	"login":         cmdLogin,
	"logout":        cmdLogout,
	"whoami":        cmdWhoami,
	"items":         cmdItems,
	"search":        cmdSearch,
	"report":        cmdReport,
	"claim":         cmdClaim,
	"matches":       cmdMatches,
	"stats":         cmdStats,
	"notifications": cmdNotifications,
}

// env is what every command runs against.
type env struct {
	client *client.Client
	auth   *client.Authenticator
	logger *zap.Logger
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n%s", os.Args[1], usage)
		os.Exit(1)
	}

	_ = godotenv.Load()

	logger := newLogger()
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, cleanup, err := newEnv(ctx, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := cmd(ctx, e, os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", describe(err))
		if errors.Is(err, client.ErrUnauthorized) {
			fmt.Fprintln(os.Stderr, "Session cleared. Run `lostfound login` to sign in again.")
		}
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	if os.Getenv("LOSTFOUND_DEBUG") == "" {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// newEnv builds the client and restores the saved session. The session
// lives in Redis when LOSTFOUND_REDIS_ADDR is set and in a local file
// otherwise.
func newEnv(ctx context.Context, logger *zap.Logger) (*env, func(), error) {
	baseURL := os.Getenv("LOSTFOUND_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	store, cleanup, err := sessionStore()
	if err != nil {
		return nil, nil, err
	}

	timeout := client.DefaultTimeout
	if raw := os.Getenv("LOSTFOUND_TIMEOUT"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("invalid LOSTFOUND_TIMEOUT: %w", err)
		}
		timeout = parsed
	}

	c, err := client.New(client.Config{BaseURL: baseURL, Timeout: timeout, Logger: logger}, store)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	a := client.NewAuthenticator(c)
	if err := a.Restore(ctx); err != nil {
		logger.Warn("restore session", zap.Error(err))
	}
	return &env{client: c, auth: a, logger: logger}, cleanup, nil
}

func sessionStore() (client.SessionStore, func(), error) {
	if addr := os.Getenv("LOSTFOUND_REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("LOSTFOUND_REDIS_PASSWORD"),
		})
		namespace := os.Getenv("LOSTFOUND_SESSION_NAMESPACE")
		if namespace == "" {
			namespace = "lostfound:cli:" + currentUser()
		}
		return client.NewRedisStore(rdb, namespace, 0), func() { _ = rdb.Close() }, nil
	}

	path := os.Getenv("LOSTFOUND_SESSION_FILE")
	if path == "" {
		p, err := client.DefaultSessionPath()
		if err != nil {
			return nil, nil, fmt.Errorf("resolve session path: %w", err)
		}
		path = p
	}
	return client.NewFileStore(path), func() {}, nil
}

func currentUser() string {
	for _, key := range []string{"USER", "USERNAME"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return "default"
}

// describe renders API errors with their field details.
func describe(err error) string {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	var b strings.Builder
	b.WriteString(apiErr.Message)
	if apiErr.Code != "" {
		fmt.Fprintf(&b, " (%s)", apiErr.Code)
	}
	for field, msg := range apiErr.Details {
		fmt.Fprintf(&b, "\n  %s: %v", field, msg)
	}
	return b.String()
}
