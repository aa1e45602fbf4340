package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atelierhq/atelier/internal/accounting"
	"github.com/atelierhq/atelier/internal/app"
	"github.com/atelierhq/atelier/internal/comment"
	"github.com/atelierhq/atelier/internal/config"
	"github.com/atelierhq/atelier/internal/credential"
	"github.com/atelierhq/atelier/internal/feed"
	"github.com/atelierhq/atelier/internal/keys"
	"github.com/atelierhq/atelier/internal/library"
	"github.com/atelierhq/atelier/internal/linkmeta"
	"github.com/atelierhq/atelier/internal/moodboard"
	"github.com/atelierhq/atelier/internal/notify"
	"github.com/atelierhq/atelier/internal/objstore"
	"github.com/atelierhq/atelier/internal/session"
	"github.com/atelierhq/atelier/internal/store"
	"github.com/atelierhq/atelier/internal/task"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath(), "path to config file")
	flag.Parse()

	switch flag.Arg(0) {
	case "login":
		if err := login(flag.Arg(1), flag.Arg(2)); err != nil {
			fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Signed in.")
		return
	case "logout":
		if err := session.SignOut(session.Keyring{}); err != nil {
			fmt.Fprintf(os.Stderr, "logout failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Signed out.")
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// login stores the user's credentials in the system keyring.
func login(userID, token string) error {
	if userID == "" {
		return fmt.Errorf("usage: atelier login <user-id> [token]")
	}
	if err := credential.Set(credential.KeyUserID, userID); err != nil {
		return err
	}
	if token != "" {
		return credential.Set(credential.KeyToken, token)
	}
	return nil
}

func run(configPath string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	sess, err := session.Establish(ctx, session.Keyring{}, st)
	if err != nil {
		if errors.Is(err, session.ErrSignedOut) {
			return fmt.Errorf("not signed in; run: atelier login <user-id>")
		}
		return err
	}

	changeFeed, err := openFeed(ctx, cfg)
	if err != nil {
		return err
	}
	defer changeFeed.Close()

	events, err := changeFeed.Subscribe(ctx, feed.NotificationTopic(sess.UserID))
	if err != nil {
		return fmt.Errorf("subscribing to notification feed: %w", err)
	}

	dispatcher := notify.NewDispatcher(st, changeFeed)
	inbox := notify.NewInbox(st, sess.UserID)
	tasks := task.NewService(st, dispatcher)
	comments := comment.NewService(st, dispatcher, changeFeed)
	lib := library.NewService(st)
	accts := accounting.NewService(st)

	sweeper := task.NewSweeper(st, changeFeed, sess.UserID,
		time.Duration(cfg.ReminderIntervalMin)*time.Minute)

	boards, err := buildMoodboardService(cfg, st)
	if err != nil {
		return err
	}

	m := app.New(app.Deps{
		Store:      st,
		Session:    sess,
		Keys:       keys.DefaultKeyMap(),
		Tasks:      tasks,
		Comments:   comments,
		Library:    lib,
		Accounting: accts,
		Moodboards: boards,
		Inbox:      inbox,
		Sweeper:    sweeper,
		Events:     events,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// openStore connects to the hosted Postgres backend when configured and
// falls back to a local SQLite file otherwise.
func openStore(cfg *config.AppConfig) (*store.SQLStore, error) {
	if cfg.Backend.DatabaseURL != "" {
		return store.OpenPostgres(cfg.Backend.DatabaseURL)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}
	dataDir := filepath.Join(home, ".local", "share", "atelier")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return store.OpenSQLite(filepath.Join(dataDir, "atelier.db"))
}

// openFeed prefers the Redis push feed and degrades to polling when no
// Redis endpoint is configured or reachable.
func openFeed(ctx context.Context, cfg *config.AppConfig) (feed.ChangeFeed, error) {
	if cfg.Backend.RedisURL != "" {
		f, err := feed.NewRedisFeed(ctx, cfg.Backend.RedisURL)
		if err == nil {
			return f, nil
		}
		fmt.Fprintf(os.Stderr, "redis feed unavailable, falling back to polling: %v\n", err)
	}
	return feed.NewPollFeed(time.Duration(cfg.FeedPollIntervalSec) * time.Second), nil
}

// buildMoodboardService wires object storage and link metadata fetching.
// Without a storage endpoint, uploads are disabled but URL imports and
// browsing still work.
func buildMoodboardService(cfg *config.AppConfig, st store.Store) (*moodboard.Service, error) {
	fetcher := linkmeta.NewFetcher()

	var uploader moodboard.Uploader
	if cfg.Backend.StorageEndpoint != "" {
		client, err := objstore.New(
			cfg.Backend.StorageEndpoint,
			cfg.Backend.StorageAccessKey,
			cfg.Backend.StorageSecretKey,
			cfg.Backend.StorageUseSSL,
		)
		if err != nil {
			return nil, fmt.Errorf("connecting to object storage: %w", err)
		}
		uploader = client
	}

	return moodboard.NewService(st, uploader, fetcher, cfg.Backend.StorageBucket), nil
}
