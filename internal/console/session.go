// Package console is the terminal client for browsing listings and toggling
// likes. It plays the role of the browser surfaces: one Session holds one
// listing cache and one preference profile.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"Apiverse/internal/apiclient"
	"Apiverse/internal/config"
	"Apiverse/internal/core/engagement"
	"Apiverse/internal/core/listingcache"
	"Apiverse/internal/core/preferences"
	"Apiverse/internal/db/redisstore"
	"Apiverse/internal/db/sqlite"
)

// DefaultProfileID is used when PROFILE_ID is not configured and the
// preference driver persists across runs
const DefaultProfileID = "default"

// Session wires the API client, cache and preference store for one profile
type Session struct {
	Controller *engagement.Controller
	Cache      *listingcache.Cache
	Profile    *preferences.Profile
	closers    []func() error
}

// Open builds a Session from client settings
func Open(ctx context.Context, cfg *config.ClientConfig, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{}

	store, err := s.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	profileID := cfg.ProfileID
	if profileID == "" {
		profileID = DefaultProfileID
		if cfg.PrefsDriver == config.PrefsDriverMemory {
			// nothing outlives the process, so each run is a fresh profile
			profileID = uuid.NewString()
		}
	}
	s.Profile = preferences.NewProfile(store, preferences.Scope{
		ProfileID: profileID,
		UserID:    cfg.UserID,
	})

	opts := []apiclient.Option{apiclient.WithTimeout(cfg.ToggleTimeout)}
	if cfg.APIToken != "" {
		opts = append(opts, apiclient.WithToken(cfg.APIToken))
	}
	client := apiclient.New(cfg.APIURL, opts...)

	s.Cache = listingcache.NewCache(engagement.NewSurfaceFetcher(client),
		listingcache.WithCapacity(cfg.CacheCapacity),
		listingcache.WithLogger(logger))

	s.Controller = engagement.NewController(s.Cache, s.Profile, client, engagement.Config{
		SignInURL: cfg.SignInURL,
		Timeout:   cfg.ToggleTimeout,
	}, logger)

	return s, nil
}

func (s *Session) openStore(ctx context.Context, cfg *config.ClientConfig) (preferences.Store, error) {
	switch cfg.PrefsDriver {
	case config.PrefsDriverSQLite:
		db, err := sqlite.Open(ctx, cfg.PrefsPath)
		if err != nil {
			return nil, err
		}
		repo := sqlite.NewPreferenceRepo(db)
		s.closers = append(s.closers, repo.Close)
		return repo, nil
	case config.PrefsDriverRedis:
		client, err := redisstore.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, client.Close)
		return redisstore.NewPreferenceRepo(client), nil
	case config.PrefsDriverMemory:
		return preferences.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown preference driver %q", cfg.PrefsDriver)
	}
}

// Close releases the preference store
func (s *Session) Close() error {
	var errs []error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
