package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/probagno/internal/cache"
	"github.com/kahvecikaan/probagno/internal/domain"
	"github.com/kahvecikaan/probagno/internal/repository"
)

// ErrInvalidSettings is returned when a settings document cannot be decoded
var ErrInvalidSettings = errors.New("invalid settings document")

func settingsKey(key string) cache.Key {
	return cache.Key{Bucket: cache.BucketSettings, ID: key}
}

// SettingsService reads and writes the keyed settings documents. A missing
// or unreadable document reads as its default.
type SettingsService struct {
	repo   repository.SettingsRepository
	cache  *cache.QueryCache
	logger hclog.Logger
}

func NewSettingsService(repo repository.SettingsRepository, queryCache *cache.QueryCache, logger hclog.Logger) *SettingsService {
	return &SettingsService{repo: repo, cache: queryCache, logger: logger}
}

func load[T any](ctx context.Context, s *SettingsService, key string, def T) T {
	value, err := cache.Load(ctx, s.cache, settingsKey(key), func(ctx context.Context) (T, error) {
		raw, ok, err := s.repo.GetSetting(ctx, key)
		if err != nil || !ok {
			return def, err
		}

		v := def
		if err := json.Unmarshal(raw, &v); err != nil {
			return def, fmt.Errorf("unable to decode %s settings: %w", key, err)
		}
		return v, nil
	})
	if err != nil {
		s.logger.Error("Unable to get settings, using defaults", "key", key, "error", err)
		return def
	}
	return value
}

func save[T any](ctx context.Context, s *SettingsService, key string, value T) error {
	s.logger.Debug("Saving settings", "key", key)

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("unable to encode %s settings: %w", key, err)
	}
	if err := s.repo.UpsertSetting(ctx, key, raw); err != nil {
		s.logger.Error("Unable to save settings", "key", key, "error", err)
		return domain.NewWriteError("save", domain.KindSettings, err)
	}

	s.cache.InvalidateKey(settingsKey(key))
	return nil
}

func (s *SettingsService) Store(ctx context.Context) domain.StoreSettings {
	return load(ctx, s, domain.SettingsStore, domain.DefaultStoreSettings())
}

func (s *SettingsService) Shipping(ctx context.Context) domain.ShippingSettings {
	return load(ctx, s, domain.SettingsShipping, domain.DefaultShippingSettings())
}

func (s *SettingsService) Notifications(ctx context.Context) domain.NotificationSettings {
	return load(ctx, s, domain.SettingsNotifications, domain.DefaultNotificationSettings())
}

func (s *SettingsService) SaveStore(ctx context.Context, v domain.StoreSettings) error {
	return save(ctx, s, domain.SettingsStore, v)
}

func (s *SettingsService) SaveShipping(ctx context.Context, v domain.ShippingSettings) error {
	return save(ctx, s, domain.SettingsShipping, v)
}

func (s *SettingsService) SaveNotifications(ctx context.Context, v domain.NotificationSettings) error {
	return save(ctx, s, domain.SettingsNotifications, v)
}

// Get returns the settings document stored under key
func (s *SettingsService) Get(ctx context.Context, key string) (any, error) {
	switch key {
	case domain.SettingsStore:
		return s.Store(ctx), nil
	case domain.SettingsShipping:
		return s.Shipping(ctx), nil
	case domain.SettingsNotifications:
		return s.Notifications(ctx), nil
	}
	return nil, domain.ErrUnknownSettingsKey
}

// Put decodes raw as the document type of key and saves it
func (s *SettingsService) Put(ctx context.Context, key string, raw json.RawMessage) (any, error) {
	switch key {
	case domain.SettingsStore:
		return decodeAndSave(ctx, raw, s.SaveStore)
	case domain.SettingsShipping:
		return decodeAndSave(ctx, raw, s.SaveShipping)
	case domain.SettingsNotifications:
		return decodeAndSave(ctx, raw, s.SaveNotifications)
	}
	return nil, domain.ErrUnknownSettingsKey
}

func decodeAndSave[T any](ctx context.Context, raw json.RawMessage, saveFn func(context.Context, T) error) (any, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := saveFn(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}
