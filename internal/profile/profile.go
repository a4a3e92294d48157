package profile

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/mmcdole/xcview/internal/domain"
	"github.com/mmcdole/xcview/internal/store"
)

// SettingsStore persists the active profile selection
type SettingsStore interface {
	GetGlobal(key string) (string, error)
	SetGlobal(key, value string) error
}

// Service tracks the active viewer profile. It implements domain.ProfileProvider.
type Service struct {
	settings SettingsStore
	known    []string
	fallback string
	logger   *slog.Logger
}

// NewService creates a profile service. known lists the configured profile
// names; fallback is used until a profile has been selected.
func NewService(settings SettingsStore, known []string, fallback string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if fallback == "" && len(known) > 0 {
		fallback = known[0]
	}
	return &Service{settings: settings, known: known, fallback: fallback, logger: logger}
}

// Current returns the active profile. A storage failure is logged and the
// fallback profile is used.
func (s *Service) Current() string {
	name, err := s.settings.GetGlobal(store.SettingActiveProfile)
	if err != nil {
		s.logger.Warn("failed to read active profile", "error", err)
		return s.fallback
	}
	if name == "" {
		return s.fallback
	}
	return name
}

// Switch makes name the active profile
func (s *Service) Switch(name string) error {
	if len(s.known) > 0 && !slices.Contains(s.known, name) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownProfile, name)
	}
	if err := s.settings.SetGlobal(store.SettingActiveProfile, name); err != nil {
		s.logger.Error("failed to save active profile", "error", err, "profile", name)
		return err
	}
	s.logger.Info("switched profile", "profile", name)
	return nil
}

// Known returns the configured profile names
func (s *Service) Known() []string {
	return slices.Clone(s.known)
}
