package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/xcview/internal/bucket"
	"github.com/mmcdole/xcview/internal/catalog"
	"github.com/mmcdole/xcview/internal/config"
	"github.com/mmcdole/xcview/internal/domain"
	"github.com/mmcdole/xcview/internal/log"
	"github.com/mmcdole/xcview/internal/profile"
	"github.com/mmcdole/xcview/internal/search"
	"github.com/mmcdole/xcview/internal/store"
	"github.com/mmcdole/xcview/internal/stream"
	"github.com/mmcdole/xcview/internal/visibility"
	"github.com/mmcdole/xcview/internal/xtream"
	"github.com/prometheus/client_golang/prometheus"
)

// app wires the services used by the commands
type app struct {
	cfg    *config.Config
	opts   options
	logger *slog.Logger
	out    io.Writer

	store      *store.Store
	profiles   *profile.Service
	active     domain.ProfileProvider
	directory  *xtream.Directory
	catalog    *catalog.Cache
	resolver   *catalog.Resolver
	search     *search.Service
	bucket     *bucket.Manager
	visibility *visibility.Manager
	registry   *prometheus.Registry
}

// fixedProfile pins the active profile for one invocation
type fixedProfile string

func (p fixedProfile) Current() string { return string(p) }

func newApp(cfg *config.Config, opts options, logger *slog.Logger) (*app, error) {
	st, err := store.Open(cfg.StoreDir())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	timeout := time.Duration(cfg.Store.TimeoutSec) * time.Second
	accounts := make(map[string]xtream.Account, len(cfg.Profiles))
	for _, p := range cfg.Profiles {
		accounts[p.Name] = accountFor(p, timeout)
	}

	profiles := profile.NewService(st, cfg.ProfileNames(), cfg.DefaultProfile, log.Component(logger, "profile"))
	var active domain.ProfileProvider = profiles
	if opts.profile != "" {
		if !slices.Contains(cfg.ProfileNames(), opts.profile) {
			st.Close()
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProfile, opts.profile)
		}
		active = fixedProfile(opts.profile)
	}

	registry := prometheus.NewRegistry()
	directory := xtream.NewDirectory(accounts, log.Component(logger, "xtream"))
	cache := catalog.NewCache(directory, active, catalog.NewMetrics(registry), log.Component(logger, "catalog"))

	return &app{
		cfg:        cfg,
		opts:       opts,
		logger:     logger,
		out:        os.Stdout,
		store:      st,
		profiles:   profiles,
		active:     active,
		directory:  directory,
		catalog:    cache,
		resolver:   catalog.NewResolver(directory, active, log.Component(logger, "catalog")),
		search:     search.NewService(cache, cfg.Search.ChunkSize, log.Component(logger, "search")),
		bucket:     bucket.NewManager(st, log.Component(logger, "bucket")),
		visibility: visibility.NewManager(st, log.Component(logger, "visibility")),
		registry:   registry,
	}, nil
}

func accountFor(p config.ProfileConfig, timeout time.Duration) xtream.Account {
	return xtream.Account{
		BaseURL:   p.URL,
		Username:  p.Username,
		Password:  p.Password,
		UserAgent: p.UserAgent,
		Timeout:   timeout,
	}
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close store", "error", err)
	}
}

// profile returns the profile the command runs under
func (a *app) profile() string {
	return a.active.Current()
}

// builder returns the stream URL builder of the active profile
func (a *app) builder() (stream.Builder, error) {
	acct, err := a.directory.Account(a.profile())
	if err != nil {
		return stream.Builder{}, err
	}
	return stream.Builder{BaseURL: acct.BaseURL, Username: acct.Username, Password: acct.Password}, nil
}

// printStats writes the non-zero catalog counters
func (a *app) printStats() {
	families, err := a.registry.Gather()
	if err != nil {
		a.logger.Error("failed to gather metrics", "error", err)
		return
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			value := m.GetCounter().GetValue()
			if value == 0 {
				continue
			}
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), value))
		}
	}
	sort.Strings(lines)

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, render(DimStyle, "cache stats"))
	for _, line := range lines {
		fmt.Fprintln(a.out, render(DimStyle, "  "+line))
	}
}
