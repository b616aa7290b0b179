package repository

import (
	"context"
	"errors"
	"time"

	"AlgoReport/internal/domain/models"
	domrepo "AlgoReport/internal/domain/repository"
	"AlgoReport/pkg/cache"
	applogger "AlgoReport/pkg/logger"
)

// CachedProvider serves repeated fetches of the same spec from cache until ttl expires.
// Cache failures degrade to a direct fetch; errors are never cached.
type CachedProvider struct {
	next  domrepo.BarProvider
	cache cache.Service
	ttl   time.Duration
	l     *applogger.Logger
}

var _ domrepo.BarProvider = (*CachedProvider)(nil)

func NewCachedProvider(next domrepo.BarProvider, c cache.Service, ttl time.Duration, l *applogger.Logger) *CachedProvider {
	if l == nil {
		l = applogger.Nop()
	}
	return &CachedProvider{next: next, cache: c, ttl: ttl, l: l}
}

func (p *CachedProvider) Fetch(ctx context.Context, spec models.FetchSpec) (models.BarSeries, error) {
	key := cache.GenerateKeyWithParams("bars", cache.HashKey(spec.CacheKey()))

	var dtos []models.BarDTO
	err := p.cache.Get(ctx, key, &dtos)
	switch {
	case err == nil:
		if series, derr := models.BarSeriesFromDTOs(dtos); derr == nil {
			p.l.Debug("bar cache hit", applogger.String("symbol", spec.Symbol.String()))
			return series, nil
		}
	case !errors.Is(err, cache.ErrCacheMiss):
		p.l.Warn("bar cache read failed", applogger.String("symbol", spec.Symbol.String()), applogger.Error(err))
	}

	series, err := p.next.Fetch(ctx, spec)
	if err != nil {
		return series, err
	}
	if err := p.cache.Set(ctx, key, models.NewBarDTOs(series), p.ttl); err != nil {
		p.l.Warn("bar cache write failed", applogger.String("symbol", spec.Symbol.String()), applogger.Error(err))
	}
	return series, nil
}
