// Package settings resolves commission rate settings from the store, with a
// short TTL cache so batch runs do not hammer the settings table.
package settings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coachware/commission/internal/cache"
	"github.com/coachware/commission/internal/commission/domain"
	"github.com/coachware/commission/internal/config"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const cacheKey = "rate_settings"

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
	Cfg config.Config
}

type Provider struct {
	db    *gorm.DB
	log   *zap.Logger
	ttl   time.Duration
	cache cache.Cache[string, domain.RateSettings]
}

func NewProvider(p Params) domain.RateSettingsProvider {
	ttl := time.Duration(p.Cfg.Settings.CacheTTLSeconds) * time.Second
	var c cache.Cache[string, domain.RateSettings] = cache.NewTTLCache[string, domain.RateSettings]()
	if ttl <= 0 {
		c = cache.NoopCache[string, domain.RateSettings]{}
	}
	return &Provider{
		db:    p.DB,
		log:   p.Log.Named("settings.provider"),
		ttl:   ttl,
		cache: c,
	}
}

// Resolve returns the current rate settings, loading from the store on cache
// miss and falling back to hard-coded defaults for absent keys.
func (p *Provider) Resolve(ctx context.Context) (domain.RateSettings, error) {
	if cached, ok := p.cache.Get(cacheKey); ok {
		return cached, nil
	}

	var rows []domain.CommissionSetting
	if err := p.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return domain.RateSettings{}, fmt.Errorf("load commission settings: %w", err)
	}

	resolved := domain.DefaultRateSettings()
	for _, row := range rows {
		if err := applySetting(&resolved, row); err != nil {
			// A malformed row must not block payouts; keep the default.
			p.log.Warn("ignoring malformed commission setting",
				zap.String("key", row.Key),
				zap.String("value", row.Value),
				zap.Error(err),
			)
		}
	}

	p.cache.Set(cacheKey, resolved, p.ttl)
	return resolved, nil
}

// Invalidate drops the cached settings so the next Resolve reloads.
func (p *Provider) Invalidate() {
	p.cache.Delete(cacheKey)
}

func applySetting(s *domain.RateSettings, row domain.CommissionSetting) error {
	value, err := decimal.NewFromString(strings.TrimSpace(row.Value))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidSetting, err)
	}
	switch row.Key {
	case domain.SettingCloserRate:
		s.CloserRate = value
	case domain.SettingSetterRate:
		s.SetterRate = value
	case domain.SettingReferrerFlatFee:
		// Stored in dollars; the engine works in cents.
		s.ReferrerFlatFeeCents = value.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	case domain.SettingResignRate:
		s.ResignRate = value
	case domain.SettingCompanyLeadRate:
		s.CompanyLeadRate = value
	case domain.SettingCoachLeadRate:
		s.CoachLeadRate = value
	}
	return nil
}
