package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/chango-api/internal/benefit"
	"github.com/noah-isme/chango-api/internal/cache"
	"github.com/noah-isme/chango-api/internal/common"
	"github.com/noah-isme/chango-api/internal/compare"
	"github.com/noah-isme/chango-api/internal/obs"
	"github.com/noah-isme/chango-api/internal/pricing"
	"github.com/noah-isme/chango-api/internal/resilience"
	"github.com/noah-isme/chango-api/internal/store"
)

// keyVersion is bumped whenever the cached Quote layout or pricing rules change.
const keyVersion = "v1"

// ErrEmptyRoster is returned when the service has no stores to price against.
var ErrEmptyRoster = errors.New("store roster is empty")

// Request carries the snapshot a quote is computed from.
type Request struct {
	Items       []pricing.Item       `json:"items" validate:"dive"`
	Benefits    []benefit.Benefit    `json:"benefits" validate:"dive"`
	Memberships []benefit.Membership `json:"memberships"`
}

// Quote is the full pipeline output for a cart.
type Quote struct {
	Key     string                `json:"key"`
	Results []compare.StoreResult `json:"results"`
	Best    *compare.StoreResult  `json:"best,omitempty"`
	Others  []compare.StoreResult `json:"others"`
	Advice  *benefit.Advice       `json:"advice,omitempty"`

	Cached bool `json:"-"`
}

// Service runs the pricing pipeline and memoizes results by content.
type Service struct {
	roster  store.Roster
	options compare.Options
	cache   *cache.Cache
	logger  zerolog.Logger
	tracer  trace.Tracer
	flight  singleflight.Group
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Roster  store.Roster
	Options compare.Options
	Cache   *cache.Cache
	Logger  zerolog.Logger
}

// NewService validates the configuration and constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if len(cfg.Roster) == 0 {
		return nil, ErrEmptyRoster
	}
	opts := cfg.Options
	if !opts.Policy.UnavailablePenalty.IsPositive() {
		opts.Policy = pricing.DefaultPolicy()
	}
	if !opts.AvailabilityCeiling.IsPositive() {
		opts.AvailabilityCeiling = compare.DefaultAvailabilityCeiling
	}
	return &Service{
		roster:  cfg.Roster,
		options: opts,
		cache:   cfg.Cache,
		logger:  cfg.Logger,
		tracer:  otel.Tracer("github.com/noah-isme/chango-api/internal/quote"),
	}, nil
}

// Roster returns the configured stores in ranking order.
func (s *Service) Roster() store.Roster {
	return s.roster
}

// Quote prices the cart at every store, ranks them and advises a payment method
// for the winner. Identical requests return identical quotes; the memo cache only
// saves work.
func (s *Service) Quote(ctx context.Context, req Request) (Quote, error) {
	if s == nil {
		return Quote{}, errors.New("quote service not configured")
	}
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "quote.compute")
	defer span.End()

	key, err := s.Key(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "key")
		observeQuote("error", start)
		return Quote{}, err
	}
	span.SetAttributes(
		attribute.String("quote.key", key),
		attribute.Int("quote.items", len(req.Items)),
		attribute.Int("quote.stores", len(s.roster)),
	)

	var cached Quote
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	switch {
	case errors.Is(err, resilience.ErrOpenCircuit):
		countCache("skipped")
	case err != nil:
		countCache("error")
		s.logger.Warn().Err(err).Str("key", key).Msg("quote cache read failed")
	case hit:
		countCache("hit")
		span.SetAttributes(attribute.Bool("quote.cached", true))
		cached.Cached = true
		observeQuote("ok", start)
		return cached, nil
	case s.cache.Enabled():
		countCache("miss")
	}

	// Concurrent identical requests share one computation. It outlives any
	// single caller; each caller stops waiting when its own context ends.
	flightCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(key, func() (any, error) {
		q, err := s.compute(flightCtx, key, req)
		if err != nil {
			return Quote{}, err
		}
		if err := s.cache.SetJSON(flightCtx, key, q); err != nil && !errors.Is(err, resilience.ErrOpenCircuit) {
			s.logger.Warn().Err(err).Str("key", key).Msg("quote cache write failed")
		}
		return q, nil
	})
	var (
		v      any
		shared bool
	)
	select {
	case res := <-ch:
		v, err, shared = res.Val, res.Err, res.Shared
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compute")
		observeQuote("error", start)
		return Quote{}, err
	}
	span.SetAttributes(attribute.Bool("quote.shared", shared))
	observeQuote("ok", start)
	return v.(Quote), nil
}

func (s *Service) compute(ctx context.Context, key string, req Request) (Quote, error) {
	cmp, err := compare.Stores(ctx, req.Items, s.roster, req.Benefits, s.options)
	if err != nil {
		return Quote{}, fmt.Errorf("compare stores: %w", err)
	}
	q := Quote{
		Key:     key,
		Results: cmp.Results,
		Best:    cmp.Best,
		Others:  cmp.Others,
	}
	if cmp.Best != nil {
		q.Advice = benefit.Recommend(cmp.Best.Benefits, req.Memberships)
		if obs.BestStoreTotal != nil && len(req.Items) > 0 {
			obs.BestStoreTotal.WithLabelValues(cmp.Best.Store.Key).Inc()
		}
	}
	countPromotions(cmp.Results)
	s.logger.Debug().
		Str("key", key).
		Int("items", len(req.Items)).
		Str("best", bestKey(cmp.Best)).
		Msg("quote computed")
	return q, nil
}

// Key derives the memo key from everything that influences the result: roster,
// pricing options and the request snapshot.
func (s *Service) Key(req Request) (string, error) {
	payload, err := json.Marshal(struct {
		Roster      store.Roster         `json:"roster"`
		Penalty     string               `json:"penalty"`
		Ceiling     string               `json:"ceiling"`
		Items       []pricing.Item       `json:"items"`
		Benefits    []benefit.Benefit    `json:"benefits"`
		Memberships []benefit.Membership `json:"memberships"`
	}{
		Roster:      s.roster,
		Penalty:     s.options.Policy.UnavailablePenalty.String(),
		Ceiling:     s.options.AvailabilityCeiling.String(),
		Items:       req.Items,
		Benefits:    req.Benefits,
		Memberships: req.Memberships,
	})
	if err != nil {
		return "", fmt.Errorf("encode quote key: %w", err)
	}
	return cache.Key("quote", keyVersion, common.Sha256Hex(payload)), nil
}

func bestKey(best *compare.StoreResult) string {
	if best == nil {
		return ""
	}
	return best.Store.Key
}

func countPromotions(results []compare.StoreResult) {
	if obs.PromotionKindsTotal == nil {
		return
	}
	for _, r := range results {
		for _, line := range r.Lines {
			if line.Available {
				obs.PromotionKindsTotal.WithLabelValues(string(line.Descriptor.Kind)).Inc()
			}
		}
	}
}

func countCache(result string) {
	if obs.QuoteCacheTotal != nil {
		obs.QuoteCacheTotal.WithLabelValues(result).Inc()
	}
}

func observeQuote(result string, start time.Time) {
	if obs.QuoteTotal != nil {
		obs.QuoteTotal.WithLabelValues(result).Inc()
	}
	if obs.QuoteDuration != nil {
		obs.QuoteDuration.Observe(obs.DurationMillis(time.Since(start)))
	}
}
