package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/devmarvs/secureheaders"
	"github.com/devmarvs/secureheaders/apperr"
	"github.com/devmarvs/secureheaders/cache"
	"github.com/devmarvs/secureheaders/metrics"
	"github.com/devmarvs/secureheaders/policy"
	"github.com/devmarvs/secureheaders/router"
	"github.com/devmarvs/secureheaders/rules"
	"github.com/devmarvs/secureheaders/security"
)

// Tracer starts spans around header generation.
type Tracer interface {
	Start(ctx context.Context, req *http.Request, mode string) (context.Context, func(err error))
}

// SecureHeadersOptions configures the security headers middleware.
type SecureHeadersOptions struct {
	Policy       policy.Template
	Rules        []rules.Rule
	KeysToRemove []string
	Nonce        policy.NonceConfig
	// DisableNonce resolves per-source templates once instead of generating a
	// nonce-bearing policy per request. Nonce settings are ignored.
	DisableNonce bool
	Renderer     security.Renderer
	Random       io.Reader
	Logger       *slog.Logger
	Metrics      *metrics.Collector
	Tracer       Tracer
	// Cache holds the merged header set per combination of matched sources
	// in static mode. Nil uses an in-memory store.
	Cache    cache.Store
	CacheTTL time.Duration
}

// SecureHeaders sets the resolved security headers on every response. With no
// rules the base policy is served for every path.
func SecureHeaders(options SecureHeadersOptions) (Middleware, error) {
	if len(options.Rules) == 0 {
		options.Rules = []rules.Rule{{Source: baseSource}}
	}
	generator := secureheaders.New(secureheaders.Options{
		Renderer:     options.Renderer,
		KeysToRemove: options.KeysToRemove,
		Random:       options.Random,
	})
	logger := loggerOrDefault(options.Logger)

	if options.DisableNonce {
		return staticHeaders(generator, options, logger)
	}
	return nonceHeaders(generator, options, logger), nil
}

func nonceHeaders(generator *secureheaders.Generator, options SecureHeadersOptions, logger *slog.Logger) Middleware {
	cfg := options.Policy.Clone()
	list := append([]rules.Rule(nil), options.Rules...)
	nonce := options.Nonce

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, finish := startSpan(options.Tracer, r, metrics.ModeNonce)
			start := time.Now()

			headers, err := generator.SecurityHeaders(cfg, list, nonce)
			finish(err)
			if err != nil {
				fail(w, r, logger, options.Metrics, err)
				return
			}
			options.Metrics.ObserveGenerated(metrics.ModeNonce, time.Since(start))

			token := secureheaders.NonceOf(headers)
			security.Apply(w.Header(), headers)
			r.Header.Set(security.HeaderNonce, token)
			next.ServeHTTP(w, r.WithContext(WithNonce(ctx, token)))
		})
	}
}

// baseSource matches every path.
const baseSource = "/:path*"

type staticRoutes struct {
	router  *router.Router
	headers map[router.RouteID][]security.Header
	store   cache.Store
	ttl     time.Duration
}

func staticHeaders(generator *secureheaders.Generator, options SecureHeadersOptions, logger *slog.Logger) (Middleware, error) {
	templates, err := generator.Templates(options.Policy, options.Rules, nil)
	if err != nil {
		return nil, err
	}

	routes := &staticRoutes{
		router:  router.New(),
		headers: make(map[router.RouteID][]security.Header, len(templates)),
		ttl:     options.CacheTTL,
	}
	for _, tpl := range templates {
		id, err := routes.router.Add(tpl.Source)
		if err != nil {
			return nil, apperr.Config("invalid rule source "+tpl.Source, err)
		}
		routes.headers[id] = tpl.Headers
	}

	store := options.Cache
	if store == nil {
		store = cache.NewMemory(cache.MemoryOptions{DefaultTTL: options.CacheTTL})
	}
	if options.Metrics != nil {
		collector := options.Metrics
		store = cache.WithHooks(store, cache.Hooks{
			OnHit: func(_ context.Context, _ string, headers int) {
				collector.ObserveCache(true)
				collector.ObserveCachedHeaders(headers)
			},
			OnMiss: func(context.Context, string) { collector.ObserveCache(false) },
		})
	}
	routes.store = store

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, finish := startSpan(options.Tracer, r, metrics.ModeStatic)
			start := time.Now()

			headers := routes.lookup(ctx, routes.router.MatchAll(r.URL.Path), logger)
			finish(nil)
			options.Metrics.ObserveGenerated(metrics.ModeStatic, time.Since(start))

			security.Apply(w.Header(), headers)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}, nil
}

func (s *staticRoutes) lookup(ctx context.Context, matches []router.Match, logger *slog.Logger) []security.Header {
	if len(matches) == 0 {
		return nil
	}

	key := matchKey(matches)
	cached, ok, err := s.store.Get(ctx, key)
	if err != nil {
		logger.Warn("security headers cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if ok {
		return cached
	}

	var merged []security.Header
	for _, match := range matches {
		merged = overlay(merged, s.headers[match.ID])
	}
	if err := s.store.Set(ctx, key, merged, s.ttl); err != nil {
		logger.Warn("security headers cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return merged
}

// matchKey identifies a combination of matched sources, so the cache holds at
// most one entry per combination however many paths resolve to it.
func matchKey(matches []router.Match) string {
	ids := make([]string, len(matches))
	for i, match := range matches {
		ids[i] = strconv.Itoa(int(match.ID))
	}
	return strings.Join(ids, ",")
}

// overlay replaces headers already in dst by key and appends new ones.
func overlay(dst []security.Header, src []security.Header) []security.Header {
	for _, header := range src {
		replaced := false
		for i := range dst {
			if dst[i].Key == header.Key {
				dst[i].Value = header.Value
				replaced = true
				break
			}
		}
		if !replaced {
			dst = append(dst, header)
		}
	}
	return dst
}

func startSpan(tracer Tracer, r *http.Request, mode string) (context.Context, func(error)) {
	if tracer == nil {
		return r.Context(), func(error) {}
	}
	ctx, finish := tracer.Start(r.Context(), r, mode)
	if ctx == nil {
		ctx = r.Context()
	}
	if finish == nil {
		finish = func(error) {}
	}
	return ctx, finish
}

func fail(w http.ResponseWriter, r *http.Request, logger *slog.Logger, collector *metrics.Collector, err error) {
	code := apperr.CodeOf(err)
	collector.ObserveFailure(code)
	logger.Error("security headers failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
		slog.String("code", code),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
