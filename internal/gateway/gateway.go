// Package gateway is the request-dispatch layer of the ERP API: it resolves
// identity, enforces tenant isolation and scope grants, throttles by
// credential identity, and routes admitted requests to resource handlers.
package gateway

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"erpgate.dev/internal/audit"
	"erpgate.dev/internal/auth"
	"erpgate.dev/internal/erp"
	"erpgate.dev/internal/obs"
	"erpgate.dev/internal/ratelimit"
)

const (
	headerAPIKey   = "X-Api-Key"
	headerTenantID = "X-Company-Id"
)

// ReadyProbe reports whether the gateway's backing store is reachable.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config carries the tunables cmd/gateway reads from the environment.
type Config struct {
	Version        string
	AllowedOrigins []string // empty means allow any origin, as the managed deployment does
	MaxBodyBytes   int64
	IPBurst        int // per-IP token bucket backstop; 0 disables
	IPPerSecond    int
}

// HandlerFunc is a resource handler invoked only after the full admission
// chain has passed. The context carries the principal; tenantID is the tenant
// the request is confirmed to act on.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, p auth.Principal, tenantID string)

type route struct {
	capability auth.Capability
	handler    HandlerFunc
}

// API is the HTTP surface. One instance per process; safe for concurrent use.
type API struct {
	cfg        Config
	mux        *http.ServeMux
	routes     map[string]map[string]route // pattern -> method -> route
	resolver   *auth.Resolver
	guard      *auth.Guard
	limiter    *ratelimit.FixedWindow
	store      erp.Store
	probe      ReadyProbe
	ipThrottle *IPThrottle
}

// New wires the dispatcher. The limiter is shared process-wide state owned by
// the caller; the API never resets it.
func New(cfg Config, resolver *auth.Resolver, guard *auth.Guard, limiter *ratelimit.FixedWindow, store erp.Store, probe ReadyProbe) *API {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	a := &API{
		cfg:      cfg,
		mux:      http.NewServeMux(),
		routes:   make(map[string]map[string]route),
		resolver: resolver,
		guard:    guard,
		limiter:  limiter,
		store:    store,
		probe:    probe,
	}

	// Operational surface, outside the auth chain.
	a.mux.HandleFunc("/healthz", a.handleHealthz)
	a.mux.HandleFunc("/readyz", a.handleReadyz)
	a.mux.HandleFunc("/v1/info", a.handleInfo)
	a.mux.Handle("/metrics", obs.Handler())
	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeErrorToken(w, r, http.StatusNotFound, tokenNotFound)
	})

	if cfg.IPBurst > 0 && cfg.IPPerSecond > 0 {
		a.ipThrottle = NewIPThrottle(cfg.IPBurst, cfg.IPPerSecond)
	}

	a.registerResourceRoutes()
	return a
}

// Close releases background resources owned by the API. The shared
// fixed-window limiter is caller-owned and not touched here.
func (a *API) Close() {
	if a.ipThrottle != nil {
		a.ipThrottle.Close()
	}
}

// Register adds a resource operation to the dispatch table. Every operation
// declares exactly one required capability.
func (a *API) Register(method, pattern string, capability auth.Capability, h HandlerFunc) {
	if a.routes[pattern] == nil {
		a.routes[pattern] = make(map[string]route)
		a.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			a.dispatch(w, r, pattern)
		})
	}
	a.routes[pattern][method] = route{capability: capability, handler: h}
}

func (a *API) registerResourceRoutes() {
	a.Register(http.MethodGet, "/v1/crm/customers", auth.CapCRMRead, a.listCustomers)
	a.Register(http.MethodPost, "/v1/crm/customers", auth.CapCRMWrite, a.createCustomer)
	a.Register(http.MethodGet, "/v1/finance/invoices", auth.CapFinanceRead, a.listInvoices)
	a.Register(http.MethodGet, "/v1/finance/payments", auth.CapFinanceRead, a.listPayments)
	a.Register(http.MethodPost, "/v1/finance/payments", auth.CapFinanceWrite, a.createPayment)
	a.Register(http.MethodGet, "/v1/inventory/items", auth.CapInventoryRead, a.listItems)
	a.Register(http.MethodPost, "/v1/inventory/adjust", auth.CapInventoryWrite, a.adjustItem)
}

// dispatch runs the admission chain for one matched pattern. Order is fixed:
// the identity rate limiter already ran in the middleware stack; here it is
// credential resolution, then tenant isolation, then scope.
func (a *API) dispatch(w http.ResponseWriter, r *http.Request, pattern string) {
	rt, ok := a.routes[pattern][r.Method]
	if !ok {
		writeErrorToken(w, r, http.StatusNotFound, tokenNotFound)
		return
	}

	creds := auth.Credentials{
		Authorization: r.Header.Get("Authorization"),
		APIKey:        r.Header.Get(headerAPIKey),
		TenantID:      r.Header.Get(headerTenantID),
	}
	principal, err := a.resolver.Resolve(r.Context(), creds)
	if err != nil {
		a.rejectRequest(w, r, err, nil)
		return
	}

	requested := strings.TrimSpace(creds.TenantID)
	if requested == "" {
		requested = principal.TenantID
	}
	if err := a.guard.CheckTenant(r.Context(), principal, requested); err != nil {
		a.rejectRequest(w, r, err, &principal)
		return
	}
	if err := principal.Authorize(rt.capability); err != nil {
		a.rejectRequest(w, r, err, &principal)
		return
	}

	ctx := auth.ContextWithPrincipal(r.Context(), principal)
	rt.handler(w, r.WithContext(ctx), principal, requested)
}

// rejectRequest terminates the request and records why. Authorization denials
// are audited with the principal identity; authentication failures carry no
// principal to name.
func (a *API) rejectRequest(w http.ResponseWriter, r *http.Request, err error, principal *auth.Principal) {
	if code, ok := rejectionCode(err); ok {
		obs.CountAuthFailure(string(code))
		if principal != nil {
			_ = audit.LogEvent(auth.ContextWithPrincipal(r.Context(), *principal), "gateway.denied", map[string]any{
				"reason": string(code),
				"path":   r.URL.Path,
			})
		}
	} else {
		obs.Error("auth chain failed", map[string]any{
			"path":       r.URL.Path,
			"error":      err.Error(),
			"request_id": audit.RequestIDFromContext(r.Context()),
		})
	}
	reject(w, r, err)
}

func rejectionCode(err error) (auth.Code, bool) {
	var ge *auth.Error
	if errors.As(err, &ge) {
		return ge.Code, true
	}
	return "", false
}

// Handler returns the complete middleware stack around the dispatch mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withIdentityRateLimit(h)
	h = MaxBodyBytes(h, a.cfg.MaxBodyBytes)
	h = CORS(h, a.cfg.AllowedOrigins)
	h = SecurityHeaders(h)
	if a.ipThrottle != nil {
		h = a.ipThrottle.Wrap(h)
	}
	h = Recover(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// identityKey orders the throttle identity: API key first, then bearer
// credential, then client address. Unauthenticated floods still land in a
// bucket this way.
func identityKey(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(headerAPIKey)); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.Header.Get("Authorization")); v != "" {
		return v
	}
	ip := clientIP(r)
	if ip == "" {
		ip = "unknown"
	}
	return ip
}

var publicPaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
	"/metrics": {},
}

// withIdentityRateLimit is admission control per credential identity. It runs
// before credential resolution so invalid-credential flooding is bounded too;
// the spent quota unit is not refunded when the request later fails or is
// cancelled.
func (a *API) withIdentityRateLimit(next http.Handler) http.Handler {
	if a.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := publicPaths[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}
		d := a.limiter.Allow(identityKey(r))
		if !d.Allowed {
			obs.CountRateLimited()
			obs.CountAuthFailure(string(auth.CodeRateLimited))
			retry := int(d.RetryAfter/time.Second) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			writeErrorToken(w, r, http.StatusTooManyRequests, string(auth.CodeRateLimited))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- operational handlers ---

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "erpgate",
		"version": a.cfg.Version,
	})
}

func (a *API) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := a.probe.Check(r.Context()); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (a *API) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "erpgate",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.cfg.Version,
	})
}
