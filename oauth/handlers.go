package oauth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/r2w34/fb-ai-sys-sub001/cache"
	"github.com/r2w34/fb-ai-sys-sub001/metrics"
	apperrors "github.com/r2w34/fb-ai-sys-sub001/pkg/errors"
	"github.com/r2w34/fb-ai-sys-sub001/pkg/facebook"
	"github.com/r2w34/fb-ai-sys-sub001/store"
)

// GraphClient is the slice of the Facebook client the handlers use.
type GraphClient interface {
	DialogURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	DiscoverAssets(ctx context.Context, accessToken string) (*facebook.DiscoveredAssets, error)
}

// AccountStore persists linked accounts and serves connection snapshots.
type AccountStore interface {
	Reconcile(ctx context.Context, shop, accessToken string, assets *facebook.DiscoveredAssets) (*store.FacebookAccount, error)
	Deactivate(ctx context.Context, shop string) error
	Status(ctx context.Context, shop string) (*store.ConnectionStatus, error)
}

// SessionResolver recovers the shop from the host application's session when
// the OAuth state is missing or undecodable.
type SessionResolver interface {
	Shop(r *http.Request) string
}

// CookieSessionResolver reads the shop from the session cookie the host
// application sets when it embeds this service.
type CookieSessionResolver struct {
	CookieName string
}

func (c CookieSessionResolver) Shop(r *http.Request) string {
	cookie, err := r.Cookie(c.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Handler serves the Facebook connect flow.
type Handler struct {
	fb       GraphClient
	accounts AccountStore
	cache    *cache.Cache
	sessions SessionResolver
	metrics  *metrics.Metrics
	appURL   string
}

func NewHandler(fb GraphClient, accounts AccountStore, statusCache *cache.Cache, sessions SessionResolver, m *metrics.Metrics, appURL string) *Handler {
	return &Handler{
		fb:       fb,
		accounts: accounts,
		cache:    statusCache,
		sessions: sessions,
		metrics:  m,
		appURL:   appURL,
	}
}

// HandleConnect is the flow entry point: it packs the shop into the OAuth
// state and sends the popup to the Facebook dialog.
func (h *Handler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	if shop == "" && h.sessions != nil {
		shop = h.sessions.Shop(r)
	}
	if shop == "" {
		apperrors.HandleError(w, apperrors.Validation("shop parameter is required"))
		return
	}

	encoded, err := NewState(shop).Encode()
	if err != nil {
		LogError("Error encoding state for shop %s: %v", shop, err)
		apperrors.HandleError(w, err)
		return
	}

	LogInfo("Starting Facebook connect for shop %s", shop)
	http.Redirect(w, r, h.fb.DialogURL(encoded), http.StatusFound)
}

// HandleCallback completes the OAuth round trip: resolve the shop, exchange
// the code, discover assets, reconcile, and hand the outcome to the popup
// bridge. Token exchange and identity are fatal; the rest degraded upstream.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	if providerErr := query.Get("error"); providerErr != "" {
		LogError("Facebook returned an authorization error: %s", providerErr)
		h.finish(w, Failure("Facebook authorization was declined", ErrCodeAuthFailed), "denied")
		return
	}

	shop := h.resolveShop(r, query.Get("state"))
	if shop == "" {
		LogError("No shop in state or session, aborting before any provider call")
		h.finish(w, Failure("Could not determine which shop to connect", ErrCodeInvalidCallback), "invalid_callback")
		return
	}

	code := query.Get("code")
	if code == "" {
		LogError("Callback for shop %s is missing the authorization code", shop)
		h.finish(w, Failure("Missing authorization code", ErrCodeInvalidCallback), "invalid_callback")
		return
	}

	accessToken, err := h.fb.ExchangeCode(ctx, code)
	if err != nil {
		LogError("Token exchange failed for shop %s: %v", shop, err)
		h.recordError("token_exchange")
		h.finish(w, Failure("Could not complete Facebook authentication", ErrCodeAuthFailed), "token_exchange_failed")
		return
	}

	assets, err := h.fb.DiscoverAssets(ctx, accessToken)
	if err != nil {
		LogError("Asset discovery failed for shop %s: %v", shop, err)
		h.recordError("discovery")
		h.finish(w, Failure("Could not verify the Facebook account", ErrCodeAuthFailed), "identity_failed")
		return
	}

	start := time.Now()
	account, err := h.accounts.Reconcile(ctx, shop, accessToken, assets)
	if err != nil {
		LogError("Reconciliation failed for shop %s: %v", shop, err)
		h.recordError("reconcile")
		h.finish(w, Failure("Could not save the Facebook connection", ErrCodeAuthFailed), "reconcile_failed")
		return
	}
	if h.metrics != nil {
		h.metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
	}

	h.cache.InvalidateStatus(ctx, shop)

	LogInfo("Connected shop %s to Facebook user %s (%d ad accounts, %d pages, %d Instagram accounts)",
		shop, account.FacebookUserID, len(assets.AdAccounts), len(assets.Pages), len(assets.InstagramAccounts))
	h.finish(w, Success(shop), "success")
}

// HandleStatus serves the connection snapshot the host app's dashboard polls.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	if shop == "" && h.sessions != nil {
		shop = h.sessions.Shop(r)
	}
	if shop == "" {
		apperrors.HandleError(w, apperrors.Validation("shop parameter is required"))
		return
	}

	status, err := h.cache.GetStatus(r.Context(), shop, h.accounts.Status)
	if err != nil {
		LogError("Error loading status for shop %s: %v", shop, err)
		apperrors.HandleError(w, err)
		return
	}

	apperrors.WriteJSON(w, http.StatusOK, status)
}

// HandleDisconnect soft-deletes the shop's connection.
func (h *Handler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	shop := r.FormValue("shop")
	if shop == "" && h.sessions != nil {
		shop = h.sessions.Shop(r)
	}
	if shop == "" {
		apperrors.HandleError(w, apperrors.Validation("shop parameter is required"))
		return
	}

	if err := h.accounts.Deactivate(r.Context(), shop); err != nil {
		if errors.Is(err, store.ErrNotConnected) {
			apperrors.HandleError(w, apperrors.NotFound("shop has no active Facebook connection"))
			return
		}
		LogError("Error disconnecting shop %s: %v", shop, err)
		apperrors.HandleError(w, err)
		return
	}

	h.cache.InvalidateStatus(r.Context(), shop)

	LogInfo("Disconnected Facebook for shop %s", shop)
	apperrors.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Facebook account disconnected",
	})
}

func (h *Handler) resolveShop(r *http.Request, rawState string) string {
	state, err := DecodeState(rawState)
	if err == nil {
		return state.Shop
	}
	LogDebug("State decode failed (%v), falling back to session lookup", err)
	if h.sessions != nil {
		return h.sessions.Shop(r)
	}
	return ""
}

func (h *Handler) finish(w http.ResponseWriter, outcome Outcome, metricOutcome string) {
	if h.metrics != nil {
		h.metrics.CallbackTotal.WithLabelValues(metricOutcome).Inc()
	}
	WritePopupBridge(w, h.appURL, outcome)
}

func (h *Handler) recordError(component string) {
	if h.metrics != nil {
		h.metrics.Errors.WithLabelValues(component).Inc()
	}
}
