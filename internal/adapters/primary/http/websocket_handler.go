package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	wsAdapter "github.com/lorrc/ticket-metrics/internal/adapters/primary/websocket"
	"github.com/lorrc/ticket-metrics/internal/auth"
	"github.com/lorrc/ticket-metrics/internal/config"
)

// AnonymousViewer names websocket clients when auth is disabled
const AnonymousViewer = "anonymous"

// WebSocketHandler handles WebSocket connection upgrades
type WebSocketHandler struct {
	hub            *wsAdapter.Hub
	tm             *auth.TokenManager
	defaultDataset string
	timing         wsAdapter.Timing
	upgrader       websocket.Upgrader
	logger         *slog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler. A nil token manager
// accepts every connection as the anonymous viewer. Clients that name no
// dataset are subscribed to defaultDataset.
func NewWebSocketHandler(
	hub *wsAdapter.Hub,
	tm *auth.TokenManager,
	cfg *config.Config,
	defaultDataset string,
	logger *slog.Logger,
) *WebSocketHandler {
	handler := &WebSocketHandler{
		hub:            hub,
		tm:             tm,
		defaultDataset: defaultDataset,
		timing: wsAdapter.Timing{
			PingInterval: cfg.WebSocket.PingInterval,
			PongWait:     cfg.WebSocket.PongWait,
		},
		logger: logger.With("handler", "websocket"),
	}

	handler.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin:     handler.makeOriginChecker(cfg),
	}

	return handler
}

// makeOriginChecker creates an origin checking function based on configuration
func (h *WebSocketHandler) makeOriginChecker(cfg *config.Config) func(r *http.Request) bool {
	allowedOrigins := cfg.WebSocket.AllowedOrigins

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// In development mode, allow all origins (but log a warning)
		if cfg.IsDevelopment() {
			if origin != "" {
				h.logger.Warn("allowing websocket connection in development mode",
					"origin", origin,
					"remote_addr", r.RemoteAddr,
				)
			}
			return true
		}

		// No origin header (same-origin request or non-browser client)
		if origin == "" {
			return true
		}

		// Check against allowed origins
		parsedOrigin, err := url.Parse(origin)
		if err != nil {
			h.logger.Warn("failed to parse websocket origin",
				"origin", origin,
				"error", err,
			)
			return false
		}

		originHost := parsedOrigin.Host

		for _, allowed := range allowedOrigins {
			// Support wildcard subdomains like "*.example.com"
			if strings.HasPrefix(allowed, "*.") {
				suffix := allowed[1:] // Remove the "*", keep ".example.com"
				if strings.HasSuffix(originHost, suffix) || originHost == allowed[2:] {
					return true
				}
			} else if originHost == allowed {
				return true
			}
		}

		h.logger.Warn("websocket connection rejected due to origin",
			"origin", origin,
			"remote_addr", r.RemoteAddr,
			"allowed_origins", allowedOrigins,
		)
		return false
	}
}

// ServeHTTP handles WebSocket connection requests
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// 1. Authenticate the connection via query parameter
	viewer, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	datasets := lo.Uniq(lo.Compact(r.URL.Query()["dataset"]))
	if len(datasets) == 0 && h.defaultDataset != "" {
		datasets = []string{h.defaultDataset}
	}

	// 2. Upgrade the connection
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to upgrade websocket connection",
			"viewer", viewer,
			"error", err,
		)
		return
	}

	h.logger.InfoContext(ctx, "websocket connection established",
		"viewer", viewer,
		"datasets", datasets,
		"remote_addr", r.RemoteAddr,
	)

	// 3. Create and register the new client
	client := wsAdapter.NewClient(h.hub, conn, viewer, h.timing, h.logger, datasets...)
	if !h.hub.Join(client) {
		_ = conn.Close()
		return
	}

	// 4. Start the I/O pumps in new goroutines
	go client.WritePump()
	go client.ReadPump()
}

// authenticate resolves the viewer from the token query parameter, writing a
// 401 when it is missing or invalid.
func (h *WebSocketHandler) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.tm == nil {
		return AnonymousViewer, true
	}

	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		h.logger.WarnContext(r.Context(), "websocket connection rejected: missing token",
			"remote_addr", r.RemoteAddr,
		)
		http.Error(w, "Missing authentication token", http.StatusUnauthorized)
		return "", false
	}

	claims, err := h.tm.ValidateToken(tokenString)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket connection rejected: invalid token",
			"remote_addr", r.RemoteAddr,
			"error", err,
		)
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return "", false
	}

	return claims.Username(), true
}
