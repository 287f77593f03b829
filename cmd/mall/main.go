// cmd/mall/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"
	_ "time/tzdata"

	"storefront/internal/adapters/in/http/middleware"
	appcfg "storefront/internal/infra/config"
	mallDI "storefront/internal/platform/di/mall"
	shared "storefront/internal/platform/di/shared"
	"storefront/internal/platform/logger"
)

// atomicHandler allows swapping the underlying handler at runtime safely.
type atomicHandler struct {
	v atomic.Value // stores http.Handler
}

func newAtomicHandler(initial http.Handler) *atomicHandler {
	ah := &atomicHandler{}
	if initial == nil {
		initial = http.NotFoundHandler()
	}
	ah.v.Store(initial)
	return ah
}

func (h *atomicHandler) Store(next http.Handler) {
	if next == nil {
		return
	}
	h.v.Store(next)
}

func (h *atomicHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cur := h.v.Load()
	if cur == nil {
		http.NotFound(w, r)
		return
	}
	cur.(http.Handler).ServeHTTP(w, r)
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func main() {
	ctx := context.Background()

	cfg := appcfg.Load()
	log := logger.New(logger.Options{
		Service: "storefront-mall",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	// outermost first: request log, CORS, then panic recovery
	wrap := func(h http.Handler) http.Handler {
		return middleware.RequestLog(log)(middleware.CORS(cfg.CORSAllowedOrigins)(middleware.Recover(log)(h)))
	}

	// ─────────────────────────────────────────────────────────────
	// Start listening ASAP with lightweight mux (healthz only)
	// ─────────────────────────────────────────────────────────────
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", healthz)

	switcher := newAtomicHandler(wrap(healthMux))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      switcher,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var infraHolder atomic.Pointer[shared.Infra]
	shuttingDown := make(chan struct{})

	// ─────────────────────────────────────────────────────────────
	// Graceful shutdown
	// ─────────────────────────────────────────────────────────────
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		sig := <-c

		close(shuttingDown)
		log.Info("shutting down", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "err", err)
		}

		if infra := infraHolder.Swap(nil); infra != nil {
			log.Info("closing infra resources")
			if err := infra.Close(); err != nil {
				log.Error("infra close error", "err", err)
			}
		}

		close(idleConnsClosed)
	}()

	go func() {
		log.Info("listening", "port", cfg.Port, "driver", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ─────────────────────────────────────────────────────────────
	// Heavy DI init in background; then swap handler to full app mux
	// ─────────────────────────────────────────────────────────────
	go func() {
		initCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()

		infra, err := shared.NewInfra(initCtx, cfg, log)
		if err != nil {
			log.Warn("shared infra init failed; serving /healthz only", "err", err)
			return
		}
		infraHolder.Store(infra)

		mallCont, err := mallDI.NewContainer(initCtx, infra, log)
		if err != nil {
			if inf := infraHolder.Swap(nil); inf != nil {
				_ = inf.Close()
			}
			log.Warn("mall di init failed; serving /healthz only", "err", err)
			return
		}

		select {
		case <-shuttingDown:
			return
		default:
		}

		fullMux := http.NewServeMux()
		fullMux.HandleFunc("/healthz", healthz)
		mallDI.Register(fullMux, mallCont)

		switcher.Store(wrap(fullMux))
		log.Info("handler switched to mall router")
	}()

	<-idleConnsClosed
	log.Info("server stopped")
}
