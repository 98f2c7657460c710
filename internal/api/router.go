package api

import (
	"net/http"
	"time"

	_ "github.com/AlexZinkM/wartlock/docs" // swagger spec
	"github.com/AlexZinkM/wartlock/internal/handler"
	"github.com/AlexZinkM/wartlock/internal/logger"
	"github.com/AlexZinkM/wartlock/warthog"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// SetupRouter sets up router with handlers
func SetupRouter(svc *warthog.Service, log *zap.Logger) http.Handler {
	log = logger.OrNop(log)
	walletHandler := handler.NewWalletHandler(svc, log)

	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("GET /swagger/", httpSwagger.WrapHandler)

	// Wallet endpoints
	mux.HandleFunc("POST /wallets", walletHandler.CreateWallet)
	mux.HandleFunc("GET /wallets", walletHandler.ListWallets)
	mux.HandleFunc("POST /wallets/recover", walletHandler.RecoverWallet)
	mux.HandleFunc("POST /wallets/import", walletHandler.ImportWallet)
	mux.HandleFunc("DELETE /wallets/{address}", walletHandler.DeleteWallet)
	mux.HandleFunc("PUT /wallets/{address}/name", walletHandler.RenameWallet)
	mux.HandleFunc("POST /wallets/{address}/password", walletHandler.ChangePassword)
	mux.HandleFunc("GET /wallets/{address}/balance", walletHandler.GetBalance)
	mux.HandleFunc("GET /wallets/{address}/transactions", walletHandler.TransactionHistory)
	mux.HandleFunc("GET /wallets/{address}/receive", walletHandler.Receive)
	mux.HandleFunc("POST /wallets/{address}/send", walletHandler.Send)

	// Settings
	mux.HandleFunc("GET /settings/peer", walletHandler.GetPeer)
	mux.HandleFunc("PUT /settings/peer", walletHandler.SetPeer)

	return logRequests(log, mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests logs method, path, status and duration. Bodies carry
// passwords and are never logged.
func logRequests(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
