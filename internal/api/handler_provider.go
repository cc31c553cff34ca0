package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fastwager/wagercore/internal/gateway"
	"github.com/fastwager/wagercore/internal/repos/accounts"
	"github.com/fastwager/wagercore/internal/repos/intents"
	"github.com/fastwager/wagercore/internal/repos/ledger"
	"github.com/fastwager/wagercore/internal/services/outcome"
	"github.com/fastwager/wagercore/internal/services/payments"
	"github.com/fastwager/wagercore/internal/services/signup"
	"github.com/fastwager/wagercore/internal/services/wager"
	"github.com/fastwager/wagercore/pkg/money"
)

// Service interfaces consumed by the handlers. Declared here so handlers
// can be tested with fakes.
type (
	WalletService interface {
		GetBalance(ctx context.Context, accountID uint64) (int64, error)
		History(ctx context.Context, accountID uint64, limit int) ([]ledger.Record, error)
	}

	WagerService interface {
		PlaceBet(ctx context.Context, bet wager.Bet) (*wager.Result, error)
	}

	PaymentsService interface {
		CreateIntent(ctx context.Context, accountID uint64, amount int64) (*intents.Intent, error)
		Confirm(ctx context.Context, orderRef string, captured bool, amount int64) error
		Withdraw(ctx context.Context, accountID uint64, amount int64) (int64, error)
	}

	SignupService interface {
		Register(ctx context.Context, name, phone, password string) (uint64, error)
	}
)

// HandlerProvider wraps the engine services and exposes HTTP handlers.
type HandlerProvider struct {
	wallet   WalletService
	wager    WagerService
	payments PaymentsService
	signup   SignupService

	webhookSecret string
	validate      *validator.Validate
}

func NewHandler(wallet WalletService, wg WagerService, pay PaymentsService, su SignupService, webhookSecret string) *HandlerProvider {
	return &HandlerProvider{
		wallet:        wallet,
		wager:         wg,
		payments:      pay,
		signup:        su,
		webhookSecret: webhookSecret,
		validate:      validator.New(),
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseAccountIDFromPath reads `{accountId}` from routes like
// GET /accounts/{accountId}/balance.
func parseAccountIDFromPath(r *http.Request) (uint64, error) {
	idStr := chi.URLParam(r, "accountId")
	if idStr == "" {
		return 0, errors.New("missing accountId")
	}

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, errors.New("invalid accountId")
	}
	if id == 0 {
		return 0, errors.New("accountId must be positive")
	}

	return id, nil
}

// decodeBody decodes a size-capped JSON body, rejecting unknown fields,
// then validates the struct tags.
func (h *HandlerProvider) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}

		return errors.New("invalid JSON")
	}

	err = h.validate.Struct(dst)
	if err != nil {
		return errors.New("invalid payload")
	}

	return nil
}

// --- DTOs ---

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"required,min=8,max=20"`
	Password string `json:"password" validate:"required,min=8"`
}

type betRequest struct {
	Variant    string `json:"variant" validate:"required,oneof=color oddeven mines"`
	Amount     string `json:"amount" validate:"required"`
	Prediction string `json:"prediction" validate:"omitempty,max=20"`
	Won        *bool  `json:"won,omitempty"`
}

type amountRequest struct {
	Amount string `json:"amount" validate:"required"`
}

type webhookRequest struct {
	OrderRef string `json:"orderRef" validate:"required"`
	Event    string `json:"event" validate:"required,oneof=captured failed"`
	Amount   int64  `json:"amount" validate:"required,gt=0"` // minor units
}

type recordResponse struct {
	RecordID         string              `json:"recordId"`
	Kind             string              `json:"kind"`
	Amount           string              `json:"amount"`
	ResultingBalance string              `json:"resultingBalance"`
	Payload          *ledger.GamePayload `json:"game,omitempty"`
	OrderRef         string              `json:"orderRef,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
}

// --- Handlers ---

// RegisterHandler handles POST /accounts.
func (h *HandlerProvider) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	err := h.decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.signup.Register(r.Context(), req.Name, req.Phone, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrPhoneTaken):
			writeError(w, http.StatusConflict, "phone already registered")
		case errors.Is(err, signup.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, "password too short")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"accountId": id})
}

// GetBalanceHandler handles GET /accounts/{accountId}/balance.
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bal, err := h.wallet.GetBalance(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accountId": accountID,
		"balance":   money.Format(bal),
	})
}

// ListRecordsHandler handles GET /accounts/{accountId}/records.
func (h *HandlerProvider) ListRecordsHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	const historyLimit = 100

	recs, err := h.wallet.History(r.Context(), accountID, historyLimit)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]recordResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recordResponse{
			RecordID:         rec.RecordID,
			Kind:             string(rec.Kind),
			Amount:           money.Format(rec.Amount),
			ResultingBalance: money.Format(rec.ResultingBalance),
			Payload:          rec.Payload,
			OrderRef:         rec.OrderRef,
			CreatedAt:        rec.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"records": out})
}

// PlaceBetHandler handles POST /accounts/{accountId}/bets.
func (h *HandlerProvider) PlaceBetHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req betRequest
	err = h.decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.wager.PlaceBet(r.Context(), wager.Bet{
		AccountID:  accountID,
		Variant:    outcome.Variant(req.Variant),
		Amount:     amount,
		Prediction: req.Prediction,
		MinesWon:   req.Won,
	})
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, "account not found")
		case errors.Is(err, accounts.ErrInsufficientFunds):
			writeError(w, http.StatusConflict, "insufficient funds")
		case errors.Is(err, wager.ErrInvalidAmount),
			errors.Is(err, wager.ErrMissingOutcome),
			errors.Is(err, outcome.ErrUnknownVariant),
			errors.Is(err, outcome.ErrInvalidPrediction):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"outcome":    res.Outcome,
		"win":        res.Win,
		"winnings":   money.Format(res.Winnings),
		"newBalance": money.Format(res.NewBalance),
	})
}

// CreateDepositHandler handles POST /accounts/{accountId}/deposits.
func (h *HandlerProvider) CreateDepositHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req amountRequest
	err = h.decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	in, err := h.payments.CreateIntent(r.Context(), accountID, amount)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, "account not found")
		case errors.Is(err, payments.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusBadGateway, "gateway error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"intentId": in.ID,
		"orderRef": in.OrderRef,
		"amount":   money.Format(in.Amount),
		"state":    string(in.State),
	})
}

// WithdrawHandler handles POST /accounts/{accountId}/withdrawals.
func (h *HandlerProvider) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req amountRequest
	err = h.decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	newBalance, err := h.payments.Withdraw(r.Context(), accountID, amount)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, "account not found")
		case errors.Is(err, accounts.ErrInsufficientFunds):
			writeError(w, http.StatusConflict, "insufficient funds")
		case errors.Is(err, payments.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"newBalance": money.Format(newBalance)})
}

// GatewayWebhookHandler handles POST /payments/webhook. The signature is
// verified before the confirmation is trusted with any ledger effect.
// Duplicate confirmations answer 200 so the gateway stops retrying.
func (h *HandlerProvider) GatewayWebhookHandler(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	err := h.decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sig := r.Header.Get("X-Gateway-Signature")
	if !gateway.VerifySignature(req.OrderRef, req.Amount, sig, h.webhookSecret) {
		slog.Warn("rejected webhook with bad signature", "order_ref", req.OrderRef)
		writeError(w, http.StatusUnauthorized, gateway.ErrUnverifiedWebhook.Error())
		return
	}

	err = h.payments.Confirm(r.Context(), req.OrderRef, req.Event == "captured", req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, intents.ErrAlreadyFinalized):
			slog.Info("duplicate gateway confirmation ignored", "order_ref", req.OrderRef)
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		case errors.Is(err, intents.ErrIntentNotFound):
			writeError(w, http.StatusNotFound, "unknown order reference")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
