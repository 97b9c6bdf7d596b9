package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	sdkmath "cosmossdk.io/math"
	"github.com/gorilla/mux"

	"github.com/x-liquidity/engine/internal/engine"
	"github.com/x-liquidity/engine/internal/state"
	"github.com/x-liquidity/engine/internal/types"
)

// caller extracts the authenticated caller identity. Empty means the gateway
// did not authenticate the request.
func caller(r *http.Request) string {
	return r.Header.Get(callerHeader)
}

func decodeBody(w http.ResponseWriter, r *http.Request, ws *WebServer, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

type createPositionRequest struct {
	TokenA          string        `json:"token_a"`
	TokenB          string        `json:"token_b"`
	Dex             types.DexType `json:"dex,omitempty"`
	PoolAddress     string        `json:"pool_address"`
	TickLower       int32         `json:"tick_lower"`
	TickUpper       int32         `json:"tick_upper"`
	PriceLower      sdkmath.Int   `json:"price_lower"`
	PriceUpper      sdkmath.Int   `json:"price_upper"`
	MaxPositionSize sdkmath.Int   `json:"max_position_size"`
	MaxSingleTrade  sdkmath.Int   `json:"max_single_trade"`
}

func (ws *WebServer) handleCreatePosition(w http.ResponseWriter, r *http.Request) {
	owner := caller(r)
	if owner == "" {
		ws.writeErrorResponse(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	var req createPositionRequest
	if !decodeBody(w, r, ws, &req) {
		return
	}

	position, err := ws.engine.CreatePosition(engine.CreatePositionParams{
		Owner:           owner,
		TokenA:          req.TokenA,
		TokenB:          req.TokenB,
		Dex:             req.Dex,
		PoolAddress:     req.PoolAddress,
		TickLower:       req.TickLower,
		TickUpper:       req.TickUpper,
		PriceLower:      req.PriceLower,
		PriceUpper:      req.PriceUpper,
		MaxPositionSize: req.MaxPositionSize,
		MaxSingleTrade:  req.MaxSingleTrade,
	})
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}

	ws.writeJSONResponse(w, http.StatusCreated, position)
}

func (ws *WebServer) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	position, err := state.GetPosition(mux.Vars(r)["id"])
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, position)
}

type setStatusRequest struct {
	Status types.PositionStatus `json:"status"`
}

func (ws *WebServer) handleSetPositionStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if !decodeBody(w, r, ws, &req) {
		return
	}

	position, err := ws.engine.SetPositionStatus(mux.Vars(r)["id"], caller(r), req.Status)
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, position)
}

type accrueRequest struct {
	FeesA            sdkmath.Int `json:"fees_a"`
	FeesB            sdkmath.Int `json:"fees_b"`
	TotalValueLocked sdkmath.Int `json:"total_value_locked"`
}

func (ws *WebServer) handleAccrueFees(w http.ResponseWriter, r *http.Request) {
	var req accrueRequest
	if !decodeBody(w, r, ws, &req) {
		return
	}

	position, err := ws.engine.AccrueFees(mux.Vars(r)["id"], caller(r), req.FeesA, req.FeesB, req.TotalValueLocked)
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, position)
}

func (ws *WebServer) handleCollectFees(w http.ResponseWriter, r *http.Request) {
	collection, err := ws.engine.CollectFees(mux.Vars(r)["id"], caller(r))
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, collection)
}

type createDecisionRequest struct {
	NewTickLower  int32       `json:"new_tick_lower"`
	NewTickUpper  int32       `json:"new_tick_upper"`
	NewPriceLower sdkmath.Int `json:"new_price_lower"`
	NewPriceUpper sdkmath.Int `json:"new_price_upper"`

	AIModelVersion       string `json:"ai_model_version,omitempty"`
	AIModelHash          string `json:"ai_model_hash,omitempty"`
	PredictionConfidence uint16 `json:"prediction_confidence"`
	MarketSentimentScore int16  `json:"market_sentiment_score"`
	VolatilityMetric     uint16 `json:"volatility_metric"`
	WhaleActivityScore   uint16 `json:"whale_activity_score"`
	DecisionReason       string `json:"decision_reason"`
}

func (ws *WebServer) handleCreateDecision(w http.ResponseWriter, r *http.Request) {
	var req createDecisionRequest
	if !decodeBody(w, r, ws, &req) {
		return
	}

	decision, err := ws.engine.CreateDecision(mux.Vars(r)["id"], caller(r), engine.DecisionParams{
		NewTickLower:         req.NewTickLower,
		NewTickUpper:         req.NewTickUpper,
		NewPriceLower:        req.NewPriceLower,
		NewPriceUpper:        req.NewPriceUpper,
		AIModelVersion:       req.AIModelVersion,
		AIModelHash:          req.AIModelHash,
		PredictionConfidence: req.PredictionConfidence,
		MarketSentimentScore: req.MarketSentimentScore,
		VolatilityMetric:     req.VolatilityMetric,
		WhaleActivityScore:   req.WhaleActivityScore,
		DecisionReason:       req.DecisionReason,
	})
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusCreated, decision)
}

func (ws *WebServer) handleGetDecision(w http.ResponseWriter, r *http.Request) {
	decision, err := state.GetDecision(mux.Vars(r)["id"])
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, decision)
}

func (ws *WebServer) handleApproveDecision(w http.ResponseWriter, r *http.Request) {
	approver := caller(r)
	if approver == "" {
		ws.writeErrorResponse(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	decision, err := ws.engine.Approve(mux.Vars(r)["id"], approver)
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, decision)
}

type executeDecisionRequest struct {
	SlippageToleranceBps uint16 `json:"slippage_tolerance_bps"`
	Approver             string `json:"approver,omitempty"`
}

func (ws *WebServer) handleExecuteDecision(w http.ResponseWriter, r *http.Request) {
	var req executeDecisionRequest
	if !decodeBody(w, r, ws, &req) {
		return
	}

	decision, err := ws.engine.Execute(mux.Vars(r)["id"], req.SlippageToleranceBps, req.Approver)
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, decision)
}

type finalizeRequest struct {
	Reason string `json:"reason,omitempty"`
}

func (ws *WebServer) finalizeDecision(w http.ResponseWriter, r *http.Request, status types.ExecutionStatus) {
	var req finalizeRequest
	if r.ContentLength > 0 && !decodeBody(w, r, ws, &req) {
		return
	}

	decision, err := ws.engine.Finalize(mux.Vars(r)["id"], caller(r), status, req.Reason)
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, decision)
}

func (ws *WebServer) handleRejectDecision(w http.ResponseWriter, r *http.Request) {
	ws.finalizeDecision(w, r, types.ExecutionRejected)
}

func (ws *WebServer) handleCancelDecision(w http.ResponseWriter, r *http.Request) {
	ws.finalizeDecision(w, r, types.ExecutionCancelled)
}

func (ws *WebServer) handleReportFailure(w http.ResponseWriter, r *http.Request) {
	ws.finalizeDecision(w, r, types.ExecutionFailed)
}

type verifyPaymentRequest struct {
	PaymentID   string                `json:"payment_id"`
	PayerWallet string                `json:"payer_wallet"`
	Amount      sdkmath.Int           `json:"amount"`
	Currency    types.PaymentCurrency `json:"currency"`
	Facilitator string                `json:"facilitator"`
	APIEndpoint string                `json:"api_endpoint"`
	APIVersion  string                `json:"api_version"`
}

func (ws *WebServer) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	payer := caller(r)
	if payer == "" {
		ws.writeErrorResponse(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	var req verifyPaymentRequest
	if !decodeBody(w, r, ws, &req) {
		return
	}

	payment, err := ws.engine.VerifyPayment(engine.PaymentParams{
		PaymentID:   req.PaymentID,
		Payer:       payer,
		PayerWallet: req.PayerWallet,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Facilitator: req.Facilitator,
		APIEndpoint: req.APIEndpoint,
		APIVersion:  req.APIVersion,
	})
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusCreated, payment)
}

func (ws *WebServer) handleGetPaymentRequirements(w http.ResponseWriter, r *http.Request) {
	requirements, err := ws.engine.GetPaymentRequirements()
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, requirements)
}

func (ws *WebServer) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := state.GetPayment(mux.Vars(r)["id"])
	if err != nil {
		ws.writeEngineError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, payment)
}

func (ws *WebServer) handleGetAuditLog(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 500 {
			limit = parsedLimit
		}
	}

	events, err := state.GetRecentAuditEvents(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get audit events")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve audit log")
		return
	}

	response := map[string]interface{}{
		"events": events,
		"count":  len(events),
		"limit":  limit,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}
