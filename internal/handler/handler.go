package handler

import (
	"context"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"realty-engine/internal/engine"
	"realty-engine/internal/jurisdiction"
	"realty-engine/internal/model"
)

// Handler serves the calculation API over fasthttp.
type Handler struct {
	ctx           context.Context
	engine        *engine.Engine
	jurisdictions *jurisdiction.Registry
	log           *zap.Logger
	metrics       fasthttp.RequestHandler
}

// New builds the HTTP surface. ctx bounds every calculation, so cancelling it
// aborts work still in flight during shutdown.
func New(ctx context.Context, eng *engine.Engine, jurisdictions *jurisdiction.Registry, log *zap.Logger, gatherer prometheus.Gatherer) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		ctx:           ctx,
		engine:        eng,
		jurisdictions: jurisdictions,
		log:           log,
		metrics:       fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})),
	}
}

// Route dispatches by path.
func (h *Handler) Route(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/calculate":
		h.HandleCalculation(ctx)
	case "/jurisdictions":
		if !allow(ctx, fasthttp.MethodGet) {
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, h.jurisdictions.All())
	case "/healthz":
		if !allow(ctx, fasthttp.MethodGet) {
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
	case "/metrics":
		if !allow(ctx, fasthttp.MethodGet) {
			return
		}
		h.metrics(ctx)
	default:
		writeError(ctx, fasthttp.StatusNotFound, "Not found")
	}
}

func (h *Handler) HandleCalculation(ctx *fasthttp.RequestCtx) {
	if !allow(ctx, fasthttp.MethodPost) {
		return
	}

	var req model.CalculationRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Instructions) == 0 {
		writeError(ctx, fasthttp.StatusBadRequest, "At least one instruction is required")
		return
	}

	resp := h.engine.Process(h.ctx, &req)
	h.log.Info("calculation served",
		zap.String("calculation_id", resp.CalculationMetadata.CalculationID),
		zap.String("outcome", resp.CalculationMetadata.CalculationOutcome),
		zap.Int64("duration_ms", resp.CalculationMetadata.CalculationDurationMs),
	)
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func allow(ctx *fasthttp.RequestCtx, method string) bool {
	if string(ctx.Method()) == method {
		return true
	}
	ctx.Response.Header.Set("Allow", method)
	writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
	return false
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		ctx.Error(`{"status":500,"message":"encode response"}`, fasthttp.StatusInternalServerError)
		ctx.SetContentType("application/json")
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	writeJSON(ctx, status, model.ErrorResponse{
		Status:  status,
		Message: message,
	})
}
