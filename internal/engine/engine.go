package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"realty-engine/internal/metrics"
	"realty-engine/internal/model"
	"realty-engine/internal/operations"
)

// DefaultMaxParallel bounds instruction fan-out when New is given n <= 0.
const DefaultMaxParallel = 8

// Engine evaluates calculation requests. Instructions share no state, so
// they are evaluated concurrently and reassembled in request order.
type Engine struct {
	ops         *operations.Registry
	log         *zap.Logger
	metrics     *metrics.Metrics
	maxParallel int
	now         func() time.Time
}

// New builds an engine. log and m may be nil.
func New(ops *operations.Registry, log *zap.Logger, m *metrics.Metrics, maxParallel int) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if maxParallel <= 0 {
		maxParallel = DefaultMaxParallel
	}
	return &Engine{ops: ops, log: log, metrics: m, maxParallel: maxParallel, now: time.Now}
}

type evaluation struct {
	outcome string
	result  any
	msgs    []model.CalculationMessage
}

func (e *Engine) Process(ctx context.Context, req *model.CalculationRequest) *model.CalculationResponse {
	done := e.metrics.StartCalculation()
	defer done()

	start := e.now()
	evals := make([]evaluation, len(req.Instructions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxParallel)
	for i := range req.Instructions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				evals[i] = cancelled(err)
				return nil
			}
			evals[i] = e.evaluate(&req.Instructions[i])
			return nil
		})
	}
	_ = g.Wait()

	allMessages := []model.CalculationMessage{}
	processed := make([]model.ProcessedInstruction, 0, len(evals))
	outcome := model.OutcomeSuccess

	for i, ev := range evals {
		instr := req.Instructions[i]
		var msgIndexes []int
		for _, m := range ev.msgs {
			m.ID = len(allMessages)
			allMessages = append(allMessages, m)
			msgIndexes = append(msgIndexes, m.ID)
			e.observeMessage(m)
		}
		if ev.outcome == model.OutcomeFailure {
			outcome = model.OutcomeFailure
		}
		e.metrics.ObserveInstruction(instr.Operation, ev.outcome)

		processed = append(processed, model.ProcessedInstruction{
			InstructionID:             instr.InstructionID,
			Operation:                 instr.Operation,
			Outcome:                   ev.outcome,
			Result:                    ev.result,
			CalculationMessageIndexes: msgIndexes,
		})
	}

	completed := e.now()
	elapsed := completed.Sub(start)
	resp := &model.CalculationResponse{
		CalculationMetadata: model.CalculationMetadata{
			CalculationID:          uuid.New().String(),
			ClientID:               req.ClientID,
			CalculationStartedAt:   start.UTC().Format(time.RFC3339),
			CalculationCompletedAt: completed.UTC().Format(time.RFC3339),
			CalculationDurationMs:  elapsed.Milliseconds(),
			CalculationOutcome:     outcome,
		},
		CalculationResult: model.CalculationResult{
			Messages:     allMessages,
			Instructions: processed,
		},
	}

	e.log.Debug("calculation processed",
		zap.String("calculation_id", resp.CalculationMetadata.CalculationID),
		zap.String("client_id", req.ClientID),
		zap.Int("instructions", len(req.Instructions)),
		zap.Int("messages", len(allMessages)),
		zap.String("outcome", outcome),
		zap.Duration("duration", elapsed),
	)
	return resp
}

func (e *Engine) evaluate(instr *model.Instruction) evaluation {
	op, ok := e.ops.Get(instr.Operation)
	if !ok {
		return evaluation{
			outcome: model.OutcomeFailure,
			msgs: []model.CalculationMessage{{
				Level:   model.LevelCritical,
				Code:    operations.CodeUnknownOperation,
				Message: fmt.Sprintf("Unknown operation: %s", instr.Operation),
			}},
		}
	}

	msgs := op.Validate(instr)
	if model.HasCritical(msgs) {
		return evaluation{outcome: model.OutcomeFailure, msgs: msgs}
	}

	result, execMsgs := op.Execute(instr)
	msgs = append(msgs, execMsgs...)
	if model.HasCritical(execMsgs) {
		return evaluation{outcome: model.OutcomeFailure, msgs: msgs}
	}
	return evaluation{outcome: model.OutcomeSuccess, result: result, msgs: msgs}
}

func cancelled(err error) evaluation {
	return evaluation{
		outcome: model.OutcomeFailure,
		msgs:    []model.CalculationMessage{model.Critical(operations.CodeCalculationCancelled, err.Error())},
	}
}

func (e *Engine) observeMessage(m model.CalculationMessage) {
	e.metrics.ObserveMessage(m.Level, m.Code)
	switch m.Code {
	case operations.CodeGenericPatternApplied:
		e.metrics.IncrementDegraded("generic_pattern")
	case operations.CodeDefaultCapApplied:
		e.metrics.IncrementDegraded("default_cap")
	}
}
