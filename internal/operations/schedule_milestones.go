package operations

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"realty-engine/internal/milestone"
	"realty-engine/internal/model"
)

type scheduleMilestonesProps struct {
	TotalPrice        float64              `json:"total_price"`
	DownPaymentAmount float64              `json:"down_payment_amount"`
	StartDate         string               `json:"start_date"`
	Template          []milestone.Template `json:"template,omitempty"`
}

// MilestoneView is a milestone with its dates rendered for the wire.
type MilestoneView struct {
	Label              string  `json:"label"`
	PercentOfTotal     float64 `json:"percent_of_total"`
	Amount             float64 `json:"amount"`
	MonthsAfterStart   int     `json:"months_after_start"`
	DueDate            string  `json:"due_date"`
	DueDateAlternate   string  `json:"due_date_alternate,omitempty"`
	AlternateCalendar  string  `json:"alternate_calendar,omitempty"`
	AlternateMonthName string  `json:"alternate_month_name,omitempty"`
	ConversionError    string  `json:"conversion_error,omitempty"`
}

type ScheduleResult struct {
	Milestones     []MilestoneView `json:"milestones"`
	TotalPrice     float64         `json:"total_price"`
	TotalScheduled float64         `json:"total_scheduled"`
	Discrepancy    float64         `json:"discrepancy"`
}

type ScheduleMilestonesHandler struct {
	converter milestone.Converter
}

func (h *ScheduleMilestonesHandler) Validate(instr *model.Instruction) []model.CalculationMessage {
	var props scheduleMilestonesProps
	if err := decodeProps(instr.Properties, &props); err != nil {
		return invalidProperties(err)
	}
	if _, ok := parseDate(props.StartDate); !ok {
		return []model.CalculationMessage{model.Critical(CodeInvalidInput,
			fmt.Sprintf("start_date %q is not a valid YYYY-MM-DD date", props.StartDate))}
	}
	return nil
}

func (h *ScheduleMilestonesHandler) Execute(instr *model.Instruction) (any, []model.CalculationMessage) {
	var props scheduleMilestonesProps
	_ = decodeProps(instr.Properties, &props)
	start, _ := parseDate(props.StartDate)

	plan, err := milestone.Schedule(milestone.Request{
		TotalPrice:        props.TotalPrice,
		DownPaymentAmount: props.DownPaymentAmount,
		StartDate:         start,
		Template:          props.Template,
	}, h.converter)
	if err != nil {
		return nil, []model.CalculationMessage{model.Critical(CodeInvalidInput, err.Error())}
	}

	var msgs []model.CalculationMessage
	res := ScheduleResult{
		Milestones:     make([]MilestoneView, 0, len(plan.Milestones)),
		TotalPrice:     plan.TotalPrice,
		TotalScheduled: plan.TotalScheduled,
		Discrepancy:    plan.Discrepancy,
	}
	for _, m := range plan.Milestones {
		v := MilestoneView{
			Label:            m.Label,
			PercentOfTotal:   m.PercentOfTotal,
			Amount:           m.Amount,
			MonthsAfterStart: m.MonthsAfterStart,
			DueDate:          m.DueDateGregorian.Format(time.DateOnly),
		}
		if alt := m.DueDateAlternate; alt != nil {
			v.DueDateAlternate = alt.String()
			v.AlternateCalendar = alt.Calendar
			v.AlternateMonthName = alt.MonthName()
		}
		if m.ConversionError != nil {
			v.ConversionError = m.ConversionError.Error()
			msgs = append(msgs, model.Warning(CodeCalendarConversionFailed, m.ConversionError.Error()))
		}
		res.Milestones = append(res.Milestones, v)
	}

	if plan.Discrepancy != 0 {
		msgs = append(msgs, model.Warning(CodeMilestoneTotalMismatch, fmt.Sprintf(
			"Scheduled total %s differs from price %s by %s",
			decimal.NewFromFloat(plan.TotalScheduled).StringFixed(2),
			decimal.NewFromFloat(plan.TotalPrice).StringFixed(2),
			decimal.NewFromFloat(plan.Discrepancy).StringFixed(2),
		)))
	}
	return res, msgs
}
