package milestone

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"realty-engine/internal/calendar"
)

type mockConverter struct {
	mock.Mock
}

func (m *mockConverter) Convert(t time.Time) (AlternateDate, error) {
	args := m.Called(t)
	return args.Get(0).(AlternateDate), args.Error(1)
}

var start = time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

func TestScheduleDefaultTemplate(t *testing.T) {
	plan, err := Schedule(Request{
		TotalPrice:        2_000_000,
		DownPaymentAmount: 200_000,
		StartDate:         start,
	}, calendar.Hijri{})
	require.NoError(t, err)
	require.Len(t, plan.Milestones, 5)

	first := plan.Milestones[0]
	assert.Equal(t, "Down Payment", first.Label)
	assert.Equal(t, 200_000.0, first.Amount)
	assert.True(t, first.DueDateGregorian.Equal(start))

	wantAmounts := []float64{200_000, 300_000, 500_000, 600_000, 400_000}
	for i, m := range plan.Milestones {
		assert.Equal(t, wantAmounts[i], m.Amount, m.Label)
		assert.True(t, m.DueDateGregorian.Equal(start.AddDate(0, m.MonthsAfterStart, 0)), m.Label)
		if i > 0 {
			assert.Greater(t, m.MonthsAfterStart, plan.Milestones[i-1].MonthsAfterStart)
		}
		require.NotNil(t, m.DueDateAlternate, m.Label)
		assert.NoError(t, m.ConversionError)

		want, err := calendar.ToHijri(m.DueDateGregorian)
		require.NoError(t, err)
		assert.Equal(t, want, *m.DueDateAlternate)
	}

	assert.Equal(t, 2_000_000.0, plan.TotalScheduled)
	assert.Zero(t, plan.Discrepancy)
	assert.Zero(t, plan.ConversionFailures())
}

func TestScheduleDownPaymentIsNotDeducted(t *testing.T) {
	plan, err := Schedule(Request{
		TotalPrice:        1_000_000,
		DownPaymentAmount: 250_000,
		StartDate:         start,
	}, calendar.Hijri{})
	require.NoError(t, err)

	// Later milestones still take their full share of the total price.
	assert.Equal(t, 150_000.0, plan.Milestones[1].Amount)
	assert.Equal(t, 1_150_000.0, plan.TotalScheduled)
	assert.Equal(t, 150_000.0, plan.Discrepancy)
}

func TestScheduleCustomTemplate(t *testing.T) {
	tmpl := []Template{
		{Label: "Booking", PercentOfTotal: 10, MonthsAfterStart: 0},
		{Label: "Handover", PercentOfTotal: 90, MonthsAfterStart: 12},
	}
	plan, err := Schedule(Request{
		TotalPrice:        800_000,
		DownPaymentAmount: 80_000,
		StartDate:         start,
		Template:          tmpl,
	}, calendar.Hijri{})
	require.NoError(t, err)

	require.Len(t, plan.Milestones, 2)
	assert.Equal(t, 720_000.0, plan.Milestones[1].Amount)
	assert.Equal(t, time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), plan.Milestones[1].DueDateGregorian)
	assert.Zero(t, plan.Discrepancy)
}

func TestScheduleConverterFailureIsPerMilestone(t *testing.T) {
	boom := errors.New("outside table")
	foundation := AddMonths(start, 3)

	conv := new(mockConverter)
	conv.On("Convert", foundation).Return(AlternateDate{}, boom).Once()
	conv.On("Convert", mock.MatchedBy(func(t time.Time) bool { return !t.Equal(foundation) })).
		Return(AlternateDate{Calendar: "test", Year: 1, Month: 1, Day: 1}, nil)

	plan, err := Schedule(Request{
		TotalPrice:        1_000_000,
		DownPaymentAmount: 100_000,
		StartDate:         start,
	}, conv)
	require.NoError(t, err)
	require.Len(t, plan.Milestones, 5)

	assert.Equal(t, 1, plan.ConversionFailures())
	failed := plan.Milestones[1]
	assert.Nil(t, failed.DueDateAlternate)
	assert.ErrorIs(t, failed.ConversionError, boom)
	assert.Contains(t, failed.ConversionError.Error(), "Foundation")
	assert.Equal(t, 150_000.0, failed.Amount)

	for i, m := range plan.Milestones {
		if i == 1 {
			continue
		}
		assert.NotNil(t, m.DueDateAlternate, m.Label)
		assert.NoError(t, m.ConversionError, m.Label)
	}
	conv.AssertNumberOfCalls(t, "Convert", 5)
}

func TestScheduleConverterFunc(t *testing.T) {
	calls := 0
	conv := ConverterFunc(func(t time.Time) (AlternateDate, error) {
		calls++
		return AlternateDate{Calendar: "noop"}, nil
	})

	plan, err := Schedule(Request{TotalPrice: 1, DownPaymentAmount: 0, StartDate: start}, conv)
	require.NoError(t, err)
	assert.Equal(t, 5, calls)
	assert.Equal(t, "noop", plan.Milestones[4].DueDateAlternate.Calendar)
}

func TestScheduleRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		conv Converter
	}{
		{"nil converter", Request{TotalPrice: 1, StartDate: start}, nil},
		{"zero price", Request{TotalPrice: 0, StartDate: start}, calendar.Hijri{}},
		{"negative price", Request{TotalPrice: -10, StartDate: start}, calendar.Hijri{}},
		{"nan price", Request{TotalPrice: math.NaN(), StartDate: start}, calendar.Hijri{}},
		{"negative down payment", Request{TotalPrice: 1, DownPaymentAmount: -1, StartDate: start}, calendar.Hijri{}},
		{"missing start", Request{TotalPrice: 1}, calendar.Hijri{}},
		{"first not at zero", Request{TotalPrice: 1, StartDate: start, Template: []Template{
			{Label: "a", MonthsAfterStart: 1},
		}}, calendar.Hijri{}},
		{"months not increasing", Request{TotalPrice: 1, StartDate: start, Template: []Template{
			{Label: "a", MonthsAfterStart: 0},
			{Label: "b", PercentOfTotal: 50, MonthsAfterStart: 6},
			{Label: "c", PercentOfTotal: 50, MonthsAfterStart: 6},
		}}, calendar.Hijri{}},
		{"negative percent", Request{TotalPrice: 1, StartDate: start, Template: []Template{
			{Label: "a", MonthsAfterStart: 0},
			{Label: "b", PercentOfTotal: -5, MonthsAfterStart: 6},
		}}, calendar.Hijri{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Schedule(tt.req, tt.conv)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestScheduleDeterministic(t *testing.T) {
	req := Request{TotalPrice: 3_333_333.33, DownPaymentAmount: 333_333.33, StartDate: start}
	a, err := Schedule(req, calendar.Hijri{})
	require.NoError(t, err)
	b, err := Schedule(req, calendar.Hijri{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		in   time.Time
		n    int
		want time.Time
	}{
		{time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC), 3, time.Date(2025, time.November, 30, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, time.November, 15, 9, 30, 0, 0, time.UTC), 2, time.Date(2026, time.January, 15, 9, 30, 0, 0, time.UTC)},
		{time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), 0, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC), 24, time.Date(2027, time.May, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got := AddMonths(tt.in, tt.n)
		assert.True(t, tt.want.Equal(got), "%s + %d = %s, want %s", tt.in, tt.n, got, tt.want)
	}
}
