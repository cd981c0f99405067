package domain

// MonthsPerYear is the fixed number of value slots per transaction
const MonthsPerYear = 12

// Month pairs a display label with its 1-based calendar value
type Month struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

var monthsOfYear = []Month{
	{Label: "January", Value: 1},
	{Label: "February", Value: 2},
	{Label: "March", Value: 3},
	{Label: "April", Value: 4},
	{Label: "May", Value: 5},
	{Label: "June", Value: 6},
	{Label: "July", Value: 7},
	{Label: "August", Value: 8},
	{Label: "September", Value: 9},
	{Label: "October", Value: 10},
	{Label: "November", Value: 11},
	{Label: "December", Value: 12},
}

// MonthRange is the inclusive [From, To] window of months currently displayed.
// A nil bound means no constraint has been entered yet.
type MonthRange struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

// NewMonthRange builds a fully-bounded range
func NewMonthRange(from, to int) MonthRange {
	return MonthRange{From: &from, To: &to}
}

// Valid reports whether the range is acceptable. A range with a missing
// bound imposes no constraint and passes vacuously.
func (r MonthRange) Valid() bool {
	if r.From == nil || r.To == nil {
		return true
	}
	return *r.From <= *r.To
}

// Complete reports whether both bounds are present and ordered
func (r MonthRange) Complete() bool {
	return r.From != nil && r.To != nil && *r.From <= *r.To
}

// Months returns the visible months in calendar order. Incomplete or
// inverted ranges yield no months.
func (r MonthRange) Months() []Month {
	if !r.Complete() {
		return nil
	}
	months := make([]Month, 0, *r.To-*r.From+1)
	for _, m := range monthsOfYear {
		if m.Value >= *r.From && m.Value <= *r.To {
			months = append(months, m)
		}
	}
	return months
}

// ColumnSpan returns the grid column count: one fixed label column plus one
// column per visible month. Incomplete or inverted ranges collapse to 1.
func (r MonthRange) ColumnSpan() int {
	if !r.Complete() {
		return 1
	}
	return *r.To - *r.From + 2
}
