package core

import "sort"

// Totals summarizes a ledger snapshot. Balance is always Income - Expense.
type Totals struct {
	Income  Money
	Expense Money
	Balance Money
}

// CategoryAmount represents an expense magnitude aggregated by category.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// MonthAmount is the net signed sum of one calendar month.
type MonthAmount struct {
	Year   int
	Month  int // 1-12
	Label  string
	Amount Money
}

// Summarize computes income, expense and balance over the whole ledger.
func Summarize(l Ledger) Totals {
	var income, expense int64
	for _, tx := range l {
		s := tx.Signed().Cents
		if s > 0 {
			income += s
		} else {
			expense -= s
		}
	}
	return Totals{
		Income:  Money{Cents: income},
		Expense: Money{Cents: expense},
		Balance: Money{Cents: income - expense},
	}
}

// ByCategory sums expense rows per category, in category display order.
// Categories without expenses are left out.
func ByCategory(l Ledger) []CategoryAmount {
	sums := make(map[Category]int64)
	for _, tx := range l {
		if tx.Type != Expense {
			continue
		}
		sums[tx.Category] += tx.Amount.Abs().Cents
	}
	out := make([]CategoryAmount, 0, len(sums))
	for _, c := range Categories() {
		if v, ok := sums[c]; ok {
			out = append(out, CategoryAmount{Category: c, Amount: Money{Cents: v}})
		}
	}
	return out
}

// ByMonth groups by calendar month and sums signed amounts, so income and
// expenses of the same month net out. Months are in chronological order.
func ByMonth(l Ledger) []MonthAmount {
	type key struct{ year, month int }
	sums := make(map[key]int64)
	for _, tx := range l {
		k := key{tx.Date.Year(), int(tx.Date.Month())}
		sums[k] += tx.Signed().Cents
	}
	out := make([]MonthAmount, 0, len(sums))
	for k, v := range sums {
		out = append(out, MonthAmount{
			Year:   k.year,
			Month:  k.month,
			Label:  NewDate(k.year, k.month, 1).MonthLabel(),
			Amount: Money{Cents: v},
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}
