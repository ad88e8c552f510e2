// Package seed fills a ledger with plausible demo data. It owns no rules of
// its own: every row goes through the same AddTransaction and SetBudget
// entry points as any other caller, and gets the same errors back.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

// Recorder is the part of the ledger the generator writes through.
type Recorder interface {
	AddTransaction(ctx context.Context, txn model.Transaction) (int64, error)
	SetBudget(ctx context.Context, userID, categoryID int64, month time.Time, amount decimal.Decimal) (int64, error)
}

// Plan names the user, account and categories to generate against.
type Plan struct {
	Categories map[string]int64 // by name, see DemoCategories
	UserID     int64
	AccountID  int64
}

// Options control a generator run.
type Options struct {
	Start    time.Time // first day generated
	Progress func(done, total int)
	Months   int
	Seed     int64
}

// Result counts what a run recorded.
type Result struct {
	Transactions int
	Budgets      int
	Rejected     int
}

// DemoCategory is a category the generator knows how to fill.
type DemoCategory struct {
	Name   string
	Type   model.FlowType
	Budget string // monthly budget, empty for none
}

// DemoCategories lists the categories a Plan must resolve.
var DemoCategories = []DemoCategory{
	{Name: "salary", Type: model.FlowIncome},
	{Name: "freelance", Type: model.FlowIncome},
	{Name: "rent", Type: model.FlowExpense, Budget: "1800.00"},
	{Name: "utilities", Type: model.FlowExpense, Budget: "220.00"},
	{Name: "groceries", Type: model.FlowExpense, Budget: "600.00"},
	{Name: "dining", Type: model.FlowExpense, Budget: "250.00"},
	{Name: "transport", Type: model.FlowExpense, Budget: "160.00"},
	{Name: "entertainment", Type: model.FlowExpense, Budget: "120.00"},
}

// spendRule is one kind of purchase that may happen on a day.
type spendRule struct {
	days      []time.Weekday // empty means every day
	category  string
	merchants []string
	chance    float64
	minCents  int64
	maxCents  int64
}

var spendRules = []spendRule{
	{category: "groceries", days: []time.Weekday{time.Wednesday, time.Saturday}, chance: 0.8, minCents: 2500, maxCents: 14000, merchants: []string{"Corner Market", "FreshCo", "Bulk Barn"}},
	{category: "dining", days: []time.Weekday{time.Friday, time.Saturday}, chance: 0.6, minCents: 1800, maxCents: 9000, merchants: []string{"Noodle Bar", "Taqueria", "Pizza Place"}},
	{category: "dining", days: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday}, chance: 0.25, minCents: 900, maxCents: 1800, merchants: []string{"Lunch Counter", "Cafe"}},
	{category: "transport", days: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, chance: 0.5, minCents: 275, maxCents: 2400, merchants: []string{"Transit", "RideShare"}},
	{category: "entertainment", days: []time.Weekday{time.Saturday, time.Sunday}, chance: 0.3, minCents: 1200, maxCents: 6000, merchants: []string{"Cinema", "Bowling", "Concert Hall"}},
}

// Generator produces deterministic demo data for a given seed.
type Generator struct {
	recorder Recorder
	rng      *rand.Rand
}

// New creates a generator writing through recorder.
func New(recorder Recorder, seed int64) *Generator {
	// #nosec G404 - demo data, not security sensitive
	return &Generator{recorder: recorder, rng: rand.New(rand.NewSource(seed))}
}

// Run records opts.Months months of budgets and transactions for plan.
// A rejected row is counted and logged, not fatal; any other error stops
// the run.
func Run(ctx context.Context, recorder Recorder, plan Plan, opts Options) (*Result, error) {
	if opts.Months <= 0 {
		return nil, fmt.Errorf("months must be positive, got %d", opts.Months)
	}
	for _, c := range DemoCategories {
		if _, ok := plan.Categories[c.Name]; !ok {
			return nil, fmt.Errorf("plan is missing category %q", c.Name)
		}
	}

	start := model.MonthOf(opts.Start)
	if opts.Start.IsZero() {
		start = model.MonthOf(time.Now()).AddDate(0, -(opts.Months - 1), 0)
	}
	end := start.AddDate(0, opts.Months, 0)
	total := int(end.Sub(start).Hours() / 24)

	g := New(recorder, opts.Seed)
	result := &Result{}

	for month := start; month.Before(end); month = month.AddDate(0, 1, 0) {
		if err := g.budgets(ctx, plan, month, result); err != nil {
			return result, err
		}
	}

	done := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		for _, txn := range g.Day(plan, d) {
			if err := g.record(ctx, txn, result); err != nil {
				return result, err
			}
		}
		done++
		if opts.Progress != nil {
			opts.Progress(done, total)
		}
	}

	slog.Info("seeded demo data",
		"user_id", plan.UserID,
		"months", opts.Months,
		"transactions", result.Transactions,
		"budgets", result.Budgets,
		"rejected", result.Rejected)
	return result, nil
}

func (g *Generator) budgets(ctx context.Context, plan Plan, month time.Time, result *Result) error {
	for _, c := range DemoCategories {
		if c.Budget == "" {
			continue
		}
		if _, err := g.recorder.SetBudget(ctx, plan.UserID, plan.Categories[c.Name], month, model.MustAmount(c.Budget)); err != nil {
			if rejected(err) {
				result.Rejected++
				slog.Warn("budget rejected", "category", c.Name, "month", month.Format(model.MonthLayout), "error", err)
				continue
			}
			return fmt.Errorf("failed to set %s budget: %w", c.Name, err)
		}
		result.Budgets++
	}
	return nil
}

func (g *Generator) record(ctx context.Context, txn model.Transaction, result *Result) error {
	if _, err := g.recorder.AddTransaction(ctx, txn); err != nil {
		if rejected(err) {
			result.Rejected++
			slog.Warn("transaction rejected", "merchant", txn.Merchant, "error", err)
			return nil
		}
		return fmt.Errorf("failed to add transaction: %w", err)
	}
	result.Transactions++
	return nil
}

// Day returns the transactions generated for one calendar day. Fixed
// events follow the day of month; purchases follow the day of week.
func (g *Generator) Day(plan Plan, day time.Time) []model.Transaction {
	var txns []model.Transaction
	add := func(category string, flow model.FlowType, cents int64, merchant string) {
		txns = append(txns, model.Transaction{
			UserID:     plan.UserID,
			AccountID:  plan.AccountID,
			CategoryID: plan.Categories[category],
			Type:       flow,
			Amount:     model.FromCents(cents),
			Date:       day,
			Merchant:   merchant,
		})
	}

	switch day.Day() {
	case 1:
		add("salary", model.FlowIncome, 320000, "Employer Payroll")
		add("rent", model.FlowExpense, 180000, "Landlord")
	case 5:
		add("utilities", model.FlowExpense, g.between(9000, 21000), "City Power & Water")
	case 15:
		add("salary", model.FlowIncome, 320000, "Employer Payroll")
	}

	if day.Weekday() == time.Sunday && g.rng.Float64() < 0.2 {
		add("freelance", model.FlowIncome, g.between(15000, 90000), "Client Invoice")
	}

	for _, rule := range spendRules {
		if !rule.appliesOn(day.Weekday()) || g.rng.Float64() >= rule.chance {
			continue
		}
		merchant := rule.merchants[g.rng.Intn(len(rule.merchants))]
		add(rule.category, model.FlowExpense, g.between(rule.minCents, rule.maxCents), merchant)
	}
	return txns
}

func (r spendRule) appliesOn(day time.Weekday) bool {
	if len(r.days) == 0 {
		return true
	}
	for _, d := range r.days {
		if d == day {
			return true
		}
	}
	return false
}

// between returns a random number of cents in [lo, hi].
func (g *Generator) between(lo, hi int64) int64 {
	return lo + g.rng.Int63n(hi-lo+1)
}
