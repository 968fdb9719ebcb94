package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Amarendra0207/Agentic-Travel/pkg/agent"
)

// CalculatorTools is the arithmetic a trip budget needs. Everything runs locally.
type CalculatorTools struct{}

type operandsArgs struct {
	A float64 `json:"a" jsonschema_description:"First number."`
	B float64 `json:"b" jsonschema_description:"Second number."`
}

type hotelCostArgs struct {
	PricePerNight float64 `json:"price_per_night" jsonschema_description:"Nightly room rate."`
	TotalDays     int     `json:"total_days" jsonschema_description:"Number of nights in the hotel."`
}

func (a hotelCostArgs) Validate() error {
	if a.TotalDays < 0 || a.PricePerNight < 0 {
		return errors.New("price_per_night and total_days must not be negative")
	}
	return nil
}

type expensesArgs struct {
	Costs []float64 `json:"costs" jsonschema_description:"Individual costs to add up."`
}

type dailyBudgetArgs struct {
	TotalCost float64 `json:"total_cost" jsonschema_description:"Total trip budget."`
	Days      int     `json:"days" jsonschema_description:"Number of travel days."`
}

func (a dailyBudgetArgs) Validate() error {
	if a.Days <= 0 {
		return errors.New("days must be greater than zero")
	}
	return nil
}

type expressionArgs struct {
	Expression string `json:"expression" jsonschema_description:"Expression in the form '<number> <operator> <number>'."`
}

func (c CalculatorTools) Name() string { return "calculator" }

func (c CalculatorTools) Tools() []agent.Tool {
	return []agent.Tool{
		newTool("add", "Add two numbers.", func(_ context.Context, a operandsArgs) (string, error) {
			return formatNumber(a.A + a.B), nil
		}),
		newTool("multiply", "Multiply two numbers.", func(_ context.Context, a operandsArgs) (string, error) {
			return formatNumber(a.A * a.B), nil
		}),
		newTool("estimate_total_hotel_cost", "Total hotel cost for a stay: nightly price times nights.", c.hotelCost),
		newTool("calculate_total_expense", "Sum a list of expenses.", c.totalExpense),
		newTool("calculate_daily_expense_budget", "Split a total trip budget evenly across the travel days.", c.dailyBudget),
		newTool("evaluate_expression", "Evaluates simple math expressions such as '2 + 2' or '5 * 3'.", c.evaluate),
	}
}

func (c CalculatorTools) hotelCost(_ context.Context, a hotelCostArgs) (string, error) {
	return formatNumber(a.PricePerNight * float64(a.TotalDays)), nil
}

func (c CalculatorTools) totalExpense(_ context.Context, a expensesArgs) (string, error) {
	var sum float64
	for _, cost := range a.Costs {
		sum += cost
	}
	return formatNumber(sum), nil
}

func (c CalculatorTools) dailyBudget(_ context.Context, a dailyBudgetArgs) (string, error) {
	return formatNumber(a.TotalCost / float64(a.Days)), nil
}

func (c CalculatorTools) evaluate(_ context.Context, a expressionArgs) (string, error) {
	result, err := Evaluate(a.Expression)
	if err != nil {
		return "", err
	}
	return formatNumber(result), nil
}

// Evaluate computes a binary expression such as "12.5 * 4".
func Evaluate(expression string) (float64, error) {
	fields := strings.Fields(strings.TrimSpace(expression))
	if len(fields) != 3 {
		return 0, fmt.Errorf("expected format '<number> <op> <number>'")
	}

	left, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid left operand: %w", err)
	}
	right, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid right operand: %w", err)
	}

	switch fields[1] {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*", "x", "X":
		return left * right, nil
	case "/":
		if math.Abs(right) < 1e-12 {
			return 0, fmt.Errorf("division by zero")
		}
		return left / right, nil
	default:
		return 0, fmt.Errorf("unsupported operator %q", fields[1])
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
