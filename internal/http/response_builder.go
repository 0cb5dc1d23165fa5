package http

import "finance/internal/core"

type transactionResponse struct {
	ID       int64   `json:"id"`
	Date     string  `json:"date"`
	Type     string  `json:"type"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Note     string  `json:"note"`
}

type transactionListResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
}

type summaryResponse struct {
	TotalIncome  float64 `json:"total_income"`
	TotalExpense float64 `json:"total_expense"`
	Balance      float64 `json:"balance"`
}

type goalResponse struct {
	Period string   `json:"period"`
	Amount *float64 `json:"amount"`
	Set    bool     `json:"set"`
}

type progressResponse struct {
	Period     string   `json:"period"`
	GoalAmount *float64 `json:"goal_amount"`
	Spent      float64  `json:"spent"`
	Remaining  float64  `json:"remaining"`
	Status     string   `json:"status"`
	Message    string   `json:"message"`
	Start      string   `json:"start,omitempty"`
	End        string   `json:"end,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:       t.ID,
		Date:     t.Date.String(),
		Type:     t.Type.String(),
		Category: t.Category,
		Amount:   t.Amount,
		Note:     t.Note,
	}
}

// newTransactionList keeps the store order and never encodes null.
func newTransactionList(list []core.Transaction) transactionListResponse {
	out := make([]transactionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, newTransactionResponse(t))
	}
	return transactionListResponse{Transactions: out, Count: len(out)}
}

func newSummaryResponse(s core.Summary) summaryResponse {
	return summaryResponse{
		TotalIncome:  s.TotalIncome,
		TotalExpense: s.TotalExpense,
		Balance:      s.Balance,
	}
}

func newGoalResponse(period core.PeriodType, amount float64, ok bool) goalResponse {
	resp := goalResponse{Period: period.String(), Set: ok}
	if ok {
		resp.Amount = &amount
	}
	return resp
}

func newProgressResponse(p core.GoalProgress) progressResponse {
	resp := progressResponse{
		Period:     p.Period.String(),
		GoalAmount: p.GoalAmount,
		Spent:      p.Spent,
		Remaining:  p.Remaining,
		Status:     string(p.Status),
		Message:    p.Message,
	}
	if !p.Start.IsEmpty() {
		resp.Start = p.Start.String()
		resp.End = p.End.String()
	}
	return resp
}
