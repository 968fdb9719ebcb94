package server

import (
	"strings"

	"github.com/Amarendra0207/Agentic-Travel/pkg/agent"
)

// QueryRequest is the body of POST /query. Query and Question are synonyms; Query wins when both are set.
type QueryRequest struct {
	Query             string `json:"query"`
	Question          string `json:"question"`
	BudgetPreference  string `json:"budget_preference"`
	StartLocationCode string `json:"startLocationCode"`
	EndLocationCode   string `json:"endLocationCode"`
	StartCity         string `json:"startCity"`
	EndCity           string `json:"endCity"`
}

// QueryResponse is returned for every run that produced a result.
type QueryResponse struct {
	Answer    string `json:"answer"`
	Status    string `json:"status"`
	Turns     int    `json:"turns"`
	ToolCalls int    `json:"tool_calls"`
	Cancelled bool   `json:"cancelled,omitempty"`
	RunID     string `json:"run_id"`
}

type errorResponse struct {
	Error string `json:"error"`
	RunID string `json:"run_id,omitempty"`
}

// UserText returns the question the caller asked.
func (r QueryRequest) UserText() string {
	if strings.TrimSpace(r.Query) != "" {
		return r.Query
	}
	return r.Question
}

var budgetDisplay = map[agent.BudgetPosture]string{
	agent.PostureCheapest:       "ultra budget-friendly",
	agent.PostureBudgetFriendly: "good value for money",
	agent.PostureLuxurious:      "premium luxury",
}

const closingInstruction = "Please include distance information from airports to attractions " +
	"in your response and tailor all recommendations to my budget preference."

// EnrichQuery appends the budget preference, any airport or city context and the closing
// instruction to the user's question.
func EnrichQuery(req QueryRequest, posture agent.BudgetPosture) string {
	display, ok := budgetDisplay[posture]
	if !ok {
		display = "good value for money"
	}

	var b strings.Builder
	b.WriteString(req.UserText())
	b.WriteString("\n\nBudget Preference: I prefer ")
	b.WriteString(display)
	b.WriteString(" travel options.\n\n")

	var extra []string
	if req.StartLocationCode != "" {
		extra = append(extra, "Starting from airport: "+req.StartLocationCode)
	}
	if req.EndLocationCode != "" {
		extra = append(extra, "Destination airport: "+req.EndLocationCode)
	}
	if req.StartCity != "" {
		extra = append(extra, "Starting city: "+req.StartCity)
	}
	if req.EndCity != "" {
		extra = append(extra, "Destination city: "+req.EndCity)
	}
	if len(extra) > 0 {
		b.WriteString("Additional Context: ")
		b.WriteString(strings.Join(extra, ", "))
		b.WriteString("\n\n")
	}

	b.WriteString(closingInstruction)
	return b.String()
}
