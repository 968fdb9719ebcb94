package agent

import (
	"strings"

	"github.com/Amarendra0207/Agentic-Travel/pkg/models"
)

// BudgetPosture selects the travel-budget instruction used for a run.
type BudgetPosture string

const (
	PostureCheapest       BudgetPosture = "cheapest"
	PostureBudgetFriendly BudgetPosture = "budget_friendly"
	PostureLuxurious      BudgetPosture = "luxurious"
)

const basePrompt = `You are a travel planning assistant. Use the available tools to look up real information
(attractions, restaurants, activities, transportation, weather, currency rates, distances and costs) instead of guessing.
Produce a complete day-by-day itinerary with recommended places, where to stay with approximate per-night costs,
how to get around, a detailed cost breakdown with a per-day budget, and the weather outlook. Answer in clean Markdown.`

var postureInstructions = map[BudgetPosture]string{
	PostureCheapest: basePrompt + `

Budget posture: CHEAPEST. The traveller wants the lowest possible total cost. Prefer hostels, dorms and budget guesthouses,
street food and local markets, public transport and walking, and free attractions. Call out every way to save money and
keep all estimates at the low end.`,
	PostureBudgetFriendly: basePrompt + `

Budget posture: BUDGET FRIENDLY. The traveller wants good value for money. Prefer well-reviewed mid-range hotels,
popular local restaurants, a mix of public transport and occasional taxis, and a balance of free and paid attractions.
Keep estimates realistic and mention where a small splurge is worth it.`,
	PostureLuxurious: basePrompt + `

Budget posture: LUXURIOUS. The traveller wants a premium experience. Prefer five-star hotels and resorts, fine dining,
private transfers and guided tours, and exclusive experiences. Emphasise comfort and quality over cost while still
giving accurate cost estimates.`,
}

// ParsePosture normalizes free-form input such as "Budget-Friendly". Unknown values map to PostureBudgetFriendly.
func ParsePosture(s string) BudgetPosture {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	p := BudgetPosture(key)
	if _, ok := postureInstructions[p]; ok {
		return p
	}
	return PostureBudgetFriendly
}

// Valid reports whether p is one of the known postures.
func (p BudgetPosture) Valid() bool {
	_, ok := postureInstructions[p]
	return ok
}

// InstructionFor returns the fixed system instruction for p, falling back to the budget_friendly text.
func InstructionFor(p BudgetPosture) string {
	if text, ok := postureInstructions[p]; ok {
		return text
	}
	return postureInstructions[PostureBudgetFriendly]
}

// Compose builds the initial conversation: the posture's system instruction followed by the user's request.
func Compose(p BudgetPosture, userText string) []models.Message {
	return composeWith(InstructionFor, p, userText)
}

func composeWith(instruction func(BudgetPosture) string, p BudgetPosture, userText string) []models.Message {
	return []models.Message{
		models.SystemMessage(instruction(p)),
		models.UserMessage(userText),
	}
}
