package agent

import (
	"testing"

	"github.com/Amarendra0207/Agentic-Travel/pkg/models"
)

func TestInstructionForDistinguishesPostures(t *testing.T) {
	cheap := InstructionFor(PostureCheapest)
	value := InstructionFor(PostureBudgetFriendly)
	lux := InstructionFor(PostureLuxurious)
	if cheap == value || value == lux || cheap == lux {
		t.Fatalf("each posture needs its own instruction")
	}
}

func TestInstructionForUnknownFallsBack(t *testing.T) {
	if InstructionFor("business_class") != InstructionFor(PostureBudgetFriendly) {
		t.Fatalf("unknown posture should use budget_friendly text")
	}
	if InstructionFor("") != InstructionFor(PostureBudgetFriendly) {
		t.Fatalf("empty posture should use budget_friendly text")
	}
}

func TestParsePosture(t *testing.T) {
	cases := map[string]BudgetPosture{
		"cheapest":         PostureCheapest,
		"Budget-Friendly":  PostureBudgetFriendly,
		" budget friendly": PostureBudgetFriendly,
		"LUXURIOUS":        PostureLuxurious,
		"gold":             PostureBudgetFriendly,
		"":                 PostureBudgetFriendly,
	}
	for input, want := range cases {
		if got := ParsePosture(input); got != want {
			t.Fatalf("ParsePosture(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestComposeProducesSystemThenUser(t *testing.T) {
	msgs := Compose(PostureLuxurious, "Five days in Kyoto")
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != models.RoleSystem || msgs[0].Content != InstructionFor(PostureLuxurious) {
		t.Fatalf("unexpected system message %+v", msgs[0])
	}
	if msgs[1].Role != models.RoleUser || msgs[1].Content != "Five days in Kyoto" {
		t.Fatalf("unexpected user message %+v", msgs[1])
	}
}
