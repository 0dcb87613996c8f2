package conversation

import (
	"testing"
	"time"

	"aiteddy-hq/guardian/pkg/safety/model"
	"aiteddy-hq/guardian/pkg/safety/rules"
)

func TestAnalyzer_Analyze(t *testing.T) {
	analyzer := NewAnalyzer(rules.Default())

	tests := []struct {
		name         string
		text         string
		cc           model.ConversationContext
		wantSafe     bool
		wantCritical []string
		wantConcern  string
	}{
		{
			name:     "first turn",
			text:     "Let's count the ducks together!",
			cc:       model.ConversationContext{ChildAge: 5},
			wantSafe: true,
		},
		{
			name:         "secrecy in reply",
			text:         "This is our little secret, don't tell your parents.",
			cc:           model.ConversationContext{ChildAge: 7},
			wantSafe:     false,
			wantCritical: []string{"secrecy_request"},
			wantConcern:  ConcernPrivacyRisk,
		},
		{
			name: "probing in history",
			text: "Okay!",
			cc: model.ConversationContext{
				ChildAge:            8,
				ConversationHistory: []string{"Where do you live?", "Hi there"},
			},
			wantSafe:     false,
			wantCritical: []string{"personal_info_request"},
		},
		{
			name: "repeated loneliness",
			text: "I am here to play with you.",
			cc: model.ConversationContext{
				ChildAge:            6,
				ConversationHistory: []string{"I feel so lonely", "I am alone again", "Can we play a game?"},
			},
			wantSafe:    true,
			wantConcern: "repetitive_loneliness",
		},
		{
			name: "session too long",
			text: "Let's keep going!",
			cc: model.ConversationContext{
				ChildAge:        4,
				SessionDuration: 20 * time.Minute,
			},
			wantSafe:    false,
			wantConcern: ConcernLongSession,
		},
		{
			name: "long session from interaction count",
			text: "Let's keep going!",
			cc: model.ConversationContext{
				ChildAge:         4,
				InteractionCount: 40,
			},
			wantSafe:    false,
			wantConcern: ConcernLongSession,
		},
		{
			name: "repeated reply",
			text: "Let's count the ducks together!",
			cc: model.ConversationContext{
				ChildAge:            5,
				PreviousAIResponses: []string{"Hello there!", "let's count the ducks together!"},
			},
			wantSafe:    true,
			wantConcern: ConcernRepeatedReply,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := analyzer.Analyze(tt.text, tt.cc)
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			if result.ContextSafe != tt.wantSafe {
				t.Errorf("ContextSafe = %v, want %v (concerns %v, flow %v)",
					result.ContextSafe, tt.wantSafe, result.BehavioralConcerns, result.ConversationFlowScore)
			}
			if len(result.CriticalConcerns) != len(tt.wantCritical) {
				t.Fatalf("CriticalConcerns = %v, want %v", result.CriticalConcerns, tt.wantCritical)
			}
			for i := range tt.wantCritical {
				if result.CriticalConcerns[i] != tt.wantCritical[i] {
					t.Errorf("CriticalConcerns[%d] = %q, want %q", i, result.CriticalConcerns[i], tt.wantCritical[i])
				}
			}
			if tt.wantConcern != "" && !contains(result.BehavioralConcerns, tt.wantConcern) {
				t.Errorf("BehavioralConcerns = %v, want %q", result.BehavioralConcerns, tt.wantConcern)
			}
		})
	}
}

func TestAnalyzer_FlowPenalizesDismissiveReplies(t *testing.T) {
	analyzer := NewAnalyzer(rules.Default())
	cc := model.ConversationContext{ChildAge: 6}

	polite, _ := analyzer.Analyze("That sounds fun, tell me more!", cc)
	rude, _ := analyzer.Analyze("Whatever, I don't care.", cc)

	if polite.ConversationFlowScore != 1 {
		t.Errorf("polite flow = %v, want 1", polite.ConversationFlowScore)
	}
	if rude.ConversationFlowScore >= polite.ConversationFlowScore {
		t.Errorf("rude flow %v should be below polite flow %v", rude.ConversationFlowScore, polite.ConversationFlowScore)
	}
}

func TestAnalyzer_TopicAppropriateness(t *testing.T) {
	analyzer := NewAnalyzer(rules.Default())

	result, err := analyzer.Analyze("Let's talk about a gun and a knife", model.ConversationContext{ChildAge: 6})
	if err != nil {
		t.Fatal(err)
	}
	if result.TopicAppropriateness != 0.5 {
		t.Errorf("TopicAppropriateness = %v, want 0.5", result.TopicAppropriateness)
	}
}

func TestAnalyzer_DoesNotMutateContext(t *testing.T) {
	analyzer := NewAnalyzer(rules.Default())
	history := []string{"Hello", "What's your favorite animal?"}
	cc := model.ConversationContext{ChildAge: 5, ConversationHistory: history}

	if _, err := analyzer.Analyze("I like cats!", cc); err != nil {
		t.Fatal(err)
	}
	if history[0] != "Hello" || len(cc.ConversationHistory) != 2 {
		t.Errorf("history mutated: %v", cc.ConversationHistory)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
