package emotion

import (
	"testing"

	"aiteddy-hq/guardian/pkg/safety/rules"
)

func TestAnalyzer_Sentiment(t *testing.T) {
	analyzer := NewAnalyzer(rules.Default())

	tests := []struct {
		name         string
		text         string
		wantPositive bool
		wantSign     int
	}{
		{"positive", "I am so happy and excited, this is fun!", true, 1},
		{"negative", "That is sad and terrible, I am upset.", false, -1},
		{"neutral", "The box is on the table.", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := analyzer.Analyze(tt.text, 6)
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			if result.IsPositive != tt.wantPositive {
				t.Errorf("IsPositive = %v, want %v (pos %v)", result.IsPositive, tt.wantPositive, result.PositiveScore)
			}
			switch {
			case tt.wantSign > 0 && result.OverallSentiment <= 0,
				tt.wantSign < 0 && result.OverallSentiment >= 0,
				tt.wantSign == 0 && result.OverallSentiment != 0:
				t.Errorf("OverallSentiment = %v, want sign %d", result.OverallSentiment, tt.wantSign)
			}
		})
	}
}

func TestAnalyzer_EmotionScores(t *testing.T) {
	analyzer := NewAnalyzer(rules.Default())

	result, err := analyzer.Analyze("I am so happy and excited, this is fun!", 6)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.EmotionScores) != 6 {
		t.Errorf("EmotionScores has %d classes, want 6", len(result.EmotionScores))
	}
	if got := result.EmotionScores["joy"]; got != 0.6 {
		t.Errorf("joy = %v, want 0.6", got)
	}
	if got := result.EmotionScores["fear"]; got != 0 {
		t.Errorf("fear = %v, want 0", got)
	}
}

func TestAnalyzer_AgeAppropriateness(t *testing.T) {
	analyzer := NewAnalyzer(rules.Default())

	complex := "We will investigate photosynthesis today together"
	young, _ := analyzer.Analyze(complex, 3)
	older, _ := analyzer.Analyze(complex, 10)
	if young.AgeAppropriateness >= older.AgeAppropriateness {
		t.Errorf("age 3 score %v should be below age 10 score %v", young.AgeAppropriateness, older.AgeAppropriateness)
	}

	simple, _ := analyzer.Analyze("The cat sat on the mat.", 3)
	if simple.AgeAppropriateness != 1 {
		t.Errorf("simple text appropriateness = %v, want 1", simple.AgeAppropriateness)
	}

	fearful := "I am scared and afraid and worried"
	toddler, _ := analyzer.Analyze(fearful, 3)
	if toddler.AgeAppropriateness != 0.5 {
		t.Errorf("fear at age 3 = %v, want 0.5", toddler.AgeAppropriateness)
	}
	school, _ := analyzer.Analyze(fearful, 8)
	if school.AgeAppropriateness != 1 {
		t.Errorf("fear at age 8 = %v, want 1", school.AgeAppropriateness)
	}
}

func TestAnalyzer_Triggers(t *testing.T) {
	analyzer := NewAnalyzer(rules.Default())

	result, err := analyzer.Analyze("You have no friends and you are ugly", 7)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"body_image", "social_rejection"}
	if len(result.PotentialTriggers) != len(want) {
		t.Fatalf("PotentialTriggers = %v, want %v", result.PotentialTriggers, want)
	}
	for i := range want {
		if result.PotentialTriggers[i] != want[i] {
			t.Errorf("PotentialTriggers[%d] = %q, want %q", i, result.PotentialTriggers[i], want[i])
		}
	}
}

func TestAnalyzer_Recommendations(t *testing.T) {
	analyzer := NewAnalyzer(rules.Default())

	result, _ := analyzer.Analyze("I am scared and afraid and worried", 4)
	if !contains(result.Recommendations, "Fear content detected - inappropriate for young children") {
		t.Errorf("missing fear recommendation: %v", result.Recommendations)
	}
	if !contains(result.Recommendations, "Consider adding more positive, joyful elements") {
		t.Errorf("missing joy recommendation: %v", result.Recommendations)
	}
}

func TestAnalyzer_Journey(t *testing.T) {
	analyzer := NewAnalyzer(rules.Default())

	declining := analyzer.Journey([]string{
		"I love this, it's great!",
		"ok",
		"I am sad and upset",
	}, 7)
	if declining.Trend != TrendDeclining {
		t.Errorf("Trend = %q, want %q", declining.Trend, TrendDeclining)
	}
	if len(declining.Timeline) != 3 {
		t.Errorf("Timeline length = %d, want 3", len(declining.Timeline))
	}
	if !contains(declining.Recommendations, "Conversation sentiment declining - introduce positive elements") {
		t.Errorf("missing decline recommendation: %v", declining.Recommendations)
	}

	short := analyzer.Journey([]string{"hello"}, 7)
	if short.Trend != TrendInsufficientData {
		t.Errorf("Trend = %q, want %q", short.Trend, TrendInsufficientData)
	}
	if short.Stability != 1 {
		t.Errorf("Stability = %v, want 1", short.Stability)
	}

	steady := analyzer.Journey([]string{"a cat", "a dog", "a bird"}, 7)
	if steady.Trend != TrendStable || steady.Stability != 1 {
		t.Errorf("steady journey = %q/%v, want stable/1", steady.Trend, steady.Stability)
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
