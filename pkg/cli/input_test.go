package cli

import (
	"strings"
	"testing"

	"aiteddy-hq/guardian/pkg/safety/model"
)

func TestReadItems(t *testing.T) {
	defaults := model.ConversationContext{ChildAge: 7}

	tests := []struct {
		name     string
		input    string
		wantText []string
		wantAges []int
		wantErr  bool
	}{
		{
			name:     "plain lines",
			input:    "Hello there!\n\n# comment\nLet's read a story.\n",
			wantText: []string{"Hello there!", "Let's read a story."},
			wantAges: []int{7, 7},
		},
		{
			name:     "json items",
			input:    `{"text": "Count with me!", "context": {"child_age": 4, "session_id": "s1"}}` + "\n" + `{"text": "No context here"}`,
			wantText: []string{"Count with me!", "No context here"},
			wantAges: []int{4, 7},
		},
		{
			name:    "broken json",
			input:   `{"text": "oops"`,
			wantErr: true,
		},
		{
			name:    "json without text",
			input:   `{"context": {"child_age": 5}}`,
			wantErr: true,
		},
		{
			name:  "empty",
			input: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			texts, contexts, err := ReadItems(strings.NewReader(tt.input), defaults)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadItems() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(texts) != len(tt.wantText) || len(contexts) != len(texts) {
				t.Fatalf("got %d texts / %d contexts, want %d", len(texts), len(contexts), len(tt.wantText))
			}
			for i := range texts {
				if texts[i] != tt.wantText[i] {
					t.Errorf("texts[%d] = %q, want %q", i, texts[i], tt.wantText[i])
				}
				if contexts[i].ChildAge != tt.wantAges[i] {
					t.Errorf("contexts[%d].ChildAge = %d, want %d", i, contexts[i].ChildAge, tt.wantAges[i])
				}
			}
		})
	}
}
