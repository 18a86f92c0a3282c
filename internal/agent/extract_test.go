package agent

import "testing"

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  string
		found bool
	}{
		{
			name:  "delimiter tags",
			raw:   "Here you go:\n<json>\n{\"a\": 1}\n</json>\nDone.",
			want:  "{\"a\": 1}",
			found: true,
		},
		{
			name:  "code fence with language tag",
			raw:   "```json\n{\"a\": 1}\n```",
			want:  "{\"a\": 1}",
			found: true,
		},
		{
			name:  "bare fence",
			raw:   "```\n{\"a\": 1}\n```",
			want:  "{\"a\": 1}",
			found: true,
		},
		{
			name:  "bare braces in prose",
			raw:   "The result is {\"a\": 1} as requested.",
			want:  "{\"a\": 1}",
			found: true,
		},
		{
			name:  "delimiters preferred over fence",
			raw:   "```json\n{\"fenced\": true}\n```\n<json>{\"tagged\": true}</json>",
			want:  "{\"tagged\": true}",
			found: true,
		},
		{
			name:  "nested braces take outermost pair",
			raw:   "{\"outer\": {\"inner\": 1}}",
			want:  "{\"outer\": {\"inner\": 1}}",
			found: true,
		},
		{
			name:  "no json at all",
			raw:   "I cannot produce that.",
			found: false,
		},
		{
			name:  "unclosed tag falls through to braces",
			raw:   "<json>{\"a\": 1}",
			want:  "{\"a\": 1}",
			found: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := extractJSONObject(tt.raw)
			if found != tt.found {
				t.Fatalf("extractJSONObject() found = %v, want %v", found, tt.found)
			}
			if found && got != tt.want {
				t.Errorf("extractJSONObject() = %q, want %q", got, tt.want)
			}
		})
	}
}
