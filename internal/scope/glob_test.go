package scope

import "testing"

func TestMatchesGlob(t *testing.T) {
	tests := []struct {
		path     string
		include  []string
		exclude  []string
		expected bool
	}{
		{"/app/src/main.ts", []string{"src/**/*.ts"}, nil, true},
		{"/app/src/agents/chat.ts", []string{"src/**/*.ts"}, nil, true},
		{"/app/lib/util.ts", []string{"src/**/*.ts"}, nil, false},
		{"/app/src/main.ts", []string{"**/*.ts"}, nil, true},
		{"/app/src/main.test.ts", []string{"src/**/*.ts"}, []string{"**/*.test.ts"}, false},
		{"/app/src/main.ts", []string{"src/**/*.ts"}, []string{"**/*.test.ts"}, true},
		{"/app/src/main.ts", nil, nil, false},
		{"main.ts", []string{"main.ts"}, nil, true},
		{"/app/src/deep/nested/agent.ts", []string{"src/**"}, nil, true},
	}

	for _, tt := range tests {
		got := MatchesGlob(tt.path, tt.include, tt.exclude)
		if got != tt.expected {
			t.Errorf("MatchesGlob(%q, %v, %v) = %v, want %v",
				tt.path, tt.include, tt.exclude, got, tt.expected)
		}
	}
}
