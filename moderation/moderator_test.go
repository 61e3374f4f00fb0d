package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

// The dictionary uses specific words to avoid partial collisions
// (e.g. "he" inside "The").
func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	dictionary := []string{"badger", "snake", "笨蛋"}
	mod, err := NewModerator(dictionary, replacementChar)
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
		masked   bool
	}{
		{
			name:     "Simple word and space preservation",
			input:    "The badger is here",
			expected: "The ****** is here",
			masked:   true,
		},
		{
			name:     "Multiple occurrences",
			input:    "badger badger badger",
			expected: "****** ****** ******",
			masked:   true,
		},
		{
			name:     "Leet speak and internal punctuation",
			input:    "Look at B.4.d.g.3r !",
			expected: "Look at ********** !",
			masked:   true,
		},
		{
			name:     "Uppercase noise",
			input:    "S-N-A-K-E is fine",
			expected: "********* is fine",
			masked:   true,
		},
		{
			name:     "Chinese word",
			input:    "你这个笨蛋啊",
			expected: "你这个**啊",
			masked:   true,
		},
		{
			name:     "Clean text untouched",
			input:    "nothing to see here",
			expected: "nothing to see here",
			masked:   false,
		},
		{
			name:     "Empty input",
			input:    "",
			expected: "",
			masked:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, masked := mod.Censor(tt.input)
			require.Equal(t, tt.expected, got)
			require.Equal(t, tt.masked, masked)
		})
	}
}

func TestLoadWordlists_Embedded(t *testing.T) {
	req := require.New(t)

	data, err := LoadWordlists()

	req.NoError(err)
	req.Contains(data.Languages, "en")
	req.Contains(data.Languages, "zh")
	req.Contains(data.Words, "idiot")
	req.Contains(data.Words, "笨蛋")
	// Comment lines never become words
	req.NotContains(data.Words, "# english blacklist")
}
