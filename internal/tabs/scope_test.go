package tabs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope(t *testing.T) {
	scope, err := NewScope([]string{"https://**", "http://localhost:*/**"})
	require.NoError(t, err)

	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/a/b?c=d", true},
		{"https://example.com", true},
		{"http://localhost:3000/app", true},
		{"http://example.com/", false},
		{"chrome://extensions", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, scope.InScope(tt.url))
		})
	}
}

func TestEmptyScopeMatchesEverything(t *testing.T) {
	scope, err := NewScope(nil)
	require.NoError(t, err)
	assert.True(t, scope.InScope("chrome://newtab"))
}

func TestScopeRejectsInvalidPattern(t *testing.T) {
	_, err := NewScope([]string{"https://[a-"})
	assert.Error(t, err)
}
