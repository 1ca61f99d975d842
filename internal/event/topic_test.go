package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicMatches(t *testing.T) {
	tests := []struct {
		topic   Topic
		pattern Topic
		want    bool
	}{
		{"history.pushed", "history.pushed", true},
		{"history.pushed", "history.undone", false},
		{"history.pushed", "history.*", true},
		{"history.group.cleared", "history.*", false},
		{"history.group.cleared", "history.**", true},
		{"history", "history.**", true},
		{"history.pushed", "**", true},
		{"history.pushed", "*.pushed", true},
		{"history.pushed", "history", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.topic)+"~"+string(tt.pattern), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.topic.Matches(tt.pattern))
		})
	}
}

func TestTopicHelpers(t *testing.T) {
	tp := Topic("history.group.cleared")
	assert.Equal(t, []string{"history", "group", "cleared"}, tp.Segments())
	assert.True(t, tp.IsValid())
	assert.False(t, tp.IsWildcard())

	assert.False(t, Topic("").IsValid())
	assert.False(t, Topic("history..pushed").IsValid())
	assert.True(t, Topic("history.*").IsWildcard())
}
