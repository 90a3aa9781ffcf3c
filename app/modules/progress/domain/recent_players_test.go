package progressdomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeRecentPlayers(t *testing.T) {
	sessions := []RecentPlayer{
		{UserID: 1, Username: "samus", Activity: "Exploring Norfair"},
		{UserID: 2, Username: "link", Activity: "Dungeon 3"},
	}
	fallback := []RecentPlayer{
		{UserID: 2, Username: "link", Activity: "older"},
		{UserID: 3, Username: "kirby"},
		{UserID: 4, Username: "mario"},
	}

	ids := func(players []RecentPlayer) []UserID {
		out := make([]UserID, len(players))
		for i, p := range players {
			out[i] = p.UserID
		}
		return out
	}

	tests := []struct {
		name  string
		limit int
		want  []UserID
	}{
		{name: "unlimited", limit: 0, want: []UserID{1, 2, 3, 4}},
		{name: "fills from fallback", limit: 3, want: []UserID{1, 2, 3}},
		{name: "sessions alone fill the list", limit: 2, want: []UserID{1, 2}},
		{name: "truncates sessions", limit: 1, want: []UserID{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(MergeRecentPlayers(sessions, fallback, tt.limit)))
		})
	}

	merged := MergeRecentPlayers(sessions, fallback, 0)
	assert.Equal(t, "Dungeon 3", merged[1].Activity, "session activity wins over the fallback")
	assert.Empty(t, MergeRecentPlayers(nil, nil, 5))
}
