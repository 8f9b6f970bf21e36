package redis

import (
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	k := keys{prefix: "jg:"}

	assert.Equal(t, "jg:user:42", k.user("42"))
	assert.Equal(t, "jg:user:username:alice", k.username("alice"))
	assert.Equal(t, "jg:user:email:alice@jecna.cz", k.email("alice@jecna.cz"))
	assert.Equal(t, "jg:users", k.users())
	assert.Equal(t, "jg:score:7", k.score("7"))
	assert.Equal(t, "jg:user:42:scores", k.userScores("42"))
	assert.Equal(t, "jg:scores:anonymous", k.anonymousScores())
	assert.Equal(t, "jg:refresh:abc", k.refresh("abc"))
	assert.Equal(t, "jg:user:42:refresh", k.userRefresh("42"))
	assert.Equal(t, "jg:scores:seq", k.scoreSeq())
}

func TestScoreMember(t *testing.T) {
	id := "6f1c0c8e-2b7a-4d8e-9a51-3f0f6b1d2c44"

	m9 := scoreMember(9, id)
	m10 := scoreMember(10, id)
	assert.Equal(t, "0000000000000000009:"+id, m9)
	assert.Less(t, m9, m10, "sequence order must survive lexicographic sorting")

	assert.Equal(t, id, memberScoreID(m10))
	assert.Equal(t, id, memberScoreID(id))
}

func TestNewConnection_RetryDefault(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	t.Cleanup(func() { _ = client.Close() })

	tests := []struct {
		name    string
		retries int
		want    int
	}{
		{name: "unset", retries: 0, want: DefaultMaxRetries},
		{name: "negative", retries: -3, want: DefaultMaxRetries},
		{name: "explicit", retries: 4, want: 4},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newConnection(client, Options{KeyPrefix: "p:", MaxRetries: tt.retries})
			assert.Equal(t, tt.want, c.maxRetries)
			assert.Equal(t, "p:users", c.keys.users())
		})
	}
}

func TestUserRecord_RoundTrip(t *testing.T) {
	class := "3.A"
	rec := userRecord{Username: "alice", Class: &class, Stats: statsRecord{TotalGames: 2, Score: 50}, CreatedAt: 1700000000000}

	u := rec.toModel()
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, 2, u.Stats.TotalGames)
	assert.Equal(t, int64(50), u.Stats.Score)
	assert.Equal(t, int64(1700000000000), u.CreatedAt.UnixMilli())
	assert.Equal(t, rec, toUserRecord(u))
}
