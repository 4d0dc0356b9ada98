package mock

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tablekit/pkg/columns"
	"github.com/oakwood-commons/tablekit/pkg/record"
)

func TestUsersDeterministic(t *testing.T) {
	a := Users(20, 7)
	b := Users(20, 7)
	assert.Equal(t, a, b)

	c := Users(20, 8)
	assert.NotEqual(t, a[0]["uid"], c[0]["uid"])
}

func TestUsersShape(t *testing.T) {
	users := Users(25, 1)
	require.Len(t, users, 25)

	keys, err := record.Keys(users, "id")
	require.NoError(t, err, "ids are unique")
	assert.Equal(t, record.Key("1"), keys[0])
	assert.Equal(t, record.Key("25"), keys[24])

	_, err = record.Keys(users, "uid")
	require.NoError(t, err, "uids are unique")

	for _, u := range users {
		_, err := uuid.Parse(u.Field("uid"))
		require.NoError(t, err)
		assert.Contains(t, u.Field("email"), "@")
		age, ok := u["age"].(int)
		require.True(t, ok)
		assert.GreaterOrEqual(t, age, 18)
		assert.Less(t, age, 68)
		assert.Contains(t, []string{"admin", "editor", "viewer", "owner"}, u["role"])
	}
}

func TestUsersEmpty(t *testing.T) {
	assert.Empty(t, Users(0, 1))
	assert.Empty(t, Users(-3, 1))
}

func TestUID(t *testing.T) {
	assert.Equal(t, UID(1, 5), UID(1, 5))
	assert.NotEqual(t, UID(1, 5), UID(1, 6))
	assert.Equal(t, uuid.NewSHA1(Namespace, []byte("1/5")).String(), UID(1, 5))
}

func TestBindRenderers(t *testing.T) {
	cols := BindRenderers([]columns.Column{
		{Title: "Name", Field: "name"},
		{Title: "Address", Field: "address"},
	})
	rec := record.Record{
		"name":    "Ada",
		"address": map[string]any{"city": "Gwenborough", "street": "Kulas Light"},
	}
	assert.Nil(t, cols[0].Render)
	assert.Equal(t, "Ada", cols[0].Cell(rec))
	assert.Equal(t, "Gwenborough, Kulas Light", cols[1].Cell(rec))
	assert.Empty(t, cols[1].Cell(record.Record{}))
}
