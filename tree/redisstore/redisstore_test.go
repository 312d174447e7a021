package redisstore

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/redis.v5"

	"github.com/pbanos/sapling/feature"
	featurejson "github.com/pbanos/sapling/feature/json"
	"github.com/pbanos/sapling/tree"
	treejson "github.com/pbanos/sapling/tree/json"
)

// redisClient returns a client for the server at SAPLING_TEST_REDIS, skipping
// the test when it is not set.
func redisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("SAPLING_TEST_REDIS")
	if addr == "" {
		t.Skip("SAPLING_TEST_REDIS not set")
	}
	rc := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rc.Close() })
	require.NoError(t, rc.Ping().Err())
	return rc
}

func TestKeyFor(t *testing.T) {
	rs := &redisStore{prefix: "sapling:nodes"}
	assert.Equal(t, "sapling:nodes:42", rs.keyFor("42"))
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	rc := redisClient(t)
	ns := New(rc, "sapling-test:"+uuid.New().String(), treejson.NewNodeEncodeDecoder(featurejson.NewCriteriaEncodeDecoder()))

	n := &tree.Node{Question: feature.NewQuestion(0, 4)}
	require.NoError(t, ns.Create(ctx, n))
	_, err := uuid.Parse(n.ID)
	require.NoError(t, err)
	defer ns.Delete(ctx, n)

	n.TrueID, n.FalseID = "a", "b"
	require.NoError(t, ns.Store(ctx, n))
	got, err := ns.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got)

	require.NoError(t, ns.Delete(ctx, n))
	got, err = ns.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
