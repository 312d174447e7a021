package redisq

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	redis "gopkg.in/redis.v5"

	"github.com/pbanos/sapling/dataset"
	datasetjson "github.com/pbanos/sapling/dataset/json"
	featurejson "github.com/pbanos/sapling/feature/json"
	"github.com/pbanos/sapling/queue"
	queuejson "github.com/pbanos/sapling/queue/json"
	"github.com/pbanos/sapling/tree"
)

func TestKeys(t *testing.T) {
	k := keys("sapling:q")
	assert.Equal(t, "sapling:q:pending", k.pending())
	assert.Equal(t, "sapling:q:running", k.running())
	assert.Equal(t, "sapling:q:task:7:data", k.data("7"))
	assert.Equal(t, "sapling:q:task:7:running", k.runningMark("7"))
}

func TestRedisQueue(t *testing.T) {
	addr := os.Getenv("SAPLING_TEST_REDIS")
	if addr == "" {
		t.Skip("SAPLING_TEST_REDIS not set")
	}
	ctx := context.Background()
	rc := redis.NewClient(&redis.Options{Addr: addr})
	defer rc.Close()
	require.NoError(t, rc.Ping().Err())

	ns := tree.NewMemoryNodeStore()
	root := dataset.New([]dataset.Row{dataset.NewRow(1, "a", "x")})
	ted := queuejson.New(datasetjson.New(root, "mem://test", featurejson.NewCriteriaEncodeDecoder()), ns)
	q := New("sapling-test:"+uuid.New().String(), rc, 0, ted)
	defer q.Stop(ctx)

	n := &tree.Node{}
	require.NoError(t, ns.Create(ctx, n))
	require.NoError(t, q.Push(ctx, &queue.Task{Node: n, Dataset: root}))
	assert.Error(t, q.Push(ctx, &queue.Task{Node: n, Dataset: root}))
	p, r, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, p)
	assert.Equal(t, 0, r)

	task, _, cancel, err := q.Pull(ctx)
	require.NoError(t, err)
	require.NotNil(t, task)
	cancel()
	assert.Equal(t, n.ID, task.ID())
	p, r, err = q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, p)
	assert.Equal(t, 1, r)

	require.NoError(t, q.Drop(ctx, task.ID()))
	p, r, err = q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, p)
	assert.Equal(t, 0, r)

	task, _, cancel, err = q.Pull(ctx)
	require.NoError(t, err)
	require.NotNil(t, task)
	cancel()
	require.NoError(t, q.Complete(ctx, task.ID()))
	exists, err := rc.Exists(q.(*redisQ).data(task.ID())).Result()
	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, queue.WaitFor(ctx, q, 10*time.Millisecond))
}
