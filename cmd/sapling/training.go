package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	redis "gopkg.in/redis.v5"

	"github.com/pbanos/sapling"
	"github.com/pbanos/sapling/dataset"
	datasetjson "github.com/pbanos/sapling/dataset/json"
	"github.com/pbanos/sapling/feature"
	featurejson "github.com/pbanos/sapling/feature/json"
	featureyaml "github.com/pbanos/sapling/feature/yaml"
	"github.com/pbanos/sapling/queue"
	queuejson "github.com/pbanos/sapling/queue/json"
	"github.com/pbanos/sapling/queue/redisq"
	"github.com/pbanos/sapling/tree"
	treejson "github.com/pbanos/sapling/tree/json"
	"github.com/pbanos/sapling/tree/redisstore"
)

const (
	emptyQueueSleep = 50 * time.Millisecond
	taskMaxRun      = 5 * time.Minute
)

// trainingCmdConfig holds the flags shared by every command that grows a tree.
type trainingCmdConfig struct {
	*rootCmdConfig
	metadataInput string
	dataInput     string
	gainRatio     bool
	workers       int
	redisAddr     string
}

func addTrainingFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("metadata", "m", "", "path to a YML file with metadata describing the features on the inputs (required)")
	cmd.Flags().StringP("input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with the rows to grow the tree from (defaults to STDIN, interpreted as CSV)")
	cmd.Flags().Bool("gain-ratio", false, "score splits by gain ratio instead of information gain")
	cmd.Flags().IntP("workers", "w", 0, "number of concurrent workers developing the tree from a queue of tasks (defaults to 0: grow synchronously)")
	cmd.Flags().String("redis", "", "address (host:port) of a redis server to keep the queue and the nodes of the tree on, requires workers")
}

func (tcc *trainingCmdConfig) load(v *viper.Viper) {
	tcc.metadataInput = v.GetString("metadata")
	tcc.dataInput = v.GetString("input")
	tcc.gainRatio = v.GetBool("gain-ratio")
	tcc.workers = v.GetInt("workers")
	tcc.redisAddr = v.GetString("redis")
}

func (tcc *trainingCmdConfig) Validate() error {
	if tcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if tcc.workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", tcc.workers)
	}
	if tcc.redisAddr != "" && tcc.workers == 0 {
		return fmt.Errorf("redis flag requires the workers flag to be set")
	}
	return nil
}

/*
growTree grows a tree on the given dataset, synchronously if no workers
were requested. Otherwise it seeds a queue and runs the workers on a pool
until the queue is exhausted. The returned function releases the
resources the tree holds.
*/
func (tcc *trainingCmdConfig) growTree(ctx context.Context, ds dataset.Dataset, features []feature.Feature) (*tree.Tree, func(), error) {
	if tcc.workers == 0 {
		tcc.log.WithField("gain_ratio", tcc.gainRatio).Info("growing tree")
		t, err := sapling.Grow(ctx, ds, features, tcc.gainRatio)
		if err != nil {
			return nil, nil, fmt.Errorf("growing the tree: %v", err)
		}
		return t, func() {}, nil
	}
	ns, q, release, err := tcc.nodeStoreAndQueue(ds)
	if err != nil {
		return nil, nil, err
	}
	t, err := sapling.Seed(ctx, features, ds, tcc.gainRatio, q, ns)
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("seeding the tree: %v", err)
	}
	tcc.log.WithField("gain_ratio", tcc.gainRatio).WithField("workers", tcc.workers).Info("growing tree")
	err = tcc.work(ctx, t, q)
	q.Stop(ctx)
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("growing the tree: %v", err)
	}
	return t, func() {
		if tcc.redisAddr != "" {
			if err := discardTree(context.Background(), t); err != nil {
				tcc.log.WithError(err).Warn("discarding tree nodes")
			}
		}
		release()
	}, nil
}

func (tcc *trainingCmdConfig) nodeStoreAndQueue(ds dataset.Dataset) (tree.NodeStore, queue.Queue, func(), error) {
	if tcc.redisAddr == "" {
		return tree.NewMemoryNodeStore(), queue.New(), func() {}, nil
	}
	rc := redis.NewClient(&redis.Options{Addr: tcc.redisAddr})
	if err := rc.Ping().Err(); err != nil {
		rc.Close()
		return nil, nil, nil, fmt.Errorf("connecting to redis at %s: %v", tcc.redisAddr, err)
	}
	id := fmt.Sprintf("sapling:%s", uuid.New().String())
	tcc.log.WithField("redis", tcc.redisAddr).WithField("prefix", id).Debug("keeping tree and queue on redis")
	ced := featurejson.NewCriteriaEncodeDecoder()
	ns := redisstore.New(rc, fmt.Sprintf("%s:node", id), treejson.NewNodeEncodeDecoder(ced))
	ded := datasetjson.New(ds, tcc.dataInput, ced)
	q := redisq.New(fmt.Sprintf("%s:queue", id), rc, taskMaxRun, queuejson.New(ded, ns))
	return ns, q, func() { rc.Close() }, nil
}

/*
work runs the configured number of workers on a pool over the given tree
and queue. If a worker fails the rest are cancelled and the first error
is returned.
*/
func (tcc *trainingCmdConfig) work(ctx context.Context, t *tree.Tree, q queue.Queue) error {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var lock sync.Mutex
	var firstErr error
	wp := workerpool.New(tcc.workers)
	for i := 0; i < tcc.workers; i++ {
		log := tcc.log.WithField("worker", i)
		wp.Submit(func() {
			err := sapling.Work(wctx, t, q, emptyQueueSleep, log)
			if err == nil {
				return
			}
			lock.Lock()
			defer lock.Unlock()
			if firstErr == nil || (errors.Is(firstErr, context.Canceled) && !errors.Is(err, context.Canceled)) {
				firstErr = err
			}
			cancel()
		})
	}
	err := queue.WaitFor(wctx, q, emptyQueueSleep)
	wp.StopWait()
	if firstErr != nil {
		return firstErr
	}
	return err
}

// discardTree deletes every node of the given tree from its node store.
func discardTree(ctx context.Context, t *tree.Tree) error {
	var nodes []*tree.Node
	err := t.Traverse(ctx, func(ctx context.Context, s *tree.Step) error {
		nodes = append(nodes, s.Node)
		return nil
	})
	if err != nil {
		return err
	}
	for _, n := range nodes {
		if err = t.NodeStore.Delete(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

/*
trainedTree reads the features and the training rows, grows a tree on
them and returns it along with a function to release everything it holds.
The returned exit code is 0 on success.
*/
func (tcc *trainingCmdConfig) trainedTree(ctx context.Context) (*tree.Tree, func(), int, error) {
	features, err := featureyaml.ReadFeaturesFromFile(tcc.metadataInput)
	if err != nil {
		return nil, nil, 2, err
	}
	ds, closeDS, err := openDataset(ctx, tcc.dataInput, features, tcc.log)
	if err != nil {
		return nil, nil, 3, fmt.Errorf("reading training set: %v", err)
	}
	count, err := ds.Count(ctx)
	if err != nil {
		closeDS()
		return nil, nil, 3, fmt.Errorf("counting training set rows: %v", err)
	}
	tcc.log.WithFields(logrus.Fields{"rows": count, "features": len(features)}).Debug("training set ready")
	t, release, err := tcc.growTree(ctx, ds, features)
	if err != nil {
		closeDS()
		return nil, nil, 4, err
	}
	return t, func() {
		release()
		closeDS()
	}, 0, nil
}
