/*
Package sapling induces binary decision trees from labeled rows.

Trees can be grown synchronously with Grow or by workers consuming a
queue of tasks, set up with Seed and run with Work. Both produce the same
tree for the same rows.
*/
package sapling

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/feature"
	"github.com/pbanos/sapling/queue"
	"github.com/pbanos/sapling/tree"
)

// Seed takes a context, a slice of features, a dataset, whether to score
// splits by gain ratio, a queue and a node store and sets everything
// up so that workers that consume from the queue afterwards
// grow a tree on the given dataset.
// Specifically it will create the root node of the tree on the
// node store and push a task to branch it out on the queue.
// The function returns the tree that can be grown or an error
// if the dataset does not fit the features, the node cannot be
// created on the store, or the task pushed to the queue (in the
// amount of time allowed by the given context).
func Seed(ctx context.Context, features []feature.Feature, ds dataset.Dataset, useGainRatio bool, q queue.Queue, ns tree.NodeStore) (*tree.Tree, error) {
	if err := dataset.Validate(ctx, ds, features); err != nil {
		return nil, err
	}
	n := &tree.Node{}
	err := ns.Create(ctx, n)
	if err != nil {
		return nil, err
	}
	task := &queue.Task{Node: n, Dataset: ds, GainRatio: useGainRatio}
	t := tree.New(n.ID, ns, features)
	err = q.Push(ctx, task)
	if err != nil {
		ns.Delete(ctx, n)
		return nil, err
	}
	return t, nil
}

// BranchOut takes a context, a task and a tree, develops the node in the
// task using the task's dataset the same way Grow develops a node and
// returns the tasks to develop the resulting children nodes (none for
// leaves) or an error.
func BranchOut(ctx context.Context, task *queue.Task, t *tree.Tree) ([]*queue.Task, error) {
	return develop(ctx, t.NodeStore, task.Node, task.Dataset, task.GainRatio)
}

// Work takes a context, a tree, a queue, an emptyQueueSleep duration
// and a logger and enters a loop in which it:
//   - pulls a task for the queue,
//   - branches its node out into new subnodes using BranchOut
//   - pushes the tasks for the new subnodes into the queue
//   - marks the task as completed on the queue
//
// If at some point no task can be pulled from the queue and
// the sum of tasks running and pending on the queue is 0, the
// worker ends returning nil. If no task can be pulled but the
// sum is not 0, then the worker will sleep for the given
// emptyQueueSleep duration and then retry.
//
// Work will return a non-nil error if the given context
// times out or is cancelled, if BranchOut returns a non-nil
// error or if an operation with the given queue returns a
// non-nil error.
func Work(ctx context.Context, t *tree.Tree, q queue.Queue, emptyQueueSleep time.Duration, log logrus.FieldLogger) error {
	var developed int
	for {
		task, tctx, tcf, err := q.Pull(ctx)
		if err != nil {
			return err
		}
		if task == nil {
			p, r, err := q.Count(ctx)
			if err != nil {
				return err
			}
			if r+p == 0 {
				break
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(emptyQueueSleep):
			}
			continue
		}
		mctx, cancel := mergeCtxCancel(tctx, ctx)
		err = workTask(mctx, task, t, q, log)
		cancel()
		tcf()
		if err != nil {
			log.WithError(err).WithField("node", task.ID()).Error("developing node")
			return err
		}
		developed++
		err = ctx.Err()
		if err != nil {
			return err
		}
	}
	log.WithField("nodes", developed).Debug("worker finished")
	return nil
}

func workTask(ctx context.Context, task *queue.Task, t *tree.Tree, q queue.Queue, log logrus.FieldLogger) error {
	defer func() {
		q.Drop(ctx, task.ID())
	}()
	tasks, err := BranchOut(ctx, task, t)
	if err != nil {
		return err
	}
	entry := log.WithField("node", task.ID())
	if len(tasks) == 0 {
		entry.Debug("leaf")
	} else {
		entry.WithField("question", task.Node.Question.Describe(t.Features)).Debug("branched out")
	}
	for _, st := range tasks {
		err = q.Push(ctx, st)
		if err != nil {
			return err
		}
	}
	return q.Complete(ctx, task.ID())
}

func mergeCtxCancel(ctx1, ctx2 context.Context) (context.Context, context.CancelFunc) {
	mctx, cancel := context.WithCancel(ctx1)
	go func() {
		select {
		case <-mctx.Done():
		case <-ctx2.Done():
			cancel()
		}
	}()
	return mctx, cancel
}
