/*
Package redisq provides a queue.Queue backed by redis so that workers on
several processes can share the tasks to grow a tree.

Every state change of a task (push, pull, drop, completion and the
recovery of tasks whose worker went away) runs as a single Lua script, so
a task is always in exactly one of the pending and running sets.
*/
package redisq

import (
	"context"
	"fmt"
	"time"

	redis "gopkg.in/redis.v5"

	"github.com/pbanos/sapling/queue"
	queuejson "github.com/pbanos/sapling/queue/json"
)

type redisQ struct {
	keys
	rc         *redis.Client
	allTaskCtx context.Context
	allTaskCF  context.CancelFunc
	taskMaxRun time.Duration
	queuejson.TaskEncodeDecoder
}

// keys names the redis keys of a queue, all under its id.
type keys string

// KEYS: data, pending set. ARGV: task data, task id.
const pushScript = `
if redis.call("SETNX", KEYS[1], ARGV[1]) == 0 then
    return 0
end
redis.call("SADD", KEYS[2], ARGV[2])
return 1
`

// KEYS: pending set, running set. ARGV: running mark prefix, running mark
// TTL in milliseconds (0 for none).
const pullScript = `
local id = redis.call("SPOP", KEYS[1])
if not id then
    return false
end
redis.call("SADD", KEYS[2], id)
local mark = ARGV[1] .. id .. ":running"
if tonumber(ARGV[2]) > 0 then
    redis.call("SET", mark, "1", "PX", ARGV[2])
else
    redis.call("SET", mark, "1")
end
return id
`

// KEYS: running set, pending set, running mark. ARGV: task id.
const dropScript = `
if redis.call("SMOVE", KEYS[1], KEYS[2], ARGV[1]) == 1 then
    redis.call("DEL", KEYS[3])
    return 1
end
return 0
`

// KEYS: running set, running mark, data. ARGV: task id.
const completeScript = `
if redis.call("SREM", KEYS[1], ARGV[1]) == 1 then
    redis.call("DEL", KEYS[2], KEYS[3])
    return 1
end
return 0
`

// KEYS: running set, pending set, running mark. ARGV: task id.
const requeueScript = `
if redis.call("EXISTS", KEYS[3]) == 0 and redis.call("SMOVE", KEYS[1], KEYS[2], ARGV[1]) == 1 then
    return 1
end
return 0
`

const countScript = `return {redis.call("SCARD", KEYS[1]), redis.call("SCARD", KEYS[2])}`

/*
New returns a queue.Queue that uses the given redis client as a
backend. It uses the given id to prefix the keys used on the
redis client to keep the queue's data, which are the following:
  * id:pending is the key to a set with the ids of the pending tasks
  * id:running is the key to a set with the ids of the running tasks
  * id:task:task_id:data is the key to a string that holds the task data.
  Tasks are encoded and decoded using the given TaskEncodeDecoder.
  * id:task:task_id:running marks the task as being worked on. It expires
  in the given taskMaxRun duration, after which the task is considered
  abandoned by its worker and put back on the pending set. A zero
  taskMaxRun keeps the mark forever and disables the recovery.

The returned queue is safe for concurrent use by multiple goroutines
and processes.
*/
func New(id string, rc *redis.Client, taskMaxRun time.Duration, encDec queuejson.TaskEncodeDecoder) queue.Queue {
	ctx, cf := context.WithCancel(context.Background())
	rq := &redisQ{
		keys:              keys(id),
		rc:                rc,
		allTaskCtx:        ctx,
		allTaskCF:         cf,
		taskMaxRun:        taskMaxRun,
		TaskEncodeDecoder: encDec,
	}
	if taskMaxRun > 0 {
		go rq.requeueAbandonedTasks()
	}
	return rq
}

// Push stores the task on the queue as pending. Pushing a task with the
// ID of one already on the queue fails.
func (rq *redisQ) Push(ctx context.Context, t *queue.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := rq.Encode(ctx, t)
	if err != nil {
		return fmt.Errorf("pushing task %s: %v", t.ID(), err)
	}
	res, err := rq.rc.Eval(pushScript, []string{rq.data(t.ID()), rq.pending()}, string(data), t.ID()).Result()
	if err != nil {
		return fmt.Errorf("pushing task %s: %v", t.ID(), err)
	}
	if n, _ := res.(int64); n != 1 {
		return fmt.Errorf("pushing task %s: task already on queue %s", t.ID(), string(rq.keys))
	}
	return nil
}

// Pull moves a random pending task to the running set and returns it with
// a context that expires when the task runs for longer than taskMaxRun or
// the queue is stopped. It returns 4 nil values if no task is pending.
func (rq *redisQ) Pull(ctx context.Context) (*queue.Task, context.Context, context.CancelFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, err
	}
	res, err := rq.rc.Eval(pullScript, []string{rq.pending(), rq.running()}, rq.taskPrefix(), int64(rq.taskMaxRun/time.Millisecond)).Result()
	if err == redis.Nil {
		return nil, nil, nil, nil
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("pulling task from %s: %v", rq.pending(), err)
	}
	id, ok := res.(string)
	if !ok {
		return nil, nil, nil, fmt.Errorf("pulling task from %s: unexpected reply %v (%T)", rq.pending(), res, res)
	}
	data, err := rq.rc.Get(rq.data(id)).Result()
	if err == nil {
		var t *queue.Task
		t, err = rq.Decode(ctx, []byte(data))
		if err == nil {
			tctx, tcf := rq.allTaskCtx, context.CancelFunc(func() {})
			if rq.taskMaxRun > 0 {
				tctx, tcf = context.WithTimeout(rq.allTaskCtx, rq.taskMaxRun)
			}
			return t, tctx, tcf, nil
		}
	}
	rq.Drop(ctx, id)
	return nil, nil, nil, fmt.Errorf("pulling task %s: %v", id, err)
}

// Drop puts a running task back on the pending set. Dropping a task that
// is not running does nothing.
func (rq *redisQ) Drop(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := rq.rc.Eval(dropScript, []string{rq.running(), rq.pending(), rq.runningMark(id)}, id).Result()
	if err != nil {
		return fmt.Errorf("dropping task %s: %v", id, err)
	}
	return nil
}

// Complete removes a running task and its data from the queue.
func (rq *redisQ) Complete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := rq.rc.Eval(completeScript, []string{rq.running(), rq.runningMark(id), rq.data(id)}, id).Result()
	if err != nil {
		return fmt.Errorf("completing task %s: %v", id, err)
	}
	return nil
}

// Count returns the number of pending and running tasks in the queue.
// Both sets are counted in one script so a task moving between them
// cannot make the queue look empty.
func (rq *redisQ) Count(ctx context.Context) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	res, err := rq.rc.Eval(countScript, []string{rq.pending(), rq.running()}).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("counting tasks: %v", err)
	}
	counts, ok := res.([]interface{})
	if !ok || len(counts) != 2 {
		return 0, 0, fmt.Errorf("counting tasks: unexpected reply %v (%T)", res, res)
	}
	p, ok := counts[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("counting tasks: cannot extract pending count from %v (%T)", counts[0], counts[0])
	}
	r, ok := counts[1].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("counting tasks: cannot extract running count from %v (%T)", counts[1], counts[1])
	}
	return int(p), int(r), nil
}

// Stop cancels the contexts of pulled tasks and the recovery of abandoned
// tasks. Data on redis is left untouched.
func (rq *redisQ) Stop(context.Context) error {
	rq.allTaskCF()
	return nil
}

func (rq *redisQ) requeueAbandonedTasks() {
	ticker := time.NewTicker(rq.taskMaxRun / 2)
	defer ticker.Stop()
	for {
		iter := rq.rc.SScan(rq.running(), 0, "", 0).Iterator()
		for iter.Next() && rq.allTaskCtx.Err() == nil {
			id := iter.Val()
			rq.rc.Eval(requeueScript, []string{rq.running(), rq.pending(), rq.runningMark(id)}, id)
		}
		select {
		case <-rq.allTaskCtx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (k keys) pending() string {
	return fmt.Sprintf("%s:pending", string(k))
}

func (k keys) running() string {
	return fmt.Sprintf("%s:running", string(k))
}

func (k keys) taskPrefix() string {
	return fmt.Sprintf("%s:task:", string(k))
}

func (k keys) data(id string) string {
	return k.taskPrefix() + id + ":data"
}

func (k keys) runningMark(id string) string {
	return k.taskPrefix() + id + ":running"
}
