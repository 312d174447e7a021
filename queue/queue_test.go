package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/pbanos/sapling/tree"
)

type MemQueueSuite struct {
	suite.Suite
	ctx context.Context
	q   Queue
}

func (s *MemQueueSuite) SetupTest() {
	s.ctx = context.Background()
	s.q = New()
}

func (s *MemQueueSuite) TearDownTest() {
	s.q.Stop(s.ctx)
}

func task(id string) *Task {
	return &Task{Node: &tree.Node{ID: id}}
}

func (s *MemQueueSuite) count() (int, int) {
	p, r, err := s.q.Count(s.ctx)
	s.Require().NoError(err)
	return p, r
}

func (s *MemQueueSuite) TestEmptyPull() {
	t, tctx, cancel, err := s.q.Pull(s.ctx)
	s.NoError(err)
	s.Nil(t)
	s.Nil(tctx)
	s.Nil(cancel)
}

func (s *MemQueueSuite) TestFIFO() {
	for _, id := range []string{"1", "2", "3"} {
		s.Require().NoError(s.q.Push(s.ctx, task(id)))
	}
	for _, id := range []string{"1", "2", "3"} {
		t, _, cancel, err := s.q.Pull(s.ctx)
		s.Require().NoError(err)
		s.Equal(id, t.ID())
		cancel()
	}
}

func (s *MemQueueSuite) TestLifecycle() {
	s.Require().NoError(s.q.Push(s.ctx, task("1")))
	s.Require().NoError(s.q.Push(s.ctx, task("2")))
	p, r := s.count()
	s.Equal(2, p)
	s.Equal(0, r)

	t, _, cancel, err := s.q.Pull(s.ctx)
	s.Require().NoError(err)
	defer cancel()
	p, r = s.count()
	s.Equal(1, p)
	s.Equal(1, r)

	s.Require().NoError(s.q.Drop(s.ctx, t.ID()))
	p, r = s.count()
	s.Equal(2, p)
	s.Equal(0, r)

	for i := 0; i < 2; i++ {
		t, _, cancel, err = s.q.Pull(s.ctx)
		s.Require().NoError(err)
		cancel()
		s.Require().NoError(s.q.Complete(s.ctx, t.ID()))
	}
	p, r = s.count()
	s.Equal(0, p)
	s.Equal(0, r)
	s.NoError(WaitFor(s.ctx, s.q, time.Millisecond))
}

func (s *MemQueueSuite) TestPushRejectsDuplicateIDs() {
	s.Require().NoError(s.q.Push(s.ctx, task("1")))
	s.Error(s.q.Push(s.ctx, task("1")))
	t, _, cancel, err := s.q.Pull(s.ctx)
	s.Require().NoError(err)
	cancel()
	s.Error(s.q.Push(s.ctx, task("1")))
	s.Require().NoError(s.q.Complete(s.ctx, t.ID()))
	s.NoError(s.q.Push(s.ctx, task("1")))
}

func (s *MemQueueSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	s.Error(s.q.Push(ctx, task("1")))
	_, _, _, err := s.q.Pull(ctx)
	s.Error(err)
}

func (s *MemQueueSuite) TestDropUnknownTask() {
	s.NoError(s.q.Drop(s.ctx, "nope"))
	p, r := s.count()
	s.Equal(0, p+r)
}

func (s *MemQueueSuite) TestStopCancelsPulledContexts() {
	s.Require().NoError(s.q.Push(s.ctx, task("1")))
	_, tctx, cancel, err := s.q.Pull(s.ctx)
	s.Require().NoError(err)
	defer cancel()
	s.NoError(tctx.Err())
	s.Require().NoError(s.q.Stop(s.ctx))
	s.Error(tctx.Err())
}

func (s *MemQueueSuite) TestWaitForTimesOut() {
	s.Require().NoError(s.q.Push(s.ctx, task("1")))
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Millisecond)
	defer cancel()
	s.Error(WaitFor(ctx, s.q, time.Millisecond))
}

func TestMemQueue(t *testing.T) {
	suite.Run(t, new(MemQueueSuite))
}
