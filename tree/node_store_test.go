package tree

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type MemoryNodeStoreSuite struct {
	suite.Suite
	ctx context.Context
	ns  NodeStore
}

func (s *MemoryNodeStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.ns = NewMemoryNodeStore()
}

func (s *MemoryNodeStoreSuite) TestSequentialIDs() {
	for _, expected := range []string{"1", "2", "3"} {
		n := &Node{}
		s.Require().NoError(s.ns.Create(s.ctx, n))
		s.Equal(expected, n.ID)
	}
}

func (s *MemoryNodeStoreSuite) TestGetStoreDelete() {
	n := &Node{}
	s.Require().NoError(s.ns.Create(s.ctx, n))

	got, err := s.ns.Get(s.ctx, n.ID)
	s.Require().NoError(err)
	s.Same(n, got)

	updated := &Node{ID: n.ID, Prediction: NewPrediction(map[string]int{"a": 1})}
	s.Require().NoError(s.ns.Store(s.ctx, updated))
	got, err = s.ns.Get(s.ctx, n.ID)
	s.Require().NoError(err)
	s.Same(updated, got)

	s.Require().NoError(s.ns.Delete(s.ctx, n))
	got, err = s.ns.Get(s.ctx, n.ID)
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *MemoryNodeStoreSuite) TestUnknownIDs() {
	for _, id := range []string{"", "0", "7", "x"} {
		got, err := s.ns.Get(s.ctx, id)
		s.NoError(err)
		s.Nil(got)
	}
	s.Error(s.ns.Store(s.ctx, &Node{ID: "7"}))
}

func (s *MemoryNodeStoreSuite) TestConcurrentCreate() {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.NoError(s.ns.Create(s.ctx, &Node{}))
		}()
	}
	wg.Wait()
	got, err := s.ns.Get(s.ctx, "50")
	s.Require().NoError(err)
	s.NotNil(got)
}

func (s *MemoryNodeStoreSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	s.Error(s.ns.Create(ctx, &Node{}))
}

func TestMemoryNodeStore(t *testing.T) {
	suite.Run(t, new(MemoryNodeStoreSuite))
}
