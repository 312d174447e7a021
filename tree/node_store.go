package tree

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

/*
NodeStore keeps the nodes of one or more trees by ID.

Implementations may give up on an operation when its context is done,
returning the context's error.
*/
type NodeStore interface {
	// Create assigns the node a new ID and adds it to the store.
	Create(ctx context.Context, n *Node) error
	// Get returns the node with the given ID, or nil if there is none.
	Get(ctx context.Context, id string) (*Node, error)
	// Store replaces the stored node with the same ID as n. The node must
	// have been created on the store before.
	Store(ctx context.Context, n *Node) error
	// Delete removes the node from the store. Deleting a node that is not
	// on the store is not an error.
	Delete(ctx context.Context, n *Node) error
	// Close releases the store's resources.
	Close(ctx context.Context) error
}

// memoryNodeStore is an arena: node IDs are their position plus one.
// Deleted nodes leave a nil slot so IDs are never reused.
type memoryNodeStore struct {
	sync.RWMutex
	nodes []*Node
}

// NewMemoryNodeStore returns a NodeStore kept in the process memory.
func NewMemoryNodeStore() NodeStore {
	return &memoryNodeStore{}
}

func (mns *memoryNodeStore) Create(ctx context.Context, n *Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mns.Lock()
	defer mns.Unlock()
	mns.nodes = append(mns.nodes, n)
	n.ID = strconv.Itoa(len(mns.nodes))
	return nil
}

func (mns *memoryNodeStore) Store(ctx context.Context, n *Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mns.Lock()
	defer mns.Unlock()
	i, ok := mns.index(n.ID)
	if !ok || mns.nodes[i] == nil {
		return fmt.Errorf("storing node %q: not found", n.ID)
	}
	mns.nodes[i] = n
	return nil
}

func (mns *memoryNodeStore) Get(ctx context.Context, id string) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mns.RLock()
	defer mns.RUnlock()
	if i, ok := mns.index(id); ok {
		return mns.nodes[i], nil
	}
	return nil, nil
}

func (mns *memoryNodeStore) Delete(ctx context.Context, n *Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mns.Lock()
	defer mns.Unlock()
	if i, ok := mns.index(n.ID); ok {
		mns.nodes[i] = nil
	}
	return nil
}

func (mns *memoryNodeStore) Close(ctx context.Context) error {
	return nil
}

func (mns *memoryNodeStore) index(id string) (int, bool) {
	i, err := strconv.Atoi(id)
	if err != nil || i < 1 || i > len(mns.nodes) {
		return 0, false
	}
	return i - 1, true
}
