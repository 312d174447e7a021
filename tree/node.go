package tree

import (
	"github.com/pbanos/sapling/feature"
)

const (
	// BranchTrue labels the child selected when a node's question matches
	BranchTrue = "True"
	// BranchFalse labels the child selected when a node's question does not match
	BranchFalse = "False"
)

/*
Node is a node of the tree. It is a decision node when it has a question, with
exactly two children, or a leaf when it has a prediction.
*/
type Node struct {
	// An ID to identify the node
	ID string
	// The ID for the parent of the node in the tree, empty for the root
	ParentID string
	// The criterion that applied to the parent node's rows produces this
	// node's rows. Nil for the root.
	Criterion *feature.Criterion
	// The question asked to rows reaching this node. Nil for leaves.
	Question *feature.Question
	// IDs of the children for rows matching and not matching the question.
	TrueID  string
	FalseID string
	// The prediction for rows reaching this leaf.
	Prediction *Prediction
}

// IsLeaf returns whether the node asks no question
func (n *Node) IsLeaf() bool {
	return n.Question == nil
}

// Branch returns the label of the branch that leads from the parent to this node
func (n *Node) Branch() string {
	if n.Criterion == nil {
		return ""
	}
	if n.Criterion.Outcome {
		return BranchTrue
	}
	return BranchFalse
}
