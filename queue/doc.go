/*
Package queue holds the tasks of a tree being grown by several workers.

A Task names a node that still has to be developed and the rows that reach
it. Workers pull tasks, develop their nodes, push the tasks for the new
children and complete the task they pulled. New returns a Queue kept in the
process memory; package redisq shares one across processes.
*/
package queue
