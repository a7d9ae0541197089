// Package graph models the composition of a reactor as a DAG.
// Every reactor member is a root; its cut, intersect and union operands
// are children reached through typed edges. The graph is rebuilt from the
// shapes on demand and validated in tiers: structure, geometry, material.
package graph
