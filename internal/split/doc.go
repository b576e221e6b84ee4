// Package split partitions a dataset into train, validation, and test subsets.
//
// The partition is computed in two seeded stages. The first holds out the test
// share; the second carves the validation share out of what remains. Each
// stage stratifies on the label column when it is present: rows are grouped
// per label, each group is shuffled, the held-out count is allocated to the
// groups proportionally (floor plus largest remainder), and the resulting
// sides are shuffled once more. Without a label column a single seeded
// permutation is sliced instead.
//
// Both stages reseed from the same seed, so identical input in identical order
// always yields identical splits.
package split
