// Package fare computes pairwise fairness-error metrics for rankings whose
// items belong to one of two protected groups.
//
// Three metrics are provided, each returning one error per group:
//
//   - RankParity: how often a group-g item is ranked above an item of
//     the other group, out of all mixed pairs.
//   - RankEquality: how often the prediction inverts a mixed pair whose
//     earlier (ground-truth) member belongs to group g.
//   - RankCalibration: how often the prediction inverts any pair touching
//     group g, out of all pairs touching group g.
//
// All metrics count pairs with a merge-sort style divide and conquer in
// O(n log n) rather than comparing every pair.
//
// On top of the metrics, Audit slides a fixed-size window over a ranking and
// produces one error sequence per group, and GenerateDiagnostics reduces two
// error sequences to a trend per group and the distance between them.
//
// Usage:
//
//	res, err := fare.RankEquality(yTrue, yPred, groups)
//	seqs, err := fare.AuditCalibration(yTrue, yPred, groups, 50, 10)
//	diag, err := fare.GenerateDiagnostics(seqs.Err0, seqs.Err1)
//
// Reference: Kuhlman, VanValkenburg, Rundensteiner. "FARE: Diagnostics for
// Fair Ranking using Pairwise Error Metrics", WWW 2019.
package fare
