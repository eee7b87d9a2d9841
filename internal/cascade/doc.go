// Package cascade is the consistency engine of the borehole log.
//
// Every mutation enters through an Engine method and runs as one storage
// transaction. The engine keeps three kinds of derived state correct:
//
//   - Identity: renaming a project moves its points; renaming a point moves
//     every child row that carries its point_id. Collisions in scope fail with
//     types.ErrDuplicateIdentifier before anything is written.
//   - Linkage: each sample and hydraulic test owns one soil profile placed at
//     the midpoint of its interval with a generated description. The profile
//     follows edits of its owner, dies with it, and cannot be edited from the
//     stratum surface (types.ErrLinkedRecordProtected).
//   - Ordinals: cores, samples and hydraulic tests are numbered 1..N per
//     point. Deleting number k shifts the later records down and rewrites the
//     descriptions that embed the number.
//
// Record identifiers are PREFIX-XXXXXX, the last six base-36 digits of the
// millisecond clock, checked against the table and retried with backoff.
//
// Example:
//
//	eng, err := cascade.New(store, cascade.DefaultConfig(), cascade.WithLogger(log))
//	res, err := eng.CreateSample(ctx, types.Sample{
//	    PointID: "BH-01", Depth: 2, Bottom: 2.45, Type: "SPT", V15: 8, V30: 12, V45: 15,
//	})
//	// res.Soil.Description == "SPT N°1: (2.00 m - 2.45 m)\nNSPT = 27"
//
// Cascades touching the same point or project are serialized by a keyed lock.
package cascade
