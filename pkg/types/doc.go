// Package types provides the record definitions and error taxonomy shared by
// every geolog component.
//
// # Records
//
// A Project holds Points (boreholes). Every other record hangs off a point
// through its point_id:
//
//	core := types.Core{
//	    PointID:   "BH-01",
//	    Depth:     3.0,
//	    Bottom:    4.5,
//	    TCRLength: 1.2,
//	    RQDLength: 0.9,
//	}
//
// Cores carry one optional StrengthWeathering row keyed by core_id. Samples
// and HydraulicCond rows each own a derived SoilProfile through its
// linked_sample_id or linked_hydraulic_id field; manual strata have neither.
//
// Every row carries sync_status: SyncDirty (0) after any write, SyncClean (1)
// once an external sync has taken it.
//
// # Validation
//
// Each record has a Validate method checking intervals, non-negative values
// and enumerations. Failures are *ValidationError values naming the field:
//
//	if err := core.Validate(); err != nil {
//	    var verr *types.ValidationError
//	    if errors.As(err, &verr) {
//	        fmt.Println(verr.Field, verr.Reason)
//	    }
//	}
//
// ValidationError unwraps to ErrInvalidInterval or ErrInvalidValue so callers
// can branch with errors.Is.
//
// # Errors
//
// The engine reports failures through the sentinels in errors.go:
//   - ErrDuplicateIdentifier: identifier taken within its scope
//   - ErrRecordNotFound: referenced row absent
//   - ErrLinkedRecordProtected: derived stratum edited directly (see ProtectedError)
//   - ErrIdGenerationExhausted: no free identifier after every retry
//   - ErrStorageFailure: the database rejected the operation
//
// Enumerated labels (condition types, sample types, method categories and the
// R/W strength and weathering ordinals) live in enums.go.
package types
