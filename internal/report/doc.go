// Package report builds the read-only views consumed by exporters.
//
// A point report carries every table of one point sorted by depth, with the
// values the store never persists: core length, TCR and RQD percentages,
// strength and weathering indices, sample N-values and the display class of
// each permeability coefficient. A project report fetches its point reports
// concurrently with a bounded errgroup.
package report
