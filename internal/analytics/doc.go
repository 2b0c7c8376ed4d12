// Package analytics derives everything a run reports from a merged fact
// table: the per-date revenue trend with its least-squares line, the
// chart-ready aggregate views and the headline statistics.
//
// Sums skip NaN values, so a record whose quantity or price was missing
// counts toward record totals but adds nothing to revenue or volume.
package analytics
