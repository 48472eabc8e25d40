// Package ledger persists what a batch produced: one CSV row and one
// .meta.json file per image, and optionally a SQLite index of every row
// tagged with the run that wrote it.
package ledger
