// Package storage holds on-disk side stores used between the passes of a
// stage. SQLiteRangeStore keeps the pass-1 (min, max) of every normalization
// group in a SQLite file so the group count is not bounded by memory.
package storage
