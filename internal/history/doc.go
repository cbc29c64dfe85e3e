// Package history keeps the calculator's calculation log.
//
// A Store holds an ordered sequence of Records in memory and mirrors it to a
// CSV file with the header "operation,a,b,result". The file is read once when
// the store is opened and rewritten in full after every accepted Record and
// every Clear.
//
// The store favors availability over strictness:
//   - Records with a missing operation, a NaN operand or a NaN result are
//     rejected with ErrInvalidRecord and leave the store unchanged.
//   - A file that cannot be read is reported through the logger and the store
//     starts empty. Malformed rows are skipped one by one.
//   - A failed write is reported through the logger and the store switches to
//     in-memory mode for the rest of the session; the in-memory sequence stays
//     authoritative.
package history
