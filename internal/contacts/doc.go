// Package contacts provides the label directory: the set of known labels,
// the contact emails invited for each label, and the calendar color
// assigned to it.
//
// The backing store is swappable. Two implementations are provided, a
// flat CSV file and a SQLite database; both load into the same in-memory
// directory so the conversational core never sees the storage choice.
package contacts
