// Package output renders command results as a table, JSON or YAML.
//
// Table columns come from struct fields. The `table` tag renames a
// column (`table:"ROLE"`), hides it (`table:"-"`) or shows it only in
// wide mode (`table:",wide"`).
package output
