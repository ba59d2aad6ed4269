// Package domain models the festival dataset and the pure transforms applied
// to it before anything is written to disk.
//
// # Data Source
//
// Rows come from the "DATA-TRANCE" spreadsheet, exported as CSV or XLSX. Each
// row describes one electronic music festival with seven free-text columns:
// name, country, continent, approximate coordinates, genres, average
// attendance and ticket prices. Column titles are Portuguese in the original
// sheet ("Nome do Festival", "Média de público", ...); the reader maps them to
// [RawRow] fields before this package sees them.
//
// # Dataset Conventions
//
// Coordinates:
//
//	"<lat>,<lon>" in decimal degrees, e.g. "51.0917,4.3844" (Tomorrowland).
//	GeoJSON output swaps the order to [lon, lat].
//	Anything that is not exactly two finite numbers within range is treated as
//	missing; the record stays in the table but gets no map feature.
//
// Attendance:
//
//	Free text written by hand: "400000", "10,000 to 15,000", "cerca de 8000
//	pessoas", "Não informado". A comma followed by exactly three digits is a
//	thousands separator ("10,000"); any other comma separates two numbers
//	("5000,7000"). Ranges collapse to the mean of their first two numbers.
//	See [ExtractAttendance].
//
// Missing values:
//
//	Blank genres become "Multigênero"; every other blank text field becomes
//	"Não informado", the same placeholder the sheet already uses.
//
// Size classification:
//
//	Large  >= 20 000 attendees
//	Medium >= 5 000
//	Small  below 5 000
//	Unknown when attendance has no number in it
//
// # ID Generation
//
// Feature IDs are truncated SHA-256 hashes of name|country|lat|lon|line, so a
// re-run over the same sheet yields the same IDs and byte-identical output.
// Duplicate festival names are kept as separate features. See [generateID].
package domain
