// Package core provides the business logic for CSV to spreadsheet conversion.
//
// This package is the heart of the converter, containing all domain logic
// independent of any UI or transport layer. It can be used by web handlers,
// the batch CLI, or tests without modification.
//
// # Architecture
//
// The package is organized around two stateless functions and the glue that
// the hosts share:
//
//   - Reader: [ReadTable] decodes raw bytes under an ordered list of candidate
//     encodings and parses them as comma-separated text. First success wins.
//   - Classifier: [Classify] proposes a column name from a sample of its
//     values using an ordered rule table.
//   - Table: the in-memory representation, with drop, fill and rename.
//   - Export: [WriteXLSX] renders a finalized table as a workbook.
//   - Service: upload sessions held in memory for the web host.
//
// # Reading
//
// Candidates are tried in [DefaultEncodings] order (UTF-8, Latin-1,
// Windows-1252). Every attempt reads the original bytes from the start, so a
// failed attempt never leaves a partially consumed cursor behind. When no
// candidate parses, the error wraps [ErrReadFailure]; callers report it per
// file and move on.
//
// # Classification
//
// Rules are evaluated in a fixed order and the first rule satisfied by the
// sample wins:
//
//	CPF, Phone, Birth Date, Name, ID / Medical Record Number, Email, Value
//
// Every rule requires all sampled values to match, except Email, which fires
// when any value contains "@". Columns that match nothing are labelled
// [LabelColumn].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE006: File errors (size, format, encoding, count)
//   - TBL001-TBL003: Column edit errors (unknown, duplicate, empty names)
//   - UPL001-UPL004: Upload errors (busy, session expired, cancelled, timeout)
package core
