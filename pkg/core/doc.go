// Package core defines the shared language of dabiro.
//
// This package contains:
//   - Connection and catalog entities (ConnectionDescriptor, TableRef, Column, TableStats)
//   - Data shapes exchanged with callers (Record, ResultSet, QueryRequest, Page)
//   - Structural inputs (ColumnDef) and batch results (BulkResult)
//   - The error taxonomy shared by every component
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
