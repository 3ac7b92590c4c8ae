// Package domain defines the core business entities for stockwatch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Product: A tracked listing with its last reconciled price and status
//   - Ledger: The keyed, ordered collection of tracked products
//   - ObservedListing: One scrape of one product from a listing source
//   - Alert: A notification raised by reconciliation
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
