// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - LedgerStore: Product ledger persistence
//   - ListingSource: Produces observation batches from a storefront
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LedgerLocker: Cross-process exclusion for writers. Without it only the in-process guard applies.
//   - LedgerWatcher: Publish notifications for readers.
//   - NotificationSink: Alert delivery. Without it alerts are computed and logged but not sent.
//   - PassStore: Pass history.
//   - AlertLog: Raised alert history.
//   - SchedulerStore: Scheduler state for crash recovery.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
