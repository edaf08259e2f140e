// Package core provides the business logic of the daily sales report (DSR)
// service.
//
// It holds every operation independent of transport, so the HTTP server,
// the import tool and tests share one implementation.
//
// # Service
//
// [Service] wraps a [Store] and the outlet's [reconcile.Calculator]:
//
//   - Entries: [Service.CreateEntry], [Service.PreviewEntry],
//     [Service.DeleteEntry], [Service.EntryExpenses].
//   - History: [Service.Dashboard] and [Service.History] aggregate a
//     [DateRange]; the range defaults to month-to-date in the outlet's zone.
//   - Files: [Service.Import] reads the legacy sheet, [Service.ExportCSV] and
//     [Service.ExportXLSX] write it back in the same column layout.
//
// # Change feed
//
// Every write publishes a [ChangeEvent] on the service [Hub]. Subscribers
// that fall behind are dropped rather than slowing writers down.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Sentinel errors ([ErrNotFound], [ErrDuplicateDate], [ErrNoValidRecords],
// [ErrTooManyImports]) are wrapped with context and tested with errors.Is.
//
// # Audit Logging
//
// Entry writes, imports and sign-ups are recorded in the audit log. Old
// audit entries are archived on a cron schedule by
// [Service.StartArchiveScheduler].
package core
