// Package client contains the CLI's building blocks for talking to AirPass.
//
// # Overview
//
//  1. Client, the API contract used by the CLI services, and HTTPClient, its
//     JSON-over-HTTP implementation. HTTPClient sends the session token as a
//     bearer header and maps response codes to sentinel errors.
//  2. Local persistence bootstrap (InitDatabase, RunMigrations,
//     NewRepositories) wiring an SQLite file with embedded goose migrations.
//
// # Error Handling
//
// Transport failures surface as ErrUnavailable (common.ErrorOffline), which
// the CLI treats as "offline". API errors map to common.ErrorValidation,
// ErrUnauthorized, common.ErrorNotFound, common.ErrorAlreadyExists,
// ErrRateLimited or common.ErrorInternal; match them with errors.Is.
package client
