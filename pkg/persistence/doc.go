// Package persistence keeps the local ledger of persistent condition
// registrations made by this process, together with the last state the
// dispatch address received for each name.
//
// The ledger is a JSON file. The service stays authoritative for which
// registrations exist; the ledger lets the CLI list what this process
// registered and detect same-name replacement.
package persistence
