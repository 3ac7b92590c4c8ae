// Package file provides the JSON file implementation of the ledger store.
//
// The ledger is a single JSON array of products. Writes are published by
// renaming a fully written temp file over the ledger, so readers never see a
// partial file. A sibling "<ledger>.lock" file excludes concurrent writers
// across processes, and Watch reports newly published ledgers via fsnotify.
package file
