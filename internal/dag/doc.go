// Package dag holds the commit history of a repository.
//
// The in-memory DAG links commits to their parents and children by id; a
// commit may only name parents that are already present, which keeps the
// graph acyclic. Commits are persisted separately in an ObjectStore, where
// each one is canonical JSON addressed by its CIDv1 (SHA2-256, base32).
package dag
