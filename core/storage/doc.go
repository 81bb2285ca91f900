// Package storage provides an abstraction layer for the object store vendor
// batch files are delivered to.
//
// It wraps the MinIO Go client with a small interface covering what batch
// ingestion needs: fetching a vendor file, listing files under a vendor
// prefix, checking the bucket, and archiving processed batches. The
// interface keeps storage mockable in unit tests (see core/storage/mocks).
//
// Both AWS S3 and self-hosted MinIO instances are supported.
package storage
