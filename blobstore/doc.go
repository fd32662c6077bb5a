// Package blobstore stores the artifacts of a quotient run: per-class
// checkpoints, the pointer to the latest checkpoint of a run and rendered
// results.
//
// # Built-in Implementations
//
//   - LocalStore: a directory on the local filesystem
//   - MemoryStore: in-memory, for tests
//   - s3.Store and s3.DDBCommitStore: Amazon S3, optionally with DynamoDB
//     for atomic checkpoint pointers
//   - minio.Store: MinIO and other S3-compatible services
//
// Names are slash separated, e.g. "run-<id>/class-0004.ckpt".
package blobstore
