// Package s3 stores checkpoints and results in Amazon S3.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "nilq/")
//
// Wrap the store in a DDBCommitStore when several processes may resume the
// same run, so that checkpoint pointers advance atomically.
package s3
