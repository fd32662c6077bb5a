// Package minio stores nilq artifacts in MinIO or any other S3-compatible
// service (Ceph, Garage, SeaweedFS) through the MinIO client.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := minioblob.NewStore(client, "quotients", "nilq/")
//	res, err := nilq.Run(ctx, src, nilq.WithCheckpoints(store))
//
// Checkpoints are written with Put; rendered results stream through Create.
package minio
