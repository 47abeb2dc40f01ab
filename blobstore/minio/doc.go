// Package minio implements blobstore.Store with the MinIO client, for MinIO
// and other S3-compatible servers (Ceph, Garage, SeaweedFS).
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//		Secure: false,
//	})
//	if err != nil {
//		return err
//	}
//	store := minioblob.NewStore(client, "my-bucket", "dicts/")
//	err = dict.Save(ctx, store, "terms.lxf")
package minio
