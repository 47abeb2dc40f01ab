// Package s3 implements blobstore.Store on Amazon S3.
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "dicts/")
//	dict, err := lexfst.Open(ctx, store, "terms.lxf")
//
// Reads use ranged GETs; Create streams through the multipart uploader and
// Put sends a single request carrying a CRC32-C checksum.
package s3
