// Package storage holds the storage configurations the multipart manager can
// be built from.
//
// A configuration is a plain value describing where objects live and which
// client reaches them. The multipart package inspects the concrete type once,
// at construction, to pick a backend adapter:
//
//   - *S3 is driven through aws-sdk-go-v2
//   - *Minio is driven through minio-go
//   - *Local describes filesystem storage, which has no multipart protocol
//     and is rejected with ErrUnsupportedBackend
package storage
