// Package multipart plans and signs direct-to-storage multipart uploads.
//
// A Manager never handles payload bytes. It opens a multipart session on the
// object store, splits the declared object size into parts and returns one
// presigned URL per part. The client PUTs the bytes itself, reports the ETags
// back, and the Manager returns a presigned completion request with its body.
//
// # Lifecycle
//
//	InitializeUpload -> (client PUTs parts) -> CompleteUpload -> (client POSTs completion)
//	                \______________________ AbortUpload ______________________/
//
// The Manager is stateless. Every call is fully described by its arguments
// (object key, upload id, part manifest); the object store is the only source
// of truth for session state. All methods are safe for concurrent use.
//
// # Backends
//
// New inspects the storage configuration once and selects an adapter:
//
//   - *storage.S3 uses aws-sdk-go-v2; part URLs carry a signed Content-Length
//   - *storage.Minio uses minio-go; part sizes are validated at completion
//
// Any other configuration, including *storage.Local, yields
// ErrUnsupportedBackend. Supported answers the same question without
// building a Manager.
//
// # Errors
//
// Every error wraps one sentinel from the errors subpackage, so callers can
// branch with errors.Is:
//
//	size, err := mgr.GetObjectSize(ctx, key)
//	if mperrors.IsObjectNotFound(err) {
//	    // not uploaded yet
//	}
package multipart
