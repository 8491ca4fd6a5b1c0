// Package transfer moves bytes to presigned multipart URLs.
//
// The multipart manager only plans and signs; it never touches payload bytes.
// This package is the client-side counterpart: it PUTs each part to its
// presigned URL, collects the ETags the store returns and POSTs the
// completion document. The manager uses it for its self-check, and the
// operator CLI uses it to upload local files.
package transfer
