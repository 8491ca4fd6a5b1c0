package transfer

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	mperrors "github.com/input-output-hk/catalyst-forge-libs/multipart/errors"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/mptypes"
)

// maxErrorBody bounds how much of an error response is read for diagnostics.
const maxErrorBody = 64 << 10

// Client performs HTTP transfers against presigned URLs.
type Client struct {
	http        *http.Client
	concurrency int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for transfers.
// If client is nil, http.DefaultClient is used.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithConcurrency sets the maximum number of parts transferred at once.
// Default is 5.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// New creates a transfer client.
func New(opts ...Option) *Client {
	c := &Client{
		http:        http.DefaultClient,
		concurrency: 5,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PutPart uploads exactly part.Size bytes read from body to the part's
// presigned URL and returns the ETag the store issued.
func (c *Client) PutPart(
	ctx context.Context,
	part mptypes.PartInitialization,
	body io.Reader,
) (mptypes.TransferredPart, error) {
	// The presigned request may have Content-Length signed, so the body must
	// be exactly the planned size.
	src := &partReader{r: body, part: part.PartNumber, size: part.Size}
	var reqBody io.Reader = src
	if part.Size == 0 {
		reqBody = http.NoBody
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, part.UploadURL, reqBody)
	if err != nil {
		return mptypes.TransferredPart{}, mperrors.NewError("putPart", fmt.Errorf("%w: %w", mperrors.ErrInvalidInput, err))
	}
	req.ContentLength = part.Size
	for name, value := range part.Headers {
		if strings.EqualFold(name, "Content-Length") {
			continue
		}
		req.Header.Set(name, value)
	}

	resp, err := c.http.Do(req)
	if srcErr := src.failure(); srcErr != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return mptypes.TransferredPart{}, srcErr
	}
	if err != nil {
		return mptypes.TransferredPart{}, mperrors.Translate("putPart", mperrors.ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		return mptypes.TransferredPart{}, responseError("putPart", resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	etag := resp.Header.Get("ETag")
	if etag == "" {
		return mptypes.TransferredPart{}, mperrors.NewError("putPart", mperrors.ErrBackendUnavailable).
			WithMessage(fmt.Sprintf("part %d: response carried no ETag", part.PartNumber))
	}

	return mptypes.TransferredPart{
		PartNumber: part.PartNumber,
		Size:       part.Size,
		ETag:       etag,
	}, nil
}

// partReader streams at most size bytes of a part and records an error when
// the source ends before size bytes were read. The transport may still be
// reading when the response arrives, so the recorded error is guarded.
type partReader struct {
	r    io.Reader
	part int
	size int64
	read int64

	mu  sync.Mutex
	err error
}

func (p *partReader) Read(b []byte) (int, error) {
	if err := p.failure(); err != nil {
		return 0, err
	}
	remaining := p.size - p.read
	if remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(b)) > remaining {
		b = b[:remaining]
	}

	n, err := p.r.Read(b)
	p.read += int64(n)
	switch {
	case err == io.EOF && p.read < p.size:
		return n, p.fail(mperrors.NewError("putPart", mperrors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("part %d: got %d bytes, want %d", p.part, p.read, p.size)))
	case err != nil && err != io.EOF:
		return n, p.fail(mperrors.NewError("putPart", fmt.Errorf("read part %d: %w", p.part, err)))
	}
	return n, err
}

func (p *partReader) fail(err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
	return err
}

func (p *partReader) failure() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Complete sends the completion document to the presigned completion URL.
// S3 may answer 200 and still report a failure in the body, so the body is
// inspected for an Error document.
func (c *Client) Complete(ctx context.Context, completed *mptypes.CompletedUpload) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, completed.CompleteURL, strings.NewReader(completed.Body))
	if err != nil {
		return mperrors.NewError("complete", fmt.Errorf("%w: %w", mperrors.ErrInvalidInput, err))
	}
	req.Header.Set("Content-Type", "application/xml")
	req.ContentLength = int64(len(completed.Body))

	resp, err := c.http.Do(req)
	if err != nil {
		return mperrors.Translate("complete", mperrors.ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		return responseError("complete", resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return mperrors.Translate("complete", mperrors.ErrBackendUnavailable, err)
	}
	if e, ok := parseError(body); ok {
		return mperrors.NewError("complete", classifyCode(e.Code, resp.StatusCode)).
			WithMessage(e.String())
	}

	return nil
}

// Upload transfers every part of init from r and returns the manifest for
// CompleteUpload. Part i is read at the offset given by the sizes of the
// parts before it. The first failure cancels the remaining transfers.
func (c *Client) Upload(
	ctx context.Context,
	init *mptypes.UploadInitialization,
	r io.ReaderAt,
) (mptypes.TransferredParts, error) {
	type partResult struct {
		index int
		part  mptypes.TransferredPart
		err   error
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	numParts := len(init.Parts)
	results := make(chan partResult, numParts)
	parts := make([]mptypes.TransferredPart, numParts)

	// Use semaphore to limit concurrent uploads
	sem := make(chan struct{}, c.concurrency)

	var wg sync.WaitGroup
	var offset int64
	for i, p := range init.Parts {
		wg.Add(1)
		go func(index int, part mptypes.PartInitialization, off int64) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results <- partResult{index: index, err: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			transferred, err := c.PutPart(ctx, part, io.NewSectionReader(r, off, part.Size))
			results <- partResult{index: index, part: transferred, err: err}
		}(i, p, offset)
		offset += p.Size
	}

	// Close results channel when all workers are done
	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	for result := range results {
		if result.err != nil {
			if firstErr == nil {
				firstErr = result.err
				cancel()
			}
			continue
		}
		parts[result.index] = result.part
	}
	if firstErr != nil {
		return mptypes.TransferredParts{}, firstErr
	}

	return mptypes.TransferredParts{
		ObjectKey: init.ObjectKey,
		UploadID:  init.UploadID,
		Parts:     parts,
	}, nil
}

// s3Error is the error document S3-compatible stores return.
type s3Error struct {
	XMLName  xml.Name `xml:"Error"`
	Code     string   `xml:"Code"`
	Message  string   `xml:"Message"`
	Resource string   `xml:"Resource"`
}

func (e s3Error) String() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func parseError(body []byte) (s3Error, bool) {
	var e s3Error
	if len(bytes.TrimSpace(body)) == 0 {
		return e, false
	}
	if err := xml.Unmarshal(body, &e); err != nil || e.Code == "" {
		return e, false
	}
	return e, true
}

func responseError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := "HTTP " + strconv.Itoa(resp.StatusCode)
	code := ""
	if e, ok := parseError(body); ok {
		msg += ": " + e.String()
		code = e.Code
	}
	return mperrors.NewError(op, classifyCode(code, resp.StatusCode)).WithMessage(msg)
}

// classifyCode maps an S3 error code (or, failing that, the HTTP status) to
// a sentinel.
func classifyCode(code string, status int) error {
	switch code {
	case "EntityTooSmall", "EntityTooLarge":
		return mperrors.ErrPartSizeConstraint
	case "InvalidPart", "InvalidPartOrder", "NoSuchUpload":
		return mperrors.ErrInvalidInput
	case "NoSuchKey":
		return mperrors.ErrObjectNotFound
	case "KeyTooLongError", "InvalidObjectName", "XMinioInvalidObjectName":
		return mperrors.ErrInvalidKey
	}
	if status == http.StatusNotFound && code == "" {
		return mperrors.ErrObjectNotFound
	}
	return mperrors.ErrBackendUnavailable
}
