package multipart

import (
	"bytes"
	"context"
	"fmt"

	mperrors "github.com/input-output-hk/catalyst-forge-libs/multipart/errors"
)

// SelfCheckKey is the object TestUpload writes. It is overwritten on every run.
const SelfCheckKey = ".multipart-self-check"

// selfCheckSize is the size of the self-check object; small enough to be a
// single part on every backend.
const selfCheckSize = 100

// TestUpload runs a complete upload round trip of a small self-check object:
// initialize, PUT the single part, complete, then stat the result. It is an
// operational check of credentials, bucket access and URL signing, not part
// of the steady-state upload path.
func (m *Manager) TestUpload(ctx context.Context) error {
	payload := bytes.Repeat([]byte("multipart"), selfCheckSize/len("multipart")+1)[:selfCheckSize]

	init, err := m.InitializeUpload(ctx, SelfCheckKey, selfCheckSize, "application/octet-stream")
	if err != nil {
		return err
	}

	manifest, err := m.transfer.Upload(ctx, init, bytes.NewReader(payload))
	if err != nil {
		m.abort(ctx, SelfCheckKey, init.UploadID)
		return mperrors.NewError("testUpload", err).WithKey(SelfCheckKey).WithUploadID(init.UploadID)
	}

	completed, err := m.CompleteUpload(ctx, manifest)
	if err != nil {
		m.abort(ctx, SelfCheckKey, init.UploadID)
		return err
	}

	if err := m.transfer.Complete(ctx, completed); err != nil {
		m.abort(ctx, SelfCheckKey, init.UploadID)
		return mperrors.NewError("testUpload", err).WithKey(SelfCheckKey).WithUploadID(init.UploadID)
	}

	size, err := m.GetObjectSize(ctx, SelfCheckKey)
	if err != nil {
		return err
	}
	if size != selfCheckSize {
		return mperrors.NewError("testUpload", mperrors.ErrBackendUnavailable).
			WithKey(SelfCheckKey).
			WithMessage(fmt.Sprintf("stored object has %d bytes, want %d", size, selfCheckSize))
	}

	if m.logger != nil {
		m.logger.InfoContext(ctx, "self-check upload succeeded",
			"backend", m.adapter.Name(),
			"key", SelfCheckKey)
	}
	return nil
}
