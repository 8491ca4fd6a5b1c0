package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/input-output-hk/catalyst-forge-libs/multipart"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/internal/config"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/sizes"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/transfer"
)

// newManager builds a Manager from the configuration at path.
func newManager(ctx context.Context, path string, stderr io.Writer) (*multipart.Manager, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := cfg.Storage.BuildStore(ctx)
	if err != nil {
		return nil, err
	}

	return multipart.New(store,
		multipart.WithPartSize(cfg.Upload.PartSize),
		multipart.WithPresignExpiry(cfg.Upload.PresignExpiry),
		multipart.WithLogger(cfg.Log.NewLogger(stderr)),
	)
}

func runCheck(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := newFlagSet("check", stderr)
	configPath := flags.String("config", os.Getenv("MULTIPART_CONFIG"), "configuration file")
	if err := parse(flags, args, 0); err != nil {
		return err
	}

	m, err := newManager(ctx, *configPath, stderr)
	if err != nil {
		return err
	}
	if err := m.TestUpload(ctx); err != nil {
		return fmt.Errorf("self-check failed: %w", err)
	}

	fmt.Fprintf(stdout, "ok: %s backend accepted a %s round trip\n", m.Backend(), multipart.SelfCheckKey)
	return nil
}

type planOutput struct {
	FileSize int64        `json:"file_size"`
	PartSize int64        `json:"part_size"`
	Parts    []sizes.Part `json:"parts"`
}

// runPlan prints the plan against S3 limits without contacting a backend.
func runPlan(args []string, stdout, stderr io.Writer) error {
	flags := newFlagSet("plan", stderr)
	partSize := flags.Int64("part-size", multipart.DefaultPartSize, "nominal part size in bytes")
	if err := parse(flags, args, 1); err != nil {
		return err
	}

	fileSize, err := strconv.ParseInt(flags.Arg(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid file size %q: %w", flags.Arg(0), err)
	}

	parts, err := sizes.Plan(fileSize, *partSize, sizes.S3Limits)
	if err != nil {
		return err
	}

	return printJSON(stdout, planOutput{
		FileSize: fileSize,
		PartSize: parts[0].Size,
		Parts:    parts,
	})
}

type uploadOutput struct {
	ObjectKey   string `json:"object_key"`
	UploadID    string `json:"upload_id"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Parts       int    `json:"parts"`
}

func runUpload(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := newFlagSet("upload", stderr)
	configPath := flags.String("config", os.Getenv("MULTIPART_CONFIG"), "configuration file")
	key := flags.String("key", "", "object key (default uploads/<uuid>/<file name>)")
	contentType := flags.String("content-type", "", "content type (default detected from the file)")
	concurrency := flags.Int("concurrency", 5, "parts transferred at once")
	if err := parse(flags, args, 1); err != nil {
		return err
	}

	path, err := filepath.Abs(flags.Arg(0))
	if err != nil {
		return err
	}

	src, err := openSource(billy.NewOSFS("/"), path)
	if err != nil {
		return err
	}
	defer src.file.Close()

	if *contentType == "" {
		*contentType = src.contentType
	}
	if *key == "" {
		*key = defaultKey(uuid.NewString(), path)
	}

	m, err := newManager(ctx, *configPath, stderr)
	if err != nil {
		return err
	}

	init, err := m.InitializeUpload(ctx, *key, src.size, *contentType)
	if err != nil {
		return err
	}

	client := transfer.New(transfer.WithConcurrency(*concurrency))
	if err := send(ctx, m, init.ObjectKey, init.UploadID, func() error {
		manifest, err := client.Upload(ctx, init, src.file)
		if err != nil {
			return err
		}
		completed, err := m.CompleteUpload(ctx, manifest)
		if err != nil {
			return err
		}
		return client.Complete(ctx, completed)
	}); err != nil {
		return err
	}

	return printJSON(stdout, uploadOutput{
		ObjectKey:   init.ObjectKey,
		UploadID:    init.UploadID,
		ContentType: *contentType,
		Size:        src.size,
		Parts:       len(init.Parts),
	})
}

// send runs fn and aborts the upload if it fails. Abort failures are
// logged by the manager.
func send(ctx context.Context, m *multipart.Manager, key, uploadID string, fn func() error) error {
	if err := fn(); err != nil {
		// ctx may already be cancelled
		_ = m.AbortUpload(context.WithoutCancel(ctx), key, uploadID)
		return err
	}
	return nil
}

func runSize(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := newFlagSet("size", stderr)
	configPath := flags.String("config", os.Getenv("MULTIPART_CONFIG"), "configuration file")
	if err := parse(flags, args, 1); err != nil {
		return err
	}

	m, err := newManager(ctx, *configPath, stderr)
	if err != nil {
		return err
	}

	size, err := m.GetObjectSize(ctx, flags.Arg(0))
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, size)
	return nil
}

// source is an opened upload source.
type source struct {
	file        fs.File
	size        int64
	contentType string
}

// openSource opens path on fsys and sniffs its content type from the first
// 512 bytes.
func openSource(fsys fs.Filesystem, path string) (*source, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	file, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 512)
	n, err := file.ReadAt(buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		_ = file.Close()
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return &source{
		file:        file,
		size:        info.Size(),
		contentType: mimetype.Detect(buf[:n]).String(),
	}, nil
}

func defaultKey(id, path string) string {
	return "uploads/" + id + "/" + filepath.Base(path)
}
