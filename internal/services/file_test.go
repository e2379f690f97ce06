package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/lifecycle-backend/internal/data/repos/testutil"
	types "github.com/docuflow/lifecycle-backend/internal/domain"
)

func newFileService(t *testing.T, env *testEnv, maxSize int64) FileService {
	t.Helper()
	log := testutil.Logger(t)
	svc, err := NewFileService(env.db, log, env.fileRepo, env.versionRepo, env.historyRepo, t.TempDir(), maxSize)
	if err != nil {
		t.Fatalf("init file service: %v", err)
	}
	return svc
}

func TestUploadStoresFileWithChecksumAndHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)
	creator := testutil.SeedContributor(t, ctx, env.db, "author@example.com")
	entity := env.seedEntity(t, creator.ID)
	files := newFileService(t, env, 1<<20)

	body := "attachment body"
	file, err := files.Upload(ctx, creator.ID, entity.Versions[0].ID, FileUpload{
		OriginalName: "notes.txt",
		Mimetype:     "text/plain",
		Content:      strings.NewReader(body),
	})
	require.NoError(t, err)
	require.Equal(t, "notes.txt", file.OriginalName)
	require.True(t, strings.HasSuffix(file.Filename, ".txt"))
	require.Equal(t, int64(len(body)), file.Size)

	sum := sha256.Sum256([]byte(body))
	require.Equal(t, hex.EncodeToString(sum[:]), file.Checksum)

	stored, err := os.ReadFile(file.Filepath)
	require.NoError(t, err)
	require.Equal(t, body, string(stored))

	n, err := env.historyRepo.CountByEntityAction(ctx, nil, entity.ID, types.ActionFileUploaded)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)
	creator := testutil.SeedContributor(t, ctx, env.db, "author@example.com")
	entity := env.seedEntity(t, creator.ID)
	files := newFileService(t, env, 16)

	_, err := files.Upload(ctx, creator.ID, entity.Versions[0].ID, FileUpload{
		OriginalName: "big.bin",
		Content:      strings.NewReader(strings.Repeat("x", 17)),
	})
	require.ErrorIs(t, err, types.ErrValidation)

	// Nothing persisted for the rejected upload.
	listed, err := files.ListByVersion(ctx, entity.Versions[0].ID)
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestUploadRejectsUnknownVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := testutil.SeedContributor(t, ctx, env.db, "author@example.com")
	files := newFileService(t, env, 1<<20)

	_, err := files.Upload(ctx, creator.ID, uuid.New(), FileUpload{
		OriginalName: "notes.txt",
		Content:      strings.NewReader("body"),
	})
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestOpenStreamsStoredBytes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)
	creator := testutil.SeedContributor(t, ctx, env.db, "author@example.com")
	entity := env.seedEntity(t, creator.ID)
	files := newFileService(t, env, 1<<20)

	uploaded, err := files.Upload(ctx, creator.ID, entity.Versions[0].ID, FileUpload{
		OriginalName: "notes.txt",
		Content:      strings.NewReader("download me"),
	})
	require.NoError(t, err)

	file, reader, err := files.Open(ctx, uploaded.ID)
	require.NoError(t, err)
	defer reader.Close()
	require.Equal(t, uploaded.ID, file.ID)

	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, "download me", string(body))
}

func TestDeleteFileRemovesRowDiskAndLogsIt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedDefaults(t)
	creator := testutil.SeedContributor(t, ctx, env.db, "author@example.com")
	entity := env.seedEntity(t, creator.ID)
	files := newFileService(t, env, 1<<20)

	uploaded, err := files.Upload(ctx, creator.ID, entity.Versions[0].ID, FileUpload{
		OriginalName: "notes.txt",
		Content:      strings.NewReader("to be removed"),
	})
	require.NoError(t, err)

	require.NoError(t, files.Delete(ctx, creator.ID, uploaded.ID))

	_, err = files.Get(ctx, uploaded.ID)
	require.ErrorIs(t, err, types.ErrNotFound)

	_, statErr := os.Stat(uploaded.Filepath)
	require.True(t, os.IsNotExist(statErr))

	n, err := env.historyRepo.CountByEntityAction(ctx, nil, entity.ID, types.ActionFileDeleted)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestSanitizeExtStripsHostilePaths(t *testing.T) {
	cases := map[string]string{
		"notes.txt":               ".txt",
		"archive.tar.GZ":          ".gz",
		"no-extension":            "",
		"../../etc/passwd":        "",
		"shell.sh;rm -rf /":       "",
		"report.v2.PDF":           ".pdf",
		"trailing-dot.":           "",
		"weird.superduperlongext": "",
	}
	for name, want := range cases {
		if got := sanitizeExt(name); got != want {
			t.Errorf("sanitizeExt(%q) = %q, want %q", name, got, want)
		}
	}
}
