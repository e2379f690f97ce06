package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/docuflow/lifecycle-backend/internal/data/repos"
	types "github.com/docuflow/lifecycle-backend/internal/domain"
	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
)

// FileUpload describes an incoming attachment.
type FileUpload struct {
	OriginalName string
	Mimetype     string
	Content      io.Reader
}

type FileService interface {
	// Upload stores the attachment on disk under the version and records the
	// upload in the entity's history.
	Upload(ctx context.Context, actorID, versionID uuid.UUID, upload FileUpload) (*types.File, error)
	Get(ctx context.Context, id uuid.UUID) (*types.File, error)
	ListByVersion(ctx context.Context, versionID uuid.UUID) ([]*types.File, error)
	// Delete removes the row and the history records the removal; disk cleanup
	// is best-effort.
	Delete(ctx context.Context, actorID, id uuid.UUID) error
	// Open returns a reader over the stored bytes for download.
	Open(ctx context.Context, id uuid.UUID) (*types.File, io.ReadCloser, error)
}

type fileService struct {
	db          *gorm.DB
	log         *logger.Logger
	fileRepo    repos.FileRepo
	versionRepo repos.VersionRepo
	historyRepo repos.HistoryRepo
	dir         string
	maxSize     int64
}

func NewFileService(db *gorm.DB, log *logger.Logger, fileRepo repos.FileRepo, versionRepo repos.VersionRepo, historyRepo repos.HistoryRepo, dir string, maxSize int64) (FileService, error) {
	serviceLog := log.With("service", "FileService")
	if strings.TrimSpace(dir) == "" {
		dir = "uploads/files"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if maxSize <= 0 {
		maxSize = 25 << 20
	}
	return &fileService{
		db:          db,
		log:         serviceLog,
		fileRepo:    fileRepo,
		versionRepo: versionRepo,
		historyRepo: historyRepo,
		dir:         dir,
		maxSize:     maxSize,
	}, nil
}

func (fs *fileService) Upload(ctx context.Context, actorID, versionID uuid.UUID, upload FileUpload) (*types.File, error) {
	if strings.TrimSpace(upload.OriginalName) == "" {
		return nil, types.ValidationError("file name is required")
	}

	version, err := fs.versionRepo.GetByID(ctx, nil, versionID)
	if err != nil {
		return nil, types.MapError(err)
	}

	storedName := uuid.NewString() + sanitizeExt(upload.OriginalName)
	destPath := filepath.Join(fs.dir, storedName)

	dest, err := os.Create(destPath)
	if err != nil {
		return nil, types.StorageError("failed to store file")
	}
	hasher := sha256.New()
	// Reject anything past the limit instead of truncating silently.
	written, err := io.Copy(io.MultiWriter(dest, hasher), io.LimitReader(upload.Content, fs.maxSize+1))
	closeErr := dest.Close()
	if err != nil || closeErr != nil {
		_ = os.Remove(destPath)
		return nil, types.StorageError("failed to store file")
	}
	if written > fs.maxSize {
		_ = os.Remove(destPath)
		return nil, types.ValidationError(fmt.Sprintf("file exceeds the %d byte limit", fs.maxSize))
	}

	file := &types.File{
		ID:           uuid.New(),
		VersionID:    versionID,
		Filename:     storedName,
		OriginalName: upload.OriginalName,
		Filepath:     destPath,
		Mimetype:     upload.Mimetype,
		Size:         written,
		UploadedByID: actorID,
		Checksum:     hex.EncodeToString(hasher.Sum(nil)),
	}

	txErr := fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, cErr := fs.fileRepo.Create(ctx, tx, file); cErr != nil {
			return fmt.Errorf("create file row: %w", cErr)
		}
		if _, hErr := fs.historyRepo.Append(ctx, tx, &types.HistoryEntry{
			ID:          uuid.New(),
			EntityID:    version.EntityID,
			ChangedByID: actorID,
			Action:      types.ActionFileUploaded,
			Comment:     fmt.Sprintf("File %s uploaded to version %d", upload.OriginalName, version.VersionNumber),
		}); hErr != nil {
			return fmt.Errorf("record upload: %w", hErr)
		}
		return nil
	})
	if txErr != nil {
		_ = os.Remove(destPath)
		return nil, types.MapError(txErr)
	}
	fs.log.Info("File uploaded", "file_id", file.ID, "version_id", versionID, "size", written)
	return file, nil
}

func (fs *fileService) Get(ctx context.Context, id uuid.UUID) (*types.File, error) {
	file, err := fs.fileRepo.GetWithRelations(ctx, nil, id)
	if err != nil {
		return nil, types.MapError(err)
	}
	return file, nil
}

func (fs *fileService) ListByVersion(ctx context.Context, versionID uuid.UUID) ([]*types.File, error) {
	if _, err := fs.versionRepo.GetByID(ctx, nil, versionID); err != nil {
		return nil, types.MapError(err)
	}
	files, err := fs.fileRepo.ListByVersion(ctx, nil, versionID)
	if err != nil {
		return nil, types.MapError(err)
	}
	return files, nil
}

func (fs *fileService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	var storedPath string
	err := fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		file, gErr := fs.fileRepo.GetByID(ctx, tx, id)
		if gErr != nil {
			return gErr
		}
		version, vErr := fs.versionRepo.GetByID(ctx, tx, file.VersionID)
		if vErr != nil {
			return vErr
		}
		if dErr := fs.fileRepo.Delete(ctx, tx, id); dErr != nil {
			return fmt.Errorf("delete file row: %w", dErr)
		}
		if _, hErr := fs.historyRepo.Append(ctx, tx, &types.HistoryEntry{
			ID:          uuid.New(),
			EntityID:    version.EntityID,
			ChangedByID: actorID,
			Action:      types.ActionFileDeleted,
			Comment:     fmt.Sprintf("File %s deleted from version %d", file.OriginalName, version.VersionNumber),
		}); hErr != nil {
			return fmt.Errorf("record deletion: %w", hErr)
		}
		storedPath = file.Filepath
		return nil
	})
	if err != nil {
		return types.MapError(err)
	}
	if rErr := os.Remove(storedPath); rErr != nil && !os.IsNotExist(rErr) {
		fs.log.Warn("Failed to remove stored file", "path", storedPath, "error", rErr)
	}
	return nil
}

func (fs *fileService) Open(ctx context.Context, id uuid.UUID) (*types.File, io.ReadCloser, error) {
	file, err := fs.fileRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, nil, types.MapError(err)
	}
	reader, err := os.Open(file.Filepath)
	if err != nil {
		return nil, nil, types.StorageError("stored file is missing")
	}
	return file, reader, nil
}

// sanitizeExt keeps only a plain extension so stored names never carry path
// fragments from the client.
func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if ext == "." || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[min(len(ext), 1):] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
