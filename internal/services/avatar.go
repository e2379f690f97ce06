package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/font"

	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
)

// AvatarService renders an initials avatar for a new account and stores it on
// disk. Generation is best-effort from the caller's point of view.
type AvatarService interface {
	// Generate renders and stores the avatar, returning its relative path.
	Generate(ctx context.Context, contributorID uuid.UUID, name string) (string, error)
}

type avatarService struct {
	log      *logger.Logger
	dir      string
	fontFace font.Face
	palette  []color.NRGBA
}

// NewAvatarService loads the TTF at fontPath and prepares the output
// directory. An empty fontPath disables initials; avatars are then a plain
// colored disc.
func NewAvatarService(log *logger.Logger, dir, fontPath string) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	if strings.TrimSpace(dir) == "" {
		dir = "uploads/avatars"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create avatar dir: %w", err)
	}

	var face font.Face
	if strings.TrimSpace(fontPath) != "" {
		loaded, err := loadFontFace(fontPath, 206)
		if err != nil {
			return nil, fmt.Errorf("load avatar font: %w", err)
		}
		face = loaded
	}

	return &avatarService{
		log:      serviceLog,
		dir:      dir,
		fontFace: face,
		palette: []color.NRGBA{
			{R: 0x6B, G: 0x72, B: 0x80, A: 0xFF},
			{R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF},
			{R: 0xF5, G: 0x9E, B: 0x0B, A: 0xFF},
			{R: 0x10, G: 0xB9, B: 0x81, A: 0xFF},
			{R: 0x8B, G: 0x5C, B: 0xF6, A: 0xFF},
			{R: 0xEF, G: 0x44, B: 0x44, A: 0xFF},
		},
	}, nil
}

func (as *avatarService) Generate(ctx context.Context, contributorID uuid.UUID, name string) (string, error) {
	const size = 512

	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()

	dc.SetColor(as.pickColor(name))
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	if as.fontFace != nil {
		initials := computeInitials(name)
		dc.SetFontFace(as.fontFace)
		tw, th := dc.MeasureString(initials)
		cx, cy := float64(size)/2, float64(size)/2
		dc.SetColor(color.White)
		dc.DrawString(initials, cx-(tw/2), cy+(th/2)-10)
	}

	relPath := filepath.Join(as.dir, contributorID.String()+".png")
	if err := dc.SavePNG(relPath); err != nil {
		return "", fmt.Errorf("save avatar: %w", err)
	}
	return relPath, nil
}

// pickColor hashes the name so the same account always renders the same
// background.
func (as *avatarService) pickColor(name string) color.NRGBA {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(name))))
	return as.palette[int(h.Sum32())%len(as.palette)]
}

func computeInitials(name string) string {
	fields := strings.Fields(strings.TrimSpace(name))
	switch len(fields) {
	case 0:
		return "?"
	case 1:
		return firstLetter(fields[0])
	default:
		return firstLetter(fields[0]) + firstLetter(fields[len(fields)-1])
	}
}

// firstLetter takes the leading rune, not the leading byte, so accented
// names keep a valid initial.
func firstLetter(word string) string {
	r, _ := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return "?"
	}
	return strings.ToUpper(string(r))
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
