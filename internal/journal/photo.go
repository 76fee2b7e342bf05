package journal

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"slices"
	"strings"

	"github.com/tartampluch/go-together/internal/config"
)

// AddPhoto reads an image and stores it as a base64 data URL. An empty contentType
// is sniffed from the first bytes.
func (s *Service) AddPhoto(ctx context.Context, r io.Reader, contentType string) (Photo, error) {
	raw, err := io.ReadAll(io.LimitReader(r, config.MaxPhotoBytes+1))
	if err != nil {
		return Photo{}, fmt.Errorf("%s: %w", config.ErrDecodePhoto, err)
	}
	if len(raw) == 0 {
		return Photo{}, invalid("data", ReasonRequired)
	}
	if len(raw) > config.MaxPhotoBytes {
		return Photo{}, ErrPhotoTooLarge
	}
	if strings.TrimSpace(contentType) == "" {
		contentType = http.DetectContentType(raw)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, config.MimeImagePrefix) {
		return Photo{}, invalid("contentType", ReasonInvalid)
	}

	p := Photo{
		ID:        s.newID(),
		Data:      config.DataURLPrefix + mediaType + config.DataURLBase64 + base64.StdEncoding.EncodeToString(raw),
		CreatedAt: s.clock.Now().UTC(),
	}
	err = s.update(ctx, func(d *Data) error {
		d.Photos = append(d.Photos, p)
		return nil
	})
	return p, err
}

// Photos returns every stored photo.
func (s *Service) Photos(ctx context.Context) ([]Photo, error) {
	var out []Photo
	err := s.view(ctx, func(d *Data) error {
		out = slices.Clone(d.Photos)
		return nil
	})
	return out, err
}

// DeletePhoto removes a photo.
func (s *Service) DeletePhoto(ctx context.Context, id string) error {
	return s.update(ctx, func(d *Data) error {
		i := indexByID(d.Photos, id, func(p Photo) string { return p.ID })
		if i < 0 {
			return ErrNotFound
		}
		d.Photos = slices.Delete(d.Photos, i, i+1)
		return nil
	})
}

// PhotoBytes decodes a stored photo back into its bytes and content type.
func (s *Service) PhotoBytes(ctx context.Context, id string) ([]byte, string, error) {
	var url string
	err := s.view(ctx, func(d *Data) error {
		i := indexByID(d.Photos, id, func(p Photo) string { return p.ID })
		if i < 0 {
			return ErrNotFound
		}
		url = d.Photos[i].Data
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return DecodeDataURL(url)
}

// DecodeDataURL splits a base64 data URL into bytes and content type.
func DecodeDataURL(url string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(url, config.DataURLPrefix)
	if !ok {
		return nil, "", fmt.Errorf("%s: missing %q prefix", config.ErrDecodePhoto, config.DataURLPrefix)
	}
	contentType, payload, ok := strings.Cut(rest, config.DataURLBase64)
	if !ok {
		return nil, "", fmt.Errorf("%s: not base64", config.ErrDecodePhoto)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", config.ErrDecodePhoto, err)
	}
	return raw, contentType, nil
}
