package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/engine"
)

// ImportStats counts the records an import added.
type ImportStats struct {
	Diaries       int  `json:"diaries"`
	Anniversaries int  `json:"anniversaries"`
	Moments       int  `json:"moments"`
	Capsules      int  `json:"timeCapsules"`
	Photos        int  `json:"photos"`
	Profile       bool `json:"profile"`
}

// importDoc accepts both current backups and older ones that used "capsules".
type importDoc struct {
	UserProfile   *Profile        `json:"userProfile"`
	Settings      json.RawMessage `json:"settings"`
	Diaries       []Diary         `json:"diaries"`
	Anniversaries []Anniversary   `json:"anniversaries"`
	Moments       []Moment        `json:"moments"`
	TimeCapsules  []Capsule       `json:"timeCapsules"`
	Capsules      []Capsule       `json:"capsules"`
	Photos        []Photo         `json:"photos"`
}

// BackupFileName returns the suggested export file name for the given day.
func BackupFileName(now time.Time) string {
	return fmt.Sprintf(config.BackupFilePattern, now.Format(config.DateFormatFullDash))
}

// Export writes the whole document as indented JSON.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	d, err := s.Data(ctx)
	if err != nil {
		return err
	}
	b := Backup{
		Data:       *d,
		ExportedAt: s.clock.Now().UTC(),
		Version:    config.BackupVersion,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("%s: %w", config.ErrEncodeData, err)
	}
	return nil
}

// Import merges a backup into the current document. Imported records come first;
// records whose ID is already present are skipped. A profile in the backup
// replaces the current one, and its settings override only the keys they carry.
func (s *Service) Import(ctx context.Context, r io.Reader) (ImportStats, error) {
	var doc importDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return ImportStats{}, fmt.Errorf("%s: %w", config.ErrDecodeBackup, err)
	}
	if p := doc.UserProfile; p != nil && p.StartDate != "" {
		if _, err := engine.ParseAnchor(p.StartDate, s.loc); err != nil {
			return ImportStats{}, invalid("userProfile.startDate", ReasonInvalid)
		}
	}

	var stats ImportStats
	err := s.update(ctx, func(d *Data) error {
		if doc.UserProfile != nil {
			d.UserProfile = *doc.UserProfile
			stats.Profile = true
		}
		if len(doc.Settings) > 0 {
			merged := d.Settings
			if err := json.Unmarshal(doc.Settings, &merged); err != nil {
				return fmt.Errorf("%s: %w", config.ErrDecodeBackup, err)
			}
			d.Settings = merged
		}

		d.Diaries, stats.Diaries = mergeByID(doc.Diaries, d.Diaries, func(e Diary) string { return e.ID })
		d.Anniversaries, stats.Anniversaries = mergeByID(doc.Anniversaries, d.Anniversaries, func(a Anniversary) string { return a.ID })
		d.Moments, stats.Moments = mergeByID(doc.Moments, d.Moments, func(m Moment) string { return m.ID })
		capsules := append(doc.TimeCapsules, doc.Capsules...)
		d.TimeCapsules, stats.Capsules = mergeByID(capsules, d.TimeCapsules, func(c Capsule) string { return c.ID })
		d.Photos, stats.Photos = mergeByID(doc.Photos, d.Photos, func(p Photo) string { return p.ID })
		return nil
	})
	if err != nil {
		return ImportStats{}, err
	}

	slog.Info(config.MsgImportDone,
		config.LogKeyComponent, config.CompJournal,
		config.LogKeyStats, stats,
	)
	return stats, nil
}

// Reset deletes the whole document; the next read starts from defaults.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, s.key); err != nil {
		return err
	}
	slog.Info(config.MsgDataReset, config.LogKeyComponent, config.CompJournal)
	return nil
}

// mergeByID returns imported followed by current, keeping the first record for each
// ID, and how many records were added compared to current.
func mergeByID[T any](imported, current []T, id func(T) string) ([]T, int) {
	seen := make(map[string]struct{}, len(imported)+len(current))
	out := make([]T, 0, len(imported)+len(current))
	for _, list := range [][]T{imported, current} {
		for _, item := range list {
			k := id(item)
			if _, dup := seen[k]; dup && k != "" {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, item)
		}
	}
	return out, len(out) - len(current)
}
