// Package i18n loads the embedded message catalog and formats the phrases the
// journal shows: countdowns, relative times and duration breakdowns.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/engine"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator resolves message IDs against one language.
type Translator struct {
	bundle    *goi18n.Bundle
	localizer *goi18n.Localizer
	languages []string
}

// New builds a Translator for lang from every embedded active.*.json file.
// An empty lang selects the default language.
func New(lang string) (*Translator, error) {
	bundle := goi18n.NewBundle(language.Make(config.DefaultLanguage))
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir(config.LocalesDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLocalesAccess, err)
	}

	var detected []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, config.LocalePrefix) || !strings.HasSuffix(name, config.LocaleExtension) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}
		code := strings.TrimSuffix(strings.TrimPrefix(name, config.LocalePrefix), config.LocaleExtension)

		if _, err := bundle.LoadMessageFileFS(localeFS, config.LocalesDir+"/"+name); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", config.ErrLocaleLoad, name, err)
		}
		detected = append(detected, code)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, code,
		)
	}

	if lang == "" {
		lang = config.DefaultLanguage
	}
	return &Translator{
		bundle:    bundle,
		localizer: goi18n.NewLocalizer(bundle, lang, config.DefaultLanguage),
		languages: detected,
	}, nil
}

// MustNew is New for callers that embed a known-good catalog.
func MustNew(lang string) *Translator {
	t, err := New(lang)
	if err != nil {
		panic(err)
	}
	return t
}

// Languages lists the catalogs found in the binary.
func (t *Translator) Languages() []string {
	return t.languages
}

// T translates key with optional template data. Unknown keys come back unchanged.
func (t *Translator) T(key string, data map[string]any) string {
	if t == nil || t.localizer == nil {
		return key
	}
	msg, err := t.localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// Countdown renders days until an occurrence: 今天 or N天后.
func (t *Translator) Countdown(daysUntil int) string {
	if daysUntil <= 0 {
		return t.T(config.TKeyCountToday, nil)
	}
	return t.T(config.TKeyCountDays, map[string]any{"Count": daysUntil})
}

// TimeAgo renders how long ago then was relative to now.
func (t *Translator) TimeAgo(then, now time.Time) string {
	unit, n := engine.Since(then, now)
	switch unit {
	case engine.UnitMinutes:
		return t.T(config.TKeyAgoMinutes, map[string]any{"Count": n})
	case engine.UnitHours:
		return t.T(config.TKeyAgoHours, map[string]any{"Count": n})
	case engine.UnitDays:
		return t.T(config.TKeyAgoDays, map[string]any{"Count": n})
	default:
		return t.T(config.TKeyAgoJustNow, nil)
	}
}

// Elapsed renders the year/month/day part of a breakdown.
func (t *Translator) Elapsed(e engine.Elapsed) string {
	return t.T(config.TKeyElapsed, map[string]any{
		"Years":  e.Years,
		"Months": e.Months,
		"Days":   e.Days,
	})
}

// Summary titles a calendar event; it matches calendar.Generator.FormatSummary.
func (t *Translator) Summary(name string, years int, yearKnown bool) string {
	if yearKnown && years > 0 {
		return t.T(config.TKeyEvtSummaryYear, map[string]any{"Name": name, "Years": years})
	}
	return t.T(config.TKeyEvtSummary, map[string]any{"Name": name})
}

// CapsuleStatus names a capsule state.
func (t *Translator) CapsuleStatus(status string) string {
	switch status {
	case "ready":
		return t.T(config.TKeyCapsuleReady, nil)
	case "opened":
		return t.T(config.TKeyCapsuleOpened, nil)
	default:
		return t.T(config.TKeyCapsuleSealed, nil)
	}
}
