package i18n_test

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/engine"
	"github.com/tartampluch/go-together/internal/i18n"
)

// TestI18nIntegrity ensures every translation key declared in config exists in the catalog.
func TestI18nIntegrity(t *testing.T) {
	keys := []string{
		config.TKeyWinTitle,
		config.TKeyTrayStatus,
		config.TKeyTrayIdle,
		config.TKeyMenuOpen,
		config.TKeyMenuRefresh,
		config.TKeyMenuQuit,
		config.TKeyLblCouple,
		config.TKeyLblSince,
		config.TKeyLblUpcoming,
		config.TKeyLblNoUpcoming,
		config.TKeyLblOnboard,
		config.TKeyLblQuitHint,
		config.TKeyElapsed,
		config.TKeyTotalDays,
		config.TKeyCountToday,
		config.TKeyCountDays,
		config.TKeyAgoJustNow,
		config.TKeyAgoMinutes,
		config.TKeyAgoHours,
		config.TKeyAgoDays,
		config.TKeyEvtSummary,
		config.TKeyEvtSummaryYear,
		config.TKeyCapsuleSealed,
		config.TKeyCapsuleReady,
		config.TKeyCapsuleOpened,
		config.TKeyUnread,
		config.TKeyMenuSettings,
		config.TKeyWinSettings,
		config.TKeyLblProfile,
		config.TKeyLblMyName,
		config.TKeyLblPartnerName,
		config.TKeyLblStartDate,
		config.TKeyLblContacts,
		config.TKeyModeCardDAV,
		config.TKeyModeLocal,
		config.TKeyLblURL,
		config.TKeyLblUser,
		config.TKeyLblPass,
		config.TKeyLblReminder,
		config.TKeyLblDaysBefore,
		config.TKeyHelpReminder,
		config.TKeyBtnBrowse,
		config.TKeyBtnSave,
		config.TKeyBtnCancel,
		config.TKeyBtnImport,
		config.TKeyNotifImported,
		config.TKeyNotifError,
		config.TKeyColName,
		config.TKeyColDate,
		config.TKeyColCountdown,
	}
	defined := make(map[string]bool, len(keys))
	for _, k := range keys {
		defined[k] = true
	}

	content, err := os.ReadFile("locales/active.zh-CN.json")
	require.NoError(t, err)

	var catalog map[string]any
	require.NoError(t, json.Unmarshal(content, &catalog), "JSON must be valid")

	for key := range defined {
		_, ok := catalog[key]
		assert.Truef(t, ok, "key %q is missing in active.zh-CN.json", key)
	}
	for key := range catalog {
		if strings.HasPrefix(key, "_") {
			continue
		}
		assert.Truef(t, defined[key], "key %q is not declared in config", key)
	}
}

func TestNew(t *testing.T) {
	tr, err := i18n.New("")
	require.NoError(t, err)
	assert.Contains(t, tr.Languages(), "zh-CN")
	assert.Equal(t, "我们在一起", tr.T(config.TKeyWinTitle, nil))

	// Unknown languages fall back to the default catalog.
	fr := i18n.MustNew("fr")
	assert.Equal(t, "退出", fr.T(config.TKeyMenuQuit, nil))
}

func TestT_MissingKey(t *testing.T) {
	tr := i18n.MustNew("")
	assert.Equal(t, "no_such_key", tr.T("no_such_key", nil))

	var nilTr *i18n.Translator
	assert.Equal(t, "x", nilTr.T("x", nil))
}

func TestCountdown(t *testing.T) {
	tr := i18n.MustNew("")
	tests := []struct {
		days int
		want string
	}{
		{0, "今天"},
		{1, "1天后"},
		{214, "214天后"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tr.Countdown(tt.days))
	}
}

func TestTimeAgo(t *testing.T) {
	tr := i18n.MustNew("")
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		then time.Time
		want string
	}{
		{"Seconds", now.Add(-30 * time.Second), "刚刚"},
		{"Future", now.Add(time.Hour), "刚刚"},
		{"Minutes", now.Add(-5 * time.Minute), "5分钟前"},
		{"Hours", now.Add(-3 * time.Hour), "3小时前"},
		{"Days", now.Add(-49 * time.Hour), "2天前"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.TimeAgo(tt.then, now))
		})
	}
}

func TestFormatters(t *testing.T) {
	tr := i18n.MustNew("")

	assert.Equal(t, "1年2月3天", tr.Elapsed(engine.Elapsed{Years: 1, Months: 2, Days: 3}))
	assert.Equal(t, "在一起纪念日 (第2年)", tr.Summary("在一起纪念日", 2, true))
	assert.Equal(t, "生日", tr.Summary("生日", 0, true))
	assert.Equal(t, "生日", tr.Summary("生日", 5, false))
	assert.Equal(t, "在一起 520 天", tr.T(config.TKeyTrayStatus, map[string]any{"Days": 520}))

	assert.Equal(t, "未到期", tr.CapsuleStatus("sealed"))
	assert.Equal(t, "可开启", tr.CapsuleStatus("ready"))
	assert.Equal(t, "已开启", tr.CapsuleStatus("opened"))
}
