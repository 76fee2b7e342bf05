package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Together/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Together"
	AppID             = "com.github.tartampluch.go-together"
	KeyringService    = "com.github.tartampluch.go-together"
	CommandName       = "together"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	ConfigDirName     = ".together"
	DataDirName       = "data"
	DatabaseFileName  = "journal.db"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess   = 0
	ExitCodeUserError = 1
	ExitCodeSysError  = 2
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and the journal database.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagDebug         = "debug"
	FlagConfigDir     = "config-dir"
	FlagDataDir       = "data-dir"
	FlagJSON          = "json"
	FlagDescDebug     = "Enable debug logging"
	FlagDescConfigDir = "configuration directory (default: $HOME/.together)"
	FlagDescDataDir   = "data directory (default: <config-dir>/data)"
	FlagDescJSON      = "output as JSON"
	MsgVersionOutput  = "%s version %s (%s/%s, commit %s, built %s)\n"
	EnvPrefix         = "TOGETHER"

	FlagMe        = "me"
	FlagPartner   = "partner"
	FlagStart     = "start"
	FlagMood      = "mood"
	FlagWeather   = "weather"
	FlagContent   = "content"
	FlagFilter    = "filter"
	FlagDate      = "date"
	FlagPage      = "page"
	FlagLimit     = "limit"
	FlagType      = "type"
	FlagAll       = "all"
	FlagOpen      = "open"
	FlagStatus    = "status"
	FlagYes       = "yes"
	FlagFile      = "file"
	FlagURL       = "url"
	FlagUser      = "user"
	FlagPassword  = "password"
	FlagServe     = "serve"
	FlagNoWatch   = "no-watch"
	FlagMime      = "content-type"
	FlagDescMe    = "your name"
	FlagDescPart  = "your partner's name"
	FlagDescStart = "the day you got together (YYYY-MM-DD or RFC 3339)"
	FlagDescMood  = "mood: happy, loved, grateful, peaceful or excited"
	FlagDescWthr  = "weather note"
	FlagDescCont  = "new content"
	FlagDescFilt  = "time window: all, today, week or month"
	FlagDescDate  = "only entries written on this day (YYYY-MM-DD)"
	FlagDescPage  = "page number, starting at 1"
	FlagDescLimit = "maximum number of results (0 = default)"
	FlagDescAType = "kind: anniversary, birthday or custom"
	FlagDescMType = "kind: message, photo, milestone or gift"
	FlagDescAll   = "mark every moment as read"
	FlagDescOpen  = "day the capsule may be opened (YYYY-MM-DD)"
	FlagDescCStat = "status: all, sealed, ready or opened"
	FlagDescYes   = "confirm the destructive operation"
	FlagDescFile  = "local vCard file"
	FlagDescURL   = "CardDAV or vCard URL"
	FlagDescUser  = "address book user name"
	FlagDescPass  = "password (read from stdin when omitted)"
	FlagDescServe = "also serve the calendar feed on localhost"
	FlagDescNoWtc = "do not watch the data directory for changes"
	FlagDescMime  = "image content type (sniffed when omitted)"

	// StdioPath selects stdin or stdout instead of a file.
	StdioPath = "-"
)

// -----------------------------------------------------------------------------
// CLI Output
// -----------------------------------------------------------------------------

const (
	OutOnboarded     = "Started counting from %s\n"
	OutCreated       = "Created %s %s\n"
	OutUpdated       = "Updated %s %s\n"
	OutDeleted       = "Deleted %s %s\n"
	OutMarkedRead    = "Marked %d moment(s) as read\n"
	OutImported      = "Imported %d diaries, %d anniversaries, %d moments, %d capsules, %d photos\n"
	OutContacts      = "Imported %d anniversaries from the address book\n"
	OutExported      = "Exported journal to %s\n"
	OutPhotoSaved    = "Wrote %d bytes to %s\n"
	OutReset         = "Journal reset\n"
	OutLoggedIn      = "Password saved for %s\n"
	OutServing       = "Serving calendar on http://%s:%s%s\n"
	OutPasswordQuery = "Password: "
	OutPageFooter    = "page %d, %d of %d\n"
	OutNone          = "(none)"

	RecordDiary       = "diary"
	RecordAnniversary = "anniversary"
	RecordMoment      = "moment"
	RecordCapsule     = "capsule"
	RecordPhoto       = "photo"

	ErrConfirmReset = "refusing to reset without --yes"
	ErrIDOrAll      = "an id or --all is required"
	ErrUserRequired = "--user is required"
	ErrEmptyPass    = "password is empty"
	ErrReadInput    = "failed to read input"
	ErrWriteOutput  = "failed to write output"
)

// -----------------------------------------------------------------------------
// Configuration File Keys & Defaults
// -----------------------------------------------------------------------------

const (
	ConfigFileName = "config"
	ConfigFileType = "toml"
	ConfigFileExt  = "config.toml"

	CfgKeyDataDir  = "data_dir"
	CfgKeyPort     = "server.port"
	CfgKeyTimezone = "timezone"
	CfgKeyReminder = "calendar.reminder"
	CfgKeyLogLevel = "log.level"
	CfgKeyRefresh  = "server.refresh_minutes"

	DefaultPort       = "18081"
	DefaultTimezone   = "Local"
	DefaultReminder   = "-P1D"
	DefaultLogLevel   = "info"
	DefaultRefreshMin = 60
	DisabledInterval  = 0

	// DefaultConfigTOML is written on first run.
	DefaultConfigTOML = `# Go Together configuration

# Directory holding journal.db (overridable by --data-dir)
# data_dir = ""

# IANA zone used for "today" and for date-times without an offset.
timezone = "Local"

[server]
port = "18081"
refresh_minutes = 60

[calendar]
# ISO-8601 duration before each anniversary; empty disables reminders.
reminder = "-P1D"

[log]
level = "info"
`
)

// -----------------------------------------------------------------------------
// Engine Constants
// -----------------------------------------------------------------------------

const (
	// TickInterval is the cadence at which the duration notifier republishes.
	TickInterval = time.Second

	SecondsPerDay    = 86400
	SecondsPerHour   = 3600
	SecondsPerMinute = 60
	HoursPerDay      = 24
	MinutesPerHour   = 60
	DaysPerYear      = 365 // fixed, leap years ignored
	DaysPerMonth     = 30  // fixed

	// DefaultLeapYear is used to validate month/day pairs without a year (--02-29 is legal).
	DefaultLeapYear = 2000
)

// -----------------------------------------------------------------------------
// Journal Limits & Vocabulary
// -----------------------------------------------------------------------------

const (
	StorageKeyData   = "dadawang_pipixia_data"
	BackupVersion    = "1.0"
	MaxDiaryRunes    = 2000
	MaxMomentRunes   = 280
	MaxPhotoBytes    = 8 * 1024 * 1024
	DefaultPageSize  = 10
	DefaultMomentCap = 20
	UpcomingDefault  = 3

	DefaultMood        = "happy"
	DefaultMomentKind  = "message"
	DefaultTheme       = "warm"
	DefaultLanguage    = "zh-CN"
	DefaultMyName      = "我"
	DefaultPartnerName = "TA"
	FirstAnniversary   = "在一起纪念日"
	FallbackName       = "Unknown"

	// BackupFilePattern expects the export date (2006-01-02).
	BackupFilePattern = "together_backup_%s.json"
)

// Moods lists the accepted diary moods.
var Moods = []string{"happy", "loved", "grateful", "peaceful", "excited"}

// MoodIcons maps moods to their display glyphs.
var MoodIcons = map[string]string{
	"happy":    "😊",
	"loved":    "😍",
	"grateful": "🙏",
	"peaceful": "😌",
	"excited":  "🤩",
}

// AnniversaryIcons maps anniversary kinds to their display glyphs.
var AnniversaryIcons = map[string]string{
	"anniversary": "💕",
	"birthday":    "🎂",
	"custom":      "📌",
}

// QuickMessages are the canned moment texts offered by the composer.
var QuickMessages = []string{"想你啦", "今天超开心", "爱你哟", "晚安", "早安", "么么哒", "有你真好", "一起加油"}

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Together//Calendar//ZH"
	ICalCalName   = "纪念日"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gotogether"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropCategories  = "CATEGORIES"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardBDAY        = "BDAY"
	VCardAnniversary = "ANNIVERSARY"
	VCardFN          = "FN"
	VCardN           = "N"

	DefaultICalRefresh = 1 * time.Hour

	// SummaryFormatYears is the event title when the year count is known.
	SummaryFormatYears = "%s (第%d年)"

	// CalNameFormat titles the feed with both names.
	CalNameFormat = "%s & %s · " + ICalCalName

	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Data Formats & UID Generation
// -----------------------------------------------------------------------------

const (
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatLocalT    = "2006-01-02T15:04:05"
	DateFormatLocalTM   = "2006-01-02T15:04"
	DateFormatMonthDay  = "01-02"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"
	DateFormatDisplay   = "2006-01-02 15:04"

	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"
	UIDSalt         = "go-together-v1-"

	DataURLPrefix   = "data:"
	DataURLBase64   = ";base64,"
	MimeImagePrefix = "image/"
)

// -----------------------------------------------------------------------------
// Desktop UI
// -----------------------------------------------------------------------------

const (
	IconFile = "together.svg"

	CounterWinWidth   = 380
	CounterWinHeight  = 440
	SettingsWinWidth  = 480
	LayoutColumnsPair = 2
	MaxDayDigits      = 3

	ColIDName      = 0
	ColIDDate      = 1
	ColIDCountdown = 2
	ColCount       = 3

	ColWidthName      = 170
	ColWidthDate      = 110
	ColWidthCountdown = 80
	TablePlaceholder  = "..."

	PrefSourceMode   = "source_mode"
	PrefCardDAVURL   = "carddav_url"
	PrefUsername     = "carddav_user"
	PrefLocalPath    = "vcard_path"
	PrefReminderDays = "reminder_days"

	SourceModeWeb   = "web"
	SourceModeLocal = "local"
	ExtVCF          = ".vcf"
	ExtVCard        = ".vcard"
	PlaceholderURL  = "https://dav.example.com/addressbook.vcf"

	// FormatReminderDays builds an ISO-8601 trigger N days before the event.
	FormatReminderDays = "-P%dD"
)

// IconSVG is the tray and window icon.
const IconSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 64 64">` +
	`<path fill="#FF6B9D" d="M32 56S6 40 6 22a13 13 0 0 1 26-4 13 13 0 0 1 26 4c0 18-26 34-26 34z"/></svg>`

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	WatchDebounce       = 250 * time.Millisecond
	RetryAfterSeconds   = "10"
	MaxHTTPResponseSize = 64 * 1024 * 1024
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"

	RouteCalendar = "/calendar.ics"
	RouteStatus   = "/api/status"
	RouteHealth   = "/healthz"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderContentLength   = "Content-Length"
	HeaderRetryAfter      = "Retry-After"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrInvalidAnchor   = "invalid anchor instant"
	ErrInvalidDate     = "invalid month/day"
	ErrNotRunning      = "notifier is not running"
	ErrNotFound        = "record not found"
	ErrValidation      = "validation failed"
	ErrCapsuleLocked   = "capsule cannot be opened before its open date"
	ErrStoreOpen       = "failed to open store"
	ErrStoreRead       = "failed to read store"
	ErrStoreWrite      = "failed to write store"
	ErrStoreClosed     = "store is closed"
	ErrDecodeData      = "failed to decode journal data"
	ErrEncodeData      = "failed to encode journal data"
	ErrDecodeBackup    = "failed to decode backup file"
	ErrDecodePhoto     = "failed to decode photo data"
	ErrPhotoTooLarge   = "photo exceeds size limit"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRequired    = "server port is required"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrBuildRequest    = "failed to build address book request"
	ErrFetch           = "address book download failed"
	ErrHTTPStatus      = "address book server answered"
	ErrVCardParse      = "failed to parse vCard stream"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrDateParse       = "unable to parse date"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create directory"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrConfigRead      = "failed to read configuration"
	ErrTimezone        = "unknown timezone"
	ErrNotOnboarded    = "journal has no start date; run init first"
	ErrWatcher         = "failed to watch data directory"
	ErrKeyring         = "keyring access failed"
	ErrFetcherMissing  = "internal error: network fetcher is not initialized"
	ErrSourceMissing   = "either a file path or a URL is required"
	ErrTrayUnsupported = "system tray not supported on this platform/driver"
	ErrTUI             = "terminal counter failed"
)

// -----------------------------------------------------------------------------
// Translation Keys (i18n)
// -----------------------------------------------------------------------------

const (
	LocalesDir      = "locales"
	LocalePrefix    = "active."
	LocaleExtension = ".json"

	TKeyWinTitle       = "win_title"
	TKeyTrayStatus     = "tray_status"
	TKeyTrayIdle       = "tray_idle"
	TKeyMenuOpen       = "menu_open"
	TKeyMenuRefresh    = "menu_refresh"
	TKeyMenuQuit       = "menu_quit"
	TKeyLblCouple      = "lbl_couple"
	TKeyLblSince       = "lbl_since"
	TKeyLblUpcoming    = "lbl_upcoming"
	TKeyLblNoUpcoming  = "lbl_no_upcoming"
	TKeyLblOnboard     = "lbl_onboard"
	TKeyLblQuitHint    = "lbl_quit_hint"
	TKeyElapsed        = "fmt_elapsed"
	TKeyTotalDays      = "fmt_total_days"
	TKeyCountToday     = "countdown_today"
	TKeyCountDays      = "countdown_days"
	TKeyAgoJustNow     = "ago_just_now"
	TKeyAgoMinutes     = "ago_minutes"
	TKeyAgoHours       = "ago_hours"
	TKeyAgoDays        = "ago_days"
	TKeyEvtSummary     = "evt_summary"
	TKeyEvtSummaryYear = "evt_summary_years"
	TKeyCapsuleSealed  = "capsule_sealed"
	TKeyCapsuleReady   = "capsule_ready"
	TKeyCapsuleOpened  = "capsule_opened"
	TKeyUnread         = "fmt_unread"
	TKeyMenuSettings   = "menu_settings"
	TKeyWinSettings    = "win_settings"
	TKeyLblProfile     = "lbl_profile"
	TKeyLblMyName      = "lbl_my_name"
	TKeyLblPartnerName = "lbl_partner_name"
	TKeyLblStartDate   = "lbl_start_date"
	TKeyLblContacts    = "lbl_contacts"
	TKeyModeCardDAV    = "mode_carddav"
	TKeyModeLocal      = "mode_local"
	TKeyLblURL         = "lbl_url"
	TKeyLblUser        = "lbl_user"
	TKeyLblPass        = "lbl_pass"
	TKeyLblReminder    = "lbl_reminder"
	TKeyLblDaysBefore  = "lbl_days_before"
	TKeyHelpReminder   = "help_reminder"
	TKeyBtnBrowse      = "btn_browse"
	TKeyBtnSave        = "btn_save"
	TKeyBtnCancel      = "btn_cancel"
	TKeyBtnImport      = "btn_import"
	TKeyNotifImported  = "notif_imported"
	TKeyNotifError     = "notif_error"
	TKeyColName        = "col_name"
	TKeyColDate        = "col_date"
	TKeyColCountdown   = "col_countdown"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgInternalErr  = "Internal Server Error"
	HTTPMsgOK           = "ok"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting    = "Starting application"
	MsgAppStop        = "Application stopped gracefully"
	MsgCtxCancel      = "Context cancelled, shutting down"
	MsgNotifierStart  = "Duration notifier started"
	MsgNotifierStop   = "Duration notifier stopped"
	MsgNotifierReject = "Rejected notifier anchor"
	MsgStoreOpened    = "Store opened"
	MsgDataSaved      = "Journal data saved"
	MsgDataCorrupt    = "Stored journal data is corrupt"
	MsgImportDone     = "Backup imported"
	MsgDataReset      = "Journal data reset"
	MsgServerListen   = "HTTP server listening"
	MsgFetchStart     = "Downloading address book"
	MsgFetchStatus    = "Address book server returned an error status"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Calendar cache updated"
	MsgFeedRebuild    = "Rebuilding calendar feed"
	MsgFeedFailed     = "Calendar feed rebuild failed"
	MsgWatchStart     = "Watching data directory"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgSkippedDate    = "Skipping invalid date format"
	MsgContactsParsed = "Contacts parsed"
	MsgGenSuccess     = "Calendar generation successful"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgPassFail       = "Password retrieval failed (might be empty)"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgConfigCreated  = "Default configuration written"
	MsgWorkerStart    = "Background worker started"
	MsgWorkerStop     = "Worker stopping due to context cancellation"
	MsgAnniversaryDue = "Anniversary is today"
	MsgTUIStart       = "Terminal counter started"
	MsgTUIStop        = "Terminal counter stopped"
	MsgUIStart        = "Desktop counter started"
	MsgUIRefresh      = "Desktop counter refreshed"
	MsgOpenWin        = "Opening window"
	MsgSettingsSaved  = "Desktop settings saved"
	MsgContactsAdded  = "Contacts imported into the journal"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyPath      = "path"
	LogKeyAnchor    = "anchor"
	LogKeyCadence   = "cadence"
	LogKeyName      = "name"
	LogKeyDate      = "date"
	LogKeyCount     = "count"
	LogKeyTotal     = "total_cards"
	LogKeyFound     = "dates_found"
	LogKeyToday     = "due_today"
	LogKeyEvents    = "events"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyStats     = "stats"
	LogKeyUser      = "user"
	LogKeyInterval  = "interval"
	LogKeyDuration  = "duration_ms"
	LogKeyManual    = "manual"

	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain     = "main"
	CompNotifier = "notifier"
	CompJournal  = "journal"
	CompStore    = "store"
	CompCalendar = "calendar"
	CompFetcher  = "fetcher"
	CompServer   = "server"
	CompWatcher  = "watcher"
	CompUI       = "ui"
	CompTUI      = "tui"
	CompI18n     = "i18n"
	CompConfig   = "config"
)
