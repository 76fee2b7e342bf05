package journal

import (
	"time"

	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/engine"
)

// Data is the whole journal document. JSON names match the browser backups so
// exports from either side can be imported by the other.
type Data struct {
	UserProfile   Profile       `json:"userProfile"`
	Settings      Settings      `json:"settings"`
	Diaries       []Diary       `json:"diaries"`
	Anniversaries []Anniversary `json:"anniversaries"`
	Moments       []Moment      `json:"moments"`
	TimeCapsules  []Capsule     `json:"timeCapsules"`
	Photos        []Photo       `json:"photos"`
}

// Profile describes the couple. StartDate is the anchor of the duration counter.
type Profile struct {
	ID          string    `json:"id"`
	MyName      string    `json:"myName"`
	PartnerName string    `json:"partnerName"`
	StartDate   string    `json:"startDate"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DisplayNames returns both names with the usual placeholders for blanks.
func (p Profile) DisplayNames() (string, string) {
	me, partner := p.MyName, p.PartnerName
	if me == "" {
		me = config.DefaultMyName
	}
	if partner == "" {
		partner = config.DefaultPartnerName
	}
	return me, partner
}

type Settings struct {
	Theme         string `json:"theme"`
	Language      string `json:"language"`
	Notifications bool   `json:"notifications"`
}

type Diary struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Mood      string    `json:"mood"`
	Weather   string    `json:"weather,omitempty"`
	Images    []string  `json:"images,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Anniversary kinds.
const (
	KindAnniversary = "anniversary"
	KindBirthday    = "birthday"
	KindCustom      = "custom"
)

// Anniversary is an annual date. Date is YYYY-MM-DD, or --MM-DD when the year is unknown.
type Anniversary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// Upcoming pairs an anniversary with its next occurrence.
type Upcoming struct {
	Anniversary
	Next engine.Occurrence `json:"next"`
}

// Moment kinds.
const (
	MomentMessage   = "message"
	MomentPhoto     = "photo"
	MomentMilestone = "milestone"
	MomentGift      = "gift"
)

type Moment struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Content    string    `json:"content"`
	FromUser   string    `json:"fromUser"`
	FromUserID string    `json:"fromUserId,omitempty"`
	ToUser     string    `json:"toUser,omitempty"`
	Images     []string  `json:"images,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	IsRead     bool      `json:"isRead"`
}

// Capsule is a note that stays sealed until OpenDate (YYYY-MM-DD).
type Capsule struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	OpenDate  string    `json:"openDate"`
	CreatedAt time.Time `json:"createdAt"`
	IsOpened  bool      `json:"isOpened"`
}

// CapsuleStatus is derived from IsOpened and OpenDate.
type CapsuleStatus string

const (
	CapsuleAll    CapsuleStatus = "all"
	CapsuleSealed CapsuleStatus = "sealed"
	CapsuleReady  CapsuleStatus = "ready"
	CapsuleOpened CapsuleStatus = "opened"
)

// Photo holds the image as a data URL.
type Photo struct {
	ID        string    `json:"id"`
	Data      string    `json:"data"`
	CreatedAt time.Time `json:"createdAt"`
}

// DiaryFilter selects a time window for ListDiaries.
type DiaryFilter string

const (
	FilterAll   DiaryFilter = "all"
	FilterToday DiaryFilter = "today"
	FilterWeek  DiaryFilter = "week"
	FilterMonth DiaryFilter = "month"
)

// Page is one slice of a listing.
type Page[T any] struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Items []T `json:"data"`
}

// Backup is the export envelope.
type Backup struct {
	Data
	ExportedAt time.Time `json:"exportedAt"`
	Version    string    `json:"version"`
}

func defaultData(id string, now time.Time) *Data {
	return &Data{
		UserProfile: Profile{ID: id, CreatedAt: now},
		Settings: Settings{
			Theme:         config.DefaultTheme,
			Language:      config.DefaultLanguage,
			Notifications: true,
		},
		Diaries:       []Diary{},
		Anniversaries: []Anniversary{},
		Moments:       []Moment{},
		TimeCapsules:  []Capsule{},
		Photos:        []Photo{},
	}
}
