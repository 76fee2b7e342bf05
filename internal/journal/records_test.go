package journal

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-together/internal/config"
)

// -----------------------------------------------------------------------------
// Anniversaries
// -----------------------------------------------------------------------------

func TestAddAnniversary_Validation(t *testing.T) {
	tests := []struct {
		name    string
		annName string
		date    string
		kind    string
		wantErr bool
		want    string
	}{
		{"Full date", "First date", "2021-03-08", "", false, "2021-03-08"},
		{"No year", "Valentine", "--02-14", KindCustom, false, "--02-14"},
		{"No year basic", "Valentine", "--0214", KindCustom, false, "--02-14"},
		{"Leap day without year", "Leap", "--02-29", "", false, "--02-29"},
		{"Missing name", "", "2021-03-08", "", true, ""},
		{"Missing date", "x", "", "", true, ""},
		{"Impossible date", "x", "2023-02-30", "", true, ""},
		{"Impossible month day", "x", "--02-30", "", true, ""},
		{"Bare month day", "x", "02-14", "", true, ""},
		{"Unknown kind", "x", "2021-03-08", "holiday", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(t)
			a, err := svc.AddAnniversary(context.Background(), tt.annName, tt.date, tt.kind)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.Date)
			assert.NotEmpty(t, a.Type)
		})
	}
}

func TestUpcoming(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddAnniversary(ctx, "Birthday", "1990-06-20", KindBirthday)
	require.NoError(t, err)
	_, err = svc.AddAnniversary(ctx, "Valentine", "--02-14", KindCustom)
	require.NoError(t, err)
	_, err = svc.AddAnniversary(ctx, "Together", "2020-06-15", KindAnniversary)
	require.NoError(t, err)

	all, err := svc.Anniversaries(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"--02-14", "1990-06-20", "2020-06-15"},
		[]string{all[0].Date, all[1].Date, all[2].Date})

	next, err := svc.Upcoming(ctx, 2)
	require.NoError(t, err)
	require.Len(t, next, 2)

	assert.Equal(t, "Together", next[0].Name)
	assert.Equal(t, 0, next[0].Next.DaysUntil)
	assert.True(t, next[0].Next.Today())
	assert.Equal(t, 4, next[0].Next.Ordinal)

	assert.Equal(t, "Birthday", next[1].Name)
	assert.Equal(t, 5, next[1].Next.DaysUntil)
	assert.Equal(t, 34, next[1].Next.Ordinal)

	every, err := svc.Upcoming(ctx, 0)
	require.NoError(t, err)
	require.Len(t, every, 3)
	assert.Equal(t, "Valentine", every[2].Name)
	assert.Equal(t, time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC), every[2].Next.Date)
	assert.Zero(t, every[2].Next.Ordinal)
}

func TestUpcomingFrom_SkipsUnparsable(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	got := UpcomingFrom([]Anniversary{
		{Name: "broken", Date: "someday"},
		{Name: "ok", Date: "--06-16"},
	}, now, 0)
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].Name)
	assert.Equal(t, 1, got[0].Next.DaysUntil)
}

func TestDeleteAnniversary(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.AddAnniversary(ctx, "x", "2020-01-01", "")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteAnniversary(ctx, a.ID))
	assert.ErrorIs(t, svc.DeleteAnniversary(ctx, a.ID), ErrNotFound)
}

func TestImportAnniversaries(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddAnniversary(ctx, "Alice", "1990-03-04", KindBirthday)
	require.NoError(t, err)

	added, err := svc.ImportAnniversaries(ctx, []Anniversary{
		{Name: "Alice", Date: "1990-03-04", Type: KindBirthday}, // already there
		{Name: "Bob", Date: "--07-01", Type: KindBirthday},
		{Name: "Bob", Date: "--07-01", Type: KindBirthday}, // duplicate in input
		{Name: "  ", Date: "2000-01-01"},
		{Name: "Broken", Date: "soon"},
		{Name: "Wedding", Date: "2015-09-12"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	all, err := svc.Anniversaries(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Bob", all[0].Name, "--MM-DD sorts first")
	assert.NotEmpty(t, all[0].ID)
	assert.Equal(t, KindAnniversary, all[2].Type)
}

// -----------------------------------------------------------------------------
// Moments
// -----------------------------------------------------------------------------

func TestMoments(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Onboard(ctx, "Alice", "Bob", "2023-02-14")
	require.NoError(t, err)

	_, err = svc.PublishMoment(ctx, "", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.PublishMoment(ctx, "", strings.Repeat("a", config.MaxMomentRunes+1))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.PublishMoment(ctx, "poke", "hi")
	assert.ErrorIs(t, err, ErrValidation)

	first, err := svc.PublishMoment(ctx, "", "想你啦")
	require.NoError(t, err)
	assert.Equal(t, MomentMessage, first.Type)
	assert.Equal(t, "Alice", first.FromUser)
	assert.Equal(t, "Bob", first.ToUser)
	assert.False(t, first.IsRead)

	clock.Advance(time.Minute)
	second, err := svc.PublishMoment(ctx, MomentMilestone, "500 days")
	require.NoError(t, err)

	list, err := svc.Moments(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	limited, err := svc.Moments(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	milestones, err := svc.Milestones(ctx)
	require.NoError(t, err)
	require.Len(t, milestones, 1)
	assert.Equal(t, "500 days", milestones[0].Content)

	n, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, svc.MarkMomentRead(ctx, first.ID))
	assert.ErrorIs(t, svc.MarkMomentRead(ctx, "missing"), ErrNotFound)

	changed, err := svc.MarkAllMomentsRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	n, err = svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestQuickMessages_ReturnsCopy(t *testing.T) {
	msgs := QuickMessages()
	require.NotEmpty(t, msgs)
	msgs[0] = "changed"
	assert.NotEqual(t, "changed", QuickMessages()[0])
}

// -----------------------------------------------------------------------------
// Capsules
// -----------------------------------------------------------------------------

func TestCapsules(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCapsule(ctx, "future", "2024-06-15")
	assert.ErrorIs(t, err, ErrValidation, "today is not after today")
	_, err = svc.CreateCapsule(ctx, "", "2024-07-01")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateCapsule(ctx, "future", "next year")
	assert.ErrorIs(t, err, ErrValidation)

	soon, err := svc.CreateCapsule(ctx, "open me tomorrow", "2024-06-16")
	require.NoError(t, err)
	later, err := svc.CreateCapsule(ctx, "open me next year", "2025-06-15")
	require.NoError(t, err)

	sealed, err := svc.Capsules(ctx, CapsuleSealed)
	require.NoError(t, err)
	assert.Len(t, sealed, 2)

	_, err = svc.OpenCapsule(ctx, soon.ID)
	assert.ErrorIs(t, err, ErrCapsuleLocked)

	// The next day the first capsule becomes ready.
	clock.Advance(24 * time.Hour)
	ready, err := svc.Capsules(ctx, CapsuleReady)
	require.NoError(t, err)
	require.Len(t, ready, 1)
	assert.Equal(t, soon.ID, ready[0].ID)

	opened, err := svc.OpenCapsule(ctx, soon.ID)
	require.NoError(t, err)
	assert.True(t, opened.IsOpened)

	again, err := svc.OpenCapsule(ctx, soon.ID)
	require.NoError(t, err, "opening twice is harmless")
	assert.Equal(t, opened, again)

	_, err = svc.OpenCapsule(ctx, later.ID)
	assert.ErrorIs(t, err, ErrCapsuleLocked)
	_, err = svc.OpenCapsule(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := svc.Capsules(ctx, CapsuleAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, CapsuleOpened, svc.CapsuleStatus(all[0]))
	assert.Equal(t, CapsuleSealed, svc.CapsuleStatus(all[1]))
}

// -----------------------------------------------------------------------------
// Photos
// -----------------------------------------------------------------------------

func TestPhotos(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	png := []byte("\x89PNG\r\n\x1a\n0000")
	p, err := svc.AddPhoto(ctx, bytes.NewReader(png), "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.Data, "data:image/png;base64,"))

	raw, contentType, err := svc.PhotoBytes(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, png, raw)
	assert.Equal(t, "image/png", contentType)

	explicit, err := svc.AddPhoto(ctx, strings.NewReader("gif-ish"), "image/gif")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(explicit.Data, "data:image/gif;base64,"))

	list, err := svc.Photos(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.DeletePhoto(ctx, p.ID))
	_, _, err = svc.PhotoBytes(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeletePhoto(ctx, p.ID), ErrNotFound)
}

func TestAddPhoto_Limits(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddPhoto(ctx, strings.NewReader(""), "image/png")
	assert.ErrorIs(t, err, ErrValidation)

	for _, ct := range []string{"image/png;base64,AAAA", "text/plain", "not a type"} {
		_, err = svc.AddPhoto(ctx, strings.NewReader("data"), ct)
		assert.ErrorIs(t, err, ErrValidation, ct)
	}
	_, err = svc.AddPhoto(ctx, strings.NewReader("plain words"), "")
	assert.ErrorIs(t, err, ErrValidation, "sniffed text is not a photo")

	p, err := svc.AddPhoto(ctx, strings.NewReader("gif-ish"), "Image/GIF; name=us.gif")
	require.NoError(t, err)
	_, contentType, err := svc.PhotoBytes(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "image/gif", contentType, "parameters are dropped")

	big := bytes.NewReader(make([]byte, config.MaxPhotoBytes+1))
	_, err = svc.AddPhoto(ctx, big, "image/png")
	assert.ErrorIs(t, err, ErrPhotoTooLarge)
}

func TestDecodeDataURL_Errors(t *testing.T) {
	for _, url := range []string{"http://x", "data:image/png,raw", "data:image/png;base64,***"} {
		_, _, err := DecodeDataURL(url)
		assert.Error(t, err, url)
	}
}
