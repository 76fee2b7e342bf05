package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/journal"
)

func TestDiaryCommands(t *testing.T) {
	c := newTestCLI(t)

	var d journal.Diary
	c.runJSON(&d, "diary", "add", "Picnic by the lake", "--mood", "loved", "--weather", "sunny")
	require.NotEmpty(t, d.ID)
	assert.Equal(t, "loved", d.Mood)

	_, err := c.run("diary", "add", "x", "--mood", "grumpy")
	assert.ErrorIs(t, err, journal.ErrValidation)

	list := c.mustRun("diary", "list")
	assert.Contains(t, list, d.ID)
	assert.Contains(t, list, "Picnic by the lake")
	assert.Contains(t, list, "page 1, 1 of 1")

	show := c.mustRun("diary", "show", d.ID)
	assert.Contains(t, show, "2024-06-15 10:00")
	assert.Contains(t, show, "sunny")

	var edited journal.Diary
	c.runJSON(&edited, "diary", "edit", d.ID, "--mood", "grateful")
	assert.Equal(t, "grateful", edited.Mood)
	assert.Equal(t, "Picnic by the lake", edited.Content, "content is kept when not passed")

	var onDay []journal.Diary
	c.runJSON(&onDay, "diary", "list", "--date", "2024-06-15")
	assert.Len(t, onDay, 1)
	c.runJSON(&onDay, "diary", "list", "--date", "2024-06-14")
	assert.Empty(t, onDay)

	_, err = c.run("diary", "list", "--filter", "decade")
	assert.Equal(t, config.ExitCodeUserError, exitCode(err))

	c.mustRun("diary", "rm", d.ID)
	_, err = c.run("diary", "show", d.ID)
	assert.ErrorIs(t, err, journal.ErrNotFound)
	_, err = c.run("diary", "rm", d.ID)
	assert.ErrorIs(t, err, journal.ErrNotFound)
}

func TestDiaryList_Paging(t *testing.T) {
	c := newTestCLI(t)
	for _, content := range []string{"one", "two", "three"} {
		c.mustRun("diary", "add", content)
		c.now = c.now.Add(time.Minute)
	}

	var page journal.Page[journal.Diary]
	c.runJSON(&page, "diary", "list", "--limit", "2", "--page", "2")
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "one", page.Items[0].Content, "newest first")

	c.runJSON(&page, "diary", "list", "--limit", "2", "--page", "4611686018427387905")
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.Total)
}

func TestAnniversaryCommands(t *testing.T) {
	c := newTestCLI(t)

	var ann journal.Anniversary
	c.runJSON(&ann, "anniversary", "add", "--type", "birthday", "Carol", "--07-01")
	assert.Equal(t, "--07-01", ann.Date)
	assert.Equal(t, journal.KindBirthday, ann.Type)

	c.mustRun("ann", "add", "First date", "2021-06-16")

	var upcoming []journal.Upcoming
	c.runJSON(&upcoming, "anniversary", "list")
	require.Len(t, upcoming, 2)
	assert.Equal(t, "First date", upcoming[0].Name)
	assert.Equal(t, 1, upcoming[0].Next.DaysUntil)
	assert.Equal(t, 3, upcoming[0].Next.Ordinal)

	human := c.mustRun("anniversary", "list")
	assert.Contains(t, human, "Carol")
	assert.Contains(t, human, "16天后")

	_, err := c.run("anniversary", "add", "Nope", "2023-02-30")
	assert.ErrorIs(t, err, journal.ErrValidation)

	c.mustRun("anniversary", "rm", ann.ID)
	c.runJSON(&upcoming, "anniversary", "list")
	assert.Len(t, upcoming, 1)
}

func TestMomentCommands(t *testing.T) {
	c := newTestCLI(t)
	c.onboard()

	var m journal.Moment
	c.runJSON(&m, "moment", "post", "想你啦")
	assert.Equal(t, "Alice", m.FromUser)
	assert.Equal(t, journal.MomentMessage, m.Type)

	c.now = c.now.Add(time.Minute)
	var quick journal.Moment
	c.runJSON(&quick, "moment", "post", "--type", "gift")
	assert.Contains(t, journal.QuickMessages(), quick.Content)

	_, err := c.run("moment", "post", "hi", "--type", "poke")
	assert.ErrorIs(t, err, journal.ErrValidation)

	var moments []journal.Moment
	c.runJSON(&moments, "moment", "list")
	require.Len(t, moments, 2)
	assert.Equal(t, quick.ID, moments[0].ID)

	human := c.mustRun("status")
	assert.Contains(t, human, "2 条未读")

	var res map[string]int
	c.runJSON(&res, "moment", "read", m.ID)
	assert.Equal(t, 1, res["marked"])
	c.runJSON(&res, "moment", "read", "--all")
	assert.Equal(t, 1, res["marked"])

	_, err = c.run("moment", "read")
	assert.Equal(t, config.ExitCodeUserError, exitCode(err))
	_, err = c.run("moment", "read", "missing")
	assert.ErrorIs(t, err, journal.ErrNotFound)
}

func TestCapsuleCommands(t *testing.T) {
	c := newTestCLI(t)

	var capsule journal.Capsule
	c.runJSON(&capsule, "capsule", "seal", "open", "me", "tomorrow", "--open", "2024-06-16")
	assert.Equal(t, "open me tomorrow", capsule.Content)

	_, err := c.run("capsule", "seal", "too soon", "--open", "2024-06-15")
	assert.ErrorIs(t, err, journal.ErrValidation)

	_, err = c.run("capsule", "open", capsule.ID)
	assert.ErrorIs(t, err, journal.ErrCapsuleLocked)
	assert.Equal(t, config.ExitCodeUserError, exitCode(err))

	sealed := c.mustRun("capsule", "list")
	assert.Contains(t, sealed, "未到期")
	assert.NotContains(t, sealed, "open me tomorrow", "sealed content stays hidden")

	c.now = c.now.Add(24 * time.Hour)
	var ready []journal.Capsule
	c.runJSON(&ready, "capsule", "list", "--status", "ready")
	require.Len(t, ready, 1)

	out := c.mustRun("capsule", "open", capsule.ID)
	assert.Contains(t, out, "open me tomorrow")

	var opened []journal.Capsule
	c.runJSON(&opened, "capsule", "list", "--status", "opened")
	require.Len(t, opened, 1)
	assert.True(t, opened[0].IsOpened)

	_, err = c.run("capsule", "list", "--status", "lost")
	assert.Equal(t, config.ExitCodeUserError, exitCode(err))
}

func TestPhotoCommands(t *testing.T) {
	c := newTestCLI(t)
	dir := t.TempDir()

	png := []byte("\x89PNG\r\n\x1a\n0000")
	src := filepath.Join(dir, "us.png")
	require.NoError(t, os.WriteFile(src, png, 0o600))

	var added map[string]string
	c.runJSON(&added, "photo", "add", src)
	id := added["id"]
	require.NotEmpty(t, id)

	var views []photoView
	c.runJSON(&views, "photo", "list")
	require.Len(t, views, 1)
	assert.Equal(t, "image/png", views[0].ContentType)
	assert.Equal(t, len(png), views[0].Size)

	dst := filepath.Join(dir, "copy.png")
	c.mustRun("photo", "export", id, dst)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, png, got)

	raw := c.mustRun("photo", "export", id, config.StdioPath)
	assert.Equal(t, string(png), raw)

	c.stdin = "GIF89a..."
	c.runJSON(&added, "photo", "add", config.StdioPath, "--content-type", "image/gif")
	c.runJSON(&views, "photo", "list")
	assert.Len(t, views, 2)

	c.mustRun("photo", "rm", id)
	_, err = c.run("photo", "export", id, dst)
	assert.ErrorIs(t, err, journal.ErrNotFound)
}
