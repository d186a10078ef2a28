// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookgod/internal/platform/apperr"
	"github.com/taibuivan/bookgod/internal/users/profile"
	"github.com/taibuivan/bookgod/pkg/pointer"
)

const (
	userID = "01900000-0000-7000-8000-00000000a001"
	bookID = "01900000-0000-7000-8000-000000000b01"
)

type memoryProfiles struct {
	rows    map[string]*profile.Profile
	history map[string][]profile.HistoryEntry
	updates int
}

func newMemoryProfiles() *memoryProfiles {
	return &memoryProfiles{rows: map[string]*profile.Profile{}, history: map[string][]profile.HistoryEntry{}}
}

func (store *memoryProfiles) Create(_ context.Context, p *profile.Profile) error {
	if _, exists := store.rows[p.UserID]; exists {
		return apperr.Conflict("Profile already exists")
	}
	copied := *p
	store.rows[p.UserID] = &copied
	return nil
}

func (store *memoryProfiles) FindByUserID(_ context.Context, id string) (*profile.Profile, error) {
	p, ok := store.rows[id]
	if !ok {
		return nil, apperr.NotFoundMessage("User not found")
	}
	copied := *p
	return &copied, nil
}

func (store *memoryProfiles) UpdatePreferences(_ context.Context, id string, prefs profile.Preferences) (*profile.Profile, error) {
	p, ok := store.rows[id]
	if !ok {
		return nil, apperr.NotFoundMessage("User not found")
	}
	store.updates++
	p.Preferences = prefs
	copied := *p
	return &copied, nil
}

func (store *memoryProfiles) AppendHistory(_ context.Context, id, bookID string, at time.Time) error {
	if _, ok := store.rows[id]; !ok {
		return apperr.NotFoundMessage("User not found")
	}
	store.history[id] = append(store.history[id], profile.HistoryEntry{BookID: bookID, LastRead: at})
	return nil
}

func (store *memoryProfiles) ListHistory(_ context.Context, id string, limit int) ([]profile.HistoryEntry, error) {
	entries := append([]profile.HistoryEntry(nil), store.history[id]...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].LastRead.After(entries[j].LastRead) })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func newService() (*profile.Service, *memoryProfiles) {
	store := newMemoryProfiles()
	return profile.NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

/*
TestService_Create applies defaults and rejects a second profile.
*/
func TestService_Create(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	require.NoError(t, service.Create(ctx, userID))

	created, err := service.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, profile.Preferences{Theme: "light", Language: "en"}, created.Preferences)
	assert.Empty(t, created.ReadingHistory)

	err = service.Create(ctx, userID)
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
}

/*
TestService_Get reports a missing profile as "User not found".
*/
func TestService_Get(t *testing.T) {
	service, _ := newService()

	_, err := service.Get(context.Background(), userID)
	require.True(t, apperr.IsNotFound(err))
	assert.Equal(t, "User not found", err.Error())
}

/*
TestService_UpdatePreferences merges partial updates and validates values.
*/
func TestService_UpdatePreferences(t *testing.T) {
	service, store := newService()
	ctx := context.Background()
	require.NoError(t, service.Create(ctx, userID))

	updated, err := service.UpdatePreferences(ctx, userID, profile.PreferencesPatch{Theme: pointer.To("Dark")})
	require.NoError(t, err)
	assert.Equal(t, profile.Preferences{Theme: "dark", Language: "en"}, updated.Preferences)

	updated, err = service.UpdatePreferences(ctx, userID, profile.PreferencesPatch{Language: pointer.To("pt-br")})
	require.NoError(t, err)
	assert.Equal(t, profile.Preferences{Theme: "dark", Language: "pt-BR"}, updated.Preferences)

	// An empty patch is a no-op write
	before := store.updates
	_, err = service.UpdatePreferences(ctx, userID, profile.PreferencesPatch{})
	require.NoError(t, err)
	assert.Equal(t, before, store.updates)

	tests := []struct {
		name  string
		patch profile.PreferencesPatch
	}{
		{"unknown_theme", profile.PreferencesPatch{Theme: pointer.To("sepia")}},
		{"bad_language", profile.PreferencesPatch{Language: pointer.To("not a tag!")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.UpdatePreferences(ctx, userID, tt.patch)
			assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
		})
	}

	_, err = service.UpdatePreferences(ctx, "ghost", profile.PreferencesPatch{Theme: pointer.To("Dark")})
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestService_AddReadingHistory appends entries that Get returns newest first.
*/
func TestService_AddReadingHistory(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	err := service.AddReadingHistory(ctx, userID, bookID)
	assert.True(t, apperr.IsNotFound(err))

	require.NoError(t, service.Create(ctx, userID))
	require.NoError(t, service.AddReadingHistory(ctx, userID, bookID))
	require.NoError(t, service.AddReadingHistory(ctx, userID, bookID))

	loaded, err := service.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, loaded.ReadingHistory, 2)
	assert.Equal(t, bookID, loaded.ReadingHistory[0].BookID)
	assert.False(t, loaded.ReadingHistory[0].LastRead.Before(loaded.ReadingHistory[1].LastRead))
}
