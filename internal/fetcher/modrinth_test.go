package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"modwatch_bot/internal/model"
)

const modrinthVersionsBody = `[
  {
    "id": "ver-2",
    "version_number": "0.5.1",
    "changelog": "Fixed chunk flicker",
    "downloads": 1200,
    "date_published": "2024-03-01T12:00:00Z",
    "loaders": ["fabric"],
    "game_versions": ["1.20.4"],
    "files": [
      {"filename": "sodium-0.5.1-sources.jar", "primary": false, "size": 100},
      {"filename": "sodium-0.5.1.jar", "primary": true, "size": 952301}
    ]
  },
  {
    "id": "ver-1",
    "version_number": "0.5.0",
    "downloads": 90000,
    "date_published": "2024-01-15T08:30:00Z",
    "loaders": ["fabric"],
    "game_versions": ["1.20.4"],
    "files": [{"filename": "sodium-0.5.0.jar", "primary": true, "size": 950000}]
  }
]`

const modrinthProjectBody = `{
  "id": "AANobbMI",
  "slug": "sodium",
  "title": "Sodium",
  "description": "A modern rendering engine",
  "icon_url": "https://cdn.modrinth.com/sodium.png",
  "downloads": 5000000,
  "followers": 24000,
  "categories": ["optimization"],
  "updated": "2024-03-01T12:00:00Z"
}`

func newTestModrinth(t *testing.T, handler http.HandlerFunc) *Modrinth {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewModrinth(srv.URL, 5*time.Second)
}

func TestModrinthLatestVersion(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    *model.LatestVersion
		wantErr bool
	}{
		{
			name:   "newest version with primary file",
			status: http.StatusOK,
			body:   modrinthVersionsBody,
			want: &model.LatestVersion{
				VersionID:     "ver-2",
				Version:       "0.5.1",
				Changelog:     "Fixed chunk flicker",
				Downloads:     1200,
				DatePublished: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
				Loaders:       []string{"fabric"},
				GameVersions:  []string{"1.20.4"},
				FileName:      "sodium-0.5.1.jar",
				FileSize:      952301,
			},
		},
		{
			name:   "project without versions",
			status: http.StatusOK,
			body:   `[]`,
			want:   nil,
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `{"error": "internal"}`,
			wantErr: true,
		},
		{
			name:    "project not found",
			status:  http.StatusNotFound,
			body:    `{"error": "not_found"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModrinth(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/project/sodium/version" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := m.LatestVersion(context.Background(), "sodium")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("latest version mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestModrinthLatestVersionFallbackFile(t *testing.T) {
	body := `[{
      "id": "ver-1",
      "version_number": "1.0.0",
      "files": [
        {"filename": "a.jar", "primary": false, "size": 10},
        {"filename": "b.jar", "primary": false, "size": 20}
      ]
    }]`
	m := newTestModrinth(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})

	got, err := m.LatestVersion(context.Background(), "sodium")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FileName != "a.jar" || got.FileSize != 10 {
		t.Errorf("expected first file when none primary, got %s (%d bytes)", got.FileName, got.FileSize)
	}
}

func TestModrinthProjectDetail(t *testing.T) {
	m := newTestModrinth(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/project/sodium" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(modrinthProjectBody))
	})

	got, err := m.ProjectDetail(context.Background(), "sodium")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &model.ProjectDetail{
		Platform:   model.PlatformModrinth,
		ID:         "AANobbMI",
		Slug:       "sodium",
		Title:      "Sodium",
		Summary:    "A modern rendering engine",
		IconURL:    "https://cdn.modrinth.com/sodium.png",
		PageURL:    "https://modrinth.com/project/sodium",
		Downloads:  5000000,
		Followers:  24000,
		Categories: []string{"optimization"},
		UpdatedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("project detail mismatch (-want +got):\n%s", diff)
	}
}

func TestModrinthTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	m := NewModrinth(srv.URL, 20*time.Millisecond)
	if _, err := m.LatestVersion(context.Background(), "sodium"); err == nil {
		t.Fatal("expected timeout error, got nil")
	}
}
