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

const curseforgeFilesBody = `{
  "data": [
    {
      "id": 5012345,
      "displayName": "jei-1.20.4-17.3.0.48.jar",
      "fileName": "jei-1.20.4-forge-17.3.0.48.jar",
      "fileDate": "2024-02-20T18:45:00Z",
      "fileLength": 1534002,
      "downloadCount": 4321,
      "gameVersions": ["1.20.4", "Forge", "NeoForge", "Client", "1.20.4-Snapshot"]
    }
  ]
}`

const curseforgeModBody = `{
  "data": {
    "id": 238222,
    "slug": "jei",
    "name": "Just Enough Items",
    "summary": "View items and recipes",
    "downloadCount": 300000000,
    "thumbsUpCount": 5400,
    "links": {"websiteUrl": "https://www.curseforge.com/minecraft/mc-mods/jei"},
    "logo": {"thumbnailUrl": "https://media.forgecdn.net/jei.png"},
    "categories": [{"name": "Map and Information"}, {"name": "Utility"}],
    "dateModified": "2024-02-20T18:45:00Z"
  }
}`

func newTestCurseForge(t *testing.T, apiKey string, handler http.HandlerFunc) *CurseForge {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewCurseForge(srv.URL, apiKey, 5*time.Second)
}

func TestCurseForgeLatestVersion(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    *model.LatestVersion
		wantErr bool
	}{
		{
			name:   "latest file with split tags",
			status: http.StatusOK,
			body:   curseforgeFilesBody,
			want: &model.LatestVersion{
				VersionID:     "5012345",
				Version:       "jei-1.20.4-17.3.0.48.jar",
				Downloads:     4321,
				DatePublished: time.Date(2024, 2, 20, 18, 45, 0, 0, time.UTC),
				Loaders:       []string{"forge", "neoforge"},
				GameVersions:  []string{"1.20.4"},
				FileName:      "jei-1.20.4-forge-17.3.0.48.jar",
				FileSize:      1534002,
			},
		},
		{
			name:   "mod without files",
			status: http.StatusOK,
			body:   `{"data": []}`,
			want:   nil,
		},
		{
			name:    "server error",
			status:  http.StatusBadGateway,
			body:    `{"error": "bad gateway"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCurseForge(t, "", func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/mods/238222/files" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := c.LatestVersion(context.Background(), "238222")
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

func TestCurseForgeProjectDetail(t *testing.T) {
	c := newTestCurseForge(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mods/238222" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(curseforgeModBody))
	})

	got, err := c.ProjectDetail(context.Background(), "238222")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &model.ProjectDetail{
		Platform:   model.PlatformCurseForge,
		ID:         "238222",
		Slug:       "jei",
		Title:      "Just Enough Items",
		Summary:    "View items and recipes",
		IconURL:    "https://media.forgecdn.net/jei.png",
		PageURL:    "https://www.curseforge.com/minecraft/mc-mods/jei",
		Downloads:  300000000,
		Followers:  5400,
		Categories: []string{"Map and Information", "Utility"},
		UpdatedAt:  time.Date(2024, 2, 20, 18, 45, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("project detail mismatch (-want +got):\n%s", diff)
	}
}

func TestCurseForgeAPIKeyHeader(t *testing.T) {
	var gotKey string
	c := newTestCurseForge(t, "secret-key", func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": []}`))
	})

	if _, err := c.LatestVersion(context.Background(), "238222"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "secret-key" {
		t.Errorf("expected x-api-key header, got %q", gotKey)
	}
}

func TestSplitGameVersionTags(t *testing.T) {
	tests := []struct {
		name         string
		tags         []string
		wantVersions []string
		wantLoaders  []string
	}{
		{
			name:         "mixed tags",
			tags:         []string{"1.20.4", "Forge", "Fabric", "Client", "1.21"},
			wantVersions: []string{"1.20.4", "1.21"},
			wantLoaders:  []string{"forge", "fabric"},
		},
		{
			name:        "loaders only",
			tags:        []string{"NeoForge", "Quilt", "LiteLoader", "Rift"},
			wantLoaders: []string{"neoforge", "quilt", "liteloader", "rift"},
		},
		{
			name:         "unrecognized tags dropped",
			tags:         []string{"Server", "1.20.4-Snapshot", "Java 17", "1.20.4"},
			wantVersions: []string{"1.20.4"},
		},
		{
			name: "empty",
			tags: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			versions, loaders := splitGameVersionTags(tt.tags)
			if diff := cmp.Diff(tt.wantVersions, versions); diff != "" {
				t.Errorf("game versions mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantLoaders, loaders); diff != "" {
				t.Errorf("loaders mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
