package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"modwatch_bot/internal/model"
)

const (
	defaultModrinthBase = "https://api.modrinth.com/v2"
	userAgent           = "modwatch-bot/1.0"
)

// Modrinth is the Labrinth API client. Project versions are returned
// newest-first, so the first element of the version list is the latest.
type Modrinth struct {
	client  *resty.Client
	baseURL string
}

// NewModrinth creates a client against baseURL, or the public API when
// baseURL is empty.
func NewModrinth(baseURL string, timeout time.Duration) *Modrinth {
	if baseURL == "" {
		baseURL = defaultModrinthBase
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
	return &Modrinth{client: client, baseURL: baseURL}
}

func (m *Modrinth) Platform() model.Platform { return model.PlatformModrinth }

type modrinthVersion struct {
	ID            string    `json:"id"`
	VersionNumber string    `json:"version_number"`
	Changelog     string    `json:"changelog"`
	Downloads     int64     `json:"downloads"`
	DatePublished time.Time `json:"date_published"`
	Loaders       []string  `json:"loaders"`
	GameVersions  []string  `json:"game_versions"`
	Files         []struct {
		Filename string `json:"filename"`
		Primary  bool   `json:"primary"`
		Size     int64  `json:"size"`
	} `json:"files"`
}

type modrinthProject struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IconURL     string    `json:"icon_url"`
	Downloads   int64     `json:"downloads"`
	Followers   int64     `json:"followers"`
	Categories  []string  `json:"categories"`
	Updated     time.Time `json:"updated"`
}

func (m *Modrinth) LatestVersion(ctx context.Context, projectID string) (*model.LatestVersion, error) {
	url := fmt.Sprintf("%s/project/%s/version", m.baseURL, projectID)

	var versions []modrinthVersion
	resp, err := m.client.R().
		SetContext(ctx).
		SetResult(&versions).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("modrinth versions: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("modrinth versions: unexpected status %d", resp.StatusCode())
	}
	if len(versions) == 0 {
		return nil, nil
	}

	v := versions[0]
	latest := &model.LatestVersion{
		VersionID:     v.ID,
		Version:       v.VersionNumber,
		Changelog:     v.Changelog,
		Downloads:     v.Downloads,
		DatePublished: v.DatePublished,
		Loaders:       v.Loaders,
		GameVersions:  v.GameVersions,
	}
	if len(v.Files) > 0 {
		file := v.Files[0]
		for _, f := range v.Files {
			if f.Primary {
				file = f
				break
			}
		}
		latest.FileName = file.Filename
		latest.FileSize = file.Size
	}
	return latest, nil
}

func (m *Modrinth) ProjectDetail(ctx context.Context, projectID string) (*model.ProjectDetail, error) {
	url := fmt.Sprintf("%s/project/%s", m.baseURL, projectID)

	var project modrinthProject
	resp, err := m.client.R().
		SetContext(ctx).
		SetResult(&project).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("modrinth project: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("modrinth project: unexpected status %d", resp.StatusCode())
	}

	slug := project.Slug
	if slug == "" {
		slug = project.ID
	}
	return &model.ProjectDetail{
		Platform:   model.PlatformModrinth,
		ID:         project.ID,
		Slug:       project.Slug,
		Title:      project.Title,
		Summary:    project.Description,
		IconURL:    project.IconURL,
		PageURL:    "https://modrinth.com/project/" + slug,
		Downloads:  project.Downloads,
		Followers:  project.Followers,
		Categories: project.Categories,
		UpdatedAt:  project.Updated,
	}, nil
}
