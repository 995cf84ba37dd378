package fetcher

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"modwatch_bot/internal/model"
)

// defaultCurseForgeBase is a keyless mirror of the official CurseForge API.
// Point CURSEFORGE_API_BASE at https://api.curseforge.com/v1 and supply an
// API key to use the official endpoint instead.
const defaultCurseForgeBase = "https://api.curse.tools/v1/cf"

// CurseForge mixes Minecraft versions and mod loaders into one gameVersions
// tag list; these split them apart again. Tags matching neither (such as
// "Client" or snapshot names) are dropped.
var (
	gameVersionRe = regexp.MustCompile(`^\d+\.\d+(\.\d+)?$`)
	modLoaderRe   = regexp.MustCompile(`(?i)^(forge|neoforge|fabric|quilt|rift|liteloader)$`)
)

// CurseForge is a client for the CurseForge Core API. File lists are
// returned newest-first, so the first element is the latest file.
type CurseForge struct {
	client  *resty.Client
	baseURL string
	apiKey  string
}

// NewCurseForge creates a client against baseURL, or the keyless mirror when
// baseURL is empty. apiKey may be empty; when set it is sent as x-api-key.
func NewCurseForge(baseURL, apiKey string, timeout time.Duration) *CurseForge {
	if baseURL == "" {
		baseURL = defaultCurseForgeBase
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
	return &CurseForge{client: client, baseURL: baseURL, apiKey: apiKey}
}

func (c *CurseForge) Platform() model.Platform { return model.PlatformCurseForge }

type curseforgeFile struct {
	ID            int64     `json:"id"`
	DisplayName   string    `json:"displayName"`
	FileName      string    `json:"fileName"`
	FileDate      time.Time `json:"fileDate"`
	FileLength    int64     `json:"fileLength"`
	DownloadCount int64     `json:"downloadCount"`
	GameVersions  []string  `json:"gameVersions"`
}

type curseforgeMod struct {
	ID            int64  `json:"id"`
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	Summary       string `json:"summary"`
	DownloadCount int64  `json:"downloadCount"`
	ThumbsUpCount int64  `json:"thumbsUpCount"`
	Links         struct {
		WebsiteURL string `json:"websiteUrl"`
	} `json:"links"`
	Logo struct {
		ThumbnailURL string `json:"thumbnailUrl"`
	} `json:"logo"`
	Categories []struct {
		Name string `json:"name"`
	} `json:"categories"`
	DateModified time.Time `json:"dateModified"`
}

func (c *CurseForge) request(ctx context.Context) *resty.Request {
	req := c.client.R().SetContext(ctx)
	if c.apiKey != "" {
		req.SetHeader("x-api-key", c.apiKey)
	}
	return req
}

func (c *CurseForge) LatestVersion(ctx context.Context, projectID string) (*model.LatestVersion, error) {
	url := fmt.Sprintf("%s/mods/%s/files", c.baseURL, projectID)

	var result struct {
		Data []curseforgeFile `json:"data"`
	}
	resp, err := c.request(ctx).
		SetQueryParam("pageSize", "1").
		SetResult(&result).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("curseforge files: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("curseforge files: unexpected status %d", resp.StatusCode())
	}
	if len(result.Data) == 0 {
		return nil, nil
	}

	f := result.Data[0]
	gameVersions, loaders := splitGameVersionTags(f.GameVersions)
	return &model.LatestVersion{
		VersionID:     fmt.Sprintf("%d", f.ID),
		Version:       f.DisplayName,
		Downloads:     f.DownloadCount,
		DatePublished: f.FileDate,
		Loaders:       loaders,
		GameVersions:  gameVersions,
		FileName:      f.FileName,
		FileSize:      f.FileLength,
	}, nil
}

func (c *CurseForge) ProjectDetail(ctx context.Context, projectID string) (*model.ProjectDetail, error) {
	url := fmt.Sprintf("%s/mods/%s", c.baseURL, projectID)

	var result struct {
		Data curseforgeMod `json:"data"`
	}
	resp, err := c.request(ctx).
		SetResult(&result).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("curseforge mod: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("curseforge mod: unexpected status %d", resp.StatusCode())
	}

	mod := result.Data
	categories := make([]string, 0, len(mod.Categories))
	for _, cat := range mod.Categories {
		categories = append(categories, cat.Name)
	}
	return &model.ProjectDetail{
		Platform:   model.PlatformCurseForge,
		ID:         fmt.Sprintf("%d", mod.ID),
		Slug:       mod.Slug,
		Title:      mod.Name,
		Summary:    mod.Summary,
		IconURL:    mod.Logo.ThumbnailURL,
		PageURL:    mod.Links.WebsiteURL,
		Downloads:  mod.DownloadCount,
		Followers:  mod.ThumbsUpCount,
		Categories: categories,
		UpdatedAt:  mod.DateModified,
	}, nil
}

func splitGameVersionTags(tags []string) (gameVersions, loaders []string) {
	for _, tag := range tags {
		switch {
		case gameVersionRe.MatchString(tag):
			gameVersions = append(gameVersions, tag)
		case modLoaderRe.MatchString(tag):
			loaders = append(loaders, strings.ToLower(tag))
		}
	}
	return gameVersions, loaders
}
