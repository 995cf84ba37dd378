// Package fetcher talks to the mod hosting platform APIs and normalizes
// their responses into the domain model.
package fetcher

import (
	"context"

	"modwatch_bot/internal/model"
)

// Client fetches project data from one hosting platform.
type Client interface {
	Platform() model.Platform

	// LatestVersion returns the newest published version of a project.
	// A project with no versions yet returns (nil, nil).
	LatestVersion(ctx context.Context, projectID string) (*model.LatestVersion, error)

	// ProjectDetail returns the project's public profile, used to build
	// notification cards.
	ProjectDetail(ctx context.Context, projectID string) (*model.ProjectDetail, error)
}

// Clients maps a platform code to its client.
type Clients map[model.Platform]Client

// NewClients builds the lookup map from the given clients.
func NewClients(clients ...Client) Clients {
	m := make(Clients, len(clients))
	for _, c := range clients {
		m[c.Platform()] = c
	}
	return m
}
