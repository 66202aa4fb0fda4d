package api

import (
	"context"
	"encoding/json"
	"unicode/utf8"

	"aoe2-overlay/internal/domain"

	"gopkg.in/yaml.v3"
)

// RefSource fetches the three reference-data files from the static
// repository. The players file is YAML, teams and platforms are JSON.
type RefSource struct {
	http *Client
	root string
}

func NewRefSource(http *Client, root string) *RefSource {
	return &RefSource{http: http, root: root}
}

func (s *RefSource) fetch(ctx context.Context, path string) (string, []byte, error) {
	uri, err := Endpoint{Root: s.root, Path: path}.BuildURI()
	if err != nil {
		return "", nil, err
	}
	body, err := s.http.Get(ctx, uri)
	if err != nil {
		return uri, nil, err
	}
	if !utf8.Valid(body) {
		return uri, nil, &InvalidTextError{URI: uri}
	}
	return uri, body, nil
}

func (s *RefSource) FetchPlayers(ctx context.Context) ([]domain.Player, error) {
	uri, body, err := s.fetch(ctx, "/players.yaml")
	if err != nil {
		return nil, err
	}
	var players []domain.Player
	if err := yaml.Unmarshal(body, &players); err != nil {
		return nil, &DeserializeError{URI: uri, Raw: string(body), Err: err}
	}
	return players, nil
}

func (s *RefSource) FetchTeams(ctx context.Context) ([]domain.Team, error) {
	uri, body, err := s.fetch(ctx, "/teams.json")
	if err != nil {
		return nil, err
	}
	var teams []domain.Team
	if err := json.Unmarshal(body, &teams); err != nil {
		return nil, &DeserializeError{URI: uri, Raw: string(body), Err: err}
	}
	return teams, nil
}

func (s *RefSource) FetchPlatforms(ctx context.Context) ([]domain.Platform, error) {
	uri, body, err := s.fetch(ctx, "/platforms.json")
	if err != nil {
		return nil, err
	}
	var platforms []domain.Platform
	if err := json.Unmarshal(body, &platforms); err != nil {
		return nil, &DeserializeError{URI: uri, Raw: string(body), Err: err}
	}
	return platforms, nil
}
