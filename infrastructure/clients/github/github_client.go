package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"dev-pulse/domain/apperror"
	"dev-pulse/domain/model"
	"dev-pulse/domain/repository"
	"dev-pulse/infrastructure/logger"
	"dev-pulse/infrastructure/utils"
)

const defaultBaseURL = "https://api.github.com"

// Client syncs GitHub contribution activity through the REST API. The
// connection credential is a personal access token, carried by an
// oauth2 static token source.
type Client struct {
	baseURL     string
	timeout     time.Duration
	connections repository.IConnection
	vault       repository.ICredentialVault
	stats       repository.IPlatformStat
	archive     repository.IRawArchive
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func NewGitHubClient(
	config *Config,
	connections repository.IConnection,
	vault repository.ICredentialVault,
	stats repository.IPlatformStat,
	archive repository.IRawArchive,
) repository.IPlatformAdapter {
	baseURL := defaultBaseURL
	if config != nil && config.BaseURL != "" {
		baseURL = strings.TrimRight(config.BaseURL, "/")
	}
	timeout := 15 * time.Second
	if config != nil && config.Timeout > 0 {
		timeout = config.Timeout
	}
	return &Client{
		baseURL:     baseURL,
		timeout:     timeout,
		connections: connections,
		vault:       vault,
		stats:       stats,
		archive:     archive,
	}
}

func (c *Client) Platform() model.Platform { return model.PlatformGitHub }

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type githubEvent struct {
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Payload   struct {
		Action  string `json:"action"`
		Commits []struct {
			SHA string `json:"sha"`
		} `json:"commits"`
	} `json:"payload"`
}

func (c *Client) FetchUserData(ctx context.Context, conn *model.PlatformConnection) (*model.PlatformUser, error) {
	httpClient, err := c.httpClient(ctx, conn)
	if err != nil {
		return nil, err
	}

	var user githubUser
	url := fmt.Sprintf("%s/users/%s", c.baseURL, conn.ExternalUsername)
	if _, err := c.getJSON(ctx, httpClient, url, &user); err != nil {
		return nil, err
	}
	return &model.PlatformUser{
		ExternalID:  fmt.Sprintf("%d", user.ID),
		Username:    user.Login,
		DisplayName: user.Name,
		AvatarURL:   user.AvatarURL,
	}, nil
}

// SyncData counts today's public events for the connection's account and
// upserts the day's snapshot.
func (c *Client) SyncData(ctx context.Context, userID, connectionID int64) error {
	conn, err := c.connections.GetByID(ctx, connectionID)
	if err != nil {
		return err
	}
	httpClient, err := c.httpClient(ctx, conn)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/users/%s/events?per_page=100", c.baseURL, conn.ExternalUsername)
	var events []githubEvent
	raw, err := c.getJSON(ctx, httpClient, url, &events)
	if err != nil {
		return err
	}

	day := utils.Midnight(utils.GetCurrentTime())
	stat := &model.PlatformStat{
		ConnectionID: connectionID,
		UserID:       userID,
		Platform:     model.PlatformGitHub,
		Date:         day,
	}
	for _, ev := range events {
		if !utils.SameDay(ev.CreatedAt, day) {
			continue
		}
		switch ev.Type {
		case "PushEvent":
			if n := len(ev.Payload.Commits); n > 0 {
				stat.Commits += n
			} else {
				stat.Commits++
			}
		case "PullRequestEvent":
			if ev.Payload.Action == "opened" {
				stat.PullRequests++
			}
		case "IssuesEvent":
			if ev.Payload.Action == "opened" {
				stat.Issues++
			}
		case "PullRequestReviewEvent":
			stat.Reviews++
		}
	}

	if err := c.stats.Upsert(ctx, stat); err != nil {
		return err
	}
	if c.archive != nil {
		if err := c.archive.Store(ctx, connectionID, model.PlatformGitHub, utils.DayKey(day), raw); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while archiving GitHub payload")
		}
	}
	return nil
}

func (c *Client) httpClient(ctx context.Context, conn *model.PlatformConnection) (*http.Client, error) {
	token, err := c.vault.Reveal(conn.Credential)
	if err != nil {
		return nil, err
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(ctx, src)
	httpClient.Timeout = c.timeout
	return httpClient, nil
}

func (c *Client) getJSON(ctx context.Context, httpClient *http.Client, url string, out interface{}) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperror.Internal("building GitHub request", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	res, err := httpClient.Do(req)
	if err != nil {
		return nil, apperror.Unavailable("GitHub API unreachable", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, apperror.Unavailable("reading GitHub response", err)
	}
	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return nil, apperror.InvalidCredential("GitHub rejected the access token", fmt.Errorf("status %d", res.StatusCode))
	case res.StatusCode == http.StatusNotFound:
		return nil, apperror.NotFound("GitHub account not found", fmt.Errorf("status %d", res.StatusCode))
	case res.StatusCode >= 500:
		return nil, apperror.Unavailable("GitHub API error", fmt.Errorf("status %d", res.StatusCode))
	case res.StatusCode != http.StatusOK:
		return nil, apperror.Internal("unexpected GitHub response", fmt.Errorf("status %d: %s", res.StatusCode, utils.Truncate(string(body), 200)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, apperror.Internal("decoding GitHub response", err)
	}
	return body, nil
}
