package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"dev-pulse/domain/apperror"
	"dev-pulse/domain/model"
	"dev-pulse/domain/repository"
	"dev-pulse/infrastructure/logger"
	"dev-pulse/infrastructure/utils"
)

const defaultBaseURL = "https://api.trello.com/1"

// Client counts completed tasks from Trello board activity. A card
// moved into a done-style list or explicitly marked complete counts as
// one task for the day. The credential is a JSON {key, token} pair.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	connections repository.IConnection
	vault       repository.ICredentialVault
	stats       repository.IPlatformStat
	archive     repository.IRawArchive
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type credential struct {
	Key   string `json:"key"`
	Token string `json:"token"`
}

func NewTrelloClient(
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
		httpClient:  &http.Client{Timeout: timeout},
		connections: connections,
		vault:       vault,
		stats:       stats,
		archive:     archive,
	}
}

func (c *Client) Platform() model.Platform { return model.PlatformTrello }

type trelloMember struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatarUrl"`
}

type trelloAction struct {
	Type string    `json:"type"`
	Date time.Time `json:"date"`
	Data struct {
		ListAfter struct {
			Name string `json:"name"`
		} `json:"listAfter"`
		Card struct {
			ID          string `json:"id"`
			DueComplete bool   `json:"dueComplete"`
		} `json:"card"`
		Old map[string]interface{} `json:"old"`
	} `json:"data"`
}

type authParams struct {
	Key   string `url:"key"`
	Token string `url:"token"`
}

type actionParams struct {
	Key    string `url:"key"`
	Token  string `url:"token"`
	Filter string `url:"filter"`
	Limit  int    `url:"limit"`
}

func (c *Client) FetchUserData(ctx context.Context, conn *model.PlatformConnection) (*model.PlatformUser, error) {
	cred, err := c.credential(conn)
	if err != nil {
		return nil, err
	}
	var member trelloMember
	if _, err := c.get(ctx, "/members/me", authParams{Key: cred.Key, Token: cred.Token}, &member); err != nil {
		return nil, err
	}
	return &model.PlatformUser{
		ExternalID:  member.ID,
		Username:    member.Username,
		DisplayName: member.FullName,
		AvatarURL:   member.AvatarURL,
	}, nil
}

func (c *Client) SyncData(ctx context.Context, userID, connectionID int64) error {
	conn, err := c.connections.GetByID(ctx, connectionID)
	if err != nil {
		return err
	}
	cred, err := c.credential(conn)
	if err != nil {
		return err
	}

	var actions []trelloAction
	raw, err := c.get(ctx, "/members/me/actions", actionParams{
		Key:    cred.Key,
		Token:  cred.Token,
		Filter: "updateCard",
		Limit:  200,
	}, &actions)
	if err != nil {
		return err
	}

	day := utils.Midnight(utils.GetCurrentTime())
	stat := &model.PlatformStat{
		ConnectionID: connectionID,
		UserID:       userID,
		Platform:     model.PlatformTrello,
		Date:         day,
	}
	counted := make(map[string]bool)
	for _, action := range actions {
		if !utils.SameDay(action.Date, day) || counted[action.Data.Card.ID] {
			continue
		}
		if c.completesCard(&action) {
			counted[action.Data.Card.ID] = true
			stat.TasksCompleted++
		}
	}

	if err := c.stats.Upsert(ctx, stat); err != nil {
		return err
	}
	if c.archive != nil {
		if err := c.archive.Store(ctx, connectionID, model.PlatformTrello, utils.DayKey(day), raw); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while archiving Trello payload")
		}
	}
	return nil
}

func (c *Client) completesCard(action *trelloAction) bool {
	name := strings.ToLower(action.Data.ListAfter.Name)
	if strings.Contains(name, "done") || strings.Contains(name, "complete") {
		return true
	}
	// dueComplete flipping to true also counts.
	if action.Data.Card.DueComplete {
		if old, ok := action.Data.Old["dueComplete"].(bool); ok && !old {
			return true
		}
	}
	return false
}

func (c *Client) credential(conn *model.PlatformConnection) (*credential, error) {
	revealed, err := c.vault.Reveal(conn.Credential)
	if err != nil {
		return nil, err
	}
	var cred credential
	if err := json.Unmarshal([]byte(revealed), &cred); err != nil {
		return nil, apperror.InvalidCredential("Trello credential is not a valid key/token pair", err)
	}
	if cred.Key == "" || cred.Token == "" {
		return nil, apperror.InvalidCredential("Trello credential is missing key or token", nil)
	}
	return &cred, nil
}

func (c *Client) get(ctx context.Context, path string, params interface{}, out interface{}) ([]byte, error) {
	values, err := query.Values(params)
	if err != nil {
		return nil, apperror.Internal("encoding Trello params", err)
	}
	url := fmt.Sprintf("%s%s?%s", c.baseURL, path, values.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperror.Internal("building Trello request", err)
	}
	httpRes, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Unavailable("Trello API unreachable", err)
	}
	defer httpRes.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpRes.Body, 4<<20))
	if err != nil {
		return nil, apperror.Unavailable("reading Trello response", err)
	}
	switch {
	case httpRes.StatusCode == http.StatusUnauthorized:
		return nil, apperror.InvalidCredential("Trello rejected the key/token", fmt.Errorf("status %d", httpRes.StatusCode))
	case httpRes.StatusCode == http.StatusNotFound:
		return nil, apperror.NotFound("Trello resource not found", fmt.Errorf("status %d", httpRes.StatusCode))
	case httpRes.StatusCode >= 500 || httpRes.StatusCode == http.StatusTooManyRequests:
		return nil, apperror.Unavailable("Trello API error", fmt.Errorf("status %d", httpRes.StatusCode))
	case httpRes.StatusCode != http.StatusOK:
		return nil, apperror.Internal("unexpected Trello response", fmt.Errorf("status %d: %s", httpRes.StatusCode, utils.Truncate(string(body), 200)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, apperror.Internal("decoding Trello response", err)
	}
	return body, nil
}
