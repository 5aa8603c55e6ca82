package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dev-pulse/domain/apperror"
	"dev-pulse/domain/model"
	"dev-pulse/domain/repository"
	"dev-pulse/infrastructure/logger"
	"dev-pulse/infrastructure/utils"
)

const defaultBaseURL = "https://leetcode.com/graphql"

// Client syncs LeetCode solve counts through the public GraphQL
// endpoint. The API only exposes cumulative totals, so each sync stores
// the day's delta against the previous snapshot and carries the new
// cumulative numbers in the row's raw detail.
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

func NewLeetCodeClient(
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

func (c *Client) Platform() model.Platform { return model.PlatformLeetCode }

const profileQuery = `
query userProfile($username: String!) {
  matchedUser(username: $username) {
    username
    profile {
      realName
      userAvatar
    }
    submitStatsGlobal {
      acSubmissionNum {
        difficulty
        count
      }
    }
  }
}`

type graphQLResponse struct {
	Data struct {
		MatchedUser *struct {
			Username string `json:"username"`
			Profile  struct {
				RealName   string `json:"realName"`
				UserAvatar string `json:"userAvatar"`
			} `json:"profile"`
			SubmitStatsGlobal struct {
				AcSubmissionNum []struct {
					Difficulty string `json:"difficulty"`
					Count      int    `json:"count"`
				} `json:"acSubmissionNum"`
			} `json:"submitStatsGlobal"`
		} `json:"matchedUser"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// cumulativeSnapshot is persisted in RawDetail so the next sync can
// compute its delta without an extra store.
type cumulativeSnapshot struct {
	Cumulative struct {
		Easy   int `json:"easy"`
		Medium int `json:"medium"`
		Hard   int `json:"hard"`
	} `json:"cumulative"`
}

func (c *Client) FetchUserData(ctx context.Context, conn *model.PlatformConnection) (*model.PlatformUser, error) {
	res, _, err := c.query(ctx, conn)
	if err != nil {
		return nil, err
	}
	matched := res.Data.MatchedUser
	return &model.PlatformUser{
		ExternalID:  matched.Username,
		Username:    matched.Username,
		DisplayName: matched.Profile.RealName,
		AvatarURL:   matched.Profile.UserAvatar,
	}, nil
}

func (c *Client) SyncData(ctx context.Context, userID, connectionID int64) error {
	conn, err := c.connections.GetByID(ctx, connectionID)
	if err != nil {
		return err
	}
	res, raw, err := c.query(ctx, conn)
	if err != nil {
		return err
	}

	var easy, medium, hard int
	for _, bucket := range res.Data.MatchedUser.SubmitStatsGlobal.AcSubmissionNum {
		switch bucket.Difficulty {
		case "Easy":
			easy = bucket.Count
		case "Medium":
			medium = bucket.Count
		case "Hard":
			hard = bucket.Count
		}
	}

	day := utils.Midnight(utils.GetCurrentTime())
	prevEasy, prevMedium, prevHard, seeded := c.previousSnapshot(ctx, userID, day)

	stat := &model.PlatformStat{
		ConnectionID: connectionID,
		UserID:       userID,
		Platform:     model.PlatformLeetCode,
		Date:         day,
	}
	// First sync ever has no baseline; it seeds the snapshot and records
	// zero activity rather than crediting the whole history to one day.
	if seeded {
		stat.EasySolved = max0(easy - prevEasy)
		stat.MediumSolved = max0(medium - prevMedium)
		stat.HardSolved = max0(hard - prevHard)
	}

	var snap cumulativeSnapshot
	snap.Cumulative.Easy = easy
	snap.Cumulative.Medium = medium
	snap.Cumulative.Hard = hard
	if detail, err := json.Marshal(snap); err == nil {
		stat.RawDetail = detail
	}

	if err := c.stats.Upsert(ctx, stat); err != nil {
		return err
	}
	if c.archive != nil {
		if err := c.archive.Store(ctx, connectionID, model.PlatformLeetCode, utils.DayKey(day), raw); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while archiving LeetCode payload")
		}
	}
	return nil
}

// previousSnapshot finds the most recent snapshot strictly before day,
// walking back up to a week. Returns seeded=false when no baseline
// exists yet.
func (c *Client) previousSnapshot(ctx context.Context, userID int64, day time.Time) (easy, medium, hard int, seeded bool) {
	for back := 1; back <= 7; back++ {
		rows, err := c.stats.GetByUserAndDate(ctx, userID, day.AddDate(0, 0, -back))
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while reading LeetCode baseline")
			return 0, 0, 0, false
		}
		for _, row := range rows {
			if row.Platform != model.PlatformLeetCode || len(row.RawDetail) == 0 {
				continue
			}
			var snap cumulativeSnapshot
			if err := json.Unmarshal(row.RawDetail, &snap); err != nil {
				continue
			}
			return snap.Cumulative.Easy, snap.Cumulative.Medium, snap.Cumulative.Hard, true
		}
	}
	return 0, 0, 0, false
}

func (c *Client) query(ctx context.Context, conn *model.PlatformConnection) (*graphQLResponse, []byte, error) {
	// The session cookie is optional; public profiles work without it.
	session := ""
	if conn.Credential != "" {
		revealed, err := c.vault.Reveal(conn.Credential)
		if err != nil {
			return nil, nil, err
		}
		session = revealed
	}

	payload, err := json.Marshal(map[string]interface{}{
		"query": profileQuery,
		"variables": map[string]string{
			"username": conn.ExternalUsername,
		},
	})
	if err != nil {
		return nil, nil, apperror.Internal("building LeetCode query", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, apperror.Internal("building LeetCode request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.AddCookie(&http.Cookie{Name: "LEETCODE_SESSION", Value: session})
	}

	httpRes, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, apperror.Unavailable("LeetCode API unreachable", err)
	}
	defer httpRes.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpRes.Body, 4<<20))
	if err != nil {
		return nil, nil, apperror.Unavailable("reading LeetCode response", err)
	}
	if httpRes.StatusCode == http.StatusForbidden || httpRes.StatusCode == http.StatusUnauthorized {
		return nil, nil, apperror.InvalidCredential("LeetCode rejected the session", fmt.Errorf("status %d", httpRes.StatusCode))
	}
	if httpRes.StatusCode >= 500 {
		return nil, nil, apperror.Unavailable("LeetCode API error", fmt.Errorf("status %d", httpRes.StatusCode))
	}
	if httpRes.StatusCode != http.StatusOK {
		return nil, nil, apperror.Internal("unexpected LeetCode response", fmt.Errorf("status %d: %s", httpRes.StatusCode, utils.Truncate(string(body), 200)))
	}

	var res graphQLResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, nil, apperror.Internal("decoding LeetCode response", err)
	}
	if len(res.Errors) > 0 {
		return nil, nil, apperror.Internal("LeetCode query failed", fmt.Errorf("%s", res.Errors[0].Message))
	}
	if res.Data.MatchedUser == nil {
		return nil, nil, apperror.NotFound("LeetCode user not found", nil)
	}
	return &res, body, nil
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
