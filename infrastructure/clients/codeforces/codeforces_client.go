package codeforces

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

const defaultBaseURL = "https://codeforces.com/api"

// Client syncs Codeforces submissions and contest activity. The API is
// public per handle; no credential is required.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	connections repository.IConnection
	stats       repository.IPlatformStat
	archive     repository.IRawArchive
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func NewCodeforcesClient(
	config *Config,
	connections repository.IConnection,
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
		stats:       stats,
		archive:     archive,
	}
}

func (c *Client) Platform() model.Platform { return model.PlatformCodeforces }

type apiEnvelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

type cfUser struct {
	Handle    string `json:"handle"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Avatar    string `json:"avatar"`
	Rating    int    `json:"rating"`
}

type cfSubmission struct {
	CreationTimeSeconds int64  `json:"creationTimeSeconds"`
	Verdict             string `json:"verdict"`
	Problem             struct {
		ContestID int    `json:"contestId"`
		Index     string `json:"index"`
		Rating    int    `json:"rating"`
	} `json:"problem"`
}

type cfRatingChange struct {
	ContestID               int   `json:"contestId"`
	RatingUpdateTimeSeconds int64 `json:"ratingUpdateTimeSeconds"`
	NewRating               int   `json:"newRating"`
}

type userInfoParams struct {
	Handles string `url:"handles"`
}

type userStatusParams struct {
	Handle string `url:"handle"`
	From   int    `url:"from"`
	Count  int    `url:"count"`
}

type userRatingParams struct {
	Handle string `url:"handle"`
}

func (c *Client) FetchUserData(ctx context.Context, conn *model.PlatformConnection) (*model.PlatformUser, error) {
	var users []cfUser
	if _, err := c.call(ctx, "user.info", userInfoParams{Handles: conn.ExternalUsername}, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperror.NotFound("Codeforces handle not found", nil)
	}
	user := users[0]
	return &model.PlatformUser{
		ExternalID:  user.Handle,
		Username:    user.Handle,
		DisplayName: strings.TrimSpace(user.FirstName + " " + user.LastName),
		AvatarURL:   user.Avatar,
	}, nil
}

func (c *Client) SyncData(ctx context.Context, userID, connectionID int64) error {
	conn, err := c.connections.GetByID(ctx, connectionID)
	if err != nil {
		return err
	}

	var submissions []cfSubmission
	raw, err := c.call(ctx, "user.status", userStatusParams{Handle: conn.ExternalUsername, From: 1, Count: 200}, &submissions)
	if err != nil {
		return err
	}

	day := utils.Midnight(utils.GetCurrentTime())
	stat := &model.PlatformStat{
		ConnectionID: connectionID,
		UserID:       userID,
		Platform:     model.PlatformCodeforces,
		Date:         day,
	}

	solved := make(map[string]bool)
	for _, sub := range submissions {
		when := time.Unix(sub.CreationTimeSeconds, 0)
		if !utils.SameDay(when, day) || sub.Verdict != "OK" {
			continue
		}
		key := fmt.Sprintf("%d%s", sub.Problem.ContestID, sub.Problem.Index)
		if solved[key] {
			continue
		}
		solved[key] = true
		switch {
		case sub.Problem.Rating > 0 && sub.Problem.Rating < 1200:
			stat.EasySolved++
		case sub.Problem.Rating < 1800:
			stat.MediumSolved++
		default:
			stat.HardSolved++
		}
	}

	var ratings []cfRatingChange
	if _, err := c.call(ctx, "user.rating", userRatingParams{Handle: conn.ExternalUsername}, &ratings); err != nil {
		// Rating history is supplementary; the solve counts still land.
		logger.GetLogger().WithField("error", err).Warn("Error while fetching Codeforces rating history")
	} else {
		for _, change := range ratings {
			stat.Rating = change.NewRating
			if utils.SameDay(time.Unix(change.RatingUpdateTimeSeconds, 0), day) {
				stat.Contests++
			}
		}
	}

	if err := c.stats.Upsert(ctx, stat); err != nil {
		return err
	}
	if c.archive != nil {
		if err := c.archive.Store(ctx, connectionID, model.PlatformCodeforces, utils.DayKey(day), raw); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while archiving Codeforces payload")
		}
	}
	return nil
}

func (c *Client) call(ctx context.Context, method string, params interface{}, out interface{}) ([]byte, error) {
	values, err := query.Values(params)
	if err != nil {
		return nil, apperror.Internal("encoding Codeforces params", err)
	}
	url := fmt.Sprintf("%s/%s?%s", c.baseURL, method, values.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperror.Internal("building Codeforces request", err)
	}
	httpRes, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Unavailable("Codeforces API unreachable", err)
	}
	defer httpRes.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpRes.Body, 4<<20))
	if err != nil {
		return nil, apperror.Unavailable("reading Codeforces response", err)
	}
	if httpRes.StatusCode >= 500 || httpRes.StatusCode == http.StatusServiceUnavailable {
		return nil, apperror.Unavailable("Codeforces API error", fmt.Errorf("status %d", httpRes.StatusCode))
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperror.Internal("decoding Codeforces response", err)
	}
	if envelope.Status != "OK" {
		if strings.Contains(envelope.Comment, "not found") {
			return nil, apperror.NotFound("Codeforces handle not found", fmt.Errorf("%s", envelope.Comment))
		}
		return nil, apperror.Internal("Codeforces call failed", fmt.Errorf("%s", envelope.Comment))
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return nil, apperror.Internal("decoding Codeforces result", err)
	}
	return body, nil
}
