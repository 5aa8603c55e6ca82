package gcalendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"dev-pulse/domain/apperror"
	"dev-pulse/domain/model"
	"dev-pulse/domain/repository"
	"dev-pulse/infrastructure/logger"
	"dev-pulse/infrastructure/utils"
)

// Client counts attended calendar events per day. The connection
// credential is a JSON OAuth2 token (access + refresh); the OAuth app
// client id/secret come from configuration.
type Client struct {
	clientID     string
	clientSecret string
	calendarID   string
	connections  repository.IConnection
	vault        repository.ICredentialVault
	stats        repository.IPlatformStat
	archive      repository.IRawArchive
}

type Config struct {
	ClientID     string
	ClientSecret string
	CalendarID   string
}

type storedToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func NewGoogleCalendarClient(
	config *Config,
	connections repository.IConnection,
	vault repository.ICredentialVault,
	stats repository.IPlatformStat,
	archive repository.IRawArchive,
) repository.IPlatformAdapter {
	calendarID := "primary"
	if config != nil && config.CalendarID != "" {
		calendarID = config.CalendarID
	}
	c := &Client{calendarID: calendarID, connections: connections, vault: vault, stats: stats, archive: archive}
	if config != nil {
		c.clientID = config.ClientID
		c.clientSecret = config.ClientSecret
	}
	return c
}

func (c *Client) Platform() model.Platform { return model.PlatformGoogleCalendar }

func (c *Client) FetchUserData(ctx context.Context, conn *model.PlatformConnection) (*model.PlatformUser, error) {
	service, err := c.service(ctx, conn)
	if err != nil {
		return nil, err
	}
	cal, err := service.Calendars.Get(c.calendarID).Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}
	return &model.PlatformUser{
		ExternalID:  cal.Id,
		Username:    conn.ExternalUsername,
		DisplayName: cal.Summary,
	}, nil
}

// SyncData counts today's confirmed events where the account did not
// decline.
func (c *Client) SyncData(ctx context.Context, userID, connectionID int64) error {
	conn, err := c.connections.GetByID(ctx, connectionID)
	if err != nil {
		return err
	}
	service, err := c.service(ctx, conn)
	if err != nil {
		return err
	}

	day := utils.Midnight(utils.GetCurrentTime())
	events, err := service.Events.List(c.calendarID).
		TimeMin(day.Format(time.RFC3339)).
		TimeMax(day.AddDate(0, 0, 1).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(250).
		Context(ctx).
		Do()
	if err != nil {
		return classify(err)
	}

	stat := &model.PlatformStat{
		ConnectionID: connectionID,
		UserID:       userID,
		Platform:     model.PlatformGoogleCalendar,
		Date:         day,
	}
	for _, ev := range events.Items {
		if ev.Status == "cancelled" || declined(ev, conn.ExternalUsername) {
			continue
		}
		stat.EventsAttended++
	}

	if err := c.stats.Upsert(ctx, stat); err != nil {
		return err
	}
	if c.archive != nil {
		if raw, err := json.Marshal(events); err == nil {
			if err := c.archive.Store(ctx, connectionID, model.PlatformGoogleCalendar, utils.DayKey(day), raw); err != nil {
				logger.GetLogger().WithField("error", err).Warn("Error while archiving calendar payload")
			}
		}
	}
	return nil
}

func (c *Client) service(ctx context.Context, conn *model.PlatformConnection) (*calendar.Service, error) {
	revealed, err := c.vault.Reveal(conn.Credential)
	if err != nil {
		return nil, err
	}
	var stored storedToken
	if err := json.Unmarshal([]byte(revealed), &stored); err != nil {
		return nil, apperror.InvalidCredential("calendar credential is not a valid token", err)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		Scopes:       []string{calendar.CalendarReadonlyScope},
		Endpoint:     google.Endpoint,
	}
	token := &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(-1 * time.Minute), // force refresh on first use
	}
	httpClient := oauthConfig.Client(ctx, token)

	service, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return service, nil
}

func declined(ev *calendar.Event, email string) bool {
	for _, attendee := range ev.Attendees {
		if attendee.Self || strings.EqualFold(attendee.Email, email) {
			return attendee.ResponseStatus == "declined"
		}
	}
	return false
}

func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 401 || apiErr.Code == 403:
			return apperror.InvalidCredential("Google rejected the calendar token", err)
		case apiErr.Code == 404:
			return apperror.NotFound("calendar not found", err)
		case apiErr.Code >= 500 || apiErr.Code == 429:
			return apperror.Unavailable("Calendar API error", err)
		}
		return apperror.Internal("unexpected Calendar API response", err)
	}
	// Token refresh failures surface as oauth2 retrieve errors.
	if strings.Contains(err.Error(), "oauth2") || strings.Contains(err.Error(), "invalid_grant") {
		return apperror.InvalidCredential("calendar token refresh failed", err)
	}
	return apperror.Unavailable("Calendar API unreachable", err)
}
