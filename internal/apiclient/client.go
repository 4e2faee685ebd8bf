package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/brk3/habitpanda/internal/remind"
	"github.com/brk3/habitpanda/internal/server"
	"github.com/brk3/habitpanda/pkg/habit"
	"github.com/brk3/habitpanda/pkg/versioninfo"
	"github.com/google/uuid"
)

// Client talks to a habitpanda server. Token, when set, is sent as a Bearer
// token (either an API key or a provider-prefixed OIDC token).
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    http.DefaultClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("%s %s: %s", method, path, res.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) ListHabits(ctx context.Context) ([]habit.Habit, error) {
	var resp server.HabitListResponse
	if err := c.do(ctx, http.MethodGet, "/habits", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Habits, nil
}

func (c *Client) CreateHabit(ctx context.Context, h habit.Habit) (*habit.Habit, error) {
	var created habit.Habit
	if err := c.do(ctx, http.MethodPost, "/habits", h, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) AddCheckIn(ctx context.Context, habitID uuid.UUID, date string, value habit.CheckInValue) (*habit.CheckIn, error) {
	body := map[string]any{"date": date, "value": value}
	var created habit.CheckIn
	err := c.do(ctx, http.MethodPost, "/habits/"+habitID.String()+"/checkins", body, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) Export(ctx context.Context) (*server.ExportDocument, error) {
	var doc server.ExportDocument
	if err := c.do(ctx, http.MethodGet, "/export", nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) Import(ctx context.Context, doc *server.ExportDocument) error {
	return c.do(ctx, http.MethodPost, "/import", doc, nil)
}

func (c *Client) NotificationReport(ctx context.Context) (*remind.Report, error) {
	var report remind.Report
	if err := c.do(ctx, http.MethodGet, "/admin/notifications", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) RebuildNotifications(ctx context.Context) (int, error) {
	var resp struct {
		Scheduled int `json:"scheduled"`
	}
	if err := c.do(ctx, http.MethodPost, "/admin/notifications/rebuild", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Scheduled, nil
}

func (c *Client) ServerVersion(ctx context.Context) (*versioninfo.VersionInfo, error) {
	var info versioninfo.VersionInfo
	if err := c.do(ctx, http.MethodGet, "/version", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
