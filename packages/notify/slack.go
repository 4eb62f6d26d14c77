package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SlackNotifier sends run summaries to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	channel    string
	username   string
	client     *http.Client
}

// SlackOption is a functional option for SlackNotifier.
type SlackOption func(*SlackNotifier)

// WithSlackChannel overrides the webhook's default channel.
func WithSlackChannel(channel string) SlackOption {
	return func(s *SlackNotifier) { s.channel = channel }
}

// WithSlackUsername sets the bot username.
func WithSlackUsername(username string) SlackOption {
	return func(s *SlackNotifier) { s.username = username }
}

func NewSlackNotifier(webhookURL string, opts ...SlackOption) *SlackNotifier {
	s := &SlackNotifier{
		webhookURL: webhookURL,
		username:   "flowright",
		client:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SlackNotifier) Name() string {
	return "slack"
}

type slackMessage struct {
	Channel     string            `json:"channel,omitempty"`
	Username    string            `json:"username,omitempty"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text,omitempty"`
	Fields []slackField `json:"fields,omitempty"`
	Footer string       `json:"footer,omitempty"`
	TS     int64        `json:"ts,omitempty"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

func (s *SlackNotifier) Notify(summary *Summary) error {
	color := "good"
	title := ":white_check_mark: All jobs passed"
	if summary.FailedJobs > 0 {
		color = "danger"
		title = fmt.Sprintf(":x: %d job(s) failed", summary.FailedJobs)
	}

	fields := []slackField{
		{Title: "Jobs", Value: fmt.Sprintf("%d", summary.TotalJobs), Short: true},
		{Title: "Passed", Value: fmt.Sprintf("%d", summary.PassedJobs), Short: true},
		{Title: "Failed", Value: fmt.Sprintf("%d", summary.FailedJobs), Short: true},
		{Title: "Duration", Value: summary.Duration.Round(time.Millisecond).String(), Short: true},
	}

	var text string
	for _, f := range summary.Failures {
		text += fmt.Sprintf("• `%s`", f.Name)
		if f.Error != "" {
			text += fmt.Sprintf(": %s", f.Error)
		}
		text += "\n"
	}

	msg := slackMessage{
		Channel:  s.channel,
		Username: s.username,
		Attachments: []slackAttachment{{
			Color:  color,
			Title:  title,
			Text:   text,
			Fields: fields,
			Footer: fmt.Sprintf("flowright run %s", summary.RunID),
			TS:     time.Now().Unix(),
		}},
	}
	return s.send(msg)
}

func (s *SlackNotifier) send(msg slackMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.webhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Slack notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("slack API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
