// Package email sends moderation alerts through Postmark.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const defaultEndpoint = "https://api.postmarkapp.com/email"

// Client sends emails via Postmark.
type Client struct {
	serverToken string
	from        string
	endpoint    string
	httpClient  *http.Client
}

func New(serverToken, from string) *Client {
	return &Client{
		serverToken: serverToken,
		from:        from,
		endpoint:    defaultEndpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type postmarkRequest struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody,omitempty"`
	TextBody string `json:"TextBody,omitempty"`
}

type postmarkResponse struct {
	ErrorCode int    `json:"ErrorCode"`
	Message   string `json:"Message"`
	MessageID string `json:"MessageID"`
}

func (c *Client) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if c.serverToken == "" {
		return fmt.Errorf("postmark server token not configured")
	}

	jsonBody, err := json.Marshal(postmarkRequest{
		From:     c.from,
		To:       to,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
	})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	var pmResp postmarkResponse
	if err := json.NewDecoder(resp.Body).Decode(&pmResp); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if pmResp.ErrorCode != 0 {
		return fmt.Errorf("postmark error %d: %s", pmResp.ErrorCode, pmResp.Message)
	}
	return nil
}

// ReportAlerter mails the moderation inbox whenever an answer is reported.
type ReportAlerter struct {
	client *Client
	to     string
}

func NewReportAlerter(c *Client, to string) *ReportAlerter {
	return &ReportAlerter{client: c, to: to}
}

func (a *ReportAlerter) AnswerReported(ctx context.Context, answerID, reporterID uuid.UUID) error {
	subject := "Catch-Up User/Answer Reported"
	htmlBody := fmt.Sprintf("<p>Answer with id %s has been reported by user %s</p>",
		html.EscapeString(answerID.String()), html.EscapeString(reporterID.String()))
	textBody := fmt.Sprintf("Answer with id %s has been reported by user %s", answerID, reporterID)
	return a.client.Send(ctx, a.to, subject, htmlBody, textBody)
}
