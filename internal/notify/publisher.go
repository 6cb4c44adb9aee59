package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"senseact/internal/config"
	"senseact/internal/dao"
)

// Publisher ships notifications to the serve process, which fans them out to
// websocket observers. Delivery is best-effort: a failed publish is logged
// and forgotten, it never fails the pipeline step that produced it.
type Publisher struct {
	endpoint string
	httpCli  *http.Client
	logger   *logrus.Entry
}

func NewPublisher(conf config.NotifyConfig, logger *logrus.Entry) *Publisher {
	return &Publisher{
		endpoint: strings.TrimSuffix(conf.Endpoint, "/") + "/api/v1/notify",
		httpCli:  &http.Client{Timeout: conf.Timeout()},
		logger:   logger,
	}
}

// Publish posts the message. The returned error is informational; callers
// may log it but must not abort their unit of work over it.
func (p *Publisher) Publish(ctx context.Context, msg *dao.NotifyMessage) error {
	body, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("encode notify message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create notify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("post notify message: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notify server returned status %d", resp.StatusCode)
	}
	return nil
}

// TryPublish is Publish with the best-effort policy applied: errors are
// logged at warn level and swallowed.
func (p *Publisher) TryPublish(ctx context.Context, msg *dao.NotifyMessage) {
	if err := p.Publish(ctx, msg); err != nil {
		p.logger.WithError(err).Warnf("publish %s notification for device %s failed", msg.Type, msg.DeviceId)
	}
}
