package contact

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultFormEndpoint is the Formspree form the site posts to.
	DefaultFormEndpoint = "https://formspree.io/f/xovlvoze"

	defaultTimeout = 15 * time.Second
)

// FormSender posts messages to a hosted form-processing endpoint.
type FormSender struct {
	client   *resty.Client
	endpoint string
}

// NewFormSender creates a sender for endpoint. A zero timeout uses the
// default. Requests are never retried.
func NewFormSender(endpoint string, timeout time.Duration) (*FormSender, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("%w: form endpoint is empty", ErrNotConfigured)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "portfolio-contact")
	return &FormSender{client: client, endpoint: endpoint}, nil
}

func (f *FormSender) Send(ctx context.Context, m Message) error {
	resp, err := f.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"name":     m.Name,
			"email":    m.Email,
			"subject":  m.Subject,
			"message":  m.Body,
			"_subject": DefaultSubject,
			"_gotcha":  m.Honeypot,
		}).
		Post(f.endpoint)
	if err != nil {
		return fmt.Errorf("form endpoint request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: form endpoint returned %s", ErrRejected, resp.Status())
	}
	return nil
}
