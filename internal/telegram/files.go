package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/PoluyanbIch/exambot/internal/service"
)

// Bots may download files of up to 20 MB.
const maxDownloadBytes = 20 << 20

type fileURLResolver interface {
	GetFileDirectURL(fileID string) (string, error)
}

// FileFetcher downloads uploaded files through the Bot API file endpoint.
type FileFetcher struct {
	api        fileURLResolver
	httpClient *http.Client
}

var _ service.FileFetcher = (*FileFetcher)(nil)

func NewFileFetcher(api fileURLResolver, timeout time.Duration) *FileFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FileFetcher{api: api, httpClient: &http.Client{Timeout: timeout}}
}

func (f *FileFetcher) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	fileURL, err := f.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", redactURL(err))
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", redactURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", redactURL(err))
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("file larger than %d bytes", maxDownloadBytes)
	}
	return data, nil
}

// redactURL drops the request URL from net/http errors; file URLs embed the bot token.
func redactURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends plain text notifications through the bot.
type Notifier struct {
	api messageSender
}

var _ service.Notifier = (*Notifier)(nil)

func NewNotifier(api messageSender) *Notifier {
	return &Notifier{api: api}
}

func (n *Notifier) Notify(_ context.Context, notification service.Notification) error {
	_, err := n.api.Send(tgbotapi.NewMessage(notification.ChatID, notification.Text))
	return err
}
