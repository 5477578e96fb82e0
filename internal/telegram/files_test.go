package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PoluyanbIch/exambot/internal/service"
)

type staticURL string

func (u staticURL) GetFileDirectURL(fileID string) (string, error) {
	return string(u) + "/file/bot123:SECRET/" + fileID, nil
}

func TestFileFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/file/bot123:SECRET/doc" {
			_, _ = w.Write([]byte("1. Hello?"))
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	fetcher := NewFileFetcher(staticURL(srv.URL), time.Second)

	data, err := fetcher.Fetch(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, "1. Hello?", string(data))

	_, err = fetcher.Fetch(context.Background(), "other")
	assert.EqualError(t, err, "download file: HTTP 403")
}

func TestFileFetcher_RedactsToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := NewFileFetcher(staticURL(base), time.Second).Fetch(context.Background(), "doc")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET")
}

func TestNotifier_Notify(t *testing.T) {
	api := &fakeAPI{}

	err := NewNotifier(api).Notify(context.Background(), service.Notification{ChatID: adminID, Text: "📩 New answer"})
	require.NoError(t, err)

	msgs := api.takeMessages(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, tgbotapi.NewMessage(adminID, "📩 New answer"), msgs[0])
}
