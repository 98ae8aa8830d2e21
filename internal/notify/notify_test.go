package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carmarket-backend/internal/config"
	"carmarket-backend/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatListingAlert(t *testing.T) {
	l := &models.Listing{
		Year:        2022,
		Make:        "BMW",
		Model:       "320d",
		Price:       20000,
		Location:    "Dublin",
		Mileage:     30000,
		MileageUnit: "km",
	}

	msg := FormatListingAlert(l)

	assert.Contains(t, msg, "2022 BMW 320d")
	assert.Contains(t, msg, "Price: €20,000")
	assert.Contains(t, msg, "Location: Dublin")
	assert.Contains(t, msg, "Mileage: 30,000 km")
}

func TestFormatListingAlert_DefaultsUnitToKm(t *testing.T) {
	msg := FormatListingAlert(&models.Listing{Mileage: 1234567})
	assert.Contains(t, msg, "Mileage: 1,234,567 km")
}

func newTwilioServer(t *testing.T, status int, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTwilioWhatsApp_Send(t *testing.T) {
	var (
		gotPath, gotFrom, gotTo, gotBody string
		gotUser                          string
	)
	srv := newTwilioServer(t, http.StatusCreated, `{"sid":"SM123","status":"queued"}`, func(r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotFrom = r.PostForm.Get("From")
		gotTo = r.PostForm.Get("To")
		gotBody = r.PostForm.Get("Body")
		gotUser, _, _ = r.BasicAuth()
	})

	sender := NewTwilioWhatsApp(config.TwilioConfig{
		AccountSID: "AC123",
		AuthToken:  "secret",
		From:       "+14155238886",
		BaseURL:    srv.URL,
		Timeout:    2 * time.Second,
	})

	err := sender.Send(context.Background(), "+353871234567", "hello")
	require.NoError(t, err)

	assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", gotPath)
	assert.Equal(t, "whatsapp:+14155238886", gotFrom)
	assert.Equal(t, "whatsapp:+353871234567", gotTo)
	assert.Equal(t, "hello", gotBody)
	assert.Equal(t, "AC123", gotUser)
}

func TestTwilioWhatsApp_SendError(t *testing.T) {
	srv := newTwilioServer(t, http.StatusBadRequest,
		`{"code":21211,"message":"The 'To' number is not a valid phone number.","status":400}`, nil)

	sender := NewTwilioWhatsApp(config.TwilioConfig{
		AccountSID: "AC123",
		AuthToken:  "secret",
		From:       "whatsapp:+14155238886",
		BaseURL:    srv.URL,
		Timeout:    2 * time.Second,
	})

	err := sender.Send(context.Background(), "bogus", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid phone number")
	assert.Contains(t, err.Error(), "21211")
}

func TestLogNotifier_Send(t *testing.T) {
	n := NewLogNotifier(zerolog.Nop())
	assert.NoError(t, n.Send(context.Background(), "+353", "hi"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Send(ctx, "+353", "hi"), context.Canceled)
}
