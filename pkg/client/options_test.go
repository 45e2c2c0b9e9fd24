package client

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hypocal-explain/pkg/errors"
)

const testURL = "http://api.example.com"

func TestWithHTTPClient(t *testing.T) {
	custom := &http.Client{Timeout: 60 * time.Second}
	c, err := NewClient(testURL, WithHTTPClient(custom))
	require.NoError(t, err)
	assert.Same(t, custom, c.httpClient)
}

func TestWithLogger(t *testing.T) {
	logger := &testLogger{}
	c, err := NewClient(testURL, WithLogger(logger))
	require.NoError(t, err)
	assert.Same(t, logger, c.logger)
}

func TestWithRetryMax(t *testing.T) {
	for _, n := range []int{0, 5, MaxRetries} {
		c, err := NewClient(testURL, WithRetryMax(n))
		require.NoError(t, err)
		assert.Equal(t, n, c.retryMax)
	}
}

func TestWithRetryWait(t *testing.T) {
	c, err := NewClient(testURL, WithRetryWait(time.Second, 2*time.Second))
	require.NoError(t, err)
	assert.Equal(t, time.Second, c.retryWaitMin)
	assert.Equal(t, 2*time.Second, c.retryWaitMax)
}

func TestWithTimeout(t *testing.T) {
	c, err := NewClient(testURL, WithTimeout(10*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, c.httpClient.Timeout)
	assert.Equal(t, 5*time.Second, c.retryWaitMax)

	c, err = NewClient(testURL, WithTimeout(0))
	require.NoError(t, err)
	assert.Zero(t, c.httpClient.Timeout)
	assert.Equal(t, 5*time.Second, c.retryWaitMax)
}

func TestWithTimeout_ShortensDefaultRetryWait(t *testing.T) {
	c, err := NewClient(testURL, WithTimeout(200*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, c.retryWaitMax)
	assert.Equal(t, 200*time.Millisecond, c.retryWaitMin)

	c, err = NewClient(testURL, WithRetryWait(10*time.Millisecond, 100*time.Millisecond), WithTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 10*time.Millisecond, c.retryWaitMin)
	assert.Equal(t, 100*time.Millisecond, c.retryWaitMax)
}

func TestWithAPIKeyAndUserAgent(t *testing.T) {
	c, err := NewClient(testURL, WithAPIKey("k"), WithUserAgent("custom/1"))
	require.NoError(t, err)
	assert.Equal(t, "k", c.apiKey)
	assert.Equal(t, "custom/1", c.userAgent)
}

func TestOptions_Rejected(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"nil http client", []Option{WithHTTPClient(nil)}},
		{"nil logger", []Option{WithLogger(nil)}},
		{"negative retries", []Option{WithRetryMax(-1)}},
		{"too many retries", []Option{WithRetryMax(MaxRetries + 1)}},
		{"zero retry wait", []Option{WithRetryWait(0, time.Second)}},
		{"max below min", []Option{WithRetryWait(time.Second, time.Millisecond)}},
		{"negative timeout", []Option{WithTimeout(-time.Second)}},
		{"retry wait beyond timeout", []Option{WithRetryWait(time.Second, 3*time.Second), WithTimeout(2 * time.Second)}},
		{"timeout with custom client", []Option{WithHTTPClient(&http.Client{}), WithTimeout(time.Second)}},
		{"empty API key", []Option{WithAPIKey("")}},
		{"API key with newline", []Option{WithAPIKey("k\r\nX-Injected: 1")}},
		{"blank user agent", []Option{WithUserAgent("  ")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(testURL, tt.opts...)
			assert.Nil(t, c)
			assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
			var appErr *errors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.NotEmpty(t, appErr.Detail)
		})
	}
}

//Personal.AI order the ending
