package ecgsubmit

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cardionote-be/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func animatedGifBytes(t *testing.T, frames int) []byte {
	t.Helper()
	anim := &gif.GIF{}
	palette := color.Palette{color.White, color.Black}
	for i := 0; i < frames; i++ {
		anim.Image = append(anim.Image, image.NewPaletted(image.Rect(0, 0, 800, 450), palette))
		anim.Delay = append(anim.Delay, 10)
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, anim))
	return buf.Bytes()
}

func testUpload(contentType string, data []byte) Upload {
	return Upload{
		Filename:    "ecg.png",
		ContentType: contentType,
		Data:        data,
		CapturedAt:  time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestSubmit_RejectsUnsupportedType(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil).WithRetryPolicy(3, time.Millisecond)

	_, err := client.Submit(context.Background(), testUpload("application/pdf", pngBytes(t, 800, 450)))

	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "validation failure must not reach the network")
}

func TestSubmit_RejectsAnimatedGif(t *testing.T) {
	client := NewClient("http://unused.invalid", nil).WithRetryPolicy(0, time.Millisecond)

	_, err := client.Submit(context.Background(), testUpload("image/gif", animatedGifBytes(t, 3)))

	assert.True(t, apperror.IsValidation(err))
}

func TestSubmit_ResolutionFloor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("analysis"))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil).WithRetryPolicy(0, time.Millisecond)

	_, err := client.Submit(context.Background(), testUpload("image/png", pngBytes(t, 699, 400)))
	assert.True(t, apperror.IsValidation(err), "width below floor must fail")

	_, err = client.Submit(context.Background(), testUpload("image/png", pngBytes(t, 700, 399)))
	assert.True(t, apperror.IsValidation(err), "height below floor must fail")

	body, err := client.Submit(context.Background(), testUpload("image/png", pngBytes(t, 700, 400)))
	require.NoError(t, err, "exact floor dimensions are inclusive")
	assert.Equal(t, "analysis", body)
}

func TestSubmit_MultipartPayload(t *testing.T) {
	var gotFields map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(10<<20))
		gotFields = map[string]string{}
		for name, values := range r.MultipartForm.Value {
			gotFields[name] = values[0]
		}
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "ecg.png", header.Filename)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil).WithRetryPolicy(0, time.Millisecond)
	data := pngBytes(t, 800, 450)

	_, err := client.Submit(context.Background(), testUpload("image/png", data))
	require.NoError(t, err)

	assert.Equal(t, "800x450", gotFields["dimensions"])
	assert.Equal(t, "image/png", gotFields["content_type"])
	assert.Equal(t, "ecg.png", gotFields["filename"])
	assert.Equal(t, "2025-03-14T09:30:00Z", gotFields["captured_at"])
	assert.NotEmpty(t, gotFields["file_base64"])
	assert.Contains(t, gotFields["object_uri"], "file://")
}

func TestSubmit_RetriesUntilBudgetExhausted(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "upstream down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil).WithRetryPolicy(3, time.Millisecond)

	_, err := client.Submit(context.Background(), testUpload("image/png", pngBytes(t, 800, 450)))

	require.True(t, apperror.IsSubmission(err))
	var subErr *apperror.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, 4, subErr.Attempts)
	assert.Equal(t, http.StatusInternalServerError, subErr.LastStatus)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls), "one initial attempt plus three retries")
}

func TestSubmit_RecoversMidRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "flaky", http.StatusBadGateway)
			return
		}
		w.Write([]byte("recovered analysis"))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil).WithRetryPolicy(3, time.Millisecond)

	body, err := client.Submit(context.Background(), testUpload("image/png", pngBytes(t, 800, 450)))

	require.NoError(t, err)
	assert.Equal(t, "recovered analysis", body)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSubmit_ContextCancelDuringDelay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil).WithRetryPolicy(3, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.Submit(ctx, testUpload("image/png", pngBytes(t, 800, 450)))
	assert.True(t, apperror.IsSubmission(err))
}
