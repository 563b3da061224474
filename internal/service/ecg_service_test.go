package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"cardionote-be/internal/apperror"
	"cardionote-be/internal/entity"
	"cardionote-be/internal/store"
	"cardionote-be/pkg/ecgsubmit"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeECGPersistence struct {
	mu   sync.Mutex
	rows []entity.ECGResult
}

func (f *fakeECGPersistence) List(ctx context.Context, ownerID uuid.UUID) ([]entity.ECGResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.ECGResult, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeECGPersistence) Insert(ctx context.Context, ownerID uuid.UUID, defaults map[string]interface{}) (entity.ECGResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := entity.ECGResult{Id: uuid.New(), UserId: ownerID}
	if raw, ok := defaults["raw_analysis"].(string); ok {
		result.RawAnalysis = raw
	}
	f.rows = append([]entity.ECGResult{result}, f.rows...)
	return result, nil
}

func (f *fakeECGPersistence) Update(ctx context.Context, ownerID uuid.UUID, id uuid.UUID, fields map[string]interface{}) error {
	return nil
}

func (f *fakeECGPersistence) Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error {
	return nil
}

func (f *fakeECGPersistence) Subscribe(ownerID uuid.UUID, onChange func()) (func(), error) {
	return func() {}, nil
}

type fakeAssist struct {
	generated   string
	completed   string
	generateErr error
}

func (f *fakeAssist) Chat(ctx context.Context, body []byte) (*ProxyResult, error) {
	return &ProxyResult{Status: 200, Body: []byte("{}")}, nil
}
func (f *fakeAssist) Interpret(ctx context.Context, body []byte) (*ProxyResult, error) {
	return &ProxyResult{Status: 200, Body: []byte("{}")}, nil
}
func (f *fakeAssist) Search(ctx context.Context, body []byte) (*ProxyResult, error) {
	return &ProxyResult{Status: 200, Body: []byte("{}")}, nil
}
func (f *fakeAssist) ChatCompletion(ctx context.Context, prompt string) (string, error) {
	return f.completed, nil
}
func (f *fakeAssist) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f.generated, f.generateErr
}

func ecgTestUpload(t *testing.T) ecgsubmit.Upload {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 800, 450))))
	return ecgsubmit.Upload{
		Filename:    "ecg.png",
		ContentType: "image/png",
		Data:        buf.Bytes(),
		CapturedAt:  time.Now(),
	}
}

func newECGServiceForTest(t *testing.T, webhook http.HandlerFunc, assist IAssistService) (IECGService, uuid.UUID) {
	t.Helper()
	server := httptest.NewServer(webhook)
	t.Cleanup(server.Close)

	client := ecgsubmit.NewClient(server.URL, nil).WithRetryPolicy(0, time.Millisecond)
	stores := store.NewManager(store.ECGResultConfig(&fakeECGPersistence{}, nil))
	return NewECGService(client, assist, stores), uuid.New()
}

func TestAnalyze_StoresRawAnalysis(t *testing.T) {
	svc, userID := newECGServiceForTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# Findings\nSinus rhythm."))
	}, &fakeAssist{})

	res, err := svc.Analyze(context.Background(), userID, ecgTestUpload(t))

	require.NoError(t, err)
	assert.Equal(t, "# Findings\nSinus rhythm.", res.RawAnalysis)
	assert.Contains(t, res.RenderedRaw, "<h1>Findings</h1>")

	list, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, list.Results, 1)
	assert.Equal(t, res.Id, list.Results[0].Id)
}

func TestPlanAction_RequiresInterpretationFirst(t *testing.T) {
	svc, userID := newECGServiceForTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("raw"))
	}, &fakeAssist{generated: "interpretation text", completed: "plan text"})

	res, err := svc.Analyze(context.Background(), userID, ecgTestUpload(t))
	require.NoError(t, err)

	// Planning before interpretation is out of order.
	_, err = svc.PlanAction(context.Background(), userID, res.Id)
	assert.True(t, apperror.IsValidation(err))

	interp, err := svc.Interpret(context.Background(), userID, res.Id)
	require.NoError(t, err)
	assert.Equal(t, "interpretation text", interp.Interpretation)

	plan, err := svc.PlanAction(context.Background(), userID, res.Id)
	require.NoError(t, err)
	assert.Equal(t, "plan text", plan.ActionPlan)
}

func TestInterpret_UnknownResult(t *testing.T) {
	svc, userID := newECGServiceForTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("raw"))
	}, &fakeAssist{})

	_, err := svc.Interpret(context.Background(), userID, uuid.New())
	assert.True(t, apperror.IsValidation(err))
}

func TestAnalyze_SubmissionFailureSurfaces(t *testing.T) {
	svc, userID := newECGServiceForTest(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}, &fakeAssist{})

	_, err := svc.Analyze(context.Background(), userID, ecgTestUpload(t))
	assert.True(t, apperror.IsSubmission(err))

	list, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, list.Results, "failed submission must not create a result")
}
