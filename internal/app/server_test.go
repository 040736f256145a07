package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goproductsync_api/internal/core/models"
)

type stubImageProcessor struct {
	gotData json.RawMessage
	count   int
	err     error
}

func (p *stubImageProcessor) Process(ctx context.Context, jobData json.RawMessage) (int, error) {
	p.gotData = jobData
	return p.count, p.err
}

func TestImageProcessingHandlerDelegates(t *testing.T) {
	proc := &stubImageProcessor{count: 4}
	handler := imageProcessingHandler(proc)

	result, err := handler(context.Background(), &models.QueueJob{
		JobType: models.JobTypeImageProcessing,
		JobData: json.RawMessage(`{"product_ids": [1, 2, 3, 4]}`),
	})

	require.NoError(t, err)
	assert.Equal(t, 4, result.SuccessCount)
	assert.JSONEq(t, `{"product_ids": [1, 2, 3, 4]}`, string(proc.gotData))
}

func TestImageProcessingHandlerPropagatesError(t *testing.T) {
	proc := &stubImageProcessor{err: errors.New("storage unavailable")}
	handler := imageProcessingHandler(proc)

	_, err := handler(context.Background(), &models.QueueJob{JobType: models.JobTypeImageProcessing})
	assert.EqualError(t, err, "storage unavailable")
}

func TestImageProcessingHandlerWithoutProcessor(t *testing.T) {
	handler := imageProcessingHandler(nil)

	_, err := handler(context.Background(), &models.QueueJob{JobType: models.JobTypeImageProcessing})
	assert.EqualError(t, err, "no image processor configured")
}

func TestBatchImportHandlerRejectsMalformedData(t *testing.T) {
	handler := batchImportHandler(nil)

	_, err := handler(context.Background(), &models.QueueJob{
		JobType: models.JobTypeBatchImport,
		JobData: json.RawMessage(`{`),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed job data")
}
