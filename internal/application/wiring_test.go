package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffeescripttech-maker/classroom-cleanliness/infrastructure/detector"
)

func TestNewDetectorClient(t *testing.T) {
	cfg := DefaultAppConfig().Detector

	client, err := NewDetectorClient(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "vision@http://localhost:5000", client.GetModel())

	cfg.BaseURL = ""
	_, err = NewDetectorClient(cfg, nil)
	assert.ErrorIs(t, err, detector.ErrEmptyBaseURL)
}
