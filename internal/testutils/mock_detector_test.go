package testutils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

func TestMockDetector_Matching(t *testing.T) {
	boom := errors.New("boom")
	m := NewMockDetector("mock").
		AddResponse(MockDetection{Pattern: "room", Detections: MessyRoom(), AnnotatedImagePath: "out/room.jpg"}).
		AddResponse(MockDetection{Pattern: "broken-room", Err: boom})

	tests := []struct {
		name      string
		path      string
		wantErr   error
		wantCount int
	}{
		{name: "matched", path: "uploads/room-1.jpg", wantCount: len(MessyRoom())},
		{name: "later pattern wins", path: "uploads/broken-room.jpg", wantErr: boom},
		{name: "unmatched", path: "uploads/hall.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := m.Detect(context.Background(), ports.DetectRequest{ImagePath: tt.path})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, res.Detections, tt.wantCount)
		})
	}
	assert.Equal(t, 3, m.CallCount())
	assert.Equal(t, "uploads/hall.jpg", m.Calls()[2].ImagePath)
	assert.Equal(t, "mock", m.GetModel())
}

func TestMockDetector_DelayHonorsContext(t *testing.T) {
	m := NewMockDetector("mock")
	m.Delay = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := m.Detect(ctx, ports.DetectRequest{ImagePath: "a.jpg"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryStore_Find(t *testing.T) {
	classrooms := NewMemoryClassrooms(Classrooms()...)
	store := NewMemoryStore(classrooms)
	at := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	for _, s := range []struct {
		id string
		c  string
		d  int
	}{{"a1", "7A", 0}, {"a2", "7A", 1}, {"c1", "8A", 2}} {
		require.NoError(t, store.Save(context.Background(), Score(s.id, domain.ClassroomID(s.c), at.AddDate(0, 0, s.d), 30)))
	}

	err := store.Save(context.Background(), Score("a1", "7A", at, 30))
	assert.ErrorIs(t, err, ports.ErrDuplicateRecord)

	got, err := store.Find(context.Background(), ports.ScoreQuery{GradeLevel: "7"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a2", got[0].ID)
	assert.Equal(t, 3, store.Len())
}
