package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"
	"runnerhub/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type reviewTestDeps struct {
	svc        *ReviewServiceImpl
	reviewRepo *mocks.MockReviewRepository
	taskRepo   *mocks.MockTaskRepository
}

func setupReviewService(t *testing.T) *reviewTestDeps {
	ctrl := gomock.NewController(t)
	d := &reviewTestDeps{
		reviewRepo: mocks.NewMockReviewRepository(ctrl),
		taskRepo:   mocks.NewMockTaskRepository(ctrl),
	}
	d.svc = NewReviewService(d.reviewRepo, d.taskRepo, newTestLogger())
	return d
}

func TestReviewService_Submit_RevieweeIsOtherParticipant(t *testing.T) {
	ctx := context.Background()
	runnerID := uuid.New()
	task := taskIn(domain.TaskStatusCompleted, &runnerID)

	t.Run("client reviews runner", func(t *testing.T) {
		d := setupReviewService(t)
		d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(task, nil)
		d.reviewRepo.EXPECT().Exists(ctx, task.ID, task.ClientID).Return(false, nil)
		d.reviewRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		comment := "  great  "
		review, err := d.svc.Submit(ctx, ports.SubmitReviewRequest{
			ReviewerID: task.ClientID, TaskID: task.ID, Rating: 5, Comment: &comment,
		})
		require.NoError(t, err)
		assert.Equal(t, runnerID, review.RevieweeID)
		require.NotNil(t, review.Comment)
		assert.Equal(t, "great", *review.Comment)
	})

	t.Run("runner reviews client", func(t *testing.T) {
		d := setupReviewService(t)
		d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(task, nil)
		d.reviewRepo.EXPECT().Exists(ctx, task.ID, runnerID).Return(false, nil)
		d.reviewRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		review, err := d.svc.Submit(ctx, ports.SubmitReviewRequest{ReviewerID: runnerID, TaskID: task.ID, Rating: 3})
		require.NoError(t, err)
		assert.Equal(t, task.ClientID, review.RevieweeID)
		assert.Nil(t, review.Comment)
	})
}

func TestReviewService_Submit_Rejections(t *testing.T) {
	ctx := context.Background()
	runnerID := uuid.New()
	task := taskIn(domain.TaskStatusCompleted, &runnerID)

	t.Run("rating out of range", func(t *testing.T) {
		d := setupReviewService(t)
		for _, r := range []int{0, 6} {
			_, err := d.svc.Submit(ctx, ports.SubmitReviewRequest{ReviewerID: runnerID, TaskID: task.ID, Rating: r})
			assertAppError(t, err, "VAL_001")
		}
	})

	t.Run("comment too long", func(t *testing.T) {
		d := setupReviewService(t)
		long := strings.Repeat("é", domain.MaxCommentLength+1)
		_, err := d.svc.Submit(ctx, ports.SubmitReviewRequest{ReviewerID: runnerID, TaskID: task.ID, Rating: 4, Comment: &long})
		assertAppError(t, err, "VAL_001")
	})

	t.Run("missing task", func(t *testing.T) {
		d := setupReviewService(t)
		id := uuid.New()
		d.taskRepo.EXPECT().GetByID(ctx, id).Return(nil, nil)
		_, err := d.svc.Submit(ctx, ports.SubmitReviewRequest{ReviewerID: runnerID, TaskID: id, Rating: 4})
		assertAppError(t, err, "RES_001")
	})

	t.Run("second review", func(t *testing.T) {
		d := setupReviewService(t)
		d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(task, nil)
		d.reviewRepo.EXPECT().Exists(ctx, task.ID, runnerID).Return(true, nil)
		_, err := d.svc.Submit(ctx, ports.SubmitReviewRequest{ReviewerID: runnerID, TaskID: task.ID, Rating: 4})
		assertAppError(t, err, "REV_001")
	})

	t.Run("concurrent duplicate hits unique index", func(t *testing.T) {
		d := setupReviewService(t)
		d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(task, nil)
		d.reviewRepo.EXPECT().Exists(ctx, task.ID, runnerID).Return(false, nil)
		d.reviewRepo.EXPECT().Create(ctx, gomock.Any()).Return(fmt.Errorf("insert review: %w", ports.ErrDuplicate))
		_, err := d.svc.Submit(ctx, ports.SubmitReviewRequest{ReviewerID: runnerID, TaskID: task.ID, Rating: 4})
		assertAppError(t, err, "REV_001")
	})

	t.Run("outsider", func(t *testing.T) {
		d := setupReviewService(t)
		outsider := uuid.New()
		d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(task, nil)
		d.reviewRepo.EXPECT().Exists(ctx, task.ID, outsider).Return(false, nil)
		_, err := d.svc.Submit(ctx, ports.SubmitReviewRequest{ReviewerID: outsider, TaskID: task.ID, Rating: 4})
		assertAppError(t, err, "AUTH_004")
	})

	t.Run("client before any runner", func(t *testing.T) {
		d := setupReviewService(t)
		open := taskIn(domain.TaskStatusPosted, nil)
		d.taskRepo.EXPECT().GetByID(ctx, open.ID).Return(open, nil)
		d.reviewRepo.EXPECT().Exists(ctx, open.ID, open.ClientID).Return(false, nil)
		_, err := d.svc.Submit(ctx, ports.SubmitReviewRequest{ReviewerID: open.ClientID, TaskID: open.ID, Rating: 4})
		assertAppError(t, err, "RES_002")
	})
}

func TestReviewService_AverageFor(t *testing.T) {
	d := setupReviewService(t)
	ctx := context.Background()
	userID := uuid.New()

	d.reviewRepo.EXPECT().SummaryFor(ctx, userID).Return(domain.RatingSummary{Average: 4.5, Count: 2}, nil)

	summary, err := d.svc.AverageFor(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 4.5, summary.Average)
	assert.Equal(t, int64(2), summary.Count)
}

func TestReviewService_ListAndDelete(t *testing.T) {
	d := setupReviewService(t)
	ctx := context.Background()
	userID := uuid.New()
	id := uuid.New()

	d.reviewRepo.EXPECT().ListByReviewee(ctx, userID).Return(nil, nil)
	d.reviewRepo.EXPECT().Delete(ctx, id).Return(true, nil)
	d.reviewRepo.EXPECT().Delete(ctx, id).Return(false, nil)

	reviews, err := d.svc.ListFor(ctx, userID)
	require.NoError(t, err)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)

	require.NoError(t, d.svc.Delete(ctx, id))
	assertAppError(t, d.svc.Delete(ctx, id), "RES_001")
}
