package workers

import (
	"context"
	"sync"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
	"go.uber.org/zap"
)

const achievementQueueSize = 100

type AchievementSyncer interface {
	Sync(ctx context.Context, userID string) (*domain.AchievementEvaluation, error)
}

type AchievementJob struct {
	UserID string
}

// AchievementWorker re-evaluates badges off the request path.
type AchievementWorker struct {
	syncer AchievementSyncer
	logger *zap.Logger
	jobs   chan AchievementJob
	done   chan struct{}
	once   sync.Once
}

func NewAchievementWorker(syncer AchievementSyncer, logger *zap.Logger) *AchievementWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AchievementWorker{
		syncer: syncer,
		logger: logger.Named("achievement_worker"),
		jobs:   make(chan AchievementJob, achievementQueueSize),
		done:   make(chan struct{}),
	}
}

func (w *AchievementWorker) Start(ctx context.Context) {
	go func() {
		defer w.once.Do(func() { close(w.done) })

		w.logger.Info("achievement worker started")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				w.logger.Info("achievement worker shutting down", zap.Int("pending", len(w.jobs)))
				return
			}
		}
	}()
}

// Done is closed once the worker loop has returned.
func (w *AchievementWorker) Done() <-chan struct{} {
	return w.done
}

// Enqueue never blocks; the job is dropped when the queue is full.
func (w *AchievementWorker) Enqueue(userID string) {
	select {
	case w.jobs <- AchievementJob{UserID: userID}:
	default:
		w.logger.Warn("achievement queue full, dropping job", zap.String("user_id", userID))
	}
}

func (w *AchievementWorker) processJob(ctx context.Context, job AchievementJob) {
	eval, err := w.syncer.Sync(ctx, job.UserID)
	if err != nil {
		w.logger.Error("achievement sync failed", zap.String("user_id", job.UserID), zap.Error(err))
		return
	}

	for _, b := range eval.NewlyUnlocked {
		w.logger.Info("badge unlocked",
			zap.String("user_id", job.UserID),
			zap.String("badge_id", b.ID),
			zap.Int("points", b.Points),
		)
	}
}
