package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ops-panel/config"
	"ops-panel/internal/model"
	"ops-panel/internal/service"
	"ops-panel/pkg/metrics"
)

const depreciationJob = "depreciation_monthly"

// Locker 跨实例任务锁（由 pkg/redis.Client 实现）
type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, name string) error
}

// Scheduler 定时任务：每月为上一会计期间计提折旧
type Scheduler struct {
	cron         *cron.Cron
	cfg          *config.SchedulerConfig
	depreciation service.DepreciationService
	locker       Locker
	logger       *zap.Logger
	now          func() time.Time
}

// NewScheduler 创建调度器；locker 为 nil 时不加锁（单实例部署）
func NewScheduler(cfg *config.SchedulerConfig, depreciation service.DepreciationService, locker Locker, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:         cron.New(cron.WithLocation(time.UTC)),
		cfg:          cfg,
		depreciation: depreciation,
		locker:       locker,
		logger:       logger.With(zap.String("component", "scheduler")),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Start 注册任务并启动
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.DepreciationCron, s.runDepreciation); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("定时任务已启动", zap.String("depreciation_cron", s.cfg.DepreciationCron))
	return nil
}

// Stop 停止调度并等待运行中的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("定时任务已停止")
}

func (s *Scheduler) runDepreciation() {
	timeout := s.cfg.JobTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	period := model.PeriodOf(s.now()).Prev().String()
	log := s.logger.With(zap.String("job", depreciationJob), zap.String("period", period))

	if s.locker != nil {
		lockName := depreciationJob + ":" + period
		ok, err := s.locker.TryLock(ctx, lockName, timeout)
		if err != nil {
			log.Error("获取任务锁失败", zap.Error(err))
			metrics.ScheduledJobRuns.WithLabelValues(depreciationJob, "error").Inc()
			return
		}
		if !ok {
			log.Info("其他实例正在执行，跳过")
			metrics.ScheduledJobRuns.WithLabelValues(depreciationJob, "locked").Inc()
			return
		}
		defer func() {
			if err := s.locker.Unlock(context.Background(), lockName); err != nil {
				log.Warn("释放任务锁失败", zap.Error(err))
			}
		}()
	}

	result, err := s.depreciation.RunMonthly(ctx, period, s.cfg.SystemActorID)
	if err != nil {
		log.Error("月度折旧执行失败", zap.Error(err))
		metrics.ScheduledJobRuns.WithLabelValues(depreciationJob, "error").Inc()
		return
	}

	metrics.ScheduledJobRuns.WithLabelValues(depreciationJob, "success").Inc()
	log.Info("月度折旧执行完成",
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("failed", len(result.Failed)),
	)
}
