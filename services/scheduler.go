package services

import (
	"context"
	"fmt"
	"time"

	"duel-bot/chat"
	"duel-bot/config"
	"duel-bot/logger"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

// Jobs are the periodic tasks run next to the chat loop.
type Jobs struct {
	Presence  *PresenceService
	Stats     *StatsService
	Transport chat.Transport
	Channels  []string
	LurkTick  time.Duration
}

// AccrueLurkers credits one tick of lurk time to every lurker.
func (j *Jobs) AccrueLurkers(ctx context.Context) {
	n, err := j.Presence.AccrueLurkTime(ctx, j.LurkTick)
	if err != nil {
		logger.Error("[Scheduler] lurk accrual failed", "error", err)
		return
	}
	if n > 0 {
		logger.Debug("[Scheduler] lurkers credited", "count", n)
	}
}

// AnnounceLeaderboard posts the top five balances to every channel.
func (j *Jobs) AnnounceLeaderboard(ctx context.Context) {
	line, err := j.Stats.LeaderboardLine(ctx, 5)
	if err != nil {
		logger.Error("[Scheduler] leaderboard failed", "error", err)
		return
	}
	if line == "" {
		return
	}
	for _, channel := range j.Channels {
		if err := j.Transport.Send(channel, line); err != nil {
			logger.Warn("[Scheduler] failed to announce leaderboard", "channel", channel, "error", err)
		}
	}
}

// StartScheduler registers the periodic jobs and starts running them.
func StartScheduler(ctx context.Context, jobs *Jobs, game config.Game, clock clockwork.Clock) (gocron.Scheduler, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	sched, err := gocron.NewScheduler(gocron.WithClock(clock))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(game.LurkTick),
		gocron.NewTask(jobs.AccrueLurkers, ctx),
		gocron.WithName("lurk-accrual"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule lurk accrual: %w", err)
	}

	if game.LeaderboardEvery > 0 && jobs.Transport != nil {
		_, err = sched.NewJob(
			gocron.DurationJob(game.LeaderboardEvery),
			gocron.NewTask(jobs.AnnounceLeaderboard, ctx),
			gocron.WithName("leaderboard-announcement"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to schedule leaderboard: %w", err)
		}
	}

	sched.Start()
	logger.Info("⏰ scheduler started", "jobs", len(sched.Jobs()))
	return sched, nil
}
