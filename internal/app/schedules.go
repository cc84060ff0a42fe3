package app

import (
	"context"
	"time"

	"github.com/bilgisen/cyberpress/internal/logger"
	"github.com/bilgisen/cyberpress/internal/models"
	"github.com/bilgisen/cyberpress/internal/scheduler"
	"github.com/bilgisen/cyberpress/internal/storage"
	"github.com/bilgisen/cyberpress/internal/store"
)

const (
	JobCacheCleanup = "cache-cleanup"
	JobStateBackup  = "state-backup"
)

// Targets are the components the default jobs act on. Backup is optional.
type Targets struct {
	Store   *store.Store
	Storage *storage.Storage
	Backup  *storage.Backup
}

// InstallSchedules registers the default jobs and keeps the content
// schedules in step with the refresh preferences.
func InstallSchedules(s *scheduler.Scheduler, t Targets) error {
	if err := installContentSchedules(s, t.Store, t.Store.Preferences()); err != nil {
		return err
	}

	if err := s.ScheduleWeeklyAt(string(models.SectionAITools), t.Store.RefreshAITools, time.Sunday, 8, 0); err != nil {
		return err
	}
	if err := s.ScheduleRecurring(string(models.SectionCryptoData), t.Store.RefreshCryptoData, time.Hour); err != nil {
		return err
	}

	log := logger.Component("scheduler")
	if err := s.ScheduleRecurring(JobCacheCleanup, func(context.Context) error {
		n, err := t.Storage.ClearExpiredCache()
		if n > 0 {
			log.Info().Int("evicted", n).Msg("Expired cache entries removed")
		}
		return err
	}, time.Hour); err != nil {
		return err
	}

	if t.Backup != nil {
		if err := s.ScheduleDailyAt(JobStateBackup, func(ctx context.Context) error {
			_, err := t.Backup.Run(ctx)
			return err
		}, 3, 0); err != nil {
			return err
		}
	}

	t.Store.OnPreferencesChanged(func(prefs models.UserPreferences) {
		if err := installContentSchedules(s, t.Store, prefs); err != nil {
			log.Error().Err(err).Msg("Failed to reschedule content refresh")
		}
	})
	return nil
}

// installContentSchedules (re)schedules the news and creative sections at
// the preferred frequency. Sections the user switched off are unscheduled.
func installContentSchedules(s *scheduler.Scheduler, st *store.Store, prefs models.UserPreferences) error {
	jobs := []struct {
		section models.Section
		enabled bool
	}{
		{models.SectionAINews, prefs.Categories.AINews},
		{models.SectionStartupNews, prefs.Categories.StartupNews},
		{models.SectionCryptoNews, prefs.Categories.Crypto},
		{models.SectionCreative, prefs.Categories.Creative},
	}

	for _, j := range jobs {
		name := string(j.section)
		if !j.enabled {
			s.Clear(name)
			continue
		}
		sec := j.section
		job := func(ctx context.Context) error { return st.RefreshSection(ctx, sec) }
		if err := scheduleAt(s, name, job, prefs.RefreshFrequency); err != nil {
			return err
		}
	}
	return nil
}

func scheduleAt(s *scheduler.Scheduler, name string, job scheduler.Job, frequency string) error {
	switch frequency {
	case models.RefreshHourly:
		return s.ScheduleRecurring(name, job, time.Hour)
	case models.RefreshWeekly:
		return s.ScheduleWeeklyAt(name, job, time.Sunday, 8, 0)
	default:
		return s.ScheduleDailyAt(name, job, 8, 0)
	}
}
