package summary

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"senseact/internal/config"
	"senseact/internal/dao"
	"senseact/internal/model"
	"senseact/internal/observability"
	"senseact/internal/window"
	"senseact/pkg/log"
	"senseact/pkg/timeutil"
)

// Summarizer collapses a window's chronological event lines into a title and
// narrative.
type Summarizer interface {
	Summarize(ctx context.Context, eventsContext string) (*dao.EventSummary, error)
}

// FrameQuerier reads back the persisted frames of a closed window.
type FrameQuerier interface {
	FramesInRange(deviceId, category string, minTime, maxTime int64) ([]model.Frame, error)
	Thumbnail(deviceId string, timestamp int64) (string, error)
}

// SummarySaver persists finished summaries.
type SummarySaver interface {
	Add(s *model.Summary) error
}

// EventPublisher ships best-effort notifications to observers.
type EventPublisher interface {
	TryPublish(ctx context.Context, msg *dao.NotifyMessage)
}

type modelFrameQuerier struct{}

func (modelFrameQuerier) FramesInRange(deviceId, category string, minTime, maxTime int64) ([]model.Frame, error) {
	return model.GetFramesInRange(deviceId, category, minTime, maxTime)
}

func (modelFrameQuerier) Thumbnail(deviceId string, timestamp int64) (string, error) {
	return model.GetThumbnail(deviceId, timestamp)
}

func NewModelFrameQuerier() FrameQuerier {
	return modelFrameQuerier{}
}

type modelSummarySaver struct{}

func (modelSummarySaver) Add(s *model.Summary) error {
	return model.AddSummary(s)
}

func NewModelSummarySaver() SummarySaver {
	return modelSummarySaver{}
}

// Scheduler periodically sweeps every device's open windows, summarizes the
// ones ready to close and resets them. Summarization failures leave the
// window untouched so the next sweep retries it.
type Scheduler struct {
	conf       config.SummaryConfig
	windows    window.Store
	frames     FrameQuerier
	summaries  SummarySaver
	summarizer Summarizer
	publisher  EventPublisher
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	logger     *logrus.Entry
	now        func() int64
}

func NewScheduler(conf config.SummaryConfig, windows window.Store, frames FrameQuerier,
	summaries SummarySaver, summarizer Summarizer, publisher EventPublisher) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		conf:       conf,
		windows:    windows,
		frames:     frames,
		summaries:  summaries,
		summarizer: summarizer,
		publisher:  publisher,
		ctx:        ctx,
		cancel:     cancel,
		logger:     log.WithComponent(ctx, "summary"),
		now:        timeutil.NowMillis,
	}
}

func (s *Scheduler) Start() {
	s.logger.Infof("Starting summary scheduler, interval %s", s.conf.Interval())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.conf.Interval())
		defer ticker.Stop()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(s.ctx)
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// RunOnce performs one sweep over every device and category.
func (s *Scheduler) RunOnce(ctx context.Context) {
	devices, err := s.windows.Devices()
	if err != nil {
		s.logger.WithError(err).Error("Failed to list window devices")
		return
	}

	nowMs := s.now()
	for _, deviceId := range devices {
		snap, err := s.windows.Snapshot(deviceId)
		if err != nil {
			s.logger.WithError(err).Errorf("Failed to snapshot windows for device %s", deviceId)
			continue
		}
		for category, w := range snap {
			if !ShouldClose(w, nowMs, s.conf.MaxGapMs, s.conf.MaxDurationMs) {
				continue
			}
			s.summarizeWindow(ctx, deviceId, category, w)
		}
	}
}

func (s *Scheduler) summarizeWindow(ctx context.Context, deviceId, category string, w window.Window) {
	logger := s.logger.WithFields(logrus.Fields{
		"device":   deviceId,
		"category": category,
		"minTime":  w.MinTime,
		"maxTime":  w.MaxTime,
	})

	frames, err := s.frames.FramesInRange(deviceId, category, w.MinTime, w.MaxTime)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load window frames")
		return
	}
	if len(frames) == 0 {
		// Nothing persisted in the span; leave the window for the next sweep.
		logger.Warn("Window closed with no frames in range")
		return
	}

	lines := make([]string, 0, len(frames))
	events := make([]dao.EventLine, 0, len(frames))
	for _, f := range frames {
		ts := timeutil.FormatMillis(f.Timestamp)
		lines = append(lines, fmt.Sprintf("%s, %s", ts, f.Description))
		events = append(events, dao.EventLine{Timestamp: ts, Description: f.Description})
	}

	result, err := s.summarizer.Summarize(ctx, strings.Join(lines, "\n"))
	if err != nil {
		observability.SummaryFailures.WithLabelValues(deviceId).Inc()
		logger.WithError(err).Error("Failed to summarize window, will retry")
		return
	}

	thumbnail, err := s.frames.Thumbnail(deviceId, frames[0].Timestamp)
	if err != nil {
		logger.WithError(err).Warn("Failed to load summary thumbnail")
	}

	minTs := frames[0].Timestamp
	maxTs := frames[len(frames)-1].Timestamp
	rec := &model.Summary{
		DeviceId:      deviceId,
		Timestamp:     s.now(),
		MinTimestamp:  minTs,
		MaxTimestamp:  maxTs,
		EventCategory: category,
		Title:         result.Title,
		EventSummary:  result.EventSummary,
		Thumbnail:     thumbnail,
	}
	if err := s.summaries.Add(rec); err != nil {
		observability.SummaryFailures.WithLabelValues(deviceId).Inc()
		logger.WithError(err).Error("Failed to persist summary, will retry")
		return
	}
	observability.SummariesCreated.WithLabelValues(deviceId).Inc()
	logger.Infof("Summarized %d frames: %s", len(frames), result.Title)

	s.publisher.TryPublish(ctx, &dao.NotifyMessage{
		Type:           dao.NotifyTypeSummary,
		DeviceId:       deviceId,
		EventCategory:  dao.EventCategory(category),
		StartTimestamp: minTs,
		EndTimestamp:   maxTs,
		Title:          result.Title,
		Description:    result.EventSummary,
		Thumbnail:      thumbnail,
		Events:         events,
	})

	if err := s.windows.Reset(deviceId, category, w.MaxTime); err != nil {
		logger.WithError(err).Error("Failed to reset window after summary")
	}
}
