package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"senseact/internal/config"
	"senseact/internal/dao"
	"senseact/internal/model"
	"senseact/internal/observability"
	"senseact/internal/video"
	"senseact/internal/vision"
	"senseact/internal/window"
	"senseact/pkg/timeutil"
)

// Analyzer is the vision-language collaborator boundary.
type Analyzer interface {
	Analyze(ctx context.Context, images []string, previousEvents string) (*dao.FrameAnalysis, error)
}

// FrameStore persists analyzed keyframes.
type FrameStore interface {
	Add(f *model.Frame) error
}

// EventPublisher ships best-effort notifications to observers.
type EventPublisher interface {
	TryPublish(ctx context.Context, msg *dao.NotifyMessage)
}

// modelFrameStore is the production FrameStore backed by the database.
type modelFrameStore struct{}

func (modelFrameStore) Add(f *model.Frame) error {
	return model.AddFrame(f)
}

func NewModelFrameStore() FrameStore {
	return modelFrameStore{}
}

// Processor runs one video segment end to end: sample, select keyframes,
// analyze, persist, extend the event window and publish. One segment is
// strictly sequential; concurrency comes from processing multiple segments
// in parallel, each with its own selector state.
type Processor struct {
	conf      config.VideoConfig
	open      video.OpenFunc
	analyzer  Analyzer
	frames    FrameStore
	windows   window.Store
	publisher EventPublisher
	logger    *logrus.Entry
}

func NewProcessor(conf config.VideoConfig, open video.OpenFunc, analyzer Analyzer,
	frames FrameStore, windows window.Store, publisher EventPublisher, logger *logrus.Entry) *Processor {
	return &Processor{
		conf:      conf,
		open:      open,
		analyzer:  analyzer,
		frames:    frames,
		windows:   windows,
		publisher: publisher,
		logger:    logger,
	}
}

// Process consumes the referenced segment. A decoder open failure skips the
// whole segment; a failed frame analysis drops that frame only. Both are
// reported through the returned error / the log, never by panicking sibling
// work.
func (p *Processor) Process(ctx context.Context, ref *dao.VideoReference) error {
	logger := p.logger.WithFields(logrus.Fields{
		"device": ref.DeviceId,
		"object": ref.ObjectName,
	})

	dec, err := p.open(ctx, ref)
	if err != nil {
		return fmt.Errorf("open segment %s: %w", ref.ObjectName, err)
	}
	defer dec.Close()

	sampler := video.NewSampler(dec, ref.Timestamp, p.conf.FrameInterval)
	selector := vision.NewKeyframeSelector(p.conf.SimilarityThreshold)
	recent := newContextBuffer(p.conf.ContextEvents)

	keyframes := 0
	sampled := 0
	for {
		select {
		case <-ctx.Done():
			logger.Infof("segment processing cancelled after %d keyframes", keyframes)
			return ctx.Err()
		default:
		}

		s, err := sampler.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read segment %s: %w", ref.ObjectName, err)
		}
		sampled++
		observability.FramesSampled.WithLabelValues(ref.DeviceId).Inc()

		accepted, score := selector.Consider(s.Frame.Gray())
		if !accepted {
			s.Frame.Close()
			continue
		}
		keyframes++
		observability.KeyframesSelected.WithLabelValues(ref.DeviceId).Inc()

		if err := p.processKeyframe(ctx, ref, s, score, recent); err != nil {
			observability.AnalysisFailures.WithLabelValues(ref.DeviceId).Inc()
			logger.WithError(err).Errorf("keyframe at %d dropped", s.Timestamp)
		}
		s.Frame.Close()
	}

	observability.SegmentsProcessed.WithLabelValues(ref.DeviceId).Inc()
	logger.Infof("extracted %d keyframes from %d sampled frames", keyframes, sampled)
	return nil
}

// processKeyframe runs the ordered side effects for one accepted keyframe:
// persist the frame record, then extend the event window, then publish. An
// observer therefore never sees a notification for data that failed to
// persist.
func (p *Processor) processKeyframe(ctx context.Context, ref *dao.VideoReference,
	s *video.Sampled, score float64, recent *contextBuffer) error {

	thumbData, err := s.Frame.EncodeJPEG(p.conf.ThumbnailScale)
	if err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	thumbnail := video.JPEGDataURI(thumbData)

	fullData, err := s.Frame.EncodeJPEG(1)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	start := time.Now()
	analysis, err := p.analyzer.Analyze(ctx, []string{video.JPEGDataURI(fullData)}, recent.String())
	observability.AnalysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("analyze frame: %w", err)
	}

	frame := &model.Frame{
		DeviceId:      ref.DeviceId,
		Timestamp:     s.Timestamp,
		ObjectName:    ref.ObjectName,
		Similarity:    score,
		Thumbnail:     thumbnail,
		Description:   analysis.Description,
		EventCategory: string(analysis.EventCategory),
		TriggerAlarm:  analysis.TriggerAlarm,
	}
	if err := p.frames.Add(frame); err != nil {
		return fmt.Errorf("persist frame: %w", err)
	}

	if err := p.windows.Touch(ref.DeviceId, string(analysis.EventCategory), s.Timestamp); err != nil {
		return fmt.Errorf("touch window: %w", err)
	}

	p.publisher.TryPublish(ctx, &dao.NotifyMessage{
		Type:          dao.NotifyTypeEvent,
		DeviceId:      ref.DeviceId,
		Timestamp:     s.Timestamp,
		Thumbnail:     thumbnail,
		Description:   analysis.Description,
		EventCategory: analysis.EventCategory,
		TriggerAlarm:  analysis.TriggerAlarm,
	})

	recent.add(fmt.Sprintf("%s: %s %s",
		timeutil.FormatMillis(s.Timestamp), analysis.EventCategory, analysis.Description))
	return nil
}

// contextBuffer keeps the last N event lines of the current segment run,
// fed back to the analyzer as context about previous events.
type contextBuffer struct {
	lines []string
	size  int
}

func newContextBuffer(size int) *contextBuffer {
	return &contextBuffer{size: size}
}

func (b *contextBuffer) add(line string) {
	if b.size <= 0 {
		return
	}
	b.lines = append(b.lines, line)
	if len(b.lines) > b.size {
		b.lines = b.lines[len(b.lines)-b.size:]
	}
}

func (b *contextBuffer) String() string {
	return strings.Join(b.lines, "\n")
}
