package summary

import (
	"context"
	"errors"
	"testing"

	"senseact/internal/config"
	"senseact/internal/dao"
	"senseact/internal/model"
	"senseact/internal/window"
)

type fakeQuerier struct {
	frames []model.Frame
	err    error
}

func (q *fakeQuerier) FramesInRange(deviceId, category string, minTime, maxTime int64) ([]model.Frame, error) {
	if q.err != nil {
		return nil, q.err
	}
	var out []model.Frame
	for _, f := range q.frames {
		if f.DeviceId == deviceId && f.EventCategory == category &&
			f.Timestamp > minTime && f.Timestamp <= maxTime {
			out = append(out, f)
		}
	}
	return out, nil
}

func (q *fakeQuerier) Thumbnail(deviceId string, timestamp int64) (string, error) {
	for _, f := range q.frames {
		if f.DeviceId == deviceId && f.Timestamp == timestamp {
			return f.Thumbnail, nil
		}
	}
	return "", nil
}

type fakeSaver struct {
	saved []*model.Summary
	err   error
}

func (s *fakeSaver) Add(rec *model.Summary) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, rec)
	return nil
}

type fakeSummarizer struct {
	calls    int
	contexts []string
	err      error
}

func (s *fakeSummarizer) Summarize(ctx context.Context, eventsContext string) (*dao.EventSummary, error) {
	s.calls++
	s.contexts = append(s.contexts, eventsContext)
	if s.err != nil {
		return nil, s.err
	}
	return &dao.EventSummary{Title: "yard visit", EventSummary: "a person crossed the yard twice"}, nil
}

type capturePublisher struct {
	msgs []*dao.NotifyMessage
}

func (p *capturePublisher) TryPublish(ctx context.Context, msg *dao.NotifyMessage) {
	p.msgs = append(p.msgs, msg)
}

func testSummaryConfig() config.SummaryConfig {
	return config.SummaryConfig{MaxGapMs: 60000, MaxDurationMs: 120000, IntervalSec: 10}
}

func newTestScheduler(q *fakeQuerier, saver *fakeSaver, sum *fakeSummarizer,
	pub *capturePublisher, windows window.Store, nowMs int64) *Scheduler {
	s := NewScheduler(testSummaryConfig(), windows, q, saver, sum, pub)
	s.now = func() int64 { return nowMs }
	return s
}

func TestSchedulerSummarizesClosedWindow(t *testing.T) {
	windows := window.NewMemoryStore()
	windows.Touch("cam-1", string(dao.EventIntrusion), 100000)
	windows.Touch("cam-1", string(dao.EventIntrusion), 130000)

	q := &fakeQuerier{frames: []model.Frame{
		{DeviceId: "cam-1", EventCategory: string(dao.EventIntrusion), Timestamp: 110000,
			Description: "a person enters", Thumbnail: "data:image/jpeg;base64,xx"},
		{DeviceId: "cam-1", EventCategory: string(dao.EventIntrusion), Timestamp: 130000,
			Description: "the person leaves"},
	}}
	saver := &fakeSaver{}
	sum := &fakeSummarizer{}
	pub := &capturePublisher{}

	// Quiet since 130000, well past the gap limit.
	s := newTestScheduler(q, saver, sum, pub, windows, 200000)
	s.RunOnce(context.Background())

	if len(saver.saved) != 1 {
		t.Fatalf("saved %d summaries, want 1", len(saver.saved))
	}
	rec := saver.saved[0]
	if rec.MinTimestamp != 110000 || rec.MaxTimestamp != 130000 {
		t.Fatalf("summary bounds [%d, %d], want [110000, 130000]", rec.MinTimestamp, rec.MaxTimestamp)
	}
	if rec.Title != "yard visit" || rec.EventCategory != string(dao.EventIntrusion) {
		t.Fatalf("summary record %+v", rec)
	}
	if rec.Thumbnail != "data:image/jpeg;base64,xx" {
		t.Fatalf("thumbnail %q, want the first frame's", rec.Thumbnail)
	}

	if len(pub.msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.msgs))
	}
	msg := pub.msgs[0]
	if msg.Type != dao.NotifyTypeSummary || msg.StartTimestamp != 110000 || msg.EndTimestamp != 130000 {
		t.Fatalf("notify message %+v", msg)
	}
	if msg.Title != "yard visit" || msg.Description != "a person crossed the yard twice" {
		t.Fatalf("summary notification missing narrative: %+v", msg)
	}
	if len(msg.Events) != 2 || msg.Events[0].Description != "a person enters" {
		t.Fatalf("event lines %+v", msg.Events)
	}

	// The window must be collapsed to its upper bound.
	snap, _ := windows.Snapshot("cam-1")
	w := snap[string(dao.EventIntrusion)]
	if w.MinTime != 130000 || w.MaxTime != 130000 {
		t.Fatalf("window after reset %+v", w)
	}

	// A second sweep finds only the degenerate window and does nothing.
	s.RunOnce(context.Background())
	if len(saver.saved) != 1 || sum.calls != 1 {
		t.Fatalf("second sweep resummarized: saved=%d calls=%d", len(saver.saved), sum.calls)
	}
}

func TestSchedulerLeavesActiveWindowOpen(t *testing.T) {
	windows := window.NewMemoryStore()
	windows.Touch("cam-1", string(dao.EventFire), 100000)
	windows.Touch("cam-1", string(dao.EventFire), 130000)

	sum := &fakeSummarizer{}
	s := newTestScheduler(&fakeQuerier{}, &fakeSaver{}, sum, &capturePublisher{}, windows, 140000)
	s.RunOnce(context.Background())

	if sum.calls != 0 {
		t.Fatalf("summarizer called for an active window")
	}
}

func TestSchedulerRetriesAfterSummarizeFailure(t *testing.T) {
	windows := window.NewMemoryStore()
	windows.Touch("cam-1", string(dao.EventIntrusion), 100000)
	windows.Touch("cam-1", string(dao.EventIntrusion), 130000)

	q := &fakeQuerier{frames: []model.Frame{
		{DeviceId: "cam-1", EventCategory: string(dao.EventIntrusion), Timestamp: 130000, Description: "d"},
	}}
	saver := &fakeSaver{}
	sum := &fakeSummarizer{err: errors.New("model overloaded")}
	s := newTestScheduler(q, saver, sum, &capturePublisher{}, windows, 200000)

	s.RunOnce(context.Background())
	if len(saver.saved) != 0 {
		t.Fatalf("saved a summary despite failure")
	}
	// Window untouched, so the next sweep retries.
	snap, _ := windows.Snapshot("cam-1")
	w := snap[string(dao.EventIntrusion)]
	if w.MinTime != 100000 || w.MaxTime != 130000 {
		t.Fatalf("window mutated on failure: %+v", w)
	}

	sum.err = nil
	s.RunOnce(context.Background())
	if len(saver.saved) != 1 {
		t.Fatalf("retry did not summarize")
	}
}

func TestSchedulerKeepsRacingExtension(t *testing.T) {
	windows := window.NewMemoryStore()
	windows.Touch("cam-1", string(dao.EventIntrusion), 100000)
	windows.Touch("cam-1", string(dao.EventIntrusion), 130000)

	q := &fakeQuerier{frames: []model.Frame{
		{DeviceId: "cam-1", EventCategory: string(dao.EventIntrusion), Timestamp: 130000, Description: "d"},
	}}
	pub := &capturePublisher{}
	sum := &fakeSummarizer{}
	s := newTestScheduler(q, &fakeSaver{}, sum, pub, windows, 200000)

	// An ingestion touch lands between snapshot and reset.
	racing := &touchOnSummarize{Summarizer: sum, windows: windows}
	s.summarizer = racing

	s.RunOnce(context.Background())

	snap, _ := windows.Snapshot("cam-1")
	w := snap[string(dao.EventIntrusion)]
	if w.MinTime != 130000 || w.MaxTime != 150000 {
		t.Fatalf("racing extension lost: %+v", w)
	}
}

// touchOnSummarize injects a concurrent window extension while the
// summarizer is running.
type touchOnSummarize struct {
	Summarizer
	windows window.Store
}

func (t *touchOnSummarize) Summarize(ctx context.Context, eventsContext string) (*dao.EventSummary, error) {
	t.windows.Touch("cam-1", string(dao.EventIntrusion), 150000)
	return t.Summarizer.Summarize(ctx, eventsContext)
}

func TestSchedulerSkipsEmptyRange(t *testing.T) {
	windows := window.NewMemoryStore()
	windows.Touch("cam-1", string(dao.EventIntrusion), 100000)
	windows.Touch("cam-1", string(dao.EventIntrusion), 130000)

	sum := &fakeSummarizer{}
	saver := &fakeSaver{}
	s := newTestScheduler(&fakeQuerier{}, saver, sum, &capturePublisher{}, windows, 200000)
	s.RunOnce(context.Background())

	if sum.calls != 0 || len(saver.saved) != 0 {
		t.Fatalf("summarized an empty range: calls=%d saved=%d", sum.calls, len(saver.saved))
	}
}
