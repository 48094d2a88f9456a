package regainer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"gonum.org/v1/gonum/floats"

	"github.com/kepstin/regainer/internal/integration/ffmpeg"
	"github.com/kepstin/regainer/internal/tags"
	"github.com/kepstin/regainer/internal/types"
)

// Scheduler is the process-wide job-slot pool. Every container read, every
// measurement, and every container write holds one slot for its duration,
// bounding the heavy work in flight no matter how many tracks and albums a
// batch contains. Waiting tasks are not bounded.
type Scheduler struct {
	sem *semaphore.Weighted
}

// NewScheduler returns a Scheduler with the given number of job slots.
// A non-positive count means one slot per CPU.
func NewScheduler(jobs int) *Scheduler {
	if jobs < 1 {
		jobs = runtime.NumCPU()
	}

	return &Scheduler{sem: semaphore.NewWeighted(int64(jobs))}
}

// withSlot runs op while holding one job slot. The slot is released on
// completion or failure.
func (s *Scheduler) withSlot(ctx context.Context, op func() error) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire job slot: %w", err)
	}
	defer s.sem.Release(1)

	return op()
}

// Reporter serializes per-entity reports so concurrent scans never
// interleave their lines.
type Reporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewReporter returns a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) emit(report string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprint(r.w, report)
}

// tagReconciler is the per-file tag reconciliation seam (satisfied by
// tags.Tagger).
type tagReconciler interface {
	Read() (types.GainInfo, error)
	Write(types.GainInfo) error
	NeedTrackUpdate() bool
	NeedAlbumUpdate() bool
	Close() error
}

// loudnessScanner is the external measurement seam (satisfied by the ffmpeg
// integration).
type loudnessScanner interface {
	MeasureTrack(ctx context.Context, filename string) (types.GainInfo, error)
	MeasureAlbum(ctx context.Context, filenames []string) (types.GainInfo, error)
}

type ffmpegScanner struct{}

func (ffmpegScanner) MeasureTrack(ctx context.Context, filename string) (types.GainInfo, error) {
	return ffmpeg.MeasureTrack(ctx, filename)
}

func (ffmpegScanner) MeasureAlbum(ctx context.Context, filenames []string) (types.GainInfo, error) {
	return ffmpeg.MeasureAlbum(ctx, filenames)
}

// Track is a single file scanned on its own.
type Track struct {
	Filename string
	Gain     GainInfo

	sched   *Scheduler
	out     *Reporter
	tagger  tagReconciler
	scanner loudnessScanner
}

// NewTrack returns a Track bound to its own tag reconciler and scanner.
func NewTrack(filename string, cfg TagConfig, sched *Scheduler, out *Reporter) *Track {
	return &Track{
		Filename: filename,
		sched:    sched,
		out:      out,
		tagger:   tags.New(filename, cfg),
		scanner:  ffmpegScanner{},
	}
}

func (t *Track) readTags(ctx context.Context) error {
	return t.sched.withSlot(ctx, func() error {
		gain, err := t.tagger.Read()
		if err != nil {
			return err
		}

		t.Gain = gain

		return nil
	})
}

func (t *Track) scanGain(ctx context.Context) error {
	return t.sched.withSlot(ctx, func() error {
		gain, err := t.scanner.MeasureTrack(ctx, t.Filename)
		if err != nil {
			return err
		}

		t.Gain = gain
		slog.Debug("calculated gain", "file", t.Filename, "gain", t.Gain.String())

		return nil
	})
}

func (t *Track) writeTags(ctx context.Context) error {
	return t.sched.withSlot(ctx, func() error {
		return t.tagger.Write(t.Gain)
	})
}

// Scan runs the full read / measure-if-needed / write-if-needed sequence for
// one standalone track and reports the result. Any step failing aborts the
// scan.
func (t *Track) Scan(ctx context.Context, opts ScanOptions) error {
	defer t.tagger.Close()

	if err := t.readTags(ctx); err != nil {
		return err
	}

	needScan := t.Gain.Loudness == nil || t.Gain.Peak == nil || opts.Force
	needSave := t.tagger.NeedTrackUpdate()

	if needScan {
		if err := t.scanGain(ctx); err != nil {
			return err
		}

		needSave = true
	}

	if needSave && !opts.DryRun {
		if err := t.writeTags(ctx); err != nil {
			return err
		}
	}

	var sb strings.Builder

	sb.WriteString("\n")
	writeTrackReport(&sb, t)
	writeStatus(&sb, needScan, needSave, opts.DryRun)
	t.out.emit(sb.String())

	return nil
}

// AlbumTrack is a Track inside an album. Excluded tracks still receive the
// album's aggregate tags but contribute no audio to the aggregate
// measurement.
type AlbumTrack struct {
	Track

	Excluded bool
}

// NewAlbumTrack returns an album member track.
func NewAlbumTrack(filename string, excluded bool, cfg TagConfig, sched *Scheduler, out *Reporter) *AlbumTrack {
	return &AlbumTrack{
		Track:    *NewTrack(filename, cfg, sched, out),
		Excluded: excluded,
	}
}

// Album is an ordered set of tracks sharing one aggregate measurement.
type Album struct {
	Tracks []*AlbumTrack
	Gain   GainInfo

	sched   *Scheduler
	out     *Reporter
	scanner loudnessScanner
}

// NewAlbum builds an Album from included and excluded member filenames.
func NewAlbum(included, excluded []string, cfg TagConfig, sched *Scheduler, out *Reporter) *Album {
	album := &Album{
		sched:   sched,
		out:     out,
		scanner: ffmpegScanner{},
	}

	for _, filename := range included {
		album.Tracks = append(album.Tracks, NewAlbumTrack(filename, false, cfg, sched, out))
	}

	for _, filename := range excluded {
		album.Tracks = append(album.Tracks, NewAlbumTrack(filename, true, cfg, sched, out))
	}

	return album
}

func (a *Album) readTags(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	for _, track := range a.Tracks {
		group.Go(func() error {
			return track.readTags(ctx)
		})
	}

	return group.Wait()
}

func (a *Album) scanAlbumGain(ctx context.Context) error {
	var included []string

	for _, track := range a.Tracks {
		if !track.Excluded {
			included = append(included, track.Filename)
		}
	}

	return a.sched.withSlot(ctx, func() error {
		gain, err := a.scanner.MeasureAlbum(ctx, included)
		if err != nil {
			return err
		}

		a.Gain = gain

		return nil
	})
}

// scanGain measures the album aggregate and every member track concurrently,
// then fans the aggregate out to the members. The aggregate peak is the
// maximum of the included members' own peaks; the concatenation's peak
// output is discarded.
func (a *Album) scanGain(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return a.scanAlbumGain(ctx)
	})

	for _, track := range a.Tracks {
		group.Go(func() error {
			return track.scanGain(ctx)
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	var peaks []float64

	for _, track := range a.Tracks {
		if !track.Excluded && track.Gain.Peak != nil {
			peaks = append(peaks, *track.Gain.Peak)
		}
	}

	if len(peaks) > 0 {
		a.Gain.AlbumPeak = types.Float(floats.Max(peaks))
	}

	slog.Debug("calculated album gain", "gain", a.Gain.String())

	for _, track := range a.Tracks {
		track.Gain.AlbumLoudness = cloneField(a.Gain.AlbumLoudness)
		track.Gain.AlbumPeak = cloneField(a.Gain.AlbumPeak)
	}

	return nil
}

func (a *Album) writeTags(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	for _, track := range a.Tracks {
		group.Go(func() error {
			return track.writeTags(ctx)
		})
	}

	return group.Wait()
}

// Scan runs the album scan protocol: read all members, remeasure when any
// member or the aggregate is missing or inconsistent, fan out the aggregate,
// write all members, report.
func (a *Album) Scan(ctx context.Context, opts ScanOptions) error {
	defer func() {
		for _, track := range a.Tracks {
			track.tagger.Close()
		}
	}()

	if err := a.readTags(ctx); err != nil {
		return err
	}

	needScan := opts.Force

	// The first member's album tags seed the aggregate; any member whose
	// tags differ (absent counts as differing) forces a remeasurement.
	for i, track := range a.Tracks {
		if track.Gain.Loudness == nil || track.Gain.Peak == nil {
			needScan = true
		}

		if i == 0 {
			a.Gain.AlbumLoudness = cloneField(track.Gain.AlbumLoudness)
			a.Gain.AlbumPeak = cloneField(track.Gain.AlbumPeak)

			continue
		}

		if !types.FieldEqual(a.Gain.AlbumLoudness, track.Gain.AlbumLoudness) ||
			!types.FieldEqual(a.Gain.AlbumPeak, track.Gain.AlbumPeak) {
			needScan = true
		}
	}

	if a.Gain.AlbumLoudness == nil || a.Gain.AlbumPeak == nil {
		needScan = true
	}

	needSave := false

	for _, track := range a.Tracks {
		if track.tagger.NeedAlbumUpdate() {
			needSave = true
		}
	}

	if needScan {
		if err := a.scanGain(ctx); err != nil {
			return err
		}

		needSave = true
	}

	if needSave && !opts.DryRun {
		if err := a.writeTags(ctx); err != nil {
			return err
		}
	}

	var sb strings.Builder

	sb.WriteString("\n")

	for _, track := range a.Tracks {
		writeTrackReport(&sb, &track.Track)
	}

	writeStatus(&sb, needScan, needSave, opts.DryRun)
	a.out.emit(sb.String())

	return nil
}

// Batch is one run's worth of standalone tracks and albums, all scanned
// concurrently under a shared Scheduler.
type Batch struct {
	Tracks []*Track
	Albums []*Album
}

// Scan launches every track and album scan concurrently and waits for all
// of them. The first failure fails the batch; work already in flight runs
// to completion.
func (b *Batch) Scan(ctx context.Context, opts ScanOptions) error {
	group, ctx := errgroup.WithContext(ctx)

	for _, album := range b.Albums {
		group.Go(func() error {
			return album.Scan(ctx, opts)
		})
	}

	for _, track := range b.Tracks {
		group.Go(func() error {
			return track.Scan(ctx, opts)
		})
	}

	return group.Wait()
}

func writeTrackReport(sb *strings.Builder, t *Track) {
	fmt.Fprintln(sb, t.Filename)
	fmt.Fprintln(sb, t.Gain.String())
}

func writeStatus(sb *strings.Builder, rescanned, updated, dryRun bool) {
	if rescanned {
		fmt.Fprintln(sb, "Rescanned loudness")
	}

	if updated {
		if dryRun {
			fmt.Fprintln(sb, "Needs tag update")
		} else {
			fmt.Fprintln(sb, "Updated tags")
		}
	}
}

func cloneField(v *float64) *float64 {
	if v == nil {
		return nil
	}

	return types.Float(*v)
}
