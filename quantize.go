package pixelart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/deepteams/pixelart/internal/dither"
	"github.com/deepteams/pixelart/internal/pool"
	"github.com/deepteams/pixelart/internal/worker"
)

// Strip is a quantized range of scanlines [YStart,YEnd) of a frame.
type Strip struct {
	YStart, YEnd int
	Pix          []uint8
}

// Quantizer maps buffers onto palettes using a fixed pool of workers. It is
// safe for concurrent use. Close releases the workers.
type Quantizer struct {
	log  *slog.Logger
	pool *worker.Pool
}

// NewQuantizer starts a quantizer with the given number of workers, clamped
// to [1,4]. workers <= 0 selects one per available CPU up to the same bound.
// A nil logger discards.
func NewQuantizer(workers int, logger *slog.Logger) *Quantizer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if workers <= 0 {
		workers = worker.DefaultSize()
	}
	return &Quantizer{
		log:  logger,
		pool: worker.New(workers, logger),
	}
}

// Workers returns the size of the worker pool.
func (q *Quantizer) Workers() int {
	return q.pool.Size()
}

// Close stops the workers. Requests still queued fail with an error wrapping
// worker.ErrPoolClosed; requests already running complete.
func (q *Quantizer) Close() {
	q.pool.Close()
}

func (q *Quantizer) prepare(buf *PixelBuffer, opts *QuantizeOptions) (*QuantizeOptions, error) {
	if opts == nil {
		opts = DefaultQuantizeOptions()
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if len(opts.Palette) == 0 {
		return nil, fmt.Errorf("%w: empty palette", ErrInvalidInput)
	}
	return opts, nil
}

// Quantize maps every pixel of buf onto opts.Palette. Strip-safe algorithms
// are split into one strip per worker; error diffusion runs as a single job.
// A nil opts selects DefaultQuantizeOptions. ctx bounds the wait only: once
// submitted, jobs run to completion.
func (q *Quantizer) Quantize(ctx context.Context, buf *PixelBuffer, opts *QuantizeOptions) (*PixelBuffer, error) {
	opts, err := q.prepare(buf, opts)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	n := 1
	if opts.Algorithm.StripSafe() {
		n = min(q.pool.Size(), buf.Height)
	}
	futs := make([]*worker.Future, n)
	for i := range futs {
		y0, y1 := i*buf.Height/n, (i+1)*buf.Height/n
		futs[i] = q.pool.Submit(opts.job(buf, y0, y1))
	}

	if n == 1 {
		res, err := futs[0].Wait(ctx)
		if err != nil {
			return nil, jobError(err)
		}
		q.log.Debug("quantized", "algorithm", opts.Algorithm, "size", fmt.Sprintf("%dx%d", buf.Width, buf.Height),
			"strips", 1, "elapsed", time.Since(start))
		return &PixelBuffer{Width: buf.Width, Height: buf.Height, Pix: res.Pix}, nil
	}

	out := NewPixelBuffer(buf.Width, buf.Height)
	var firstErr error
	for _, f := range futs {
		res, err := f.Wait(ctx)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		copy(out.rows(res.YStart, res.YEnd), res.Pix)
		pool.Put(res.Pix)
	}
	if firstErr != nil {
		return nil, jobError(firstErr)
	}
	q.log.Debug("quantized", "algorithm", opts.Algorithm, "size", fmt.Sprintf("%dx%d", buf.Width, buf.Height),
		"strips", n, "elapsed", time.Since(start))
	return out, nil
}

// QuantizeRange quantizes only the scanlines [y0,y1) of buf. The ordered and
// direct algorithms give the same rows they would inside a full-frame
// Quantize; error diffusion requires the range to cover the whole frame.
func (q *Quantizer) QuantizeRange(ctx context.Context, buf *PixelBuffer, opts *QuantizeOptions, y0, y1 int) (*Strip, error) {
	opts, err := q.prepare(buf, opts)
	if err != nil {
		return nil, err
	}
	if y0 < 0 || y1 > buf.Height || y0 >= y1 {
		return nil, fmt.Errorf("%w: row range [%d,%d) outside frame of %d rows", ErrInvalidInput, y0, y1, buf.Height)
	}
	res, err := q.pool.Submit(opts.job(buf, y0, y1)).Wait(ctx)
	if err != nil {
		return nil, jobError(err)
	}
	return &Strip{YStart: res.YStart, YEnd: res.YEnd, Pix: res.Pix}, nil
}

// jobError tags rejected jobs as invalid input and passes everything else
// through.
func jobError(err error) error {
	if errors.Is(err, dither.ErrInvalidJob) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return fmt.Errorf("pixelart: quantize: %w", err)
}

// Quantize runs a single request on a temporary Quantizer sized to the
// machine.
func Quantize(ctx context.Context, buf *PixelBuffer, opts *QuantizeOptions) (*PixelBuffer, error) {
	var logger *slog.Logger
	if opts != nil {
		logger = opts.Logger
	}
	q := NewQuantizer(0, logger)
	defer q.Close()
	return q.Quantize(ctx, buf, opts)
}
