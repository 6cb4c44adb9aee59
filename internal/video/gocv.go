package video

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"gocv.io/x/gocv"

	"senseact/internal/dao"
	"senseact/internal/vision"
)

const presignExpiry = 15 * time.Minute

// NewObjectStoreOpener returns an OpenFunc that presigns a GET URL for the
// referenced object and hands it to the OpenCV capture backend, so segments
// stream straight out of object storage without a local download.
func NewObjectStoreOpener(cli *minio.Client, defaultBucket string) OpenFunc {
	return func(ctx context.Context, ref *dao.VideoReference) (Decoder, error) {
		bucket := ref.Bucket
		if bucket == "" {
			bucket = defaultBucket
		}
		u, err := cli.PresignedGetObject(ctx, bucket, ref.ObjectName, presignExpiry, url.Values{})
		if err != nil {
			return nil, fmt.Errorf("presign %s/%s: %w", bucket, ref.ObjectName, err)
		}
		return OpenCapture(u.String())
	}
}

// OpenCapture opens a video source (file path or URL) with OpenCV.
func OpenCapture(source string) (Decoder, error) {
	capture, err := gocv.OpenVideoCapture(source)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", source, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("could not open video %s", source)
	}

	fps := capture.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		fps = 30.0
	}
	frames := int(capture.Get(gocv.VideoCaptureFrameCount))

	return &captureDecoder{capture: capture, fps: fps, frames: frames}, nil
}

type captureDecoder struct {
	capture *gocv.VideoCapture
	fps     float64
	frames  int
}

func (d *captureDecoder) FPS() float64 {
	return d.fps
}

func (d *captureDecoder) FrameCount() int {
	return d.frames
}

func (d *captureDecoder) Read() (Frame, error) {
	mat := gocv.NewMat()
	if ok := d.capture.Read(&mat); !ok {
		mat.Close()
		return nil, io.EOF
	}
	if mat.Empty() {
		mat.Close()
		return nil, io.EOF
	}
	return &matFrame{mat: mat}, nil
}

func (d *captureDecoder) Close() error {
	return d.capture.Close()
}

type matFrame struct {
	mat gocv.Mat
}

func (f *matFrame) Gray() vision.Grid {
	if f.mat.Channels() == 1 {
		return vision.NewGrid(f.mat.ToBytes(), f.mat.Cols(), f.mat.Rows())
	}
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(f.mat, &gray, gocv.ColorBGRToGray)
	return vision.NewGrid(gray.ToBytes(), gray.Cols(), gray.Rows())
}

func (f *matFrame) EncodeJPEG(scale float64) ([]byte, error) {
	src := f.mat
	if scale > 0 && scale != 1 {
		scaled := gocv.NewMat()
		defer scaled.Close()
		gocv.Resize(f.mat, &scaled, image.Point{}, scale, scale, gocv.InterpolationLinear)
		src = scaled
	}
	buf, err := gocv.IMEncode(".jpg", src)
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

func (f *matFrame) Close() {
	f.mat.Close()
}
