package detector

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/okian/heist/internal/domain/landmark"
	"github.com/okian/heist/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const helperEnv = "HEIST_FACEMESH_HELPER"

func TestMain(m *testing.M) {
	if err := logger.InitWithWriter(io.Discard, logger.FormatText); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// helperCommand re-executes the test binary as a fake face-mesh helper.
func helperCommand(t *testing.T, mode string) []string {
	t.Helper()
	t.Setenv(helperEnv, mode)
	return []string{os.Args[0], "-test.run=TestHelperProcess", "--"}
}

// TestHelperProcess is not a real test. It speaks the helper protocol when
// started by helperCommand: images equal to "face" yield one neutral face,
// anything else yields no face. In "stubborn" mode it keeps running after
// stdin reaches EOF.
func TestHelperProcess(t *testing.T) {
	mode := os.Getenv(helperEnv)
	if mode == "" {
		return
	}
	defer os.Exit(0)

	in := bufio.NewReader(os.Stdin)
	out := json.NewEncoder(os.Stdout)
	for {
		var n uint32
		if err := binary.Read(in, binary.BigEndian, &n); err != nil {
			if mode == "stubborn" {
				time.Sleep(time.Minute)
			}
			return
		}
		img := make([]byte, n)
		if _, err := io.ReadFull(in, img); err != nil {
			return
		}
		switch {
		case mode == "hang":
			time.Sleep(time.Minute)
		case mode == "garbage":
			fmt.Println("not json")
		case mode == "error":
			fmt.Println(`{"faces":[],"error":"model failed"}`)
		case string(img) == "face":
			_ = out.Encode(response{Faces: []jsonFace{{Landmarks: landmark.NeutralFace()}}})
		default:
			fmt.Println(`{"faces":[]}`)
		}
	}
}

func TestFaceMeshSource(t *testing.T) {
	ctx := context.Background()

	Convey("Given a face mesh helper that answers every frame", t, func() {
		src, err := NewFaceMeshSource(helperCommand(t, "ok"), WithStderr(io.Discard))
		So(err, ShouldBeNil)
		defer src.Close()

		So(src.Running(), ShouldBeFalse)

		Convey("When detecting a face and then an empty frame", func() {
			set, err := src.Detect(ctx, []byte("face"))
			So(err, ShouldBeNil)
			So(set, ShouldHaveLength, landmark.FaceMeshSize)
			So(set[landmark.NoseTip], ShouldResemble, landmark.NeutralFace()[landmark.NoseTip])
			So(src.Running(), ShouldBeTrue)

			set, err = src.Detect(ctx, []byte("empty room"))

			Convey("Then the process should be reused and report no face", func() {
				So(err, ShouldBeNil)
				So(set, ShouldBeNil)
				So(src.Running(), ShouldBeTrue)
			})
		})

		Convey("When the image is empty", func() {
			_, err := src.Detect(ctx, nil)

			Convey("Then it should be rejected without starting the helper", func() {
				So(errors.Is(err, ErrEmptyImage), ShouldBeTrue)
				So(src.Running(), ShouldBeFalse)
			})
		})

		Convey("When the source is closed", func() {
			So(src.Close(), ShouldBeNil)
			_, err := src.Detect(ctx, []byte("face"))

			Convey("Then it should refuse work", func() {
				So(errors.Is(err, ErrClosed), ShouldBeTrue)
			})
		})
	})

	Convey("Given a helper that writes malformed output", t, func() {
		src, err := NewFaceMeshSource(helperCommand(t, "garbage"), WithStderr(io.Discard))
		So(err, ShouldBeNil)
		defer src.Close()

		_, err = src.Detect(ctx, []byte("face"))
		So(errors.Is(err, ErrBadResponse), ShouldBeTrue)
	})

	Convey("Given a helper that reports a model error", t, func() {
		src, err := NewFaceMeshSource(helperCommand(t, "error"), WithStderr(io.Discard))
		So(err, ShouldBeNil)
		defer src.Close()

		_, err = src.Detect(ctx, []byte("face"))
		So(errors.Is(err, ErrBadResponse), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "model failed")
	})

	Convey("Given a helper that never answers", t, func() {
		src, err := NewFaceMeshSource(helperCommand(t, "hang"), WithStderr(io.Discard))
		So(err, ShouldBeNil)
		defer src.Close()

		Convey("When the detection context times out", func() {
			tctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
			defer cancel()
			start := time.Now()
			_, err := src.Detect(tctx, []byte("face"))

			Convey("Then the helper should be killed", func() {
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
				So(time.Since(start), ShouldBeLessThan, 10*time.Second)
				So(src.Running(), ShouldBeFalse)
			})
		})
	})

	Convey("Given a helper that keeps running after stdin closes", t, func() {
		src, err := NewFaceMeshSource(helperCommand(t, "stubborn"),
			WithStderr(io.Discard),
			WithStopGrace(100*time.Millisecond),
		)
		So(err, ShouldBeNil)

		set, err := src.Detect(ctx, []byte("empty room"))
		So(err, ShouldBeNil)
		So(set, ShouldBeNil)

		Convey("When the source is closed", func() {
			closed := make(chan error, 1)
			go func() { closed <- src.Close() }()

			Convey("Then Close should kill the helper after the grace period", func() {
				select {
				case err := <-closed:
					So(err, ShouldBeNil)
				case <-time.After(10 * time.Second):
					So("Close still blocked", ShouldBeEmpty)
				}
				So(src.Running(), ShouldBeFalse)
			})
		})

		Convey("When the idle timer stops it", func() {
			idle, err := NewFaceMeshSource(helperCommand(t, "stubborn"),
				WithStderr(io.Discard),
				WithStopGrace(100*time.Millisecond),
				WithIdleTimeout(50*time.Millisecond),
			)
			So(err, ShouldBeNil)
			defer idle.Close()
			defer src.Close()

			_, err = idle.Detect(ctx, []byte("face"))
			So(err, ShouldBeNil)

			Convey("Then a later Detect should not stay blocked behind it", func() {
				So(waitFor(5*time.Second, func() bool { return !idle.Running() }), ShouldBeTrue)

				start := time.Now()
				set, err := idle.Detect(ctx, []byte("face"))
				So(err, ShouldBeNil)
				So(set, ShouldNotBeNil)
				So(time.Since(start), ShouldBeLessThan, 5*time.Second)
			})
		})
	})

	Convey("Given a short idle timeout", t, func() {
		src, err := NewFaceMeshSource(helperCommand(t, "ok"), WithIdleTimeout(50*time.Millisecond), WithStderr(io.Discard))
		So(err, ShouldBeNil)
		defer src.Close()

		_, err = src.Detect(ctx, []byte("face"))
		So(err, ShouldBeNil)

		Convey("Then the process should stop and restart on demand", func() {
			So(waitFor(5*time.Second, func() bool { return !src.Running() }), ShouldBeTrue)

			set, err := src.Detect(ctx, []byte("face"))
			So(err, ShouldBeNil)
			So(set, ShouldNotBeNil)
		})
	})

	Convey("Given no command", t, func() {
		_, err := NewFaceMeshSource(nil)
		So(errors.Is(err, ErrNoCommand), ShouldBeTrue)
	})

	Convey("Given a command that cannot start", t, func() {
		src, err := NewFaceMeshSource([]string{"/nonexistent/heist-facemesh"})
		So(err, ShouldBeNil)
		defer src.Close()

		_, err = src.Detect(ctx, []byte("face"))
		So(err, ShouldNotBeNil)
		So(src.Running(), ShouldBeFalse)
	})
}

func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestStaticSource(t *testing.T) {
	ctx := context.Background()

	Convey("Given a static source with a face", t, func() {
		src := NewStaticSource(landmark.NeutralFace())

		Convey("When the caller mutates a returned set", func() {
			set, err := src.Detect(ctx, []byte{1})
			So(err, ShouldBeNil)
			set[0].X = 99

			again, err := src.Detect(ctx, []byte{1})

			Convey("Then later results should be unaffected", func() {
				So(err, ShouldBeNil)
				So(again[0].X, ShouldNotEqual, 99.0)
				So(src.Close(), ShouldBeNil)
			})
		})
	})

	Convey("Given a static source without a face", t, func() {
		src := NewStaticSource(nil)

		set, err := src.Detect(ctx, []byte{1})
		So(err, ShouldBeNil)
		So(set, ShouldBeNil)

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := src.Detect(cctx, []byte{1})

			Convey("Then the cancellation should be returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})

	Convey("Given a failing source", t, func() {
		boom := errors.New("boom")
		_, err := NewFailingSource(boom).Detect(ctx, []byte{1})
		So(errors.Is(err, boom), ShouldBeTrue)
	})
}

func TestDecodeSet(t *testing.T) {
	Convey("Given helper response documents", t, func() {
		Convey("When several faces are present", func() {
			doc := `{"faces":[{"landmarks":[{"x":0.1,"y":0.2,"z":0.3}]},{"landmarks":[{"x":9,"y":9,"z":9}]}]}`
			set, err := DecodeSet(strings.NewReader(doc))

			Convey("Then the first face should win", func() {
				So(err, ShouldBeNil)
				So(set, ShouldResemble, landmark.Set{{X: 0.1, Y: 0.2, Z: 0.3}})
			})
		})

		Convey("When no faces are present", func() {
			set, err := DecodeSet(strings.NewReader(`{"faces":[]}`))
			So(err, ShouldBeNil)
			So(set, ShouldBeNil)
		})

		Convey("When the document is not JSON", func() {
			_, err := DecodeSet(bytes.NewBufferString("{"))
			So(errors.Is(err, ErrBadResponse), ShouldBeTrue)
		})
	})
}

func TestNewFactory(t *testing.T) {
	Convey("Given the source factory", t, func() {
		Convey("When no command is configured", func() {
			src, err := NewFactory(nil)()
			So(err, ShouldBeNil)

			Convey("Then it should fall back to a no-face source", func() {
				_, ok := src.(*StaticSource)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When a command is configured", func() {
			src, err := NewFactory([]string{"helper"}, WithIdleTimeout(time.Second), WithStopGrace(time.Second))()
			So(err, ShouldBeNil)

			Convey("Then it should build a face mesh source", func() {
				_, ok := src.(*FaceMeshSource)
				So(ok, ShouldBeTrue)
				So(src.Close(), ShouldBeNil)
			})
		})
	})
}
