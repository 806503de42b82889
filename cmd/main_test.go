package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	app "github.com/okian/heist/internal/app"
	"github.com/okian/heist/internal/config"
	"github.com/okian/heist/internal/domain/level"
	"github.com/okian/heist/pkg/logger"
	"github.com/okian/heist/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
	"github.com/spf13/cobra"
)

func TestMain(m *testing.M) {
	if err := logger.InitWithWriter(io.Discard, logger.FormatText); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func testCommand(ctx context.Context, in io.Reader) (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	cmd.SetOut(&out)
	if in != nil {
		cmd.SetIn(in)
	}
	return cmd, &out
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the heist command", t, func() {
		convey.Convey("When listing subcommands", func() {
			names := map[string]bool{}
			for _, c := range rootCmd.Commands() {
				names[c.Name()] = true
			}

			convey.Convey("Then serve, classify and simulate should be registered", func() {
				convey.So(names["serve"], convey.ShouldBeTrue)
				convey.So(names["classify"], convey.ShouldBeTrue)
				convey.So(names["simulate"], convey.ShouldBeTrue)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				manager := metrics.NewManager()
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestServeWiring(t *testing.T) {
	convey.Convey("Given configuration from the environment", t, func() {
		setEnv(t, map[string]string{
			"HEIST_ADDR":                ":9090",
			"HEIST_QUEUE_SIZE":          "16",
			"HEIST_WORKER_COUNT":        "3",
			"HEIST_SCOREBOARD_CAPACITY": "5",
			"HEIST_OBSTACLE_SEED":       "42",
			"HEIST_DETECT_TIMEOUT_MS":   "750",
		})

		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
		convey.So(cfg.QueueSize, convey.ShouldEqual, 16)
		convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
		convey.So(cfg.DetectTimeout(), convey.ShouldEqual, 750*time.Millisecond)

		convey.Convey("When building the service", func() {
			svc, err := newService(cfg)
			convey.So(err, convey.ShouldBeNil)

			stats := svc.GetStats()

			convey.Convey("Then the configured sizes should apply", func() {
				convey.So(stats["workerCount"], convey.ShouldEqual, 3)
				convey.So(stats["queueSize"], convey.ShouldEqual, 16)
				convey.So(stats["scoreboardCapacity"], convey.ShouldEqual, 5)
				convey.So(stats["levels"], convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When a configured level is invalid", func() {
			bad := *cfg
			bad.Levels = []level.Level{{Name: "broken", Length: 0}}

			convey.Convey("Then building the service should fail", func() {
				svc, err := newService(&bad)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(svc, convey.ShouldBeNil)
			})
		})

		convey.Convey("When custom levels are configured", func() {
			custom := *cfg
			custom.Levels = []level.Level{{Name: "sprint", ObstacleTypes: []string{"laser"}, Length: 4}}

			convey.Convey("Then the service should serve them", func() {
				svc, err := newService(&custom)
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc.GetStats()["levels"], convey.ShouldEqual, 1)
				convey.So(svc.Level(context.Background(), 0).Obstacles, convey.ShouldHaveLength, 4)
			})
		})

		convey.Convey("When serving requests through the full handler", func() {
			svc, err := newService(cfg)
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer func() { _ = svc.Stop(context.Background()) }()

			handler := newHandler(svc, cfg)

			get := func(path string) *httptest.ResponseRecorder {
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				return rec
			}

			convey.Convey("Then game, docs and health routes should answer", func() {
				for _, path := range []string{"/", "/tutorial", "/levels", "/level/0", "/highscores", "/healthz", "/stats", "/api-docs", "/openapi.yaml"} {
					convey.So(get(path).Code, convey.ShouldEqual, http.StatusOK)
				}
			})

			convey.Convey("Then every response should carry a request id", func() {
				convey.So(get("/levels").Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)
			})

			convey.Convey("Then CORS preflight should be answered", func() {
				req := httptest.NewRequest(http.MethodOptions, "/progress", http.NoBody)
				req.Header.Set("Origin", "http://localhost:3000")
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, req)

				convey.So(rec.Code, convey.ShouldEqual, http.StatusNoContent)
				convey.So(rec.Header().Get("Access-Control-Allow-Origin"), convey.ShouldEqual, "*")
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should return once the context ends", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics updater", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then it should return once the context ends", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startServiceMetricsUpdater(ctx, svc)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics update on a started service", func() {
			svc := app.New(app.WithWorkerCount(1))
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer func() { _ = svc.Stop(context.Background()) }()

			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateServiceMetrics(svc)
				}, convey.ShouldNotPanic)
			})
		})
	})
}
