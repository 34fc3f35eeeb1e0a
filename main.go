package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strconv"
	"syscall"
	"time"

	"github.com/bugsnag/panicwrap"
	"github.com/davecgh/go-spew/spew"
	jsoniter "github.com/json-iterator/go"

	"github.com/seventv/AtlasProcessor/src/configure"
	"github.com/seventv/AtlasProcessor/src/global"
	"github.com/seventv/AtlasProcessor/src/job"
	"github.com/seventv/AtlasProcessor/src/workspace"
	"github.com/sirupsen/logrus"
)

var (
	Version = "development"
	Unix    = ""
	Time    = "unknown"
	User    = "unknown"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const usage = `usage: atlasprocessor [flags] <command> [files...]

commands:
  to-atlas         compose images into an atlas PNG
  to-sequence      split an atlas into a directory of PNGs
  to-gif           encode images as an animated GIF
  atlas-to-gif     split an atlas and encode the cells as a GIF
  gif-to-sequence  extract GIF frames into a directory of PNGs
  gif-to-atlas     compose GIF frames into an atlas PNG
  preview          render a numbered layout sheet
  overlay          draw the grid over an atlas
  to-avi           encode images as a Motion-JPEG AVI

or pass --job <file.json> to run a batch of steps.`

func init() {
	debug.SetGCPercent(400)
	if i, err := strconv.Atoi(Unix); err == nil {
		Time = time.Unix(int64(i), 0).Format(time.RFC3339)
	}
}

func main() {
	config := configure.New()

	exitStatus, err := panicwrap.BasicWrap(func(s string) {
		logrus.Error(s)
	})
	if err != nil {
		logrus.Error("failed to setup panic handler: ", err)
		os.Exit(2)
	}

	if exitStatus >= 0 {
		os.Exit(exitStatus)
	}

	if !config.NoHeader {
		logrus.Info("Atlas Processor")
		logrus.Infof("Version: %s", Version)
		logrus.Infof("build.Time: %s", Time)
		logrus.Infof("build.User: %s", User)
	}

	logrus.Debug("MaxProcs: ", runtime.GOMAXPROCS(0))
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.Debug(spew.Sdump(config))
	}

	j, err := loadJob(config)
	if err != nil {
		fmt.Fprintln(os.Stderr, usage)
		logrus.WithError(err).Error("nothing to run")
		os.Exit(1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	c, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctx := global.New(c, config)
	ws := workspace.New(ctx)
	ws.Subscribe(func(n workspace.Notification) {
		logrus.WithField("action", n.Action).Log(n.Level, n.Message)
	})

	applyJob(ctx, ws, j)

	failed := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, step := range j.Steps {
			if ctx.Err() != nil {
				return
			}

			res := ws.Run(step)
			res.JobID = j.ID
			if !res.Success {
				failed++
			}

			out, err := json.Marshal(res)
			if err != nil {
				logrus.WithError(err).Warn("failed to encode result")
				continue
			}
			fmt.Println(string(out))
		}
	}()

	select {
	case <-done:
	case <-sig:
		cancel()
		// started conversions cannot be interrupted, let them finish
		logrus.Info("shutting down")
		go func() {
			select {
			case <-time.After(time.Minute):
			case <-sig:
			}
			logrus.Fatal("force shutdown")
		}()
		// no step may trigger a task once Wait has started
		<-done
		ctx.Wait()
		os.Exit(130)
	}

	ctx.Wait()

	if failed > 0 {
		logrus.Warnf("%d of %d steps failed", failed, len(j.Steps))
		os.Exit(1)
	}
	logrus.Info("done")
}

// loadJob reads --job when set, otherwise builds a single step job from the
// positional arguments.
func loadJob(config *configure.Config) (job.Job, error) {
	if config.Job != "" {
		return job.Load(config.Job)
	}

	if len(config.Args) == 0 {
		return job.Job{}, job.ErrNoSteps
	}

	step := job.Step{
		Action: job.Action(config.Args[0]),
		Inputs: config.Args[1:],
	}
	if !step.Action.Valid() {
		return job.Job{}, fmt.Errorf("%w: %q", job.ErrUnknownAction, step.Action)
	}

	return job.Job{Steps: []job.Step{step}}, nil
}

// applyJob lets a job file override the grid, frame rate and output
// directory. Rejected values keep the configured ones.
func applyJob(ctx global.Context, ws *workspace.Workspace, j job.Job) {
	s := ctx.Settings()
	l := logrus.WithField("job", j.ID)

	if j.Rows != 0 {
		if err := s.SetRowsText(strconv.Itoa(j.Rows)); err != nil {
			l.WithError(err).Warn("ignoring rows")
		}
	}
	if j.Columns != 0 {
		if err := s.SetColumnsText(strconv.Itoa(j.Columns)); err != nil {
			l.WithError(err).Warn("ignoring columns")
		}
	}
	if j.FrameRate != 0 {
		if err := s.SetFrameRateText(strconv.Itoa(j.FrameRate)); err != nil {
			l.WithError(err).Warn("ignoring frame rate")
		}
	}
	if j.OutputDir != "" {
		_ = ws.Sequence.SetOutputDir(j.OutputDir)
		_ = ws.Atlas.SetOutputDir(j.OutputDir)
		_ = ws.Gif.SetOutputDir(j.OutputDir)
	}
}
