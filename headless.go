package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"voxhook/recorder"
)

type headlessOptions struct {
	File     string
	Duration time.Duration
}

// runHeadless captures one payload, uploads it and prints the transcript to
// out. Status lines go to errOut. Any failure exits 1.
func runHeadless(ctx context.Context, rec *recorder.Recorder, opts headlessOptions, out, errOut io.Writer) int {
	var last string
	rec.OnChange(func(s recorder.Snapshot) {
		if s.Status.Text != "" && s.Status.Text != last {
			last = s.Status.Text
			fmt.Fprintln(errOut, s.Status.Text)
		}
	})

	if opts.File != "" {
		if err := rec.SelectFile(opts.File); err != nil {
			return 1
		}
	} else {
		if err := rec.Start(); err != nil {
			return 1
		}
		select {
		case <-time.After(opts.Duration):
		case <-ctx.Done():
		}
		if err := rec.Stop(); err != nil {
			return 1
		}
	}

	if err := rec.Upload(ctx); err != nil {
		return 1
	}
	fmt.Fprintln(out, rec.Snapshot().Transcript)
	return 0
}
