// Package player is an interactive terminal view of a scripted history.
//
// The screen lists every entry with the cursor marked. Keys undo, redo and
// clear; history events received from the bus update a notice line.
package player

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/dshills/rewind/internal/event"
	"github.com/dshills/rewind/internal/history"
	"github.com/dshills/rewind/internal/report"
	"github.com/dshills/rewind/internal/script"
)

const helpLine = "u undo  r redo  c clear  t time  q quit"

// quitSignal is posted as interrupt data when the run context ends.
type quitSignal struct{}

// Player owns the screen while running. The screen must already be
// initialised; the caller finalises it.
type Player struct {
	screen tcell.Screen
	runner *script.Runner
	hist   *history.History
	log    zerolog.Logger
	keys   Keymap

	status string
	notice string
	opts   report.Options
}

// Option configures a Player.
type Option func(*Player)

// WithKeymap replaces the default key bindings.
func WithKeymap(k Keymap) Option {
	return func(p *Player) {
		p.keys = k
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Player) {
		p.log = log
	}
}

// New creates a player. Undo and redo go through runner so that Lua effects
// run on the player goroutine.
func New(screen tcell.Screen, runner *script.Runner, h *history.History, opts ...Option) *Player {
	p := &Player{
		screen: screen,
		runner: runner,
		hist:   h,
		log:    zerolog.Nop(),
		keys:   DefaultKeymap(),
		status: "ready",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Notify is an event.HandlerFunc that forwards history events to the UI
// goroutine. It may be called from any goroutine.
func (p *Player) Notify(_ context.Context, ev any) error {
	return p.screen.PostEvent(tcell.NewEventInterrupt(ev))
}

// Run draws the history and handles input until a quit key is pressed or ctx
// is cancelled.
func (p *Player) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = p.screen.PostEvent(tcell.NewEventInterrupt(quitSignal{}))
	})
	defer stop()

	p.draw()
	for {
		ev := p.screen.PollEvent()
		if ev == nil {
			return nil
		}

		switch e := ev.(type) {
		case *tcell.EventKey:
			cmd := p.keys.Lookup(e)
			if cmd == CommandQuit {
				return nil
			}
			p.execute(ctx, cmd)

		case *tcell.EventResize:
			p.screen.Sync()

		case *tcell.EventInterrupt:
			if _, ok := e.Data().(quitSignal); ok {
				return nil
			}
			p.notice = describe(e.Data())
		}
		p.draw()
	}
}

// execute runs cmd and records the outcome in the status line.
func (p *Player) execute(ctx context.Context, cmd Command) {
	var (
		res history.Result
		err error
	)
	switch cmd {
	case CommandUndo:
		res, err = p.runner.Undo(ctx)
	case CommandRedo:
		res, err = p.runner.Redo(ctx)
	case CommandClear:
		p.hist.Clear()
		p.status = "cleared"
		return
	case CommandToggleTime:
		p.opts.Timestamps = !p.opts.Timestamps
		return
	default:
		return
	}

	if err != nil {
		p.log.Warn().Err(err).Str("command", cmd.String()).Msg("command failed")
		p.status = fmt.Sprintf("%s failed: %v", cmd, err)
		return
	}
	p.status = fmt.Sprintf("%s: %s", cmd, res)
}

// describe turns a history event into a one-line notice.
func describe(ev any) string {
	change, ok := event.PayloadOf[history.Change](ev)
	if !ok {
		return fmt.Sprintf("%v", ev)
	}
	topic := ""
	if tp, ok := ev.(event.TopicProvider); ok {
		topic = tp.EventTopic().String()
	}

	switch topic {
	case history.TopicEvicted.String():
		return fmt.Sprintf("%s: %d oldest dropped", topic, change.Removed)
	case history.TopicCleared.String():
		return fmt.Sprintf("%s: %d removed", topic, change.Removed)
	case history.TopicGroupCleared.String():
		return fmt.Sprintf("%s: %d tagged %q removed", topic, change.Removed, change.GroupTag)
	case history.TopicBoundary.String():
		return fmt.Sprintf("%s: nothing to %s", topic, change.Direction)
	default:
		return fmt.Sprintf("%s: %s", topic, orEntry(change.Entry))
	}
}

func orEntry(info history.Info) string {
	if info.Description != "" {
		return info.Description
	}
	return fmt.Sprintf("entry %d", info.Index)
}

func (p *Player) draw() {
	p.screen.Clear()
	_, height := p.screen.Size()

	var buf bytes.Buffer
	if err := report.Render(&buf, report.Take(p.hist), p.opts); err != nil {
		p.log.Warn().Err(err).Msg("render failed")
	}

	bold := tcell.StyleDefault.Bold(true)
	dim := tcell.StyleDefault.Dim(true)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	y := 0
	for _, line := range lines {
		if y >= height-3 {
			break
		}
		style := tcell.StyleDefault
		if strings.HasPrefix(line, ">") {
			style = bold
		}
		p.drawText(0, y, line, style)
		y++
	}

	p.drawText(0, height-3, p.notice, dim)
	p.drawText(0, height-2, p.status, tcell.StyleDefault)
	p.drawText(0, height-1, helpLine, dim)
	p.screen.Show()
}

func (p *Player) drawText(x, y int, s string, style tcell.Style) {
	if y < 0 {
		return
	}
	width, _ := p.screen.Size()
	for _, r := range s {
		if x >= width {
			return
		}
		p.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
