// Package progress renders an activity line while a phase's sub-tasks
// execute. Animation is suppressed on CI and when the caller knows the
// output is not a terminal; a single static line is printed instead so
// captured logs stay readable.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Indicator shows one in-flight message with elapsed time. Start it before
// the long operation and Stop it after; Stop leaves the cursor on a clean
// line. An Indicator is single-use.
type Indicator struct {
	writer  io.Writer
	message string
	animate bool
	start   time.Time

	mu        sync.Mutex
	frameIdx  int
	startOnce sync.Once
	stopOnce  sync.Once
	stopChan  chan struct{}
	done      chan struct{}
}

// Config holds the indicator options.
type Config struct {
	// Writer defaults to os.Stdout.
	Writer io.Writer
	// Animate enables the spinner. The caller decides from its terminal
	// state; CI environments are forced static regardless.
	Animate bool
}

// New creates an indicator for one operation.
func New(message string, cfg Config) *Indicator {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	animate := cfg.Animate
	if os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true" {
		animate = false
	}
	return &Indicator{
		writer:   cfg.Writer,
		message:  message,
		animate:  animate,
		start:    time.Now(),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins rendering. In static mode the message is printed once and
// Start returns; in animated mode a redraw loop runs until Stop.
func (p *Indicator) Start() {
	p.startOnce.Do(func() {
		if !p.animate {
			fmt.Fprintf(p.writer, "%s...\n", p.message)
			close(p.done)
			return
		}
		go p.loop()
	})
}

// Stop ends the indicator. It must be called after Start and may be called
// more than once.
func (p *Indicator) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
	})
	<-p.done
}

func (p *Indicator) loop() {
	defer close(p.done)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	p.render()
	for {
		select {
		case <-p.stopChan:
			p.clearLine()
			return
		case <-ticker.C:
			p.render()
		}
	}
}

func (p *Indicator) render() {
	p.mu.Lock()
	defer p.mu.Unlock()

	frame := spinnerFrames[p.frameIdx%len(spinnerFrames)]
	p.frameIdx++
	elapsed := time.Since(p.start).Round(time.Second)
	fmt.Fprintf(p.writer, "\r%s %s (%s)", frame, p.message, elapsed)
}

func (p *Indicator) clearLine() {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Wide enough for the frame, the message, and the elapsed suffix.
	fmt.Fprintf(p.writer, "\r%s\r", strings.Repeat(" ", len(p.message)+16))
}
