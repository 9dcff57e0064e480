package service

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/reclink-dev/reclink/domain"
)

// ProgressManagerImpl implements the ProgressManager interface
type ProgressManagerImpl struct {
	mu          sync.Mutex
	writer      io.Writer
	progressBar *progressbar.ProgressBar
	interactive bool
	maxValue    int // Maximum value for progress (set by Initialize)
	current     int // Highest value seen so far; the bar never moves backwards
}

// NewProgressManager creates a new progress manager
func NewProgressManager() domain.ProgressManager {
	return &ProgressManagerImpl{
		writer:      os.Stderr,
		interactive: IsInteractiveEnvironment(),
	}
}

// Initialize sets up progress tracking with the maximum value
func (pm *ProgressManagerImpl) Initialize(maxValue int) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.maxValue = maxValue
	pm.current = 0
}

// Start starts the progress bar
func (pm *ProgressManagerImpl) Start(description string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.interactive && pm.progressBar == nil {
		pm.progressBar = pm.createProgressBar(description, pm.maxValue)
	}
}

// Update updates the progress. Late updates from concurrent workers
// with a lower value than already shown are ignored.
func (pm *ProgressManagerImpl) Update(processed int) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if processed <= pm.current {
		return
	}
	pm.current = processed

	if pm.progressBar != nil {
		_ = pm.progressBar.Set(processed)
	}
}

// Complete marks the progress as completed (finishes the progress bar)
func (pm *ProgressManagerImpl) Complete(success bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.progressBar != nil {
		_ = pm.progressBar.Finish()
		pm.progressBar = nil
	}
}

// SetWriter sets the output writer for progress bars
func (pm *ProgressManagerImpl) SetWriter(writer io.Writer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.writer = writer

	// Update interactivity check based on new writer
	if file, ok := writer.(*os.File); ok {
		pm.interactive = term.IsTerminal(int(file.Fd()))
	} else {
		pm.interactive = false
	}
}

// IsInteractive returns true if progress bars should be shown
func (pm *ProgressManagerImpl) IsInteractive() bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	return pm.interactive
}

// createProgressBar creates a new progress bar with consistent styling
func (pm *ProgressManagerImpl) createProgressBar(description string, max int) *progressbar.ProgressBar {
	writer := pm.writer
	if writer == nil {
		writer = io.Discard
	}

	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetWriter(writer),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(writer)
		}),
	)
}

// IsInteractiveEnvironment returns true if the environment appears to be
// an interactive TTY session and not CI
func IsInteractiveEnvironment() bool {
	if os.Getenv("CI") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// NoOpProgressManager is a progress manager that does nothing. Used when
// progress display is unwanted, such as in tests or non-TTY runs.
type NoOpProgressManager struct{}

// NewNoOpProgressManager creates a progress manager that discards all updates
func NewNoOpProgressManager() domain.ProgressManager {
	return &NoOpProgressManager{}
}

func (n *NoOpProgressManager) Initialize(maxValue int)    {}
func (n *NoOpProgressManager) Start(description string)   {}
func (n *NoOpProgressManager) Update(processed int)       {}
func (n *NoOpProgressManager) Complete(success bool)      {}
func (n *NoOpProgressManager) SetWriter(writer io.Writer) {}
func (n *NoOpProgressManager) IsInteractive() bool        { return false }
