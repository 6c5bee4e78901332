package platform

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"lautenbacher.net/gosignal/config"
	"lautenbacher.net/gosignal/logging"
	"lautenbacher.net/gosignal/signal"
	"lautenbacher.net/gosignal/util"
)

type TUIPlatform struct {
	*AbstractPlatform
	tviewapp     *tview.Application
	intro        *tview.TextView
	lampView     *tview.TextView
	statusView   *tview.TextView
	logView      *tview.TextView
	ossignalChan chan os.Signal
	logFlushOnce sync.Once
}

func NewTUIPlatform(conf *config.Config, ossignalchan chan os.Signal) *TUIPlatform {
	inst := &TUIPlatform{
		ossignalChan: ossignalchan,
	}
	inst.AbstractPlatform = newAbstractPlatform(conf, inst.tuiShowFunc)
	return inst
}

func (s *TUIPlatform) Start() error {
	s.initSimulationTUI(s.ossignalChan)
	return nil
}

// Stop closes the TUI. Logging goes back to buffering, so records written
// during shutdown end up on stderr when logging.Close runs.
func (s *TUIPlatform) Stop() {
	s.setInShutdown()
	logging.BufferOutput()
	if s.tviewapp != nil {
		s.tviewapp.Stop()
	}
}

func (s *TUIPlatform) tuiShowFunc(c signal.Color) {
	s.tviewapp.QueueUpdateDraw(func() {
		s.lampView.SetText(lampText(c))
	})
}

// SetStatus updates the line below the signal head.
func (s *TUIPlatform) SetStatus(mode signal.Mode, state signal.LogicalState, nightFlash bool) {
	s.shutdownMutex.RLock()
	defer s.shutdownMutex.RUnlock()
	if s.isShuttingDown || s.tviewapp == nil {
		return
	}
	text := statusText(mode, state, nightFlash)
	s.tviewapp.QueueUpdateDraw(func() {
		s.statusView.SetText(text)
	})
}

func getIntroText() string {
	line1 := "Hit [#ff0000]e[white] or [#ff0000]space[white] to toggle emergency mode"
	line2 := "Hit [#ff0000]q[-] to exit, [#ff0000]r[-] to reload, [#ff0000]Up/Down[-] to scroll logs"
	return fmt.Sprintf("%s\n%s", line1, line2)
}

type lampColors struct {
	color signal.Color
	lit   string
	dark  string
}

var lamps = []lampColors{
	{signal.Red, "#ff2020", "#401010"},
	{signal.Yellow, "#ffc000", "#403008"},
	{signal.Green, "#20ff40", "#104018"},
}

// lampText draws the signal head top to bottom with the lamp of c lit.
func lampText(c signal.Color) string {
	var buf strings.Builder
	for _, lamp := range lamps {
		hex := lamp.dark
		if lamp.color == c {
			hex = lamp.lit
		}
		fmt.Fprintf(&buf, " [%s]▄███▄[-]\n [%s]▀███▀[-]\n", hex, hex)
	}
	return buf.String()
}

func statusText(mode signal.Mode, state signal.LogicalState, nightFlash bool) string {
	modeColor := "#00ff00"
	if mode == signal.Emergency {
		modeColor = "#ffc000"
	}
	text := fmt.Sprintf("Mode: [%s]%s[-]  State: [white]%s[-]", modeColor, mode, state)
	if nightFlash {
		text += "  [blue](night flash)[-]"
	}
	return text
}

func (s *TUIPlatform) initSimulationTUI(ossignal chan os.Signal) {
	s.tviewapp = tview.NewApplication()

	// --- Intro Pane ---
	s.intro = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	s.intro.SetText(getIntroText())
	s.intro.SetBorder(true).SetTitle(" GOSIGNAL Simulation ").SetTitleColor(tcell.ColorLightBlue)
	s.intro.SetBackgroundColor(tcell.NewRGBColor(20, 20, 20))

	// --- Signal Head Pane ---
	s.lampView = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	s.lampView.SetText(lampText(signal.None))
	s.lampView.SetBorder(true)
	s.lampView.SetBackgroundColor(tcell.NewRGBColor(30, 30, 30))

	s.statusView = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	s.statusView.SetBorder(true).SetTitle(" Status ").SetTitleColor(tcell.ColorLightBlue)
	s.statusView.SetBackgroundColor(tcell.NewRGBColor(30, 30, 30))

	// --- Log Pane ---
	s.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetChangedFunc(func() {
			s.logView.ScrollToEnd()
			s.tviewapp.Draw()
		})
	s.logView.SetBorder(true).SetTitle(" Logs ").SetTitleColor(tcell.ColorLightBlue)
	s.logView.SetBackgroundColor(tcell.NewRGBColor(40, 40, 40))

	// --- Layout ---
	head := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(s.lampView, 9, 0, false).
		AddItem(s.statusView, 0, 1, false)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.intro, 4, 0, false).
		AddItem(head, 2*len(lamps)+2, 0, false).
		AddItem(s.logView, 0, 1, true)

	// --- Flush logs after first draw ---
	s.tviewapp.SetAfterDrawFunc(func(screen tcell.Screen) {
		s.logFlushOnce.Do(func() {
			logWriter := tview.ANSIWriter(s.logView)
			if err := logging.SetOutput(logWriter); err != nil {
				slog.Error("Can't flush buffered log output", "error", err)
			}
			close(s.readyChan) // Signal that the TUI is ready
		})
	})

	// --- Input Handling ---
	s.tviewapp.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			s.tviewapp.Stop()
			ossignal <- os.Interrupt
			return nil
		case tcell.KeyRune:
			switch string(event.Rune()) {
			case "e", "E", " ":
				s.request("key", util.Toggle)
				return nil
			case "q", "Q":
				ossignal <- os.Interrupt
				return nil
			case "r", "R":
				ossignal <- syscall.SIGHUP
				return nil
			}
		case tcell.KeyUp:
			row, col := s.logView.GetScrollOffset()
			s.logView.ScrollTo(row-1, col)
			return nil
		case tcell.KeyDown:
			row, col := s.logView.GetScrollOffset()
			s.logView.ScrollTo(row+1, col)
			return nil
		}
		return event
	})

	// --- Start TUI ---
	go func() {
		if err := s.tviewapp.SetRoot(layout, true).Run(); err != nil {
			slog.Error("Error running TUI", "error", err)
			s.ossignalChan <- os.Interrupt
		}
	}()
}
