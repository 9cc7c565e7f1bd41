package console

import (
	"errors"
	"unicode/utf8"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"

	"arsketch/internal/commands"
	"arsketch/internal/logger"
)

const (
	BarHeight = 40
	// When windowed, move bar up by this many pixels so it stays visible.
	WindowedBarOffset = 56
	prompt            = "> "
	fontSize          = 20
	padding           = 8
	// Number of log lines drawn above the input bar when the console is open.
	maxLinesOnScreen = 14
	lineHeight       = fontSize + 4
	maxLineChars     = 200
)

var (
	barColor    = rl.NewColor(40, 40, 40, 255)
	lineColor   = rl.NewColor(80, 80, 80, 255)
	historyBg   = rl.NewColor(24, 24, 24, 240)
	historyText = rl.LightGray
)

// Console is the log/command bar at the bottom of the screen, toggled with ESC.
// While open it captures the keyboard; lines starting with "cmd " run through the
// command registry, anything else is answered with the list of commands.
type Console struct {
	log  *logger.Logger
	reg  *commands.Registry
	buf  string
	open bool
}

// New returns a closed console that shows log's recent lines and runs commands from reg.
func New(log *logger.Logger, reg *commands.Registry) *Console {
	return &Console{log: log, reg: reg}
}

// IsOpen reports whether the console is visible and capturing input.
func (c *Console) IsOpen() bool {
	return c.open
}

// Update handles ESC (toggle), and when open: typing, paste, backspace, enter. Call once per frame.
func (c *Console) Update() {
	if rl.IsKeyPressed(rl.KeyEscape) {
		c.open = !c.open
	}
	if !c.open {
		return
	}
	if rl.IsKeyPressed(rl.KeyV) && (rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) || rl.IsKeyDown(rl.KeyLeftSuper) || rl.IsKeyDown(rl.KeyRightSuper)) {
		c.buf += rl.GetClipboardText()
	} else {
		for ch := rl.GetCharPressed(); ch != 0; ch = rl.GetCharPressed() {
			c.buf += string(rune(ch))
		}
	}
	if rl.IsKeyPressed(rl.KeyBackspace) && len(c.buf) > 0 {
		_, size := utf8.DecodeLastRuneInString(c.buf)
		c.buf = c.buf[:len(c.buf)-size]
	}
	if (rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeyKpEnter)) && c.buf != "" {
		c.Submit(c.buf)
		c.buf = ""
	}
}

// Submit runs one console line as if it had been typed.
func (c *Console) Submit(line string) {
	c.log.Info(prompt + line)
	args, isCmd := commands.Parse(line)
	if !isCmd {
		c.help()
		return
	}
	if err := c.reg.Execute(args); err != nil {
		c.log.Warn("command failed", zap.Error(err))
		if errors.Is(err, commands.ErrUnknown) {
			c.help()
		}
	}
}

func (c *Console) help() {
	for _, line := range c.reg.Help() {
		c.log.Info("cmd " + line)
	}
}

// Draw draws the input bar at the bottom when open, and the recent log lines above it.
func (c *Console) Draw() {
	if !c.open {
		return
	}
	screenW := rl.GetScreenWidth()
	screenH := rl.GetScreenHeight()
	barY := screenH - BarHeight
	if !rl.IsWindowFullscreen() {
		barY -= WindowedBarOffset
	}

	historyHeight := maxLinesOnScreen * lineHeight
	historyY := barY - historyHeight
	if historyY < 0 {
		historyHeight = barY
		historyY = 0
	}
	if historyHeight > 0 {
		rl.DrawRectangle(0, int32(historyY), int32(screenW), int32(historyHeight), historyBg)
	}
	lines := c.log.Lines()
	start := 0
	if len(lines) > maxLinesOnScreen {
		start = len(lines) - maxLinesOnScreen
	}
	for i := start; i < len(lines); i++ {
		y := historyY + (i-start)*lineHeight + padding
		line := lines[i]
		if len(line) > maxLineChars {
			line = line[:maxLineChars-3] + "..."
		}
		rl.DrawText(line, padding, int32(y), fontSize, historyText)
	}

	rl.DrawRectangle(0, int32(barY), int32(screenW), BarHeight, barColor)
	rl.DrawRectangle(0, int32(barY), int32(screenW), 1, lineColor)
	rl.DrawText(prompt+c.buf+"|", padding, int32(barY+padding), fontSize, rl.White)
}
