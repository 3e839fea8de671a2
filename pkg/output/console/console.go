package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ericogr/accel-color-monitor/pkg/output"
)

const (
	header = "Raspberry Pi sensing application"
	// lines in one rendered block, the cursor moves back this many rows
	blockLines = 8
)

// ConsoleOutput redraws the readings in place on a terminal.
type ConsoleOutput struct {
	w     io.Writer
	drawn bool
}

func NewConsole() output.Sink { return NewConsoleWriter(os.Stdout) }

func NewConsoleWriter(w io.Writer) *ConsoleOutput { return &ConsoleOutput{w: w} }

func (c *ConsoleOutput) Render(f output.Frame) error {
	var b strings.Builder
	if !c.drawn {
		b.WriteString(header)
		b.WriteString("\n")
	} else {
		// move back to the first line of the previous block
		b.WriteString(strings.Repeat("\033[F", blockLines-1))
		b.WriteString("\r")
	}
	b.WriteString(format(f))
	if _, err := io.WriteString(c.w, b.String()); err != nil {
		return err
	}
	c.drawn = true
	return nil
}

func (c *ConsoleOutput) Close() error {
	if c.drawn {
		_, err := io.WriteString(c.w, "\n")
		return err
	}
	return nil
}

func format(f output.Frame) string {
	x, y, z := output.Placeholder, output.Placeholder, output.Placeholder
	if f.HasAcceleration {
		x = fmt.Sprintf("%.02f", f.Acceleration.X)
		y = fmt.Sprintf("%.02f", f.Acceleration.Y)
		z = fmt.Sprintf("%.02f", f.Acceleration.Z)
	}
	r, g, b := output.Placeholder, output.Placeholder, output.Placeholder
	if f.HasColor {
		r = fmt.Sprintf("%03d", f.Color.R)
		g = fmt.Sprintf("%03d", f.Color.G)
		b = fmt.Sprintf("%03d", f.Color.B)
	}
	// each field is padded so a shorter value overwrites a longer one
	return fmt.Sprintf("Acceleration:\n\tX: %-8s\n\tY: %-8s\n\tZ: %-8s\nColor:\n\tR: %-3s\n\tG: %-3s\n\tB: %-3s",
		x, y, z, r, g, b)
}
