package device

import (
	"fmt"
	"io"
	"sync"

	"github.com/user154lt/ELK-BLEDOM-Command-Util/protocol"
)

// Printer is a Sender that writes each encoded frame to an io.Writer as a
// "<command>: <hex>" line instead of sending it anywhere.
type Printer struct {
	Encoder protocol.Encoder

	mu  sync.Mutex
	out io.Writer
}

// NewPrinter returns a Printer writing to out.
func NewPrinter(out io.Writer, enc protocol.Encoder) *Printer {
	return &Printer{Encoder: enc, out: out}
}

func (p *Printer) WriteCommand(cmd Command) error {
	frame, err := cmd.Encode(p.Encoder)
	if err != nil {
		return fmt.Errorf("encode %s: %w", Name(cmd), err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err = fmt.Fprintf(p.out, "%s: %s\n", Name(cmd), frame)
	return err
}
