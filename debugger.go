package chip8

import (
	"fmt"
	"io"
	"strings"
)

// Tracer writes one line per executed instruction with the registers it left behind
type Tracer struct {
	out io.Writer

	CurrentPc   uint16
	CurrentInst Instruction
	Lines       int
}

// NewTracer creates a tracer and registers its hooks in the runner
func NewTracer(r *Runner, out io.Writer) *Tracer {
	t := &Tracer{
		out: out,
	}

	r.AddBeforeStepHook(t.beforeStep)
	r.AddAfterStepHook(t.afterStep)

	return t
}

func (t *Tracer) beforeStep(cpu *Cpu) {
	t.CurrentPc = cpu.Pc
	t.CurrentInst, _ = cpu.PeekInstruction()
}

func (t *Tracer) afterStep(cpu *Cpu) {
	fmt.Fprintln(t.out, t.formatLine(cpu.Snapshot()))
	t.Lines++
}

func (t Tracer) formatLine(state State) string {
	sb := strings.Builder{}

	sb.WriteString(fmt.Sprintf("%03X  %04X  %-18s", t.CurrentPc, uint16(t.CurrentInst.Opcode), t.CurrentInst))
	for i, v := range state.V {
		sb.WriteString(fmt.Sprintf(" V%X=%02X", i, v))
	}
	sb.WriteString(fmt.Sprintf(" I=%03X SP=%03X DT=%02X", state.I, state.Sp, state.Dt))

	return sb.String()
}
