// Command gatery-check loads a fixture circuit, optimizes it, compiles
// and runs it through the reference simulator, and prints a diag.Report
// to stdout. It is the analogue of the teacher's verify/cmd/verify-*
// mains (core.LoadProgramFileFromYAML + verify.RunLint +
// verify.GenerateReport), retargeted from scheduled CGRA kernels to
// hlim circuits; it is not a real VHDL exporter (out of scope per
// spec.md §1).
package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/synogate/gatery/diag"
	"github.com/synogate/gatery/fixture"
	"github.com/synogate/gatery/optimize"
	"github.com/synogate/gatery/simulator"
)

func main() {
	fixturePath := flag.String("fixture", "", "path to a fixture YAML file")
	level := flag.Int("level", 3, "optimize() level to run before compiling")
	duration := flag.Float64("seconds", 1e-6, "simulated seconds to run for")
	flag.Parse()

	if *fixturePath == "" {
		log.Fatal("gatery-check: -fixture is required")
	}

	report := &diag.Report{}

	c, _, err := fixture.LoadAndBuild(*fixturePath)
	if err != nil {
		log.Fatalf("gatery-check: %v", err)
	}

	for _, e := range diag.Lint(c) {
		report.Add(e)
	}

	if err := optimize.Optimize(c, *level); err != nil {
		addCycleReports(report, diag.FindCombinationalCycles(c))
		report.Write(os.Stdout)
		os.Exit(1)
	}

	prog, err := simulator.Compile(c)
	if err != nil {
		ce, ok := err.(*simulator.CompileError)
		if !ok {
			log.Fatalf("gatery-check: %v", err)
		}
		addCycleReports(report, ce.Cycles)
		report.Write(os.Stdout)
		os.Exit(1)
	}

	cb := &reportCallbacks{report: report}
	engine := simulator.NewEngine(sim.NewSerialEngine(), prog, cb)
	if err := engine.RunFor(sim.VTimeInSec(*duration)); err != nil {
		log.Fatalf("gatery-check: %v", err)
	}

	report.Write(os.Stdout)
	if report.Failed() {
		os.Exit(1)
	}
}

func addCycleReports(report *diag.Report, cycles []diag.CycleReport) {
	for _, cr := range cycles {
		report.Add(diag.Entry{
			Severity: diag.SeverityError,
			Source:   "cycle:" + strings.Join(cr.Names, "->"),
			Message:  "combinational cycle",
		})
	}
}

// reportCallbacks adapts simulator.SimulatorCallbacks's warning/assert/
// debug dispatch into diag.Report entries, the simulation-time analogue
// of diag.Lint's structural entries.
type reportCallbacks struct {
	simulator.NopCallbacks
	report *diag.Report
	now    sim.VTimeInSec
}

func (cb *reportCallbacks) OnNewTick(now sim.VTimeInSec) { cb.now = now }

func (cb *reportCallbacks) OnWarning(node, message string) {
	cb.report.Add(diag.Entry{Time: cb.now, Severity: diag.SeverityWarning, Source: node, Message: message})
}

func (cb *reportCallbacks) OnAssert(node, message string) {
	cb.report.Add(diag.Entry{Time: cb.now, Severity: diag.SeverityError, Source: node, Message: message})
}

func (cb *reportCallbacks) OnDebugMessage(node, message string) {
	cb.report.Add(diag.Entry{Time: cb.now, Severity: diag.SeverityDebug, Source: node, Message: message})
}
