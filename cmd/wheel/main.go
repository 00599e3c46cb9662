// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/danielhkuo/quickly-spin/tui"
	"github.com/danielhkuo/quickly-spin/wheel"
)

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

const emptyMessage = "Nothing to spin. Add a few restaurants first."

type CLI struct {
	Spin    SpinCmd    `cmd:"" default:"withargs" help:"Spin the wheel (default)"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

type SpinCmd struct {
	Labels      []string `arg:"" optional:"" help:"Restaurants to spin; commas separate several in one argument"`
	File        string   `short:"f" type:"existingfile" help:"YAML list of restaurants (- name: ...)"`
	Seed        uint64   `help:"Seed for a reproducible spin (0 draws from crypto/rand)"`
	WheelConfig string   `name:"wheel-config" type:"path" env:"WHEEL_CONFIG" help:"YAML file tuning turns, duration and ticks"`
}

func (c *SpinCmd) Run(cli *CLI) error {
	interactive := isTerminal(os.Stdin) && isTerminal(os.Stdout)

	candidates, err := c.candidates()
	if err != nil {
		return err
	}
	if len(candidates) == 0 && interactive {
		candidates, err = tui.NewCandidatePrompter().Prompt()
		if err != nil {
			return err
		}
	}

	selector, err := c.selector()
	if err != nil {
		return err
	}

	if !interactive || len(candidates) < 2 {
		return printSpin(os.Stdout, selector, candidates)
	}

	p := tea.NewProgram(tui.New(selector, candidates, tui.WithAutoQuit()))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	if m, ok := final.(tui.Model); ok {
		if chosen, ok := m.Selected(); ok {
			fmt.Printf("Let's eat at %s\n", chosen.Label)
		}
	}
	return nil
}

// candidates gathers restaurants from the file, then the arguments.
func (c *SpinCmd) candidates() ([]wheel.Candidate, error) {
	var out []wheel.Candidate
	if c.File != "" {
		fromFile, err := tui.LoadCandidates(c.File)
		if err != nil {
			return nil, err
		}
		out = append(out, fromFile...)
	}

	fromArgs, err := tui.ParseCandidates(c.Labels)
	if err != nil {
		return nil, fmt.Errorf("parse arguments: %w", err)
	}
	out = append(out, fromArgs...)

	if err := wheel.ValidateCandidates(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SpinCmd) selector() (*wheel.Selector, error) {
	cfg := wheel.DefaultConfig()
	if c.WheelConfig != "" {
		loaded, err := wheel.LoadConfig(c.WheelConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	rng := wheel.DefaultRNG()
	if c.Seed != 0 {
		rng = wheel.NewSeededRNG(c.Seed)
	}
	return wheel.NewSelector(cfg, rng), nil
}

// printSpin resolves a spin without animation.
func printSpin(out io.Writer, selector *wheel.Selector, candidates []wheel.Candidate) error {
	switch len(candidates) {
	case 0:
		_, err := fmt.Fprintln(out, emptyMessage)
		return err
	case 1:
		_, err := fmt.Fprintf(out, "Only one choice: %s\n", candidates[0].Label)
		return err
	}

	plan, ok := selector.Spin(candidates, wheel.SpinState{})
	if !ok {
		return fmt.Errorf("cannot spin %d candidates", len(candidates))
	}
	idx := plan.Resolve(len(candidates))
	turns := (plan.FinalRotation - plan.StartRotation) / 360

	_, err := fmt.Fprintf(out, "Spun %d restaurants, %s turns over %s\nLet's eat at %s\n",
		len(candidates), humanize.FtoaWithDigits(turns, 2), plan.Duration, candidates[idx].Label)
	return err
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type VersionCmd struct{}

func (c *VersionCmd) Run(cli *CLI) error {
	fmt.Printf("wheel %s (commit: %s, built: %s)\n", Version, Commit, Date)
	return nil
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("wheel"),
		kong.Description("Spin a wheel to pick where to eat"),
		kong.UsageOnError(),
	)

	if err := ctx.Run(&cli); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
