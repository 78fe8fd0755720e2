package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/emberdeck/duelist/internal/sim"
	"github.com/emberdeck/duelist/internal/telemetry"
)

// report prints win rates and per-side decision statistics.
func report(w io.Writer, registry *telemetry.Registry, outcomes *telemetry.MatchWatcher, played int) {
	results := outcomes.Results()
	rounds := 0
	for _, r := range results {
		rounds += r.Turns
	}
	avg := 0.0
	if len(results) > 0 {
		avg = float64(rounds) / float64(len(results))
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "matches\t%d\n", played)
	fmt.Fprintf(tw, "wins A\t%d\n", outcomes.Wins("A"))
	fmt.Fprintf(tw, "wins B\t%d\n", outcomes.Wins("B"))
	fmt.Fprintf(tw, "draws\t%d\n", outcomes.Wins(sim.Draw))
	fmt.Fprintf(tw, "avg rounds\t%.1f\n", avg)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "side\tturns\tplayed\tdropped\tattacks\tdropped\treplans\tkills\tface\tvariance")
	for _, watcher := range registry.All() {
		dw, ok := watcher.(*telemetry.DecisionWatcher)
		if !ok {
			continue
		}
		s := dw.Stats()
		fired := 0
		for _, n := range s.Variance {
			fired += n
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			dw.Side(), s.Turns, s.CardsPlayed, s.CardsDropped, s.Attacks, s.AttacksDropped,
			s.Replans, s.Kills, s.FaceDamage, fired)
	}
	tw.Flush()
}
