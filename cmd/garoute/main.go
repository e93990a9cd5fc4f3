// Command garoute optimizes one collection route from a CSV distance matrix
// and prints the starting and evolved routes.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"time"

	"colroute/internal/config"
	"colroute/internal/ga"
	"colroute/internal/integrations"
	"colroute/internal/integrations/csvfile"
)

func main() {
	var (
		matrixPath = flag.String("matrix", "", "CSV distance matrix, or - for stdin")
		sep        = flag.String("sep", ";", "CSV field separator")
		cfgPath    = flag.String("config", config.Path(), "YAML config file; its ga section supplies defaults")
		pop        = flag.Int("pop", 0, "population size")
		elite      = flag.Int("elite", 0, "elite size")
		rate       = flag.Float64("rate", -1, "mutation rate in [0,1]")
		gens       = flag.Int("gens", -1, "generations")
		seed       = flag.Int64("seed", 0, "random seed; 0 seeds from the clock")
		parallel   = flag.Int("parallel", 0, "fitness evaluation workers; 0 uses GOMAXPROCS, 1 is serial")
		verbose    = flag.Bool("v", false, "log progress snapshots")
	)
	flag.Parse()
	log.SetFlags(0)

	if *matrixPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	comma := []rune(*sep)
	if len(comma) != 1 {
		log.Fatalf("-sep must be a single character, got %q", *sep)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	gcfg := cfg.GA
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "pop":
			gcfg.PopulationSize = *pop
		case "elite":
			gcfg.EliteSize = *elite
		case "rate":
			gcfg.MutationRate = *rate
		case "gens":
			gcfg.Generations = *gens
		case "seed":
			gcfg.Seed = *seed
		case "parallel":
			gcfg.Parallelism = *parallel
		}
	})
	gcfg.Parallelism = workers(gcfg.Parallelism)
	if !*verbose {
		gcfg.ProgressEvery = 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var src integrations.MatrixSource = csvfile.Source{Path: *matrixPath, Comma: comma[0]}
	if *matrixPath == "-" {
		m, err := csvfile.Parse(ctx, os.Stdin, comma[0])
		if err != nil {
			log.Fatalf("read matrix: %v", err)
		}
		src = integrations.Inline(m)
	}
	if err := run(ctx, os.Stdout, src, gcfg, *verbose); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, w io.Writer, src integrations.MatrixSource, cfg ga.Config, verbose bool) error {
	m, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("load %s matrix: %w", src.Name(), err)
	}
	o, err := ga.NewOracle(m)
	if err != nil {
		return err
	}
	progress := ga.ObserverFunc(func(st ga.GenerationStats) {
		log.Printf("generation %d: best %.3f mean %.3f sd %.3f", st.Generation, st.BestDistance, st.MeanDistance, st.StdDevDistance)
	})
	var opts []ga.Option
	if verbose {
		opts = append(opts, ga.WithObserver(progress))
	}
	e, err := ga.NewEngine(o, cfg, opts...)
	if err != nil {
		return err
	}
	start := time.Now()
	res, err := e.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Initial route: %s\n", formatRoute(res.InitialRoute))
	fmt.Fprintf(w, "Initial distance: %g\n", res.InitialDistance)
	fmt.Fprintf(w, "Final distance: %g\n", res.FinalDistance)
	fmt.Fprintf(w, "Final route: %s\n", formatRoute(res.Route))
	if verbose {
		log.Printf("%d generations in %v", res.Generations, time.Since(start))
	}
	return nil
}

// workers resolves the -parallel setting: 0 means one worker per CPU.
func workers(n int) int {
	if n == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// formatRoute renders a route as "[0 3 1 2 0]".
func formatRoute(pts []ga.Point) string {
	return fmt.Sprint(pts)
}
