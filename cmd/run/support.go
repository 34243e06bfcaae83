package main

import (
	"crypto/rand"
	"flag"
	"log"
	"math"
	"math/big"
	"os"

	"github.com/zintix-labs/randlab"
	"github.com/zintix-labs/randlab/recorder"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	kind      string
	draws     int
	batch     int
	seed      uint64
	offset    uint64
	lanes     int
	mean      float64
	std       float64
	lambda    float64
	out       string
	pprofmode string
}

func bindVar() {
	// 綁定 Flag 到本地變數的指標 (&)
	flag.StringVar(&cfg.kind, "kind", randlab.KindUniform, "distribution: raw|uniform|normal|lognormal|poisson")
	flag.IntVar(&cfg.draws, "n", 10000000, "total draws")
	flag.IntVar(&cfg.batch, "batch", 0, "draws per batch (0 = default)")
	flag.Uint64Var(&cfg.seed, "seed", 0, "uint64 seed (0 = random)")
	flag.Uint64Var(&cfg.offset, "offset", 0, "sequence offset per lane")
	flag.IntVar(&cfg.lanes, "lanes", 0, "engine pool capacity (0 = default)")
	flag.Float64Var(&cfg.mean, "mean", 0, "mean for normal/lognormal")
	flag.Float64Var(&cfg.std, "std", 1, "stddev for normal/lognormal")
	flag.Float64Var(&cfg.lambda, "lambda", 10, "lambda for poisson")
	flag.StringVar(&cfg.out, "out", "", "record draws into this file (zstd stream)")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()

	// seed 0 交給 crypto/rand，印出來讓 run 可重現
	if cfg.seed == 0 {
		seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			log.Fatal(err)
		}
		cfg.seed = seed.Uint64()
	}
}

// 這裡解析並執行模擬
func executeSimulator() {
	cfg.valid() // 基本檢查

	g, err := randlab.NewGenerator(randlab.Config{
		Seed:   cfg.seed,
		Offset: cfg.offset,
		Lanes:  cfg.lanes,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer g.Destroy()

	s := randlab.NewSimulator(g)

	var rec *recorder.DrawRecorder
	if cfg.out != "" {
		f, err := os.Create(cfg.out)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		rec, err = recorder.NewDrawRecorder(f)
		if err != nil {
			log.Fatal(err)
		}
		s.Attach(rec)
	}

	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)
	p.Printf("%s[KIND:%s] [SEED:%d] [LANES:%d] [DRAWS:%d]%s\n", green, cfg.kind, cfg.seed, g.Lanes(), cfg.draws, reset)

	rep, used, err := s.Sim(randlab.SimSpec{
		Kind:   cfg.kind,
		Mean:   cfg.mean,
		StdDev: cfg.std,
		Lambda: cfg.lambda,
	}, cfg.draws, cfg.batch, true)
	if err != nil {
		log.Fatal(err)
	}
	if rec != nil {
		if err := rec.Close(); err != nil {
			log.Fatal(err)
		}
		p.Printf("recorded %d draws in %d frames -> %s\n", rec.Draws(), rec.Frames(), cfg.out)
	}
	rep.StdOut(used)
}

func (cfg *config) valid() {
	p := message.NewPrinter(language.English)

	if cfg.draws < 1 {
		log.Fatal("value err : n must > 0")
	}

	// 批次過大沒有意義，記憶體也吃不消
	if cfg.batch > 1<<24 {
		p.Printf("batch too large: %d resized to 16M\n", cfg.batch)
		cfg.batch = 1 << 24
	}

	if cfg.lanes < 0 {
		log.Fatal("value err : lanes must >= 0")
	}
}
