package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"amm-match-go/amm"
	"amm-match-go/config"
	"amm-match-go/gateway"
	"amm-match-go/infrastructure/logger"
	"amm-match-go/metrics"
	"amm-match-go/sim"
)

// 运行一次 submission vs normalizer 的配对模拟。
// 用法：
//
//	go run ./cmd/sim -config configs/sim.yaml -strategy vol:30 -baseline static:80 -out steps.csv
//	go run ./cmd/sim -config configs/sim.yaml -strategy static:25 -watch
//	go run ./cmd/sim -config configs/sim.yaml -strategy vol:30 -feed ethusdt -steps 500
func main() {
	cfgPath := flag.String("config", "configs/sim.yaml", "配置文件路径")
	strategySpec := flag.String("strategy", "static:30", "submission 策略（static:<bps> | asym:<bid>:<ask> | vol:<bps>）")
	baselineSpec := flag.String("baseline", "static:80", "baseline 策略")
	steps := flag.Int("steps", -1, "覆盖配置中的 nSteps（负数表示不覆盖）")
	seed := flag.Int64("seed", 0, "覆盖配置中的 seed（显式给出才生效）")
	feedSymbol := flag.String("feed", "", "用实时 aggTrade 流代替 GBM 驱动公允价（如 ethusdt）")
	outPath := flag.String("out", "", "若指定则把逐步快照写入 CSV")
	watch := flag.Bool("watch", false, "监听配置文件变化并自动重跑")
	flag.Parse()
	seedSet := flagProvided(flag.CommandLine, "seed")

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zlog, err := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zlog.Close()

	if cfg.Metrics.Enabled {
		metrics.StartMetricsServer(cfg.Metrics.Addr)
	}

	// 实时行情模式：先拿到首个成交价再开跑，保证初始锚点有效
	var feed *gateway.PriceFeed
	if *feedSymbol != "" {
		feed = gateway.NewPriceFeed(*feedSymbol)
		go func() {
			if err := feed.Run(context.Background()); err != nil {
				log.Fatalf("行情流中断: %v", err)
			}
		}()
		first := feed.Step()
		fmt.Printf("feed %s ready, first price %.6f\n", *feedSymbol, first)
	}

	runOnce := func(cfg config.AppConfig) error {
		simCfg := cfg.ToSimConfig()
		if *steps >= 0 {
			simCfg.NSteps = *steps
		}
		if seedSet {
			s := *seed
			simCfg.Seed = &s
		}

		submission, err := amm.BuildStrategy(*strategySpec)
		if err != nil {
			return fmt.Errorf("构造 submission 策略: %w", err)
		}
		baseline, err := amm.BuildStrategy(*baselineSpec)
		if err != nil {
			return fmt.Errorf("构造 baseline 策略: %w", err)
		}

		engine := sim.NewEngine(simCfg, zlog.Logger)
		if feed != nil {
			engine.SetPriceSource(feed)
		}
		result, err := engine.Run(submission, baseline)
		if err != nil {
			return err
		}
		metrics.SimulationsRun.Inc()

		printSummary(result)
		if *outPath != "" {
			if err := writeStepsCSV(*outPath, result); err != nil {
				return fmt.Errorf("写出 CSV: %w", err)
			}
			fmt.Printf("steps written to %s\n", *outPath)
		}
		return nil
	}

	if err := runOnce(cfg); err != nil {
		log.Fatalf("模拟失败: %v", err)
	}
	if !*watch {
		return
	}

	fmt.Printf("watching %s ...\n", *cfgPath)
	watcher := config.Watcher{Path: *cfgPath}
	err = watcher.Start(context.Background(), func(cfg config.AppConfig) {
		if err := runOnce(cfg); err != nil {
			fmt.Printf("重跑失败: %v\n", err)
		}
	})
	if err != nil && err != context.Canceled {
		log.Fatalf("监听配置失败: %v", err)
	}
}

// flagProvided 判断某个 flag 是否在命令行上被显式设置，
// 以区分“没传”与“传了默认值/负值”。
func flagProvided(fs *flag.FlagSet, name string) bool {
	provided := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			provided = true
		}
	})
	return provided
}

func printSummary(result *sim.Result) {
	fmt.Printf("seed=%d steps=%d initial_fair=%.6f\n", result.Seed, len(result.Steps), result.InitialFairPrice)
	fmt.Printf("%-12s %14s %14s %14s %14s\n", "strategy", "pnl", "markout", "arb_vol_y", "retail_vol_y")
	for _, name := range result.Strategies {
		fmt.Printf("%-12s %14.6f %14.6f %14.6f %14.6f\n",
			name,
			result.PnL[name],
			result.InstantaneousMarkouts[name],
			result.ArbVolumeY[name],
			result.RetailVolumeY[name],
		)
	}
	edge := result.PnL[sim.SubmissionName] - result.PnL[sim.BaselineName]
	fmt.Printf("Edge: %.6f\n", edge)
}

func writeStepsCSV(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"t", "fair_price"}
	for _, name := range result.Strategies {
		header = append(header,
			name+"_spot", name+"_pnl", name+"_bid_fee", name+"_ask_fee")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, step := range result.Steps {
		row := []string{
			strconv.FormatUint(step.Timestamp, 10),
			strconv.FormatFloat(step.FairPrice, 'g', -1, 64),
		}
		for _, name := range result.Strategies {
			fees := step.Fees[name]
			row = append(row,
				strconv.FormatFloat(step.SpotPrices[name], 'g', -1, 64),
				strconv.FormatFloat(step.PnLs[name], 'g', -1, 64),
				strconv.FormatFloat(fees.BidFee, 'g', -1, 64),
				strconv.FormatFloat(fees.AskFee, 'g', -1, 64),
			)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
