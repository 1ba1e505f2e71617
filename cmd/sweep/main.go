package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"amm-match-go/amm"
	"amm-match-go/competition"
	"amm-match-go/config"
	"amm-match-go/infrastructure/logger"
	"amm-match-go/metrics"
)

// 静态费率扫描：对一组 bps 取值，各自与 baseline 打一场配对比赛，
// 报告平均 edge 与最优费率，并维护一张 Elo 榜。
// 用法：
//
//	go run ./cmd/sweep -config configs/sim.yaml -fees 10,20,30,40,50,60,80,100 -sims 200
func main() {
	cfgPath := flag.String("config", "configs/sim.yaml", "配置文件路径")
	feeList := flag.String("fees", "10,20,30,40,50,60,80,100", "要扫描的费率（bps，逗号分隔）")
	baselineSpec := flag.String("baseline", "static:80", "baseline 策略")
	sims := flag.Int("sims", 200, "每个费率的配对模拟次数")
	baseSeed := flag.Int64("baseSeed", 0, "起始种子")
	outPath := flag.String("out", "", "若指定则写入 CSV 汇总")
	flag.Parse()

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

	fees, err := parseFees(*feeList)
	if err != nil {
		log.Fatalf("解析费率列表失败: %v", err)
	}

	baselineName := "baseline:" + *baselineSpec
	elo := competition.NewEloRating()

	var rows []sweepRow

	fmt.Printf("static fee sweep: %d sims per fee, baseline %s\n\n", *sims, *baselineSpec)
	fmt.Printf("%-12s %12s %10s %8s\n", "fee (bps)", "mean edge", "stderr", "t")
	for _, bps := range fees {
		runner, err := competition.NewMatchRunner(cfg.ToSimConfig(), *sims, *baseSeed, zlog.Logger)
		if err != nil {
			log.Fatalf("创建比赛失败: %v", err)
		}
		submission := func() amm.FeeStrategy { return amm.NewStaticFee(bps) }
		baseline := func() amm.FeeStrategy {
			s, err := amm.BuildStrategy(*baselineSpec)
			if err != nil {
				log.Fatalf("构造 baseline 策略: %v", err)
			}
			return s
		}
		res, err := runner.Run(submission, baseline)
		if err != nil {
			log.Fatalf("%g bps 比赛失败: %v", bps, err)
		}
		playerName := fmt.Sprintf("static:%g", bps)
		competition.UpdateElo(elo, playerName, baselineName, res)
		rows = append(rows, sweepRow{bps, res.MeanEdge, res.StdErr, res.TStat, res.Wins, res.Losses})
		fmt.Printf("%-12g %12.4f %10.4f %8.2f\n", bps, res.MeanEdge, res.StdErr, res.TStat)
	}

	best := rows[0]
	for _, r := range rows[1:] {
		if r.meanEdge > best.meanEdge {
			best = r
		}
	}
	fmt.Printf("\nbest static fee: %g bps (mean edge %.4f)\n", best.bps, best.meanEdge)

	fmt.Println("\nElo leaderboard:")
	for i, p := range elo.Leaderboard() {
		fmt.Printf("%2d. %-16s %8.1f  (%d-%d-%d)\n", i+1, p.Name, p.Rating, p.Wins, p.Losses, p.Draws)
	}

	if *outPath != "" {
		if err := writeSweepCSV(*outPath, rows); err != nil {
			log.Fatalf("写出 CSV 失败: %v", err)
		}
		fmt.Printf("\nsummary written to %s\n", *outPath)
	}
}

func parseFees(list string) ([]float64, error) {
	parts := strings.Split(list, ",")
	fees := make([]float64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bps, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", part, err)
		}
		fees = append(fees, bps)
	}
	if len(fees) == 0 {
		return nil, fmt.Errorf("empty fee list")
	}
	return fees, nil
}

type sweepRow struct {
	bps      float64
	meanEdge float64
	stdErr   float64
	tStat    float64
	wins     int
	losses   int
}

func writeSweepCSV(path string, rows []sweepRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"fee_bps", "mean_edge", "stderr", "t_stat", "wins", "losses"}); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.FormatFloat(r.bps, 'g', -1, 64),
			strconv.FormatFloat(r.meanEdge, 'g', -1, 64),
			strconv.FormatFloat(r.stdErr, 'g', -1, 64),
			strconv.FormatFloat(r.tStat, 'g', -1, 64),
			strconv.Itoa(r.wins),
			strconv.Itoa(r.losses),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}
