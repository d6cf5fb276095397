// 手动汇总某个学习者的积分流水并输出进度快照
//
// 用于核对流水数据，例如批量导入历史记录或调整积分配置之后。
// 与接口使用同一套汇总逻辑，不经过权限校验，只应在运维环境执行。
//
// 用法: go run scripts/ledger_audit.go -learner 42 [-language es] [-config configs]

package main

import (
	"context"
	"encoding/json"
	"flag"
	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/internal/repository"
	"lingua_edu_backend/internal/service"
	"lingua_edu_backend/pkg/database"
	"lingua_edu_backend/pkg/logger"
	"log"
	"os"
	"time"
)

func main() {
	configDir := flag.String("config", "configs", "配置文件所在目录")
	learnerID := flag.Uint("learner", 0, "学习者ID")
	language := flag.String("language", "", "仅统计该语言的积分")
	flag.Parse()

	if *learnerID == 0 {
		log.Fatal("必须指定 -learner")
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	policy, err := service.NewPointPolicy(cfg.Gamification)
	if err != nil {
		log.Fatalf("积分策略无效: %v", err)
	}

	awards := repository.NewPointAwardRepository(db)
	content := repository.NewContentRepository(db)
	progress := service.NewProgressService(repository.NewUserRepository(db), awards, content, service.NewPolicyStore(policy))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	snapshot, err := progress.GetProgress(ctx, uint(*learnerID), service.ProgressOptions{Language: *language})
	if err != nil {
		log.Fatalf("汇总失败: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		log.Fatalf("输出失败: %v", err)
	}
}
