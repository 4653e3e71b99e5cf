// 手动执行题库标注任务
//
// 题目入库后按需执行，任务之间有依赖：先 extract-year，再 tag-source。
//
// 用法:
//
//	go run scripts/annotate.go -task extract-year -collection a1
//	go run scripts/annotate.go -task tag-source -collection x
//	go run scripts/annotate.go -task rename-source -collection a2 -from 真题 -to 西综真题

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"quizbank_sync/internal/app"
	"quizbank_sync/internal/config"
	"quizbank_sync/internal/model"
	"quizbank_sync/internal/service"
	"quizbank_sync/internal/util"
	"quizbank_sync/pkg/logger"

	"gopkg.in/yaml.v3"
)

func main() {
	configFile := flag.String("config", "configs/config.yaml", "配置文件路径")
	collection := flag.String("collection", "a1", "目标集合：a1, a2 或 x")
	task := flag.String("task", service.TaskExtractYear, "extract-year | tag-source | rename-source")
	from := flag.String("from", util.SourceLegacyExam, "rename-source 的原值")
	to := flag.String("to", util.SourceRealExam, "rename-source 的新值")
	flag.Parse()

	cfg := config.Default()
	data, err := os.ReadFile(*configFile)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	v, ok := model.ParseVariant(*collection)
	if !ok {
		log.Fatalf("未知集合: %s", *collection)
	}

	ctx := context.Background()
	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}
	defer application.Close()

	log.Printf("执行 %s (%s)...", *task, v.Collection())
	res, err := application.Annotate(ctx, *task, v, *from, *to)
	if err != nil {
		log.Printf("失败: %v", err)
		return
	}
	log.Printf("完成！匹配 %d 条，更新 %d 条", res.Matched, res.Modified)
}
