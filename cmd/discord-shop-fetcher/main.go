package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/darkkaiser/discord-shop-fetcher/internal/app"
	"github.com/darkkaiser/discord-shop-fetcher/internal/config"
	applog "github.com/darkkaiser/discord-shop-fetcher/pkg/log"
	log "github.com/sirupsen/logrus"
)

// 빌드 정보 변수 (ldflags로 주입됨)
var (
	Version   = "dev"     // Git 커밋 해시
	BuildDate = "unknown" // 빌드 날짜
)

func main() {
	configFile := flag.String("config", config.DefaultFilename, "설정 파일 경로")
	flag.Parse()

	// 1. 환경설정 로드 (로그 설정에 필요하므로 가장 먼저 수행한다)
	appConfig, err := config.LoadWithFile(*configFile)
	if err != nil {
		// 로거 초기화 전이므로 표준 에러에 출력
		fmt.Fprintf(os.Stderr, "[FATAL] 환경설정 로드 실패: %v\n", err)
		os.Exit(1)
	}

	// 2. 로그 시스템 초기화
	var logOpts applog.Options
	if appConfig.Debug {
		logOpts = applog.NewDevelopmentOptions(config.AppName)
	} else {
		logOpts = applog.NewProductionOptions(config.AppName)
	}

	appLogCloser, err := applog.Setup(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] 로그 시스템 초기화 실패. 실행을 중단합니다. (Cause: %v)\n", err)
		os.Exit(1)
	}
	defer appLogCloser.Close()

	// 3. 로그 레벨 최종 확정
	applog.SetDebugMode(appConfig.Debug)

	applog.WithComponentAndFields("main", log.Fields{
		"version":    Version,
		"build_date": BuildDate,
		"env":        map[bool]string{true: "development", false: "production"}[appConfig.Debug],
	}).Info("실행 시작")

	// SIGINT/SIGTERM 수신 시 진행 중인 요청을 취소하고 종료한다.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.New(appConfig).Run(ctx); err != nil {
		applog.WithComponentAndFields("main", log.Fields{
			"error": err,
		}).Error("실행 실패")

		appLogCloser.Close()
		os.Exit(1)
	}

	applog.WithComponent("main").Info("실행 완료")
}
