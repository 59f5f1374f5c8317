// Package app 설정 로드 이후의 전체 실행 흐름(조회 → 병합 → 다운로드 → 저장)을 관장합니다.
package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/darkkaiser/discord-shop-fetcher/internal/config"
	"github.com/darkkaiser/discord-shop-fetcher/internal/fetcher"
	apperrors "github.com/darkkaiser/discord-shop-fetcher/internal/pkg/errors"
	"github.com/darkkaiser/discord-shop-fetcher/internal/previews"
	"github.com/darkkaiser/discord-shop-fetcher/internal/shop"
	"github.com/darkkaiser/discord-shop-fetcher/internal/storage"
	applog "github.com/darkkaiser/discord-shop-fetcher/pkg/log"
)

// component 로깅용 컴포넌트 이름
const component = "app"

// primaryLocale 포함 여부의 기준이 되는 기본 로케일
const primaryLocale = "en-US"

// App 애플리케이션의 실행 단위
type App struct {
	cfg *config.AppConfig

	// baseURL 테스트에서 샵 API 주소를 대체하기 위한 값 (빈 문자열인 경우 기본 주소)
	baseURL string
}

// New 지정된 설정으로 새로운 App 인스턴스를 생성합니다.
func New(cfg *config.AppConfig) *App {
	return &App{cfg: cfg}
}

// Run 전체 파이프라인을 실행합니다.
//
//  1. 기본 로케일(en-US) 카탈로그 조회
//  2. 보조 로케일 카탈로그 조회 (기본 로케일 조회가 성공한 경우에만)
//  3. 두 응답 병합
//  4. 미리보기 이미지 다운로드 (설정으로 생략 가능)
//  5. 결과 JSON 저장 및 종류별 요약 출력
//
// 로케일 조회 실패는 실행 전체의 실패입니다. 개별 이미지 다운로드 실패는
// 해당 이미지에만 영향을 줍니다.
func (a *App) Run(ctx context.Context) error {
	logger := applog.WithComponent(component)

	logger.WithFields(applog.Fields{
		"token":            applog.MaskSensitiveData(a.cfg.Token),
		"secondary_locale": a.cfg.SecondaryLocale,
	}).Debug("실행 설정 확인")

	httpFetcher, err := fetcher.NewHTTPFetcher(fetcher.HTTPConfig{
		Token: a.cfg.Token,
		Proxy: a.cfg.Proxy,
	})
	if err != nil {
		return err
	}

	retryFetcher := fetcher.NewRetryFetcher(httpFetcher, fetcher.RetryConfig{
		MaxRetries:    a.cfg.HTTPRetry.MaxRetries,
		MinRetryDelay: a.cfg.HTTPRetry.MinDelay(),
		MaxRetryDelay: a.cfg.HTTPRetry.MaxDelay(),
	})

	client := shop.NewClient(retryFetcher, a.baseURL)

	logger.WithFields(applog.Fields{"locale": primaryLocale}).Info("기본 로케일 카탈로그 조회 중")
	primary, err := client.FetchCatalog(ctx, primaryLocale)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ExecutionFailed, "기본 로케일 카탈로그 조회에 실패했습니다")
	}

	logger.WithFields(applog.Fields{"locale": a.cfg.SecondaryLocale}).Info("보조 로케일 카탈로그 조회 중")
	secondary, err := client.FetchCatalog(ctx, a.cfg.SecondaryLocale)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ExecutionFailed, "보조 로케일 카탈로그 조회에 실패했습니다")
	}

	items := shop.MergeItems(primary, secondary, a.cfg.SecondaryLocale)
	logger.WithFields(applog.Fields{"count": len(items)}).Info("아이템 병합 완료")

	if !a.cfg.Previews.Skip {
		logger.Info("미리보기 이미지 다운로드 중")

		downloader := previews.NewDownloader(retryFetcher, previews.Config{
			Dir:     a.cfg.Previews.Dir,
			Pacing:  a.cfg.Previews.PacingDuration(),
			Timeout: a.cfg.Previews.TimeoutDuration(),
		})

		downloaded, err := downloader.DownloadAll(ctx, items)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ExecutionFailed, "미리보기 이미지 다운로드가 중단되었습니다")
		}

		logger.WithFields(applog.Fields{
			"downloaded": downloaded,
			"dir":        a.cfg.Previews.Dir,
		}).Info("미리보기 이미지 다운로드 완료")
	}

	if err := storage.WriteJSON(a.cfg.OutputFile, items); err != nil {
		return err
	}
	logger.WithFields(applog.Fields{"file": a.cfg.OutputFile}).Info("결과 파일 저장 완료")

	logSummary(logger, items)

	return nil
}

// logSummary 아이템 종류별 개수를 집계하여 출력합니다.
func logSummary(logger *applog.Entry, items []*shop.MergedItem) {
	counts := make(map[string]int)
	for _, item := range items {
		counts[item.TypeName]++
	}

	typeNames := make([]string, 0, len(counts))
	for typeName := range counts {
		typeNames = append(typeNames, typeName)
	}
	sort.Strings(typeNames)

	for _, typeName := range typeNames {
		logger.Info(fmt.Sprintf("%s: %d", typeName, counts[typeName]))
	}
}
