// Package previews 미리보기 이미지의 다운로드와 로컬 캐시를 담당합니다.
package previews

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/darkkaiser/discord-shop-fetcher/internal/fetcher"
	apperrors "github.com/darkkaiser/discord-shop-fetcher/internal/pkg/errors"
	"github.com/darkkaiser/discord-shop-fetcher/internal/shop"
	applog "github.com/darkkaiser/discord-shop-fetcher/pkg/log"
	"golang.org/x/time/rate"
)

// component 로깅용 컴포넌트 이름
const component = "previews"

const (
	// defaultPacing 아이템 간 다운로드 요청 사이의 기본 대기 시간 (서버 부하 방지용 예의상 간격)
	defaultPacing = 100 * time.Millisecond

	// defaultTimeout 이미지 1건 다운로드의 기본 제한 시간
	defaultTimeout = 30 * time.Second
)

// Config Downloader 생성에 필요한 설정 구조체
type Config struct {
	// Dir 다운로드한 이미지가 저장될 디렉토리 경로
	Dir string

	// Pacing 아이템 간 다운로드 요청 사이의 대기 시간 (0 이하인 경우 기본값)
	Pacing time.Duration

	// Timeout 이미지 1건 다운로드에 허용되는 최대 시간 (0 이하인 경우 기본값)
	Timeout time.Duration
}

// Downloader 병합된 아이템 목록의 미리보기 이미지를 순차적으로 다운로드합니다.
//
// 이미 저장된 파일(<sku>.<ext>)이 존재하는 sku는 네트워크 요청 없이 해당 경로를
// 재사용합니다. (멱등적 캐시) 개별 이미지의 다운로드 실패는 해당 이미지에만
// 영향을 주며 전체 작업을 중단시키지 않습니다.
type Downloader struct {
	fetcher fetcher.Fetcher
	dir     string
	limiter *rate.Limiter
	timeout time.Duration
}

// NewDownloader 지정된 설정으로 새로운 Downloader 인스턴스를 생성합니다.
func NewDownloader(f fetcher.Fetcher, cfg Config) *Downloader {
	pacing := cfg.Pacing
	if pacing <= 0 {
		pacing = defaultPacing
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Downloader{
		fetcher: f,
		dir:     cfg.Dir,
		limiter: rate.NewLimiter(rate.Every(pacing), 1),
		timeout: timeout,
	}
}

// DownloadAll 모든 아이템과 그 변형들의 미리보기 이미지를 다운로드하고,
// 각 레코드의 preview_local 필드를 채웁니다.
//
// 반환값은 실제로 네트워크를 통해 새로 받은 이미지 수입니다.
// 컨텍스트가 취소되면 진행 중이던 위치에서 중단하고 에러를 반환합니다.
func (d *Downloader) DownloadAll(ctx context.Context, items []*shop.MergedItem) (int, error) {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return 0, apperrors.Wrap(err, apperrors.System, fmt.Sprintf("미리보기 저장 디렉토리 생성에 실패했습니다: '%s'", d.dir))
	}

	downloaded := 0
	for _, item := range items {
		// 아이템 간 고정 간격을 유지합니다.
		if err := d.limiter.Wait(ctx); err != nil {
			return downloaded, err
		}

		path, fresh := d.download(ctx, item.PreviewURL, item.SkuID)
		item.PreviewLocal = path
		item.PreviewLocalSet = true
		if fresh {
			downloaded++
		}

		for _, variant := range item.Variants {
			path, fresh := d.download(ctx, variant.PreviewURL, variant.SkuID)
			variant.PreviewLocal = path
			variant.PreviewLocalSet = true
			if fresh {
				downloaded++
			}
		}
	}

	return downloaded, nil
}

// download 하나의 미리보기 이미지를 내려받아 로컬 경로를 반환합니다.
//
// 반환값: (로컬 파일 경로 또는 실패 시 nil, 새로 다운로드했는지 여부)
// URL이 없으면 아무 작업도 하지 않으며, 실패는 경고 로그만 남기고 nil을 반환합니다.
func (d *Downloader) download(ctx context.Context, rawURL *string, sku string) (*string, bool) {
	if rawURL == nil || *rawURL == "" {
		return nil, false
	}

	path := filepath.Join(d.dir, fmt.Sprintf("%s.%s", sku, inferExt(*rawURL)))

	// 이미 존재하는 파일은 다시 받지 않습니다.
	if _, err := os.Stat(path); err == nil {
		return &path, false
	}

	reqCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	resp, err := fetcher.Get(reqCtx, d.fetcher, *rawURL)
	if err != nil {
		applog.WithComponent(component).WithFields(applog.Fields{
			"sku":   sku,
			"url":   *rawURL,
			"error": err.Error(),
		}).Warn("미리보기 이미지 다운로드에 실패했습니다")
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		applog.WithComponent(component).WithFields(applog.Fields{
			"sku":         sku,
			"url":         *rawURL,
			"status_code": resp.StatusCode,
		}).Warn("미리보기 이미지 다운로드에 실패했습니다")
		return nil, false
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		applog.WithComponent(component).WithFields(applog.Fields{
			"sku":   sku,
			"url":   *rawURL,
			"error": err.Error(),
		}).Warn("미리보기 이미지 응답을 읽는데 실패했습니다")
		return nil, false
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		applog.WithComponent(component).WithFields(applog.Fields{
			"sku":   sku,
			"path":  path,
			"error": err.Error(),
		}).Warn("미리보기 이미지 저장에 실패했습니다")
		return nil, false
	}

	return &path, true
}

// inferExt URL로부터 이미지 파일 확장자를 추정합니다. (gif/webp, 그 외에는 png)
func inferExt(url string) string {
	switch {
	case strings.Contains(url, ".gif"):
		return "gif"
	case strings.Contains(url, ".webp"):
		return "webp"
	default:
		return "png"
	}
}
