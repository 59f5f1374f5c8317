package shop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/darkkaiser/discord-shop-fetcher/internal/fetcher"
	apperrors "github.com/darkkaiser/discord-shop-fetcher/internal/pkg/errors"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultBaseURL 샵 API의 기본 주소
	DefaultBaseURL = "https://discord.com/api/v9"

	// categoriesEndpoint 수집품 카탈로그 조회 엔드포인트
	categoriesEndpoint = "collectibles-categories/v2"

	// localeHeader 응답 언어를 결정하는 요청 헤더
	localeHeader = "X-Discord-Locale"
)

// Client 샵 카탈로그 API 클라이언트
type Client struct {
	fetcher fetcher.Fetcher
	baseURL string
}

// NewClient 지정된 Fetcher를 사용하는 새로운 Client 인스턴스를 생성합니다.
// baseURL이 빈 문자열인 경우 기본 주소(DefaultBaseURL)를 사용합니다.
func NewClient(f fetcher.Fetcher, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		fetcher: f,
		baseURL: baseURL,
	}
}

// FetchCatalog 지정된 로케일의 수집품 카탈로그 전체를 조회합니다.
//
// 번들 포함 및 변형 표현 방식은 고정된 쿼리 파라미터로 요청하며,
// 응답 언어는 X-Discord-Locale 헤더로 지정합니다.
func (c *Client) FetchCatalog(ctx context.Context, locale string) (*CategoryTree, error) {
	query := url.Values{}
	query.Set("include_bundles", "true")
	query.Set("variants_return_style", "2")
	query.Set("skip_num_categories", "0")

	requestURL := fmt.Sprintf("%s/%s?%s", c.baseURL, categoriesEndpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, fmt.Sprintf("카탈로그 요청 생성에 실패했습니다. (URL: %s)", requestURL))
	}
	req.Header.Set(localeHeader, locale)

	resp, err := c.fetcher.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unavailable, fmt.Sprintf("카탈로그(%s) 요청 전송 중 에러가 발생했습니다.", locale))
	}
	defer resp.Body.Close() // 응답을 받은 즉시 defer 설정하여 메모리 누수 방지

	if err := fetcher.CheckResponseStatus(resp); err != nil {
		return nil, err
	}

	// Content-Type 헤더를 기반으로 비 UTF-8 인코딩 응답도 UTF-8로 변환하여 처리
	utf8Reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, fmt.Sprintf("카탈로그(%s) 응답의 인코딩 변환이 실패하였습니다.", locale))
	}

	decoder := json.NewDecoder(utf8Reader)

	var tree CategoryTree
	if err := decoder.Decode(&tree); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, fmt.Sprintf("카탈로그(%s) 응답의 JSON 변환이 실패하였습니다.", locale))
	}

	// 문서 뒤에 추가 데이터가 존재하면 불완전하거나 손상된 응답으로 간주합니다.
	if _, err := decoder.Token(); err != io.EOF {
		return nil, apperrors.New(apperrors.ParsingFailed, fmt.Sprintf("카탈로그(%s) 응답에 JSON 문서 이후 불필요한 데이터가 존재합니다.", locale))
	}

	return &tree, nil
}
