package fetcher

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/darkkaiser/discord-shop-fetcher/internal/pkg/errors"
	xproxy "golang.org/x/net/proxy"
)

const (
	// defaultTimeout HTTP 요청 전체(연결 + 응답 수신)에 적용되는 기본 제한 시간
	defaultTimeout = 30 * time.Second

	// defaultUserAgent User-Agent 미지정 시 사용되는 기본값
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// HTTPConfig HTTPFetcher 생성에 필요한 설정 구조체
type HTTPConfig struct {
	// Token Authorization 헤더에 그대로 설정되는 인증 토큰 (빈 문자열인 경우 헤더 미설정)
	Token string

	// Proxy SOCKS5 프록시 주소 (형식: host:port 또는 user:pass@host:port, 빈 문자열인 경우 직접 연결)
	Proxy string

	// Timeout 요청 1건의 제한 시간 (0인 경우 기본값 30초)
	Timeout time.Duration
}

// HTTPFetcher 인증 토큰과 SOCKS5 프록시가 적용된 기본 HTTP 클라이언트 구현체입니다.
type HTTPFetcher struct {
	client *http.Client
	token  string
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher 지정된 설정으로 새로운 HTTPFetcher 인스턴스를 생성합니다.
// 프록시 주소가 주어진 경우 모든 요청이 해당 SOCKS5 프록시를 경유합니다.
func NewHTTPFetcher(cfg HTTPConfig) (*HTTPFetcher, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &http.Client{
		Timeout: timeout,
	}

	if cfg.Proxy != "" {
		transport, err := newSOCKS5Transport(cfg.Proxy)
		if err != nil {
			return nil, err
		}
		client.Transport = transport
	}

	return &HTTPFetcher{
		client: client,
		token:  cfg.Token,
	}, nil
}

// Do HTTP 요청을 실행합니다.
// Authorization, User-Agent 헤더가 설정되지 않은 경우 기본값을 자동으로 추가합니다.
func (h *HTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	if h.token != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", h.token)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", defaultUserAgent)
	}
	return h.client.Do(req)
}

// newSOCKS5Transport 지정된 프록시 주소(user:pass@host:port)를 경유하는 HTTP 전송 계층을 생성합니다.
func newSOCKS5Transport(proxyAddr string) (*http.Transport, error) {
	proxyURL, err := url.Parse("socks5://" + proxyAddr)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("프록시 주소 파싱에 실패했습니다: '%s'", proxyAddr))
	}

	dialer, err := xproxy.FromURL(proxyURL, xproxy.Direct)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("SOCKS5 프록시 다이얼러 생성에 실패했습니다: '%s'", proxyAddr))
	}

	transport := &http.Transport{}
	if contextDialer, ok := dialer.(xproxy.ContextDialer); ok {
		transport.DialContext = contextDialer.DialContext
	} else {
		// x/net/proxy의 SOCKS5 다이얼러는 ContextDialer를 구현하므로 이 경로는 예비용입니다.
		transport.Dial = dialer.Dial //nolint:staticcheck
	}

	return transport, nil
}
