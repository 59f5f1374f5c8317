// Package fetcher HTTP 요청 수행을 담당하는 클라이언트 계층을 제공합니다.
//
// Fetcher 인터페이스를 중심으로 인증/프록시가 적용된 기본 클라이언트(HTTPFetcher)와
// 재시도 데코레이터(RetryFetcher)를 조합하여 사용합니다.
package fetcher

import (
	"context"
	"net/http"
)

// component 로깅용 컴포넌트 이름
const component = "fetcher"

// Fetcher HTTP 요청을 수행하는 인터페이스
//
// 재시도, 인증 헤더 설정 등의 기능을 데코레이터 패턴으로 조합할 수 있도록 설계되었습니다.
// 반환된 응답 객체의 Body는 반드시 호출자가 닫아야 합니다.
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// Get 지정된 URL로 HTTP GET 요청을 전송합니다.
// Fetcher 인터페이스의 구현체가 공통으로 사용할 수 있는 헬퍼 함수입니다.
func Get(ctx context.Context, f Fetcher, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.Do(req)
	if err != nil {
		if resp != nil {
			// 커넥션 재사용을 위해 응답 객체의 Body를 안전하게 비우고 닫음
			drainAndCloseBody(resp.Body)
		}

		return nil, err
	}

	return resp, nil
}
