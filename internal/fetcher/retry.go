package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	apperrors "github.com/darkkaiser/discord-shop-fetcher/internal/pkg/errors"
	applog "github.com/darkkaiser/discord-shop-fetcher/pkg/log"
	"github.com/tidwall/gjson"
)

const (
	// minAllowedRetries 허용 가능한 최소 재시도 횟수입니다. (0: 재시도 안 함)
	minAllowedRetries = 0

	// maxAllowedRetries 허용 가능한 최대 재시도 횟수입니다.
	maxAllowedRetries = 10

	// defaultMaxRetryDelay 재시도 대기 시간의 최대값을 지정하지 않았을 때 사용되는 기본값(30초)입니다.
	defaultMaxRetryDelay = 30 * time.Second

	// maxRetryAfterBodyBytes 429 응답 본문에서 retry_after 값을 찾을 때 읽을 최대 바이트 수
	maxRetryAfterBodyBytes = 4096
)

// RetryConfig RetryFetcher 생성에 필요한 설정 구조체
type RetryConfig struct {
	MaxRetries    int
	MinRetryDelay time.Duration
	MaxRetryDelay time.Duration
}

// RetryFetcher HTTP 요청 실패 시 자동으로 재시도를 수행하는 데코레이터입니다.
//
// 주요 특징:
//   - 지수 백오프(Exponential Backoff) + Jitter: 재시도 간격을 지수적으로 증가시키되 무작위성을 추가
//   - Retry-After 지원: 서버가 응답 헤더 또는 429 응답 본문(retry_after)으로 명시한 대기 시간을 우선 준수
//   - 재시도 횟수 상한: 모든 재시도는 maxRetries 이내에서만 수행되며 무한 재시도는 발생하지 않음
//   - 컨텍스트 취소 감지: 대기 중 요청이 취소되면 즉시 중단
type RetryFetcher struct {
	delegate Fetcher

	// maxRetries 최대 재시도 횟수 (0 ~ 10 범위로 정규화됨)
	maxRetries int

	// minRetryDelay 지수 백오프의 시작값 (1초 미만인 경우 1초로 보정됨)
	minRetryDelay time.Duration

	// maxRetryDelay 지수 백오프의 상한값이자 Retry-After 허용 한도
	maxRetryDelay time.Duration
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*RetryFetcher)(nil)

// NewRetryFetcher 새로운 RetryFetcher 인스턴스를 생성합니다.
func NewRetryFetcher(delegate Fetcher, cfg RetryConfig) *RetryFetcher {
	maxRetries := normalizeMaxRetries(cfg.MaxRetries)
	minRetryDelay, maxRetryDelay := normalizeRetryDelays(cfg.MinRetryDelay, cfg.MaxRetryDelay)

	return &RetryFetcher{
		delegate:      delegate,
		maxRetries:    maxRetries,
		minRetryDelay: minRetryDelay,
		maxRetryDelay: maxRetryDelay,
	}
}

// serverRetryDelay 서버가 명시한 재시도 대기 시간 정보
type serverRetryDelay struct {
	delay time.Duration
	found bool
}

// Do HTTP 요청을 수행하며, 실패 시 설정된 정책에 따라 자동으로 재시도합니다.
//
// 재시도 전략:
//  1. 지수 백오프: delay = minRetryDelay * 2^(retry-1), maxRetryDelay를 초과하지 않음
//  2. Full Jitter: 0 ~ 계산된 delay 사이의 무작위 값 선택
//  3. Retry-After 우선 처리: 서버가 명시한 대기 시간이 있으면 백오프 대신 사용하되,
//     maxRetryDelay를 초과하는 경우 재시도를 포기하고 즉시 에러 반환
//  4. 비멱등 메서드(POST, PATCH)는 재시도 제외
//
// 재시도 대상: 네트워크 오류, 5xx(501/505/511 제외), 429, 408
// 재시도 제외: 컨텍스트 취소, 4xx 클라이언트 에러, 비즈니스 로직 에러
func (f *RetryFetcher) Do(req *http.Request) (*http.Response, error) {
	effectiveMaxRetries := f.maxRetries

	// 비멱등 메서드는 재시도 시 데이터 중복 생성/수정 위험이 있으므로 재시도 비활성화
	if !isIdempotentMethod(req.Method) {
		effectiveMaxRetries = 0
	}

	// 재시도 시 요청 본문을 다시 읽어야 하므로, GetBody가 없으면 재시도 비활성화
	if req.Body != nil && req.GetBody == nil && effectiveMaxRetries > 0 {
		applog.WithComponent(component).WithFields(applog.Fields{
			"url":    req.URL.Redacted(),
			"method": req.Method,
		}).Warn("재시도 비활성화: 요청 본문 재생성 불가 (GetBody nil)")

		effectiveMaxRetries = 0
	}

	// 다음 재시도 판단에 필요한 직전 시도의 결과 (에러, 상태 코드, 서버가 명시한 대기 시간)
	var lastErr error
	var lastStatusCode int
	var lastServerDelay serverRetryDelay

	// 첫 번째 시도와 재시도를 포함하여 최대 effectiveMaxRetries+1회 반복합니다.
	for i := 0; i <= effectiveMaxRetries; i++ {
		if i > 0 {
			// 지수 백오프 계산 후 Full Jitter 적용
			delay := f.minRetryDelay * time.Duration(1<<(i-1))
			if delay > f.maxRetryDelay {
				delay = f.maxRetryDelay
			}
			if delay > 0 {
				delay = time.Duration(rand.Int64N(int64(delay) + 1))
			}

			// 서버가 Retry-After로 대기 시간을 명시한 경우 해당 값을 우선 적용합니다.
			// 단, 허용 한도(maxRetryDelay)를 초과하면 과도한 지연을 방지하기 위해 재시도를 포기합니다.
			if lastServerDelay.found {
				if lastServerDelay.delay > f.maxRetryDelay {
					return nil, newErrRetryAfterExceeded(lastServerDelay.delay.String(), f.maxRetryDelay.String())
				}
				delay = lastServerDelay.delay
			} else if delay < time.Millisecond {
				// 지터로 인해 대기 시간이 사실상 0이 되면 최소 대기 시간을 보장합니다.
				delay = f.minRetryDelay
			}

			fields := applog.Fields{
				"url":         req.URL.Redacted(),
				"retry":       i,
				"max_retries": effectiveMaxRetries,
				"delay":       delay.String(),
			}
			if lastErr != nil {
				fields["error"] = lastErr.Error()
			}
			if lastStatusCode != 0 {
				fields["status_code"] = lastStatusCode
			}
			applog.WithComponent(component).WithFields(fields).Warn("재시도 대기 중: 일시적 오류로 인해 요청 재시도를 준비합니다")

			// 계산된 시간만큼 대기하되, 요청이 취소되면 즉시 중단합니다.
			timer := time.NewTimer(delay)
			select {
			case <-req.Context().Done():
				if !timer.Stop() {
					<-timer.C
				}
				return nil, req.Context().Err()

			case <-timer.C:
			}

			// 이전 시도에서 소진된 요청 본문을 복구하고, 원본 요청 객체 보호를 위해 복제본을 사용합니다.
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, apperrors.Wrap(err, apperrors.Internal, "재시도를 위한 요청 본문 재생성에 실패했습니다")
				}
				req = req.Clone(req.Context())
				req.Body = body
			}
		}

		resp, err := f.delegate.Do(req)

		// 재시도 여부 판단: 상태 코드(429/408/5xx) 또는 일시적 네트워크 오류인 경우 재시도합니다.
		shouldRetry := false
		if resp != nil {
			shouldRetry = isRetriableStatus(resp.StatusCode)
		}

		if err != nil {
			// 전체 요청 제한 시간이 초과된 경우 재시도해도 성공할 수 없으므로 즉시 중단합니다.
			if errors.Is(err, context.DeadlineExceeded) && req.Context().Err() != nil {
				if resp != nil && resp.Body != nil {
					resp.Body.Close()
				}
				return nil, err
			}

			if !isRetriable(err) {
				if resp != nil && resp.Body != nil {
					drainAndCloseBody(resp.Body)
				}
				return nil, err
			}
		} else if !shouldRetry {
			// 성공(2xx) 또는 재시도해도 해결되지 않는 응답이므로 그대로 반환합니다.
			return resp, nil
		}

		// 재시도 준비: 에러/상태 코드를 저장하고, 응답 본문에서 Retry-After 정보를 추출한 후 정리합니다.
		lastErr = err
		lastStatusCode = 0
		lastServerDelay = serverRetryDelay{}
		if resp != nil {
			lastStatusCode = resp.StatusCode
			lastServerDelay = extractServerRetryDelay(resp)

			if i == effectiveMaxRetries && lastErr == nil {
				// 마지막 시도까지 서버가 재시도 대상 상태 코드를 반환한 경우입니다.
				drainAndCloseBody(resp.Body)
				return nil, newErrMaxRetriesExceeded(CheckResponseStatus(resp))
			}

			drainAndCloseBody(resp.Body)
		}
	}

	// 모든 재시도 횟수를 소진했으나 서버로부터 유효한 응답을 받지 못한 경우입니다.
	return nil, newErrMaxRetriesExceeded(lastErr)
}

// extractServerRetryDelay 응답에서 서버가 명시한 재시도 대기 시간을 추출합니다.
//
// 우선순위:
//  1. Retry-After 응답 헤더 (초 단위 정수 또는 HTTP-date 형식)
//  2. 429 응답 본문 JSON의 retry_after 필드 (초 단위 실수)
//
// 본문을 읽는 경우 최대 maxRetryAfterBodyBytes까지만 소비하며,
// 호출자는 이후 반드시 남은 본문을 정리해야 합니다.
func extractServerRetryDelay(resp *http.Response) serverRetryDelay {
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if delay, ok := parseRetryAfter(retryAfter); ok {
			return serverRetryDelay{delay: delay, found: true}
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests && resp.Body != nil {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxRetryAfterBodyBytes))
		if result := gjson.GetBytes(bodyBytes, "retry_after"); result.Exists() {
			seconds := result.Float()
			if seconds >= 0 {
				return serverRetryDelay{delay: time.Duration(seconds * float64(time.Second)), found: true}
			}
		}
	}

	return serverRetryDelay{}
}

// normalizeMaxRetries 최대 재시도 횟수를 허용 범위(0 ~ 10) 내의 값으로 정규화합니다.
func normalizeMaxRetries(maxRetries int) int {
	if maxRetries < minAllowedRetries {
		return minAllowedRetries
	}
	if maxRetries > maxAllowedRetries {
		// 과도한 재시도로 인한 지연 방지
		return maxAllowedRetries
	}
	return maxRetries
}

// normalizeRetryDelays 재시도 대기 시간의 최소값과 최대값을 정규화합니다.
//
// 정규화 규칙:
//   - minRetryDelay 1초 미만: 1초로 보정 (너무 짧은 대기 시간은 서버에 부담)
//   - maxRetryDelay 0: 기본값(30초)으로 보정
//   - maxRetryDelay < minRetryDelay: minRetryDelay로 보정
func normalizeRetryDelays(minRetryDelay, maxRetryDelay time.Duration) (time.Duration, time.Duration) {
	if minRetryDelay < time.Second {
		minRetryDelay = 1 * time.Second
	}
	if maxRetryDelay == 0 {
		maxRetryDelay = defaultMaxRetryDelay
	}
	if maxRetryDelay < minRetryDelay {
		maxRetryDelay = minRetryDelay
	}
	return minRetryDelay, maxRetryDelay
}

// isRetriableStatus 응답 상태 코드가 재시도 대상인지 판단합니다.
// 501, 505, 511은 영구적인 문제이므로 재시도해도 성공할 가능성이 낮아 제외합니다.
func isRetriableStatus(statusCode int) bool {
	if statusCode == http.StatusTooManyRequests || statusCode == http.StatusRequestTimeout {
		return true
	}
	if statusCode >= 500 {
		switch statusCode {
		case http.StatusNotImplemented, http.StatusHTTPVersionNotSupported, http.StatusNetworkAuthenticationRequired:
			return false
		default:
			return true
		}
	}
	return false
}

// isRetriable 발생한 에러가 재시도 가능한 일시적인 오류인지 판단합니다.
//
// 재시도 대상: 네트워크 타임아웃, 일시적인 연결 오류, 서버 일시적 오류(Unavailable)
// 재시도 제외: 컨텍스트 취소, 비즈니스 로직 에러(InvalidInput, NotFound, ExecutionFailed, ParsingFailed)
func isRetriable(err error) bool {
	if err == nil {
		return false
	}

	// context.Canceled는 사용자가 명시적으로 요청을 취소한 것이므로 재시도 제외
	// 주의: context.DeadlineExceeded는 HTTP 클라이언트 타임아웃 시에도 발생하므로 net.Error 검사에서 처리합니다.
	if errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		// 타임아웃은 일시적인 네트워크 지연으로 간주하여 재시도
		return true
	}

	if apperrors.Is(err, apperrors.Unavailable) {
		return true
	}

	// 명확한 비즈니스 로직 에러는 재시도해도 동일한 결과가 나오므로 재시도 제외
	if apperrors.Is(err, apperrors.ExecutionFailed) ||
		apperrors.Is(err, apperrors.InvalidInput) ||
		apperrors.Is(err, apperrors.ParsingFailed) ||
		apperrors.Is(err, apperrors.NotFound) {
		return false
	}

	// 명확한 실패 사유가 없다면 일시적 오류(DNS 조회 실패, 연결 거부 등)로 간주하고 재시도합니다.
	return true
}

// isIdempotentMethod 지정된 HTTP 메서드가 멱등한지(재시도가 안전한지) 여부를 반환합니다.
// 참고: RFC 7231 Section 4.2.2 (Idempotent Methods)
func isIdempotentMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// parseRetryAfter Retry-After 헤더 값을 파싱하여 대기해야 할 시간을 반환합니다.
//
// 지원 형식 (RFC 7231 Section 7.1.3):
//  1. 초 단위 정수: "120" → 120초 후 재시도
//  2. HTTP-date 형식: "Wed, 21 Oct 2015 07:28:00 GMT" → 해당 시각까지 대기
func parseRetryAfter(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}

	var seconds int
	if _, err := fmt.Sscanf(value, "%d", &seconds); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, true
	}

	if date, err := http.ParseTime(value); err == nil {
		duration := time.Until(date)
		if duration < 0 {
			// 서버 시간과 클라이언트 시간 차이로 과거 시간이 올 수 있으므로 즉시 재시도
			duration = 0
		}
		return duration, true
	}

	return 0, false
}
