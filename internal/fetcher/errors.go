package fetcher

import (
	"fmt"
	"net/http"

	apperrors "github.com/darkkaiser/discord-shop-fetcher/internal/pkg/errors"
)

var (
	// ErrMaxRetriesExceeded 설정된 최대 재시도 횟수를 모두 소진했을 때 반환됩니다.
	ErrMaxRetriesExceeded = apperrors.New(apperrors.Unavailable, "최대 재시도 횟수를 초과했습니다")

	// ErrRetryAfterExceeded 서버가 요구한 재시도 대기 시간(Retry-After)이 허용 한도를 초과했을 때 반환됩니다.
	ErrRetryAfterExceeded = apperrors.New(apperrors.RateLimitExceeded, "서버가 요구한 재시도 대기 시간이 허용 한도를 초과했습니다")
)

// newErrMaxRetriesExceeded 마지막으로 발생한 에러를 원인으로 포함하는 재시도 소진 에러를 생성합니다.
func newErrMaxRetriesExceeded(cause error) error {
	if cause == nil {
		return ErrMaxRetriesExceeded
	}
	return apperrors.Wrap(cause, apperrors.Unavailable, "최대 재시도 횟수를 초과했습니다")
}

// newErrRetryAfterExceeded 서버가 요구한 대기 시간과 허용 한도를 포함하는 에러를 생성합니다.
func newErrRetryAfterExceeded(requested, limit string) error {
	return apperrors.Wrap(ErrRetryAfterExceeded, apperrors.RateLimitExceeded, fmt.Sprintf("요구된 대기 시간: %s, 허용 한도: %s", requested, limit))
}

// CheckResponseStatus HTTP 응답 상태 코드를 분석하여 도메인 에러로 변환합니다.
// 200 OK가 아닌 경우 상태 코드에 따라 적절한 에러 타입을 반환합니다.
func CheckResponseStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	errType := apperrors.ExecutionFailed
	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		errType = apperrors.Unavailable
	case resp.StatusCode == http.StatusNotFound:
		errType = apperrors.NotFound
	}

	return apperrors.New(errType, fmt.Sprintf("HTTP 요청이 실패했습니다. 상태 코드: %s", resp.Status))
}
