package errors

// ErrorType 에러의 종류를 나타내는 타입
type ErrorType string

const (
	// Unknown 분류할 수 없는 에러 (기본값, 사용 지양)
	Unknown ErrorType = "Unknown"

	// Internal 애플리케이션 내부 로직 오류 (버그로 간주)
	Internal ErrorType = "Internal"

	// System 시스템 또는 인프라 수준의 장애 (디스크 I/O, 네트워크 연결 등)
	System ErrorType = "System"

	// InvalidInput 설정값 또는 입력값 검증 실패
	InvalidInput ErrorType = "InvalidInput"

	// NotFound 요청한 리소스를 찾을 수 없음
	NotFound ErrorType = "NotFound"

	// ExecutionFailed 외부 API 호출 등 작업 실행 실패
	ExecutionFailed ErrorType = "ExecutionFailed"

	// ParsingFailed 데이터 파싱, 변환, 디코딩 실패
	ParsingFailed ErrorType = "ParsingFailed"

	// Timeout 작업 시간 초과
	Timeout ErrorType = "Timeout"

	// Unavailable 서버가 일시적으로 요청을 처리할 수 없음 (5xx, 429 등 재시도 가능한 상태)
	Unavailable ErrorType = "Unavailable"

	// RateLimitExceeded 서버의 요청 제한(Rate Limit)으로 인해 허용된 재시도 한도를 초과함
	RateLimitExceeded ErrorType = "RateLimitExceeded"
)
